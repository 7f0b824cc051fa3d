package handler

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/j8kin/fantasy-empires-wars/internal/auth"
	"github.com/j8kin/fantasy-empires-wars/internal/service"
)

// GameHandler handles game lobby and lifecycle endpoints.
type GameHandler struct {
	gameSvc *service.GameService
	turnSvc *service.TurnService
	wsHub   *Hub
}

// NewGameHandler creates a GameHandler.
func NewGameHandler(gameSvc *service.GameService, turnSvc *service.TurnService, wsHub *Hub) *GameHandler {
	return &GameHandler{gameSvc: gameSvc, turnSvc: turnSvc, wsHub: wsHub}
}

// CreateGame handles POST /api/v1/games
func (h *GameHandler) CreateGame(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	var req struct {
		Name          string `json:"name"`
		TurnDuration  string `json:"turn_duration,omitempty"`
		EmpireName    string `json:"empire_name"`
		Class         string `json:"class"`
		MapRows       int    `json:"map_rows,omitempty"`
		MapCols       int    `json:"map_cols,omitempty"`
		ComputerCount int    `json:"computer_count,omitempty"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	game, err := h.gameSvc.CreateGame(r.Context(), req.Name, userID, req.TurnDuration,
		req.EmpireName, req.Class, req.MapRows, req.MapCols, req.ComputerCount)
	if err != nil {
		if errors.Is(err, service.ErrInvalidClass) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, game)
}

// ListGames handles GET /api/v1/games
func (h *GameHandler) ListGames(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	filter := r.URL.Query().Get("filter")
	games, err := h.gameSvc.ListGames(r.Context(), userID, filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if games == nil {
		writeJSON(w, http.StatusOK, []struct{}{})
		return
	}
	writeJSON(w, http.StatusOK, games)
}

// GetGame handles GET /api/v1/games/{id}
func (h *GameHandler) GetGame(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	game, err := h.gameSvc.GetGame(r.Context(), gameID)
	if err != nil {
		if errors.Is(err, service.ErrGameNotFound) {
			writeError(w, http.StatusNotFound, "game not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, game)
}

// GetGameState handles GET /api/v1/games/{id}/state
func (h *GameHandler) GetGameState(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	state, err := h.turnSvc.Snapshot(r.Context(), gameID)
	if err != nil {
		if errors.Is(err, service.ErrNoSession) {
			writeError(w, http.StatusNotFound, "game is not running")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(state)
}

// JoinGame handles POST /api/v1/games/{id}/join
func (h *GameHandler) JoinGame(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	userID := auth.UserIDFromContext(r.Context())

	var req struct {
		EmpireName string `json:"empire_name"`
		Class      string `json:"class"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.gameSvc.JoinGame(r.Context(), gameID, userID, req.EmpireName, req.Class); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, service.ErrGameNotFound) {
			status = http.StatusNotFound
		} else if errors.Is(err, service.ErrGameFull) || errors.Is(err, service.ErrGameNotWaiting) ||
			errors.Is(err, service.ErrAlreadyJoined) || errors.Is(err, service.ErrInvalidClass) {
			status = http.StatusBadRequest
		}
		writeError(w, status, err.Error())
		return
	}

	h.wsHub.BroadcastToGame(gameID, WSEvent{
		Type:   EventPlayerJoined,
		GameID: gameID,
		Data:   map[string]string{"user_id": userID, "empire_name": req.EmpireName},
	})

	writeJSON(w, http.StatusOK, map[string]string{"status": "joined"})
}

// StartGame handles POST /api/v1/games/{id}/start
func (h *GameHandler) StartGame(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	userID := auth.UserIDFromContext(r.Context())

	game, err := h.gameSvc.StartGame(r.Context(), gameID, userID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, service.ErrGameNotFound) {
			status = http.StatusNotFound
		} else if errors.Is(err, service.ErrNotCreator) || errors.Is(err, service.ErrNotEnough) ||
			errors.Is(err, service.ErrGameNotWaiting) {
			status = http.StatusBadRequest
		}
		writeError(w, status, err.Error())
		return
	}

	if err := h.turnSvc.Launch(r.Context(), game); err != nil {
		log.Error().Err(err).Str("gameId", gameID).Msg("Failed to launch game session")
		writeError(w, http.StatusInternalServerError, "failed to launch game")
		return
	}

	h.wsHub.BroadcastToGame(gameID, WSEvent{
		Type:   EventGameStarted,
		GameID: gameID,
		Data:   game,
	})

	writeJSON(w, http.StatusOK, game)
}

// DeleteGame handles DELETE /api/v1/games/{id}
func (h *GameHandler) DeleteGame(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	userID := auth.UserIDFromContext(r.Context())

	if err := h.gameSvc.DeleteGame(r.Context(), gameID, userID); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, service.ErrGameNotFound) {
			status = http.StatusNotFound
		} else if errors.Is(err, service.ErrGameNotWaiting) {
			status = http.StatusBadRequest
		} else if errors.Is(err, service.ErrNotCreator) {
			status = http.StatusForbidden
		}
		writeError(w, status, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// StopGame handles POST /api/v1/games/{id}/stop
func (h *GameHandler) StopGame(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	userID := auth.UserIDFromContext(r.Context())

	game, err := h.turnSvc.StopGame(r.Context(), gameID, userID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, service.ErrGameNotFound) {
			status = http.StatusNotFound
		} else if errors.Is(err, service.ErrGameNotActive) {
			status = http.StatusBadRequest
		} else if errors.Is(err, service.ErrNotCreator) {
			status = http.StatusForbidden
		}
		writeError(w, status, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, game)
}
