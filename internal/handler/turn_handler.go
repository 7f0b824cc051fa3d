package handler

import (
	"net/http"

	"github.com/j8kin/fantasy-empires-wars/internal/repository"
)

// TurnHandler handles turn-history endpoints.
type TurnHandler struct {
	turnRepo repository.TurnRepository
}

// NewTurnHandler creates a TurnHandler.
func NewTurnHandler(turnRepo repository.TurnRepository) *TurnHandler {
	return &TurnHandler{turnRepo: turnRepo}
}

// ListTurns handles GET /api/v1/games/{id}/turns
func (h *TurnHandler) ListTurns(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	turns, err := h.turnRepo.ListTurns(r.Context(), gameID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if turns == nil {
		writeJSON(w, http.StatusOK, []struct{}{})
		return
	}
	writeJSON(w, http.StatusOK, turns)
}

// CurrentTurn handles GET /api/v1/games/{id}/turns/current
func (h *TurnHandler) CurrentTurn(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	turn, err := h.turnRepo.CurrentTurn(r.Context(), gameID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if turn == nil {
		writeError(w, http.StatusNotFound, "no open turn")
		return
	}
	writeJSON(w, http.StatusOK, turn)
}

// TurnCommands handles GET /api/v1/games/{id}/turns/{turnId}/commands
func (h *TurnHandler) TurnCommands(w http.ResponseWriter, r *http.Request) {
	turnID := r.PathValue("turnId")
	cmds, err := h.turnRepo.CommandsByTurn(r.Context(), turnID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if cmds == nil {
		writeJSON(w, http.StatusOK, []struct{}{})
		return
	}
	writeJSON(w, http.StatusOK, cmds)
}
