package handler

import (
	"errors"
	"net/http"

	"github.com/j8kin/fantasy-empires-wars/internal/auth"
	"github.com/j8kin/fantasy-empires-wars/internal/service"
	"github.com/j8kin/fantasy-empires-wars/pkg/engine"
)

// CommandHandler handles command submission and turn-flow endpoints.
type CommandHandler struct {
	cmdSvc *service.CommandService
}

// NewCommandHandler creates a CommandHandler.
func NewCommandHandler(cmdSvc *service.CommandService) *CommandHandler {
	return &CommandHandler{cmdSvc: cmdSvc}
}

// SubmitCommand handles POST /api/v1/games/{id}/commands
//
// Engine rejections come back as 422 with the recorded command so the
// client can show the reason; anything else is a server-side failure.
func (h *CommandHandler) SubmitCommand(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	userID := auth.UserIDFromContext(r.Context())

	var req service.CommandInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cmd, err := h.cmdSvc.Execute(r.Context(), gameID, userID, req)
	if err != nil {
		if engine.IsRejected(err) {
			writeJSON(w, http.StatusUnprocessableEntity, cmd)
			return
		}
		writeError(w, commandErrorStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, cmd)
}

// EndTurn handles POST /api/v1/games/{id}/end-turn
func (h *CommandHandler) EndTurn(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	userID := auth.UserIDFromContext(r.Context())

	if err := h.cmdSvc.EndTurn(r.Context(), gameID, userID); err != nil {
		writeError(w, commandErrorStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "turn ended"})
}

// MagicTargets handles GET /api/v1/games/{id}/magic/{magicId}/targets
func (h *CommandHandler) MagicTargets(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	magicID := r.PathValue("magicId")
	userID := auth.UserIDFromContext(r.Context())

	lands, err := h.cmdSvc.MagicTargets(r.Context(), gameID, userID, magicID)
	if err != nil {
		writeError(w, commandErrorStatus(err), err.Error())
		return
	}
	if lands == nil {
		lands = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"lands": lands})
}

func commandErrorStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrGameNotFound), errors.Is(err, service.ErrNoSession):
		return http.StatusNotFound
	case errors.Is(err, service.ErrNotInGame):
		return http.StatusForbidden
	case errors.Is(err, service.ErrNotOwner), errors.Is(err, service.ErrWrongPhase):
		return http.StatusConflict
	case errors.Is(err, service.ErrUnknownCommand), errors.Is(err, service.ErrGameNotActive):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
