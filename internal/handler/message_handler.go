package handler

import (
	"net/http"
	"strings"

	"github.com/j8kin/fantasy-empires-wars/internal/auth"
	"github.com/j8kin/fantasy-empires-wars/internal/repository"
)

const maxMessageLen = 2000

// MessageHandler serves the diplomacy chat endpoints. Chat is the only
// channel empires have for striking deals, so both public and whispered
// messages ride the same store and hub.
type MessageHandler struct {
	messageRepo repository.MessageRepository
	turnRepo    repository.TurnRepository
	hub         *Hub
}

// NewMessageHandler creates a MessageHandler.
func NewMessageHandler(messageRepo repository.MessageRepository, turnRepo repository.TurnRepository, hub *Hub) *MessageHandler {
	return &MessageHandler{messageRepo: messageRepo, turnRepo: turnRepo, hub: hub}
}

// ListMessages handles GET /api/v1/games/{id}/messages
func (h *MessageHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	userID := auth.UserIDFromContext(r.Context())
	messages, err := h.messageRepo.ListByGame(r.Context(), gameID, userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if messages == nil {
		writeJSON(w, http.StatusOK, []struct{}{})
		return
	}
	writeJSON(w, http.StatusOK, messages)
}

// SendMessage handles POST /api/v1/games/{id}/messages
func (h *MessageHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	userID := auth.UserIDFromContext(r.Context())

	var req struct {
		RecipientID string `json:"recipient_id,omitempty"`
		Content     string `json:"content"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" {
		writeError(w, http.StatusBadRequest, "content is required")
		return
	}
	if len(req.Content) > maxMessageLen {
		writeError(w, http.StatusBadRequest, "message too long")
		return
	}

	// Stamp the message with the open turn for history grouping.
	turnID := ""
	turn, err := h.turnRepo.CurrentTurn(r.Context(), gameID)
	if err == nil && turn != nil {
		turnID = turn.ID
	}

	msg, err := h.messageRepo.Create(r.Context(), gameID, userID, req.RecipientID, req.Content, turnID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// Broadcast: private messages go to recipient only, public to the game
	event := WSEvent{Type: EventMessage, GameID: gameID, Data: msg}
	if req.RecipientID != "" {
		h.hub.BroadcastToUser(req.RecipientID, event)
		h.hub.BroadcastToUser(userID, event) // also to sender
	} else {
		h.hub.BroadcastToGame(gameID, event)
	}

	writeJSON(w, http.StatusCreated, msg)
}
