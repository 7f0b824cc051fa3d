package handler

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Event types sent over WebSocket.
const (
	EventPhaseChanged   = "phase_changed"
	EventTurnStarted    = "turn_started"
	EventCommand        = "command"
	EventEmpireEvents   = "empire_events"
	EventProgress       = "progress"
	EventProgressHidden = "progress_hidden"
	EventMessage        = "message"
	EventGameStarted    = "game_started"
	EventGameEnded      = "game_ended"
	EventPlayerJoined   = "player_joined"
)

// WSEvent is the envelope for all WebSocket messages.
type WSEvent struct {
	Type   string `json:"type"`
	GameID string `json:"game_id"`
	Data   any    `json:"data"`
}

// ClientMessage is what clients send: subscribe/unsubscribe to a game channel.
type ClientMessage struct {
	Action string `json:"action"`
	GameID string `json:"game_id"`
}

// WSConn is one socket. A user may hold several at once (two browser
// tabs, reconnecting mobile client), so the hub indexes them per user.
type WSConn struct {
	conn   *websocket.Conn
	userID string
	send   chan []byte
}

// Hub routes game events to subscribed sockets.
type Hub struct {
	mu     sync.RWMutex
	byUser map[string]map[*WSConn]struct{}
	games  map[string]map[*WSConn]struct{}
	total  int
}

func NewHub() *Hub {
	return &Hub{
		byUser: make(map[string]map[*WSConn]struct{}),
		games:  make(map[string]map[*WSConn]struct{}),
	}
}

func (h *Hub) Register(c *WSConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.byUser[c.userID] == nil {
		h.byUser[c.userID] = make(map[*WSConn]struct{})
	}
	h.byUser[c.userID][c] = struct{}{}
	h.total++
}

// Unregister drops the socket from the hub and every game channel, then
// closes its send queue so the write pump exits.
func (h *Hub) Unregister(c *WSConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.byUser[c.userID]; ok {
		if _, present := conns[c]; present {
			delete(conns, c)
			h.total--
			if len(conns) == 0 {
				delete(h.byUser, c.userID)
			}
		}
	}
	for gameID, conns := range h.games {
		delete(conns, c)
		if len(conns) == 0 {
			delete(h.games, gameID)
		}
	}
	close(c.send)
}

func (h *Hub) Subscribe(c *WSConn, gameID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.games[gameID] == nil {
		h.games[gameID] = make(map[*WSConn]struct{})
	}
	h.games[gameID][c] = struct{}{}
}

func (h *Hub) Unsubscribe(c *WSConn, gameID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.games[gameID]; ok {
		delete(conns, c)
		if len(conns) == 0 {
			delete(h.games, gameID)
		}
	}
}

// BroadcastToGame fans an event out to every socket subscribed to the
// game. Slow consumers get dropped messages, not a blocked game loop.
func (h *Hub) BroadcastToGame(gameID string, event WSEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("gameId", gameID).Msg("Failed to marshal WebSocket event")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.games[gameID] {
		select {
		case c.send <- data:
		default:
			log.Warn().Str("userId", c.userID).Str("gameId", gameID).Msg("Dropping WebSocket message, buffer full")
		}
	}
}

// BroadcastToUser sends an event to every socket a user holds.
func (h *Hub) BroadcastToUser(userID string, event WSEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("userId", userID).Msg("Failed to marshal WebSocket event")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.byUser[userID] {
		select {
		case c.send <- data:
		default:
		}
	}
}

// ConnectionCount returns the number of open sockets.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.total
}

// GameSubscriberCount returns the number of sockets on a game channel.
func (h *Hub) GameSubscriberCount(gameID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.games[gameID])
}
