package model

import (
	"encoding/json"
	"time"
)

// User represents a registered user.
type User struct {
	ID          string    `json:"id"`
	Provider    string    `json:"provider"`
	ProviderID  string    `json:"provider_id"`
	DisplayName string    `json:"display_name"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Game represents a Fantasy Empires match.
type Game struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	CreatorID    string       `json:"creator_id"`
	Status       string       `json:"status"` // waiting, active, finished
	Winner       string       `json:"winner,omitempty"`
	TurnDuration string       `json:"turn_duration"`
	MapRows      int          `json:"map_rows"`
	MapCols      int          `json:"map_cols"`
	CreatedAt    time.Time    `json:"created_at"`
	StartedAt    *time.Time   `json:"started_at,omitempty"`
	FinishedAt   *time.Time   `json:"finished_at,omitempty"`
	Players      []GamePlayer `json:"players,omitempty"`
}

// GamePlayer represents a seat in a game. SeatID is the engine-side
// player identifier ("player-1", ...) assigned when the game starts.
type GamePlayer struct {
	GameID     string    `json:"game_id"`
	UserID     string    `json:"user_id"`
	SeatID     string    `json:"seat_id,omitempty"`
	EmpireName string    `json:"empire_name"`
	Class      string    `json:"class"`
	IsComputer bool      `json:"is_computer"`
	JoinedAt   time.Time `json:"joined_at"`
}

// Turn is one empire's turn: the state snapshot at its START phase,
// the snapshot after its END phase, and the deadline by which a human
// owner must finish before the server ends the turn for them.
type Turn struct {
	ID          string          `json:"id"`
	GameID      string          `json:"game_id"`
	Number      int             `json:"number"`
	Owner       string          `json:"owner"` // seat ID
	StateBefore json.RawMessage `json:"state_before"`
	StateAfter  json.RawMessage `json:"state_after,omitempty"`
	Deadline    time.Time       `json:"deadline"`
	ResolvedAt  *time.Time      `json:"resolved_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Command is a persisted player command (move, spell, quest, recruit,
// construct, diplomacy) and how the engine answered it.
type Command struct {
	ID        string          `json:"id"`
	TurnID    string          `json:"turn_id"`
	Seat      string          `json:"seat"`
	Kind      string          `json:"kind"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Result    string          `json:"result"` // accepted or the rejection reason
	CreatedAt time.Time       `json:"created_at"`
}

// Message represents an in-game diplomacy message.
type Message struct {
	ID          string    `json:"id"`
	GameID      string    `json:"game_id"`
	SenderID    string    `json:"sender_id"`
	RecipientID string    `json:"recipient_id,omitempty"` // empty = public broadcast
	Content     string    `json:"content"`
	TurnID      string    `json:"turn_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
