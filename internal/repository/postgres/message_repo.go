package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/j8kin/fantasy-empires-wars/internal/model"
)

// MessageRepo stores diplomacy chat. Messages are either public to the
// whole game or whispered to one empire, and each is stamped with the
// turn during which it was sent.
type MessageRepo struct {
	db *sql.DB
}

func NewMessageRepo(db *sql.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// Create inserts a message. Empty recipientID means a public broadcast;
// empty turnID means the game has no open turn (lobby chat).
func (r *MessageRepo) Create(ctx context.Context, gameID, senderID, recipientID, content, turnID string) (*model.Message, error) {
	var m model.Message
	var recip, turn sql.NullString
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO messages (game_id, sender_id, recipient_id, content, turn_id)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, game_id, sender_id, recipient_id, content, turn_id, created_at`,
		gameID, senderID, nullStr(recipientID), content, nullStr(turnID),
	).Scan(&m.ID, &m.GameID, &m.SenderID, &recip, &m.Content, &turn, &m.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}
	m.RecipientID = recip.String
	m.TurnID = turn.String
	return &m, nil
}

// ListByGame returns the chat a player may read: everything public plus
// whispers they sent or received, oldest first.
func (r *MessageRepo) ListByGame(ctx context.Context, gameID, userID string) ([]model.Message, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, game_id, sender_id, COALESCE(recipient_id::text, ''), content, COALESCE(turn_id::text, ''), created_at
		 FROM messages
		 WHERE game_id = $1 AND (recipient_id IS NULL OR sender_id = $2 OR recipient_id = $2)
		 ORDER BY created_at`, gameID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var messages []model.Message
	for rows.Next() {
		var m model.Message
		if err := rows.Scan(&m.ID, &m.GameID, &m.SenderID, &m.RecipientID, &m.Content, &m.TurnID, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
