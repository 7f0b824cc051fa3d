package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/j8kin/fantasy-empires-wars/internal/model"
)

// TurnRepo handles turn and command database operations.
type TurnRepo struct {
	db *sql.DB
}

// NewTurnRepo creates a TurnRepo.
func NewTurnRepo(db *sql.DB) *TurnRepo {
	return &TurnRepo{db: db}
}

// CreateTurn inserts a new turn with its starting snapshot.
func (r *TurnRepo) CreateTurn(ctx context.Context, gameID string, number int, owner string, stateBefore json.RawMessage, deadline time.Time) (*model.Turn, error) {
	var t model.Turn
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO turns (game_id, number, owner, state_before, deadline)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, game_id, number, owner, state_before, deadline, created_at`,
		gameID, number, owner, stateBefore, deadline,
	).Scan(&t.ID, &t.GameID, &t.Number, &t.Owner, &t.StateBefore, &t.Deadline, &t.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create turn: %w", err)
	}
	return &t, nil
}

// CurrentTurn returns the latest unresolved turn for a game.
func (r *TurnRepo) CurrentTurn(ctx context.Context, gameID string) (*model.Turn, error) {
	var t model.Turn
	var stateAfter sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT id, game_id, number, owner, state_before, state_after, deadline, resolved_at, created_at
		 FROM turns WHERE game_id = $1 AND resolved_at IS NULL
		 ORDER BY created_at DESC LIMIT 1`, gameID,
	).Scan(&t.ID, &t.GameID, &t.Number, &t.Owner, &t.StateBefore, &stateAfter, &t.Deadline, &t.ResolvedAt, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("current turn: %w", err)
	}
	if stateAfter.Valid {
		t.StateAfter = json.RawMessage(stateAfter.String)
	}
	return &t, nil
}

// ListTurns returns all turns for a game in play order.
func (r *TurnRepo) ListTurns(ctx context.Context, gameID string) ([]model.Turn, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, game_id, number, owner, state_before, state_after, deadline, resolved_at, created_at
		 FROM turns WHERE game_id = $1
		 ORDER BY number, created_at`, gameID,
	)
	if err != nil {
		return nil, fmt.Errorf("list turns: %w", err)
	}
	defer rows.Close()

	var turns []model.Turn
	for rows.Next() {
		var t model.Turn
		var stateAfter sql.NullString
		if err := rows.Scan(&t.ID, &t.GameID, &t.Number, &t.Owner, &t.StateBefore, &stateAfter, &t.Deadline, &t.ResolvedAt, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		if stateAfter.Valid {
			t.StateAfter = json.RawMessage(stateAfter.String)
		}
		turns = append(turns, t)
	}
	return turns, rows.Err()
}

// ResolveTurn marks a turn as resolved and stores the resulting state.
func (r *TurnRepo) ResolveTurn(ctx context.Context, turnID string, stateAfter json.RawMessage) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE turns SET state_after = $1, resolved_at = now() WHERE id = $2`,
		stateAfter, turnID,
	)
	if err != nil {
		return fmt.Errorf("resolve turn: %w", err)
	}
	return nil
}

// SaveCommand inserts a command with its result for a turn.
func (r *TurnRepo) SaveCommand(ctx context.Context, cmd model.Command) (*model.Command, error) {
	var c model.Command
	var payload sql.NullString
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO commands (turn_id, seat, kind, payload, result)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, turn_id, seat, kind, payload, result, created_at`,
		cmd.TurnID, cmd.Seat, cmd.Kind, nullRaw(cmd.Payload), cmd.Result,
	).Scan(&c.ID, &c.TurnID, &c.Seat, &c.Kind, &payload, &c.Result, &c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("save command: %w", err)
	}
	if payload.Valid {
		c.Payload = json.RawMessage(payload.String)
	}
	return &c, nil
}

// CommandsByTurn returns all commands issued during a turn.
func (r *TurnRepo) CommandsByTurn(ctx context.Context, turnID string) ([]model.Command, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, turn_id, seat, kind, payload, result, created_at
		 FROM commands WHERE turn_id = $1 ORDER BY created_at`, turnID,
	)
	if err != nil {
		return nil, fmt.Errorf("commands by turn: %w", err)
	}
	defer rows.Close()

	var cmds []model.Command
	for rows.Next() {
		var c model.Command
		var payload sql.NullString
		if err := rows.Scan(&c.ID, &c.TurnID, &c.Seat, &c.Kind, &payload, &c.Result, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan command: %w", err)
		}
		if payload.Valid {
			c.Payload = json.RawMessage(payload.String)
		}
		cmds = append(cmds, c)
	}
	return cmds, rows.Err()
}

// ListExpired returns the latest unresolved turn per active game whose
// deadline has passed. DISTINCT ON skips orphaned older rows.
func (r *TurnRepo) ListExpired(ctx context.Context) ([]model.Turn, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT ON (t.game_id) t.id, t.game_id, t.number, t.owner, t.state_before, t.deadline, t.created_at
		 FROM turns t
		 JOIN games g ON g.id = t.game_id
		 WHERE t.resolved_at IS NULL AND t.deadline < now() AND g.status = 'active'
		 ORDER BY t.game_id, t.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list expired turns: %w", err)
	}
	defer rows.Close()

	var turns []model.Turn
	for rows.Next() {
		var t model.Turn
		if err := rows.Scan(&t.ID, &t.GameID, &t.Number, &t.Owner, &t.StateBefore, &t.Deadline, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan expired turn: %w", err)
		}
		turns = append(turns, t)
	}
	return turns, rows.Err()
}

func nullStr(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullRaw(raw json.RawMessage) sql.NullString {
	if len(raw) == 0 {
		return sql.NullString{}
	}
	return sql.NullString{String: string(raw), Valid: true}
}
