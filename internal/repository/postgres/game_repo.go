package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/j8kin/fantasy-empires-wars/internal/model"
)

// GameRepo handles game and game_player database operations.
type GameRepo struct {
	db *sql.DB
}

// NewGameRepo creates a GameRepo.
func NewGameRepo(db *sql.DB) *GameRepo {
	return &GameRepo{db: db}
}

// Create inserts a new game.
func (r *GameRepo) Create(ctx context.Context, name, creatorID, turnDur string, rows, cols int) (*model.Game, error) {
	var g model.Game
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO games (name, creator_id, turn_duration, map_rows, map_cols)
		 VALUES ($1, $2, $3::interval, $4, $5)
		 RETURNING id, name, creator_id, status, turn_duration, map_rows, map_cols, created_at`,
		name, creatorID, turnDur, rows, cols,
	).Scan(&g.ID, &g.Name, &g.CreatorID, &g.Status, &g.TurnDuration, &g.MapRows, &g.MapCols, &g.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create game: %w", err)
	}
	return &g, nil
}

// FindByID returns a game by ID with its players.
func (r *GameRepo) FindByID(ctx context.Context, id string) (*model.Game, error) {
	var g model.Game
	var winner sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, creator_id, status, winner, turn_duration, map_rows, map_cols,
		        created_at, started_at, finished_at
		 FROM games WHERE id = $1`, id,
	).Scan(&g.ID, &g.Name, &g.CreatorID, &g.Status, &winner, &g.TurnDuration, &g.MapRows, &g.MapCols,
		&g.CreatedAt, &g.StartedAt, &g.FinishedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find game: %w", err)
	}
	g.Winner = winner.String

	players, err := r.ListPlayers(ctx, id)
	if err != nil {
		return nil, err
	}
	g.Players = players
	return &g, nil
}

// ListOpen returns games in "waiting" status.
func (r *GameRepo) ListOpen(ctx context.Context) ([]model.Game, error) {
	return r.listByStatus(ctx,
		`SELECT id, name, creator_id, status, winner, turn_duration, map_rows, map_cols, created_at, started_at, finished_at
		 FROM games WHERE status = 'waiting' ORDER BY created_at DESC LIMIT 50`)
}

// ListByUser returns all games a user is part of (as player or creator).
func (r *GameRepo) ListByUser(ctx context.Context, userID string) ([]model.Game, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT g.id, g.name, g.creator_id, g.status, g.winner, g.turn_duration, g.map_rows, g.map_cols,
		        g.created_at, g.started_at, g.finished_at
		 FROM games g LEFT JOIN game_players gp ON g.id = gp.game_id AND gp.user_id = $1
		 WHERE gp.user_id = $1 OR g.creator_id = $1
		 ORDER BY g.created_at DESC LIMIT 50`, userID)
	if err != nil {
		return nil, fmt.Errorf("list user games: %w", err)
	}
	defer rows.Close()
	return scanGames(rows)
}

// ListFinished returns all finished games, most recent first.
func (r *GameRepo) ListFinished(ctx context.Context) ([]model.Game, error) {
	return r.listByStatus(ctx,
		`SELECT id, name, creator_id, status, winner, turn_duration, map_rows, map_cols, created_at, started_at, finished_at
		 FROM games WHERE status = 'finished' ORDER BY finished_at DESC LIMIT 100`)
}

// ListActive returns all games with status 'active', including their players.
func (r *GameRepo) ListActive(ctx context.Context) ([]model.Game, error) {
	games, err := r.listByStatus(ctx,
		`SELECT id, name, creator_id, status, winner, turn_duration, map_rows, map_cols, created_at, started_at, finished_at
		 FROM games WHERE status = 'active' ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	for i := range games {
		players, err := r.ListPlayers(ctx, games[i].ID)
		if err != nil {
			return nil, err
		}
		games[i].Players = players
	}
	return games, nil
}

func (r *GameRepo) listByStatus(ctx context.Context, query string) ([]model.Game, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	defer rows.Close()
	return scanGames(rows)
}

func scanGames(rows *sql.Rows) ([]model.Game, error) {
	var games []model.Game
	for rows.Next() {
		var g model.Game
		var winner sql.NullString
		if err := rows.Scan(&g.ID, &g.Name, &g.CreatorID, &g.Status, &winner, &g.TurnDuration, &g.MapRows, &g.MapCols,
			&g.CreatedAt, &g.StartedAt, &g.FinishedAt); err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		g.Winner = winner.String
		games = append(games, g)
	}
	return games, rows.Err()
}

// ListPlayers returns all seats in a game in join order.
func (r *GameRepo) ListPlayers(ctx context.Context, gameID string) ([]model.GamePlayer, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT game_id, user_id, seat_id, empire_name, class, is_computer, joined_at
		 FROM game_players WHERE game_id = $1 ORDER BY joined_at`,
		gameID,
	)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	defer rows.Close()

	var players []model.GamePlayer
	for rows.Next() {
		var p model.GamePlayer
		var seat sql.NullString
		if err := rows.Scan(&p.GameID, &p.UserID, &seat, &p.EmpireName, &p.Class, &p.IsComputer, &p.JoinedAt); err != nil {
			return nil, fmt.Errorf("scan player: %w", err)
		}
		p.SeatID = seat.String
		players = append(players, p)
	}
	return players, rows.Err()
}

// JoinGame adds a human player to a game.
func (r *GameRepo) JoinGame(ctx context.Context, gameID, userID, empireName, class string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO game_players (game_id, user_id, empire_name, class) VALUES ($1, $2, $3, $4)
		 ON CONFLICT DO NOTHING`,
		gameID, userID, empireName, class,
	)
	if err != nil {
		return fmt.Errorf("join game: %w", err)
	}
	return nil
}

// JoinGameAsComputer adds a computer-controlled empire to a game.
func (r *GameRepo) JoinGameAsComputer(ctx context.Context, gameID, userID, empireName, class string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO game_players (game_id, user_id, empire_name, class, is_computer) VALUES ($1, $2, $3, $4, true)
		 ON CONFLICT DO NOTHING`,
		gameID, userID, empireName, class,
	)
	if err != nil {
		return fmt.Errorf("join game as computer: %w", err)
	}
	return nil
}

// ReplaceComputer atomically removes one computer seat and inserts the human player.
func (r *GameRepo) ReplaceComputer(ctx context.Context, gameID, newUserID, empireName, class string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var computerUserID string
	err = tx.QueryRowContext(ctx,
		`SELECT user_id FROM game_players WHERE game_id = $1 AND is_computer = true LIMIT 1`,
		gameID,
	).Scan(&computerUserID)
	if err != nil {
		return fmt.Errorf("find computer seat to replace: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`DELETE FROM game_players WHERE game_id = $1 AND user_id = $2`,
		gameID, computerUserID,
	)
	if err != nil {
		return fmt.Errorf("remove computer seat: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO game_players (game_id, user_id, empire_name, class) VALUES ($1, $2, $3, $4)`,
		gameID, newUserID, empireName, class,
	)
	if err != nil {
		return fmt.Errorf("insert human: %w", err)
	}

	return tx.Commit()
}

// PlayerCount returns the number of seats in a game.
func (r *GameRepo) PlayerCount(ctx context.Context, gameID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM game_players WHERE game_id = $1`, gameID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("player count: %w", err)
	}
	return count, nil
}

// AssignSeats maps each user to an engine seat ID and activates the game.
func (r *GameRepo) AssignSeats(ctx context.Context, gameID string, seats map[string]string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for userID, seatID := range seats {
		_, err := tx.ExecContext(ctx,
			`UPDATE game_players SET seat_id = $1 WHERE game_id = $2 AND user_id = $3`,
			seatID, gameID, userID,
		)
		if err != nil {
			return fmt.Errorf("assign seat: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE games SET status = 'active', started_at = now() WHERE id = $1`, gameID,
	)
	if err != nil {
		return fmt.Errorf("update game status: %w", err)
	}

	return tx.Commit()
}

// Delete removes a game and all associated data (cascades to players, turns, commands, messages).
func (r *GameRepo) Delete(ctx context.Context, gameID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM games WHERE id = $1`, gameID)
	if err != nil {
		return fmt.Errorf("delete game: %w", err)
	}
	return nil
}

// SetFinished marks a game as finished.
func (r *GameRepo) SetFinished(ctx context.Context, gameID, winner string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE games SET status = 'finished', winner = $1, finished_at = now() WHERE id = $2`,
		winner, gameID,
	)
	if err != nil {
		return fmt.Errorf("set finished: %w", err)
	}
	return nil
}
