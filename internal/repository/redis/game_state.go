package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Key patterns for Redis game state.
func stateKey(gameID string) string          { return "game:" + gameID + ":state" }
func commandsKey(gameID, seat string) string { return "game:" + gameID + ":commands:" + seat }
func timerKey(gameID string) string          { return "game:" + gameID + ":timer" }

// SetGameState stores the live game state JSON.
func (c *Client) SetGameState(ctx context.Context, gameID string, state json.RawMessage) error {
	return c.rdb.Set(ctx, stateKey(gameID), []byte(state), 0).Err()
}

// GetGameState retrieves the live game state JSON.
func (c *Client) GetGameState(ctx context.Context, gameID string) (json.RawMessage, error) {
	data, err := c.rdb.Get(ctx, stateKey(gameID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get game state: %w", err)
	}
	return json.RawMessage(data), nil
}

// PushCommand appends a command to the seat's journal for the current turn.
func (c *Client) PushCommand(ctx context.Context, gameID, seat string, cmd json.RawMessage) error {
	return c.rdb.RPush(ctx, commandsKey(gameID, seat), []byte(cmd)).Err()
}

// ListCommands returns the seat's command journal in submission order.
func (c *Client) ListCommands(ctx context.Context, gameID, seat string) ([]json.RawMessage, error) {
	vals, err := c.rdb.LRange(ctx, commandsKey(gameID, seat), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list commands: %w", err)
	}
	cmds := make([]json.RawMessage, 0, len(vals))
	for _, v := range vals {
		cmds = append(cmds, json.RawMessage(v))
	}
	return cmds, nil
}

// turnGracePeriod is the extra time after the displayed deadline before
// the server ends the turn, giving players a few seconds of leeway.
const turnGracePeriod = 5 * time.Second

// SetTimer creates a timer key with a TTL. When the key expires,
// Redis keyspace notifications trigger the forced end of the turn.
// The TTL includes a grace period so the key expires slightly after the
// displayed deadline.
func (c *Client) SetTimer(ctx context.Context, gameID string, deadline time.Time) error {
	ttl := time.Until(deadline) + turnGracePeriod
	if ttl <= 0 {
		ttl = time.Second
	}
	return c.rdb.Set(ctx, timerKey(gameID), deadline.Unix(), ttl).Err()
}

// ClearTimer removes the timer for a game.
func (c *Client) ClearTimer(ctx context.Context, gameID string) error {
	return c.rdb.Del(ctx, timerKey(gameID)).Err()
}

// ClearTurnData removes command journals and the timer for a game.
// Called when the turn rotates to the next empire.
func (c *Client) ClearTurnData(ctx context.Context, gameID string, seats []string) error {
	keys := []string{timerKey(gameID)}
	for _, seat := range seats {
		keys = append(keys, commandsKey(gameID, seat))
	}
	return c.rdb.Del(ctx, keys...).Err()
}

// DeleteGameData removes all Redis data for a game (on game end).
func (c *Client) DeleteGameData(ctx context.Context, gameID string, seats []string) error {
	keys := []string{stateKey(gameID), timerKey(gameID)}
	for _, seat := range seats {
		keys = append(keys, commandsKey(gameID, seat))
	}
	return c.rdb.Del(ctx, keys...).Err()
}
