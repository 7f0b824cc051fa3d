package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// sweepInterval bounds how late a lapsed turn can be caught when Redis
// keyspace notifications are not delivered.
const sweepInterval = 10 * time.Second

// TimerListener ends AFK turns. The fast path is a Redis key-expiry
// notification on the game's timer key; the DB sweep is the safety net
// covering missed notifications and downtime.
type TimerListener struct {
	rdb     *redis.Client
	turnSvc *TurnService
}

func NewTimerListener(rdb *redis.Client, turnSvc *TurnService) *TimerListener {
	return &TimerListener{rdb: rdb, turnSvc: turnSvc}
}

// Start runs both paths until ctx is cancelled.
func (t *TimerListener) Start(ctx context.Context) {
	go t.listenKeyspace(ctx)
	t.sweepLoop(ctx)
}

func (t *TimerListener) listenKeyspace(ctx context.Context) {
	pubsub := t.rdb.PSubscribe(ctx, "__keyevent@0__:expired")
	defer pubsub.Close()

	log.Info().Msg("Timer listener started, listening for expired keys")
	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			t.handleExpiry(ctx, msg.Payload)
		}
	}
}

func (t *TimerListener) sweepLoop(ctx context.Context) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	log.Info().Dur("interval", sweepInterval).Msg("Turn deadline sweeper started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Turn deadline sweeper stopped")
			return
		case <-ticker.C:
			t.turnSvc.SweepExpiredTurns(ctx)
		}
	}
}

// handleExpiry reacts to "game:{id}:timer" keys and ignores every other
// expired key in the database.
func (t *TimerListener) handleExpiry(ctx context.Context, key string) {
	if !strings.HasPrefix(key, "game:") || !strings.HasSuffix(key, ":timer") {
		return
	}
	parts := strings.SplitN(key, ":", 3)
	if len(parts) != 3 {
		return
	}
	gameID := parts[1]

	log.Info().Str("gameId", gameID).Msg("Turn timer expired")
	if err := t.turnSvc.ForceEndTurn(ctx, gameID); err != nil && !errors.Is(err, ErrNoSession) {
		log.Error().Err(err).Str("gameId", gameID).Msg("Failed to end turn after timer expiry")
	}
}
