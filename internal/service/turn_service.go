package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/j8kin/fantasy-empires-wars/internal/ai"
	"github.com/j8kin/fantasy-empires-wars/internal/model"
	"github.com/j8kin/fantasy-empires-wars/internal/repository"
	"github.com/j8kin/fantasy-empires-wars/pkg/engine"
)

var (
	ErrNoSession = errors.New("game has no running session")
	ErrNotOwner  = errors.New("it is not your turn")
)

// persistTimeout bounds the repo writes done from inside engine
// callbacks, which carry no request context.
const persistTimeout = 10 * time.Second

// session is one live game: the engine turn machine plus the
// bookkeeping needed to persist it. The mutex serializes HTTP commands
// against scheduler continuations; engine callbacks always run with it
// held.
type session struct {
	mu      sync.Mutex
	gameID  string
	seats   []string
	turnDur time.Duration
	tm      *engine.TurnManager

	// turnID is the unresolved turns row for the turn in progress.
	// resumeTurnID carries an existing row through recovery so the
	// first START callback reuses it instead of creating a duplicate.
	turnID         string
	resumeTurnID   string
	resumeNumber   int
	resumeDeadline time.Time

	// rng is the session's random source, shared by the turn machine
	// and by commands that roll dice (spells, items).
	rng engine.Rand
}

// TurnService runs active games: it owns the live engine sessions,
// persists a turn row per (turn, owner), mirrors state into Redis and
// force-ends human turns when their deadline timer fires.
type TurnService struct {
	gameRepo    repository.GameRepository
	turnRepo    repository.TurnRepository
	cache       repository.GameCache
	broadcaster Broadcaster

	sessions sync.Map // gameID -> *session

	// schedFactory builds the scheduler behind each session. Tests
	// inject a virtual scheduler here.
	schedFactory func() engine.Scheduler
	phaseDelay   time.Duration
}

// NewTurnService creates a TurnService running on real timers.
func NewTurnService(
	gameRepo repository.GameRepository,
	turnRepo repository.TurnRepository,
	cache repository.GameCache,
	broadcaster Broadcaster,
) *TurnService {
	if broadcaster == nil {
		broadcaster = NoopBroadcaster{}
	}
	return &TurnService{
		gameRepo:     gameRepo,
		turnRepo:     turnRepo,
		cache:        cache,
		broadcaster:  broadcaster,
		schedFactory: func() engine.Scheduler { return engine.NewRealScheduler() },
		phaseDelay:   engine.DefaultPhaseDelay,
	}
}

// SetSchedulerFactory replaces the scheduler behind new sessions.
func (s *TurnService) SetSchedulerFactory(f func() engine.Scheduler) {
	s.schedFactory = f
}

// lockedScheduler wraps a scheduler so continuations run holding the
// session mutex, serializing them against in-flight commands.
type lockedScheduler struct {
	inner engine.Scheduler
	mu    *sync.Mutex
}

func (l *lockedScheduler) Schedule(delay time.Duration, fn func()) {
	l.inner.Schedule(delay, func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		fn()
	})
}

func (l *lockedScheduler) Stop() { l.inner.Stop() }

// Launch boots the engine for a just-started game and runs its first
// turn. The game must already have seats assigned.
func (s *TurnService) Launch(ctx context.Context, game *model.Game) error {
	gs := engine.NewGame(EngineSetup(game), engine.NewRand(seedFromID(game.ID)))
	sess := s.newSession(game, gs, nil)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	s.sessions.Store(game.ID, sess)
	sess.tm.Start()
	return nil
}

// RecoverActiveGames rebuilds sessions for every active game from its
// persisted pre-turn snapshot. Called on server startup; the current
// turn of each game replays from its beginning.
func (s *TurnService) RecoverActiveGames(ctx context.Context) error {
	games, err := s.gameRepo.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("list active games: %w", err)
	}
	if len(games) == 0 {
		log.Info().Msg("No active games to recover")
		return nil
	}
	log.Info().Int("count", len(games)).Msg("Recovering active games after restart")

	for i := range games {
		game := &games[i]
		turn, err := s.turnRepo.CurrentTurn(ctx, game.ID)
		if err != nil {
			log.Error().Err(err).Str("gameId", game.ID).Msg("Failed to load current turn during recovery")
			continue
		}
		if turn == nil {
			log.Warn().Str("gameId", game.ID).Msg("Active game has no open turn, skipping")
			continue
		}

		var gs engine.GameState
		if err := json.Unmarshal(turn.StateBefore, &gs); err != nil {
			log.Error().Err(err).Str("gameId", game.ID).Msg("Failed to unmarshal snapshot during recovery")
			continue
		}

		sess := s.newSession(game, &gs, turn)
		sess.mu.Lock()
		s.sessions.Store(game.ID, sess)
		sess.tm.Start()
		sess.mu.Unlock()

		log.Info().Str("gameId", game.ID).Int("turn", turn.Number).
			Str("owner", turn.Owner).Msg("Recovered game session")
	}
	return nil
}

// newSession wires a turn machine over gs with callbacks that persist
// and broadcast everything the machine does.
func (s *TurnService) newSession(game *model.Game, gs *engine.GameState, resume *model.Turn) *session {
	sess := &session{
		gameID:  game.ID,
		turnDur: parseDuration(game.TurnDuration),
	}
	if resume != nil {
		sess.resumeTurnID = resume.ID
		sess.resumeNumber = resume.Number
		sess.resumeDeadline = resume.Deadline
	}
	for _, p := range gs.Players {
		sess.seats = append(sess.seats, p.ID)
	}

	sched := &lockedScheduler{inner: s.schedFactory(), mu: &sess.mu}
	sess.rng = engine.NewRand(seedFromID(game.ID))
	rng := sess.rng

	cb := engine.Callbacks{
		OnTurnPhaseChange: func(gs *engine.GameState, phase engine.TurnPhase) {
			s.handlePhase(sess, gs, phase)
		},
		OnEmpireEventResult: func(events []engine.EmpireEvent) {
			s.broadcaster.BroadcastGameEvent(sess.gameID, "empire_events", events)
		},
		OnStartProgress: func(message string) {
			s.broadcaster.BroadcastGameEvent(sess.gameID, "progress", map[string]any{"message": message})
		},
		OnHideProgress: func() {
			s.broadcaster.BroadcastGameEvent(sess.gameID, "progress_hidden", nil)
		},
		OnGameOver: func(message string) {
			s.handleGameOver(sess, message)
		},
		OnComputerMainTurn: func(gs *engine.GameState) {
			seat := gs.TurnOwner
			ai.StrategyFor("greedy").PlayMainTurn(gs, seat, rng)
		},
	}

	sess.tm = engine.NewTurnManager(gs, rng, sched, cb)
	sess.tm.PhaseDelay = s.phaseDelay
	return sess
}

// handlePhase persists the turn row cycle. Each START closes the
// previous row with a post-resolution snapshot and opens the next with
// the pre-turn snapshot and its command deadline. Runs with the
// session mutex held.
func (s *TurnService) handlePhase(sess *session, gs *engine.GameState, phase engine.TurnPhase) {
	defer s.broadcaster.BroadcastGameEvent(sess.gameID, "phase_changed", map[string]any{
		"turn":  gs.Turn,
		"owner": gs.TurnOwner,
		"phase": string(phase),
	})

	if phase != engine.PhaseStart {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	snapshot, err := json.Marshal(gs)
	if err != nil {
		log.Error().Err(err).Str("gameId", sess.gameID).Msg("Failed to marshal turn snapshot")
		return
	}

	if sess.resumeTurnID != "" && gs.Turn == sess.resumeNumber {
		// Recovery replays the persisted turn; reuse its row. An
		// already-lapsed deadline gets a short extension so the
		// returning owner is not cut off mid-recovery.
		sess.turnID = sess.resumeTurnID
		sess.resumeTurnID = ""
		deadline := sess.resumeDeadline
		if !deadline.After(time.Now()) {
			deadline = time.Now().Add(time.Minute)
		}
		if err := s.cache.SetTimer(ctx, sess.gameID, deadline); err != nil {
			log.Error().Err(err).Str("gameId", sess.gameID).Msg("Failed to restore turn timer")
		}
	} else {
		if sess.turnID != "" {
			if err := s.turnRepo.ResolveTurn(ctx, sess.turnID, snapshot); err != nil {
				log.Error().Err(err).Str("gameId", sess.gameID).Msg("Failed to resolve turn row")
			}
		}
		deadline := time.Now().Add(sess.turnDur)
		turn, err := s.turnRepo.CreateTurn(ctx, sess.gameID, gs.Turn, gs.TurnOwner, snapshot, deadline)
		if err != nil {
			log.Error().Err(err).Str("gameId", sess.gameID).Msg("Failed to create turn row")
			return
		}
		sess.turnID = turn.ID
		if err := s.cache.SetTimer(ctx, sess.gameID, deadline); err != nil {
			log.Error().Err(err).Str("gameId", sess.gameID).Msg("Failed to set turn timer")
		}
		if err := s.cache.ClearTurnData(ctx, sess.gameID, sess.seats); err != nil {
			log.Warn().Err(err).Str("gameId", sess.gameID).Msg("Failed to clear turn journals")
		}
		s.broadcaster.BroadcastGameEvent(sess.gameID, "turn_started", map[string]any{
			"turn":     gs.Turn,
			"owner":    gs.TurnOwner,
			"deadline": deadline.Format(time.RFC3339),
		})
	}

	if err := s.cache.SetGameState(ctx, sess.gameID, snapshot); err != nil {
		log.Error().Err(err).Str("gameId", sess.gameID).Msg("Failed to cache game state")
	}
}

// handleGameOver finishes the game: resolve the open turn row, record
// the winner, drop the cache and forget the session. Runs with the
// session mutex held.
func (s *TurnService) handleGameOver(sess *session, message string) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	gs := sess.tm.State()
	if snapshot, err := json.Marshal(gs); err == nil && sess.turnID != "" {
		if err := s.turnRepo.ResolveTurn(ctx, sess.turnID, snapshot); err != nil {
			log.Error().Err(err).Str("gameId", sess.gameID).Msg("Failed to resolve final turn row")
		}
	}

	winner := ""
	for _, p := range gs.Players {
		if p.Type == engine.HumanPlayer && gs.IsAlive(p.ID) {
			winner = p.Profile.Name
			break
		}
	}

	if err := s.gameRepo.SetFinished(ctx, sess.gameID, winner); err != nil {
		log.Error().Err(err).Str("gameId", sess.gameID).Msg("Failed to mark game finished")
	}
	s.broadcaster.BroadcastGameEvent(sess.gameID, "game_ended", map[string]any{
		"winner":  winner,
		"message": message,
	})
	if err := s.cache.DeleteGameData(ctx, sess.gameID, sess.seats); err != nil {
		log.Warn().Err(err).Str("gameId", sess.gameID).Msg("Failed to delete cached game data")
	}

	s.sessions.Delete(sess.gameID)
	log.Info().Str("gameId", sess.gameID).Str("winner", winner).Msg("Game over")
}

func (s *TurnService) session(gameID string) (*session, error) {
	v, ok := s.sessions.Load(gameID)
	if !ok {
		return nil, ErrNoSession
	}
	return v.(*session), nil
}

// WithState runs fn against the live game state under the session
// lock, serialized against scheduled phase transitions.
func (s *TurnService) WithState(gameID string, fn func(gs *engine.GameState, rng engine.Rand) error) error {
	sess, err := s.session(gameID)
	if err != nil {
		return err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return fn(sess.tm.State(), sess.rng)
}

// CurrentTurnID returns the open turns row ID for a running game.
func (s *TurnService) CurrentTurnID(gameID string) (string, error) {
	sess, err := s.session(gameID)
	if err != nil {
		return "", err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.turnID, nil
}

// EndTurn ends the MAIN phase for the human seat that owns the turn.
func (s *TurnService) EndTurn(ctx context.Context, gameID, seat string) error {
	sess, err := s.session(gameID)
	if err != nil {
		return err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.tm.State().TurnOwner != seat {
		return ErrNotOwner
	}
	return sess.tm.EndCurrentTurn()
}

// ForceEndTurn ends the current turn regardless of seat. The timer
// listener calls it when a human lets the deadline lapse.
func (s *TurnService) ForceEndTurn(ctx context.Context, gameID string) error {
	sess, err := s.session(gameID)
	if err != nil {
		return err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if !sess.tm.CanEndTurn() {
		// Computer turns and phase transitions advance on their own.
		return nil
	}
	log.Info().Str("gameId", gameID).Str("owner", sess.tm.State().TurnOwner).
		Msg("Turn deadline reached, ending turn")
	return sess.tm.EndCurrentTurn()
}

// Snapshot returns the current game state JSON, preferring the cache
// and falling back to the live session.
func (s *TurnService) Snapshot(ctx context.Context, gameID string) (json.RawMessage, error) {
	state, err := s.cache.GetGameState(ctx, gameID)
	if err == nil && state != nil {
		return state, nil
	}
	sess, serr := s.session(gameID)
	if serr != nil {
		if err != nil {
			return nil, err
		}
		return nil, serr
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return json.Marshal(sess.tm.State())
}

// Shutdown tears a session down without finishing the game in the
// database. Used when the creator stops a game.
func (s *TurnService) Shutdown(ctx context.Context, gameID string) {
	sess, err := s.session(gameID)
	if err != nil {
		return
	}
	sess.mu.Lock()
	sess.tm.Teardown()
	sess.mu.Unlock()
	s.sessions.Delete(gameID)

	cctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := s.cache.DeleteGameData(cctx, gameID, sess.seats); err != nil {
		log.Warn().Err(err).Str("gameId", gameID).Msg("Failed to delete cached game data on shutdown")
	}
}

// StopGame ends an active game by creator request. The session is torn
// down and the game recorded as finished with no winner.
func (s *TurnService) StopGame(ctx context.Context, gameID, userID string) (*model.Game, error) {
	game, err := s.gameRepo.FindByID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game == nil {
		return nil, ErrGameNotFound
	}
	if game.Status != "active" {
		return nil, ErrGameNotActive
	}
	if game.CreatorID != userID {
		return nil, ErrNotCreator
	}

	s.Shutdown(ctx, gameID)
	if err := s.gameRepo.SetFinished(ctx, gameID, ""); err != nil {
		return nil, err
	}
	s.broadcaster.BroadcastGameEvent(gameID, "game_ended", map[string]any{
		"winner": "",
		"reason": "stopped",
	})
	return s.gameRepo.FindByID(ctx, gameID)
}

// SweepExpiredTurns force-ends every active game whose open turn is
// past its deadline. The polling fallback for lost Redis expiry events.
func (s *TurnService) SweepExpiredTurns(ctx context.Context) {
	turns, err := s.turnRepo.ListExpired(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list expired turns")
		return
	}
	for _, t := range turns {
		if err := s.ForceEndTurn(ctx, t.GameID); err != nil && !errors.Is(err, ErrNoSession) {
			log.Error().Err(err).Str("gameId", t.GameID).Msg("Failed to force-end expired turn")
		}
	}
}
