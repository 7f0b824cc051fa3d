package service

import (
	"context"
	"testing"

	"github.com/j8kin/fantasy-empires-wars/internal/model"
	"github.com/j8kin/fantasy-empires-wars/pkg/engine"
)

// launchTestGame creates a started game (1 human creator + 1 computer)
// on a virtual scheduler and drains it to the first human MAIN phase.
func launchTestGame(t *testing.T) (*TurnService, *mockTurnRepo, *mockGameRepo, *mockCache, *engine.VirtualScheduler, *model.Game) {
	t.Helper()

	gameRepo := newMockGameRepo()
	turnRepo := newMockTurnRepo()
	cache := newMockCache()
	gameSvc := NewGameService(gameRepo, newMockUserRepo())

	game, err := gameSvc.CreateGame(context.Background(), "Test", "user-1", "10m", "Verdant Realm", "warlord", 5, 6, 1)
	if err != nil {
		t.Fatalf("CreateGame: %v", err)
	}
	started, err := gameSvc.StartGame(context.Background(), game.ID, "user-1")
	if err != nil {
		t.Fatalf("StartGame: %v", err)
	}

	svc := NewTurnService(gameRepo, turnRepo, cache, nil)
	vs := engine.NewVirtualScheduler()
	svc.SetSchedulerFactory(func() engine.Scheduler { return vs })

	if err := svc.Launch(context.Background(), started); err != nil {
		t.Fatalf("Launch: %v", err)
	}
	vs.RunAll()
	return svc, turnRepo, gameRepo, cache, vs, started
}

func TestLaunchReachesHumanMain(t *testing.T) {
	svc, turnRepo, _, cache, _, game := launchTestGame(t)

	err := svc.WithState(game.ID, func(gs *engine.GameState, _ engine.Rand) error {
		if gs.TurnPhase != engine.PhaseMain {
			t.Errorf("phase = %s, want main", gs.TurnPhase)
		}
		if gs.TurnOwner != "player-1" {
			t.Errorf("owner = %s, want player-1", gs.TurnOwner)
		}
		if gs.Turn != 2 {
			t.Errorf("turn = %d, want 2", gs.Turn)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithState: %v", err)
	}

	// Turn 1 for both seats plus turn 2 for the human: three rows, the
	// first two resolved.
	if len(turnRepo.turns) != 3 {
		t.Errorf("turn rows = %d, want 3", len(turnRepo.turns))
	}
	if got := turnRepo.resolvedCount(); got != 2 {
		t.Errorf("resolved rows = %d, want 2", got)
	}
	if cache.states[game.ID] == nil {
		t.Error("expected cached game state")
	}
	if _, ok := cache.timers[game.ID]; !ok {
		t.Error("expected a turn deadline timer")
	}
}

func TestEndTurnRotatesThroughComputer(t *testing.T) {
	svc, _, _, _, vs, game := launchTestGame(t)

	if err := svc.EndTurn(context.Background(), game.ID, "player-1"); err != nil {
		t.Fatalf("EndTurn: %v", err)
	}
	vs.RunAll()

	svc.WithState(game.ID, func(gs *engine.GameState, _ engine.Rand) error {
		if gs.Turn != 3 || gs.TurnOwner != "player-1" || gs.TurnPhase != engine.PhaseMain {
			t.Errorf("got turn %d owner %s phase %s, want turn 3 player-1 main",
				gs.Turn, gs.TurnOwner, gs.TurnPhase)
		}
		return nil
	})
}

func TestEndTurnWrongSeat(t *testing.T) {
	svc, _, _, _, _, game := launchTestGame(t)

	if err := svc.EndTurn(context.Background(), game.ID, "player-2"); err != ErrNotOwner {
		t.Errorf("expected ErrNotOwner, got %v", err)
	}
}

func TestEndTurnNoSession(t *testing.T) {
	svc := NewTurnService(newMockGameRepo(), newMockTurnRepo(), newMockCache(), nil)

	if err := svc.EndTurn(context.Background(), "nope", "player-1"); err != ErrNoSession {
		t.Errorf("expected ErrNoSession, got %v", err)
	}
}

func TestForceEndTurnAdvances(t *testing.T) {
	svc, _, _, _, vs, game := launchTestGame(t)

	if err := svc.ForceEndTurn(context.Background(), game.ID); err != nil {
		t.Fatalf("ForceEndTurn: %v", err)
	}
	vs.RunAll()

	svc.WithState(game.ID, func(gs *engine.GameState, _ engine.Rand) error {
		if gs.Turn != 3 {
			t.Errorf("turn = %d, want 3 after forced end", gs.Turn)
		}
		return nil
	})
}

func TestGameOverVictory(t *testing.T) {
	svc, _, gameRepo, cache, vs, game := launchTestGame(t)

	// Wipe the computer empire so ending the turn triggers victory.
	svc.WithState(game.ID, func(gs *engine.GameState, _ engine.Rand) error {
		cpu := gs.Player("player-2")
		cpu.LandsOwned = map[string]bool{}
		for _, a := range gs.ArmiesOf("player-2") {
			gs.RemoveArmy(a.ID)
		}
		return nil
	})

	if err := svc.EndTurn(context.Background(), game.ID, "player-1"); err != nil {
		t.Fatalf("EndTurn: %v", err)
	}
	vs.RunAll()

	g, _ := gameRepo.FindByID(context.Background(), game.ID)
	if g.Status != "finished" {
		t.Fatalf("status = %s, want finished", g.Status)
	}
	if g.Winner != "Verdant Realm" {
		t.Errorf("winner = %q, want Verdant Realm", g.Winner)
	}
	if err := svc.EndTurn(context.Background(), game.ID, "player-1"); err != ErrNoSession {
		t.Errorf("expected ErrNoSession after game over, got %v", err)
	}
	if cache.states[game.ID] != nil {
		t.Error("expected cached game data to be deleted")
	}
}

func TestSnapshotPrefersCache(t *testing.T) {
	svc, _, _, cache, _, game := launchTestGame(t)

	state, err := svc.Snapshot(context.Background(), game.ID)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if string(state) != string(cache.states[game.ID]) {
		t.Error("expected the cached snapshot")
	}
}

func TestStopGame(t *testing.T) {
	svc, _, _, _, _, game := launchTestGame(t)

	result, err := svc.StopGame(context.Background(), game.ID, "user-1")
	if err != nil {
		t.Fatalf("StopGame: %v", err)
	}
	if result.Status != "finished" || result.Winner != "" {
		t.Errorf("got status %s winner %q, want finished with no winner", result.Status, result.Winner)
	}
	if err := svc.EndTurn(context.Background(), game.ID, "player-1"); err != ErrNoSession {
		t.Errorf("expected session to be gone, got %v", err)
	}
}

func TestStopGameNotCreator(t *testing.T) {
	svc, _, _, _, _, game := launchTestGame(t)

	if _, err := svc.StopGame(context.Background(), game.ID, "user-2"); err != ErrNotCreator {
		t.Errorf("expected ErrNotCreator, got %v", err)
	}
}

func TestRecoverActiveGames(t *testing.T) {
	svc, turnRepo, gameRepo, cache, _, game := launchTestGame(t)

	// Simulate a restart: drop the live session but keep the rows.
	svc.sessions.Delete(game.ID)
	delete(cache.states, game.ID)
	rowsBefore := len(turnRepo.turns)

	recovered := NewTurnService(gameRepo, turnRepo, cache, nil)
	vs2 := engine.NewVirtualScheduler()
	recovered.SetSchedulerFactory(func() engine.Scheduler { return vs2 })

	if err := recovered.RecoverActiveGames(context.Background()); err != nil {
		t.Fatalf("RecoverActiveGames: %v", err)
	}
	vs2.RunAll()

	err := recovered.WithState(game.ID, func(gs *engine.GameState, _ engine.Rand) error {
		if gs.Turn != 2 || gs.TurnOwner != "player-1" || gs.TurnPhase != engine.PhaseMain {
			t.Errorf("recovered to turn %d owner %s phase %s, want turn 2 player-1 main",
				gs.Turn, gs.TurnOwner, gs.TurnPhase)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithState after recovery: %v", err)
	}
	if len(turnRepo.turns) != rowsBefore {
		t.Errorf("recovery must reuse the open turn row, rows went %d -> %d", rowsBefore, len(turnRepo.turns))
	}
	if cache.states[game.ID] == nil {
		t.Error("expected game state to be rehydrated into the cache")
	}

	// Play continues on the recovered session.
	if err := recovered.EndTurn(context.Background(), game.ID, "player-1"); err != nil {
		t.Fatalf("EndTurn after recovery: %v", err)
	}
}

func TestBroadcastsTurnLifecycle(t *testing.T) {
	gameRepo := newMockGameRepo()
	turnRepo := newMockTurnRepo()
	cache := newMockCache()
	gameSvc := NewGameService(gameRepo, newMockUserRepo())

	game, _ := gameSvc.CreateGame(context.Background(), "Test", "user-1", "10m", "X", "warlord", 5, 6, 1)
	started, _ := gameSvc.StartGame(context.Background(), game.ID, "user-1")

	b := &recordingBroadcaster{}
	svc := NewTurnService(gameRepo, turnRepo, cache, b)
	vs := engine.NewVirtualScheduler()
	svc.SetSchedulerFactory(func() engine.Scheduler { return vs })

	if err := svc.Launch(context.Background(), started); err != nil {
		t.Fatalf("Launch: %v", err)
	}
	vs.RunAll()

	for _, want := range []string{"turn_started", "phase_changed", "progress", "progress_hidden"} {
		if !b.has(want) {
			t.Errorf("expected %q event to be broadcast", want)
		}
	}
}
