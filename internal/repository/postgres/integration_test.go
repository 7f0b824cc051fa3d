//go:build integration

package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/j8kin/fantasy-empires-wars/internal/model"
	"github.com/j8kin/fantasy-empires-wars/internal/testutil"
)

var testDB *sql.DB

func setup(t *testing.T) {
	t.Helper()
	testDB = testutil.SetupDB(t)
	testutil.CleanupDB(t, testDB)
}

func createTestUser(t *testing.T, suffix string) *model.User {
	t.Helper()
	repo := NewUserRepo(testDB)
	u, err := repo.Upsert(context.Background(), "test", "test-"+suffix, "Player "+suffix, "")
	if err != nil {
		t.Fatalf("upsert user: %v", err)
	}
	return u
}

func createTestGame(t *testing.T, creatorID string) *model.Game {
	t.Helper()
	repo := NewGameRepo(testDB)
	g, err := repo.Create(context.Background(), "Test Game", creatorID, "10 minutes", 9, 11)
	if err != nil {
		t.Fatalf("create game: %v", err)
	}
	return g
}

func TestUserUpsertCreates(t *testing.T) {
	setup(t)
	repo := NewUserRepo(testDB)

	u, err := repo.Upsert(context.Background(), "google", "goog-123", "Alice", "https://avatar/alice")
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if u.ID == "" {
		t.Fatal("expected non-empty ID")
	}
	if u.Provider != "google" || u.ProviderID != "goog-123" {
		t.Fatalf("unexpected provider data: %s / %s", u.Provider, u.ProviderID)
	}
}

func TestUserUpsertUpdates(t *testing.T) {
	setup(t)
	repo := NewUserRepo(testDB)

	u1, err := repo.Upsert(context.Background(), "google", "goog-456", "Bob", "https://old")
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	u2, err := repo.Upsert(context.Background(), "google", "goog-456", "Bobby", "https://new")
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if u1.ID != u2.ID {
		t.Fatalf("upsert should return same ID: %s vs %s", u1.ID, u2.ID)
	}
	if u2.DisplayName != "Bobby" || u2.AvatarURL != "https://new" {
		t.Fatalf("expected updated profile, got %s / %s", u2.DisplayName, u2.AvatarURL)
	}
}

func TestUserFindByID(t *testing.T) {
	setup(t)
	repo := NewUserRepo(testDB)

	created, _ := repo.Upsert(context.Background(), "google", "goog-find", "FindMe", "")
	found, err := repo.FindByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("find by id: %v", err)
	}
	if found == nil || found.ID != created.ID {
		t.Fatal("expected to find user by ID")
	}

	notFound, err := repo.FindByID(context.Background(), "00000000-0000-0000-0000-000000000000")
	if err != nil {
		t.Fatalf("find missing: %v", err)
	}
	if notFound != nil {
		t.Fatal("expected nil for missing user")
	}
}

func TestGameLifecycleRows(t *testing.T) {
	setup(t)
	ctx := context.Background()
	creator := createTestUser(t, "creator")
	joiner := createTestUser(t, "joiner")
	game := createTestGame(t, creator.ID)

	repo := NewGameRepo(testDB)
	if game.Status != "waiting" {
		t.Fatalf("new game status = %s, want waiting", game.Status)
	}

	if err := repo.JoinGame(ctx, game.ID, creator.ID, "Verdant Realm", "warlord"); err != nil {
		t.Fatalf("creator join: %v", err)
	}
	if err := repo.JoinGame(ctx, game.ID, joiner.ID, "Ember Dominion", "pyromancer"); err != nil {
		t.Fatalf("joiner join: %v", err)
	}

	n, err := repo.PlayerCount(ctx, game.ID)
	if err != nil || n != 2 {
		t.Fatalf("player count = %d (%v), want 2", n, err)
	}

	seats := map[string]string{creator.ID: "player-1", joiner.ID: "player-2"}
	if err := repo.AssignSeats(ctx, game.ID, seats); err != nil {
		t.Fatalf("assign seats: %v", err)
	}

	loaded, err := repo.FindByID(ctx, game.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if loaded.Status != "active" || loaded.StartedAt == nil {
		t.Fatalf("game not activated: status=%s startedAt=%v", loaded.Status, loaded.StartedAt)
	}
	for _, p := range loaded.Players {
		if p.SeatID == "" {
			t.Errorf("player %s has no seat", p.UserID)
		}
	}

	if err := repo.SetFinished(ctx, game.ID, "Verdant Realm"); err != nil {
		t.Fatalf("set finished: %v", err)
	}
	finished, _ := repo.FindByID(ctx, game.ID)
	if finished.Status != "finished" || finished.Winner != "Verdant Realm" {
		t.Fatalf("finish not recorded: %+v", finished)
	}
}

func TestReplaceComputerSeat(t *testing.T) {
	setup(t)
	ctx := context.Background()
	creator := createTestUser(t, "creator")
	bot := createTestUser(t, "bot")
	human := createTestUser(t, "human")
	game := createTestGame(t, creator.ID)

	repo := NewGameRepo(testDB)
	repo.JoinGame(ctx, game.ID, creator.ID, "Verdant Realm", "warlord")
	repo.JoinGameAsComputer(ctx, game.ID, bot.ID, "Horde of Karzak", "necromancer")

	if err := repo.ReplaceComputer(ctx, game.ID, human.ID, "Sylvan Compact", "druid"); err != nil {
		t.Fatalf("replace computer: %v", err)
	}

	players, _ := repo.ListPlayers(ctx, game.ID)
	if len(players) != 2 {
		t.Fatalf("players = %d, want 2", len(players))
	}
	for _, p := range players {
		if p.IsComputer {
			t.Errorf("computer seat %s survived replacement", p.UserID)
		}
	}
}

func TestTurnAndCommandRows(t *testing.T) {
	setup(t)
	ctx := context.Background()
	creator := createTestUser(t, "creator")
	game := createTestGame(t, creator.ID)

	gameRepo := NewGameRepo(testDB)
	gameRepo.JoinGame(ctx, game.ID, creator.ID, "Verdant Realm", "warlord")
	gameRepo.AssignSeats(ctx, game.ID, map[string]string{creator.ID: "player-1"})

	turnRepo := NewTurnRepo(testDB)
	before := json.RawMessage(`{"turn":1,"turn_owner":"player-1"}`)
	turn, err := turnRepo.CreateTurn(ctx, game.ID, 1, "player-1", before, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("create turn: %v", err)
	}

	current, err := turnRepo.CurrentTurn(ctx, game.ID)
	if err != nil || current == nil || current.ID != turn.ID {
		t.Fatalf("current turn mismatch: %+v (%v)", current, err)
	}

	saved, err := turnRepo.SaveCommand(ctx, model.Command{
		TurnID:  turn.ID,
		Seat:    "player-1",
		Kind:    "declare_war",
		Payload: json.RawMessage(`{"target":"player-2"}`),
		Result:  "ok",
	})
	if err != nil {
		t.Fatalf("save command: %v", err)
	}
	if saved.ID == "" || saved.Result != "ok" {
		t.Fatalf("bad saved command: %+v", saved)
	}

	cmds, err := turnRepo.CommandsByTurn(ctx, turn.ID)
	if err != nil || len(cmds) != 1 {
		t.Fatalf("commands by turn = %d (%v), want 1", len(cmds), err)
	}

	after := json.RawMessage(`{"turn":1,"turn_owner":"player-2"}`)
	if err := turnRepo.ResolveTurn(ctx, turn.ID, after); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	current, _ = turnRepo.CurrentTurn(ctx, game.ID)
	if current != nil {
		t.Fatalf("expected no open turn after resolve, got %+v", current)
	}

	turns, _ := turnRepo.ListTurns(ctx, game.ID)
	if len(turns) != 1 || turns[0].ResolvedAt == nil || turns[0].StateAfter == nil {
		t.Fatalf("resolved turn not listed correctly: %+v", turns)
	}
}

func TestListExpiredTurns(t *testing.T) {
	setup(t)
	ctx := context.Background()
	creator := createTestUser(t, "creator")
	game := createTestGame(t, creator.ID)

	gameRepo := NewGameRepo(testDB)
	gameRepo.JoinGame(ctx, game.ID, creator.ID, "Verdant Realm", "warlord")
	gameRepo.AssignSeats(ctx, game.ID, map[string]string{creator.ID: "player-1"})

	turnRepo := NewTurnRepo(testDB)
	before := json.RawMessage(`{}`)
	lapsed, err := turnRepo.CreateTurn(ctx, game.ID, 2, "player-1", before, time.Now().Add(-time.Minute))
	if err != nil {
		t.Fatalf("create turn: %v", err)
	}

	expired, err := turnRepo.ListExpired(ctx)
	if err != nil {
		t.Fatalf("list expired: %v", err)
	}
	if len(expired) != 1 || expired[0].ID != lapsed.ID {
		t.Fatalf("expected the lapsed turn, got %+v", expired)
	}

	// Resolved turns never show up as expired.
	turnRepo.ResolveTurn(ctx, lapsed.ID, json.RawMessage(`{}`))
	expired, _ = turnRepo.ListExpired(ctx)
	if len(expired) != 0 {
		t.Fatalf("resolved turn still listed as expired: %+v", expired)
	}
}

func TestDeleteGameCascades(t *testing.T) {
	setup(t)
	ctx := context.Background()
	creator := createTestUser(t, "creator")
	game := createTestGame(t, creator.ID)

	gameRepo := NewGameRepo(testDB)
	gameRepo.JoinGame(ctx, game.ID, creator.ID, "Verdant Realm", "warlord")

	turnRepo := NewTurnRepo(testDB)
	turn, _ := turnRepo.CreateTurn(ctx, game.ID, 1, "player-1", json.RawMessage(`{}`), time.Now().Add(time.Hour))
	turnRepo.SaveCommand(ctx, model.Command{TurnID: turn.ID, Seat: "player-1", Kind: "recruit", Result: "ok"})

	if err := gameRepo.Delete(ctx, game.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	gone, _ := gameRepo.FindByID(ctx, game.ID)
	if gone != nil {
		t.Fatal("game still present after delete")
	}
	turns, _ := turnRepo.ListTurns(ctx, game.ID)
	if len(turns) != 0 {
		t.Fatalf("turns survived game delete: %+v", turns)
	}
}

func TestMessageVisibility(t *testing.T) {
	setup(t)
	ctx := context.Background()
	a := createTestUser(t, "a")
	b := createTestUser(t, "b")
	c := createTestUser(t, "c")
	game := createTestGame(t, a.ID)

	msgRepo := NewMessageRepo(testDB)
	if _, err := msgRepo.Create(ctx, game.ID, a.ID, "", "to everyone", ""); err != nil {
		t.Fatalf("public message: %v", err)
	}
	if _, err := msgRepo.Create(ctx, game.ID, a.ID, b.ID, "just for b", ""); err != nil {
		t.Fatalf("private message: %v", err)
	}

	forB, _ := msgRepo.ListByGame(ctx, game.ID, b.ID)
	if len(forB) != 2 {
		t.Errorf("b sees %d messages, want 2", len(forB))
	}
	forC, _ := msgRepo.ListByGame(ctx, game.ID, c.ID)
	if len(forC) != 1 {
		t.Errorf("c sees %d messages, want 1", len(forC))
	}
}
