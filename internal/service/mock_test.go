package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/j8kin/fantasy-empires-wars/internal/model"
)

type mockGameRepo struct {
	games   map[string]*model.Game
	players map[string][]model.GamePlayer
}

func newMockGameRepo() *mockGameRepo {
	return &mockGameRepo{
		games:   make(map[string]*model.Game),
		players: make(map[string][]model.GamePlayer),
	}
}

func (m *mockGameRepo) Create(_ context.Context, name, creatorID, turnDur string, rows, cols int) (*model.Game, error) {
	g := &model.Game{
		ID:           fmt.Sprintf("game-%d", len(m.games)+1),
		Name:         name,
		CreatorID:    creatorID,
		Status:       "waiting",
		TurnDuration: turnDur,
		MapRows:      rows,
		MapCols:      cols,
		CreatedAt:    time.Now(),
	}
	m.games[g.ID] = g
	return g, nil
}

func (m *mockGameRepo) FindByID(_ context.Context, id string) (*model.Game, error) {
	g, ok := m.games[id]
	if !ok {
		return nil, nil
	}
	cp := *g
	cp.Players = m.players[id]
	return &cp, nil
}

func (m *mockGameRepo) ListOpen(_ context.Context) ([]model.Game, error) {
	var result []model.Game
	for _, g := range m.games {
		if g.Status == "waiting" {
			result = append(result, *g)
		}
	}
	return result, nil
}

func (m *mockGameRepo) ListByUser(_ context.Context, userID string) ([]model.Game, error) {
	seen := make(map[string]bool)
	var result []model.Game
	for gameID, players := range m.players {
		for _, p := range players {
			if p.UserID == userID && !seen[gameID] {
				if g, ok := m.games[gameID]; ok {
					result = append(result, *g)
					seen[gameID] = true
				}
			}
		}
	}
	return result, nil
}

func (m *mockGameRepo) ListFinished(_ context.Context) ([]model.Game, error) {
	var result []model.Game
	for _, g := range m.games {
		if g.Status == "finished" {
			cp := *g
			cp.Players = m.players[g.ID]
			result = append(result, cp)
		}
	}
	return result, nil
}

func (m *mockGameRepo) ListActive(_ context.Context) ([]model.Game, error) {
	var result []model.Game
	for _, g := range m.games {
		if g.Status == "active" {
			cp := *g
			cp.Players = m.players[g.ID]
			result = append(result, cp)
		}
	}
	return result, nil
}

func (m *mockGameRepo) JoinGame(_ context.Context, gameID, userID, empireName, class string) error {
	m.players[gameID] = append(m.players[gameID], model.GamePlayer{
		GameID:     gameID,
		UserID:     userID,
		EmpireName: empireName,
		Class:      class,
		JoinedAt:   time.Now(),
	})
	return nil
}

func (m *mockGameRepo) JoinGameAsComputer(_ context.Context, gameID, userID, empireName, class string) error {
	m.players[gameID] = append(m.players[gameID], model.GamePlayer{
		GameID:     gameID,
		UserID:     userID,
		EmpireName: empireName,
		Class:      class,
		IsComputer: true,
		JoinedAt:   time.Now(),
	})
	return nil
}

func (m *mockGameRepo) ReplaceComputer(_ context.Context, gameID, newUserID, empireName, class string) error {
	players := m.players[gameID]
	for i, p := range players {
		if p.IsComputer {
			players[i] = model.GamePlayer{
				GameID:     gameID,
				UserID:     newUserID,
				EmpireName: empireName,
				Class:      class,
				JoinedAt:   time.Now(),
			}
			return nil
		}
	}
	return fmt.Errorf("no computer seat to replace")
}

func (m *mockGameRepo) PlayerCount(_ context.Context, gameID string) (int, error) {
	return len(m.players[gameID]), nil
}

func (m *mockGameRepo) AssignSeats(_ context.Context, gameID string, seats map[string]string) error {
	players := m.players[gameID]
	for i := range players {
		if seat, ok := seats[players[i].UserID]; ok {
			players[i].SeatID = seat
		}
	}
	m.players[gameID] = players
	if g, ok := m.games[gameID]; ok {
		g.Status = "active"
		now := time.Now()
		g.StartedAt = &now
	}
	return nil
}

func (m *mockGameRepo) SetFinished(_ context.Context, gameID, winner string) error {
	if g, ok := m.games[gameID]; ok {
		g.Status = "finished"
		g.Winner = winner
	}
	return nil
}

func (m *mockGameRepo) Delete(_ context.Context, gameID string) error {
	delete(m.games, gameID)
	delete(m.players, gameID)
	return nil
}

// mockUserRepo implements repository.UserRepository for testing.
type mockUserRepo struct {
	users map[string]*model.User
	seq   int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) FindByID(_ context.Context, id string) (*model.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	return u, nil
}

func (m *mockUserRepo) FindByProviderID(_ context.Context, provider, providerID string) (*model.User, error) {
	for _, u := range m.users {
		if u.Provider == provider && u.ProviderID == providerID {
			return u, nil
		}
	}
	return nil, nil
}

func (m *mockUserRepo) Upsert(_ context.Context, provider, providerID, displayName, avatarURL string) (*model.User, error) {
	for _, u := range m.users {
		if u.Provider == provider && u.ProviderID == providerID {
			u.DisplayName = displayName
			return u, nil
		}
	}
	m.seq++
	u := &model.User{
		ID:          fmt.Sprintf("user-%d", m.seq),
		Provider:    provider,
		ProviderID:  providerID,
		DisplayName: displayName,
		AvatarURL:   avatarURL,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	m.users[u.ID] = u
	return u, nil
}

func (m *mockUserRepo) UpdateDisplayName(_ context.Context, id, displayName string) error {
	if u, ok := m.users[id]; ok {
		u.DisplayName = displayName
	}
	return nil
}

type mockTurnRepo struct {
	turns    map[string]*model.Turn
	commands map[string][]model.Command
	seq      int
}

func newMockTurnRepo() *mockTurnRepo {
	return &mockTurnRepo{
		turns:    make(map[string]*model.Turn),
		commands: make(map[string][]model.Command),
	}
}

func (m *mockTurnRepo) CreateTurn(_ context.Context, gameID string, number int, owner string, stateBefore json.RawMessage, deadline time.Time) (*model.Turn, error) {
	m.seq++
	t := &model.Turn{
		ID:          fmt.Sprintf("turn-%d", m.seq),
		GameID:      gameID,
		Number:      number,
		Owner:       owner,
		StateBefore: stateBefore,
		Deadline:    deadline,
		CreatedAt:   time.Now(),
	}
	m.turns[t.ID] = t
	return t, nil
}

func (m *mockTurnRepo) CurrentTurn(_ context.Context, gameID string) (*model.Turn, error) {
	var latest *model.Turn
	for _, t := range m.turns {
		if t.GameID != gameID || t.ResolvedAt != nil {
			continue
		}
		if latest == nil || t.Number > latest.Number {
			latest = t
		}
	}
	return latest, nil
}

func (m *mockTurnRepo) ListTurns(_ context.Context, gameID string) ([]model.Turn, error) {
	var result []model.Turn
	for _, t := range m.turns {
		if t.GameID == gameID {
			result = append(result, *t)
		}
	}
	return result, nil
}

func (m *mockTurnRepo) ResolveTurn(_ context.Context, turnID string, stateAfter json.RawMessage) error {
	if t, ok := m.turns[turnID]; ok {
		t.StateAfter = stateAfter
		now := time.Now()
		t.ResolvedAt = &now
	}
	return nil
}

func (m *mockTurnRepo) SaveCommand(_ context.Context, cmd model.Command) (*model.Command, error) {
	cmd.ID = fmt.Sprintf("cmd-%d", len(m.commands[cmd.TurnID])+1)
	cmd.CreatedAt = time.Now()
	m.commands[cmd.TurnID] = append(m.commands[cmd.TurnID], cmd)
	return &cmd, nil
}

func (m *mockTurnRepo) CommandsByTurn(_ context.Context, turnID string) ([]model.Command, error) {
	return m.commands[turnID], nil
}

func (m *mockTurnRepo) ListExpired(_ context.Context) ([]model.Turn, error) {
	var result []model.Turn
	for _, t := range m.turns {
		if t.ResolvedAt == nil && t.Deadline.Before(time.Now()) {
			result = append(result, *t)
		}
	}
	return result, nil
}

// resolvedCount reports how many turn rows have been closed.
func (m *mockTurnRepo) resolvedCount() int {
	n := 0
	for _, t := range m.turns {
		if t.ResolvedAt != nil {
			n++
		}
	}
	return n
}

// mockCache implements repository.GameCache for testing.
type mockCache struct {
	states   map[string]json.RawMessage
	journals map[string][]json.RawMessage // key: "gameID:seat"
	timers   map[string]time.Time
}

func newMockCache() *mockCache {
	return &mockCache{
		states:   make(map[string]json.RawMessage),
		journals: make(map[string][]json.RawMessage),
		timers:   make(map[string]time.Time),
	}
}

func (c *mockCache) SetGameState(_ context.Context, gameID string, state json.RawMessage) error {
	c.states[gameID] = state
	return nil
}

func (c *mockCache) GetGameState(_ context.Context, gameID string) (json.RawMessage, error) {
	return c.states[gameID], nil
}

func (c *mockCache) PushCommand(_ context.Context, gameID, seat string, cmd json.RawMessage) error {
	key := gameID + ":" + seat
	c.journals[key] = append(c.journals[key], cmd)
	return nil
}

func (c *mockCache) ListCommands(_ context.Context, gameID, seat string) ([]json.RawMessage, error) {
	return c.journals[gameID+":"+seat], nil
}

func (c *mockCache) SetTimer(_ context.Context, gameID string, deadline time.Time) error {
	c.timers[gameID] = deadline
	return nil
}

func (c *mockCache) ClearTimer(_ context.Context, gameID string) error {
	delete(c.timers, gameID)
	return nil
}

func (c *mockCache) ClearTurnData(_ context.Context, gameID string, seats []string) error {
	delete(c.timers, gameID)
	for _, seat := range seats {
		delete(c.journals, gameID+":"+seat)
	}
	return nil
}

func (c *mockCache) DeleteGameData(_ context.Context, gameID string, seats []string) error {
	delete(c.states, gameID)
	delete(c.timers, gameID)
	for _, seat := range seats {
		delete(c.journals, gameID+":"+seat)
	}
	return nil
}

// recordingBroadcaster collects broadcast events for assertions.
type recordingBroadcaster struct {
	events []string
}

func (b *recordingBroadcaster) BroadcastGameEvent(_ string, eventType string, _ any) {
	b.events = append(b.events, eventType)
}

func (b *recordingBroadcaster) has(eventType string) bool {
	for _, e := range b.events {
		if e == eventType {
			return true
		}
	}
	return false
}
