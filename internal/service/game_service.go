package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/j8kin/fantasy-empires-wars/internal/model"
	"github.com/j8kin/fantasy-empires-wars/internal/repository"
	"github.com/j8kin/fantasy-empires-wars/pkg/engine"
)

var (
	ErrGameNotFound   = errors.New("game not found")
	ErrGameNotWaiting = errors.New("game is not in waiting status")
	ErrGameFull       = errors.New("game already has the maximum number of empires")
	ErrNotEnough      = errors.New("need at least 2 empires to start")
	ErrNotCreator     = errors.New("only the creator can do this")
	ErrGameNotActive  = errors.New("game is not active")
	ErrAlreadyJoined  = errors.New("already joined this game")
	ErrInvalidClass   = errors.New("invalid hero class")
)

// MaxPlayers caps the number of empires per game.
const MaxPlayers = 6

var validClasses = map[string]bool{
	string(engine.Cleric):      true,
	string(engine.Necromancer): true,
	string(engine.Pyromancer):  true,
	string(engine.Enchanter):   true,
	string(engine.Druid):       true,
	string(engine.Warlord):     true,
	string(engine.Ranger):      true,
}

// computerEmpirePool names the computer-run empires a lobby is filled
// with. Class rotates through the full roster.
var computerEmpirePool = []string{
	"Duchy of Embermark", "Kingdom of Vael", "Horde of Karzak",
	"Sylvan Compact", "Dominion of Ashfall", "League of the Gray Coast",
}

var computerClassPool = []engine.HeroClass{
	engine.Warlord, engine.Necromancer, engine.Cleric,
	engine.Pyromancer, engine.Druid, engine.Ranger,
}

// GameService handles game lifecycle operations up to the moment a
// game starts. Running turns belong to TurnService.
type GameService struct {
	gameRepo repository.GameRepository
	userRepo repository.UserRepository
}

// NewGameService creates a GameService.
func NewGameService(gameRepo repository.GameRepository, userRepo repository.UserRepository) *GameService {
	return &GameService{gameRepo: gameRepo, userRepo: userRepo}
}

// CreateGame creates a new game in "waiting" status. The creator joins
// immediately with the given empire, and computerCount computer
// empires are seated after them.
func (s *GameService) CreateGame(ctx context.Context, name, creatorID, turnDur, empireName, class string, rows, cols, computerCount int) (*model.Game, error) {
	if !validClasses[class] {
		return nil, ErrInvalidClass
	}
	turnDur = toPgInterval(turnDur, "10 minutes")
	if rows <= 0 {
		rows = engine.DefaultRows
	}
	if cols <= 0 {
		cols = engine.DefaultCols
	}
	if empireName == "" {
		empireName = "Empire of " + name
	}
	if computerCount < 0 {
		computerCount = 0
	}
	if computerCount > MaxPlayers-1 {
		computerCount = MaxPlayers - 1
	}

	game, err := s.gameRepo.Create(ctx, name, creatorID, turnDur, rows, cols)
	if err != nil {
		return nil, err
	}

	if err := s.gameRepo.JoinGame(ctx, game.ID, creatorID, empireName, class); err != nil {
		return nil, err
	}

	for i := 1; i <= computerCount; i++ {
		providerID := fmt.Sprintf("computer-%d", i)
		displayName := fmt.Sprintf("Computer %d", i)
		cpu, err := s.userRepo.Upsert(ctx, "computer", providerID, displayName, "")
		if err != nil {
			return nil, fmt.Errorf("create computer user %d: %w", i, err)
		}
		empire := computerEmpirePool[(i-1)%len(computerEmpirePool)]
		cpuClass := computerClassPool[(i-1)%len(computerClassPool)]
		if err := s.gameRepo.JoinGameAsComputer(ctx, game.ID, cpu.ID, empire, string(cpuClass)); err != nil {
			return nil, fmt.Errorf("seat computer %d: %w", i, err)
		}
	}

	return s.gameRepo.FindByID(ctx, game.ID)
}

// JoinGame adds a player to a waiting game. A full lobby with computer
// seats hands one of them to the joining human.
func (s *GameService) JoinGame(ctx context.Context, gameID, userID, empireName, class string) error {
	if !validClasses[class] {
		return ErrInvalidClass
	}
	game, err := s.gameRepo.FindByID(ctx, gameID)
	if err != nil {
		return err
	}
	if game == nil {
		return ErrGameNotFound
	}
	if game.Status != "waiting" {
		return ErrGameNotWaiting
	}

	for _, p := range game.Players {
		if p.UserID == userID {
			return ErrAlreadyJoined
		}
	}
	if empireName == "" {
		empireName = "Empire of " + userID
	}

	count, err := s.gameRepo.PlayerCount(ctx, gameID)
	if err != nil {
		return err
	}
	if count >= MaxPlayers {
		hasComputers := false
		for _, p := range game.Players {
			if p.IsComputer {
				hasComputers = true
				break
			}
		}
		if !hasComputers {
			return ErrGameFull
		}
		return s.gameRepo.ReplaceComputer(ctx, gameID, userID, empireName, class)
	}

	return s.gameRepo.JoinGame(ctx, gameID, userID, empireName, class)
}

// StartGame assigns engine seats in join order and flips the game to
// active. The caller launches the live session afterwards.
func (s *GameService) StartGame(ctx context.Context, gameID, userID string) (*model.Game, error) {
	game, err := s.gameRepo.FindByID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game == nil {
		return nil, ErrGameNotFound
	}
	if game.Status != "waiting" {
		return nil, ErrGameNotWaiting
	}
	if game.CreatorID != userID {
		return nil, ErrNotCreator
	}
	if len(game.Players) < 2 {
		return nil, ErrNotEnough
	}

	seats := make(map[string]string, len(game.Players))
	for i, p := range game.Players {
		seats[p.UserID] = fmt.Sprintf("player-%d", i+1)
	}
	if err := s.gameRepo.AssignSeats(ctx, gameID, seats); err != nil {
		return nil, err
	}

	return s.gameRepo.FindByID(ctx, gameID)
}

// GetGame returns a game by ID.
func (s *GameService) GetGame(ctx context.Context, gameID string) (*model.Game, error) {
	game, err := s.gameRepo.FindByID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game == nil {
		return nil, ErrGameNotFound
	}
	return game, nil
}

// DeleteGame removes a waiting game. Only the game creator can delete a game.
func (s *GameService) DeleteGame(ctx context.Context, gameID, userID string) error {
	game, err := s.gameRepo.FindByID(ctx, gameID)
	if err != nil {
		return err
	}
	if game == nil {
		return ErrGameNotFound
	}
	if game.Status != "waiting" {
		return ErrGameNotWaiting
	}
	if game.CreatorID != userID {
		return ErrNotCreator
	}
	return s.gameRepo.Delete(ctx, gameID)
}

// ListGames returns open games or games the user is in.
func (s *GameService) ListGames(ctx context.Context, userID string, filter string) ([]model.Game, error) {
	switch filter {
	case "my":
		return s.gameRepo.ListByUser(ctx, userID)
	case "finished":
		return s.gameRepo.ListFinished(ctx)
	default:
		return s.gameRepo.ListOpen(ctx)
	}
}

// EngineSetup converts the persisted lobby into the engine's game
// configuration, seats ordered by join time to match seat IDs.
func EngineSetup(game *model.Game) engine.GameConfig {
	cfg := engine.GameConfig{Rows: game.MapRows, Cols: game.MapCols}
	for _, p := range game.Players {
		ptype := engine.HumanPlayer
		if p.IsComputer {
			ptype = engine.ComputerPlayer
		}
		cfg.Players = append(cfg.Players, engine.PlayerSetup{
			Profile: engine.NewProfile(p.EmpireName, engine.HeroClass(p.Class)),
			Type:    ptype,
		})
	}
	return cfg
}

// seedFromID derives a stable RNG seed from a game ID so recovered
// sessions regenerate identical hero names and map rolls.
func seedFromID(id string) int64 {
	var h int64 = 1469598103934665603
	for i := 0; i < len(id); i++ {
		h ^= int64(id[i])
		h *= 1099511628211
	}
	if h < 0 {
		h = -h
	}
	return h
}

// toPgInterval converts Go-style duration strings (e.g. "5m", "1h") to
// PostgreSQL interval format (e.g. "5 minutes"). Returns defaultVal if
// input is empty or unparseable.
func toPgInterval(s, defaultVal string) string {
	if s == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return defaultVal
	}
	totalSeconds := int(d.Seconds())
	if totalSeconds < 60 {
		return fmt.Sprintf("%d seconds", totalSeconds)
	}
	return fmt.Sprintf("%d minutes", totalSeconds/60)
}

// parseDuration converts Postgres interval strings like "00:10:00" or
// Go duration strings like "5m" to time.Duration.
func parseDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err == nil {
		return d
	}
	parts := strings.Split(s, ":")
	if len(parts) == 3 {
		h, e1 := strconv.Atoi(parts[0])
		m, e2 := strconv.Atoi(parts[1])
		sec, e3 := strconv.Atoi(parts[2])
		if e1 == nil && e2 == nil && e3 == nil {
			return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(sec)*time.Second
		}
	}
	return 10 * time.Minute
}
