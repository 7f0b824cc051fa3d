package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/j8kin/fantasy-empires-wars/internal/model"
	"github.com/j8kin/fantasy-empires-wars/internal/repository"
	"github.com/j8kin/fantasy-empires-wars/pkg/engine"
)

var (
	ErrNotInGame      = errors.New("you are not in this game")
	ErrUnknownCommand = errors.New("unknown command kind")
	ErrWrongPhase     = errors.New("commands are only accepted in the main phase")
)

// CommandInput is one client command against the live game. Kind
// selects the operation; the other fields are read per kind.
type CommandInput struct {
	Kind string `json:"kind"`

	// move
	From  string           `json:"from,omitempty"`
	To    string           `json:"to,omitempty"`
	Split engine.ArmySplit `json:"split"`

	// quest
	Hero  string `json:"hero,omitempty"`
	Quest string `json:"quest,omitempty"`

	// spell / item / recruit / construct target land
	Land     string `json:"land,omitempty"`
	Spell    string `json:"spell,omitempty"`
	Item     string `json:"item,omitempty"`
	Unit     string `json:"unit,omitempty"`
	Building string `json:"building,omitempty"`

	// diplomacy
	Target string `json:"target,omitempty"`
}

// CommandService applies player commands to running games, journals
// them in Redis and persists every attempt with its result.
type CommandService struct {
	gameRepo    repository.GameRepository
	turnRepo    repository.TurnRepository
	cache       repository.GameCache
	turns       *TurnService
	broadcaster Broadcaster
}

// NewCommandService creates a CommandService.
func NewCommandService(
	gameRepo repository.GameRepository,
	turnRepo repository.TurnRepository,
	cache repository.GameCache,
	turns *TurnService,
	broadcaster Broadcaster,
) *CommandService {
	if broadcaster == nil {
		broadcaster = NoopBroadcaster{}
	}
	return &CommandService{
		gameRepo:    gameRepo,
		turnRepo:    turnRepo,
		cache:       cache,
		turns:       turns,
		broadcaster: broadcaster,
	}
}

// GameRepo returns the game repository for use by handlers.
func (s *CommandService) GameRepo() repository.GameRepository {
	return s.gameRepo
}

// Execute applies one command for the user's seat. Engine rejections
// are persisted with their reason and returned to the caller; other
// errors abort without a command row.
func (s *CommandService) Execute(ctx context.Context, gameID, userID string, in CommandInput) (*model.Command, error) {
	seat, err := s.seatOf(ctx, gameID, userID)
	if err != nil {
		return nil, err
	}

	execErr := s.turns.WithState(gameID, func(gs *engine.GameState, rng engine.Rand) error {
		if gs.TurnOwner != seat {
			return ErrNotOwner
		}
		if gs.TurnPhase != engine.PhaseMain {
			return ErrWrongPhase
		}
		return applyCommand(gs, seat, in, rng)
	})
	if execErr != nil && !engine.IsRejected(execErr) {
		return nil, execErr
	}

	result := "ok"
	if execErr != nil {
		result = execErr.Error()
	}

	cmd, err := s.persist(ctx, gameID, seat, in, result)
	if err != nil {
		log.Error().Err(err).Str("gameId", gameID).Str("seat", seat).
			Str("kind", in.Kind).Msg("Failed to persist command")
	}
	s.broadcaster.BroadcastGameEvent(gameID, "command", map[string]any{
		"seat":   seat,
		"kind":   in.Kind,
		"result": result,
	})

	if execErr != nil {
		return cmd, execErr
	}
	return cmd, nil
}

// EndTurn ends the user's MAIN phase.
func (s *CommandService) EndTurn(ctx context.Context, gameID, userID string) error {
	seat, err := s.seatOf(ctx, gameID, userID)
	if err != nil {
		return err
	}
	return s.turns.EndTurn(ctx, gameID, seat)
}

// MagicTargets returns the lands the user may currently target with a
// spell or invokable item.
func (s *CommandService) MagicTargets(ctx context.Context, gameID, userID, magic string) ([]string, error) {
	seat, err := s.seatOf(ctx, gameID, userID)
	if err != nil {
		return nil, err
	}
	var lands []string
	err = s.turns.WithState(gameID, func(gs *engine.GameState, _ engine.Rand) error {
		lands = engine.GetValidMagicLands(gs, seat, engine.MagicID(magic))
		return nil
	})
	return lands, err
}

// applyCommand dispatches a command to the engine operation it names.
func applyCommand(gs *engine.GameState, seat string, in CommandInput, rng engine.Rand) error {
	switch in.Kind {
	case "move":
		return engine.StartMovement(gs, seat, in.From, in.To, in.Split)
	case "quest":
		return engine.StartQuest(gs, seat, in.Hero, engine.QuestID(in.Quest))
	case "spell":
		return engine.CastSpell(gs, seat, engine.MagicID(in.Spell), in.Land, rng)
	case "item":
		return engine.InvokeItem(gs, seat, engine.ItemID(in.Item), in.Land, rng)
	case "recruit":
		return engine.StartRecruiting(gs, seat, in.Land, engine.UnitType(in.Unit))
	case "construct":
		return engine.Construct(gs, seat, in.Land, engine.BuildingKind(in.Building))
	case "declare_war":
		return engine.DeclareWar(gs, seat, in.Target)
	case "form_alliance":
		return engine.FormAlliance(gs, seat, in.Target)
	case "break_treaty":
		return engine.BreakTreaty(gs, seat, in.Target)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownCommand, in.Kind)
	}
}

// persist writes the command row and appends it to the seat's Redis
// journal for the turn.
func (s *CommandService) persist(ctx context.Context, gameID, seat string, in CommandInput, result string) (*model.Command, error) {
	payload, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("marshal command: %w", err)
	}

	turnID, err := s.turns.CurrentTurnID(gameID)
	if err != nil {
		return nil, err
	}

	cmd, err := s.turnRepo.SaveCommand(ctx, model.Command{
		TurnID:  turnID,
		Seat:    seat,
		Kind:    in.Kind,
		Payload: payload,
		Result:  result,
	})
	if err != nil {
		return nil, fmt.Errorf("save command: %w", err)
	}

	if err := s.cache.PushCommand(ctx, gameID, seat, payload); err != nil {
		log.Warn().Err(err).Str("gameId", gameID).Str("seat", seat).
			Msg("Failed to journal command")
	}
	return cmd, nil
}

// CommandsByTurn returns the persisted commands of one turn.
func (s *CommandService) CommandsByTurn(ctx context.Context, turnID string) ([]model.Command, error) {
	return s.turnRepo.CommandsByTurn(ctx, turnID)
}

// seatOf resolves the user's engine seat in a game.
func (s *CommandService) seatOf(ctx context.Context, gameID, userID string) (string, error) {
	game, err := s.gameRepo.FindByID(ctx, gameID)
	if err != nil {
		return "", err
	}
	if game == nil {
		return "", ErrGameNotFound
	}
	for _, p := range game.Players {
		if p.UserID == userID {
			if p.SeatID == "" {
				return "", ErrGameNotActive
			}
			return p.SeatID, nil
		}
	}
	return "", ErrNotInGame
}
