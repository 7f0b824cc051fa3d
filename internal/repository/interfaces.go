package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/j8kin/fantasy-empires-wars/internal/model"
)

// UserRepository defines user data operations.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByProviderID(ctx context.Context, provider, providerID string) (*model.User, error)
	Upsert(ctx context.Context, provider, providerID, displayName, avatarURL string) (*model.User, error)
	UpdateDisplayName(ctx context.Context, id, displayName string) error
}

// GameRepository defines game and seat data operations.
type GameRepository interface {
	Create(ctx context.Context, name, creatorID, turnDur string, rows, cols int) (*model.Game, error)
	FindByID(ctx context.Context, id string) (*model.Game, error)
	ListOpen(ctx context.Context) ([]model.Game, error)
	ListByUser(ctx context.Context, userID string) ([]model.Game, error)
	ListFinished(ctx context.Context) ([]model.Game, error)
	ListActive(ctx context.Context) ([]model.Game, error)
	JoinGame(ctx context.Context, gameID, userID, empireName, class string) error
	JoinGameAsComputer(ctx context.Context, gameID, userID, empireName, class string) error
	ReplaceComputer(ctx context.Context, gameID, newUserID, empireName, class string) error
	PlayerCount(ctx context.Context, gameID string) (int, error)
	AssignSeats(ctx context.Context, gameID string, seats map[string]string) error
	SetFinished(ctx context.Context, gameID, winner string) error
	Delete(ctx context.Context, gameID string) error
}

// TurnRepository defines turn and command data operations.
type TurnRepository interface {
	CreateTurn(ctx context.Context, gameID string, number int, owner string, stateBefore json.RawMessage, deadline time.Time) (*model.Turn, error)
	CurrentTurn(ctx context.Context, gameID string) (*model.Turn, error)
	ListTurns(ctx context.Context, gameID string) ([]model.Turn, error)
	ResolveTurn(ctx context.Context, turnID string, stateAfter json.RawMessage) error
	SaveCommand(ctx context.Context, cmd model.Command) (*model.Command, error)
	CommandsByTurn(ctx context.Context, turnID string) ([]model.Command, error)
	ListExpired(ctx context.Context) ([]model.Turn, error)
}

// MessageRepository defines message data operations.
type MessageRepository interface {
	Create(ctx context.Context, gameID, senderID, recipientID, content, turnID string) (*model.Message, error)
	ListByGame(ctx context.Context, gameID, userID string) ([]model.Message, error)
}

// GameCache defines live game state operations (Redis).
type GameCache interface {
	SetGameState(ctx context.Context, gameID string, state json.RawMessage) error
	GetGameState(ctx context.Context, gameID string) (json.RawMessage, error)
	PushCommand(ctx context.Context, gameID, seat string, cmd json.RawMessage) error
	ListCommands(ctx context.Context, gameID, seat string) ([]json.RawMessage, error)
	SetTimer(ctx context.Context, gameID string, deadline time.Time) error
	ClearTimer(ctx context.Context, gameID string) error
	ClearTurnData(ctx context.Context, gameID string, seats []string) error
	DeleteGameData(ctx context.Context, gameID string, seats []string) error
}
