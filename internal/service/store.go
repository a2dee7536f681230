// Package service provides the persistence-facing services of the bot.
package service

import (
	"context"

	"github.com/google/uuid"

	"mafia-bot/internal/model"
)

// UserStore is the user persistence the services need. Both the PostgreSQL
// and the SQLite repositories satisfy it.
type UserStore interface {
	Upsert(ctx context.Context, telegramID int64, username string) error
	GetByID(ctx context.Context, telegramID int64) (*model.User, error)
	GetTop(ctx context.Context, limit int) ([]*model.User, error)
}

// GameStore persists games and their seats.
type GameStore interface {
	Create(ctx context.Context, g *model.Game) error
	AddPlayers(ctx context.Context, gameID uuid.UUID, players []model.GamePlayer) error
	Finish(ctx context.Context, res *model.GameResult) error
}

// MoveStore persists accepted moves.
type MoveStore interface {
	Create(ctx context.Context, m *model.Move) error
}

// TrainingStore persists bot decisions.
type TrainingStore interface {
	Create(ctx context.Context, row *model.TrainingRow) error
	SetOutcomes(ctx context.Context, gameID uuid.UUID, outcomes map[int64]string) error
}

// Stores groups the stores of one backend.
type Stores struct {
	Users    UserStore
	Games    GameStore
	Moves    MoveStore
	Training TrainingStore
}
