package sqlite

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"mafia-bot/internal/model"
)

// MoveRepository records accepted moves.
type MoveRepository struct {
	db *sqlx.DB
}

// NewMoveRepository creates a new MoveRepository instance.
func NewMoveRepository(db *sqlx.DB) *MoveRepository {
	return &MoveRepository{db: db}
}

// Create inserts a move and fills in its ID.
func (r *MoveRepository) Create(ctx context.Context, m *model.Move) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO moves (game_id, round, phase, type, actor_id, target_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.GameID, m.Round, m.Phase, m.Type, m.ActorID, m.TargetID, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create move: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read move id: %w", err)
	}
	m.ID = id
	return nil
}

// ListByGame returns a game's moves in the order they were made.
func (r *MoveRepository) ListByGame(ctx context.Context, gameID uuid.UUID) ([]*model.Move, error) {
	var moves []*model.Move
	err := r.db.SelectContext(ctx, &moves, `
		SELECT id, game_id, round, phase, type, actor_id, target_id, created_at
		FROM moves
		WHERE game_id = ?
		ORDER BY id`, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to list moves: %w", err)
	}
	return moves, nil
}
