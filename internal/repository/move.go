package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"mafia-bot/internal/model"
)

// MoveRepository records accepted moves.
type MoveRepository struct {
	pool *pgxpool.Pool
}

// NewMoveRepository creates a new MoveRepository instance.
func NewMoveRepository(pool *pgxpool.Pool) *MoveRepository {
	return &MoveRepository{pool: pool}
}

// Create inserts a move and fills in its ID.
func (r *MoveRepository) Create(ctx context.Context, m *model.Move) error {
	const query = `
		INSERT INTO moves (game_id, round, phase, type, actor_id, target_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	err := r.pool.QueryRow(ctx, query, m.GameID, m.Round, m.Phase, m.Type, m.ActorID, m.TargetID, m.CreatedAt).Scan(&m.ID)
	if err != nil {
		return fmt.Errorf("failed to create move: %w", err)
	}
	return nil
}

// ListByGame returns a game's moves in the order they were made.
func (r *MoveRepository) ListByGame(ctx context.Context, gameID uuid.UUID) ([]*model.Move, error) {
	const query = `
		SELECT id, game_id, round, phase, type, actor_id, target_id, created_at
		FROM moves
		WHERE game_id = $1
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to list moves: %w", err)
	}
	defer rows.Close()

	var moves []*model.Move
	for rows.Next() {
		var m model.Move
		err := rows.Scan(&m.ID, &m.GameID, &m.Round, &m.Phase, &m.Type, &m.ActorID, &m.TargetID, &m.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan move: %w", err)
		}
		moves = append(moves, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating moves: %w", err)
	}
	return moves, nil
}
