package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"mafia-bot/internal/model"
)

// TrainingRepository stores bot decisions with their game state.
type TrainingRepository struct {
	pool *pgxpool.Pool
}

// NewTrainingRepository creates a new TrainingRepository instance.
func NewTrainingRepository(pool *pgxpool.Pool) *TrainingRepository {
	return &TrainingRepository{pool: pool}
}

// Create inserts a training row and fills in its ID.
func (r *TrainingRepository) Create(ctx context.Context, row *model.TrainingRow) error {
	const query = `
		INSERT INTO training_data (game_id, actor_id, state, action, target_id, created_at)
		VALUES ($1, $2, $3::jsonb, $4, $5, $6)
		RETURNING id
	`

	err := r.pool.QueryRow(ctx, query, row.GameID, row.ActorID, row.State, row.Action, row.TargetID, row.CreatedAt).Scan(&row.ID)
	if err != nil {
		return fmt.Errorf("failed to create training row: %w", err)
	}
	return nil
}

// SetOutcomes labels every row of the game with its actor's outcome.
func (r *TrainingRepository) SetOutcomes(ctx context.Context, gameID uuid.UUID, outcomes map[int64]string) error {
	const query = `
		UPDATE training_data
		SET outcome = $3
		WHERE game_id = $1 AND actor_id = $2
	`

	for actorID, outcome := range outcomes {
		if _, err := r.pool.Exec(ctx, query, gameID, actorID, outcome); err != nil {
			return fmt.Errorf("failed to set training outcome: %w", err)
		}
	}
	return nil
}

// ListByGame returns the training rows of a game.
func (r *TrainingRepository) ListByGame(ctx context.Context, gameID uuid.UUID) ([]*model.TrainingRow, error) {
	const query = `
		SELECT id, game_id, actor_id, state::text, action, target_id, outcome, created_at
		FROM training_data
		WHERE game_id = $1
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to list training rows: %w", err)
	}
	defer rows.Close()

	var out []*model.TrainingRow
	for rows.Next() {
		var row model.TrainingRow
		err := rows.Scan(&row.ID, &row.GameID, &row.ActorID, &row.State, &row.Action, &row.TargetID, &row.Outcome, &row.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan training row: %w", err)
		}
		out = append(out, &row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating training rows: %w", err)
	}
	return out, nil
}
