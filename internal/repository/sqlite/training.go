package sqlite

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"mafia-bot/internal/model"
)

// TrainingRepository stores bot decisions with their game state.
type TrainingRepository struct {
	db *sqlx.DB
}

// NewTrainingRepository creates a new TrainingRepository instance.
func NewTrainingRepository(db *sqlx.DB) *TrainingRepository {
	return &TrainingRepository{db: db}
}

// Create inserts a training row and fills in its ID.
func (r *TrainingRepository) Create(ctx context.Context, row *model.TrainingRow) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO training_data (game_id, actor_id, state, action, target_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		row.GameID, row.ActorID, row.State, row.Action, row.TargetID, row.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create training row: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read training row id: %w", err)
	}
	row.ID = id
	return nil
}

// SetOutcomes labels every row of the game with its actor's outcome.
func (r *TrainingRepository) SetOutcomes(ctx context.Context, gameID uuid.UUID, outcomes map[int64]string) error {
	for actorID, outcome := range outcomes {
		_, err := r.db.ExecContext(ctx, `
			UPDATE training_data SET outcome = ?
			WHERE game_id = ? AND actor_id = ?`, outcome, gameID, actorID)
		if err != nil {
			return fmt.Errorf("failed to set training outcome: %w", err)
		}
	}
	return nil
}

// ListByGame returns the training rows of a game.
func (r *TrainingRepository) ListByGame(ctx context.Context, gameID uuid.UUID) ([]*model.TrainingRow, error) {
	var rows []*model.TrainingRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, game_id, actor_id, state, action, target_id, outcome, created_at
		FROM training_data
		WHERE game_id = ?
		ORDER BY id`, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to list training rows: %w", err)
	}
	return rows, nil
}
