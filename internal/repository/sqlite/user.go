package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"mafia-bot/internal/model"
	"mafia-bot/internal/repository"
)

// UserRepository handles player account persistence.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new UserRepository instance.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Upsert creates the user or refreshes their username.
func (r *UserRepository) Upsert(ctx context.Context, telegramID int64, username string) error {
	const query = `
		INSERT INTO users (telegram_id, username)
		VALUES (?, ?)
		ON CONFLICT (telegram_id) DO UPDATE
		SET username = excluded.username, updated_at = CURRENT_TIMESTAMP
	`

	if _, err := r.db.ExecContext(ctx, query, telegramID, username); err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by their Telegram ID.
func (r *UserRepository) GetByID(ctx context.Context, telegramID int64) (*model.User, error) {
	var user model.User
	err := r.db.GetContext(ctx, &user, `
		SELECT telegram_id, username, games_played, games_won, created_at, updated_at
		FROM users
		WHERE telegram_id = ?`, telegramID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// GetTop retrieves the users with the most wins.
func (r *UserRepository) GetTop(ctx context.Context, limit int) ([]*model.User, error) {
	var users []*model.User
	err := r.db.SelectContext(ctx, &users, `
		SELECT telegram_id, username, games_played, games_won, created_at, updated_at
		FROM users
		WHERE games_played > 0
		ORDER BY games_won DESC, games_played ASC, telegram_id ASC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get top users: %w", err)
	}
	return users, nil
}
