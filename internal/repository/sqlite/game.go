package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"mafia-bot/internal/model"
	"mafia-bot/internal/repository"
)

// GameRepository handles games and their seats.
type GameRepository struct {
	db *sqlx.DB
}

// NewGameRepository creates a new GameRepository instance.
func NewGameRepository(db *sqlx.DB) *GameRepository {
	return &GameRepository{db: db}
}

// Create inserts a game row.
func (r *GameRepository) Create(ctx context.Context, g *model.Game) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO games (id, chat_id, variant, status, rounds, created_at)
		VALUES (?, ?, ?, ?, 0, ?)`, g.ID, g.ChatID, g.Variant, g.Status, g.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create game: %w", err)
	}
	return nil
}

// GetByID retrieves a game.
func (r *GameRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Game, error) {
	var g model.Game
	err := r.db.GetContext(ctx, &g, `
		SELECT id, chat_id, variant, status, winner, rounds, created_at, finished_at
		FROM games
		WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrGameNotFound
		}
		return nil, fmt.Errorf("failed to get game: %w", err)
	}
	return &g, nil
}

// AddPlayers inserts the seats of a started game.
func (r *GameRepository) AddPlayers(ctx context.Context, gameID uuid.UUID, players []model.GamePlayer) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, p := range players {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO game_players (game_id, user_id, name, role, is_bot, alive)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT (game_id, user_id) DO UPDATE
			SET role = excluded.role, alive = excluded.alive`,
			gameID, p.UserID, p.Name, p.Role, p.IsBot, p.Alive)
		if err != nil {
			return fmt.Errorf("failed to add game player: %w", err)
		}
	}
	return tx.Commit()
}

// GetPlayers retrieves the seats of a game ordered by user ID.
func (r *GameRepository) GetPlayers(ctx context.Context, gameID uuid.UUID) ([]model.GamePlayer, error) {
	var players []model.GamePlayer
	err := r.db.SelectContext(ctx, &players, `
		SELECT game_id, user_id, name, role, is_bot, alive, result
		FROM game_players
		WHERE game_id = ?
		ORDER BY user_id`, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game players: %w", err)
	}
	return players, nil
}

// Finish closes a game in one transaction. Abandoned games do not count
// towards player statistics.
func (r *GameRepository) Finish(ctx context.Context, res *model.GameResult) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var winner *string
	if res.Winner != "" {
		winner = &res.Winner
	}

	out, err := tx.ExecContext(ctx, `
		UPDATE games
		SET status = ?, winner = ?, rounds = ?, finished_at = ?
		WHERE id = ?`, res.Status, winner, res.Rounds, res.FinishedAt, res.GameID)
	if err != nil {
		return fmt.Errorf("failed to finish game: %w", err)
	}
	if n, err := out.RowsAffected(); err == nil && n == 0 {
		return repository.ErrGameNotFound
	}

	for _, p := range res.Players {
		_, err := tx.ExecContext(ctx, `
			UPDATE game_players
			SET alive = ?, result = ?
			WHERE game_id = ? AND user_id = ?`, p.Alive, p.Result, res.GameID, p.UserID)
		if err != nil {
			return fmt.Errorf("failed to update game player: %w", err)
		}

		if p.IsBot || res.Status != model.GameStatusFinished {
			continue
		}
		won := 0
		if p.Result != nil && *p.Result == model.ResultWin {
			won = 1
		}
		_, err = tx.ExecContext(ctx, `
			UPDATE users
			SET games_played = games_played + 1, games_won = games_won + ?, updated_at = CURRENT_TIMESTAMP
			WHERE telegram_id = ?`, won, p.UserID)
		if err != nil {
			return fmt.Errorf("failed to update user stats: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit game result: %w", err)
	}
	return nil
}
