package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"mafia-bot/internal/model"
)

// GameRepository handles games and their seats.
type GameRepository struct {
	pool *pgxpool.Pool
}

// NewGameRepository creates a new GameRepository instance.
func NewGameRepository(pool *pgxpool.Pool) *GameRepository {
	return &GameRepository{pool: pool}
}

// Create inserts a game row.
func (r *GameRepository) Create(ctx context.Context, g *model.Game) error {
	const query = `
		INSERT INTO games (id, chat_id, variant, status, rounds, created_at)
		VALUES ($1, $2, $3, $4, 0, $5)
	`

	if _, err := r.pool.Exec(ctx, query, g.ID, g.ChatID, g.Variant, g.Status, g.CreatedAt); err != nil {
		return fmt.Errorf("failed to create game: %w", err)
	}
	return nil
}

// GetByID retrieves a game. Returns ErrGameNotFound if it does not exist.
func (r *GameRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Game, error) {
	const query = `
		SELECT id, chat_id, variant, status, winner, rounds, created_at, finished_at
		FROM games
		WHERE id = $1
	`

	var g model.Game
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&g.ID,
		&g.ChatID,
		&g.Variant,
		&g.Status,
		&g.Winner,
		&g.Rounds,
		&g.CreatedAt,
		&g.FinishedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("failed to get game: %w", err)
	}
	return &g, nil
}

// AddPlayers inserts the seats of a started game.
func (r *GameRepository) AddPlayers(ctx context.Context, gameID uuid.UUID, players []model.GamePlayer) error {
	const query = `
		INSERT INTO game_players (game_id, user_id, name, role, is_bot, alive)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (game_id, user_id) DO UPDATE
		SET role = EXCLUDED.role, alive = EXCLUDED.alive
	`

	batch := &pgx.Batch{}
	for _, p := range players {
		batch.Queue(query, gameID, p.UserID, p.Name, p.Role, p.IsBot, p.Alive)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()
	for range players {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("failed to add game player: %w", err)
		}
	}
	return nil
}

// GetPlayers retrieves the seats of a game in no particular order.
func (r *GameRepository) GetPlayers(ctx context.Context, gameID uuid.UUID) ([]model.GamePlayer, error) {
	const query = `
		SELECT game_id, user_id, name, role, is_bot, alive, result
		FROM game_players
		WHERE game_id = $1
		ORDER BY user_id
	`

	rows, err := r.pool.Query(ctx, query, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game players: %w", err)
	}
	defer rows.Close()

	var players []model.GamePlayer
	for rows.Next() {
		var p model.GamePlayer
		if err := rows.Scan(&p.GameID, &p.UserID, &p.Name, &p.Role, &p.IsBot, &p.Alive, &p.Result); err != nil {
			return nil, fmt.Errorf("failed to scan game player: %w", err)
		}
		players = append(players, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating game players: %w", err)
	}
	return players, nil
}

// Finish closes a game in one transaction: the game row, every seat's final
// state, and the win counters of the human players. Abandoned games do not
// count towards player statistics.
func (r *GameRepository) Finish(ctx context.Context, res *model.GameResult) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var winner *string
	if res.Winner != "" {
		winner = &res.Winner
	}

	tag, err := tx.Exec(ctx, `
		UPDATE games
		SET status = $2, winner = $3, rounds = $4, finished_at = $5
		WHERE id = $1
	`, res.GameID, res.Status, winner, res.Rounds, res.FinishedAt)
	if err != nil {
		return fmt.Errorf("failed to finish game: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrGameNotFound
	}

	for _, p := range res.Players {
		_, err := tx.Exec(ctx, `
			UPDATE game_players
			SET alive = $3, result = $4
			WHERE game_id = $1 AND user_id = $2
		`, res.GameID, p.UserID, p.Alive, p.Result)
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
		_, err = tx.Exec(ctx, `
			UPDATE users
			SET games_played = games_played + 1, games_won = games_won + $2, updated_at = NOW()
			WHERE telegram_id = $1
		`, p.UserID, won)
		if err != nil {
			return fmt.Errorf("failed to update user stats: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit game result: %w", err)
	}
	return nil
}
