package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

var migrations = []struct {
	name string
	sql  string
}{
	{"users table", `
		CREATE TABLE IF NOT EXISTS users (
			telegram_id BIGINT PRIMARY KEY,
			username VARCHAR(255) NOT NULL,
			games_played INT NOT NULL DEFAULT 0,
			games_won INT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_users_games_won ON users(games_won DESC);
	`},
	{"games table", `
		CREATE TABLE IF NOT EXISTS games (
			id UUID PRIMARY KEY,
			chat_id BIGINT NOT NULL,
			variant VARCHAR(50) NOT NULL,
			status VARCHAR(20) NOT NULL,
			winner VARCHAR(20),
			rounds INT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			finished_at TIMESTAMPTZ
		);
		CREATE INDEX IF NOT EXISTS idx_games_chat ON games(chat_id, created_at DESC);
	`},
	{"game_players table", `
		CREATE TABLE IF NOT EXISTS game_players (
			game_id UUID NOT NULL REFERENCES games(id) ON DELETE CASCADE,
			user_id BIGINT NOT NULL,
			name VARCHAR(255) NOT NULL,
			role VARCHAR(20) NOT NULL,
			is_bot BOOLEAN NOT NULL DEFAULT FALSE,
			alive BOOLEAN NOT NULL DEFAULT TRUE,
			result VARCHAR(10),
			PRIMARY KEY (game_id, user_id)
		);
	`},
	{"moves table", `
		CREATE TABLE IF NOT EXISTS moves (
			id BIGSERIAL PRIMARY KEY,
			game_id UUID NOT NULL REFERENCES games(id) ON DELETE CASCADE,
			round INT NOT NULL,
			phase VARCHAR(20) NOT NULL,
			type VARCHAR(20) NOT NULL,
			actor_id BIGINT NOT NULL,
			target_id BIGINT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_moves_game ON moves(game_id, id);
	`},
	{"training_data table", `
		CREATE TABLE IF NOT EXISTS training_data (
			id BIGSERIAL PRIMARY KEY,
			game_id UUID NOT NULL REFERENCES games(id) ON DELETE CASCADE,
			actor_id BIGINT NOT NULL,
			state JSONB NOT NULL,
			action VARCHAR(20) NOT NULL,
			target_id BIGINT NOT NULL,
			outcome VARCHAR(20),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_training_game_actor ON training_data(game_id, actor_id);
	`},
}

// Migrate applies the schema. Every statement is idempotent.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	log.Info().Msg("Running database migrations...")

	for i, m := range migrations {
		if _, err := pool.Exec(ctx, m.sql); err != nil {
			return fmt.Errorf("migration %d (%s) failed: %w", i+1, m.name, err)
		}
		log.Info().Msgf("Migration %d: %s created", i+1, m.name)
	}

	log.Info().Msg("All migrations completed successfully")
	return nil
}
