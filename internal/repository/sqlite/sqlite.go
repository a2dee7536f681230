// Package sqlite provides SQLite implementations of the stores, for
// single-node deployments without PostgreSQL.
package sqlite

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
)

const schema = `
	CREATE TABLE IF NOT EXISTS users (
		telegram_id INTEGER PRIMARY KEY,
		username TEXT NOT NULL,
		games_played INTEGER NOT NULL DEFAULT 0,
		games_won INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	CREATE TABLE IF NOT EXISTS games (
		id TEXT PRIMARY KEY,
		chat_id INTEGER NOT NULL,
		variant TEXT NOT NULL,
		status TEXT NOT NULL,
		winner TEXT,
		rounds INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		finished_at TIMESTAMP
	);
	CREATE TABLE IF NOT EXISTS game_players (
		game_id TEXT NOT NULL,
		user_id INTEGER NOT NULL,
		name TEXT NOT NULL,
		role TEXT NOT NULL,
		is_bot BOOLEAN NOT NULL DEFAULT 0,
		alive BOOLEAN NOT NULL DEFAULT 1,
		result TEXT,
		PRIMARY KEY (game_id, user_id),
		FOREIGN KEY (game_id) REFERENCES games(id)
	);
	CREATE TABLE IF NOT EXISTS moves (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		game_id TEXT NOT NULL,
		round INTEGER NOT NULL,
		phase TEXT NOT NULL,
		type TEXT NOT NULL,
		actor_id INTEGER NOT NULL,
		target_id INTEGER NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (game_id) REFERENCES games(id)
	);
	CREATE TABLE IF NOT EXISTS training_data (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		game_id TEXT NOT NULL,
		actor_id INTEGER NOT NULL,
		state TEXT NOT NULL,
		action TEXT NOT NULL,
		target_id INTEGER NOT NULL,
		outcome TEXT,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (game_id) REFERENCES games(id)
	);
	CREATE INDEX IF NOT EXISTS idx_users_games_won ON users(games_won DESC);
	CREATE INDEX IF NOT EXISTS idx_moves_game ON moves(game_id, id);
	CREATE INDEX IF NOT EXISTS idx_training_game_actor ON training_data(game_id, actor_id);
`

// Open connects to the database file at path and applies the schema.
func Open(path string) (*sqlx.DB, error) {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_foreign_keys=on&_txlock=immediate", path)
	db, err := sqlx.Connect("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// SQLite serialises writers anyway.
	db.SetMaxOpenConns(1)

	if err := Migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	log.Info().Str("path", path).Msg("SQLite database ready")
	return db, nil
}

// Migrate applies the schema. Every statement is idempotent.
func Migrate(db *sqlx.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to apply sqlite schema: %w", err)
	}
	return nil
}
