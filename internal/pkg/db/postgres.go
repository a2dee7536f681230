// Package db provides PostgreSQL database connection management.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"mafia-bot/internal/config"
)

const (
	connectAttempts = 5
	retryDelay      = 2 * time.Second
)

// Pool wraps pgxpool.Pool for the game repositories.
type Pool struct {
	*pgxpool.Pool
}

func orDuration(v, def time.Duration) time.Duration {
	if v > 0 {
		return v
	}
	return def
}

// poolConfig maps the database settings onto pgxpool.
func poolConfig(cfg *config.DatabaseConfig) (*pgxpool.Config, error) {
	pc, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	size := max(cfg.PoolSize, 4)
	pc.MaxConns = int32(size)
	pc.MinConns = int32(max(size/4, 1))
	pc.ConnConfig.ConnectTimeout = orDuration(cfg.ConnectTimeout, 10*time.Second)
	pc.MaxConnLifetime = orDuration(cfg.MaxConnLifetime, time.Hour)
	pc.MaxConnIdleTime = orDuration(cfg.MaxConnIdleTime, 30*time.Minute)
	pc.HealthCheckPeriod = 30 * time.Second
	return pc, nil
}

// NewPool connects to PostgreSQL. The database often comes up together with
// the bot, so the first ping is retried a few times.
func NewPool(ctx context.Context, cfg *config.DatabaseConfig) (*Pool, error) {
	pc, err := poolConfig(cfg)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Str("database", cfg.Name).
		Int32("max_conns", pc.MaxConns).
		Msg("Connecting to PostgreSQL")

	pgPool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	pool := &Pool{Pool: pgPool}

	for attempt := 1; ; attempt++ {
		err = pool.HealthCheck(ctx, pc.ConnConfig.ConnectTimeout)
		if err == nil {
			break
		}
		if attempt == connectAttempts {
			pgPool.Close()
			return nil, fmt.Errorf("failed to ping database after %d attempts: %w", attempt, err)
		}
		log.Warn().Err(err).Int("attempt", attempt).Msg("Database not ready, retrying")
		select {
		case <-ctx.Done():
			pgPool.Close()
			return nil, ctx.Err()
		case <-time.After(retryDelay):
		}
	}

	log.Info().Msg("Successfully connected to PostgreSQL")
	return pool, nil
}

// Close closes the connection pool.
func (p *Pool) Close() {
	if p.Pool != nil {
		p.Pool.Close()
		log.Info().Msg("PostgreSQL connection pool closed")
	}
}

// HealthCheck pings the database with a bounded wait.
func (p *Pool) HealthCheck(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return p.Pool.Ping(ctx)
}
