// Package main is the entry point for the mafia bot.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"mafia-bot/internal/bot"
	"mafia-bot/internal/config"
	"mafia-bot/internal/game"
	"mafia-bot/internal/game/mafia"
	"mafia-bot/internal/narrator"
	"mafia-bot/internal/pkg/db"
	"mafia-bot/internal/repository"
	"mafia-bot/internal/repository/sqlite"
	"mafia-bot/internal/service"
)

func main() {
	// A missing .env is fine, the environment may already be set.
	if err := godotenv.Load(); err == nil {
		log.Debug().Msg("Loaded .env")
	}

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load("config")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	setupLogger(cfg.Log)

	log.Info().Msg("Configuration loaded successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stores, closeStores, err := openStores(ctx, &cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Database.Driver).Msg("Failed to open storage")
	}
	defer closeStores()

	variants := game.NewRegistry()
	for _, v := range []game.Variant{
		mafia.NewClassic(cfg.Game.MinPlayers, cfg.Game.MaxPlayers),
		mafia.NewFixed7(),
	} {
		if err := variants.Register(v); err != nil {
			log.Fatal().Err(err).Str("variant", v.Command()).Msg("Failed to register variant")
		}
	}

	log.Info().
		Int("variant_count", variants.Count()).
		Strs("variants", variants.Commands()).
		Msg("Variants registered")

	hooks := mafia.NewAsyncHooks(service.NewRecorder(*stores), cfg.Game.EventBuffer, cfg.Game.HookTimeout)

	seed := cfg.Game.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	ctrl := mafia.NewController(variants, hooks, mafia.NewRandomPolicy(seed), mafia.ControllerConfig{
		DefaultVariant: cfg.Game.Variant,
		ActionTimeout:  cfg.Game.ActionTimeout,
		Seed:           cfg.Game.Seed,
	})

	narr, err := narrator.New(ctx, cfg.Narrator)
	if err != nil {
		log.Fatal().Err(err).Str("provider", cfg.Narrator.Provider).Msg("Failed to create narrator")
	}

	telegramBot, err := bot.New(&bot.Dependencies{
		Config:     cfg,
		Controller: ctrl,
		Stats:      service.NewStatsService(stores.Users),
		Narrator:   narr,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create bot")
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info().Msg("Bot is starting...")
		telegramBot.Start()
	}()

	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")

	telegramBot.Stop()

	flushCtx, flushCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer flushCancel()
	if err := hooks.Close(flushCtx); err != nil {
		log.Warn().Err(err).Int64("dropped", hooks.Dropped()).Msg("Game events not fully flushed")
	}
	log.Info().Msg("Bot stopped gracefully")
}

func setupLogger(cfg config.LogConfig) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if !cfg.Pretty {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
}

// openStores connects the configured database, migrates it and returns the
// repositories behind it.
func openStores(ctx context.Context, cfg *config.DatabaseConfig) (*service.Stores, func(), error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		sqlDB, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		log.Info().Str("path", cfg.SQLitePath).Msg("SQLite database opened")
		return &service.Stores{
			Users:    sqlite.NewUserRepository(sqlDB),
			Games:    sqlite.NewGameRepository(sqlDB),
			Moves:    sqlite.NewMoveRepository(sqlDB),
			Training: sqlite.NewTrainingRepository(sqlDB),
		}, func() { _ = sqlDB.Close() }, nil

	case config.DriverPostgres, "":
		pool, err := db.NewPool(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		if err := repository.Migrate(ctx, pool.Pool); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("failed to run database migrations: %w", err)
		}
		return &service.Stores{
			Users:    repository.NewUserRepository(pool.Pool),
			Games:    repository.NewGameRepository(pool.Pool),
			Moves:    repository.NewMoveRepository(pool.Pool),
			Training: repository.NewTrainingRepository(pool.Pool),
		}, pool.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
}
