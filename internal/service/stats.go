package service

import (
	"context"
	"errors"
	"fmt"

	"mafia-bot/internal/model"
	"mafia-bot/internal/repository"
)

// DefaultTopLimit is the leaderboard size used when none is given.
const DefaultTopLimit = 10

// MaxTopLimit caps the leaderboard size.
const MaxTopLimit = 50

// ErrNoStats is returned for users who never finished a game.
var ErrNoStats = errors.New("no games played yet")

// StatsService handles player statistics and the leaderboard.
type StatsService struct {
	users UserStore
}

// NewStatsService creates a new StatsService instance.
func NewStatsService(users UserStore) *StatsService {
	return &StatsService{users: users}
}

// UserStats returns the statistics of one player.
func (s *StatsService) UserStats(ctx context.Context, telegramID int64) (*model.User, error) {
	user, err := s.users.GetByID(ctx, telegramID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrNoStats
		}
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}
	if user.GamesPlayed == 0 {
		return nil, ErrNoStats
	}
	return user, nil
}

// Top returns the players with the most wins. limit is clamped to
// [1, MaxTopLimit]; 0 means DefaultTopLimit.
func (s *StatsService) Top(ctx context.Context, limit int) ([]*model.User, error) {
	switch {
	case limit <= 0:
		limit = DefaultTopLimit
	case limit > MaxTopLimit:
		limit = MaxTopLimit
	}
	users, err := s.users.GetTop(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}
	return users, nil
}
