package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mafia-bot/internal/model"
)

func TestStatsUserStats(t *testing.T) {
	store := newMemStore()
	store.users[1] = &model.User{TelegramID: 1, Username: "alice", GamesPlayed: 4, GamesWon: 3}
	store.users[2] = &model.User{TelegramID: 2, Username: "bob"}
	svc := NewStatsService(store)
	ctx := context.Background()

	u, err := svc.UserStats(ctx, 1)
	require.NoError(t, err)
	assert.InDelta(t, 0.75, u.WinRate(), 1e-9)

	_, err = svc.UserStats(ctx, 2)
	assert.ErrorIs(t, err, ErrNoStats)

	_, err = svc.UserStats(ctx, 3)
	assert.ErrorIs(t, err, ErrNoStats)

	store.fail = true
	_, err = svc.UserStats(ctx, 1)
	assert.ErrorIs(t, err, errStore)
}

func TestStatsTop(t *testing.T) {
	store := newMemStore()
	for i := int64(1); i <= 60; i++ {
		store.users[i] = &model.User{TelegramID: i, GamesPlayed: 100, GamesWon: int(i)}
	}
	svc := NewStatsService(store)
	ctx := context.Background()

	tests := []struct {
		limit int
		want  int
	}{
		{0, DefaultTopLimit},
		{-3, DefaultTopLimit},
		{5, 5},
		{500, MaxTopLimit},
	}
	for _, tt := range tests {
		users, err := svc.Top(ctx, tt.limit)
		require.NoError(t, err)
		assert.Len(t, users, tt.want)
		assert.Equal(t, int64(60), users[0].TelegramID)
	}
}
