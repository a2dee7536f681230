package handler

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"mafia-bot/internal/service"
)

// StatsHandler handles player statistics commands.
type StatsHandler struct {
	stats *service.StatsService
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(stats *service.StatsService) *StatsHandler {
	return &StatsHandler{stats: stats}
}

// HandleStats handles the /stats command.
func (h *StatsHandler) HandleStats(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	user, err := h.stats.UserStats(context.Background(), sender.ID)
	if err != nil {
		if errors.Is(err, service.ErrNoStats) {
			return c.Reply("📊 You have not finished a game yet")
		}
		log.Error().Err(err).Int64("user_id", sender.ID).Msg("Failed to load stats")
		return c.Reply("❌ Failed to load statistics, please try again later")
	}
	return c.Reply(FormatStats(user))
}

// HandleTop handles the /top command.
func (h *StatsHandler) HandleTop(c tele.Context) error {
	users, err := h.stats.Top(context.Background(), service.DefaultTopLimit)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load leaderboard")
		return c.Reply("❌ Failed to load the leaderboard, please try again later")
	}
	return c.Reply(FormatTop(users))
}
