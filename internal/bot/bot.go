// Package bot provides the Telegram bot initialization and handler registration.
package bot

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"mafia-bot/internal/config"
	"mafia-bot/internal/game/mafia"
	"mafia-bot/internal/handler"
	"mafia-bot/internal/narrator"
	"mafia-bot/internal/service"
)

// Bot wraps the telebot instance with application dependencies.
type Bot struct {
	bot     *tele.Bot
	cfg     *config.Config
	private *PrivateUsers

	gameHandler  *handler.GameHandler
	adminHandler *handler.AdminHandler
	statsHandler *handler.StatsHandler
}

// Dependencies holds all the dependencies needed by the bot handlers.
type Dependencies struct {
	Config     *config.Config
	Controller *mafia.Controller
	Stats      *service.StatsService
	// Narrator may be nil.
	Narrator narrator.Narrator
}

// New creates a new Bot instance with the given dependencies.
func New(deps *Dependencies) (*Bot, error) {
	if deps.Config.Bot.Token == "" {
		return nil, fmt.Errorf("bot token is required")
	}

	timeout := deps.Config.Bot.PollTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	pref := tele.Settings{
		Token:  deps.Config.Bot.Token,
		Poller: &tele.LongPoller{Timeout: timeout},
		OnError: func(err error, c tele.Context) {
			log.Error().Err(err).Msg("Handler error")
		},
	}

	teleBot, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	b := &Bot{
		bot:     teleBot,
		cfg:     deps.Config,
		private: NewPrivateUsers(),
	}

	b.gameHandler = handler.NewGameHandler(deps.Config, deps.Controller, deps.Narrator, teleBot)
	b.adminHandler = handler.NewAdminHandler(b.gameHandler)
	b.statsHandler = handler.NewStatsHandler(deps.Stats)

	b.registerMiddleware()
	b.registerHandlers()

	return b, nil
}

// registerMiddleware registers all middleware.
func (b *Bot) registerMiddleware() {
	b.bot.Use(RecoveryMiddleware())
	b.bot.Use(WhitelistMiddleware(b.cfg, b.private))
	b.bot.Use(LoggingMiddleware())
}

// registerHandlers registers all command and callback handlers.
func (b *Bot) registerHandlers() {
	g := b.gameHandler

	b.bot.Handle("/start", g.HandleStart)
	b.bot.Handle("/help", g.HandleStart)

	// Lobby
	b.bot.Handle("/join", g.HandleJoin)
	b.bot.Handle("/addbot", g.HandleAddBot)
	b.bot.Handle("/startgame", g.HandleStartGame)
	b.bot.Handle("/newgame", g.HandleNewGame)
	b.bot.Handle("/variants", g.HandleVariants)

	// Night
	b.bot.Handle("/kill", g.HandleKill)
	b.bot.Handle("/save", g.HandleSave)
	b.bot.Handle("/check", g.HandleCheck)
	b.bot.Handle("/endnight", g.HandleEndNight)

	// Day
	b.bot.Handle("/vote", g.HandleVote)
	b.bot.Handle("/endday", g.HandleEndDay)

	b.bot.Handle("/ai_move", g.HandleAIMove)
	b.bot.Handle("/status", g.HandleStatus)

	b.bot.Handle("/stats", b.statsHandler.HandleStats)
	b.bot.Handle("/top", b.statsHandler.HandleTop)

	adminGroup := b.bot.Group()
	adminGroup.Use(AdminMiddleware(b.cfg))
	adminGroup.Handle("/admin_end", b.adminHandler.HandleAdminEnd)
	adminGroup.Handle("/admin_abort", b.adminHandler.HandleAdminAbort)

	b.bot.Handle(tele.OnCallback, b.handleCallback)
}

// handleCallback routes inline button presses.
func (b *Bot) handleCallback(c tele.Context) error {
	callback := c.Callback()
	if callback == nil {
		return nil
	}

	// Telebot v3 may add a \f prefix to callback data
	data := strings.TrimPrefix(callback.Data, "\f")
	if strings.HasPrefix(data, handler.CallbackPrefix) {
		return b.gameHandler.HandleCallback(c)
	}

	log.Debug().Str("data", data).Msg("Unknown callback")
	return c.Respond()
}

// Start starts the bot polling. It blocks until Stop is called.
func (b *Bot) Start() {
	log.Info().Str("username", b.bot.Me.Username).Msg("Starting bot...")
	b.bot.Start()
}

// Stop stops polling and cancels every pending phase timer.
func (b *Bot) Stop() {
	log.Info().Msg("Stopping bot...")
	b.bot.Stop()
	b.gameHandler.Timer().Stop()
}
