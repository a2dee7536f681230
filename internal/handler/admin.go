package handler

import (
	"context"
	"strconv"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"mafia-bot/internal/game/mafia"
)

// AdminHandler handles admin-only game commands.
type AdminHandler struct {
	game *GameHandler
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(game *GameHandler) *AdminHandler {
	return &AdminHandler{game: game}
}

// targetChat is the chat given as the first argument, or the current chat.
func targetChat(c tele.Context) (int64, bool) {
	if args := c.Args(); len(args) > 0 {
		id, err := strconv.ParseInt(args[0], 10, 64)
		return id, err == nil
	}
	if chat := c.Chat(); isGroup(chat) {
		return chat.ID, true
	}
	return 0, false
}

// HandleAdminEnd handles the /admin_end [chat_id] command: the current
// phase ends as if its timer ran out.
func (h *AdminHandler) HandleAdminEnd(c tele.Context) error {
	ctx := context.Background()
	chatID, ok := targetChat(c)
	if !ok {
		return c.Reply("❌ Usage: /admin_end [chat_id]")
	}

	st, err := h.game.ctrl.Status(ctx, chatID)
	if err != nil {
		return reject(c, err)
	}
	if st.Phase != mafia.PhaseNight && st.Phase != mafia.PhaseDay {
		return c.Reply(RejectionMessage(mafia.ErrInvalidPhase))
	}

	end, err := h.game.ctrl.ForceEnd(ctx, chatID, st.Phase, st.Round)
	if err != nil {
		return reject(c, err)
	}

	log.Info().
		Int64("admin_id", c.Sender().ID).
		Int64("chat_id", chatID).
		Str("phase", st.Phase.String()).
		Int("round", st.Round).
		Str("operation", "admin_end").
		Msg("Admin operation executed")

	if end == nil {
		return c.Reply("ℹ️ The phase already ended")
	}
	h.game.announceEnd(chatID, end, "🛑 An admin ended the phase")
	if c.Chat() == nil || c.Chat().ID != chatID {
		return c.Reply("✅ Phase ended")
	}
	return nil
}

// HandleAdminAbort handles the /admin_abort [chat_id] command: the game is
// abandoned and removed.
func (h *AdminHandler) HandleAdminAbort(c tele.Context) error {
	chatID, ok := targetChat(c)
	if !ok {
		return c.Reply("❌ Usage: /admin_abort [chat_id]")
	}

	st, err := h.game.ctrl.Abort(context.Background(), chatID)
	if err != nil {
		return reject(c, err)
	}
	h.game.timer.Cancel(chatID)

	log.Info().
		Int64("admin_id", c.Sender().ID).
		Int64("chat_id", chatID).
		Str("session_id", st.SessionID.String()).
		Str("operation", "admin_abort").
		Msg("Admin operation executed")

	h.game.send(chatID, "🛑 The game was aborted by an admin\n"+FormatStatus(st))
	if c.Chat() == nil || c.Chat().ID != chatID {
		return c.Reply("✅ Game aborted")
	}
	return nil
}
