// Package handler provides Telegram bot command handlers.
package handler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"mafia-bot/internal/config"
	"mafia-bot/internal/game/mafia"
	"mafia-bot/internal/narrator"
)

// Sender delivers messages outside of an update, for timers, narration and
// private role messages. *tele.Bot implements it.
type Sender interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// GameHandler handles the game commands and target buttons.
type GameHandler struct {
	cfg      *config.Config
	ctrl     *mafia.Controller
	narrator narrator.Narrator
	sender   Sender
	timer    *PhaseTimer

	// seats maps a player to the chat of the game they joined last, so
	// night actions can be sent in private.
	seats sync.Map
}

// NewGameHandler creates a new GameHandler. narr may be nil.
func NewGameHandler(cfg *config.Config, ctrl *mafia.Controller, narr narrator.Narrator, sender Sender) *GameHandler {
	h := &GameHandler{
		cfg:      cfg,
		ctrl:     ctrl,
		narrator: narr,
		sender:   sender,
	}
	h.timer = NewPhaseTimer(cfg.Game.PhaseTimeout, h.onPhaseTimeout)
	return h
}

// Timer returns the phase timer.
func (h *GameHandler) Timer() *PhaseTimer {
	return h.timer
}

// playerName picks the name a player is shown and addressed by.
func playerName(u *tele.User) string {
	if u.Username != "" {
		return u.Username
	}
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		name = fmt.Sprintf("Player%d", u.ID)
	}
	return name
}

func isGroup(chat *tele.Chat) bool {
	return chat != nil && chat.Type != tele.ChatPrivate
}

// reject replies with the rendered rejection and logs infrastructure errors.
func reject(c tele.Context, err error) error {
	if !mafia.IsRejection(err) {
		log.Error().Err(err).Str("text", c.Text()).Msg("Game command failed")
	}
	return c.Reply(RejectionMessage(err))
}

func (h *GameHandler) send(chatID int64, what interface{}, opts ...interface{}) {
	if err := h.sendTo(tele.ChatID(chatID), what, opts...); err != nil {
		log.Warn().Err(err).Int64("chat_id", chatID).Msg("Failed to send message")
	}
}

func (h *GameHandler) sendTo(to tele.Recipient, what interface{}, opts ...interface{}) error {
	if h.sender == nil {
		return errors.New("no sender configured")
	}
	_, err := h.sender.Send(to, what, opts...)
	return err
}

// HandleStart handles the /start command.
func (h *GameHandler) HandleStart(c tele.Context) error {
	return c.Reply(HelpText)
}

// HandleJoin handles the /join command.
func (h *GameHandler) HandleJoin(c tele.Context) error {
	ctx := context.Background()
	chat, sender := c.Chat(), c.Sender()
	if sender == nil || chat == nil {
		return nil
	}
	if !isGroup(chat) {
		return c.Reply("❌ Games are played in group chats")
	}

	res, err := h.ctrl.Join(ctx, chat.ID, sender.ID, playerName(sender))
	if err != nil {
		return reject(c, err)
	}
	h.seats.Store(sender.ID, chat.ID)
	return c.Reply(FormatJoin(res))
}

// HandleAddBot handles the /addbot command.
func (h *GameHandler) HandleAddBot(c tele.Context) error {
	chat := c.Chat()
	if !isGroup(chat) {
		return c.Reply("❌ Games are played in group chats")
	}

	res, err := h.ctrl.AddBot(context.Background(), chat.ID)
	if err != nil {
		return reject(c, err)
	}
	return c.Reply("🤖 " + FormatJoin(res))
}

// HandleStartGame handles the /startgame command.
func (h *GameHandler) HandleStartGame(c tele.Context) error {
	ctx := context.Background()
	chat := c.Chat()
	if !isGroup(chat) {
		return c.Reply("❌ Games are played in group chats")
	}

	res, err := h.ctrl.Start(ctx, chat.ID)
	if err != nil {
		return reject(c, err)
	}

	if err := c.Send(FormatStart(res)); err != nil {
		log.Warn().Err(err).Int64("chat_id", chat.ID).Msg("Failed to announce start")
	}

	var unreachable []string
	for _, p := range res.Roster {
		if p.Bot {
			continue
		}
		h.seats.Store(p.ID, chat.ID)
		if err := h.sendTo(&tele.User{ID: p.ID}, FormatRoleDM(p, res.Roster)); err != nil {
			log.Warn().Err(err).Int64("player_id", p.ID).Msg("Failed to send role")
			unreachable = append(unreachable, p.Name)
		}
	}
	if len(unreachable) > 0 {
		h.send(chat.ID, "⚠️ I could not message "+strings.Join(unreachable, ", ")+
			". Open a private chat with me and use /status there to see the game.")
	}

	if res.Winner != mafia.FactionNone {
		return nil
	}
	h.promptNight(ctx, chat.ID)
	h.timer.Schedule(chat.ID, res.Phase, res.Round)
	return nil
}

// gameChat finds the game the command refers to: the chat itself in groups,
// the player's last game in private.
func (h *GameHandler) gameChat(c tele.Context) (int64, bool) {
	chat, sender := c.Chat(), c.Sender()
	if chat == nil || sender == nil {
		return 0, false
	}
	if isGroup(chat) {
		return chat.ID, true
	}
	v, ok := h.seats.Load(sender.ID)
	if !ok {
		return 0, false
	}
	return v.(int64), true
}

// HandleKill handles the /kill command.
func (h *GameHandler) HandleKill(c tele.Context) error {
	return h.handleNight(c, mafia.ActionKill)
}

// HandleSave handles the /save command.
func (h *GameHandler) HandleSave(c tele.Context) error {
	return h.handleNight(c, mafia.ActionProtect)
}

// HandleCheck handles the /check command.
func (h *GameHandler) HandleCheck(c tele.Context) error {
	return h.handleNight(c, mafia.ActionCheck)
}

func (h *GameHandler) handleNight(c tele.Context, kind mafia.ActionKind) error {
	ctx := context.Background()
	sender := c.Sender()
	chatID, ok := h.gameChat(c)
	if !ok || sender == nil {
		return c.Reply("❌ Join a game in a group first")
	}

	// Night commands in the group give the role away; hide them.
	if isGroup(c.Chat()) {
		if err := c.Delete(); err != nil {
			log.Debug().Err(err).Msg("Failed to delete night command")
		}
	}

	args := c.Args()
	if len(args) == 0 {
		targets, err := h.ctrl.Targets(ctx, chatID, sender.ID, kind)
		if err != nil {
			return h.whisper(sender, RejectionMessage(err))
		}
		return h.whisper(sender, "🎯 Choose your target:", BuildTargetKeyboard(string(kind), chatID, targets))
	}

	targetID, err := h.resolveTarget(ctx, chatID, strings.Join(args, " "))
	if err != nil {
		return h.whisper(sender, RejectionMessage(err))
	}
	msg, err := h.castNight(ctx, chatID, sender.ID, kind, targetID)
	if err != nil {
		return h.whisper(sender, RejectionMessage(err))
	}
	return h.whisper(sender, msg)
}

// whisper answers a player in private.
func (h *GameHandler) whisper(u *tele.User, what interface{}, opts ...interface{}) error {
	if err := h.sendTo(u, what, opts...); err != nil {
		log.Warn().Err(err).Int64("player_id", u.ID).Msg("Failed to send private message")
	}
	return nil
}

func (h *GameHandler) castNight(ctx context.Context, chatID, actorID int64, kind mafia.ActionKind, targetID int64) (string, error) {
	res, err := h.ctrl.CastNightAction(ctx, chatID, actorID, kind, targetID)
	if err != nil {
		if !mafia.IsRejection(err) {
			log.Error().Err(err).Int64("chat_id", chatID).Msg("Night action failed")
		}
		return "", err
	}
	if res.Outcome != nil {
		h.announceNight(chatID, res.Outcome)
	}
	return FormatNightAction(res), nil
}

// resolveTarget finds a player by seat number, name or @username.
func (h *GameHandler) resolveTarget(ctx context.Context, chatID int64, arg string) (int64, error) {
	st, err := h.ctrl.Status(ctx, chatID)
	if err != nil {
		return 0, err
	}
	return MatchPlayer(st.Players, arg)
}

// MatchPlayer resolves arg against the players: a 1-based seat number, or a
// name with or without the leading @, case-insensitive.
func MatchPlayer(players []mafia.PlayerView, arg string) (int64, error) {
	arg = strings.TrimSpace(arg)
	if n, err := strconv.Atoi(arg); err == nil {
		if n >= 1 && n <= len(players) {
			return players[n-1].ID, nil
		}
		return 0, fmt.Errorf("%w: seat %d", mafia.ErrUnknownPlayer, n)
	}
	name := strings.TrimPrefix(arg, "@")
	for _, p := range players {
		if strings.EqualFold(p.Name, name) {
			return p.ID, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", mafia.ErrUnknownPlayer, arg)
}

// HandleEndNight handles the /endnight command.
func (h *GameHandler) HandleEndNight(c tele.Context) error {
	chat := c.Chat()
	if !isGroup(chat) {
		return c.Reply("❌ Use this in the game's group")
	}
	out, err := h.ctrl.ResolveNight(context.Background(), chat.ID)
	if err != nil {
		return reject(c, err)
	}
	h.announceNight(chat.ID, out)
	return nil
}

// HandleVote handles the /vote command.
func (h *GameHandler) HandleVote(c tele.Context) error {
	ctx := context.Background()
	chat, sender := c.Chat(), c.Sender()
	if !isGroup(chat) || sender == nil {
		return c.Reply("❌ Votes are cast in the game's group")
	}

	args := c.Args()
	if len(args) == 0 {
		targets, err := h.ctrl.Targets(ctx, chat.ID, sender.ID, "")
		if err != nil {
			return reject(c, err)
		}
		return c.Reply("🗳 Who do you vote for?", BuildTargetKeyboard(ActionVote, chat.ID, targets))
	}

	targetID, err := h.resolveTarget(ctx, chat.ID, strings.Join(args, " "))
	if err != nil {
		return reject(c, err)
	}
	res, err := h.ctrl.CastVote(ctx, chat.ID, sender.ID, targetID)
	if err != nil {
		return reject(c, err)
	}
	return c.Reply(FormatVote(res))
}

// HandleEndDay handles the /endday command.
func (h *GameHandler) HandleEndDay(c tele.Context) error {
	chat := c.Chat()
	if !isGroup(chat) {
		return c.Reply("❌ Use this in the game's group")
	}
	out, err := h.ctrl.ResolveDay(context.Background(), chat.ID)
	if err != nil {
		return reject(c, err)
	}
	h.announceDay(chat.ID, out)
	return nil
}

// HandleAIMove handles the /ai_move command.
func (h *GameHandler) HandleAIMove(c tele.Context) error {
	chat := c.Chat()
	if !isGroup(chat) {
		return c.Reply("❌ Use this in the game's group")
	}
	turn, err := h.ctrl.PlayBots(context.Background(), chat.ID)
	if err != nil {
		return reject(c, err)
	}

	if err := c.Send(FormatBotTurn(turn)); err != nil {
		log.Warn().Err(err).Int64("chat_id", chat.ID).Msg("Failed to announce bot turn")
	}
	for _, m := range turn.Moves {
		if m.Kind == mafia.MoveVote {
			h.narrate(chat.ID, narrator.VoteSummary(m.Bot, m.Target))
		}
	}
	if turn.Night != nil {
		h.announceNight(chat.ID, turn.Night)
	}
	return nil
}

// HandleStatus handles the /status command.
func (h *GameHandler) HandleStatus(c tele.Context) error {
	chatID, ok := h.gameChat(c)
	if !ok {
		return c.Reply(RejectionMessage(mafia.ErrNoSession))
	}
	st, err := h.ctrl.Status(context.Background(), chatID)
	if err != nil {
		return reject(c, err)
	}
	return c.Reply(FormatStatus(st))
}

// HandleNewGame handles the /newgame [variant] command.
func (h *GameHandler) HandleNewGame(c tele.Context) error {
	chat := c.Chat()
	if !isGroup(chat) {
		return c.Reply("❌ Games are played in group chats")
	}
	variant := ""
	if args := c.Args(); len(args) > 0 {
		variant = strings.ToLower(args[0])
	}

	res, err := h.ctrl.NewGame(context.Background(), chat.ID, variant)
	if err != nil {
		return reject(c, err)
	}
	h.timer.Cancel(chat.ID)

	msg := fmt.Sprintf("🆕 New %s lobby opened, use /join to take a seat", res.Variant)
	if res.Abandoned {
		msg = "🛑 The running game was abandoned.\n" + msg
	}
	return c.Reply(msg)
}

// HandleVariants handles the /variants command.
func (h *GameHandler) HandleVariants(c tele.Context) error {
	return c.Reply(FormatVariants(h.ctrl.Variants().List()))
}

// HandleCallback handles target buttons.
func (h *GameHandler) HandleCallback(c tele.Context) error {
	ctx := context.Background()
	callback, sender := c.Callback(), c.Sender()
	if callback == nil || sender == nil {
		return nil
	}

	action, chatID, targetID, ok := DecodeCallback(callback.Data)
	if !ok {
		return c.Respond(&tele.CallbackResponse{Text: "❌ Invalid action"})
	}

	if action == ActionVote {
		res, err := h.ctrl.CastVote(ctx, chatID, sender.ID, targetID)
		if err != nil {
			return c.Respond(&tele.CallbackResponse{Text: RejectionMessage(err), ShowAlert: true})
		}
		h.send(chatID, FormatVote(res))
		return c.Respond(&tele.CallbackResponse{Text: "✅ Vote counted"})
	}

	kind, ok := mafia.ParseActionKind(action)
	if !ok {
		return c.Respond(&tele.CallbackResponse{Text: "❌ Invalid action"})
	}
	msg, err := h.castNight(ctx, chatID, sender.ID, kind, targetID)
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: RejectionMessage(err), ShowAlert: true})
	}
	if callback.Message != nil {
		if _, err := c.Bot().Edit(callback.Message, msg); err != nil {
			log.Debug().Err(err).Msg("Failed to edit target keyboard")
		}
	}
	return c.Respond(&tele.CallbackResponse{Text: msg, ShowAlert: kind == mafia.ActionCheck})
}

// announceNight posts a night outcome and moves the timer to the day.
func (h *GameHandler) announceNight(chatID int64, out *mafia.NightOutcome) {
	h.send(chatID, FormatNightOutcome(out))
	h.narrate(chatID, narrator.NightSummary(out))

	if out.Winner != mafia.FactionNone {
		h.gameOver(chatID)
		return
	}
	h.timer.Schedule(chatID, out.Phase, out.Round)
}

// announceDay posts a day outcome and, unless the game is over, opens the
// next night.
func (h *GameHandler) announceDay(chatID int64, out *mafia.DayOutcome) {
	h.send(chatID, FormatDayOutcome(out))
	h.narrate(chatID, narrator.DaySummary(out))

	if out.Winner != mafia.FactionNone {
		h.gameOver(chatID)
		return
	}
	h.promptNight(context.Background(), chatID)
	h.timer.Schedule(chatID, out.Phase, out.Round+1)
}

// gameOver reveals every role.
func (h *GameHandler) gameOver(chatID int64) {
	h.timer.Cancel(chatID)
	st, err := h.ctrl.Status(context.Background(), chatID)
	if err != nil {
		log.Warn().Err(err).Int64("chat_id", chatID).Msg("Failed to load final status")
		return
	}
	h.send(chatID, FormatStatus(st))
}

// promptNight sends every living human with a night role their target
// buttons.
func (h *GameHandler) promptNight(ctx context.Context, chatID int64) {
	roster, err := h.ctrl.Roles(ctx, chatID)
	if err != nil {
		log.Warn().Err(err).Int64("chat_id", chatID).Msg("Failed to load roles")
		return
	}
	for _, p := range roster {
		if p.Bot || !p.Alive {
			continue
		}
		var kind mafia.ActionKind
		switch p.Role {
		case mafia.RoleMafia:
			kind = mafia.ActionKill
		case mafia.RoleDoctor:
			kind = mafia.ActionProtect
		case mafia.RoleSheriff:
			kind = mafia.ActionCheck
		default:
			continue
		}
		targets, err := h.ctrl.Targets(ctx, chatID, p.ID, kind)
		if err != nil {
			continue
		}
		if err := h.sendTo(&tele.User{ID: p.ID}, "🌙 Night falls. Choose your target:",
			BuildTargetKeyboard(string(kind), chatID, targets)); err != nil {
			log.Debug().Err(err).Int64("player_id", p.ID).Msg("Failed to send night prompt")
		}
	}
}

// onPhaseTimeout ends a phase that ran out of time.
func (h *GameHandler) onPhaseTimeout(chatID int64, phase mafia.Phase, round int) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	end, err := h.ctrl.ForceEnd(ctx, chatID, phase, round)
	if err != nil {
		if !errors.Is(err, mafia.ErrNoSession) {
			log.Warn().Err(err).Int64("chat_id", chatID).Msg("Failed to end phase on timeout")
		}
		return
	}
	h.announceEnd(chatID, end, "⏰ Time is up!")
}

func (h *GameHandler) announceEnd(chatID int64, end *mafia.PhaseEnd, notice string) {
	if end == nil {
		return
	}
	h.send(chatID, notice)
	switch {
	case end.Night != nil:
		h.announceNight(chatID, end.Night)
	case end.Day != nil:
		h.announceDay(chatID, end.Day)
	}
}

// narrate posts commentary once the narrator answers. It never blocks the
// caller.
func (h *GameHandler) narrate(chatID int64, summary string) {
	if h.narrator == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), h.narrationTimeout())
		defer cancel()

		text, err := h.narrator.Explain(ctx, summary)
		if err != nil || text == "" {
			log.Debug().Err(err).Int64("chat_id", chatID).Msg("No narration")
			return
		}
		h.send(chatID, "🎙 "+text)
	}()
}

func (h *GameHandler) narrationTimeout() time.Duration {
	if h.cfg.Narrator.Timeout > 0 {
		return h.cfg.Narrator.Timeout + time.Second
	}
	return 20 * time.Second
}
