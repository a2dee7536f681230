package mafia

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"mafia-bot/internal/game"
	"mafia-bot/internal/pkg/lock"
)

// ControllerConfig configures a Controller.
type ControllerConfig struct {
	// DefaultVariant is used when a session is created by a join.
	DefaultVariant string
	// ActionTimeout bounds how long a call waits for its chat. 0 waits on
	// the caller's context alone.
	ActionTimeout time.Duration
	// Seed makes every session's role shuffle reproducible. 0 seeds from
	// the clock.
	Seed int64
}

// Controller owns every chat's session and serializes the calls on each
// chat. Calls on different chats run independently.
type Controller struct {
	mu       sync.Mutex
	sessions map[int64]*Session

	locks    *lock.KeyLock
	variants *game.Registry
	hooks    Hooks
	policy   Policy
	cfg      ControllerConfig
}

// NewController creates a Controller. hooks and policy may be nil.
func NewController(variants *game.Registry, hooks Hooks, policy Policy, cfg ControllerConfig) *Controller {
	if hooks == nil {
		hooks = NopHooks{}
	}
	if policy == nil {
		policy = NewRandomPolicy(time.Now().UnixNano())
	}
	if cfg.DefaultVariant == "" {
		cfg.DefaultVariant = VariantClassic
	}
	return &Controller{
		sessions: make(map[int64]*Session),
		locks:    lock.NewKeyLock(),
		variants: variants,
		hooks:    hooks,
		policy:   policy,
		cfg:      cfg,
	}
}

// Variants returns the variant registry.
func (c *Controller) Variants() *game.Registry {
	return c.variants
}

func (c *Controller) seed() int64 {
	if c.cfg.Seed != 0 {
		return c.cfg.Seed
	}
	return time.Now().UnixNano()
}

func (c *Controller) lookup(key int64) *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessions[key]
}

func (c *Controller) store(key int64, s *Session) {
	c.mu.Lock()
	c.sessions[key] = s
	c.mu.Unlock()
}

// withChat runs fn while holding the chat's lock.
func (c *Controller) withChat(ctx context.Context, key int64, fn func() error) error {
	return c.locks.WithLockContext(ctx, key, c.cfg.ActionTimeout, fn)
}

// withSession runs fn on the chat's session while holding the chat's lock.
func (c *Controller) withSession(ctx context.Context, key int64, fn func(s *Session) error) error {
	return c.withChat(ctx, key, func() error {
		s := c.lookup(key)
		if s == nil {
			return ErrNoSession
		}
		return fn(s)
	})
}

// create installs a fresh session. The caller holds the chat's lock.
func (c *Controller) create(ctx context.Context, key int64, v game.Variant) *Session {
	s := NewSession(key, v, c.seed())
	c.store(key, s)

	log.Info().
		Int64("chat_id", key).
		Str("session_id", s.ID.String()).
		Str("variant", v.Command()).
		Msg("Game created")

	c.hooks.OnGameCreated(ctx, GameCreated{
		SessionID: s.ID,
		ChatID:    key,
		Variant:   v.Command(),
		At:        time.Now(),
	})
	return s
}

func (c *Controller) variant(name string) (game.Variant, error) {
	if name == "" {
		name = c.cfg.DefaultVariant
	}
	v, ok := c.variants.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownVariant, name)
	}
	return v, nil
}

// Join seats a player, creating the chat's session on first join.
func (c *Controller) Join(ctx context.Context, key, playerID int64, name string) (*JoinResult, error) {
	var res *JoinResult
	err := c.withChat(ctx, key, func() error {
		s := c.lookup(key)
		if s == nil {
			v, err := c.variant("")
			if err != nil {
				return err
			}
			s = c.create(ctx, key, v)
		}
		var err error
		res, err = s.Join(playerID, name)
		return err
	})
	return res, err
}

// AddBot seats a bot-controlled player in the lobby.
func (c *Controller) AddBot(ctx context.Context, key int64) (*JoinResult, error) {
	var res *JoinResult
	err := c.withChat(ctx, key, func() error {
		s := c.lookup(key)
		if s == nil {
			v, err := c.variant("")
			if err != nil {
				return err
			}
			s = c.create(ctx, key, v)
		}
		var err error
		res, err = s.AddBot("")
		return err
	})
	return res, err
}

// Start closes the lobby and assigns roles.
func (c *Controller) Start(ctx context.Context, key int64) (*StartResult, error) {
	var res *StartResult
	err := c.withSession(ctx, key, func(s *Session) error {
		var err error
		res, err = s.Start()
		if err != nil {
			return err
		}

		log.Info().
			Int64("chat_id", key).
			Str("session_id", s.ID.String()).
			Int("players", len(res.Roster)).
			Msg("Game started")

		c.hooks.OnGameStarted(ctx, GameStarted{
			SessionID: s.ID,
			ChatID:    key,
			Roster:    res.Roster,
			At:        time.Now(),
		})
		c.finished(ctx, s, false)
		return nil
	})
	return res, err
}

// CastNightAction records a night action; the night resolves on its own
// once every special role has acted.
func (c *Controller) CastNightAction(ctx context.Context, key, actorID int64, kind ActionKind, targetID int64) (*NightActionResult, error) {
	var res *NightActionResult
	err := c.withSession(ctx, key, func(s *Session) error {
		var err error
		res, err = c.castNight(ctx, s, actorID, kind, targetID)
		return err
	})
	return res, err
}

func (c *Controller) castNight(ctx context.Context, s *Session, actorID int64, kind ActionKind, targetID int64) (*NightActionResult, error) {
	snap := s.Snapshot()
	round := s.Round()

	res, err := s.CastNightAction(actorID, kind, targetID)
	if err != nil {
		return nil, err
	}

	c.hooks.OnMoveMade(ctx, MoveMade{
		SessionID: s.ID,
		ChatID:    s.ChatID,
		Round:     round,
		Phase:     PhaseNight,
		Kind:      string(kind),
		Actor:     res.Actor,
		Target:    res.Target,
		Snapshot:  snap,
		At:        time.Now(),
	})
	if res.Outcome != nil {
		c.logNight(s, res.Outcome)
		c.finished(ctx, s, false)
	}
	return res, nil
}

// ResolveNight ends the night with the actions collected so far.
func (c *Controller) ResolveNight(ctx context.Context, key int64) (*NightOutcome, error) {
	var out *NightOutcome
	err := c.withSession(ctx, key, func(s *Session) error {
		var err error
		out, err = s.ResolveNight()
		if err != nil {
			return err
		}
		c.logNight(s, out)
		c.finished(ctx, s, false)
		return nil
	})
	return out, err
}

func (c *Controller) logNight(s *Session, out *NightOutcome) {
	ev := log.Info().
		Int64("chat_id", s.ChatID).
		Str("session_id", s.ID.String()).
		Int("round", out.Round).
		Bool("saved", out.Saved).
		Bool("forced", out.Forced)
	if out.Victim != nil {
		ev = ev.Int64("victim_id", out.Victim.ID)
	}
	ev.Msg("Night resolved")
}

// CastVote records a day vote and returns the running tally.
func (c *Controller) CastVote(ctx context.Context, key, voterID, targetID int64) (*VoteResult, error) {
	var res *VoteResult
	err := c.withSession(ctx, key, func(s *Session) error {
		var err error
		res, err = c.castVote(ctx, s, voterID, targetID)
		return err
	})
	return res, err
}

func (c *Controller) castVote(ctx context.Context, s *Session, voterID, targetID int64) (*VoteResult, error) {
	snap := s.Snapshot()

	res, err := s.CastVote(voterID, targetID)
	if err != nil {
		return nil, err
	}

	c.hooks.OnMoveMade(ctx, MoveMade{
		SessionID: s.ID,
		ChatID:    s.ChatID,
		Round:     s.Round(),
		Phase:     PhaseDay,
		Kind:      MoveVote,
		Actor:     res.Voter,
		Target:    res.Target,
		Snapshot:  snap,
		At:        time.Now(),
	})
	return res, nil
}

// ResolveDay tallies the votes and ends the day.
func (c *Controller) ResolveDay(ctx context.Context, key int64) (*DayOutcome, error) {
	var out *DayOutcome
	err := c.withSession(ctx, key, func(s *Session) error {
		var err error
		out, err = s.ResolveDay()
		if err != nil {
			return err
		}
		c.logDay(s, out)
		c.finished(ctx, s, false)
		return nil
	})
	return out, err
}

func (c *Controller) logDay(s *Session, out *DayOutcome) {
	ev := log.Info().
		Int64("chat_id", s.ChatID).
		Str("session_id", s.ID.String()).
		Int("round", out.Round).
		Bool("tie", out.Tie).
		Bool("no_votes", out.NoVotes)
	if out.Executed != nil {
		ev = ev.Int64("executed_id", out.Executed.ID)
	}
	ev.Msg("Day resolved")
}

// PhaseEnd is the result of ForceEnd. At most one field is set.
type PhaseEnd struct {
	Night *NightOutcome
	Day   *DayOutcome
}

// ForceEnd ends the current phase, but only if the chat is still in the
// given phase and round. It returns nil, nil when the game has moved on.
func (c *Controller) ForceEnd(ctx context.Context, key int64, phase Phase, round int) (*PhaseEnd, error) {
	var end *PhaseEnd
	err := c.withSession(ctx, key, func(s *Session) error {
		if s.Phase() != phase || s.Round() != round {
			return nil
		}
		switch phase {
		case PhaseNight:
			out, err := s.ResolveNight()
			if err != nil {
				return err
			}
			c.logNight(s, out)
			end = &PhaseEnd{Night: out}
		case PhaseDay:
			out, err := s.ResolveDay()
			if err != nil {
				return err
			}
			c.logDay(s, out)
			end = &PhaseEnd{Day: out}
		default:
			return fmt.Errorf("%w: cannot force end %s", ErrInvalidPhase, phase)
		}
		c.finished(ctx, s, false)
		return nil
	})
	return end, err
}

// PlayBots makes every bot seat that still has to act in the current phase
// take its move through the Policy.
func (c *Controller) PlayBots(ctx context.Context, key int64) (*BotTurn, error) {
	var turn *BotTurn
	err := c.withSession(ctx, key, func(s *Session) error {
		switch {
		case s.Finished():
			return ErrGameFinished
		case s.Phase() == PhaseNight:
			turn = c.playBotsNight(ctx, s)
		case s.Phase() == PhaseDay:
			turn = c.playBotsDay(ctx, s)
		default:
			return fmt.Errorf("%w: bots act at night or during the day", ErrInvalidPhase)
		}
		return nil
	})
	return turn, err
}

func (c *Controller) playBotsNight(ctx context.Context, s *Session) *BotTurn {
	turn := &BotTurn{}
	for _, p := range s.PendingNightActors() {
		if !p.Bot {
			continue
		}
		kind := nightActionFor(p.Role)
		target, ok := c.policy.ChooseNightTarget(p, kind, s.NightCandidates(p.ID, kind))
		if !ok {
			turn.Skipped++
			continue
		}
		res, err := c.castNight(ctx, s, p.ID, kind, target.ID)
		if err != nil {
			log.Warn().Err(err).Int64("chat_id", s.ChatID).Int64("bot_id", p.ID).Msg("Bot night action rejected")
			turn.Skipped++
			continue
		}
		turn.Moves = append(turn.Moves, BotMove{Bot: res.Actor, Kind: string(kind), Target: res.Target})
		if res.Outcome != nil {
			turn.Night = res.Outcome
			break
		}
	}
	return turn
}

func (c *Controller) playBotsDay(ctx context.Context, s *Session) *BotTurn {
	turn := &BotTurn{}
	for _, p := range s.Registry().Living() {
		if !p.Bot || s.HasVoted(p.ID) {
			continue
		}
		var candidates []Player
		for _, t := range s.DayCandidates(p.ID) {
			if t.ID != p.ID {
				candidates = append(candidates, t)
			}
		}
		target, ok := c.policy.ChooseDayVote(p, candidates)
		if !ok {
			turn.Skipped++
			continue
		}
		res, err := c.castVote(ctx, s, p.ID, target.ID)
		if err != nil {
			log.Warn().Err(err).Int64("chat_id", s.ChatID).Int64("bot_id", p.ID).Msg("Bot vote rejected")
			turn.Skipped++
			continue
		}
		turn.Moves = append(turn.Moves, BotMove{Bot: res.Voter, Kind: MoveVote, Target: res.Target})
	}
	return turn
}

func nightActionFor(r Role) ActionKind {
	switch r {
	case RoleMafia:
		return ActionKill
	case RoleDoctor:
		return ActionProtect
	case RoleSheriff:
		return ActionCheck
	}
	return ""
}

// Status returns the chat's public game view.
func (c *Controller) Status(ctx context.Context, key int64) (*Status, error) {
	var st *Status
	err := c.withSession(ctx, key, func(s *Session) error {
		st = s.Status()
		return nil
	})
	return st, err
}

// Targets returns the players actorID may currently choose. An empty kind
// asks for day vote targets.
func (c *Controller) Targets(ctx context.Context, key, actorID int64, kind ActionKind) ([]Player, error) {
	var out []Player
	err := c.withSession(ctx, key, func(s *Session) error {
		want := PhaseNight
		if kind == "" {
			want = PhaseDay
		}
		if err := s.gate(want); err != nil {
			return err
		}
		if !s.Registry().Has(actorID) {
			return fmt.Errorf("%w: %d", ErrUnknownPlayer, actorID)
		}
		if !s.Registry().Alive(actorID) {
			return fmt.Errorf("%w: %d is dead", ErrIneligibleActor, actorID)
		}
		if kind == "" {
			out = s.DayCandidates(actorID)
			return nil
		}
		if p, _ := s.Registry().Get(actorID); p.Role != kind.Role() {
			return fmt.Errorf("%w: %s cannot %s", ErrIneligibleActor, p.Role, kind)
		}
		out = s.NightCandidates(actorID, kind)
		return nil
	})
	return out, err
}

// Roles returns every seat with its role, for private delivery to the
// players themselves.
func (c *Controller) Roles(ctx context.Context, key int64) ([]Player, error) {
	var roster []Player
	err := c.withSession(ctx, key, func(s *Session) error {
		if s.Phase() == PhaseLobby {
			return fmt.Errorf("%w: roles are not assigned yet", ErrInvalidPhase)
		}
		roster = s.Players()
		return nil
	})
	return roster, err
}

// NewGame replaces the chat's session with a fresh lobby. A live game is
// abandoned and reported as finished with an unknown winner.
func (c *Controller) NewGame(ctx context.Context, key int64, variant string) (*NewGameResult, error) {
	v, err := c.variant(variant)
	if err != nil {
		return nil, err
	}

	var res *NewGameResult
	err = c.withChat(ctx, key, func() error {
		res = &NewGameResult{Variant: v.Command()}
		if old := c.lookup(key); old != nil && old.Abandon() {
			res.Abandoned = true
			res.AbandonedID = old.ID
			c.finished(ctx, old, true)
		}
		res.SessionID = c.create(ctx, key, v).ID
		return nil
	})
	return res, err
}

// Abort abandons the chat's live game and removes it. It returns the final
// status of the removed session.
func (c *Controller) Abort(ctx context.Context, key int64) (*Status, error) {
	var st *Status
	err := c.withSession(ctx, key, func(s *Session) error {
		if s.Abandon() {
			c.finished(ctx, s, true)
		}
		st = s.Status()
		c.mu.Lock()
		delete(c.sessions, key)
		c.mu.Unlock()
		return nil
	})
	return st, err
}

// Sessions returns the number of chats with a session.
func (c *Controller) Sessions() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sessions)
}

// finished emits GameFinished if s has just reached FINISHED.
func (c *Controller) finished(ctx context.Context, s *Session, abandoned bool) {
	if !s.Finished() {
		return
	}

	log.Info().
		Int64("chat_id", s.ChatID).
		Str("session_id", s.ID.String()).
		Str("winner", s.Winner().String()).
		Bool("abandoned", abandoned).
		Msg("Game finished")

	c.hooks.OnGameFinished(ctx, GameFinished{
		SessionID: s.ID,
		ChatID:    s.ChatID,
		Winner:    s.Winner(),
		Abandoned: abandoned,
		Rounds:    s.Round(),
		Roster:    s.Players(),
		At:        time.Now(),
	})
}
