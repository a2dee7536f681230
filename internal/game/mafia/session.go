package mafia

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"mafia-bot/internal/game"
)

// Session is one game in one chat. It is not safe for concurrent use;
// Controller serializes every call on a session.
type Session struct {
	ID        uuid.UUID
	ChatID    int64
	Variant   game.Variant
	CreatedAt time.Time

	registry *Registry
	phase    Phase
	winner   Faction
	round    int
	night    nightBuffer
	votes    voteBuffer
	rng      *rand.Rand

	assignments int
	bots        int
}

// NewSession creates a session in the lobby. Equal seeds produce equal role
// assignments for equal join orders.
func NewSession(chatID int64, v game.Variant, seed int64) *Session {
	return &Session{
		ID:        uuid.New(),
		ChatID:    chatID,
		Variant:   v,
		CreatedAt: time.Now(),
		registry:  NewRegistry(),
		phase:     PhaseLobby,
		night:     make(nightBuffer),
		votes:     make(voteBuffer),
		rng:       rand.New(rand.NewSource(seed)),
	}
}

func (s *Session) Phase() Phase      { return s.phase }
func (s *Session) Winner() Faction   { return s.winner }
func (s *Session) Round() int        { return s.round }
func (s *Session) Finished() bool    { return s.phase == PhaseFinished }
func (s *Session) Players() []Player { return s.registry.All() }

// Registry exposes the seats read-only through its query methods.
func (s *Session) Registry() *Registry { return s.registry }

// Assignments returns how many times roles were handed out. It never
// exceeds one.
func (s *Session) Assignments() int { return s.assignments }

func (s *Session) gate(want Phase) error {
	if s.phase == PhaseFinished {
		return ErrGameFinished
	}
	if s.phase != want {
		return fmt.Errorf("%w: game is in %s, not %s", ErrInvalidPhase, s.phase, want)
	}
	return nil
}

// Join seats a player in the lobby. Joining twice is a successful no-op.
func (s *Session) Join(id int64, name string) (*JoinResult, error) {
	return s.join(id, name, false)
}

// AddBot seats a bot-controlled player. Bots get negative ids.
func (s *Session) AddBot(name string) (*JoinResult, error) {
	id := -int64(s.bots + 1)
	if name == "" {
		name = fmt.Sprintf("Bot %d", s.bots+1)
	}
	res, err := s.join(id, name, true)
	if err == nil && res.Joined {
		s.bots++
	}
	return res, err
}

func (s *Session) join(id int64, name string, bot bool) (*JoinResult, error) {
	if err := s.gate(PhaseLobby); err != nil {
		return nil, err
	}

	res := &JoinResult{
		SessionID:  s.ID,
		MinPlayers: s.Variant.MinPlayers(),
		MaxPlayers: s.Variant.MaxPlayers(),
	}
	if p, ok := s.registry.Get(id); ok {
		res.Player = p
		res.Count = s.registry.Len()
		return res, nil
	}
	if max := s.Variant.MaxPlayers(); max > 0 && s.registry.Len() >= max {
		return nil, fmt.Errorf("%w: %d/%d seats taken", ErrLobbyFull, s.registry.Len(), max)
	}

	if bot {
		res.Joined = s.registry.JoinBot(id, name)
	} else {
		res.Joined = s.registry.Join(id, name)
	}
	res.Player, _ = s.registry.Get(id)
	res.Count = s.registry.Len()
	return res, nil
}

// Start closes the lobby, assigns roles and opens night one.
func (s *Session) Start() (*StartResult, error) {
	if err := s.gate(PhaseLobby); err != nil {
		return nil, err
	}
	n := s.registry.Len()
	if min := s.Variant.MinPlayers(); n < min {
		return nil, fmt.Errorf("%w: %d joined, %d needed", ErrInsufficientPlayers, n, min)
	}

	if s.assignments == 0 {
		AssignRoles(s.registry.seats(), s.Variant.Quota(n), s.rng)
		s.registry.seal()
		s.assignments++
	}

	s.round = 1
	s.enterNight()
	if w := Evaluate(s.registry); w != FactionNone {
		s.finish(w)
	}

	return &StartResult{
		SessionID: s.ID,
		Phase:     s.phase,
		Round:     s.round,
		Roster:    s.registry.All(),
		Winner:    s.winner,
	}, nil
}

// CastNightAction buffers a night choice. When it is the last choice the
// night was waiting for, the night resolves immediately.
func (s *Session) CastNightAction(actorID int64, kind ActionKind, targetID int64) (*NightActionResult, error) {
	if err := s.gate(PhaseNight); err != nil {
		return nil, err
	}
	if err := validateNightAction(s.registry, actorID, kind, targetID); err != nil {
		return nil, err
	}

	s.night[actorID] = nightAction{Kind: kind, Target: targetID}

	actor, _ := s.registry.Get(actorID)
	target, _ := s.registry.Get(targetID)
	res := &NightActionResult{
		Actor:   actor,
		Kind:    kind,
		Target:  target,
		IsMafia: kind == ActionCheck && target.Role == RoleMafia,
		Pending: pendingNightActors(s.registry, s.night),
	}
	if len(res.Pending) == 0 {
		out := s.closeNight(false)
		res.Outcome = &out
	}
	return res, nil
}

// ResolveNight ends the night now, with whatever actions were buffered.
func (s *Session) ResolveNight() (*NightOutcome, error) {
	if err := s.gate(PhaseNight); err != nil {
		return nil, err
	}
	out := s.closeNight(len(pendingNightActors(s.registry, s.night)) > 0)
	return &out, nil
}

func (s *Session) closeNight(forced bool) NightOutcome {
	out := resolveNight(s.registry, s.night)
	out.Round = s.round
	out.Forced = forced

	if w := Evaluate(s.registry); w != FactionNone {
		s.finish(w)
	} else {
		s.enterDay()
	}
	out.Winner = s.winner
	out.Phase = s.phase
	return out
}

// CastVote records a day vote, replacing the voter's earlier vote.
func (s *Session) CastVote(voterID, targetID int64) (*VoteResult, error) {
	if err := s.gate(PhaseDay); err != nil {
		return nil, err
	}
	if err := validateVote(s.registry, voterID, targetID); err != nil {
		return nil, err
	}

	_, changed := s.votes[voterID]
	s.votes[voterID] = targetID

	voter, _ := s.registry.Get(voterID)
	target, _ := s.registry.Get(targetID)
	return &VoteResult{
		Voter:   voter,
		Target:  target,
		Changed: changed,
		Tally:   tally(s.registry, s.votes),
		Voted:   len(s.votes),
		Alive:   s.registry.AliveCount(),
	}, nil
}

// ResolveDay tallies the votes and executes the plurality target.
func (s *Session) ResolveDay() (*DayOutcome, error) {
	if err := s.gate(PhaseDay); err != nil {
		return nil, err
	}

	out := resolveDay(s.registry, s.votes)
	out.Round = s.round

	if w := Evaluate(s.registry); w != FactionNone {
		s.finish(w)
	} else {
		s.round++
		s.enterNight()
	}
	out.Winner = s.winner
	out.Phase = s.phase
	return &out, nil
}

// Abandon finishes a live session without a winner. It reports false if the
// session was already finished.
func (s *Session) Abandon() bool {
	if s.phase == PhaseFinished {
		return false
	}
	s.finish(FactionUnknown)
	return true
}

func (s *Session) enterNight() {
	s.phase = PhaseNight
	s.night = make(nightBuffer)
	s.votes = make(voteBuffer)
}

func (s *Session) enterDay() {
	s.phase = PhaseDay
	s.night = make(nightBuffer)
	s.votes = make(voteBuffer)
}

func (s *Session) finish(w Faction) {
	s.phase = PhaseFinished
	s.winner = w
	s.night = make(nightBuffer)
	s.votes = make(voteBuffer)
}

// PendingNightActors returns living special roles that have not acted yet.
func (s *Session) PendingNightActors() []Player {
	if s.phase != PhaseNight {
		return nil
	}
	return pendingNightActors(s.registry, s.night)
}

// NightCandidates returns the legal targets of kind for the actor.
func (s *Session) NightCandidates(actorID int64, kind ActionKind) []Player {
	return nightCandidates(s.registry, actorID, kind)
}

// DayCandidates returns everyone the voter may vote for.
func (s *Session) DayCandidates(voterID int64) []Player {
	return s.registry.Living()
}

// HasVoted reports whether the player has a vote in the current day.
func (s *Session) HasVoted(voterID int64) bool {
	_, ok := s.votes[voterID]
	return ok
}

// Status returns the public view. Roles of living players stay hidden until
// the game is over.
func (s *Session) Status() *Status {
	st := &Status{
		SessionID: s.ID,
		ChatID:    s.ChatID,
		Variant:   s.Variant.Command(),
		Phase:     s.phase,
		Round:     s.round,
		Winner:    s.winner,
	}
	for _, p := range s.registry.All() {
		v := PlayerView{ID: p.ID, Name: p.Name, Alive: p.Alive, Bot: p.Bot}
		if !p.Alive || s.phase == PhaseFinished {
			v.Role = p.Role
		}
		st.Players = append(st.Players, v)
	}
	for _, p := range s.PendingNightActors() {
		st.Pending = append(st.Pending, p.Name)
	}
	if s.phase == PhaseDay {
		st.Votes = tally(s.registry, s.votes)
	}
	return st
}

// Snapshot returns the full state with every role visible.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{SessionID: s.ID, Phase: s.phase.String(), Round: s.round}
	for _, p := range s.registry.All() {
		snap.Players = append(snap.Players, SnapshotPlayer{
			ID:    p.ID,
			Name:  p.Name,
			Role:  p.Role.String(),
			Alive: p.Alive,
			Bot:   p.Bot,
		})
	}
	return snap
}
