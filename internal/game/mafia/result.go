package mafia

import "github.com/google/uuid"

// JoinResult is returned by Join and AddBot.
type JoinResult struct {
	SessionID uuid.UUID
	Player    Player
	// Joined is false when the player was already seated.
	Joined     bool
	Count      int
	MinPlayers int
	MaxPlayers int
}

// StartResult is returned when the lobby closes and night one begins.
// Roster carries the secret roles and must only be shown to their owners.
type StartResult struct {
	SessionID uuid.UUID
	Phase     Phase
	Round     int
	Roster    []Player
	// Winner is set only for degenerate tables decided at assignment.
	Winner    Faction
}

// NightActionResult is returned by CastNightAction.
type NightActionResult struct {
	Actor   Player
	Kind    ActionKind
	Target  Player
	// IsMafia is the check result; meaningful only when Kind is ActionCheck.
	IsMafia bool
	// Pending lists special roles that still have to act tonight.
	Pending []Player
	// Outcome is set when this action completed the night.
	Outcome *NightOutcome
}

// VoteResult is returned by CastVote.
type VoteResult struct {
	Voter   Player
	Target  Player
	// Changed is set when the voter replaced an earlier vote.
	Changed bool
	Tally   []VoteCount
	Voted   int
	Alive   int
}

// PlayerView is a player as shown publicly. Role is RoleNone unless the
// player is dead or the game is over.
type PlayerView struct {
	ID    int64
	Name  string
	Alive bool
	Bot   bool
	Role  Role
}

// Status is the public view of a session.
type Status struct {
	SessionID uuid.UUID
	ChatID    int64
	Variant   string
	Phase     Phase
	Round     int
	Winner    Faction
	Players   []PlayerView
	// Pending night actors, names only.
	Pending []string
	Votes   []VoteCount
}

// Snapshot is the full state of a session with every role visible.
// It is handed to hooks, never to players.
type Snapshot struct {
	SessionID uuid.UUID        `json:"session_id"`
	Phase     string           `json:"phase"`
	Round     int              `json:"round"`
	Players   []SnapshotPlayer `json:"players"`
}

// SnapshotPlayer is one seat in a Snapshot.
type SnapshotPlayer struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Role  string `json:"role"`
	Alive bool   `json:"alive"`
	Bot   bool   `json:"bot"`
}

// NewGameResult is returned by NewGame.
type NewGameResult struct {
	SessionID   uuid.UUID
	Variant     string
	// Abandoned is set when a live game was discarded.
	Abandoned   bool
	AbandonedID uuid.UUID
}

// BotMove is one move taken by a bot seat.
type BotMove struct {
	Bot    Player
	Kind   string
	Target Player
}

// BotTurn is returned by PlayBots.
type BotTurn struct {
	Moves   []BotMove
	Night   *NightOutcome
	Skipped int
}
