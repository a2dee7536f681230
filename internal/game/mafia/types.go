// Package mafia implements the Mafia social deduction game: the per-chat
// session state machine, role assignment, night resolution, day voting and
// win evaluation.
package mafia

import "strings"

// Role is the secret role a player holds for the whole session.
type Role int

const (
	RoleNone    Role = iota // not assigned yet
	RoleMafia               // aligned aggressor
	RoleDoctor              // protector
	RoleSheriff             // investigator
	RoleTown                // plain civilian
)

// String returns the stable lowercase name of the role.
func (r Role) String() string {
	switch r {
	case RoleMafia:
		return "mafia"
	case RoleDoctor:
		return "doctor"
	case RoleSheriff:
		return "sheriff"
	case RoleTown:
		return "town"
	default:
		return "none"
	}
}

// Faction returns the win-condition faction the role belongs to.
func (r Role) Faction() Faction {
	switch r {
	case RoleMafia:
		return FactionMafia
	case RoleDoctor, RoleSheriff, RoleTown:
		return FactionTown
	default:
		return FactionNone
	}
}

// ParseRole parses a role name as produced by Role.String.
func ParseRole(s string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mafia":
		return RoleMafia, true
	case "doctor":
		return RoleDoctor, true
	case "sheriff":
		return RoleSheriff, true
	case "town":
		return RoleTown, true
	}
	return RoleNone, false
}

// Faction is a win-condition grouping of roles.
type Faction int

const (
	FactionNone    Faction = iota // no winner yet
	FactionMafia                  // aggressors
	FactionTown                   // civilians, doctor and sheriff
	FactionUnknown                // session abandoned before a winner was decided
)

func (f Faction) String() string {
	switch f {
	case FactionMafia:
		return "mafia"
	case FactionTown:
		return "town"
	case FactionUnknown:
		return "unknown"
	default:
		return ""
	}
}

// Phase is a stage of the session state machine.
type Phase int

const (
	PhaseLobby Phase = iota
	PhaseNight
	PhaseDay
	PhaseFinished
)

func (p Phase) String() string {
	switch p {
	case PhaseLobby:
		return "lobby"
	case PhaseNight:
		return "night"
	case PhaseDay:
		return "day"
	case PhaseFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// ActionKind is a night action.
type ActionKind string

const (
	ActionKill    ActionKind = "kill"
	ActionProtect ActionKind = "protect"
	ActionCheck   ActionKind = "check"
)

// Role returns the role allowed to perform the action.
func (k ActionKind) Role() Role {
	switch k {
	case ActionKill:
		return RoleMafia
	case ActionProtect:
		return RoleDoctor
	case ActionCheck:
		return RoleSheriff
	default:
		return RoleNone
	}
}

// ParseActionKind parses a night action name.
func ParseActionKind(s string) (ActionKind, bool) {
	switch k := ActionKind(strings.ToLower(strings.TrimSpace(s))); k {
	case ActionKill, ActionProtect, ActionCheck:
		return k, true
	}
	return "", false
}

// MoveVote is the move kind recorded for day votes.
const MoveVote = "vote"

// Player is a seat in a session.
type Player struct {
	ID    int64
	Name  string
	Role  Role
	Alive bool
	Bot   bool
}
