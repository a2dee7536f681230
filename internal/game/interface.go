// Package game defines the variant interface and registry for the mafia bot.
// A variant fixes the table rules that differ between game setups: how many
// seats a lobby needs and how roles are distributed over them.
package game

// Quota is the number of special seats handed out at role assignment.
// Every seat not covered by the quota becomes a plain town role.
type Quota struct {
	Aggressors    int // mafia seats
	Investigators int // sheriff seats
	Protectors    int // doctor seats
}

// Total returns the number of special seats in the quota.
func (q Quota) Total() int {
	return q.Aggressors + q.Investigators + q.Protectors
}

// Variant defines the interface that every game variant must implement.
// Adding a new table setup only requires implementing this interface and
// registering it.
type Variant interface {
	// Name returns the variant's display name (e.g., "Classic")
	Name() string

	// Command returns the key used to select the variant (e.g., "classic")
	Command() string

	// Description returns a brief description of the variant
	Description() string

	// MinPlayers returns the minimum number of seats needed to start.
	MinPlayers() int

	// MaxPlayers returns the maximum number of seats in the lobby.
	// Returns 0 if there is no maximum.
	MaxPlayers() int

	// Quota returns the special-role distribution for n seated players.
	Quota(n int) Quota
}
