package mafia

import (
	"math/rand"

	"mafia-bot/internal/game"
)

// DefaultQuota returns the standard role distribution for n players.
//
// Four or more players get roughly one mafia seat per four players (rounded
// half up, never fewer than one), one sheriff and one doctor. Smaller tables
// fall back to one mafia seat plus a sheriff when there are at least two
// players.
func DefaultQuota(n int) game.Quota {
	switch {
	case n <= 0:
		return game.Quota{}
	case n == 1:
		return game.Quota{Aggressors: 1}
	case n < 4:
		return game.Quota{Aggressors: 1, Investigators: 1}
	}

	mafia := (n + 1) / 4
	if mafia < 1 {
		mafia = 1
	}
	q := game.Quota{Aggressors: mafia, Investigators: 1}
	if n-mafia-1 > 0 {
		q.Protectors = 1
	}
	return q
}

// AssignRoles shuffles the seats with rng and hands out roles in order:
// mafia, sheriffs, doctors, then town for everyone left. Quota entries that
// do not fit the table are truncated.
func AssignRoles(players []*Player, q game.Quota, rng *rand.Rand) {
	order := make([]*Player, len(players))
	copy(order, players)
	rng.Shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})

	i := 0
	give := func(role Role, count int) {
		for ; count > 0 && i < len(order); count-- {
			order[i].Role = role
			i++
		}
	}
	give(RoleMafia, q.Aggressors)
	give(RoleSheriff, q.Investigators)
	give(RoleDoctor, q.Protectors)
	give(RoleTown, len(order))
}
