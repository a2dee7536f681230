package mafia

import (
	"fmt"

	"mafia-bot/internal/game"
)

// Variant commands shipped with the bot.
const (
	VariantClassic = "classic"
	VariantFixed7  = "fixed7"
)

// AbsoluteMinPlayers is the smallest table the classic variant accepts.
const AbsoluteMinPlayers = 3

// Classic is the open-lobby variant: any table between MinSeats and
// MaxSeats players, roles by DefaultQuota.
type Classic struct {
	MinSeats int
	MaxSeats int // 0 = unbounded
}

// NewClassic creates the classic variant. min is raised to AbsoluteMinPlayers
// if lower.
func NewClassic(min, max int) *Classic {
	if min < AbsoluteMinPlayers {
		min = AbsoluteMinPlayers
	}
	if max != 0 && max < min {
		max = min
	}
	return &Classic{MinSeats: min, MaxSeats: max}
}

func (v *Classic) Name() string    { return "Classic" }
func (v *Classic) Command() string { return VariantClassic }
func (v *Classic) MinPlayers() int { return v.MinSeats }
func (v *Classic) MaxPlayers() int { return v.MaxSeats }

func (v *Classic) Description() string {
	if v.MaxSeats == 0 {
		return fmt.Sprintf("Open table, %d or more players. About one mafia per four players, plus a sheriff and a doctor.", v.MinSeats)
	}
	return fmt.Sprintf("Open table, %d-%d players. About one mafia per four players, plus a sheriff and a doctor.", v.MinSeats, v.MaxSeats)
}

func (v *Classic) Quota(n int) game.Quota { return DefaultQuota(n) }

// FixedRoster is a variant with an exact seat count.
type FixedRoster struct {
	Seats int
}

// NewFixed7 creates the seven-seat variant: 2 mafia, sheriff, doctor, 3 town.
func NewFixed7() *FixedRoster {
	return &FixedRoster{Seats: 7}
}

func (v *FixedRoster) Name() string    { return fmt.Sprintf("Fixed %d", v.Seats) }
func (v *FixedRoster) Command() string { return fmt.Sprintf("fixed%d", v.Seats) }
func (v *FixedRoster) MinPlayers() int { return v.Seats }
func (v *FixedRoster) MaxPlayers() int { return v.Seats }

func (v *FixedRoster) Description() string {
	q := DefaultQuota(v.Seats)
	return fmt.Sprintf("Exactly %d players: %d mafia, %d sheriff, %d doctor, %d town.",
		v.Seats, q.Aggressors, q.Investigators, q.Protectors, v.Seats-q.Total())
}

func (v *FixedRoster) Quota(n int) game.Quota { return DefaultQuota(n) }
