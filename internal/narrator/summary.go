package narrator

import (
	"fmt"
	"strings"

	"mafia-bot/internal/game/mafia"
)

// NightSummary describes a resolved night without revealing living roles.
func NightSummary(out *mafia.NightOutcome) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Night %d: ", out.Round)
	switch {
	case out.Victim != nil:
		fmt.Fprintf(&b, "%s was killed by the mafia.", out.Victim.Name)
	case out.Saved:
		b.WriteString("the mafia attacked, but the doctor saved the target.")
	default:
		b.WriteString("nobody was attacked.")
	}
	writeWinner(&b, out.Winner)
	return b.String()
}

// DaySummary describes a resolved day vote.
func DaySummary(out *mafia.DayOutcome) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Day %d: ", out.Round)
	switch {
	case out.Executed != nil:
		votes := 0
		if len(out.Tally) > 0 {
			votes = out.Tally[0].Votes
		}
		fmt.Fprintf(&b, "%s was executed with %d votes.", out.Executed.Name, votes)
	case out.Tie:
		b.WriteString("the vote ended in a tie, nobody was executed.")
	default:
		b.WriteString("there were no votes, nobody was executed.")
	}
	writeWinner(&b, out.Winner)
	return b.String()
}

// VoteSummary describes a public day vote cast by a bot.
func VoteSummary(voter, target mafia.Player) string {
	return fmt.Sprintf("%s cast a vote against %s. Explain the vote as %s.", voter.Name, target.Name, voter.Name)
}

func writeWinner(b *strings.Builder, w mafia.Faction) {
	switch w {
	case mafia.FactionMafia:
		b.WriteString(" The mafia wins.")
	case mafia.FactionTown:
		b.WriteString(" The town wins.")
	}
}
