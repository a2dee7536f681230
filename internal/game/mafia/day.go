package mafia

import (
	"fmt"
	"sort"
)

// voteBuffer maps voter id to target id. Last vote wins.
type voteBuffer map[int64]int64

// VoteCount is the number of votes one target holds.
type VoteCount struct {
	Target Player
	Votes  int
}

// DayOutcome is the result of ending a day.
type DayOutcome struct {
	Round int
	// Executed is the player voted out, nil when nobody was.
	Executed *Player
	Tie      bool
	NoVotes  bool
	Tally    []VoteCount
	Winner   Faction
	Phase    Phase
}

func validateVote(r *Registry, voterID, targetID int64) error {
	voter, ok := r.Get(voterID)
	if !ok {
		return fmt.Errorf("%w: voter %d", ErrUnknownPlayer, voterID)
	}
	if !voter.Alive {
		return fmt.Errorf("%w: %s is dead", ErrIneligibleActor, voter.Name)
	}
	target, ok := r.Get(targetID)
	if !ok {
		return fmt.Errorf("%w: target %d", ErrUnknownPlayer, targetID)
	}
	if !target.Alive {
		return fmt.Errorf("%w: %s is dead", ErrIneligibleTarget, target.Name)
	}
	return nil
}

// tally counts the votes cast by living voters for living targets, ordered
// by votes descending and then seat order.
func tally(r *Registry, votes voteBuffer) []VoteCount {
	counts := make(map[int64]int)
	for voter, target := range votes {
		if r.Alive(voter) && r.Alive(target) {
			counts[target]++
		}
	}

	out := make([]VoteCount, 0, len(counts))
	for _, p := range r.All() {
		if n, ok := counts[p.ID]; ok {
			out = append(out, VoteCount{Target: p, Votes: n})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Votes > out[j].Votes
	})
	return out
}

// resolveDay executes the strict plurality target, if there is one.
func resolveDay(r *Registry, votes voteBuffer) DayOutcome {
	out := DayOutcome{Tally: tally(r, votes)}

	switch {
	case len(out.Tally) == 0:
		out.NoVotes = true
	case len(out.Tally) > 1 && out.Tally[0].Votes == out.Tally[1].Votes:
		out.Tie = true
	default:
		target := out.Tally[0].Target
		r.Kill(target.ID)
		target.Alive = false
		out.Executed = &target
	}
	return out
}
