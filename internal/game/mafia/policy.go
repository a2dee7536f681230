package mafia

import (
	"math/rand"
	"sync"
)

// Policy picks moves for bot-controlled seats. Candidates are already
// filtered to legal targets; returning false skips the move.
type Policy interface {
	ChooseNightTarget(actor Player, kind ActionKind, candidates []Player) (Player, bool)
	ChooseDayVote(voter Player, candidates []Player) (Player, bool)
}

// RandomPolicy picks uniformly among the candidates.
type RandomPolicy struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomPolicy creates a RandomPolicy with its own seeded source.
func NewRandomPolicy(seed int64) *RandomPolicy {
	return &RandomPolicy{rng: rand.New(rand.NewSource(seed))}
}

func (p *RandomPolicy) pick(candidates []Player) (Player, bool) {
	if len(candidates) == 0 {
		return Player{}, false
	}
	p.mu.Lock()
	i := p.rng.Intn(len(candidates))
	p.mu.Unlock()
	return candidates[i], true
}

func (p *RandomPolicy) ChooseNightTarget(_ Player, _ ActionKind, candidates []Player) (Player, bool) {
	return p.pick(candidates)
}

func (p *RandomPolicy) ChooseDayVote(_ Player, candidates []Player) (Player, bool) {
	return p.pick(candidates)
}
