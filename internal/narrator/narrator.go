// Package narrator turns game outcomes into short commentary for the chat.
package narrator

import (
	"context"
	"strings"
)

// Narrator explains a game event described by summary.
type Narrator interface {
	Explain(ctx context.Context, summary string) (string, error)
}

// Stub answers from a few canned lines. It never fails.
type Stub struct{}

// Explain picks a line matching the summary.
func (Stub) Explain(_ context.Context, summary string) (string, error) {
	s := strings.ToLower(summary)
	switch {
	case strings.Contains(s, "saved"):
		return "The doctor was faster than the knife tonight. Somebody owes them a drink.", nil
	case strings.Contains(s, "was killed"):
		return "The town wakes up one voice shorter. Look closely at who sleeps too well.", nil
	case strings.Contains(s, "tie"), strings.Contains(s, "no votes"):
		return "Nobody could agree, and the mafia smiles at every undecided town.", nil
	case strings.Contains(s, "executed"):
		return "The town has spoken. Whether it spoke wisely, the next night will tell.", nil
	case strings.Contains(s, "vote"):
		return "Interesting choice. Are you sure about that? It looks suspicious to me.", nil
	case strings.Contains(s, "wins"):
		return "The game is over. Every lie told tonight is now a story.", nil
	}
	return "I think it is worth listening to the sheriff.", nil
}
