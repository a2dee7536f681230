package narrator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"

	"mafia-bot/internal/config"
	"mafia-bot/internal/game/mafia"
)

type fakeModel struct {
	text     string
	err      error
	block    bool
	messages []llms.MessageContent
}

func (f *fakeModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	f.messages = messages
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.err != nil {
		return nil, f.err
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: f.text}}}, nil
}

func TestLLMExplain(t *testing.T) {
	model := &fakeModel{text: "  A quiet night.  "}
	n := newLLM(model, "fake", config.NarratorConfig{Temperature: 0.5, MaxTokens: 64})

	text, err := n.Explain(context.Background(), "Night 1: nobody was attacked.")
	require.NoError(t, err)
	assert.Equal(t, "A quiet night.", text)
	require.Len(t, model.messages, 2)
	assert.Equal(t, schema.ChatMessageTypeSystem, model.messages[0].Role)
	assert.Equal(t, schema.ChatMessageTypeHuman, model.messages[1].Role)
	assert.Len(t, n.callOpts, 2)
}

func TestLLMFallback(t *testing.T) {
	tests := []struct {
		name  string
		model *fakeModel
	}{
		{"error", &fakeModel{err: errors.New("429 too many requests")}},
		{"empty", &fakeModel{text: "   "}},
		{"timeout", &fakeModel{block: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := newLLM(tt.model, "fake", config.NarratorConfig{Timeout: 20 * time.Millisecond})
			want, _ := Stub{}.Explain(context.Background(), "Day 2: bob was executed with 3 votes.")

			got, err := n.Explain(context.Background(), "Day 2: bob was executed with 3 votes.")
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestLLMEmptySummary(t *testing.T) {
	model := &fakeModel{text: "ok"}
	n := newLLM(model, "fake", config.NarratorConfig{})

	_, err := n.Explain(context.Background(), " ")
	require.NoError(t, err)
	require.Len(t, model.messages, 2)
	part, ok := model.messages[1].Parts[0].(llms.TextContent)
	require.True(t, ok)
	assert.Equal(t, defaultSummary, part.Text)
}

func TestNewProviders(t *testing.T) {
	n, err := New(context.Background(), config.NarratorConfig{Provider: "stub"})
	require.NoError(t, err)
	assert.IsType(t, Stub{}, n)

	n, err = New(context.Background(), config.NarratorConfig{})
	require.NoError(t, err)
	assert.IsType(t, Stub{}, n)

	_, err = New(context.Background(), config.NarratorConfig{Provider: "carrier-pigeon"})
	assert.Error(t, err)
}

func TestSummaries(t *testing.T) {
	victim := &mafia.Player{ID: 2, Name: "bob"}

	assert.Equal(t, "Night 1: bob was killed by the mafia.",
		NightSummary(&mafia.NightOutcome{Round: 1, Victim: victim}))
	assert.Equal(t, "Night 2: the mafia attacked, but the doctor saved the target.",
		NightSummary(&mafia.NightOutcome{Round: 2, Saved: true}))
	assert.Equal(t, "Night 3: nobody was attacked. The town wins.",
		NightSummary(&mafia.NightOutcome{Round: 3, NoAggressors: true, Winner: mafia.FactionTown}))

	day := &mafia.DayOutcome{
		Round:    1,
		Executed: victim,
		Tally:    []mafia.VoteCount{{Target: *victim, Votes: 3}},
		Winner:   mafia.FactionMafia,
	}
	assert.Equal(t, "Day 1: bob was executed with 3 votes. The mafia wins.", DaySummary(day))
	assert.Contains(t, DaySummary(&mafia.DayOutcome{Round: 1, Tie: true}), "tie")
	assert.Contains(t, DaySummary(&mafia.DayOutcome{Round: 1, NoVotes: true}), "no votes")
}

func TestStubMatchesSummaries(t *testing.T) {
	ctx := context.Background()
	killed, _ := Stub{}.Explain(ctx, NightSummary(&mafia.NightOutcome{Round: 1, Victim: &mafia.Player{Name: "x"}}))
	saved, _ := Stub{}.Explain(ctx, NightSummary(&mafia.NightOutcome{Round: 1, Saved: true}))
	tie, _ := Stub{}.Explain(ctx, DaySummary(&mafia.DayOutcome{Round: 1, Tie: true}))

	assert.NotEqual(t, killed, saved)
	assert.NotEqual(t, killed, tie)
	assert.NotEmpty(t, tie)
}
