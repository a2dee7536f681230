package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"mafia-bot/internal/game/mafia"
	"mafia-bot/internal/model"
)

func roster() []mafia.Player {
	return []mafia.Player{
		{ID: 1, Name: "alice", Role: mafia.RoleMafia, Alive: true},
		{ID: 2, Name: "bob", Role: mafia.RoleSheriff, Alive: true},
		{ID: 3, Name: "carol", Role: mafia.RoleTown, Alive: true},
		{ID: -1, Name: "Bot 1", Role: mafia.RoleDoctor, Alive: true, Bot: true},
	}
}

func TestRecorderFullGame(t *testing.T) {
	store := newMemStore()
	rec := NewRecorder(store.stores())
	ctx := context.Background()
	id := uuid.New()
	now := time.Now()

	rec.OnGameCreated(ctx, mafia.GameCreated{SessionID: id, ChatID: -5, Variant: "classic", At: now})
	require.Contains(t, store.games, id)
	assert.Equal(t, model.GameStatusOngoing, store.games[id].Status)

	rec.OnGameStarted(ctx, mafia.GameStarted{SessionID: id, ChatID: -5, Roster: roster(), At: now})
	assert.Len(t, store.users, 3, "bots are not users")
	require.Len(t, store.seats[id], 4)
	assert.Equal(t, "mafia", store.seats[id][0].Role)

	snap := mafia.Snapshot{SessionID: id, Phase: "night", Round: 1}
	rec.OnMoveMade(ctx, mafia.MoveMade{
		SessionID: id, Round: 1, Phase: mafia.PhaseNight, Kind: "kill",
		Actor: roster()[0], Target: roster()[2], Snapshot: snap, At: now,
	})
	rec.OnMoveMade(ctx, mafia.MoveMade{
		SessionID: id, Round: 1, Phase: mafia.PhaseNight, Kind: "protect",
		Actor: roster()[3], Target: roster()[2], Snapshot: snap, At: now,
	})
	require.Len(t, store.moves, 2)
	assert.Equal(t, "night", store.moves[0].Phase)
	require.Len(t, store.training, 1, "only bot moves are training rows")
	assert.Equal(t, int64(-1), store.training[0].ActorID)

	var decoded mafia.Snapshot
	require.NoError(t, json.Unmarshal([]byte(store.training[0].State), &decoded))
	assert.Equal(t, 1, decoded.Round)

	final := roster()
	final[0].Alive = false
	rec.OnGameFinished(ctx, mafia.GameFinished{
		SessionID: id, ChatID: -5, Winner: mafia.FactionTown, Rounds: 2, Roster: final, At: now,
	})

	game := store.games[id]
	assert.Equal(t, model.GameStatusFinished, game.Status)
	require.NotNil(t, game.Winner)
	assert.Equal(t, "town", *game.Winner)

	assert.Equal(t, 1, store.users[1].GamesPlayed)
	assert.Equal(t, 0, store.users[1].GamesWon)
	assert.Equal(t, 1, store.users[2].GamesWon)
	assert.Equal(t, 1, store.users[3].GamesWon)

	require.NotNil(t, store.training[0].Outcome)
	assert.Equal(t, model.ResultWin, *store.training[0].Outcome)
}

func TestRecorderAbandoned(t *testing.T) {
	store := newMemStore()
	rec := NewRecorder(store.stores())
	ctx := context.Background()
	id := uuid.New()

	rec.OnGameCreated(ctx, mafia.GameCreated{SessionID: id, ChatID: -5, Variant: "classic"})
	rec.OnGameStarted(ctx, mafia.GameStarted{SessionID: id, Roster: roster()})
	rec.OnMoveMade(ctx, mafia.MoveMade{SessionID: id, Kind: "vote", Phase: mafia.PhaseDay, Actor: roster()[3], Target: roster()[0]})
	rec.OnGameFinished(ctx, mafia.GameFinished{SessionID: id, Winner: mafia.FactionUnknown, Abandoned: true, Roster: roster()})

	assert.Equal(t, model.GameStatusAbandoned, store.games[id].Status)
	assert.Nil(t, store.games[id].Winner)
	assert.Zero(t, store.users[1].GamesPlayed)
	require.NotNil(t, store.training[0].Outcome)
	assert.Equal(t, OutcomeAbandoned, *store.training[0].Outcome)
}

func TestRecorderSurvivesStoreFailure(t *testing.T) {
	store := newMemStore()
	store.fail = true
	rec := NewRecorder(store.stores())
	ctx := context.Background()
	id := uuid.New()

	assert.NotPanics(t, func() {
		rec.OnGameCreated(ctx, mafia.GameCreated{SessionID: id})
		rec.OnGameStarted(ctx, mafia.GameStarted{SessionID: id, Roster: roster()})
		rec.OnMoveMade(ctx, mafia.MoveMade{SessionID: id, Actor: roster()[3], Target: roster()[0]})
		rec.OnGameFinished(ctx, mafia.GameFinished{SessionID: id, Winner: mafia.FactionMafia, Roster: roster()})
	})
}

func TestRecorderBehindAsyncHooks(t *testing.T) {
	store := newMemStore()
	hooks := mafia.NewAsyncHooks(NewRecorder(store.stores()), 16, time.Second)
	ctx := context.Background()
	id := uuid.New()

	hooks.OnGameCreated(ctx, mafia.GameCreated{SessionID: id, Variant: "classic"})
	hooks.OnGameStarted(ctx, mafia.GameStarted{SessionID: id, Roster: roster()})

	closeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	require.NoError(t, hooks.Close(closeCtx))

	store.mu.Lock()
	defer store.mu.Unlock()
	assert.Contains(t, store.games, id)
	assert.Len(t, store.seats[id], 4)
}

// For any finished roster, exactly the players of the winning faction win,
// and abandoned games carry no per-player result.
func TestGameResultOfProperty(t *testing.T) {
	roles := []mafia.Role{mafia.RoleMafia, mafia.RoleDoctor, mafia.RoleSheriff, mafia.RoleTown}

	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 12).Draw(t, "n")
		players := make([]mafia.Player, n)
		for i := range players {
			players[i] = mafia.Player{
				ID:    int64(i + 1),
				Role:  rapid.SampledFrom(roles).Draw(t, "role"),
				Alive: rapid.Bool().Draw(t, "alive"),
				Bot:   rapid.Bool().Draw(t, "bot"),
			}
		}
		winner := rapid.SampledFrom([]mafia.Faction{mafia.FactionMafia, mafia.FactionTown}).Draw(t, "winner")
		abandoned := rapid.Bool().Draw(t, "abandoned")

		e := mafia.GameFinished{SessionID: uuid.New(), Winner: winner, Abandoned: abandoned, Roster: players}
		res := GameResultOf(e)

		if len(res.Players) != n {
			t.Fatalf("expected %d seats, got %d", n, len(res.Players))
		}
		for i, seat := range res.Players {
			if abandoned {
				if seat.Result != nil {
					t.Fatalf("abandoned seat %d has result %q", i, *seat.Result)
				}
				continue
			}
			want := model.ResultLose
			if players[i].Role.Faction() == winner {
				want = model.ResultWin
			}
			if seat.Result == nil || *seat.Result != want {
				t.Fatalf("seat %d: want %q", i, want)
			}
		}

		bots := 0
		for _, p := range players {
			if p.Bot {
				bots++
			}
		}
		if got := len(TrainingOutcomes(e)); got != bots {
			t.Fatalf("expected %d training outcomes, got %d", bots, got)
		}
	})
}
