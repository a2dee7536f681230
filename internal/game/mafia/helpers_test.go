package mafia

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// registryWith seats players 1..n with the given roles.
func registryWith(roles ...Role) *Registry {
	r := NewRegistry()
	for i, role := range roles {
		id := int64(i + 1)
		r.Join(id, fmt.Sprintf("p%d", id))
		r.index[id].Role = role
	}
	r.seal()
	return r
}

// startedSession starts a classic game with players 1..n and then pins
// their roles in seat order.
func startedSession(t *testing.T, roles ...Role) *Session {
	t.Helper()
	s := NewSession(100, NewClassic(3, 0), 1)
	for i := range roles {
		id := int64(i + 1)
		_, err := s.Join(id, fmt.Sprintf("p%d", id))
		require.NoError(t, err)
	}
	_, err := s.Start()
	require.NoError(t, err)
	for i, role := range roles {
		s.registry.index[int64(i+1)].Role = role
	}
	require.Equal(t, PhaseNight, s.Phase())
	return s
}

// daySession starts a game and ends night one without a kill.
func daySession(t *testing.T, roles ...Role) *Session {
	t.Helper()
	s := startedSession(t, roles...)
	out, err := s.ResolveNight()
	require.NoError(t, err)
	require.True(t, out.NoTarget)
	require.Equal(t, PhaseDay, s.Phase())
	return s
}

func countRoles(players []Player) map[Role]int {
	out := make(map[Role]int)
	for _, p := range players {
		out[p.Role]++
	}
	return out
}

// recordingHooks stores every event it receives.
type recordingHooks struct {
	mu       sync.Mutex
	created  []GameCreated
	started  []GameStarted
	moves    []MoveMade
	finished []GameFinished
}

func (h *recordingHooks) OnGameCreated(_ context.Context, e GameCreated) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.created = append(h.created, e)
}

func (h *recordingHooks) OnGameStarted(_ context.Context, e GameStarted) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.started = append(h.started, e)
}

func (h *recordingHooks) OnMoveMade(_ context.Context, e MoveMade) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.moves = append(h.moves, e)
}

func (h *recordingHooks) OnGameFinished(_ context.Context, e GameFinished) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.finished = append(h.finished, e)
}

func (h *recordingHooks) counts() (created, started, moves, finished int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.created), len(h.started), len(h.moves), len(h.finished)
}
