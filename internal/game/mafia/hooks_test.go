package mafia

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blockingHooks holds the worker inside the first delivery until released.
type blockingHooks struct {
	recordingHooks
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (h *blockingHooks) OnGameCreated(ctx context.Context, e GameCreated) {
	h.once.Do(func() {
		close(h.entered)
		<-h.release
	})
	h.recordingHooks.OnGameCreated(ctx, e)
}

func TestAsyncHooksDeliversInOrder(t *testing.T) {
	rec := &recordingHooks{}
	a := NewAsyncHooks(rec, 16, time.Second)

	for i := int64(1); i <= 10; i++ {
		a.OnGameCreated(context.Background(), GameCreated{ChatID: i})
	}
	a.OnGameFinished(context.Background(), GameFinished{ChatID: 11, Winner: FactionTown})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, a.Close(ctx))

	rec.mu.Lock()
	defer rec.mu.Unlock()
	require.Len(t, rec.created, 10)
	for i, e := range rec.created {
		assert.Equal(t, int64(i+1), e.ChatID)
	}
	require.Len(t, rec.finished, 1)
	assert.Equal(t, FactionTown, rec.finished[0].Winner)
}

func TestAsyncHooksDropsWhenFull(t *testing.T) {
	h := &blockingHooks{entered: make(chan struct{}), release: make(chan struct{})}
	a := NewAsyncHooks(h, 1, 0)

	a.OnGameCreated(context.Background(), GameCreated{ChatID: 1})
	select {
	case <-time.After(time.Second):
		t.Fatal("worker never picked up the first event")
	case <-h.entered:
	}

	a.OnGameCreated(context.Background(), GameCreated{ChatID: 2})
	a.OnGameCreated(context.Background(), GameCreated{ChatID: 3})
	assert.Equal(t, int64(1), a.Dropped())

	close(h.release)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, a.Close(ctx))

	h.mu.Lock()
	defer h.mu.Unlock()
	require.Len(t, h.created, 2)
	assert.Equal(t, int64(1), h.created[0].ChatID)
	assert.Equal(t, int64(2), h.created[1].ChatID)
}

func TestAsyncHooksAfterClose(t *testing.T) {
	rec := &recordingHooks{}
	a := NewAsyncHooks(rec, 4, 0)
	require.NoError(t, a.Close(context.Background()))
	require.NoError(t, a.Close(context.Background()), "close is idempotent")

	a.OnMoveMade(context.Background(), MoveMade{ChatID: 1})

	_, _, moves, _ := rec.counts()
	assert.Zero(t, moves)
}

type panickyHooks struct{ NopHooks }

func (panickyHooks) OnMoveMade(context.Context, MoveMade) { panic("boom") }

func TestAsyncHooksRecoversPanics(t *testing.T) {
	rec := &recordingHooks{}
	a := NewAsyncHooks(MultiHooks{panickyHooks{}, rec}, 4, 0)

	a.OnMoveMade(context.Background(), MoveMade{ChatID: 1})
	a.OnGameCreated(context.Background(), GameCreated{ChatID: 2})
	require.NoError(t, a.Close(context.Background()))

	created, _, moves, _ := rec.counts()
	assert.Equal(t, 1, created, "worker survives a panicking hook")
	assert.Zero(t, moves, "the panic stopped the fan-out for that event")
}
