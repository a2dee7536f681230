package mafia

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// GameCreated is emitted when a chat gets a new session.
type GameCreated struct {
	SessionID uuid.UUID
	ChatID    int64
	Variant   string
	At        time.Time
}

// GameStarted is emitted once roles are assigned. Roster carries roles.
type GameStarted struct {
	SessionID uuid.UUID
	ChatID    int64
	Roster    []Player
	At        time.Time
}

// MoveMade is emitted for every accepted night action and day vote.
// Snapshot is the state the actor decided on.
type MoveMade struct {
	SessionID uuid.UUID
	ChatID    int64
	Round     int
	Phase     Phase
	Kind      string
	Actor     Player
	Target    Player
	Snapshot  Snapshot
	At        time.Time
}

// GameFinished is emitted when a winner is decided or a live game is
// abandoned. Abandoned games report FactionUnknown.
type GameFinished struct {
	SessionID uuid.UUID
	ChatID    int64
	Winner    Faction
	Abandoned bool
	Rounds    int
	Roster    []Player
	At        time.Time
}

// Hooks receives session events after the transition that caused them has
// been committed. Implementations must not call back into the Controller.
type Hooks interface {
	OnGameCreated(ctx context.Context, e GameCreated)
	OnGameStarted(ctx context.Context, e GameStarted)
	OnMoveMade(ctx context.Context, e MoveMade)
	OnGameFinished(ctx context.Context, e GameFinished)
}

// NopHooks ignores every event.
type NopHooks struct{}

func (NopHooks) OnGameCreated(context.Context, GameCreated)   {}
func (NopHooks) OnGameStarted(context.Context, GameStarted)   {}
func (NopHooks) OnMoveMade(context.Context, MoveMade)         {}
func (NopHooks) OnGameFinished(context.Context, GameFinished) {}

// MultiHooks fans every event out to each hook in order.
type MultiHooks []Hooks

func (m MultiHooks) OnGameCreated(ctx context.Context, e GameCreated) {
	for _, h := range m {
		h.OnGameCreated(ctx, e)
	}
}

func (m MultiHooks) OnGameStarted(ctx context.Context, e GameStarted) {
	for _, h := range m {
		h.OnGameStarted(ctx, e)
	}
}

func (m MultiHooks) OnMoveMade(ctx context.Context, e MoveMade) {
	for _, h := range m {
		h.OnMoveMade(ctx, e)
	}
}

func (m MultiHooks) OnGameFinished(ctx context.Context, e GameFinished) {
	for _, h := range m {
		h.OnGameFinished(ctx, e)
	}
}

// AsyncHooks delivers events to the wrapped Hooks on a single worker
// goroutine, in emission order. Emitting never blocks: when the queue is
// full the event is dropped and logged.
type AsyncHooks struct {
	next    Hooks
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	queue  chan func(context.Context)
	done   chan struct{}

	dropped atomic.Int64
}

// NewAsyncHooks starts the delivery worker. size is the queue capacity and
// timeout bounds each delivery (0 means no bound).
func NewAsyncHooks(next Hooks, size int, timeout time.Duration) *AsyncHooks {
	if size <= 0 {
		size = 256
	}
	a := &AsyncHooks{
		next:    next,
		timeout: timeout,
		queue:   make(chan func(context.Context), size),
		done:    make(chan struct{}),
	}
	go a.run()
	return a
}

func (a *AsyncHooks) run() {
	defer close(a.done)
	for fn := range a.queue {
		a.deliver(fn)
	}
}

func (a *AsyncHooks) deliver(fn func(context.Context)) {
	ctx := context.Background()
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Hook panicked")
		}
	}()
	fn(ctx)
}

func (a *AsyncHooks) enqueue(event string, chatID int64, fn func(context.Context)) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		log.Warn().Str("event", event).Int64("chat_id", chatID).Msg("Hook event after close dropped")
		return
	}
	select {
	case a.queue <- fn:
	default:
		a.dropped.Add(1)
		log.Warn().Str("event", event).Int64("chat_id", chatID).Msg("Hook queue full, event dropped")
	}
}

// Dropped returns how many events were discarded because the queue was full.
func (a *AsyncHooks) Dropped() int64 {
	return a.dropped.Load()
}

// Close stops accepting events and waits until queued ones are delivered
// or ctx is done.
func (a *AsyncHooks) Close(ctx context.Context) error {
	a.mu.Lock()
	if !a.closed {
		a.closed = true
		close(a.queue)
	}
	a.mu.Unlock()

	select {
	case <-a.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *AsyncHooks) OnGameCreated(_ context.Context, e GameCreated) {
	a.enqueue("game_created", e.ChatID, func(ctx context.Context) { a.next.OnGameCreated(ctx, e) })
}

func (a *AsyncHooks) OnGameStarted(_ context.Context, e GameStarted) {
	a.enqueue("game_started", e.ChatID, func(ctx context.Context) { a.next.OnGameStarted(ctx, e) })
}

func (a *AsyncHooks) OnMoveMade(_ context.Context, e MoveMade) {
	a.enqueue("move_made", e.ChatID, func(ctx context.Context) { a.next.OnMoveMade(ctx, e) })
}

func (a *AsyncHooks) OnGameFinished(_ context.Context, e GameFinished) {
	a.enqueue("game_finished", e.ChatID, func(ctx context.Context) { a.next.OnGameFinished(ctx, e) })
}
