package handler

import (
	"sync"
	"time"

	"mafia-bot/internal/game/mafia"
)

// PhaseTimer ends phases that run longer than the configured timeout. At
// most one timer is armed per chat.
type PhaseTimer struct {
	timeout time.Duration
	fire    func(chatID int64, phase mafia.Phase, round int)

	mu     sync.Mutex
	timers map[int64]*time.Timer
}

// NewPhaseTimer creates a PhaseTimer. A zero timeout disables it.
func NewPhaseTimer(timeout time.Duration, fire func(chatID int64, phase mafia.Phase, round int)) *PhaseTimer {
	return &PhaseTimer{
		timeout: timeout,
		fire:    fire,
		timers:  make(map[int64]*time.Timer),
	}
}

// Schedule arms the chat's timer for phase and round, replacing any timer
// already armed for the chat.
func (t *PhaseTimer) Schedule(chatID int64, phase mafia.Phase, round int) {
	if t.timeout <= 0 {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if old, ok := t.timers[chatID]; ok {
		old.Stop()
	}
	var timer *time.Timer
	timer = time.AfterFunc(t.timeout, func() {
		t.mu.Lock()
		if t.timers[chatID] == timer {
			delete(t.timers, chatID)
		}
		t.mu.Unlock()
		t.fire(chatID, phase, round)
	})
	t.timers[chatID] = timer
}

// Cancel disarms the chat's timer.
func (t *PhaseTimer) Cancel(chatID int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if timer, ok := t.timers[chatID]; ok {
		timer.Stop()
		delete(t.timers, chatID)
	}
}

// Armed reports whether the chat has a pending timer.
func (t *PhaseTimer) Armed(chatID int64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.timers[chatID]
	return ok
}

// Stop disarms every timer.
func (t *PhaseTimer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for id, timer := range t.timers {
		timer.Stop()
		delete(t.timers, id)
	}
}
