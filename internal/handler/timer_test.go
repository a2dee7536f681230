package handler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mafia-bot/internal/game/mafia"
)

type firing struct {
	chatID int64
	phase  mafia.Phase
	round  int
}

func TestPhaseTimerFires(t *testing.T) {
	fired := make(chan firing, 4)
	timer := NewPhaseTimer(20*time.Millisecond, func(chatID int64, phase mafia.Phase, round int) {
		fired <- firing{chatID, phase, round}
	})

	timer.Schedule(1, mafia.PhaseNight, 1)
	assert.True(t, timer.Armed(1))

	select {
	case f := <-fired:
		assert.Equal(t, firing{1, mafia.PhaseNight, 1}, f)
	case <-time.After(2 * time.Second):
		t.Fatal("timer did not fire")
	}
	assert.Eventually(t, func() bool { return !timer.Armed(1) }, time.Second, 5*time.Millisecond)
}

func TestPhaseTimerReplaceAndCancel(t *testing.T) {
	fired := make(chan firing, 4)
	timer := NewPhaseTimer(50*time.Millisecond, func(chatID int64, phase mafia.Phase, round int) {
		fired <- firing{chatID, phase, round}
	})

	timer.Schedule(1, mafia.PhaseNight, 1)
	timer.Schedule(1, mafia.PhaseDay, 1)
	timer.Schedule(2, mafia.PhaseNight, 3)
	timer.Cancel(2)

	select {
	case f := <-fired:
		assert.Equal(t, firing{1, mafia.PhaseDay, 1}, f)
	case <-time.After(2 * time.Second):
		t.Fatal("timer did not fire")
	}

	select {
	case f := <-fired:
		t.Fatalf("unexpected firing %+v", f)
	case <-time.After(150 * time.Millisecond):
	}
}

func TestPhaseTimerDisabled(t *testing.T) {
	timer := NewPhaseTimer(0, func(int64, mafia.Phase, int) {
		require.Fail(t, "disabled timer fired")
	})
	timer.Schedule(1, mafia.PhaseNight, 1)
	assert.False(t, timer.Armed(1))
	timer.Stop()
}
