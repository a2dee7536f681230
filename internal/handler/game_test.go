package handler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v3"

	"mafia-bot/internal/config"
	"mafia-bot/internal/game"
	"mafia-bot/internal/game/mafia"
)

type sent struct {
	to   string
	text string
}

// fakeSender records outgoing messages.
type fakeSender struct {
	mu   sync.Mutex
	msgs []sent
}

func (f *fakeSender) Send(to tele.Recipient, what interface{}, _ ...interface{}) (*tele.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, sent{to: to.Recipient(), text: fmt.Sprint(what)})
	return &tele.Message{}, nil
}

func (f *fakeSender) to(recipient string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, m := range f.msgs {
		if m.to == recipient {
			out = append(out, m.text)
		}
	}
	return out
}

const testChat int64 = -1001

func newTestHandler(t *testing.T) (*GameHandler, *fakeSender) {
	t.Helper()
	variants := game.NewRegistry()
	require.NoError(t, variants.Register(mafia.NewClassic(4, 0)))
	ctrl := mafia.NewController(variants, nil, mafia.NewRandomPolicy(1), mafia.ControllerConfig{
		ActionTimeout: time.Second,
		Seed:          3,
	})

	cfg := &config.Config{}
	sender := &fakeSender{}
	return NewGameHandler(cfg, ctrl, nil, sender), sender
}

func startGame(t *testing.T, h *GameHandler, players int) {
	t.Helper()
	ctx := context.Background()
	for i := 1; i <= players; i++ {
		_, err := h.ctrl.Join(ctx, testChat, int64(i), fmt.Sprintf("p%d", i))
		require.NoError(t, err)
	}
	_, err := h.ctrl.Start(ctx, testChat)
	require.NoError(t, err)
}

func TestPhaseTimeoutEndsNight(t *testing.T) {
	h, sender := newTestHandler(t)
	startGame(t, h, 4)

	h.onPhaseTimeout(testChat, mafia.PhaseNight, 1)

	group := sender.to(fmt.Sprint(testChat))
	require.Len(t, group, 2)
	assert.Equal(t, "⏰ Time is up!", group[0])
	assert.Contains(t, group[1], "Morning of day 1")

	st, err := h.ctrl.Status(context.Background(), testChat)
	require.NoError(t, err)
	assert.Equal(t, mafia.PhaseDay, st.Phase)
}

func TestPhaseTimeoutStaleIsIgnored(t *testing.T) {
	h, sender := newTestHandler(t)
	startGame(t, h, 4)

	h.onPhaseTimeout(testChat, mafia.PhaseDay, 1)
	h.onPhaseTimeout(testChat, mafia.PhaseNight, 2)
	h.onPhaseTimeout(-999, mafia.PhaseNight, 1)

	assert.Empty(t, sender.to(fmt.Sprint(testChat)))
	st, err := h.ctrl.Status(context.Background(), testChat)
	require.NoError(t, err)
	assert.Equal(t, mafia.PhaseNight, st.Phase)
}

func TestDayTimeoutPromptsNightRoles(t *testing.T) {
	h, sender := newTestHandler(t)
	startGame(t, h, 4)
	ctx := context.Background()

	h.onPhaseTimeout(testChat, mafia.PhaseNight, 1)
	h.onPhaseTimeout(testChat, mafia.PhaseDay, 1)

	group := sender.to(fmt.Sprint(testChat))
	require.Len(t, group, 4)
	assert.Contains(t, group[3], "Nobody voted")

	st, err := h.ctrl.Status(ctx, testChat)
	require.NoError(t, err)
	assert.Equal(t, mafia.PhaseNight, st.Phase)
	assert.Equal(t, 2, st.Round)

	roster, err := h.ctrl.Roles(ctx, testChat)
	require.NoError(t, err)
	prompted := 0
	for _, p := range roster {
		dms := sender.to(fmt.Sprint(p.ID))
		if p.Role == mafia.RoleTown {
			assert.Empty(t, dms, p.Name)
			continue
		}
		prompted++
		require.Len(t, dms, 1, p.Name)
		assert.True(t, strings.HasPrefix(dms[0], "🌙 Night falls"))
	}
	assert.Positive(t, prompted)
}

func TestAnnounceEndNil(t *testing.T) {
	h, sender := newTestHandler(t)
	h.announceEnd(testChat, nil, "⏰ Time is up!")
	assert.Empty(t, sender.to(fmt.Sprint(testChat)))
}

func TestSendWithoutSender(t *testing.T) {
	h, _ := newTestHandler(t)
	h.sender = nil
	assert.Error(t, h.sendTo(tele.ChatID(testChat), "hello"))
}
