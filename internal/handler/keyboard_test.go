package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"mafia-bot/internal/game/mafia"
)

// Callback data decodes to what was encoded and stays within Telegram's
// 64 byte limit.
func TestCallbackRoundTripProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		action := rapid.SampledFrom([]string{"kill", "protect", "check", ActionVote}).Draw(t, "action")
		chatID := rapid.Int64().Draw(t, "chat")
		targetID := rapid.Int64().Draw(t, "target")

		data := EncodeCallback(action, chatID, targetID)
		if len(data) > 64 {
			t.Fatalf("callback data too long: %d bytes", len(data))
		}

		gotAction, gotChat, gotTarget, ok := DecodeCallback("\f" + data)
		if !ok || gotAction != action || gotChat != chatID || gotTarget != targetID {
			t.Fatalf("decode(%q) = %q %d %d %v", data, gotAction, gotChat, gotTarget, ok)
		}
	})
}

func TestDecodeCallbackRejects(t *testing.T) {
	for _, data := range []string{
		"",
		"other_button_1_2",
		"mafia_",
		"mafia_kill_1",
		"mafia_kill_x_2",
		"mafia_kill_1_y",
		"mafia__1_2",
	} {
		_, _, _, ok := DecodeCallback(data)
		assert.False(t, ok, data)
	}
}

func TestBuildTargetKeyboard(t *testing.T) {
	targets := []mafia.Player{{ID: 1, Name: "a"}, {ID: 2, Name: "b"}, {ID: -1, Name: "Bot 1"}}
	markup := BuildTargetKeyboard("kill", -100, targets)

	require.Len(t, markup.InlineKeyboard, 2)
	assert.Len(t, markup.InlineKeyboard[0], 2)
	assert.Len(t, markup.InlineKeyboard[1], 1)
	assert.Equal(t, "Bot 1", markup.InlineKeyboard[1][0].Text)
	assert.Equal(t, "mafia_kill_-100_-1", markup.InlineKeyboard[1][0].Data)
}
