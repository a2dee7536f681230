package handler

import (
	"fmt"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v3"

	"mafia-bot/internal/game/mafia"
)

const (
	// CallbackPrefix is the prefix for all game callback data
	CallbackPrefix = "mafia_"

	// ActionVote is the callback action of day vote buttons.
	ActionVote = "vote"

	buttonsPerRow = 2
)

// EncodeCallback encodes a target choice into callback data. The chat is
// part of the data because night buttons live in private chats.
func EncodeCallback(action string, chatID, targetID int64) string {
	return fmt.Sprintf("%s%s_%d_%d", CallbackPrefix, action, chatID, targetID)
}

// DecodeCallback decodes callback data produced by EncodeCallback.
func DecodeCallback(data string) (action string, chatID, targetID int64, ok bool) {
	data = strings.TrimPrefix(data, "\f")
	if !strings.HasPrefix(data, CallbackPrefix) {
		return "", 0, 0, false
	}

	parts := strings.Split(strings.TrimPrefix(data, CallbackPrefix), "_")
	if len(parts) != 3 || parts[0] == "" {
		return "", 0, 0, false
	}
	chatID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return "", 0, 0, false
	}
	targetID, err = strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return "", 0, 0, false
	}
	return parts[0], chatID, targetID, true
}

// BuildTargetKeyboard lays out one button per target, two per row.
func BuildTargetKeyboard(action string, chatID int64, targets []mafia.Player) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}

	var rows [][]tele.InlineButton
	var row []tele.InlineButton
	for _, p := range targets {
		row = append(row, tele.InlineButton{
			Text: p.Name,
			Data: EncodeCallback(action, chatID, p.ID),
		})
		if len(row) == buttonsPerRow {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}

	markup.InlineKeyboard = rows
	return markup
}
