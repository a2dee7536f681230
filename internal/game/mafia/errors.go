package mafia

import (
	"errors"

	"mafia-bot/internal/pkg/lock"
)

// Rejections returned by session operations. All of them are recoverable and
// leave the session untouched.
var (
	ErrInvalidPhase        = errors.New("action not allowed in the current phase")
	ErrUnknownPlayer       = errors.New("player is not in this game")
	ErrIneligibleTarget    = errors.New("target is not eligible")
	ErrIneligibleActor     = errors.New("player cannot perform this action")
	ErrGameFinished        = errors.New("game is already finished")
	ErrInsufficientPlayers = errors.New("not enough players to start")
	ErrLobbyFull           = errors.New("lobby is full")
	ErrNoSession           = errors.New("no game in this chat")
	ErrUnknownVariant      = errors.New("unknown game variant")
)

// Stable message classes for rejections.
const (
	CodeInvalidPhase        = "invalid_phase"
	CodeUnknownPlayer       = "unknown_player"
	CodeIneligibleTarget    = "ineligible_target"
	CodeIneligibleActor     = "ineligible_actor"
	CodeGameFinished        = "game_finished"
	CodeInsufficientPlayers = "insufficient_players"
	CodeLobbyFull           = "lobby_full"
	CodeNoSession           = "no_session"
	CodeUnknownVariant      = "unknown_variant"
	CodeBusy                = "busy"
	CodeInternal            = "internal"
)

var codes = []struct {
	err  error
	code string
}{
	{ErrInvalidPhase, CodeInvalidPhase},
	{ErrUnknownPlayer, CodeUnknownPlayer},
	{ErrIneligibleTarget, CodeIneligibleTarget},
	{ErrIneligibleActor, CodeIneligibleActor},
	{ErrGameFinished, CodeGameFinished},
	{ErrInsufficientPlayers, CodeInsufficientPlayers},
	{ErrLobbyFull, CodeLobbyFull},
	{ErrNoSession, CodeNoSession},
	{ErrUnknownVariant, CodeUnknownVariant},
	{lock.ErrLockTimeout, CodeBusy},
}

// Code maps an error returned by this package to its stable message class.
// Errors that are not game rejections map to CodeInternal; nil maps to "".
func Code(err error) string {
	if err == nil {
		return ""
	}
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return CodeInternal
}

// IsRejection reports whether err is a game rule rejection rather than an
// infrastructure failure.
func IsRejection(err error) bool {
	c := Code(err)
	return c != "" && c != CodeInternal
}
