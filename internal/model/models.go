// Package model defines the persistence models for the mafia bot.
package model

import (
	"time"

	"github.com/google/uuid"
)

// User is a Telegram user who has played at least one game.
type User struct {
	TelegramID  int64     `db:"telegram_id"`
	Username    string    `db:"username"`
	GamesPlayed int       `db:"games_played"`
	GamesWon    int       `db:"games_won"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// WinRate returns the share of games won, 0 when no game was played.
func (u *User) WinRate() float64 {
	if u.GamesPlayed == 0 {
		return 0
	}
	return float64(u.GamesWon) / float64(u.GamesPlayed)
}

// Game is one session of one chat.
type Game struct {
	ID         uuid.UUID  `db:"id"`
	ChatID     int64      `db:"chat_id"`
	Variant    string     `db:"variant"`
	Status     string     `db:"status"`
	Winner     *string    `db:"winner"`
	Rounds     int        `db:"rounds"`
	CreatedAt  time.Time  `db:"created_at"`
	FinishedAt *time.Time `db:"finished_at"`
}

// Game statuses.
const (
	GameStatusOngoing   = "ongoing"
	GameStatusFinished  = "finished"
	GameStatusAbandoned = "abandoned"
)

// GamePlayer is a seat of a game, bots included.
type GamePlayer struct {
	GameID uuid.UUID `db:"game_id"`
	UserID int64     `db:"user_id"`
	Name   string    `db:"name"`
	Role   string    `db:"role"`
	IsBot  bool      `db:"is_bot"`
	Alive  bool      `db:"alive"`
	Result *string   `db:"result"`
}

// Per-player results.
const (
	ResultWin  = "win"
	ResultLose = "lose"
)

// Move is an accepted night action or day vote.
type Move struct {
	ID        int64     `db:"id"`
	GameID    uuid.UUID `db:"game_id"`
	Round     int       `db:"round"`
	Phase     string    `db:"phase"`
	Type      string    `db:"type"`
	ActorID   int64     `db:"actor_id"`
	TargetID  int64     `db:"target_id"`
	CreatedAt time.Time `db:"created_at"`
}

// TrainingRow pairs a bot decision with the state it was taken in. Outcome
// is filled in once the game ends.
type TrainingRow struct {
	ID        int64     `db:"id"`
	GameID    uuid.UUID `db:"game_id"`
	ActorID   int64     `db:"actor_id"`
	State     string    `db:"state"`
	Action    string    `db:"action"`
	TargetID  int64     `db:"target_id"`
	Outcome   *string   `db:"outcome"`
	CreatedAt time.Time `db:"created_at"`
}

// GameResult is everything written when a game ends.
type GameResult struct {
	GameID     uuid.UUID
	Status     string
	Winner     string
	Rounds     int
	FinishedAt time.Time
	Players    []GamePlayer
}
