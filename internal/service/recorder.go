package service

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"mafia-bot/internal/game/mafia"
	"mafia-bot/internal/model"
)

// OutcomeAbandoned labels training rows of games that ended without a winner.
const OutcomeAbandoned = "abandoned"

// Recorder writes session events to the stores. It implements mafia.Hooks
// and is meant to run behind mafia.AsyncHooks. Store failures are logged
// and never reach the game.
type Recorder struct {
	stores Stores
}

// NewRecorder creates a new Recorder.
func NewRecorder(stores Stores) *Recorder {
	return &Recorder{stores: stores}
}

var _ mafia.Hooks = (*Recorder)(nil)

// OnGameCreated inserts the game row.
func (r *Recorder) OnGameCreated(ctx context.Context, e mafia.GameCreated) {
	err := r.stores.Games.Create(ctx, &model.Game{
		ID:        e.SessionID,
		ChatID:    e.ChatID,
		Variant:   e.Variant,
		Status:    model.GameStatusOngoing,
		CreatedAt: e.At,
	})
	if err != nil {
		log.Error().Err(err).
			Int64("chat_id", e.ChatID).
			Str("session_id", e.SessionID.String()).
			Msg("Failed to record game")
	}
}

// OnGameStarted registers the human players and stores the seats with their
// roles.
func (r *Recorder) OnGameStarted(ctx context.Context, e mafia.GameStarted) {
	seats := make([]model.GamePlayer, 0, len(e.Roster))
	for _, p := range e.Roster {
		if !p.Bot {
			if err := r.stores.Users.Upsert(ctx, p.ID, p.Name); err != nil {
				log.Error().Err(err).Int64("player_id", p.ID).Msg("Failed to upsert user")
			}
		}
		seats = append(seats, model.GamePlayer{
			GameID: e.SessionID,
			UserID: p.ID,
			Name:   p.Name,
			Role:   p.Role.String(),
			IsBot:  p.Bot,
			Alive:  p.Alive,
		})
	}

	if err := r.stores.Games.AddPlayers(ctx, e.SessionID, seats); err != nil {
		log.Error().Err(err).
			Int64("chat_id", e.ChatID).
			Str("session_id", e.SessionID.String()).
			Msg("Failed to record seats")
	}
}

// OnMoveMade stores the move. Bot moves also produce a training row holding
// the state the bot decided on.
func (r *Recorder) OnMoveMade(ctx context.Context, e mafia.MoveMade) {
	move := &model.Move{
		GameID:    e.SessionID,
		Round:     e.Round,
		Phase:     e.Phase.String(),
		Type:      e.Kind,
		ActorID:   e.Actor.ID,
		TargetID:  e.Target.ID,
		CreatedAt: e.At,
	}
	if err := r.stores.Moves.Create(ctx, move); err != nil {
		log.Error().Err(err).
			Str("session_id", e.SessionID.String()).
			Int64("player_id", e.Actor.ID).
			Msg("Failed to record move")
	}

	if !e.Actor.Bot {
		return
	}

	state, err := json.Marshal(e.Snapshot)
	if err != nil {
		log.Error().Err(err).Msg("Failed to encode training state")
		return
	}
	row := &model.TrainingRow{
		GameID:    e.SessionID,
		ActorID:   e.Actor.ID,
		State:     string(state),
		Action:    e.Kind,
		TargetID:  e.Target.ID,
		CreatedAt: e.At,
	}
	if err := r.stores.Training.Create(ctx, row); err != nil {
		log.Error().Err(err).
			Str("session_id", e.SessionID.String()).
			Int64("player_id", e.Actor.ID).
			Msg("Failed to record training row")
	}
}

// OnGameFinished closes the game row, updates player statistics and labels
// the bots' training rows.
func (r *Recorder) OnGameFinished(ctx context.Context, e mafia.GameFinished) {
	res := GameResultOf(e)
	if err := r.stores.Games.Finish(ctx, res); err != nil {
		log.Error().Err(err).
			Int64("chat_id", e.ChatID).
			Str("session_id", e.SessionID.String()).
			Msg("Failed to record game result")
	}

	outcomes := TrainingOutcomes(e)
	if len(outcomes) == 0 {
		return
	}
	if err := r.stores.Training.SetOutcomes(ctx, e.SessionID, outcomes); err != nil {
		log.Error().Err(err).
			Str("session_id", e.SessionID.String()).
			Msg("Failed to label training rows")
	}
}

// GameResultOf converts a finish event into the rows written for it.
func GameResultOf(e mafia.GameFinished) *model.GameResult {
	res := &model.GameResult{
		GameID:     e.SessionID,
		Status:     model.GameStatusFinished,
		Rounds:     e.Rounds,
		FinishedAt: e.At,
	}
	if e.Abandoned {
		res.Status = model.GameStatusAbandoned
	} else {
		res.Winner = e.Winner.String()
	}

	for _, p := range e.Roster {
		seat := model.GamePlayer{
			GameID: e.SessionID,
			UserID: p.ID,
			Name:   p.Name,
			Role:   p.Role.String(),
			IsBot:  p.Bot,
			Alive:  p.Alive,
		}
		if !e.Abandoned {
			result := model.ResultLose
			if p.Role.Faction() == e.Winner {
				result = model.ResultWin
			}
			seat.Result = &result
		}
		res.Players = append(res.Players, seat)
	}
	return res
}

// TrainingOutcomes returns the outcome label of every bot in the roster.
func TrainingOutcomes(e mafia.GameFinished) map[int64]string {
	out := make(map[int64]string)
	for _, p := range e.Roster {
		if !p.Bot {
			continue
		}
		switch {
		case e.Abandoned:
			out[p.ID] = OutcomeAbandoned
		case p.Role.Faction() == e.Winner:
			out[p.ID] = model.ResultWin
		default:
			out[p.ID] = model.ResultLose
		}
	}
	return out
}
