package service

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"

	"mafia-bot/internal/model"
	"mafia-bot/internal/repository"
)

var errStore = errors.New("store down")

type memStore struct {
	mu       sync.Mutex
	users    map[int64]*model.User
	games    map[uuid.UUID]*model.Game
	seats    map[uuid.UUID][]model.GamePlayer
	moves    []*model.Move
	training []*model.TrainingRow
	results  []*model.GameResult
	fail     bool
}

func newMemStore() *memStore {
	return &memStore{
		users: make(map[int64]*model.User),
		games: make(map[uuid.UUID]*model.Game),
		seats: make(map[uuid.UUID][]model.GamePlayer),
	}
}

func (m *memStore) stores() Stores {
	return Stores{Users: m, Games: memGames{m}, Moves: memMoves{m}, Training: memTraining{m}}
}

func (m *memStore) Upsert(_ context.Context, id int64, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errStore
	}
	if u, ok := m.users[id]; ok {
		u.Username = name
		return nil
	}
	m.users[id] = &model.User{TelegramID: id, Username: name}
	return nil
}

func (m *memStore) GetByID(_ context.Context, id int64) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return nil, errStore
	}
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memStore) GetTop(_ context.Context, limit int) ([]*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return nil, errStore
	}
	var out []*model.User
	for _, u := range m.users {
		if u.GamesPlayed > 0 {
			cp := *u
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].GamesWon != out[j].GamesWon {
			return out[i].GamesWon > out[j].GamesWon
		}
		return out[i].TelegramID < out[j].TelegramID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type memGames struct{ m *memStore }

func (g memGames) Create(_ context.Context, game *model.Game) error {
	g.m.mu.Lock()
	defer g.m.mu.Unlock()
	if g.m.fail {
		return errStore
	}
	cp := *game
	g.m.games[game.ID] = &cp
	return nil
}

func (g memGames) AddPlayers(_ context.Context, id uuid.UUID, players []model.GamePlayer) error {
	g.m.mu.Lock()
	defer g.m.mu.Unlock()
	if g.m.fail {
		return errStore
	}
	g.m.seats[id] = append([]model.GamePlayer(nil), players...)
	return nil
}

func (g memGames) Finish(_ context.Context, res *model.GameResult) error {
	g.m.mu.Lock()
	defer g.m.mu.Unlock()
	if g.m.fail {
		return errStore
	}
	game, ok := g.m.games[res.GameID]
	if !ok {
		return repository.ErrGameNotFound
	}
	game.Status = res.Status
	game.Rounds = res.Rounds
	if res.Winner != "" {
		w := res.Winner
		game.Winner = &w
	}
	g.m.results = append(g.m.results, res)
	if res.Status != model.GameStatusFinished {
		return nil
	}
	for _, p := range res.Players {
		u, ok := g.m.users[p.UserID]
		if p.IsBot || !ok {
			continue
		}
		u.GamesPlayed++
		if p.Result != nil && *p.Result == model.ResultWin {
			u.GamesWon++
		}
	}
	return nil
}

type memMoves struct{ m *memStore }

func (mv memMoves) Create(_ context.Context, move *model.Move) error {
	mv.m.mu.Lock()
	defer mv.m.mu.Unlock()
	if mv.m.fail {
		return errStore
	}
	move.ID = int64(len(mv.m.moves) + 1)
	mv.m.moves = append(mv.m.moves, move)
	return nil
}

type memTraining struct{ m *memStore }

func (t memTraining) Create(_ context.Context, row *model.TrainingRow) error {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	if t.m.fail {
		return errStore
	}
	row.ID = int64(len(t.m.training) + 1)
	t.m.training = append(t.m.training, row)
	return nil
}

func (t memTraining) SetOutcomes(_ context.Context, id uuid.UUID, outcomes map[int64]string) error {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	if t.m.fail {
		return errStore
	}
	for _, row := range t.m.training {
		if o, ok := outcomes[row.ActorID]; ok && row.GameID == id {
			o := o
			row.Outcome = &o
		}
	}
	return nil
}
