package persistence

import (
	"context"
	"sort"
	"sync"

	"github.com/wfunc/rpsserver/models"
)

// MemoryStore keeps users and games in process memory.
type MemoryStore struct {
	users  map[int64]models.User
	games  map[int64]*models.Game
	nextID int64
	mutex  sync.RWMutex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:  make(map[int64]models.User),
		games:  make(map[int64]*models.Game),
		nextID: 1,
	}
}

func (s *MemoryStore) FindUser(_ context.Context, id int64) (*models.User, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrRecordNotFound
	}
	return &u, nil
}

func (s *MemoryStore) SaveUser(_ context.Context, user *models.User) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.users[user.ID] = *user
	return nil
}

func (s *MemoryStore) FindGame(_ context.Context, id int64) (*models.Game, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	g, ok := s.games[id]
	if !ok {
		return nil, ErrRecordNotFound
	}
	return g.Clone(), nil
}

func (s *MemoryStore) ListGames(_ context.Context) ([]*models.Game, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	games := make([]*models.Game, 0, len(s.games))
	for _, g := range s.games {
		games = append(games, g.Clone())
	}
	sort.Slice(games, func(i, j int) bool { return games[i].ID < games[j].ID })
	return games, nil
}

func (s *MemoryStore) SaveGame(_ context.Context, game *models.Game) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if game.ID == 0 {
		game.ID = s.nextID
		s.nextID++
	} else if _, ok := s.games[game.ID]; !ok {
		return ErrRecordNotFound
	}
	s.games[game.ID] = game.Clone()
	return nil
}

func (s *MemoryStore) DeleteGame(_ context.Context, id int64) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, ok := s.games[id]; !ok {
		return ErrRecordNotFound
	}
	delete(s.games, id)
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
