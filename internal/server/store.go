package server

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	errGameNotFound   = errors.New("game not found")
	errPlayerNotFound = errors.New("player not found")
)

// Store holds every running game in memory and is the authoritative
// copy while the process is up; the database is a write-through mirror.
// All mutations go through UpdateGame under the store mutex, which
// serializes concurrent requests against the same game.
type Store struct {
	mu    sync.Mutex
	games map[string]*Game
}

func NewStore() *Store {
	return &Store{
		games: make(map[string]*Game),
	}
}

func (s *Store) CreateGame() *Game {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := timeNowUTC()
	game := &Game{
		ID:            uuid.NewString(),
		Status:        statusSetup,
		CurrentRound:  1,
		CurrentTurn:   0,
		TurnStartedAt: now,
		CreatedAt:     now,
	}
	s.games[game.ID] = game
	return game
}

func (s *Store) GetGame(id string) (*Game, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	game, ok := s.games[id]
	return game, ok
}

func (s *Store) UpdateGame(id string, update func(game *Game) error) (*Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	game, ok := s.games[id]
	if !ok {
		return nil, errGameNotFound
	}
	if err := update(game); err != nil {
		return nil, err
	}
	return game, nil
}

func (s *Store) AddPlayer(gameID, name, color, faction string, turnOrder int) (*Game, *Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	game, ok := s.games[gameID]
	if !ok {
		return nil, nil, errGameNotFound
	}
	player := Player{
		ID:        uuid.NewString(),
		Name:      name,
		Color:     color,
		Faction:   faction,
		TurnOrder: turnOrder,
	}
	game.Players = append(game.Players, player)
	return game, &game.Players[len(game.Players)-1], nil
}

func (s *Store) GetPlayer(playerID string) (*Game, *Player, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, game := range s.games {
		for i := range game.Players {
			if game.Players[i].ID == playerID {
				return game, &game.Players[i], true
			}
		}
	}
	return nil, nil, false
}

// ViewGame runs view with the game under the store mutex. Read-only
// payloads (snapshots, broadcast bodies) must be built here or inside
// an UpdateGame closure, never from a retained pointer, so readers
// cannot race a concurrent mutation.
func (s *Store) ViewGame(id string, view func(game *Game)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	game, ok := s.games[id]
	if !ok {
		return false
	}
	view(game)
	return true
}

// ViewRecentGames calls view for up to limit games, newest first,
// under the store mutex.
func (s *Store) ViewRecentGames(limit int, view func(game *Game)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]*Game, 0, len(s.games))
	for _, game := range s.games {
		list = append(list, game)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	for _, game := range list {
		view(game)
	}
}

func (s *Store) RestoreGame(game *Game) error {
	if game == nil {
		return errors.New("game is nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.games[game.ID]; ok {
		return errors.New("game already running")
	}
	s.games[game.ID] = game
	return nil
}

func timeNowUTC() time.Time {
	return time.Now().UTC()
}
