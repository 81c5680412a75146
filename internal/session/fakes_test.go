package session

import (
	"context"
	"sort"
	"sync"

	"github.com/tictactoe-online/backend/internal/apperror"
	"github.com/tictactoe-online/backend/internal/entity"
)

// In-memory stand-ins for the redis repositories. They copy records on
// the way in and out so tests observe persistence, not shared pointers.

type fakeRoomRepo struct {
	mu            sync.Mutex
	rooms         map[string]entity.Room
	alwaysCollide bool
	createCalls   int
}

func newFakeRoomRepo() *fakeRoomRepo {
	return &fakeRoomRepo{rooms: make(map[string]entity.Room)}
}

func (that *fakeRoomRepo) Create(_ context.Context, room *entity.Room) (bool, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.createCalls++

	if that.alwaysCollide {
		return false, nil
	}

	if _, ok := that.rooms[room.ID]; ok {
		return false, nil
	}

	that.rooms[room.ID] = *room

	return true, nil
}

func (that *fakeRoomRepo) GetByID(_ context.Context, id string) (*entity.Room, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	room, ok := that.rooms[id]
	if !ok {
		return nil, apperror.ErrRoomNotFound
	}

	return &room, nil
}

func (that *fakeRoomRepo) Update(_ context.Context, room *entity.Room) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.rooms[room.ID] = *room

	return nil
}

func (that *fakeRoomRepo) DeleteByID(_ context.Context, id string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.rooms, id)

	return nil
}

type fakePlayerRepo struct {
	mu      sync.Mutex
	players map[string]entity.Player
}

func newFakePlayerRepo() *fakePlayerRepo {
	return &fakePlayerRepo{players: make(map[string]entity.Player)}
}

func (that *fakePlayerRepo) CreateOrUpdate(_ context.Context, player *entity.Player) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.players[player.ID] = *player

	return nil
}

func (that *fakePlayerRepo) GetByID(_ context.Context, id string) (*entity.Player, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	player, ok := that.players[id]
	if !ok {
		return nil, apperror.ErrPlayerNotFound
	}

	return &player, nil
}

func (that *fakePlayerRepo) ListByRoom(_ context.Context, roomID string) ([]*entity.Player, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	var players []*entity.Player
	for _, player := range that.players {
		if player.RoomID == roomID {
			player := player
			players = append(players, &player)
		}
	}

	sort.Slice(players, func(i, j int) bool {
		if players[i].Symbol != players[j].Symbol {
			return players[i].Symbol == entity.SymbolX
		}
		return players[i].ID < players[j].ID
	})

	return players, nil
}

func (that *fakePlayerRepo) Delete(_ context.Context, player *entity.Player) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.players, player.ID)

	return nil
}
