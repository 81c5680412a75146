package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tictactoe-online/backend/internal/apperror"
	"github.com/tictactoe-online/backend/internal/entity"
)

type RoomRepository interface {
	Create(ctx context.Context, room *entity.Room) (bool, error)
	GetByID(ctx context.Context, id string) (*entity.Room, error)
	Update(ctx context.Context, room *entity.Room) error
	DeleteByID(ctx context.Context, id string) error
}

type dbRoom struct {
	client *redis.Client
}

func NewRoomRepository(client *redis.Client) RoomRepository {
	return &dbRoom{
		client: client,
	}
}

func roomKey(id string) string {
	return "room:" + id
}

func roomPlayersKey(id string) string {
	return "room:" + id + ":players"
}

// Create stores a new room. It returns false without error when a room
// with the same id already exists, so id collisions surface to the caller.
func (that *dbRoom) Create(ctx context.Context, room *entity.Room) (bool, error) {
	roomJSON, err := json.Marshal(room)
	if err != nil {
		return false, fmt.Errorf("could not marshal room: %w", err)
	}

	created, err := that.client.SetNX(ctx, roomKey(room.ID), roomJSON, 0).Result()
	if err != nil {
		return false, fmt.Errorf("failed to create room: %w", err)
	}

	return created, nil
}

func (that *dbRoom) GetByID(ctx context.Context, id string) (*entity.Room, error) {
	response, err := that.client.Get(ctx, roomKey(id)).Result()

	if errors.Is(err, redis.Nil) {
		return nil, apperror.ErrRoomNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get room by id: %w", err)
	}

	var existingRoom entity.Room
	if err = json.Unmarshal([]byte(response), &existingRoom); err != nil {
		return nil, fmt.Errorf("failed to unmarshal room: %w", err)
	}

	return &existingRoom, nil
}

func (that *dbRoom) Update(ctx context.Context, room *entity.Room) error {
	room.UpdatedAt = time.Now().UTC()

	roomJSON, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("could not marshal room: %w", err)
	}

	if err = that.client.Set(ctx, roomKey(room.ID), roomJSON, 0).Err(); err != nil {
		return fmt.Errorf("failed to update room: %w", err)
	}

	return nil
}

// DeleteByID removes the room record together with its membership set.
func (that *dbRoom) DeleteByID(ctx context.Context, id string) error {
	if err := that.client.Del(ctx, roomKey(id), roomPlayersKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete room by id: %w", err)
	}

	return nil
}
