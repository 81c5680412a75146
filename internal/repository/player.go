package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"
	"github.com/tictactoe-online/backend/internal/apperror"
	"github.com/tictactoe-online/backend/internal/entity"
)

type PlayerRepository interface {
	CreateOrUpdate(ctx context.Context, player *entity.Player) error
	GetByID(ctx context.Context, id string) (*entity.Player, error)
	ListByRoom(ctx context.Context, roomID string) ([]*entity.Player, error)
	Delete(ctx context.Context, player *entity.Player) error
}

type dbPlayer struct {
	client *redis.Client
}

func NewPlayerRepository(client *redis.Client) PlayerRepository {
	return &dbPlayer{
		client: client,
	}
}

func playerKey(id string) string {
	return "player:" + id
}

// CreateOrUpdate stores the player record and keeps the room membership
// set in sync with the player's RoomID.
func (that *dbPlayer) CreateOrUpdate(ctx context.Context, player *entity.Player) error {
	playerJSON, err := json.Marshal(player)
	if err != nil {
		return fmt.Errorf("failed to marshal player: %w", err)
	}

	pipe := that.client.TxPipeline()
	pipe.Set(ctx, playerKey(player.ID), playerJSON, 0)
	if player.RoomID != "" {
		pipe.SAdd(ctx, roomPlayersKey(player.RoomID), player.ID)
	}

	if _, err = pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to set player: %w", err)
	}

	return nil
}

func (that *dbPlayer) GetByID(ctx context.Context, id string) (*entity.Player, error) {
	response, err := that.client.Get(ctx, playerKey(id)).Result()

	if errors.Is(err, redis.Nil) {
		return nil, apperror.ErrPlayerNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get player by id: %w", err)
	}

	var existingPlayer entity.Player
	if err = json.Unmarshal([]byte(response), &existingPlayer); err != nil {
		return nil, fmt.Errorf("failed to unmarshal player: %w", err)
	}

	return &existingPlayer, nil
}

// ListByRoom returns the players assigned to a room, X before O so views
// are stable regardless of set iteration order.
func (that *dbPlayer) ListByRoom(ctx context.Context, roomID string) ([]*entity.Player, error) {
	ids, err := that.client.SMembers(ctx, roomPlayersKey(roomID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list room members: %w", err)
	}

	players := make([]*entity.Player, 0, len(ids))
	for _, id := range ids {
		player, err := that.GetByID(ctx, id)
		if errors.Is(err, apperror.ErrPlayerNotFound) {
			// membership can outlive the record for a moment; skip strays
			continue
		}

		if err != nil {
			return nil, err
		}

		players = append(players, player)
	}

	sort.Slice(players, func(i, j int) bool {
		if players[i].Symbol != players[j].Symbol {
			return players[i].Symbol == entity.SymbolX
		}
		return players[i].ID < players[j].ID
	})

	return players, nil
}

// Delete removes the player record and its room membership.
func (that *dbPlayer) Delete(ctx context.Context, player *entity.Player) error {
	pipe := that.client.TxPipeline()
	pipe.Del(ctx, playerKey(player.ID))
	if player.RoomID != "" {
		pipe.SRem(ctx, roomPlayersKey(player.RoomID), player.ID)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete player: %w", err)
	}

	return nil
}
