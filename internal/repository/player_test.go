package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tictactoe-online/backend/internal/apperror"
	"github.com/tictactoe-online/backend/internal/entity"
	"github.com/tictactoe-online/backend/testing/suite"
)

func TestPlayerRepository_CreateOrUpdate(t *testing.T) {
	ctx, st := suite.New(t)

	playerRepo := NewPlayerRepository(st.Storage)

	// Given: a player assigned to a room
	player := &entity.Player{ID: "p1", RoomID: "ABCD1234", Symbol: entity.SymbolX}

	// When: CreateOrUpdate is called
	err := playerRepo.CreateOrUpdate(ctx, player)

	// Then: the record is stored and the player is a room member
	require.NoError(t, err)

	retrieved, err := playerRepo.GetByID(ctx, player.ID)
	require.NoError(t, err)
	assert.Equal(t, player.RoomID, retrieved.RoomID)
	assert.Equal(t, player.Symbol, retrieved.Symbol)

	members, err := playerRepo.ListByRoom(ctx, player.RoomID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, player.ID, members[0].ID)
}

func TestPlayerRepository_GetByID_NotFound(t *testing.T) {
	ctx, st := suite.New(t)

	playerRepo := NewPlayerRepository(st.Storage)

	// When: GetByID is called with a non-existent id
	retrieved, err := playerRepo.GetByID(ctx, "ghost")

	// Then: ErrPlayerNotFound is returned
	require.ErrorIs(t, err, apperror.ErrPlayerNotFound)
	assert.Nil(t, retrieved)
}

func TestPlayerRepository_ListByRoom(t *testing.T) {
	ctx, st := suite.New(t)

	playerRepo := NewPlayerRepository(st.Storage)

	// Given: two players in the same room, stored O first
	playerO := &entity.Player{ID: "p2", RoomID: "ABCD1234", Symbol: entity.SymbolO}
	playerX := &entity.Player{ID: "p1", RoomID: "ABCD1234", Symbol: entity.SymbolX}
	require.NoError(t, playerRepo.CreateOrUpdate(ctx, playerO))
	require.NoError(t, playerRepo.CreateOrUpdate(ctx, playerX))

	// When: the room members are listed
	members, err := playerRepo.ListByRoom(ctx, "ABCD1234")

	// Then: both are returned, X before O
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, entity.SymbolX, members[0].Symbol)
	assert.Equal(t, entity.SymbolO, members[1].Symbol)
}

func TestPlayerRepository_Delete(t *testing.T) {
	ctx, st := suite.New(t)

	playerRepo := NewPlayerRepository(st.Storage)

	// Given: a stored player
	player := &entity.Player{ID: "p1", RoomID: "ABCD1234", Symbol: entity.SymbolX}
	require.NoError(t, playerRepo.CreateOrUpdate(ctx, player))

	// When: the player is deleted
	err := playerRepo.Delete(ctx, player)
	require.NoError(t, err)

	// Then: the record is gone and the membership set no longer lists it
	_, err = playerRepo.GetByID(ctx, player.ID)
	require.ErrorIs(t, err, apperror.ErrPlayerNotFound)

	members, err := playerRepo.ListByRoom(ctx, player.RoomID)
	require.NoError(t, err)
	assert.Empty(t, members)
}
