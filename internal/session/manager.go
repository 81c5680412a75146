// Package session is the authority for room state transitions. Every
// mutating operation on a room runs under that room's lock; operations
// on different rooms never contend.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/teris-io/shortid"
	"github.com/tictactoe-online/backend/internal/apperror"
	"github.com/tictactoe-online/backend/internal/entity"
	"github.com/tictactoe-online/backend/internal/game"
)

const defaultIDAttempts = 5

type roomRepo interface {
	Create(ctx context.Context, room *entity.Room) (bool, error)
	GetByID(ctx context.Context, id string) (*entity.Room, error)
	Update(ctx context.Context, room *entity.Room) error
	DeleteByID(ctx context.Context, id string) error
}

type playerRepo interface {
	CreateOrUpdate(ctx context.Context, player *entity.Player) error
	GetByID(ctx context.Context, id string) (*entity.Player, error)
	ListByRoom(ctx context.Context, roomID string) ([]*entity.Player, error)
	Delete(ctx context.Context, player *entity.Player) error
}

type Manager struct {
	logger     *slog.Logger
	roomRepo   roomRepo
	playerRepo playerRepo
	idAttempts int

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewManager(logger *slog.Logger, roomRepo roomRepo, playerRepo playerRepo, idAttempts int) *Manager {
	if idAttempts <= 0 {
		idAttempts = defaultIDAttempts
	}

	return &Manager{
		logger:     logger,
		roomRepo:   roomRepo,
		playerRepo: playerRepo,
		idAttempts: idAttempts,

		locks: make(map[string]*sync.Mutex),
	}
}

// roomLock returns the mutex serializing mutations of one room.
func (that *Manager) roomLock(roomID string) *sync.Mutex {
	that.mu.Lock()
	defer that.mu.Unlock()

	lock, ok := that.locks[roomID]
	if !ok {
		lock = &sync.Mutex{}
		that.locks[roomID] = lock
	}

	return lock
}

// dropRoomLock forgets a deleted room's lock entry. Goroutines already
// blocked on the old mutex proceed and find the room gone in the store.
func (that *Manager) dropRoomLock(roomID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.locks, roomID)
}

// CreateRoom creates a fresh room and assigns the creator symbol X.
// Room id collisions are retried a bounded number of times; the ceiling
// surfaces as ErrRoomIDExhausted.
func (that *Manager) CreateRoom(ctx context.Context) (*entity.RoomView, *entity.Player, error) {
	log := that.logger.With("method", "CreateRoom")

	for attempt := 0; attempt < that.idAttempts; attempt++ {
		room := entity.NewRoom(newRoomID())

		created, err := that.roomRepo.Create(ctx, room)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create room: %w", err)
		}

		if !created {
			log.Warn("room id collision, retrying", "roomID", room.ID, "attempt", attempt+1)
			continue
		}

		player := &entity.Player{
			ID:     newPlayerID(),
			RoomID: room.ID,
			Symbol: entity.SymbolX,
		}

		if err = that.playerRepo.CreateOrUpdate(ctx, player); err != nil {
			return nil, nil, fmt.Errorf("failed to create player: %w", err)
		}

		log.Info("room created", "roomID", room.ID, "playerID", player.ID)

		return viewOf(room, []*entity.Player{player}), player, nil
	}

	return nil, nil, apperror.ErrRoomIDExhausted
}

// JoinRoom assigns the remaining symbol to a new player. The join that
// brings membership to two flips the room to playing with the turn on X;
// the board is left as-is so a resumed room keeps its prior position.
func (that *Manager) JoinRoom(ctx context.Context, roomID string) (*entity.RoomView, *entity.Player, error) {
	lock := that.roomLock(roomID)
	lock.Lock()
	defer lock.Unlock()

	room, err := that.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return nil, nil, err
	}

	players, err := that.playerRepo.ListByRoom(ctx, roomID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list players: %w", err)
	}

	if len(players) >= entity.MaxPlayers {
		return nil, nil, apperror.ErrRoomFull
	}

	player := &entity.Player{
		ID:     newPlayerID(),
		RoomID: roomID,
		Symbol: remainingSymbol(players),
	}

	if err = that.playerRepo.CreateOrUpdate(ctx, player); err != nil {
		return nil, nil, fmt.Errorf("failed to create player: %w", err)
	}

	players = append(players, player)

	if len(players) == entity.MaxPlayers {
		room.Status = entity.StatusPlaying
		room.Turn = entity.SymbolX

		if err = that.roomRepo.Update(ctx, room); err != nil {
			return nil, nil, fmt.Errorf("failed to update room: %w", err)
		}
	}

	that.logger.Info("player joined room", "roomID", roomID, "playerID", player.ID, "symbol", player.Symbol)

	return viewOf(room, players), player, nil
}

// GetState returns a read-only snapshot without taking the room lock.
func (that *Manager) GetState(ctx context.Context, roomID string) (*entity.RoomView, error) {
	room, err := that.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return nil, err
	}

	players, err := that.playerRepo.ListByRoom(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}

	return viewOf(room, players), nil
}

// SubmitMove validates and applies one move. Rejection checks run in a
// fixed order: room, membership, status, turn, cell. A rejected move
// leaves board, turn and status untouched.
func (that *Manager) SubmitMove(ctx context.Context, roomID, playerID string, position int) (*entity.RoomView, error) {
	lock := that.roomLock(roomID)
	lock.Lock()
	defer lock.Unlock()

	room, err := that.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return nil, err
	}

	players, err := that.playerRepo.ListByRoom(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}

	mover := findPlayer(players, playerID)
	if mover == nil {
		return nil, apperror.ErrNotInRoom
	}

	if !room.IsPlaying() {
		return nil, apperror.ErrGameNotPlaying
	}

	if room.Turn != mover.Symbol {
		return nil, apperror.ErrNotYourTurn
	}

	board, err := game.ApplyMove(room.Board, position, mover.Symbol)
	if err != nil {
		return nil, err
	}

	outcome := game.Evaluate(board)

	room.Board = board
	room.Status = outcome.Status
	room.Turn = game.NextTurn(mover.Symbol, outcome)

	if err = that.roomRepo.Update(ctx, room); err != nil {
		return nil, fmt.Errorf("failed to update room: %w", err)
	}

	that.logger.Info("move applied",
		"roomID", roomID, "playerID", playerID, "position", position, "status", room.Status)

	view := viewOf(room, players)
	view.LastMove = &entity.LastMove{Position: position, Player: mover.Symbol}
	view.WinningCombo = outcome.WinningCombo

	return view, nil
}

// ResetGame clears the board and puts the room back into playing.
// Resetting a waiting room is permitted but leaves it unplayable until
// a second player joins.
func (that *Manager) ResetGame(ctx context.Context, roomID string) (*entity.RoomView, error) {
	lock := that.roomLock(roomID)
	lock.Lock()
	defer lock.Unlock()

	room, err := that.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return nil, err
	}

	room.ResetBoard()

	if err = that.roomRepo.Update(ctx, room); err != nil {
		return nil, fmt.Errorf("failed to update room: %w", err)
	}

	players, err := that.playerRepo.ListByRoom(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}

	that.logger.Info("game reset", "roomID", roomID)

	return viewOf(room, players), nil
}

// LeaveRoom removes a player. The last player leaving deletes the room
// entirely, reported with a nil view. One leaver of two regresses the
// room to waiting without touching the board.
func (that *Manager) LeaveRoom(ctx context.Context, roomID, playerID string) (*entity.RoomView, error) {
	lock := that.roomLock(roomID)
	lock.Lock()
	defer lock.Unlock()

	room, err := that.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return nil, err
	}

	players, err := that.playerRepo.ListByRoom(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}

	leaver := findPlayer(players, playerID)
	if leaver == nil {
		return nil, apperror.ErrNotInRoom
	}

	if err = that.playerRepo.Delete(ctx, leaver); err != nil {
		return nil, fmt.Errorf("failed to delete player: %w", err)
	}

	remaining := make([]*entity.Player, 0, len(players)-1)
	for _, player := range players {
		if player.ID != playerID {
			remaining = append(remaining, player)
		}
	}

	if len(remaining) == 0 {
		if err = that.roomRepo.DeleteByID(ctx, roomID); err != nil {
			return nil, fmt.Errorf("failed to delete room: %w", err)
		}

		that.dropRoomLock(roomID)
		that.logger.Info("room deleted", "roomID", roomID)

		return nil, nil
	}

	room.Status = entity.StatusWaiting

	if err = that.roomRepo.Update(ctx, room); err != nil {
		return nil, fmt.Errorf("failed to update room: %w", err)
	}

	that.logger.Info("player left room", "roomID", roomID, "playerID", playerID)

	return viewOf(room, remaining), nil
}

func newRoomID() string {
	return strings.ToUpper(shortid.MustGenerate())
}

func newPlayerID() string {
	return uuid.NewString()[:8]
}

// remainingSymbol hands out whichever symbol the current members do not
// hold, so a resumed room whose survivor holds O gives X to the newcomer.
func remainingSymbol(players []*entity.Player) string {
	for _, player := range players {
		if player.Symbol == entity.SymbolX {
			return entity.SymbolO
		}
	}

	return entity.SymbolX
}

func findPlayer(players []*entity.Player, id string) *entity.Player {
	for _, player := range players {
		if player.ID == id {
			return player
		}
	}

	return nil
}

func viewOf(room *entity.Room, players []*entity.Player) *entity.RoomView {
	views := make([]entity.PlayerView, 0, len(players))
	for _, player := range players {
		views = append(views, entity.PlayerView{
			PlayerID:     player.ID,
			PlayerSymbol: player.Symbol,
		})
	}

	return &entity.RoomView{
		RoomID:      room.ID,
		Board:       room.Board,
		CurrentTurn: room.Turn,
		Status:      room.Status,
		Players:     views,
	}
}
