package apperror

import "errors"

var (
	ErrRoomNotFound    = errors.New("room not found")
	ErrRoomFull        = errors.New("room is full")
	ErrPlayerNotFound  = errors.New("player not found")
	ErrNotInRoom       = errors.New("player is not in this room")
	ErrGameNotPlaying  = errors.New("game is not in progress")
	ErrNotYourTurn     = errors.New("it's not your turn")
	ErrCellOccupied    = errors.New("cell is already occupied")
	ErrInvalidCell     = errors.New("invalid cell index")
	ErrRoomIDExhausted = errors.New("could not generate a unique room id")
)
