package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tictactoe-online/backend/internal/apperror"
)

// moveRejections are surfaced to the offending connection only; the rest
// of the room never hears about them.
var moveRejections = []error{
	apperror.ErrNotInRoom,
	apperror.ErrGameNotPlaying,
	apperror.ErrNotYourTurn,
	apperror.ErrCellOccupied,
	apperror.ErrInvalidCell,
}

func isMoveRejection(err error) bool {
	for _, rejection := range moveRejections {
		if errors.Is(err, rejection) {
			return true
		}
	}

	return false
}

func (that *Server) handleMakeMove(ctx context.Context, client *Client, message *Message) error {
	var payload movePayload
	if err := json.Unmarshal(message.Data, &payload); err != nil {
		that.sendError(client, "invalid make_move payload")
		return nil
	}

	view, err := that.session.SubmitMove(ctx, client.roomID, client.playerID, payload.Position)
	if isMoveRejection(err) || errors.Is(err, apperror.ErrRoomNotFound) {
		that.sendError(client, err.Error())
		return nil
	}

	if err != nil {
		that.sendError(client, "failed to make move")
		return fmt.Errorf("failed to submit move: %w", err)
	}

	frame, err := encodeMessage(TypeGameUpdate, view)
	if err != nil {
		return err
	}

	that.hub.Broadcast(client.roomID, frame)

	return nil
}

func (that *Server) handleResetGame(ctx context.Context, client *Client, _ *Message) error {
	view, err := that.session.ResetGame(ctx, client.roomID)
	if errors.Is(err, apperror.ErrRoomNotFound) {
		that.sendError(client, err.Error())
		return nil
	}

	if err != nil {
		that.sendError(client, "failed to reset game")
		return fmt.Errorf("failed to reset game: %w", err)
	}

	frame, err := encodeMessage(TypeGameReset, view)
	if err != nil {
		return err
	}

	that.hub.Broadcast(client.roomID, frame)

	return nil
}

func (that *Server) handlePing(_ context.Context, client *Client, _ *Message) error {
	frame, err := encodeMessage(TypePong, nil)
	if err != nil {
		return err
	}

	return that.hub.Unicast(client, frame)
}
