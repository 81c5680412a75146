package websocket

import (
	"encoding/json"
	"fmt"
)

// Message types on the wire.
const (
	// inbound
	TypeMakeMove  = "make_move"
	TypeResetGame = "reset_game"
	TypePing      = "ping"

	// outbound
	TypeGameState    = "game_state"
	TypePlayerJoined = "player_joined"
	TypeGameUpdate   = "game_update"
	TypeGameReset    = "game_reset"
	TypePlayerLeft   = "player_left"
	TypeError        = "error"
	TypePong         = "pong"
)

// Message is the envelope for every frame in both directions. Error
// frames carry Message instead of Data.
type Message struct {
	Type    string          `json:"type"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
}

type movePayload struct {
	Position int `json:"position"`
}

// encodeMessage wraps a payload into an envelope frame. A payload that
// cannot be marshaled is a programming error and must propagate, never
// be swallowed as a delivery failure.
func encodeMessage(messageType string, payload any) ([]byte, error) {
	message := Message{Type: messageType}

	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s payload: %w", messageType, err)
		}
		message.Data = data
	}

	frame, err := json.Marshal(message)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s message: %w", messageType, err)
	}

	return frame, nil
}

func encodeError(errorMsg string) ([]byte, error) {
	frame, err := json.Marshal(Message{Type: TypeError, Message: errorMsg})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal error message: %w", err)
	}

	return frame, nil
}
