package websocket

import (
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	readWait       = 90 * time.Second
	maxMessageSize = 1024
)

// Client wraps one websocket connection as a hub sink. Writes are
// serialized and bounded by a deadline so one stalled peer cannot hold
// a broadcast forever.
type Client struct {
	conn     *websocket.Conn
	roomID   string
	playerID string

	mu sync.Mutex
}

func newClient(conn *websocket.Conn, roomID, playerID string) *Client {
	return &Client{
		conn:     conn,
		roomID:   roomID,
		playerID: playerID,
	}
}

func (that *Client) Send(message []byte) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	_ = that.conn.SetWriteDeadline(time.Now().Add(writeWait))

	if err := that.conn.WriteMessage(websocket.TextMessage, message); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}

func (that *Client) Close() error {
	return that.conn.Close()
}
