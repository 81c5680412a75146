// Package hub tracks the live observer connections of each room and fans
// messages out to them. It knows nothing about game semantics: only
// "room id -> set of sinks". Its synchronization is independent of the
// session manager's room locks, so delivery never blocks a game mutation.
package hub

import (
	"fmt"
	"log/slog"
	"sync"
)

// Sink is one real-time delivery target, typically a websocket connection.
// Send must bound its own attempt; a failed sink gets pruned, not retried.
type Sink interface {
	Send(message []byte) error
}

type roomEntry struct {
	// sendMu serializes deliveries for the room so every observer sees
	// broadcasts in the order they were issued.
	sendMu sync.Mutex
	sinks  map[Sink]struct{}
}

type Hub struct {
	logger *slog.Logger

	mu    sync.RWMutex
	rooms map[string]*roomEntry
}

func New(logger *slog.Logger) *Hub {
	return &Hub{
		logger: logger,
		rooms:  make(map[string]*roomEntry),
	}
}

// Register adds a sink to a room's observer set, creating the set if absent.
func (that *Hub) Register(roomID string, sink Sink) {
	that.mu.Lock()
	defer that.mu.Unlock()

	entry, ok := that.rooms[roomID]
	if !ok {
		entry = &roomEntry{sinks: make(map[Sink]struct{})}
		that.rooms[roomID] = entry
	}

	entry.sinks[sink] = struct{}{}
}

// Unregister removes a sink. The room's tracking entry disappears with its
// last sink, independent of whether the room itself still exists.
func (that *Hub) Unregister(roomID string, sink Sink) {
	that.mu.Lock()
	defer that.mu.Unlock()

	entry, ok := that.rooms[roomID]
	if !ok {
		return
	}

	delete(entry.sinks, sink)

	if len(entry.sinks) == 0 {
		delete(that.rooms, roomID)
	}
}

// Broadcast delivers a message to every sink currently registered for the
// room. A failed sink does not abort delivery to the others; it is pruned
// from the set instead.
func (that *Hub) Broadcast(roomID string, message []byte) {
	that.mu.RLock()
	entry, ok := that.rooms[roomID]
	that.mu.RUnlock()

	if !ok {
		return
	}

	entry.sendMu.Lock()
	defer entry.sendMu.Unlock()

	that.mu.RLock()
	sinks := make([]Sink, 0, len(entry.sinks))
	for sink := range entry.sinks {
		sinks = append(sinks, sink)
	}
	that.mu.RUnlock()

	var dead []Sink
	for _, sink := range sinks {
		if err := sink.Send(message); err != nil {
			that.logger.Warn("dropping dead sink", "roomID", roomID, "error", err)
			dead = append(dead, sink)
		}
	}

	for _, sink := range dead {
		that.Unregister(roomID, sink)
	}
}

// Unicast delivers a message to exactly one sink. Failures are the
// caller's to handle.
func (that *Hub) Unicast(sink Sink, message []byte) error {
	if err := sink.Send(message); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	return nil
}
