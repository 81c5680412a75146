package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/tictactoe-online/backend/internal/apperror"
	"github.com/tictactoe-online/backend/internal/entity"
	"github.com/tictactoe-online/backend/internal/hub"
)

type session interface {
	GetState(ctx context.Context, roomID string) (*entity.RoomView, error)
	SubmitMove(ctx context.Context, roomID, playerID string, position int) (*entity.RoomView, error)
	ResetGame(ctx context.Context, roomID string) (*entity.RoomView, error)
	LeaveRoom(ctx context.Context, roomID, playerID string) (*entity.RoomView, error)
}

type Server struct {
	logger  *slog.Logger
	session session
	hub     *hub.Hub

	upgrader websocket.Upgrader
	handlers map[string]func(ctx context.Context, client *Client, message *Message) error
}

func New(logger *slog.Logger, session session, connHub *hub.Hub) *Server {
	server := &Server{
		logger:  logger,
		session: session,
		hub:     connHub,

		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(_ *http.Request) bool { return true },
		},
		handlers: make(map[string]func(context.Context, *Client, *Message) error),
	}

	server.handlers[TypeMakeMove] = server.handleMakeMove
	server.handlers[TypeResetGame] = server.handleResetGame
	server.handlers[TypePing] = server.handlePing

	return server
}

// Handler returns the http handler serving /ws/{roomID}/{playerID}.
func (that *Server) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws/{roomID}/{playerID}", func(w http.ResponseWriter, r *http.Request) {
		that.serveConnection(ctx, w, r)
	})

	return mux
}

// Start - starts the real-time server and shuts it down with the context.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           that.Handler(ctx),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// serveConnection upgrades the request and runs the connection's read loop.
func (that *Server) serveConnection(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "serveConnection")

	roomID := r.PathValue("roomID")
	playerID := r.PathValue("playerID")

	view, err := that.session.GetState(ctx, roomID)
	if errors.Is(err, apperror.ErrRoomNotFound) {
		http.Error(w, "room not found", http.StatusNotFound)
		return
	}

	if err != nil {
		log.Error("failed to get room state", "roomID", roomID, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	conn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	client := newClient(conn, roomID, playerID)
	that.hub.Register(roomID, client)

	log = log.With("roomID", roomID, "playerID", playerID)
	log.Info("observer connected")

	defer func() {
		that.hub.Unregister(roomID, client)
		_ = client.Close()
		that.handleLeave(ctx, client)
		log.Info("observer disconnected")
	}()

	if err = that.sendInitialState(ctx, client, view); err != nil {
		log.Error("failed to send initial state", "error", err)
		return
	}

	that.readLoop(ctx, client)
}

// sendInitialState unicasts the current snapshot and, when this connection
// completed the pair, announces the game start to the whole room.
func (that *Server) sendInitialState(ctx context.Context, client *Client, view *entity.RoomView) error {
	frame, err := encodeMessage(TypeGameState, view)
	if err != nil {
		return err
	}

	if err = that.hub.Unicast(client, frame); err != nil {
		return err
	}

	if len(view.Players) == entity.MaxPlayers && view.Status == entity.StatusPlaying {
		// re-read so the announcement reflects any move made since the
		// snapshot above was taken
		fresh, err := that.session.GetState(ctx, client.roomID)
		if err != nil {
			return err
		}

		frame, err = encodeMessage(TypePlayerJoined, fresh)
		if err != nil {
			return err
		}

		that.hub.Broadcast(client.roomID, frame)
	}

	return nil
}

// readLoop dispatches inbound frames until the connection drops.
func (that *Server) readLoop(ctx context.Context, client *Client) {
	log := that.logger.With("method", "readLoop", "roomID", client.roomID, "playerID", client.playerID)

	client.conn.SetReadLimit(maxMessageSize)
	_ = client.conn.SetReadDeadline(time.Now().Add(readWait))

	for {
		_, raw, err := client.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn("read failed", "error", err)
			}
			return
		}

		// any inbound traffic, including ping, proves liveness
		_ = client.conn.SetReadDeadline(time.Now().Add(readWait))

		var message Message
		if err = json.Unmarshal(raw, &message); err != nil {
			log.Warn("failed to unmarshal message", "error", err)
			that.sendError(client, "invalid message")
			continue
		}

		handler, ok := that.handlers[message.Type]
		if !ok {
			log.Warn("unknown message type", "type", message.Type)
			that.sendError(client, fmt.Sprintf("unknown message type %q", message.Type))
			continue
		}

		if err = handler(ctx, client, &message); err != nil {
			log.Error("failed to process message", "type", message.Type, "error", err)
		}
	}
}

// handleLeave removes the player from the room and tells the survivors.
func (that *Server) handleLeave(ctx context.Context, client *Client) {
	log := that.logger.With("method", "handleLeave", "roomID", client.roomID, "playerID", client.playerID)

	view, err := that.session.LeaveRoom(ctx, client.roomID, client.playerID)
	if errors.Is(err, apperror.ErrRoomNotFound) || errors.Is(err, apperror.ErrNotInRoom) {
		// already gone, nothing to announce
		return
	}

	if err != nil {
		log.Error("failed to leave room", "error", err)
		return
	}

	if view == nil {
		// room was deleted with its last player
		return
	}

	frame, err := encodeMessage(TypePlayerLeft, view)
	if err != nil {
		log.Error("failed to encode player_left", "error", err)
		return
	}

	that.hub.Broadcast(client.roomID, frame)
}

func (that *Server) sendError(client *Client, errorMsg string) {
	frame, err := encodeError(errorMsg)
	if err != nil {
		that.logger.Error("failed to encode error message", "error", err)
		return
	}

	if err = that.hub.Unicast(client, frame); err != nil {
		that.logger.Warn("failed to deliver error message", "error", err)
	}
}
