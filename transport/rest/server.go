package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/tictactoe-online/backend/internal/entity"
)

type session interface {
	CreateRoom(ctx context.Context) (*entity.RoomView, *entity.Player, error)
	JoinRoom(ctx context.Context, roomID string) (*entity.RoomView, *entity.Player, error)
	GetState(ctx context.Context, roomID string) (*entity.RoomView, error)
	SubmitMove(ctx context.Context, roomID, playerID string, position int) (*entity.RoomView, error)
	ResetGame(ctx context.Context, roomID string) (*entity.RoomView, error)
}

type Server struct {
	logger  *slog.Logger
	session session
}

func New(logger *slog.Logger, session session) *Server {
	return &Server{
		logger:  logger,
		session: session,
	}
}

// Handler returns the request-style API surface. Every route maps 1:1 to
// a session manager operation.
func (that *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /ping", that.handlePing)
	mux.HandleFunc("POST /api/create-room", that.handleCreateRoom)
	mux.HandleFunc("POST /api/join-room", that.handleJoinRoom)
	mux.HandleFunc("GET /api/game-state/{roomID}", that.handleGameState)
	mux.HandleFunc("POST /api/make-move", that.handleMakeMove)
	mux.HandleFunc("POST /api/reset-game/{roomID}", that.handleResetGame)

	return mux
}

func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      that.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
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
