package rest

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tictactoe-online/backend/internal/apperror"
	"github.com/tictactoe-online/backend/internal/entity"
)

type mockSession struct {
	mock.Mock
}

func (m *mockSession) CreateRoom(ctx context.Context) (*entity.RoomView, *entity.Player, error) {
	args := m.Called(ctx)
	view, _ := args.Get(0).(*entity.RoomView)
	player, _ := args.Get(1).(*entity.Player)
	return view, player, args.Error(2)
}

func (m *mockSession) JoinRoom(ctx context.Context, roomID string) (*entity.RoomView, *entity.Player, error) {
	args := m.Called(ctx, roomID)
	view, _ := args.Get(0).(*entity.RoomView)
	player, _ := args.Get(1).(*entity.Player)
	return view, player, args.Error(2)
}

func (m *mockSession) GetState(ctx context.Context, roomID string) (*entity.RoomView, error) {
	args := m.Called(ctx, roomID)
	view, _ := args.Get(0).(*entity.RoomView)
	return view, args.Error(1)
}

func (m *mockSession) SubmitMove(ctx context.Context, roomID, playerID string, position int) (*entity.RoomView, error) {
	args := m.Called(ctx, roomID, playerID, position)
	view, _ := args.Get(0).(*entity.RoomView)
	return view, args.Error(1)
}

func (m *mockSession) ResetGame(ctx context.Context, roomID string) (*entity.RoomView, error) {
	args := m.Called(ctx, roomID)
	view, _ := args.Get(0).(*entity.RoomView)
	return view, args.Error(1)
}

func newTestServer(t *testing.T) (*Server, *mockSession) {
	t.Helper()

	session := &mockSession{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return New(logger, session), session
}

func testView(roomID string) *entity.RoomView {
	return &entity.RoomView{
		RoomID:      roomID,
		CurrentTurn: entity.SymbolX,
		Status:      entity.StatusWaiting,
		Players: []entity.PlayerView{
			{PlayerID: "p1", PlayerSymbol: entity.SymbolX},
		},
	}
}

func TestHandlePing(t *testing.T) {
	server, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	rec := httptest.NewRecorder()

	server.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pong", rec.Body.String())
}

func TestHandleCreateRoom(t *testing.T) {
	t.Run("Returns room and player ids", func(t *testing.T) {
		server, session := newTestServer(t)

		session.On("CreateRoom", mock.Anything).
			Return(testView("ROOM1"), &entity.Player{ID: "p1", Symbol: entity.SymbolX}, nil).
			Once()

		req := httptest.NewRequest(http.MethodPost, "/api/create-room", nil)
		rec := httptest.NewRecorder()

		server.Handler().ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp createRoomResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "ROOM1", resp.RoomID)
		assert.Equal(t, "p1", resp.PlayerID)
		session.AssertExpectations(t)
	})

	t.Run("Exhausted id generation surfaces as a server error", func(t *testing.T) {
		server, session := newTestServer(t)

		session.On("CreateRoom", mock.Anything).
			Return(nil, nil, apperror.ErrRoomIDExhausted).
			Once()

		req := httptest.NewRequest(http.MethodPost, "/api/create-room", nil)
		rec := httptest.NewRecorder()

		server.Handler().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestHandleJoinRoom(t *testing.T) {
	t.Run("Joins an existing room", func(t *testing.T) {
		server, session := newTestServer(t)

		session.On("JoinRoom", mock.Anything, "ROOM1").
			Return(testView("ROOM1"), &entity.Player{ID: "p2", Symbol: entity.SymbolO}, nil).
			Once()

		req := httptest.NewRequest(http.MethodPost, "/api/join-room?room_id=ROOM1", nil)
		rec := httptest.NewRecorder()

		server.Handler().ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp createRoomResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "p2", resp.PlayerID)
	})

	t.Run("Missing room_id is a bad request", func(t *testing.T) {
		server, _ := newTestServer(t)

		req := httptest.NewRequest(http.MethodPost, "/api/join-room", nil)
		rec := httptest.NewRecorder()

		server.Handler().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Absent room maps to 404", func(t *testing.T) {
		server, session := newTestServer(t)

		session.On("JoinRoom", mock.Anything, "NOPE").
			Return(nil, nil, apperror.ErrRoomNotFound).
			Once()

		req := httptest.NewRequest(http.MethodPost, "/api/join-room?room_id=NOPE", nil)
		rec := httptest.NewRecorder()

		server.Handler().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("Full room maps to 409", func(t *testing.T) {
		server, session := newTestServer(t)

		session.On("JoinRoom", mock.Anything, "ROOM1").
			Return(nil, nil, apperror.ErrRoomFull).
			Once()

		req := httptest.NewRequest(http.MethodPost, "/api/join-room?room_id=ROOM1", nil)
		rec := httptest.NewRecorder()

		server.Handler().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestHandleGameState(t *testing.T) {
	t.Run("Returns the room snapshot", func(t *testing.T) {
		server, session := newTestServer(t)

		session.On("GetState", mock.Anything, "ROOM1").
			Return(testView("ROOM1"), nil).
			Once()

		req := httptest.NewRequest(http.MethodGet, "/api/game-state/ROOM1", nil)
		rec := httptest.NewRecorder()

		server.Handler().ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var view entity.RoomView
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
		assert.Equal(t, "ROOM1", view.RoomID)
		assert.Equal(t, entity.StatusWaiting, view.Status)
	})

	t.Run("Absent room maps to 404", func(t *testing.T) {
		server, session := newTestServer(t)

		session.On("GetState", mock.Anything, "NOPE").
			Return(nil, apperror.ErrRoomNotFound).
			Once()

		req := httptest.NewRequest(http.MethodGet, "/api/game-state/NOPE", nil)
		rec := httptest.NewRecorder()

		server.Handler().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHandleMakeMove(t *testing.T) {
	t.Run("Applies a move", func(t *testing.T) {
		server, session := newTestServer(t)

		view := testView("ROOM1")
		view.Status = entity.StatusPlaying
		view.LastMove = &entity.LastMove{Position: 4, Player: entity.SymbolX}

		session.On("SubmitMove", mock.Anything, "ROOM1", "p1", 4).
			Return(view, nil).
			Once()

		req := httptest.NewRequest(http.MethodPost, "/api/make-move?room_id=ROOM1&player_id=p1&position=4", nil)
		rec := httptest.NewRecorder()

		server.Handler().ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var got entity.RoomView
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		require.NotNil(t, got.LastMove)
		assert.Equal(t, 4, got.LastMove.Position)
	})

	t.Run("Missing parameters are a bad request", func(t *testing.T) {
		server, _ := newTestServer(t)

		req := httptest.NewRequest(http.MethodPost, "/api/make-move?room_id=ROOM1", nil)
		rec := httptest.NewRecorder()

		server.Handler().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Rejected move maps to 400", func(t *testing.T) {
		server, session := newTestServer(t)

		session.On("SubmitMove", mock.Anything, "ROOM1", "p2", 4).
			Return(nil, apperror.ErrNotYourTurn).
			Once()

		req := httptest.NewRequest(http.MethodPost, "/api/make-move?room_id=ROOM1&player_id=p2&position=4", nil)
		rec := httptest.NewRecorder()

		server.Handler().ServeHTTP(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)

		var resp errorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, apperror.ErrNotYourTurn.Error(), resp.Error)
	})

	t.Run("Absent room maps to 404", func(t *testing.T) {
		server, session := newTestServer(t)

		session.On("SubmitMove", mock.Anything, "NOPE", "p1", 0).
			Return(nil, apperror.ErrRoomNotFound).
			Once()

		req := httptest.NewRequest(http.MethodPost, "/api/make-move?room_id=NOPE&player_id=p1&position=0", nil)
		rec := httptest.NewRecorder()

		server.Handler().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHandleResetGame(t *testing.T) {
	t.Run("Resets the game", func(t *testing.T) {
		server, session := newTestServer(t)

		view := testView("ROOM1")
		view.Status = entity.StatusPlaying

		session.On("ResetGame", mock.Anything, "ROOM1").
			Return(view, nil).
			Once()

		req := httptest.NewRequest(http.MethodPost, "/api/reset-game/ROOM1", nil)
		rec := httptest.NewRecorder()

		server.Handler().ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var got entity.RoomView
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, entity.StatusPlaying, got.Status)
	})

	t.Run("Absent room maps to 404", func(t *testing.T) {
		server, session := newTestServer(t)

		session.On("ResetGame", mock.Anything, "NOPE").
			Return(nil, apperror.ErrRoomNotFound).
			Once()

		req := httptest.NewRequest(http.MethodPost, "/api/reset-game/NOPE", nil)
		rec := httptest.NewRecorder()

		server.Handler().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
