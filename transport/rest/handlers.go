package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/tictactoe-online/backend/internal/apperror"
)

type createRoomResponse struct {
	RoomID   string `json:"room_id"`
	PlayerID string `json:"player_id"`
	Message  string `json:"message"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (that *Server) handlePing(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("pong")); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
}

func (that *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	view, player, err := that.session.CreateRoom(r.Context())
	if errors.Is(err, apperror.ErrRoomIDExhausted) {
		that.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if err != nil {
		that.logger.Error("failed to create room", "error", err)
		that.writeError(w, http.StatusInternalServerError, "failed to create room")
		return
	}

	that.writeJSON(w, http.StatusOK, createRoomResponse{
		RoomID:   view.RoomID,
		PlayerID: player.ID,
		Message:  "Room created successfully",
	})
}

func (that *Server) handleJoinRoom(w http.ResponseWriter, r *http.Request) {
	roomID := r.URL.Query().Get("room_id")
	if roomID == "" {
		that.writeError(w, http.StatusBadRequest, "room_id is required")
		return
	}

	view, player, err := that.session.JoinRoom(r.Context(), roomID)

	switch {
	case errors.Is(err, apperror.ErrRoomNotFound):
		that.writeError(w, http.StatusNotFound, err.Error())
		return
	case errors.Is(err, apperror.ErrRoomFull):
		that.writeError(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		that.logger.Error("failed to join room", "roomID", roomID, "error", err)
		that.writeError(w, http.StatusInternalServerError, "failed to join room")
		return
	}

	that.writeJSON(w, http.StatusOK, createRoomResponse{
		RoomID:   view.RoomID,
		PlayerID: player.ID,
		Message:  "Joined room successfully",
	})
}

func (that *Server) handleGameState(w http.ResponseWriter, r *http.Request) {
	roomID := r.PathValue("roomID")

	view, err := that.session.GetState(r.Context(), roomID)
	if errors.Is(err, apperror.ErrRoomNotFound) {
		that.writeError(w, http.StatusNotFound, err.Error())
		return
	}

	if err != nil {
		that.logger.Error("failed to get game state", "roomID", roomID, "error", err)
		that.writeError(w, http.StatusInternalServerError, "failed to get game state")
		return
	}

	that.writeJSON(w, http.StatusOK, view)
}

func (that *Server) handleMakeMove(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	roomID := query.Get("room_id")
	playerID := query.Get("player_id")

	position, err := strconv.Atoi(query.Get("position"))
	if roomID == "" || playerID == "" || err != nil {
		that.writeError(w, http.StatusBadRequest, "room_id, player_id and position are required")
		return
	}

	view, err := that.session.SubmitMove(r.Context(), roomID, playerID, position)

	switch {
	case errors.Is(err, apperror.ErrRoomNotFound):
		that.writeError(w, http.StatusNotFound, err.Error())
		return
	case isRejection(err):
		that.writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		that.logger.Error("failed to make move", "roomID", roomID, "error", err)
		that.writeError(w, http.StatusInternalServerError, "failed to make move")
		return
	}

	that.writeJSON(w, http.StatusOK, view)
}

func (that *Server) handleResetGame(w http.ResponseWriter, r *http.Request) {
	roomID := r.PathValue("roomID")

	view, err := that.session.ResetGame(r.Context(), roomID)
	if errors.Is(err, apperror.ErrRoomNotFound) {
		that.writeError(w, http.StatusNotFound, err.Error())
		return
	}

	if err != nil {
		that.logger.Error("failed to reset game", "roomID", roomID, "error", err)
		that.writeError(w, http.StatusInternalServerError, "failed to reset game")
		return
	}

	that.writeJSON(w, http.StatusOK, view)
}

func isRejection(err error) bool {
	return errors.Is(err, apperror.ErrNotInRoom) ||
		errors.Is(err, apperror.ErrGameNotPlaying) ||
		errors.Is(err, apperror.ErrNotYourTurn) ||
		errors.Is(err, apperror.ErrCellOccupied) ||
		errors.Is(err, apperror.ErrInvalidCell)
}

func (that *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		that.logger.Error("failed to encode response", "error", err)
	}
}

func (that *Server) writeError(w http.ResponseWriter, status int, message string) {
	that.writeJSON(w, status, errorResponse{Error: message})
}
