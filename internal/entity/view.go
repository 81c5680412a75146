package entity

// PlayerView is the per-player slice of a RoomView.
type PlayerView struct {
	PlayerID     string `json:"player_id"`
	PlayerSymbol string `json:"player_symbol"`
}

// LastMove describes the move that produced a RoomView.
type LastMove struct {
	Position int    `json:"position"`
	Player   string `json:"player"`
}

// RoomView is the serializable snapshot of a room returned to clients.
// Payloads are full-state snapshots, so clients tolerate re-delivery.
type RoomView struct {
	RoomID       string       `json:"room_id"`
	Board        [9]string    `json:"board"`
	CurrentTurn  string       `json:"current_player"`
	Status       string       `json:"game_status"`
	Players      []PlayerView `json:"players"`
	LastMove     *LastMove    `json:"last_move,omitempty"`
	WinningCombo *[3]int      `json:"winning_combo,omitempty"`
}
