package entity

import "time"

const (
	StatusWaiting = "waiting"
	StatusPlaying = "playing"
	StatusWon     = "won"
	StatusDraw    = "draw"

	SymbolX = "X"
	SymbolO = "O"

	EmptyCell = ""

	MaxPlayers = 2
)

// WinCombos - the 8 winning triples: 3 rows, 3 columns, 2 diagonals.
var WinCombos = [8][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// Room is one game session. Its status moves through a fixed set of
// transitions, all of them driven by the session manager:
//
//	waiting  --second player joins--> playing
//	playing  --winning move---------> won
//	playing  --board full, no win---> draw
//	won|draw --reset----------------> playing
//	playing|won|draw --one of two players leaves--> waiting
//	any      --last player leaves---> deleted
type Room struct {
	ID        string    `json:"id"`
	Board     [9]string `json:"board"`
	Turn      string    `json:"current_player"`
	Status    string    `json:"game_status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewRoom(id string) *Room {
	now := time.Now().UTC()

	return &Room{
		ID:        id,
		Turn:      SymbolX,
		Status:    StatusWaiting,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (that *Room) IsWaiting() bool {
	return that.Status == StatusWaiting
}

func (that *Room) IsPlaying() bool {
	return that.Status == StatusPlaying
}

// IsFinished reports whether the game reached a terminal outcome.
func (that *Room) IsFinished() bool {
	return that.Status == StatusWon || that.Status == StatusDraw
}

// ResetBoard clears the board and hands the turn back to X.
func (that *Room) ResetBoard() {
	that.Board = [9]string{}
	that.Turn = SymbolX
	that.Status = StatusPlaying
}

// OtherSymbol returns the opposing player symbol.
func OtherSymbol(symbol string) string {
	if symbol == SymbolX {
		return SymbolO
	}

	return SymbolX
}
