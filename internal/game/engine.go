// Package game holds the pure rules engine. It never touches storage or
// the network; the session manager owns all state transitions.
package game

import (
	"fmt"

	"github.com/tictactoe-online/backend/internal/apperror"
	"github.com/tictactoe-online/backend/internal/entity"
)

// Outcome is the result of evaluating a board.
type Outcome struct {
	Status       string
	WinningCombo *[3]int
}

// ApplyMove places symbol at position on a copy of the board.
// It rejects out-of-range positions and occupied cells.
func ApplyMove(board [9]string, position int, symbol string) ([9]string, error) {
	if position < 0 || position >= len(board) {
		return board, fmt.Errorf("%w: %d", apperror.ErrInvalidCell, position)
	}

	if board[position] != entity.EmptyCell {
		return board, apperror.ErrCellOccupied
	}

	board[position] = symbol

	return board, nil
}

// Evaluate classifies a board as playing, won or draw. The win check runs
// before the draw check: a full board with a winning triple is won.
func Evaluate(board [9]string) Outcome {
	for _, combo := range entity.WinCombos {
		a, b, c := board[combo[0]], board[combo[1]], board[combo[2]]
		if a != entity.EmptyCell && a == b && b == c {
			winning := combo
			return Outcome{Status: entity.StatusWon, WinningCombo: &winning}
		}
	}

	for _, cell := range board {
		if cell == entity.EmptyCell {
			return Outcome{Status: entity.StatusPlaying}
		}
	}

	return Outcome{Status: entity.StatusDraw}
}

// NextTurn alternates the turn while the game is still playing.
// Once the game is won or drawn the turn is frozen.
func NextTurn(current string, outcome Outcome) string {
	if outcome.Status != entity.StatusPlaying {
		return current
	}

	return entity.OtherSymbol(current)
}
