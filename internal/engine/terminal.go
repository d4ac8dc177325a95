package engine

import (
	"errors"
	"fmt"

	"github.com/hailam/minichess/internal/board"
)

// Game-over values. They are far beyond any reachable static evaluation so a
// forced win is never confused with a positional advantage.
const (
	WinWhiteValue = 999999
	WinBlackValue = -999999
)

// ErrInvalidTurn is returned when a non-playing turn marker is passed where a
// side to move is required.
var ErrInvalidTurn = errors.New("engine: turn is not a side to move")

// Outcome is the result of classifying a position.
type Outcome struct {
	Over  bool
	Value float64
	// Next is the game-over marker when Over is set, otherwise the opposite
	// side to move.
	Next board.Turn
}

// Classify decides whether the game has ended for the side to move.
// moves may carry the precomputed legal moves of the side to move; when nil
// they are generated. Rules apply in order: no legal moves (checkmate or
// stalemate), third occurrence of the board, insufficient material.
func Classify(b board.Board, turn board.Turn, tally *board.Tally, moves []board.Move) (Outcome, error) {
	side, ok := turn.Side()
	if !ok {
		return Outcome{}, fmt.Errorf("%w: %s", ErrInvalidTurn, turn)
	}

	// Without both kings every move looks illegal and the board would pass
	// for a stalemate.
	if err := b.CheckKings(); err != nil {
		return Outcome{}, err
	}

	if moves == nil {
		moves = b.LegalMoves(side)
	}

	if len(moves) == 0 {
		inCheck, err := b.InCheck(side)
		if err != nil {
			return Outcome{}, err
		}
		if !inCheck {
			return Outcome{Over: true, Value: 0, Next: board.DrawStalemate}, nil
		}
		if side == board.White {
			return Outcome{Over: true, Value: WinBlackValue, Next: board.BlackWins}, nil
		}
		return Outcome{Over: true, Value: WinWhiteValue, Next: board.WhiteWins}, nil
	}

	if tally.Repeated(b) {
		return Outcome{Over: true, Value: 0, Next: board.DrawRepetition}, nil
	}

	if b.IsInsufficientMaterial() {
		return Outcome{Over: true, Value: 0, Next: board.DrawMaterial}, nil
	}

	return Outcome{Next: turn.Next()}, nil
}
