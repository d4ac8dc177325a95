// Package engine implements the 5x5 chess AI: static evaluation, terminal
// classification and the alpha-beta search.
package engine

import (
	"github.com/hailam/minichess/internal/board"
)

// Evaluation constants, in pawns.
const (
	PawnValue   = 1
	KnightValue = 3
	BishopValue = 3
	RookValue   = 5
	QueenValue  = 8
	KingValue   = 0

	// pawnAdvanceBonus is awarded per rank a pawn has moved toward promotion.
	pawnAdvanceBonus = 0.05
)

// Piece values array for quick lookup
var pieceValues = [7]float64{PawnValue, KnightValue, BishopValue, RookValue, QueenValue, KingValue, 0}

// Evaluate returns the static evaluation of a board.
// Positive scores favor white, negative favor black.
func Evaluate(b board.Board) float64 {
	score := 0.0
	for r := 0; r < board.Size; r++ {
		for c := 0; c < board.Size; c++ {
			p := b.At(board.Loc(r, c))
			if p == board.NoPiece {
				continue
			}

			v := pieceValues[p.Type()]
			if p.Type() == board.Pawn {
				v += pawnAdvanceBonus * float64(ranksAdvanced(p.Color(), r))
			}

			if p.Color() == board.White {
				score += v
			} else {
				score -= v
			}
		}
	}
	return score
}

// ranksAdvanced returns how far a pawn on row r has moved from its starting rank.
func ranksAdvanced(c board.Color, r int) int {
	if c == board.White {
		return board.Size - 2 - r
	}
	return r - 1
}
