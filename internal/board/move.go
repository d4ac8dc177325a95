package board

import (
	"fmt"
	"strings"
)

// Move is a single piece movement.
// Promotion is implicit: a pawn reaching the far rank becomes a queen when the
// move is applied.
type Move struct {
	From    Location
	To      Location
	Piece   Piece
	Capture bool
}

// NoMove represents an invalid or null move.
var NoMove = Move{From: NoLocation, To: NoLocation}

// IsPromotion returns true if applying the move promotes a pawn.
func (m Move) IsPromotion() bool {
	if m.Piece.Type() != Pawn {
		return false
	}
	return m.To.Row == promotionRow(m.Piece.Color())
}

// String formats the move as piece letter, start, "x" or "->", end (e.g. "P a2->a3").
func (m Move) String() string {
	if m == NoMove {
		return "none"
	}
	sep := "->"
	if m.Capture {
		sep = "x"
	}
	return m.Piece.String() + " " + m.From.String() + sep + m.To.String()
}

// Coordinates returns the move as start and end cells joined, e.g. "a2a3".
func (m Move) Coordinates() string {
	return m.From.String() + m.To.String()
}

// Apply returns the board after the move. The receiver is not modified.
func (b Board) Apply(m Move) Board {
	piece := m.Piece
	if m.IsPromotion() {
		piece = NewPiece(Queen, piece.Color())
	}
	b.cells[m.From.index()] = NoPiece
	b.cells[m.To.index()] = piece
	return b
}

// ParseMove resolves coordinate text ("a2a3", "a2-a3" or "a2xb3") to a legal
// move for the given side.
func (b Board) ParseMove(side Color, s string) (Move, error) {
	s = strings.NewReplacer("-", "", "x", "", ">", "", " ", "").Replace(strings.ToLower(s))
	if len(s) != 4 {
		return NoMove, fmt.Errorf("%w: %q", ErrNoSuchMove, s)
	}

	from, err := ParseLocation(s[:2])
	if err != nil {
		return NoMove, err
	}
	to, err := ParseLocation(s[2:])
	if err != nil {
		return NoMove, err
	}

	for _, m := range b.LegalMoves(side) {
		if m.From == from && m.To == to {
			return m, nil
		}
	}
	return NoMove, fmt.Errorf("%w: %s%s", ErrNoSuchMove, from, to)
}

// promotionRow returns the far rank for a color's pawns.
func promotionRow(c Color) int {
	if c == White {
		return 0
	}
	return Size - 1
}

// pawnDirection returns the row step of a color's pawns.
func pawnDirection(c Color) int {
	if c == White {
		return -1
	}
	return 1
}
