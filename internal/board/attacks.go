package board

import "fmt"

// Offset tables. Order matters: move generation emits moves in this order.
var (
	// knightOffsets follow the order up-right, up-left, down-right, down-left for the
	// two-row jumps, then the two-column jumps.
	knightOffsets = [8][2]int{
		{-2, 1}, {-2, -1}, {2, 1}, {2, -1},
		{-1, 2}, {-1, -2}, {1, 2}, {1, -2},
	}

	kingOffsets = [8][2]int{
		{-1, -1}, {-1, 0}, {-1, 1},
		{0, -1}, {0, 1},
		{1, -1}, {1, 0}, {1, 1},
	}

	// rookDirections: right, left, up, down.
	rookDirections = [4][2]int{{0, 1}, {0, -1}, {-1, 0}, {1, 0}}

	// bishopDirections: down-right, down-left, up-right, up-left.
	bishopDirections = [4][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
)

// InCheck returns true if the king of color c is attacked.
// It returns ErrMissingKing if c has no king on the board.
func (b Board) InCheck(c Color) (bool, error) {
	king, ok := b.KingLocation(c)
	if !ok {
		return false, fmt.Errorf("%w: %s on %s", ErrMissingKing, c, b.Encode())
	}
	return b.KingAttacked(c, king), nil
}

// CheckKings returns ErrMissingKing unless both kings are on the board.
func (b Board) CheckKings() error {
	for _, c := range [2]Color{White, Black} {
		if _, ok := b.KingLocation(c); !ok {
			return fmt.Errorf("%w: %s on %s", ErrMissingKing, c, b.Encode())
		}
	}
	return nil
}

// KingAttacked returns true if the king of color c standing on king is attacked
// by an enemy pawn, knight, rook, bishop or queen. Enemy king proximity is not
// considered here; see IllegalAfterMove.
func (b Board) KingAttacked(c Color, king Location) bool {
	them := c.Other()

	// Pawns attack diagonally forward, so an enemy pawn sits one row toward
	// the enemy's side of the board.
	enemyPawn := NewPiece(Pawn, them)
	dr := pawnDirection(c)
	if b.At(king.Offset(dr, -1)) == enemyPawn || b.At(king.Offset(dr, 1)) == enemyPawn {
		return true
	}

	enemyKnight := NewPiece(Knight, them)
	for _, o := range knightOffsets {
		if b.At(king.Offset(o[0], o[1])) == enemyKnight {
			return true
		}
	}

	enemyQueen := NewPiece(Queen, them)

	enemyRook := NewPiece(Rook, them)
	for _, d := range rookDirections {
		p := b.firstPiece(king, d)
		if p == enemyRook || p == enemyQueen {
			return true
		}
	}

	enemyBishop := NewPiece(Bishop, them)
	for _, d := range bishopDirections {
		p := b.firstPiece(king, d)
		if p == enemyBishop || p == enemyQueen {
			return true
		}
	}

	return false
}

// firstPiece scans from l along direction d and returns the first piece met,
// or NoPiece if the ray reaches the edge.
func (b Board) firstPiece(l Location, d [2]int) Piece {
	for sq := l.Offset(d[0], d[1]); sq.InBounds(); sq = sq.Offset(d[0], d[1]) {
		if p := b.At(sq); p != NoPiece {
			return p
		}
	}
	return NoPiece
}

// IllegalAfterMove reports whether the board cannot result from a legal move by
// mover: a king is missing, the kings touch, or the mover's own king is in check.
func (b Board) IllegalAfterMove(mover Color) bool {
	king, ok := b.KingLocation(mover)
	if !ok {
		return true
	}
	enemyKing, ok := b.KingLocation(mover.Other())
	if !ok {
		return true
	}

	if Adjacent(king, enemyKing) {
		return true
	}

	return b.KingAttacked(mover, king)
}
