package board

// LegalMoves generates all legal moves for the side to move.
// Moves are grouped by origin cell in row-major order; within a cell they keep
// the fixed per-piece generation order.
func (b Board) LegalMoves(side Color) []Move {
	if !side.Valid() {
		return nil
	}

	var moves []Move
	for i, p := range b.cells {
		if p == NoPiece || p.Color() != side {
			continue
		}
		start := len(moves)
		moves = b.appendPseudoLegal(moves, p, Loc(i/Size, i%Size))
		moves = b.filterLegal(moves, start, side)
	}
	return moves
}

// PseudoLegalMoves generates moves that obey piece movement shape, ignoring
// whether they leave the mover's own king exposed.
func (b Board) PseudoLegalMoves(side Color) []Move {
	if !side.Valid() {
		return nil
	}

	var moves []Move
	for i, p := range b.cells {
		if p == NoPiece || p.Color() != side {
			continue
		}
		moves = b.appendPseudoLegal(moves, p, Loc(i/Size, i%Size))
	}
	return moves
}

// HasLegalMoves returns true if the side has at least one legal move.
func (b Board) HasLegalMoves(side Color) bool {
	return len(b.LegalMoves(side)) > 0
}

// filterLegal drops moves from ml[start:] whose resulting board is illegal for
// the mover. It filters in place and returns the shortened slice.
func (b Board) filterLegal(ml []Move, start int, side Color) []Move {
	n := start
	for _, m := range ml[start:] {
		if b.Apply(m).IllegalAfterMove(side) {
			continue
		}
		ml[n] = m
		n++
	}
	return ml[:n]
}

// appendPseudoLegal appends the pseudo-legal moves of piece p standing on from.
func (b Board) appendPseudoLegal(ml []Move, p Piece, from Location) []Move {
	switch p.Type() {
	case Pawn:
		dr := pawnDirection(p.Color())
		ml = b.appendQuiet(ml, p, from, from.Offset(dr, 0))
		ml = b.appendCapture(ml, p, from, from.Offset(dr, -1))
		ml = b.appendCapture(ml, p, from, from.Offset(dr, 1))

	case Knight:
		for _, o := range knightOffsets {
			ml, _ = b.appendStep(ml, p, from, from.Offset(o[0], o[1]))
		}

	case King:
		for _, o := range kingOffsets {
			ml, _ = b.appendStep(ml, p, from, from.Offset(o[0], o[1]))
		}

	case Rook:
		ml = b.appendSlides(ml, p, from, rookDirections[:])

	case Bishop:
		ml = b.appendSlides(ml, p, from, bishopDirections[:])

	case Queen:
		ml = b.appendSlides(ml, p, from, rookDirections[:])
		ml = b.appendSlides(ml, p, from, bishopDirections[:])
	}
	return ml
}

// appendSlides walks each direction until the edge, an own piece, or an enemy
// piece (which is captured).
func (b Board) appendSlides(ml []Move, p Piece, from Location, dirs [][2]int) []Move {
	for _, d := range dirs {
		to := from.Offset(d[0], d[1])
		for {
			var open bool
			ml, open = b.appendStep(ml, p, from, to)
			if !open {
				break
			}
			to = to.Offset(d[0], d[1])
		}
	}
	return ml
}

// appendStep adds a quiet move or a capture to to. It reports whether to was an
// empty cell, i.e. whether a sliding piece may continue past it.
func (b Board) appendStep(ml []Move, p Piece, from, to Location) ([]Move, bool) {
	if !to.InBounds() {
		return ml, false
	}
	target := b.At(to)
	if target == NoPiece {
		return append(ml, Move{From: from, To: to, Piece: p}), true
	}
	if target.Color() != p.Color() {
		ml = append(ml, Move{From: from, To: to, Piece: p, Capture: true})
	}
	return ml, false
}

// appendQuiet adds a move to an empty cell only (pawn push).
func (b Board) appendQuiet(ml []Move, p Piece, from, to Location) []Move {
	if b.IsEmpty(to) {
		ml = append(ml, Move{From: from, To: to, Piece: p})
	}
	return ml
}

// appendCapture adds a capture of an enemy piece only (pawn capture).
func (b Board) appendCapture(ml []Move, p Piece, from, to Location) []Move {
	target := b.At(to)
	if target != NoPiece && target.Color() != p.Color() {
		ml = append(ml, Move{From: from, To: to, Piece: p, Capture: true})
	}
	return ml
}
