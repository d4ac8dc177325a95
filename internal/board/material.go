package board

// IsInsufficientMaterial returns true if the board holds only the kings, or the
// kings plus a single knight or bishop in total. Any pawn, rook or queen is
// sufficient material.
func (b Board) IsInsufficientMaterial() bool {
	minors := 0
	for _, p := range b.cells {
		pt := p.Type()
		switch {
		case pt == NoPieceType || pt == King:
			continue
		case pt.IsMinor():
			minors++
		default:
			return false
		}
	}
	return minors <= 1
}
