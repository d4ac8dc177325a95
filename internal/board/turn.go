package board

// Turn records whose move it is, or how the game ended.
type Turn uint8

const (
	NotStarted Turn = iota
	WhiteToMove
	BlackToMove
	WhiteWins
	BlackWins
	DrawRepetition
	DrawStalemate
	DrawMaterial
)

// TurnOf returns the playing turn for a color.
func TurnOf(c Color) Turn {
	if c == White {
		return WhiteToMove
	}
	return BlackToMove
}

// Playing returns true if a side is to move.
func (t Turn) Playing() bool {
	return t == WhiteToMove || t == BlackToMove
}

// Side returns the color to move. ok is false for non-playing turns.
func (t Turn) Side() (c Color, ok bool) {
	switch t {
	case WhiteToMove:
		return White, true
	case BlackToMove:
		return Black, true
	default:
		return NoColor, false
	}
}

// Next returns the turn after the side to move has played.
// Non-playing turns are returned unchanged.
func (t Turn) Next() Turn {
	switch t {
	case WhiteToMove:
		return BlackToMove
	case BlackToMove:
		return WhiteToMove
	default:
		return t
	}
}

// IsDraw returns true for the drawn outcomes.
func (t Turn) IsDraw() bool {
	return t == DrawRepetition || t == DrawStalemate || t == DrawMaterial
}

// Winner returns the winning color, or NoColor if there is none.
func (t Turn) Winner() Color {
	switch t {
	case WhiteWins:
		return White
	case BlackWins:
		return Black
	default:
		return NoColor
	}
}

// String returns the turn name.
func (t Turn) String() string {
	switch t {
	case NotStarted:
		return "NotStarted"
	case WhiteToMove:
		return "WhiteToMove"
	case BlackToMove:
		return "BlackToMove"
	case WhiteWins:
		return "WhiteWins"
	case BlackWins:
		return "BlackWins"
	case DrawRepetition:
		return "DrawRepetition"
	case DrawStalemate:
		return "DrawStalemate"
	case DrawMaterial:
		return "DrawMaterial"
	default:
		return "Unknown"
	}
}
