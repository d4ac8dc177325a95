package board

import "sort"

// MoveMap indexes moves by formatted start cell, then formatted end cell, so an
// interaction layer can look up the Move for a clicked destination.
type MoveMap map[string]map[string]Move

// NewMoveMap builds a MoveMap from a move list.
func NewMoveMap(moves []Move) MoveMap {
	mm := make(MoveMap)
	for _, m := range moves {
		from := m.From.String()
		if mm[from] == nil {
			mm[from] = make(map[string]Move)
		}
		mm[from][m.To.String()] = m
	}
	return mm
}

// MoveMap returns the legal moves of side indexed by start and end cell.
func (b Board) MoveMap(side Color) MoveMap {
	return NewMoveMap(b.LegalMoves(side))
}

// Lookup returns the move from one formatted cell to another.
func (mm MoveMap) Lookup(from, to string) (Move, bool) {
	m, ok := mm[from][to]
	return m, ok
}

// CanMoveFrom returns true if some legal move starts on the cell.
func (mm MoveMap) CanMoveFrom(from string) bool {
	return len(mm[from]) > 0
}

// Destinations returns the sorted end cells reachable from a start cell.
func (mm MoveMap) Destinations(from string) []string {
	ends := make([]string, 0, len(mm[from]))
	for to := range mm[from] {
		ends = append(ends, to)
	}
	sort.Strings(ends)
	return ends
}

// Origins returns the sorted start cells that have at least one move.
func (mm MoveMap) Origins() []string {
	starts := make([]string, 0, len(mm))
	for from := range mm {
		starts = append(starts, from)
	}
	sort.Strings(starts)
	return starts
}

// Len returns the total number of moves in the map.
func (mm MoveMap) Len() int {
	n := 0
	for _, ends := range mm {
		n += len(ends)
	}
	return n
}
