// Package board implements the 5x5 chess board model, move generation and
// check detection.
package board

import "fmt"

// Size is the side length of the board.
const Size = 5

// Location is a cell on the board.
// Row 0 is white's far edge (black's back rank), column 0 is the a-file.
type Location struct {
	Row int
	Col int
}

// NoLocation is returned when a lookup fails.
var NoLocation = Location{Row: -1, Col: -1}

// Loc creates a location from row and column (0-indexed).
func Loc(row, col int) Location {
	return Location{Row: row, Col: col}
}

// InBounds returns true if the location is on the board.
func (l Location) InBounds() bool {
	return l.Row >= 0 && l.Row < Size && l.Col >= 0 && l.Col < Size
}

// Offset returns the location shifted by dr rows and dc columns.
// The result may be off the board.
func (l Location) Offset(dr, dc int) Location {
	return Location{Row: l.Row + dr, Col: l.Col + dc}
}

// index returns the row-major cell index.
func (l Location) index() int {
	return l.Row*Size + l.Col
}

// String returns the algebraic name of the cell (e.g., "a5" for row 0, column 0).
func (l Location) String() string {
	if !l.InBounds() {
		return "-"
	}
	return fmt.Sprintf("%c%d", 'a'+l.Col, Size-l.Row)
}

// ParseLocation parses algebraic notation (e.g., "c3") into a Location.
func ParseLocation(s string) (Location, error) {
	if len(s) != 2 {
		return NoLocation, fmt.Errorf("%w: %q", ErrInvalidLocation, s)
	}

	col := int(s[0]) - 'a'
	rank := int(s[1]) - '0'
	loc := Location{Row: Size - rank, Col: col}

	if rank < 1 || !loc.InBounds() {
		return NoLocation, fmt.Errorf("%w: %q", ErrInvalidLocation, s)
	}
	return loc, nil
}

// Adjacent returns true if the two locations touch, including diagonally.
func Adjacent(a, b Location) bool {
	return abs(a.Row-b.Row) <= 1 && abs(a.Col-b.Col) <= 1
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
