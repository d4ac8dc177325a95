package board

import (
	"fmt"
	"strings"
)

// StartEncoding is the encoded starting position.
// Back rank Rook, Bishop, King, Queen, Knight with a full pawn rank in front.
const StartEncoding = "rbkqn/ppppp/...../PPPPP/RBKQN"

// Board is an immutable snapshot of cell contents.
// Boards are plain values: copying one yields an independent snapshot, and two
// boards compare equal with == exactly when every cell matches, so a Board can
// be used directly as a map key.
type Board struct {
	cells [Size * Size]Piece
}

// StartingBoard returns the starting position.
func StartingBoard() Board {
	b, err := ParseBoard(StartEncoding)
	if err != nil {
		panic(err)
	}
	return b
}

// ParseBoard decodes a board from rows of piece letters.
// Rows run from row 0 (white's far edge) downwards and are separated by '/' or '|'.
// '.' marks an empty cell.
func ParseBoard(s string) (Board, error) {
	var b Board

	rows := strings.FieldsFunc(strings.TrimSpace(s), func(r rune) bool {
		return r == '/' || r == '|' || r == '\n'
	})
	if len(rows) != Size {
		return b, fmt.Errorf("%w: need %d rows, got %d", ErrInvalidBoard, Size, len(rows))
	}

	for r, row := range rows {
		row = strings.TrimSpace(row)
		if len(row) != Size {
			return b, fmt.Errorf("%w: row %d has %d cells", ErrInvalidBoard, r, len(row))
		}
		for c := 0; c < Size; c++ {
			p, ok := PieceFromChar(row[c])
			if !ok {
				return b, fmt.Errorf("%w: unknown piece %q", ErrInvalidBoard, row[c])
			}
			b.cells[Loc(r, c).index()] = p
		}
	}

	return b, nil
}

// MustParseBoard is like ParseBoard but panics on error.
func MustParseBoard(s string) Board {
	b, err := ParseBoard(s)
	if err != nil {
		panic(err)
	}
	return b
}

// At returns the piece at the location, or NoPiece if the cell is empty or off the board.
func (b Board) At(l Location) Piece {
	if !l.InBounds() {
		return NoPiece
	}
	return b.cells[l.index()]
}

// IsEmpty returns true if the location is on the board and holds no piece.
func (b Board) IsEmpty(l Location) bool {
	return l.InBounds() && b.cells[l.index()] == NoPiece
}

// With returns a copy of the board with the cell set to p.
func (b Board) With(l Location, p Piece) Board {
	b.cells[l.index()] = p
	return b
}

// KingLocation finds the king of the given color.
func (b Board) KingLocation(c Color) (Location, bool) {
	king := NewPiece(King, c)
	for i, p := range b.cells {
		if p == king {
			return Loc(i/Size, i%Size), true
		}
	}
	return NoLocation, false
}

// Count returns how many pieces of the given kind and color are on the board.
func (b Board) Count(p Piece) int {
	n := 0
	for _, cell := range b.cells {
		if cell == p {
			n++
		}
	}
	return n
}

// Encode returns the row-major encoding of the board, e.g. "rbkqn/ppppp/...../PPPPP/RBKQN".
// Equal boards encode identically and different boards encode differently.
func (b Board) Encode() string {
	var sb strings.Builder
	sb.Grow(Size*Size + Size - 1)
	for r := 0; r < Size; r++ {
		if r > 0 {
			sb.WriteByte('/')
		}
		for c := 0; c < Size; c++ {
			sb.WriteByte(b.cells[Loc(r, c).index()].Char())
		}
	}
	return sb.String()
}

// Transposed returns the board seen from the other side: rows mirrored and
// colors swapped.
func (b Board) Transposed() Board {
	var t Board
	for i, p := range b.cells {
		if p == NoPiece {
			continue
		}
		l := Loc(Size-1-i/Size, i%Size)
		t.cells[l.index()] = NewPiece(p.Type(), p.Color().Other())
	}
	return t
}

// String returns a visual representation of the board.
func (b Board) String() string {
	var sb strings.Builder
	sb.WriteString("\n")
	for r := 0; r < Size; r++ {
		fmt.Fprintf(&sb, "%d  ", Size-r)
		for c := 0; c < Size; c++ {
			sb.WriteString(b.cells[Loc(r, c).index()].String())
			sb.WriteByte(' ')
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n   ")
	for c := 0; c < Size; c++ {
		fmt.Fprintf(&sb, "%c ", 'a'+c)
	}
	sb.WriteString("\n")
	return sb.String()
}
