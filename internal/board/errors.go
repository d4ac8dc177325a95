package board

import "errors"

var (
	// ErrMissingKing means a board lacks the king of the queried color.
	// Legal play can never produce such a board, so callers treat it as a defect.
	ErrMissingKing = errors.New("board: missing king")

	// ErrInvalidLocation is returned for unparsable cell names.
	ErrInvalidLocation = errors.New("board: invalid location")

	// ErrInvalidBoard is returned for unparsable board encodings.
	ErrInvalidBoard = errors.New("board: invalid board")

	// ErrNoSuchMove is returned when text does not name a legal move.
	ErrNoSuchMove = errors.New("board: no such legal move")
)
