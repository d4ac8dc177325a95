package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckmate(t *testing.T) {
	// Black king on a5, white queen on b4 protected by the king on c3.
	// Every escape is covered and capturing the queen would touch kings.
	b, err := ParseBoard("k..../.Q.../..K../...../.....")
	require.NoError(t, err)

	t.Log("Checkmate position:")
	t.Log(b)

	inCheck, err := b.InCheck(Black)
	require.NoError(t, err)
	assert.True(t, inCheck, "black should be in check")

	moves := b.LegalMoves(Black)
	for _, m := range moves {
		t.Log("  Move:", m)
	}
	assert.Empty(t, moves, "checkmated side should have no legal moves")
}

func TestNotCheckmate(t *testing.T) {
	// Same attack, but the queen is unprotected and can be captured.
	b, err := ParseBoard("k..../.Q.../...../...../....K")
	require.NoError(t, err)

	inCheck, err := b.InCheck(Black)
	require.NoError(t, err)
	assert.True(t, inCheck)

	moves := b.LegalMoves(Black)
	require.Len(t, moves, 1)
	assert.Equal(t, "k a5xb4", moves[0].String())
}

func TestStalemate(t *testing.T) {
	b, err := ParseBoard("k..../..Q../...../...../....K")
	require.NoError(t, err)

	inCheck, err := b.InCheck(Black)
	require.NoError(t, err)
	assert.False(t, inCheck)
	assert.False(t, b.HasLegalMoves(Black))
	assert.True(t, b.HasLegalMoves(White))
}

func TestInCheckPatterns(t *testing.T) {
	tests := []struct {
		name  string
		board string
		side  Color
		want  bool
	}{
		{"black pawn attacks white king", "....k/...../.p.../..K../.....", White, true},
		{"black pawn behind white king", "....k/...../...../..K../.p...", White, false},
		{"white pawn attacks black king", "...../..k../.P.../...../K....", Black, true},
		{"white pawn beside black king", "...../..kP./...../...../K....", Black, false},
		{"knight jump", "k..../...../.N.../...../....K", Black, true},
		{"rook on open file", "k..../...../...../...../R...K", Black, true},
		{"rook blocked", "k..../p..../...../...../R...K", Black, false},
		{"queen on diagonal", "k..../...../...../...Q./....K", Black, true},
		{"bishop blocked by own piece", "k..../.b.../...../...B./....K", Black, false},
		{"rook does not attack diagonally", "k..../...../..R../...../....K", Black, false},
		{"bishop does not attack orthogonally", "k.B../...../...../...../....K", Black, false},
		{"enemy king is not an attacker", "...../.k.../..K../...../.....", Black, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b := MustParseBoard(tc.board)
			got, err := b.InCheck(tc.side)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestInCheckMissingKing(t *testing.T) {
	b := MustParseBoard("...../...../..Q../...../....K")
	_, err := b.InCheck(Black)
	assert.ErrorIs(t, err, ErrMissingKing)
}

func TestCheckKings(t *testing.T) {
	assert.NoError(t, StartingBoard().CheckKings())

	noBlack := MustParseBoard("...../...../..Q../...../....K")
	assert.ErrorIs(t, noBlack.CheckKings(), ErrMissingKing)
	assert.ErrorIs(t, noBlack.Transposed().CheckKings(), ErrMissingKing)
}

func TestIllegalAfterMove(t *testing.T) {
	tests := []struct {
		name  string
		board string
		mover Color
		want  bool
	}{
		{"kings adjacent", "...../.k.../..K../...../.....", White, true},
		{"kings adjacent for black too", "...../.k.../..K../...../.....", Black, true},
		{"mover left in check", "k..../...../...../...../R...K", Black, true},
		{"opponent in check is fine", "k..../...../...../...../R...K", White, false},
		{"missing king", "k..../...../...../...../.....", Black, true},
		{"quiet position", StartEncoding, White, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b := MustParseBoard(tc.board)
			assert.Equal(t, tc.want, b.IllegalAfterMove(tc.mover))
		})
	}
}

func TestKingsNeverTouch(t *testing.T) {
	// The white king may not step next to the black king even though no
	// other piece attacks the square.
	b := MustParseBoard("k..../...../..K../...../.....")
	for _, m := range b.LegalMoves(White) {
		assert.False(t, Adjacent(m.To, Loc(0, 0)), "king moved next to enemy king: %s", m)
	}
	assert.Len(t, b.LegalMoves(White), 7)
}
