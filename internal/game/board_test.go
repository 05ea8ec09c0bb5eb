package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"elemental_chess/internal/effects"
)

func TestBoardVerifyDetectsSplitBrain(t *testing.T) {
	b := NewBoard(nil)
	pc := &Piece{ID: 1, Type: Knight, Color: White}
	require.NoError(t, b.PlacePiece(pc, sq("b1")))
	require.NoError(t, b.Verify())

	pc.Square = sq("c3")
	require.Error(t, b.Verify())

	pc.Square = sq("b1")
	require.NoError(t, b.MovePiece(sq("b1"), sq("c3")))
	require.NoError(t, b.Verify())
	assert.Equal(t, sq("c3"), pc.Square)
}

func TestPlaceOnOccupiedSquare(t *testing.T) {
	b := NewBoard(nil)
	require.NoError(t, b.PlacePiece(&Piece{ID: 1, Type: Rook, Color: White}, sq("a1")))
	err := b.PlacePiece(&Piece{ID: 2, Type: Rook, Color: Black}, sq("a1"))
	require.ErrorIs(t, err, ErrSquareOccupied)
}

func TestSwapPiecesKeepsOccupancy(t *testing.T) {
	b := NewBoard(nil)
	n := &Piece{ID: 1, Type: Knight, Color: White}
	r := &Piece{ID: 2, Type: Rook, Color: Black}
	require.NoError(t, b.PlacePiece(n, sq("b1")))
	require.NoError(t, b.PlacePiece(r, sq("h8")))

	require.NoError(t, b.SwapPieces(sq("b1"), sq("h8")))
	assert.Equal(t, n, b.PieceAt(sq("h8")))
	assert.Equal(t, r, b.PieceAt(sq("b1")))
	assert.True(t, b.Occupancy(White).Has(sq("h8")))
	assert.True(t, b.Occupancy(Black).Has(sq("b1")))
	require.NoError(t, b.Verify())
}

func TestAttackMapsAreLazy(t *testing.T) {
	b := NewBoard(nil)
	require.NoError(t, b.PlacePiece(&Piece{ID: 1, Type: King, Color: White}, sq("e1")))
	require.NoError(t, b.PlacePiece(&Piece{ID: 2, Type: King, Color: Black}, sq("e8")))
	rook := &Piece{ID: 3, Type: Rook, Color: Black}
	require.NoError(t, b.PlacePiece(rook, sq("a2")))
	assert.False(t, b.IsKingInCheck(White))

	require.NoError(t, b.MovePiece(sq("a2"), sq("a1")))
	assert.True(t, b.IsKingInCheck(White))
	assert.True(t, b.IsSquareAttackedBy(sq("d1"), Black))
}

func TestSlidersStopAtEnemyDecoy(t *testing.T) {
	b := NewBoard(nil)
	rook := &Piece{ID: 1, Type: Rook, Color: White}
	require.NoError(t, b.PlacePiece(rook, sq("a1")))
	b.Effects().Create(sq("a4"), effects.ShadowDecoy, 2, Black, 1)

	moves := b.PseudoMoves(rook)
	assert.True(t, moves.Has(sq("a4")))
	assert.False(t, moves.Has(sq("a5")))

	rook.Immunities.GrantSquare(effects.ShadowDecoy)
	assert.True(t, b.PseudoMoves(rook).Has(sq("a8")))
}

func TestChilledSliderMovesOneSquare(t *testing.T) {
	b := NewBoard(nil)
	require.NoError(t, b.PlacePiece(&Piece{ID: 1, Type: King, Color: White}, sq("h1")))
	require.NoError(t, b.PlacePiece(&Piece{ID: 2, Type: King, Color: Black}, sq("h8")))
	queen := &Piece{ID: 3, Type: Queen, Color: White}
	require.NoError(t, b.PlacePiece(queen, sq("d4")))
	require.Equal(t, 27, b.LegalMoves(queen).Count())

	queen.ApplyStatus(effects.Chilled, 1, false)
	assert.Equal(t, 8, b.LegalMoves(queen).Count())
}

func TestBitboardIteration(t *testing.T) {
	bb := BBOf(sq("a1"), sq("h8"), sq("e4"))
	assert.Equal(t, 3, bb.Count())
	assert.Equal(t, []Square{sq("a1"), sq("e4"), sq("h8")}, bb.Squares())

	first, rest := bb.PopLSB()
	assert.Equal(t, sq("a1"), first)
	assert.Equal(t, 2, rest.Count())
}
