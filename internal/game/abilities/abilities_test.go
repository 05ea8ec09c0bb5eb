package abilities

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"elemental_chess/internal/effects"
	"elemental_chess/internal/game"
	"elemental_chess/internal/shared"
)

var sq = shared.MustSquare

// draft loads fen and applies both sides' draft choices.
func draft(t *testing.T, fen string, white game.SideConfig, black game.SideConfig) *game.Engine {
	t.Helper()
	e, err := game.NewEngineFromFEN(fen)
	require.NoError(t, err)
	require.NoError(t, e.SetSideConfig(game.White, white))
	require.NoError(t, e.SetSideConfig(game.Black, black))
	return e
}

func side(el game.Element, types ...game.PieceType) game.SideConfig {
	return game.SideConfig{Element: el, Types: types}
}

var plain = game.SideConfig{Element: game.ElementNone}

func TestEveryPairIsRegistered(t *testing.T) {
	require.Len(t, registeredPairs(), shared.ElementCount*shared.PieceTypeCount)

	bal := game.DefaultBalance()
	for _, el := range shared.AllElements {
		for _, pt := range shared.AllPieceTypes {
			owner := &game.Piece{Type: pt, Element: el}
			binding, err := New(owner, bal.For(el, pt))
			require.NoError(t, err, "%s %s", el, pt.Name())
			assert.NotEmpty(t, binding.PassiveName, "%s %s", el, pt.Name())
			assert.NotEmpty(t, binding.ActiveName, "%s %s", el, pt.Name())
			assert.NotNil(t, binding.Passive)
			assert.NotNil(t, binding.Active)
		}
	}
}

func TestRegisterRejectsBadInput(t *testing.T) {
	ctor := func(*game.Piece, game.AbilityBalance) game.Binding { return game.Binding{} }

	require.ErrorIs(t, Register(game.ElementFire, game.Pawn, ctor), ErrDuplicateRegistration)
	require.ErrorIs(t, Register(game.ElementNone, game.Pawn, ctor), ErrInvalidPair)
	require.ErrorIs(t, Register(game.ElementFire, game.Pawn, nil), ErrNilConstructor)

	_, err := New(&game.Piece{Type: game.Pawn, Element: game.ElementNone}, game.AbilityBalance{})
	require.ErrorIs(t, err, ErrUnknownPair)
}

func TestDraftBindsNames(t *testing.T) {
	e := draft(t, "4k3/8/8/8/8/8/8/3QK3 w - - 0 1", side(game.ElementShadow), plain)
	queen := e.Board().PieceAt(sq("d1"))
	assert.Equal(t, "Vanish", queen.PassiveName)
	assert.Equal(t, "Shadow Strike", queen.ActiveName)
	assert.Nil(t, e.Board().PieceAt(sq("e8")).Active)
}

func TestMeteorLeapSparesFriendlies(t *testing.T) {
	e := draft(t, "4k3/8/2P1p3/8/8/1N6/8/4K3 w - - 0 1", side(game.ElementFire, game.Knight), plain)
	knight := e.Board().PieceAt(sq("b3"))
	require.True(t, e.AbilityTargets(sq("b3")).Has(sq("d5")))

	_, err := e.ApplyAbility(context.Background(), sq("b3"), sq("d5"))
	require.NoError(t, err)

	l := e.Effects()
	assert.Equal(t, knight, e.Board().PieceAt(sq("d5")))
	assert.False(t, knight.HasStatus(effects.Singed))
	assert.Equal(t, effects.SquareNone, l.TypeAt(sq("d5")))
	assert.False(t, e.Board().PieceAt(sq("c6")).HasStatus(effects.Singed))
	assert.True(t, e.Board().PieceAt(sq("e6")).HasStatus(effects.Singed))
	for _, s := range []string{"c4", "d4", "e4", "c5", "e5", "d6"} {
		assert.Equal(t, effects.Fire, l.TypeAt(sq(s)), s)
	}

	hist := e.History()
	require.Len(t, hist, 1)
	assert.Equal(t, "Meteor Leap", hist[0].Ability)
	assert.False(t, knight.Cooldown.Ready())
}

func TestShadowStrikeRecordsOneEntry(t *testing.T) {
	e := draft(t, "4k3/8/8/3n4/8/8/8/3QK3 w - - 0 1", side(game.ElementShadow, game.Queen), plain)
	queen := e.Board().PieceAt(sq("d1"))
	require.True(t, e.AbilityTargets(sq("d1")).Has(sq("d5")))
	assert.False(t, e.AbilityTargets(sq("d1")).Has(sq("e8")))

	res, err := e.ApplyAbility(context.Background(), sq("d1"), sq("d5"))
	require.NoError(t, err)
	assert.Contains(t, res.Events, game.EventCaptured)

	assert.Nil(t, e.Board().PieceAt(sq("d5")))
	assert.Equal(t, 1, shared.Distance(queen.Square, sq("d5")))
	assert.True(t, queen.HasStatus(effects.Veiled))

	hist := e.History()
	require.Len(t, hist, 1)
	assert.Equal(t, "Shadow Strike", hist[0].Ability)
	require.NotNil(t, hist[0].Captured)
	assert.Equal(t, game.Knight, *hist[0].Captured)
	require.NoError(t, e.Board().Verify())
}

func TestStoneskinVetoesCaptureNextToWall(t *testing.T) {
	ctx := context.Background()
	e := draft(t, "4k3/8/8/3p4/4P3/8/8/4K3 w - - 0 1", plain, side(game.ElementEarth, game.Pawn))
	e.Effects().Create(sq("c5"), effects.StoneWall, 3, game.Black, 1)

	_, err := e.ApplyMove(ctx, sq("e4"), sq("d5"))
	require.ErrorIs(t, err, game.ErrCaptureVetoed)
	require.NotNil(t, e.Board().PieceAt(sq("d5")))
	assert.Equal(t, game.White, e.Turn())

	e.Effects().Clear(sq("c5"))
	_, err = e.ApplyMove(ctx, sq("e4"), sq("d5"))
	require.NoError(t, err)
	assert.Equal(t, game.White, e.Board().PieceAt(sq("d5")).Color)
}

func TestFreezeHoldsTargetForItsTurn(t *testing.T) {
	e := draft(t, "4k3/8/8/n7/8/8/8/R3K3 w - - 0 1", side(game.ElementIce, game.Rook), plain)
	rook := e.Board().PieceAt(sq("a1"))

	_, err := e.ApplyAbility(context.Background(), sq("a1"), sq("a5"))
	require.NoError(t, err)
	assert.True(t, e.Board().PieceAt(sq("a5")).HasStatus(effects.Frozen))
	assert.True(t, e.LegalMoves(sq("a5")).Empty())
	assert.Equal(t, 4, rook.Cooldown.Remaining)
	assert.False(t, e.AbilityAvailable(rook))
}

func TestVeiledPiecesCannotBeTargeted(t *testing.T) {
	e := draft(t, "4k3/8/8/n7/8/8/8/R3K3 w - - 0 1", side(game.ElementIce, game.Rook), plain)
	e.Board().PieceAt(sq("a5")).ApplyStatus(effects.Veiled, 1, false)

	assert.True(t, e.AbilityTargets(sq("a1")).Empty())
	_, err := e.ApplyAbility(context.Background(), sq("a1"), sq("a5"))
	require.ErrorIs(t, err, game.ErrIllegalAction)
}

func TestArcCapturesSideways(t *testing.T) {
	e := draft(t, "4k3/8/8/8/3Pp3/8/8/4K3 w - - 0 1", side(game.ElementLightning, game.Pawn), plain)
	moves := e.LegalMoves(sq("d4"))
	assert.True(t, moves.Has(sq("e4")))
	assert.True(t, moves.Has(sq("d5")))
	assert.False(t, moves.Has(sq("c4")))
}

func TestRampartLeavesWallBehind(t *testing.T) {
	e := draft(t, "4k3/8/8/8/8/8/8/R3K3 w - - 0 1", side(game.ElementEarth, game.Rook), plain)
	_, err := e.ApplyMove(context.Background(), sq("a1"), sq("a4"))
	require.NoError(t, err)

	wall := e.Effects().At(sq("a1"))
	require.NotNil(t, wall)
	assert.Equal(t, effects.StoneWall, wall.Type)
	assert.Equal(t, 1, wall.TurnsLeft)
}

func TestUmbralSwapTradesPlaces(t *testing.T) {
	e := draft(t, "4k3/8/8/8/8/8/8/RN2K3 w - - 0 1", side(game.ElementShadow, game.Knight), plain)
	knight := e.Board().PieceAt(sq("b1"))
	rook := e.Board().PieceAt(sq("a1"))
	targets := e.AbilityTargets(sq("b1"))
	assert.True(t, targets.Has(sq("a1")))
	assert.False(t, targets.Has(sq("e1")))

	_, err := e.ApplyAbility(context.Background(), sq("b1"), sq("a1"))
	require.NoError(t, err)
	assert.Equal(t, knight, e.Board().PieceAt(sq("a1")))
	assert.Equal(t, rook, e.Board().PieceAt(sq("b1")))
	assert.True(t, rook.HasMoved)
	require.NoError(t, e.Board().Verify())
}

func TestFrostAuraChillsNeighbours(t *testing.T) {
	e := draft(t, "4k3/8/8/8/8/8/3r3P/4K3 w - - 0 1", side(game.ElementIce, game.King), plain)
	_, err := e.ApplyMove(context.Background(), sq("h2"), sq("h3"))
	require.NoError(t, err)

	rook := e.Board().PieceAt(sq("d2"))
	assert.True(t, rook.HasStatus(effects.Chilled))
	moves := e.LegalMoves(sq("d2"))
	assert.False(t, moves.Empty())
	assert.Equal(t, moves, moves&game.KingTargets(sq("d2")))
}

func TestPromotedPawnRebindsAsQueen(t *testing.T) {
	e := draft(t, "4k3/P7/8/8/8/8/8/4K3 w - - 0 1", side(game.ElementFire), plain)
	_, err := e.ApplyMove(context.Background(), sq("a7"), sq("a8"))
	require.NoError(t, err)

	queen := e.Board().PieceAt(sq("a8"))
	assert.Equal(t, game.Queen, queen.Type)
	assert.Equal(t, "Inferno", queen.ActiveName)
	assert.True(t, queen.Immunities.HasStatus(effects.Singed))
}

func TestOverchargeResetsFriendCooldown(t *testing.T) {
	e := draft(t, "4k3/8/8/8/8/8/8/3RK3 w - - 0 1", side(game.ElementLightning), plain)
	rook := e.Board().PieceAt(sq("d1"))
	rook.Cooldown.Trigger()
	require.True(t, e.AbilityTargets(sq("e1")).Has(sq("d1")))

	_, err := e.ApplyAbility(context.Background(), sq("e1"), sq("d1"))
	require.NoError(t, err)
	assert.True(t, rook.Cooldown.Ready())
}
