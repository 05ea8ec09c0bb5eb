package targeting_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"elemental_chess/internal/effects"
	"elemental_chess/internal/game"
	_ "elemental_chess/internal/game/abilities"
	"elemental_chess/internal/shared"
	"elemental_chess/internal/targeting"
)

var sq = shared.MustSquare

func firePawnGame(t *testing.T, fen string) *game.Engine {
	t.Helper()
	e, err := game.NewEngineFromFEN(fen)
	require.NoError(t, err)
	require.NoError(t, e.SetSideConfig(game.White, game.SideConfig{Element: game.ElementFire, Types: []game.PieceType{game.Pawn}}))
	require.NoError(t, e.SetSideConfig(game.Black, game.SideConfig{Element: game.ElementNone}))
	return e
}

func TestEnterAndApply(t *testing.T) {
	ctx := context.Background()
	e := firePawnGame(t, "4k3/8/8/3p4/4P3/8/8/4K3 w - - 0 1")
	c := targeting.New(e)

	require.True(t, c.EnterAbilityMode(ctx, sq("e4")))
	assert.True(t, c.ModeOpen())
	assert.True(t, c.Targets().Has(sq("d5")))
	src, ok := c.Source()
	require.True(t, ok)
	assert.Equal(t, sq("e4"), src)

	outcome, res, err := c.Primary(ctx, sq("d5"))
	require.NoError(t, err)
	assert.Equal(t, targeting.OutcomeApplied, outcome)
	assert.Equal(t, game.Black, res.Turn)
	assert.True(t, e.Board().PieceAt(sq("d5")).HasStatus(effects.Singed))
	assert.False(t, c.ModeOpen())
}

func TestInCheckCannotEnterAbilityMode(t *testing.T) {
	e := firePawnGame(t, "4k3/8/8/3p4/4P3/8/8/4K2r w - - 0 1")
	require.True(t, e.Status().InCheck)

	c := targeting.New(e)
	assert.False(t, c.EnterAbilityMode(context.Background(), sq("e4")))
	assert.False(t, c.ModeOpen())
}

func TestEnterRejectsOtherPieces(t *testing.T) {
	ctx := context.Background()
	e := firePawnGame(t, "4k3/8/8/3p4/4P3/8/8/4K3 w - - 0 1")
	c := targeting.New(e)

	assert.False(t, c.EnterAbilityMode(ctx, sq("d5")))
	assert.False(t, c.EnterAbilityMode(ctx, sq("e1")))
	assert.False(t, c.EnterAbilityMode(ctx, sq("a4")))
}

func TestOffTargetCancelsWithoutMutation(t *testing.T) {
	ctx := context.Background()
	e := firePawnGame(t, "4k3/8/8/3p4/4P3/8/8/4K3 w - - 0 1")
	c := targeting.New(e)
	require.True(t, c.EnterAbilityMode(ctx, sq("e4")))

	outcome, _, err := c.Primary(ctx, sq("a1"))
	require.NoError(t, err)
	assert.Equal(t, targeting.OutcomeCancelled, outcome)
	assert.False(t, c.ModeOpen())
	assert.False(t, e.Board().PieceAt(sq("d5")).HasStatus(effects.Singed))
	assert.Equal(t, game.White, e.Turn())

	outcome, _, err = c.Primary(ctx, sq("d5"))
	require.NoError(t, err)
	assert.Equal(t, targeting.OutcomeIgnored, outcome)
}

func TestSessionExpiresWithTheTurn(t *testing.T) {
	ctx := context.Background()
	e := firePawnGame(t, "4k3/8/8/3p4/4P3/8/8/4K3 w - - 0 1")
	c := targeting.New(e)
	require.True(t, c.EnterAbilityMode(ctx, sq("e4")))

	_, err := e.ApplyMove(ctx, sq("e1"), sq("f1"))
	require.NoError(t, err)
	assert.False(t, c.ModeOpen())
	assert.True(t, c.Targets().Empty())

	outcome, _, err := c.Primary(ctx, sq("d5"))
	require.NoError(t, err)
	assert.Equal(t, targeting.OutcomeIgnored, outcome)
}

func TestCancel(t *testing.T) {
	ctx := context.Background()
	e := firePawnGame(t, "4k3/8/8/3p4/4P3/8/8/4K3 w - - 0 1")
	c := targeting.New(e)
	require.True(t, c.EnterAbilityMode(ctx, sq("e4")))

	c.Cancel(ctx)
	assert.False(t, c.ModeOpen())
	c.Cancel(ctx)
	assert.True(t, c.EnterAbilityMode(ctx, sq("e4")))
}
