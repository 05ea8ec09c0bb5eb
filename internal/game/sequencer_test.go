package game

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"elemental_chess/internal/cooldown"
	"elemental_chess/internal/effects"
)

type recordingPresenter struct {
	relocations []Square
	removals    []Square
}

func (p *recordingPresenter) Relocate(_ *Piece, _, to Square, _ *Square) {
	p.relocations = append(p.relocations, to)
}

func (p *recordingPresenter) Remove(_ *Piece, at Square) { p.removals = append(p.removals, at) }

type countingWaiter struct{ waits []time.Duration }

func (w *countingWaiter) Wait(_ context.Context, d time.Duration) { w.waits = append(w.waits, d) }

// arm gives pc a scripted active ability.
func arm(pc *Piece, name string, targets Bitboard, exec func(context.Context, *Engine, *Piece, Square) bool) {
	pc.ActiveName = name
	pc.Cooldown = cooldown.New(2)
	pc.Active = ActiveFuncs{
		TargetSquaresFunc: func(*Piece, *Board, *effects.Ledger) Bitboard { return targets },
		ExecuteFunc:       exec,
	}
}

func TestTwoStepStrikeRecordsOnce(t *testing.T) {
	ctx := context.Background()
	presenter := &recordingPresenter{}
	waiter := &countingWaiter{}
	e, err := NewEngineFromFEN("4k3/8/8/3r4/8/8/8/Q3K3 w - - 0 1", WithPresenter(presenter), WithWaiter(waiter))
	require.NoError(t, err)
	require.NoError(t, e.SetSideConfig(White, SideConfig{Element: ElementNone}))
	require.NoError(t, e.SetSideConfig(Black, SideConfig{Element: ElementNone}))

	queen := e.Board().PieceAt(sq("a1"))
	arm(queen, "Strike", BB(sq("d5")), func(ctx context.Context, e *Engine, pc *Piece, target Square) bool {
		return e.Sequence(ctx, Terminal(
			Step{Kind: StepRelocate, Piece: pc, To: sq("c4"), Settle: time.Millisecond},
			Step{Kind: StepCapture, Piece: pc, To: target},
		)...) == nil
	})

	res, err := e.ApplyAbility(ctx, sq("a1"), sq("d5"))
	require.NoError(t, err)
	assert.Contains(t, res.Events, EventAbility)
	assert.Contains(t, res.Events, EventCaptured)

	hist := e.History()
	require.Len(t, hist, 1)
	assert.Equal(t, "Strike", hist[0].Ability)
	require.NotNil(t, hist[0].Captured)
	assert.Equal(t, Rook, *hist[0].Captured)

	assert.Equal(t, queen, e.Board().PieceAt(sq("c4")))
	assert.Nil(t, e.Board().PieceAt(sq("d5")))
	assert.Equal(t, []Square{sq("c4")}, presenter.relocations)
	assert.Equal(t, []Square{sq("d5")}, presenter.removals)
	assert.Equal(t, []time.Duration{time.Millisecond}, waiter.waits)
	assert.Equal(t, 2, queen.Cooldown.Remaining)
	require.NoError(t, e.Board().Verify())
}

func TestFailedAbilityRollsBack(t *testing.T) {
	ctx := context.Background()
	e := plainEngine(t, "4k3/8/8/3r4/8/8/8/Q3K3 w - - 0 1")
	queen := e.Board().PieceAt(sq("a1"))
	arm(queen, "Fizzle", BB(sq("b2")), func(ctx context.Context, e *Engine, pc *Piece, target Square) bool {
		e.Effects().Create(target, effects.Fire, 3, pc.Color, 1)
		_ = e.Sequence(ctx, Step{Kind: StepRelocate, Piece: pc, To: target})
		return false
	})

	_, err := e.ApplyAbility(ctx, sq("a1"), sq("b2"))
	require.ErrorIs(t, err, ErrAbilityFailed)
	assert.True(t, IsVetoed(err))

	assert.Equal(t, queen, e.Board().PieceAt(sq("a1")))
	assert.False(t, queen.HasMoved)
	assert.Zero(t, e.Effects().Len())
	assert.True(t, queen.Cooldown.Ready())
	assert.Equal(t, White, e.Turn())
	assert.Empty(t, e.History())
	require.NoError(t, e.Board().Verify())
}

func TestAbilityExposingKingIsRejected(t *testing.T) {
	ctx := context.Background()
	e := plainEngine(t, "4r1k1/8/8/8/8/8/4B3/4K3 w - - 0 1")
	bishop := e.Board().PieceAt(sq("e2"))
	arm(bishop, "Blink", BB(sq("a6")), func(ctx context.Context, e *Engine, pc *Piece, target Square) bool {
		return e.Sequence(ctx, Step{Kind: StepRelocate, Piece: pc, To: target}) == nil
	})

	_, err := e.ApplyAbility(ctx, sq("e2"), sq("a6"))
	require.ErrorIs(t, err, ErrIllegalAction)
	assert.Equal(t, bishop, e.Board().PieceAt(sq("e2")))
	assert.True(t, bishop.Cooldown.Ready())
}

func TestAbilityOutsideTargetsIsIllegal(t *testing.T) {
	e := plainEngine(t, "4k3/8/8/8/8/8/8/Q3K3 w - - 0 1")
	queen := e.Board().PieceAt(sq("a1"))
	arm(queen, "Strike", BB(sq("b2")), func(context.Context, *Engine, *Piece, Square) bool { return true })

	_, err := e.ApplyAbility(context.Background(), sq("a1"), sq("h8"))
	require.ErrorIs(t, err, ErrIllegalAction)
}

func TestAbilityBlockedWhileInCheck(t *testing.T) {
	e := plainEngine(t, "4k3/8/8/8/8/8/8/Q3K2r w - - 0 1")
	queen := e.Board().PieceAt(sq("a1"))
	arm(queen, "Strike", BB(sq("b2")), func(context.Context, *Engine, *Piece, Square) bool { return true })

	require.True(t, e.Status().InCheck)
	assert.False(t, e.AbilityAvailable(queen))
	assert.True(t, e.AbilityTargets(sq("a1")).Empty())
}

func TestSequenceStopsAtFirstFailure(t *testing.T) {
	e := plainEngine(t, "4k3/8/8/8/8/8/8/Q3K3 w - - 0 1")
	queen := e.Board().PieceAt(sq("a1"))
	boom := errors.New("boom")
	ran := false

	err := e.Sequence(context.Background(),
		Step{Kind: StepCustom, Effect: func(*StepContext) error { return boom }},
		Step{Kind: StepCustom, Effect: func(*StepContext) error { ran = true; return nil }},
	)
	require.ErrorIs(t, err, boom)
	assert.False(t, ran)
	assert.Equal(t, queen, e.Board().PieceAt(sq("a1")))

	err = e.Sequence(context.Background(), Step{Kind: StepCapture, Piece: queen, To: sq("e1")})
	require.ErrorIs(t, err, ErrIllegalAction)
}

func TestSwapStepResolvesBothLandings(t *testing.T) {
	ctx := context.Background()
	presenter := &recordingPresenter{}
	e, err := NewEngineFromFEN("1N2k3/8/8/8/8/8/4P3/4K3 w - - 0 1", WithPresenter(presenter))
	require.NoError(t, err)
	knight := e.Board().PieceAt(sq("b8"))
	pawn := e.Board().PieceAt(sq("e2"))
	e.Effects().Create(sq("e2"), effects.LightningField, 3, Black, 1)

	require.NoError(t, e.Sequence(ctx, Step{Kind: StepSwap, Piece: knight, To: sq("e2"), Record: true, Note: "swap"}))
	assert.Equal(t, knight, e.Board().PieceAt(sq("e2")))
	assert.Equal(t, pawn, e.Board().PieceAt(sq("b8")))
	assert.True(t, knight.HasStatus(effects.Stunned))
	assert.Equal(t, Queen, pawn.Type)
	assert.True(t, pawn.HasMoved)
	assert.Equal(t, []Square{sq("e2"), sq("b8")}, presenter.relocations)
	require.Len(t, e.History(), 1)
	require.NoError(t, e.Board().Verify())
}

func TestSwapStepRefusesBlockedSquare(t *testing.T) {
	e := plainEngine(t, "4k3/8/8/8/8/8/8/RN2K3 w - - 0 1")
	knight := e.Board().PieceAt(sq("b1"))
	rook := e.Board().PieceAt(sq("a1"))
	e.Effects().Create(sq("a1"), effects.Fire, 2, Black, 1)

	err := e.Sequence(context.Background(), Step{Kind: StepSwap, Piece: knight, To: sq("a1")})
	require.ErrorIs(t, err, ErrIllegalAction)
	assert.Equal(t, knight, e.Board().PieceAt(sq("b1")))
	assert.Equal(t, rook, e.Board().PieceAt(sq("a1")))

	err = e.Sequence(context.Background(), Step{Kind: StepSwap, Piece: knight, To: sq("c1")})
	require.ErrorIs(t, err, ErrNoPiece)
}

func TestCancelledContextSkipsWaits(t *testing.T) {
	waiter := &countingWaiter{}
	e, err := NewEngineFromFEN("4k3/8/8/8/8/8/8/Q3K3 w - - 0 1", WithWaiter(waiter))
	require.NoError(t, err)
	queen := e.Board().PieceAt(sq("a1"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = e.Sequence(ctx,
		Step{Kind: StepRelocate, Piece: queen, To: sq("a2"), Settle: time.Second},
		Step{Kind: StepRelocate, Piece: queen, To: sq("a3"), Settle: time.Second},
	)
	require.NoError(t, err)
	assert.Equal(t, sq("a3"), queen.Square)
	assert.Empty(t, waiter.waits)
}

func TestClockWaiterReturnsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start := time.Now()
	ClockWaiter{}.Wait(ctx, time.Minute)
	assert.Less(t, time.Since(start), time.Second)
}
