package game

import (
	"context"

	"elemental_chess/internal/effects"
)

// Passive hooks run without player input. ModifyMoveGeneration is also used
// while building attack maps, so it must be pure and must not query attacks.
//
// OnBeforeCapture is asked of both the attacker's and the defender's passive
// before anything is mutated; a false result vetoes the capture. The after
// hooks run once the mutation is committed. OnPieceCaptured fires on the
// defender's passive with the capturer.
type Passive interface {
	ModifyMoveGeneration(moves Bitboard, pc *Piece, b *Board) Bitboard
	OnBeforeCapture(e *Engine, attacker, defender *Piece) bool
	OnAfterCapture(e *Engine, attacker, defender *Piece)
	OnAfterMove(e *Engine, pc *Piece, from, to Square)
	OnPieceCaptured(e *Engine, captured, capturer *Piece)
	OnTurnStart(e *Engine, pc *Piece, current Color)
}

// Active abilities consume the turn. TargetSquares must be exhaustive and
// free of side effects. Execute returning false spends neither the cooldown
// nor the turn.
type Active interface {
	CanActivate(pc *Piece, b *Board, l *effects.Ledger) bool
	TargetSquares(pc *Piece, b *Board, l *effects.Ledger) Bitboard
	Execute(ctx context.Context, e *Engine, pc *Piece, target Square) bool
}

// PassiveFuncs adapts plain functions to Passive. Nil hooks fall back to a
// neutral response.
type PassiveFuncs struct {
	ModifyMoveGenerationFunc func(moves Bitboard, pc *Piece, b *Board) Bitboard
	OnBeforeCaptureFunc      func(e *Engine, attacker, defender *Piece) bool
	OnAfterCaptureFunc       func(e *Engine, attacker, defender *Piece)
	OnAfterMoveFunc          func(e *Engine, pc *Piece, from, to Square)
	OnPieceCapturedFunc      func(e *Engine, captured, capturer *Piece)
	OnTurnStartFunc          func(e *Engine, pc *Piece, current Color)
}

func (pf PassiveFuncs) ModifyMoveGeneration(moves Bitboard, pc *Piece, b *Board) Bitboard {
	if pf.ModifyMoveGenerationFunc == nil {
		return moves
	}
	return pf.ModifyMoveGenerationFunc(moves, pc, b)
}

func (pf PassiveFuncs) OnBeforeCapture(e *Engine, attacker, defender *Piece) bool {
	if pf.OnBeforeCaptureFunc == nil {
		return true
	}
	return pf.OnBeforeCaptureFunc(e, attacker, defender)
}

func (pf PassiveFuncs) OnAfterCapture(e *Engine, attacker, defender *Piece) {
	if pf.OnAfterCaptureFunc != nil {
		pf.OnAfterCaptureFunc(e, attacker, defender)
	}
}

func (pf PassiveFuncs) OnAfterMove(e *Engine, pc *Piece, from, to Square) {
	if pf.OnAfterMoveFunc != nil {
		pf.OnAfterMoveFunc(e, pc, from, to)
	}
}

func (pf PassiveFuncs) OnPieceCaptured(e *Engine, captured, capturer *Piece) {
	if pf.OnPieceCapturedFunc != nil {
		pf.OnPieceCapturedFunc(e, captured, capturer)
	}
}

func (pf PassiveFuncs) OnTurnStart(e *Engine, pc *Piece, current Color) {
	if pf.OnTurnStartFunc != nil {
		pf.OnTurnStartFunc(e, pc, current)
	}
}

// ActiveFuncs adapts plain functions to Active. A nil CanActivateFunc allows
// activation, a nil TargetSquaresFunc yields no targets and a nil ExecuteFunc
// always fails.
type ActiveFuncs struct {
	CanActivateFunc   func(pc *Piece, b *Board, l *effects.Ledger) bool
	TargetSquaresFunc func(pc *Piece, b *Board, l *effects.Ledger) Bitboard
	ExecuteFunc       func(ctx context.Context, e *Engine, pc *Piece, target Square) bool
}

func (af ActiveFuncs) CanActivate(pc *Piece, b *Board, l *effects.Ledger) bool {
	if af.CanActivateFunc == nil {
		return true
	}
	return af.CanActivateFunc(pc, b, l)
}

func (af ActiveFuncs) TargetSquares(pc *Piece, b *Board, l *effects.Ledger) Bitboard {
	if af.TargetSquaresFunc == nil {
		return 0
	}
	return af.TargetSquaresFunc(pc, b, l)
}

func (af ActiveFuncs) Execute(ctx context.Context, e *Engine, pc *Piece, target Square) bool {
	if af.ExecuteFunc == nil {
		return false
	}
	return af.ExecuteFunc(ctx, e, pc, target)
}
