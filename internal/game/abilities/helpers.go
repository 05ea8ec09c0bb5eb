package abilities

import (
	"context"

	"elemental_chess/internal/effects"
	"elemental_chess/internal/game"
	"elemental_chess/internal/shared"
)

type direction struct {
	dr int
	df int
}

var (
	diagonals   = []direction{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
	orthogonals = []direction{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	allLines    = append(append([]direction{}, orthogonals...), diagonals...)
)

// walk visits squares from sq along d, up to n squares when n > 0, until
// visit returns false or the board ends.
func walk(from game.Square, d direction, n int, visit func(game.Square) bool) {
	r, f := from.Rank(), from.File()
	for i := 1; n <= 0 || i <= n; i++ {
		sq, ok := shared.SquareFromCoords(r+d.dr*i, f+d.df*i)
		if !ok || !visit(sq) {
			return
		}
	}
}

// openRays returns the empty squares along dirs, each ray stopping at the
// first piece.
func openRays(b *game.Board, from game.Square, dirs []direction, n int) game.Bitboard {
	var out game.Bitboard
	for _, d := range dirs {
		walk(from, d, n, func(sq game.Square) bool {
			if !b.IsEmpty(sq) {
				return false
			}
			out = out.Add(sq)
			return true
		})
	}
	return out
}

// phaseRays returns the landable squares along dirs, passing over pieces.
func phaseRays(b *game.Board, pc *game.Piece, dirs []direction, n int) game.Bitboard {
	var out game.Bitboard
	for _, d := range dirs {
		walk(pc.Square, d, n, func(sq game.Square) bool {
			if b.CanLand(pc, sq) {
				out = out.Add(sq)
			}
			return true
		})
	}
	return out
}

// firstHits returns the first piece met on each ray.
func firstHits(b *game.Board, from game.Square, dirs []direction, n int) []*game.Piece {
	var out []*game.Piece
	for _, d := range dirs {
		walk(from, d, n, func(sq game.Square) bool {
			if pc := b.PieceAt(sq); pc != nil {
				out = append(out, pc)
				return false
			}
			return true
		})
	}
	return out
}

// squaresBetween lists from's ray squares up to and including to.
func squaresBetween(from, to game.Square) []game.Square {
	return append(shared.Line(from, to), to)
}

// hostile reports whether target is an enemy of pc that enemy abilities may
// single out. Veiled pieces cannot be targeted.
func hostile(pc, target *game.Piece) bool {
	return target != nil && target.Color != pc.Color && !target.HasStatus(effects.Veiled)
}

// immobilizable excludes kings from stuns and freezes.
func immobilizable(target *game.Piece, t effects.StatusType) bool {
	return target.Type != game.King && !target.Immunities.HasStatus(t)
}

func hostileTargets(pc *game.Piece, candidates []*game.Piece, keep func(*game.Piece) bool) game.Bitboard {
	var out game.Bitboard
	for _, c := range candidates {
		if hostile(pc, c) && (keep == nil || keep(c)) {
			out = out.Add(c.Square)
		}
	}
	return out
}

func adjacentEnemies(b *game.Board, pc *game.Piece) []*game.Piece {
	return b.EnemiesWithin(pc.Color, pc.Square, 1)
}

// selfTarget targets the piece's own square when cond holds.
func selfTarget(pc *game.Piece, cond bool) game.Bitboard {
	if !cond {
		return 0
	}
	return game.BB(pc.Square)
}

// discharge consumes a lightning mark on target and stuns it.
func discharge(target *game.Piece) {
	if target.Statuses.Trigger(effects.Marked) && immobilizable(target, effects.Stunned) {
		target.ApplyStatus(effects.Stunned, 1, false)
	}
}

// scatter creates typ on every empty square of area; walls on the way take a
// hit instead of being replaced.
func scatter(l *effects.Ledger, b *game.Board, area []game.Square, typ effects.SquareEffectType, turns int, owner game.Color) {
	for _, sq := range area {
		if !b.IsEmpty(sq) {
			continue
		}
		if eff := l.At(sq); eff != nil && eff.Type == effects.StoneWall && typ != effects.StoneWall {
			l.TakeDamage(sq, 1)
			continue
		}
		l.Create(sq, typ, turns, owner, 1)
	}
}

func relocate(ctx context.Context, e *game.Engine, pc *game.Piece, to game.Square) bool {
	return e.Sequence(ctx, game.Step{Kind: game.StepRelocate, Piece: pc, To: to}) == nil
}

func immune(status ...effects.StatusType) effects.Immunities {
	var im effects.Immunities
	im.GrantStatus(status...)
	return im
}

func immuneSquares(square ...effects.SquareEffectType) effects.Immunities {
	var im effects.Immunities
	im.GrantSquare(square...)
	return im
}

// stun immobilizes every target that can be stunned.
func stun(targets []*game.Piece, turns int) {
	for _, t := range targets {
		if immobilizable(t, effects.Stunned) {
			t.ApplyStatus(effects.Stunned, turns, false)
		}
	}
}

// beyond returns the square one step past to, continuing the line from from.
func beyond(from, to game.Square) (game.Square, bool) {
	dr := sign(to.Rank() - from.Rank())
	df := sign(to.File() - from.File())
	return shared.SquareFromCoords(to.Rank()+dr, to.File()+df)
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

// emptyNeighbors returns the empty, effect-free squares orthogonally or fully
// adjacent to sq.
func emptyNeighbors(b *game.Board, sq game.Square, orthogonalOnly bool) []game.Square {
	var out []game.Square
	for _, n := range shared.Neighbors(sq, 1) {
		if orthogonalOnly && !shared.Orthogonal(sq, n) {
			continue
		}
		if b.IsEmpty(n) && b.Effects().TypeAt(n) == effects.SquareNone {
			out = append(out, n)
		}
	}
	return out
}
