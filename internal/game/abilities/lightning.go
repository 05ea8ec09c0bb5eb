package abilities

import (
	"context"

	"elemental_chess/internal/effects"
	"elemental_chess/internal/game"
	"elemental_chess/internal/shared"
)

func init() {
	mustRegister(game.ElementLightning, game.Pawn, lightningPawn)
	mustRegister(game.ElementLightning, game.Knight, lightningKnight)
	mustRegister(game.ElementLightning, game.Bishop, lightningBishop)
	mustRegister(game.ElementLightning, game.Rook, lightningRook)
	mustRegister(game.ElementLightning, game.Queen, lightningQueen)
	mustRegister(game.ElementLightning, game.King, lightningKing)
}

func mark(targets []*game.Piece) {
	for _, t := range targets {
		t.ApplyStatus(effects.Marked, 0, true)
	}
}

// Arc lets the pawn capture sideways along its rank.
func lightningPawn(owner *game.Piece, bal game.AbilityBalance) game.Binding {
	return game.Binding{
		PassiveName: "Arc",
		ActiveName:  "Spark",
		Passive: game.PassiveFuncs{
			ModifyMoveGenerationFunc: func(moves game.Bitboard, pc *game.Piece, b *game.Board) game.Bitboard {
				for _, df := range []int{-1, 1} {
					sq, ok := shared.SquareFromCoords(pc.Square.Rank(), pc.Square.File()+df)
					if ok && b.Occupancy(pc.Color.Opposite()).Has(sq) {
						moves = moves.Add(sq)
					}
				}
				return moves
			},
		},
		Active: game.ActiveFuncs{
			TargetSquaresFunc: func(pc *game.Piece, b *game.Board, _ *effects.Ledger) game.Bitboard {
				return hostileTargets(pc, adjacentEnemies(b, pc), func(t *game.Piece) bool {
					return !t.HasStatus(effects.Marked) && !t.Immunities.HasStatus(effects.Marked)
				})
			},
			ExecuteFunc: func(_ context.Context, e *game.Engine, _ *game.Piece, target game.Square) bool {
				victim := e.Board().PieceAt(target)
				return victim != nil && victim.ApplyStatus(effects.Marked, 0, true)
			},
		},
	}
}

// Chain Bolt stuns a piece a knight's jump away and arcs to the first enemy
// standing next to it.
func lightningKnight(owner *game.Piece, bal game.AbilityBalance) game.Binding {
	return game.Binding{
		PassiveName: "Static Trail",
		ActiveName:  "Chain Bolt",
		Passive: game.PassiveFuncs{
			OnAfterMoveFunc: func(e *game.Engine, pc *game.Piece, from, _ game.Square) {
				if e.Board().IsEmpty(from) {
					e.Effects().Create(from, effects.LightningField, bal.Duration, pc.Color, 1)
				}
			},
		},
		Active: game.ActiveFuncs{
			TargetSquaresFunc: func(pc *game.Piece, b *game.Board, _ *effects.Ledger) game.Bitboard {
				var candidates []*game.Piece
				game.KnightTargets(pc.Square).Iter(func(sq game.Square) {
					candidates = append(candidates, b.PieceAt(sq))
				})
				return hostileTargets(pc, candidates, nil)
			},
			ExecuteFunc: func(_ context.Context, e *game.Engine, pc *game.Piece, target game.Square) bool {
				b := e.Board()
				victim := b.PieceAt(target)
				if victim == nil {
					return false
				}
				discharge(victim)
				stun([]*game.Piece{victim}, bal.Duration)
				for _, next := range b.EnemiesWithin(pc.Color, target, 1) {
					if next == victim {
						continue
					}
					discharge(next)
					stun([]*game.Piece{next}, 1)
					break
				}
				return true
			},
		},
	}
}

// Sidestep adds single orthogonal steps to the bishop's diagonals.
func lightningBishop(owner *game.Piece, bal game.AbilityBalance) game.Binding {
	return game.Binding{
		PassiveName: "Sidestep",
		ActiveName:  "Static Field",
		Passive: game.PassiveFuncs{
			ModifyMoveGenerationFunc: func(moves game.Bitboard, pc *game.Piece, _ *game.Board) game.Bitboard {
				return moves | game.OrthogonalTargets(pc.Square)
			},
		},
		Active: game.ActiveFuncs{
			TargetSquaresFunc: func(pc *game.Piece, b *game.Board, _ *effects.Ledger) game.Bitboard {
				return openRays(b, pc.Square, diagonals, bal.Range)
			},
			ExecuteFunc: func(_ context.Context, e *game.Engine, pc *game.Piece, target game.Square) bool {
				scatter(e.Effects(), e.Board(), squaresBetween(pc.Square, target), effects.LightningField, bal.Duration, pc.Color)
				return true
			},
		},
	}
}

// Rail Shot captures the first enemy on a rook line without moving, then
// discharges marks around the victim's square.
func lightningRook(owner *game.Piece, bal game.AbilityBalance) game.Binding {
	return game.Binding{
		PassiveName: "Overload",
		ActiveName:  "Rail Shot",
		Passive: game.PassiveFuncs{
			OnAfterCaptureFunc: func(e *game.Engine, attacker, _ *game.Piece) {
				if attacker == owner {
					mark(adjacentEnemies(e.Board(), owner))
				}
			},
		},
		Active: game.ActiveFuncs{
			TargetSquaresFunc: func(pc *game.Piece, b *game.Board, _ *effects.Ledger) game.Bitboard {
				return hostileTargets(pc, firstHits(b, pc.Square, orthogonals, bal.Range), func(t *game.Piece) bool {
					return t.Type != game.King
				})
			},
			ExecuteFunc: func(ctx context.Context, e *game.Engine, pc *game.Piece, target game.Square) bool {
				err := e.Sequence(ctx,
					game.Step{Kind: game.StepCapture, Piece: pc, To: target},
					game.Step{Kind: game.StepCustom, Piece: pc, To: target, Note: "discharge", Effect: func(sc *game.StepContext) error {
						for _, near := range sc.Engine.Board().EnemiesWithin(pc.Color, target, 1) {
							discharge(near)
						}
						return nil
					}},
				)
				return err == nil
			},
		},
	}
}

// Stormstride adds knight jumps to the queen's lines.
func lightningQueen(owner *game.Piece, bal game.AbilityBalance) game.Binding {
	return game.Binding{
		PassiveName: "Stormstride",
		ActiveName:  "Storm",
		Passive: game.PassiveFuncs{
			ModifyMoveGenerationFunc: func(moves game.Bitboard, pc *game.Piece, _ *game.Board) game.Bitboard {
				return moves | game.KnightTargets(pc.Square)
			},
		},
		Active: game.ActiveFuncs{
			CanActivateFunc: func(pc *game.Piece, b *game.Board, _ *effects.Ledger) bool {
				return len(b.EnemiesWithin(pc.Color, pc.Square, bal.Range)) > 0
			},
			TargetSquaresFunc: func(pc *game.Piece, b *game.Board, _ *effects.Ledger) game.Bitboard {
				return b.EmptyWithin(pc.Square, bal.Range)
			},
			ExecuteFunc: func(_ context.Context, e *game.Engine, pc *game.Piece, target game.Square) bool {
				b := e.Board()
				area := append(shared.Neighbors(target, bal.Radius), target)
				scatter(e.Effects(), b, area, effects.LightningField, bal.Duration, pc.Color)
				struck := b.EnemiesWithin(pc.Color, target, bal.Radius)
				for _, t := range struck {
					discharge(t)
				}
				stun(struck, 1)
				return true
			},
		},
	}
}

// Overcharge recharges an adjacent friend's ability at once.
func lightningKing(owner *game.Piece, bal game.AbilityBalance) game.Binding {
	return game.Binding{
		PassiveName: "Grounded",
		ActiveName:  "Overcharge",
		Passive:     game.PassiveFuncs{},
		Immunities:  immuneSquares(effects.LightningField),
		Active: game.ActiveFuncs{
			TargetSquaresFunc: func(pc *game.Piece, b *game.Board, _ *effects.Ledger) game.Bitboard {
				var out game.Bitboard
				for _, friend := range b.FriendsWithin(pc.Color, pc.Square, 1) {
					if friend.Active != nil && !friend.Cooldown.Ready() {
						out = out.Add(friend.Square)
					}
				}
				return out
			},
			ExecuteFunc: func(_ context.Context, e *game.Engine, _ *game.Piece, target game.Square) bool {
				friend := e.Board().PieceAt(target)
				if friend == nil || friend.Cooldown.Ready() {
					return false
				}
				friend.Cooldown.Reset()
				return true
			},
		},
	}
}
