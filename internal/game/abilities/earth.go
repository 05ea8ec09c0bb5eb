package abilities

import (
	"context"

	"elemental_chess/internal/effects"
	"elemental_chess/internal/game"
	"elemental_chess/internal/shared"
)

func init() {
	mustRegister(game.ElementEarth, game.Pawn, earthPawn)
	mustRegister(game.ElementEarth, game.Knight, earthKnight)
	mustRegister(game.ElementEarth, game.Bishop, earthBishop)
	mustRegister(game.ElementEarth, game.Rook, earthRook)
	mustRegister(game.ElementEarth, game.Queen, earthQueen)
	mustRegister(game.ElementEarth, game.King, earthKing)
}

// rampartTurns outlasts the turn boundary that follows the move.
const rampartTurns = 2

func raiseWalls(l *effects.Ledger, squares []game.Square, turns, hp int, owner game.Color) {
	for _, sq := range squares {
		l.Create(sq, effects.StoneWall, turns, owner, hp)
	}
}

// Stoneskin refuses captures of the pawn while a stone wall stands
// orthogonally next to it.
func earthPawn(owner *game.Piece, bal game.AbilityBalance) game.Binding {
	return game.Binding{
		PassiveName: "Stoneskin",
		ActiveName:  "Raise Wall",
		Passive: game.PassiveFuncs{
			OnBeforeCaptureFunc: func(e *game.Engine, _, defender *game.Piece) bool {
				if defender != owner {
					return true
				}
				walled := false
				game.OrthogonalTargets(owner.Square).Iter(func(sq game.Square) {
					if e.Effects().TypeAt(sq) == effects.StoneWall {
						walled = true
					}
				})
				return !walled
			},
		},
		Active: game.ActiveFuncs{
			TargetSquaresFunc: func(pc *game.Piece, b *game.Board, l *effects.Ledger) game.Bitboard {
				ahead, ok := shared.SquareFromCoords(pc.Square.Rank()+game.Forward(pc.Color), pc.Square.File())
				if !ok || !b.IsEmpty(ahead) || l.TypeAt(ahead) != effects.SquareNone {
					return 0
				}
				return game.BB(ahead)
			},
			ExecuteFunc: func(_ context.Context, e *game.Engine, pc *game.Piece, target game.Square) bool {
				raiseWalls(e.Effects(), []game.Square{target}, bal.Duration, 1, pc.Color)
				return true
			},
		},
	}
}

// Trample adds single orthogonal steps to the knight's jumps.
func earthKnight(owner *game.Piece, bal game.AbilityBalance) game.Binding {
	quake := func(b *game.Board, pc *game.Piece) (enemies []*game.Piece, walls []game.Square) {
		for _, sq := range shared.Neighbors(pc.Square, 1) {
			if b.Effects().TypeAt(sq) == effects.StoneWall {
				walls = append(walls, sq)
			}
		}
		return adjacentEnemies(b, pc), walls
	}
	return game.Binding{
		PassiveName: "Trample",
		ActiveName:  "Earthshatter",
		Passive: game.PassiveFuncs{
			ModifyMoveGenerationFunc: func(moves game.Bitboard, pc *game.Piece, _ *game.Board) game.Bitboard {
				return moves | game.OrthogonalTargets(pc.Square)
			},
		},
		Active: game.ActiveFuncs{
			TargetSquaresFunc: func(pc *game.Piece, b *game.Board, _ *effects.Ledger) game.Bitboard {
				enemies, walls := quake(b, pc)
				return selfTarget(pc, len(enemies) > 0 || len(walls) > 0)
			},
			ExecuteFunc: func(_ context.Context, e *game.Engine, pc *game.Piece, _ game.Square) bool {
				enemies, walls := quake(e.Board(), pc)
				stun(enemies, bal.Duration)
				for _, sq := range walls {
					e.Effects().TakeDamage(sq, 1)
				}
				return true
			},
		},
	}
}

func earthBishop(owner *game.Piece, bal game.AbilityBalance) game.Binding {
	return game.Binding{
		PassiveName: "Stoneborn",
		ActiveName:  "Stone Spikes",
		Passive:     game.PassiveFuncs{},
		Immunities:  immuneSquares(effects.StoneWall),
		Active: game.ActiveFuncs{
			TargetSquaresFunc: func(pc *game.Piece, b *game.Board, _ *effects.Ledger) game.Bitboard {
				return hostileTargets(pc, firstHits(b, pc.Square, diagonals, bal.Range), func(t *game.Piece) bool {
					return immobilizable(t, effects.Stunned)
				})
			},
			ExecuteFunc: func(_ context.Context, e *game.Engine, _ *game.Piece, target game.Square) bool {
				victim := e.Board().PieceAt(target)
				return victim != nil && victim.ApplyStatus(effects.Stunned, bal.Duration, false)
			},
		},
	}
}

func earthRook(owner *game.Piece, bal game.AbilityBalance) game.Binding {
	return game.Binding{
		PassiveName: "Rampart",
		ActiveName:  "Fortify",
		Passive: game.PassiveFuncs{
			OnAfterMoveFunc: func(e *game.Engine, pc *game.Piece, from, _ game.Square) {
				if e.Board().IsEmpty(from) {
					raiseWalls(e.Effects(), []game.Square{from}, rampartTurns, 1, pc.Color)
				}
			},
		},
		Active: game.ActiveFuncs{
			TargetSquaresFunc: func(pc *game.Piece, b *game.Board, _ *effects.Ledger) game.Bitboard {
				return selfTarget(pc, len(emptyNeighbors(b, pc.Square, true)) > 0)
			},
			ExecuteFunc: func(_ context.Context, e *game.Engine, pc *game.Piece, _ game.Square) bool {
				raiseWalls(e.Effects(), emptyNeighbors(e.Board(), pc.Square, true), bal.Duration, 2, pc.Color)
				return true
			},
		},
	}
}

// Landslide shoves the first enemy on a queen line one square further away
// and stuns it. Pawns are never shoved onto their promotion rank.
func earthQueen(owner *game.Piece, bal game.AbilityBalance) game.Binding {
	pushable := func(b *game.Board, pc, t *game.Piece) bool {
		if t.Type == game.King {
			return false
		}
		dest, ok := beyond(pc.Square, t.Square)
		if !ok || !b.CanLand(t, dest) {
			return false
		}
		return t.Type != game.Pawn || dest.Rank() != game.PromotionRank(t.Color)
	}
	return game.Binding{
		PassiveName: "Bedrock",
		ActiveName:  "Landslide",
		Passive: game.PassiveFuncs{
			OnBeforeCaptureFunc: func(_ *game.Engine, attacker, defender *game.Piece) bool {
				return defender != owner || attacker == nil || attacker.Type != game.Pawn
			},
		},
		Active: game.ActiveFuncs{
			TargetSquaresFunc: func(pc *game.Piece, b *game.Board, _ *effects.Ledger) game.Bitboard {
				return hostileTargets(pc, firstHits(b, pc.Square, allLines, bal.Range), func(t *game.Piece) bool {
					return pushable(b, pc, t)
				})
			},
			ExecuteFunc: func(ctx context.Context, e *game.Engine, pc *game.Piece, target game.Square) bool {
				victim := e.Board().PieceAt(target)
				if victim == nil {
					return false
				}
				dest, ok := beyond(pc.Square, target)
				if !ok {
					return false
				}
				err := e.Sequence(ctx,
					game.Step{Kind: game.StepRelocate, Piece: victim, To: dest},
					game.Step{Kind: game.StepCustom, Piece: pc, To: dest, Note: "quake", Effect: func(*game.StepContext) error {
						stun([]*game.Piece{victim}, bal.Duration)
						return nil
					}},
				)
				return err == nil
			},
		},
	}
}

func earthKing(owner *game.Piece, bal game.AbilityBalance) game.Binding {
	return game.Binding{
		PassiveName: "Bulwark",
		ActiveName:  "Sanctuary",
		Passive:     game.PassiveFuncs{},
		Immunities:  immune(effects.Stunned),
		Active: game.ActiveFuncs{
			TargetSquaresFunc: func(pc *game.Piece, b *game.Board, _ *effects.Ledger) game.Bitboard {
				return selfTarget(pc, len(emptyNeighbors(b, pc.Square, false)) > 0)
			},
			ExecuteFunc: func(_ context.Context, e *game.Engine, pc *game.Piece, _ game.Square) bool {
				raiseWalls(e.Effects(), emptyNeighbors(e.Board(), pc.Square, false), bal.Duration, 1, pc.Color)
				return true
			},
		},
	}
}
