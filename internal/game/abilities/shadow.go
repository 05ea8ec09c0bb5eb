package abilities

import (
	"context"

	"elemental_chess/internal/effects"
	"elemental_chess/internal/game"
	"elemental_chess/internal/shared"
)

func init() {
	mustRegister(game.ElementShadow, game.Pawn, shadowPawn)
	mustRegister(game.ElementShadow, game.Knight, shadowKnight)
	mustRegister(game.ElementShadow, game.Bishop, shadowBishop)
	mustRegister(game.ElementShadow, game.Rook, shadowRook)
	mustRegister(game.ElementShadow, game.Queen, shadowQueen)
	mustRegister(game.ElementShadow, game.King, shadowKing)
}

// vanishTurns keeps a self-applied veil through the owner's next turn.
const vanishTurns = 2

func veil(targets []*game.Piece, turns int) {
	for _, t := range targets {
		t.ApplyStatus(effects.Veiled, turns, false)
	}
}

// Slip lets the pawn step diagonally forward onto an empty square.
func shadowPawn(owner *game.Piece, bal game.AbilityBalance) game.Binding {
	return game.Binding{
		PassiveName: "Slip",
		ActiveName:  "Veil",
		Passive: game.PassiveFuncs{
			ModifyMoveGenerationFunc: func(moves game.Bitboard, pc *game.Piece, b *game.Board) game.Bitboard {
				game.PawnAttackSquares(pc).Iter(func(sq game.Square) {
					if b.IsEmpty(sq) {
						moves = moves.Add(sq)
					}
				})
				return moves
			},
		},
		Active: game.ActiveFuncs{
			TargetSquaresFunc: func(pc *game.Piece, b *game.Board, _ *effects.Ledger) game.Bitboard {
				var out game.Bitboard
				for _, friend := range append(b.FriendsWithin(pc.Color, pc.Square, 1), pc) {
					if !friend.HasStatus(effects.Veiled) && !friend.Immunities.HasStatus(effects.Veiled) {
						out = out.Add(friend.Square)
					}
				}
				return out
			},
			ExecuteFunc: func(_ context.Context, e *game.Engine, _ *game.Piece, target game.Square) bool {
				friend := e.Board().PieceAt(target)
				return friend != nil && friend.ApplyStatus(effects.Veiled, bal.Duration, false)
			},
		},
	}
}

// Umbral Swap trades places with any friendly piece but the king. Both
// pieces must be able to stand on the other's square.
func shadowKnight(owner *game.Piece, bal game.AbilityBalance) game.Binding {
	return game.Binding{
		PassiveName: "Phantom",
		ActiveName:  "Umbral Swap",
		Passive: game.PassiveFuncs{
			OnAfterMoveFunc: func(e *game.Engine, pc *game.Piece, from, _ game.Square) {
				if e.Board().IsEmpty(from) && e.Effects().TypeAt(from) == effects.SquareNone {
					e.Effects().Create(from, effects.ShadowDecoy, bal.Duration, pc.Color, 1)
				}
			},
		},
		Active: game.ActiveFuncs{
			TargetSquaresFunc: func(pc *game.Piece, b *game.Board, l *effects.Ledger) game.Bitboard {
				var out game.Bitboard
				for _, friend := range b.AllPieces(pc.Color) {
					if friend == pc || friend.Type == game.King {
						continue
					}
					if bal.Range > 0 && shared.Distance(pc.Square, friend.Square) > bal.Range {
						continue
					}
					if pc.BlockedBy(l, friend.Square) || friend.BlockedBy(l, pc.Square) {
						continue
					}
					out = out.Add(friend.Square)
				}
				return out
			},
			ExecuteFunc: func(ctx context.Context, e *game.Engine, pc *game.Piece, target game.Square) bool {
				return e.Sequence(ctx, game.Step{Kind: game.StepSwap, Piece: pc, To: target, Note: "swap"}) == nil
			},
		},
	}
}

// Umbral Guard refuses captures of the bishop while it is veiled.
func shadowBishop(owner *game.Piece, bal game.AbilityBalance) game.Binding {
	return game.Binding{
		PassiveName: "Umbral Guard",
		ActiveName:  "Umbral Step",
		Passive: game.PassiveFuncs{
			OnBeforeCaptureFunc: func(_ *game.Engine, _, defender *game.Piece) bool {
				return defender != owner || !owner.HasStatus(effects.Veiled)
			},
		},
		Active: game.ActiveFuncs{
			TargetSquaresFunc: func(pc *game.Piece, b *game.Board, _ *effects.Ledger) game.Bitboard {
				return phaseRays(b, pc, diagonals, bal.Range)
			},
			ExecuteFunc: func(ctx context.Context, e *game.Engine, pc *game.Piece, target game.Square) bool {
				return relocate(ctx, e, pc, target)
			},
		},
	}
}

func shadowRook(owner *game.Piece, bal game.AbilityBalance) game.Binding {
	return game.Binding{
		PassiveName: "Nightsight",
		ActiveName:  "Shroud",
		Passive:     game.PassiveFuncs{},
		Immunities:  immuneSquares(effects.ShadowDecoy),
		Active: game.ActiveFuncs{
			TargetSquaresFunc: func(pc *game.Piece, _ *game.Board, _ *effects.Ledger) game.Bitboard {
				return selfTarget(pc, !pc.HasStatus(effects.Veiled))
			},
			ExecuteFunc: func(_ context.Context, e *game.Engine, pc *game.Piece, _ game.Square) bool {
				b := e.Board()
				var around []game.Square
				game.OrthogonalTargets(pc.Square).Iter(func(sq game.Square) { around = append(around, sq) })
				scatter(e.Effects(), b, around, effects.ShadowVeil, bal.Duration, pc.Color)
				return pc.ApplyStatus(effects.Veiled, vanishTurns, false)
			},
		},
	}
}

// strikeLanding picks the first square next to the victim the queen may land
// on, in square order.
func strikeLanding(b *game.Board, pc, victim *game.Piece) (game.Square, bool) {
	for _, sq := range shared.Neighbors(victim.Square, 1) {
		if b.CanLand(pc, sq) || sq == pc.Square {
			return sq, true
		}
	}
	return 0, false
}

// Shadow Strike teleports next to an enemy and captures it. The two steps
// produce one history entry.
func shadowQueen(owner *game.Piece, bal game.AbilityBalance) game.Binding {
	return game.Binding{
		PassiveName: "Vanish",
		ActiveName:  "Shadow Strike",
		Passive: game.PassiveFuncs{
			OnAfterCaptureFunc: func(_ *game.Engine, attacker, _ *game.Piece) {
				if attacker == owner {
					owner.ApplyStatus(effects.Veiled, vanishTurns, false)
				}
			},
		},
		Active: game.ActiveFuncs{
			TargetSquaresFunc: func(pc *game.Piece, b *game.Board, _ *effects.Ledger) game.Bitboard {
				return hostileTargets(pc, b.EnemiesWithin(pc.Color, pc.Square, bal.Range), func(t *game.Piece) bool {
					_, ok := strikeLanding(b, pc, t)
					return t.Type != game.King && ok
				})
			},
			ExecuteFunc: func(ctx context.Context, e *game.Engine, pc *game.Piece, target game.Square) bool {
				b := e.Board()
				victim := b.PieceAt(target)
				if victim == nil {
					return false
				}
				landing, ok := strikeLanding(b, pc, victim)
				if !ok {
					return false
				}
				steps := []game.Step{{Kind: game.StepCapture, Piece: pc, To: target}}
				if landing != pc.Square {
					steps = append([]game.Step{{Kind: game.StepRelocate, Piece: pc, To: landing}}, steps...)
				}
				return e.Sequence(ctx, game.Terminal(steps...)...) == nil
			},
		},
	}
}

func shadowKing(owner *game.Piece, bal game.AbilityBalance) game.Binding {
	return game.Binding{
		PassiveName: "Umbral Aura",
		ActiveName:  "Decoy Ring",
		Passive: game.PassiveFuncs{
			OnTurnStartFunc: func(e *game.Engine, pc *game.Piece, current game.Color) {
				if current != pc.Color.Opposite() {
					return
				}
				veil(e.Board().FriendsWithin(pc.Color, pc.Square, 1), 1)
			},
		},
		Active: game.ActiveFuncs{
			TargetSquaresFunc: func(pc *game.Piece, b *game.Board, _ *effects.Ledger) game.Bitboard {
				return selfTarget(pc, len(emptyNeighbors(b, pc.Square, false)) > 0)
			},
			ExecuteFunc: func(_ context.Context, e *game.Engine, pc *game.Piece, _ game.Square) bool {
				for _, sq := range emptyNeighbors(e.Board(), pc.Square, false) {
					e.Effects().Create(sq, effects.ShadowDecoy, bal.Duration, pc.Color, 1)
				}
				return true
			},
		},
	}
}
