package abilities

import (
	"context"

	"elemental_chess/internal/effects"
	"elemental_chess/internal/game"
	"elemental_chess/internal/shared"
)

func init() {
	mustRegister(game.ElementIce, game.Pawn, icePawn)
	mustRegister(game.ElementIce, game.Knight, iceKnight)
	mustRegister(game.ElementIce, game.Bishop, iceBishop)
	mustRegister(game.ElementIce, game.Rook, iceRook)
	mustRegister(game.ElementIce, game.Queen, iceQueen)
	mustRegister(game.ElementIce, game.King, iceKing)
}

func chill(targets []*game.Piece, turns int) {
	for _, t := range targets {
		t.ApplyStatus(effects.Chilled, turns, false)
	}
}

func chillable(t *game.Piece) bool { return !t.Immunities.HasStatus(effects.Chilled) }

// Glide keeps the double push available after the pawn has moved.
func icePawn(owner *game.Piece, bal game.AbilityBalance) game.Binding {
	return game.Binding{
		PassiveName: "Glide",
		ActiveName:  "Frost Touch",
		Passive: game.PassiveFuncs{
			ModifyMoveGenerationFunc: func(moves game.Bitboard, pc *game.Piece, b *game.Board) game.Bitboard {
				dir := game.Forward(pc.Color)
				one, ok := shared.SquareFromCoords(pc.Square.Rank()+dir, pc.Square.File())
				if !ok || !b.IsEmpty(one) {
					return moves
				}
				two, ok := shared.SquareFromCoords(pc.Square.Rank()+2*dir, pc.Square.File())
				if ok && b.IsEmpty(two) {
					moves = moves.Add(two)
				}
				return moves
			},
		},
		Active: game.ActiveFuncs{
			TargetSquaresFunc: func(pc *game.Piece, b *game.Board, _ *effects.Ledger) game.Bitboard {
				return hostileTargets(pc, adjacentEnemies(b, pc), chillable)
			},
			ExecuteFunc: func(_ context.Context, e *game.Engine, _ *game.Piece, target game.Square) bool {
				victim := e.Board().PieceAt(target)
				return victim != nil && victim.ApplyStatus(effects.Chilled, bal.Duration, false)
			},
		},
	}
}

func iceKnight(owner *game.Piece, bal game.AbilityBalance) game.Binding {
	return game.Binding{
		PassiveName: "Rime Trail",
		ActiveName:  "Frost Nova",
		Passive: game.PassiveFuncs{
			OnAfterMoveFunc: func(e *game.Engine, pc *game.Piece, from, _ game.Square) {
				if e.Board().IsEmpty(from) {
					e.Effects().Create(from, effects.Ice, bal.Duration, pc.Color, 1)
				}
			},
		},
		Active: game.ActiveFuncs{
			CanActivateFunc: func(pc *game.Piece, b *game.Board, _ *effects.Ledger) bool {
				return len(adjacentEnemies(b, pc)) > 0
			},
			TargetSquaresFunc: func(pc *game.Piece, b *game.Board, _ *effects.Ledger) game.Bitboard {
				return selfTarget(pc, len(adjacentEnemies(b, pc)) > 0)
			},
			ExecuteFunc: func(_ context.Context, e *game.Engine, pc *game.Piece, _ game.Square) bool {
				chill(adjacentEnemies(e.Board(), pc), bal.Duration)
				return true
			},
		},
	}
}

func iceBishop(owner *game.Piece, bal game.AbilityBalance) game.Binding {
	im := immune(effects.Chilled)
	im.GrantSquare(effects.Ice)
	return game.Binding{
		PassiveName: "Frostborn",
		ActiveName:  "Ice Path",
		Passive:     game.PassiveFuncs{},
		Immunities:  im,
		Active: game.ActiveFuncs{
			TargetSquaresFunc: func(pc *game.Piece, b *game.Board, _ *effects.Ledger) game.Bitboard {
				return openRays(b, pc.Square, diagonals, bal.Range)
			},
			ExecuteFunc: func(_ context.Context, e *game.Engine, pc *game.Piece, target game.Square) bool {
				scatter(e.Effects(), e.Board(), squaresBetween(pc.Square, target), effects.Ice, bal.Duration, pc.Color)
				return true
			},
		},
	}
}

// Permafrost refuses captures of the rook by chilled attackers.
func iceRook(owner *game.Piece, bal game.AbilityBalance) game.Binding {
	return game.Binding{
		PassiveName: "Permafrost",
		ActiveName:  "Freeze",
		Passive: game.PassiveFuncs{
			OnBeforeCaptureFunc: func(_ *game.Engine, attacker, defender *game.Piece) bool {
				return defender != owner || attacker == nil || !attacker.HasStatus(effects.Chilled)
			},
		},
		Active: game.ActiveFuncs{
			TargetSquaresFunc: func(pc *game.Piece, b *game.Board, _ *effects.Ledger) game.Bitboard {
				return hostileTargets(pc, firstHits(b, pc.Square, orthogonals, bal.Range), func(t *game.Piece) bool {
					return immobilizable(t, effects.Frozen)
				})
			},
			ExecuteFunc: func(_ context.Context, e *game.Engine, _ *game.Piece, target game.Square) bool {
				victim := e.Board().PieceAt(target)
				return victim != nil && victim.ApplyStatus(effects.Frozen, bal.Duration, false)
			},
		},
	}
}

// Blizzard puts out fire in its area before icing it over.
func iceQueen(owner *game.Piece, bal game.AbilityBalance) game.Binding {
	im := immune(effects.Chilled, effects.Frozen)
	im.GrantSquare(effects.Ice)
	return game.Binding{
		PassiveName: "Glacial Heart",
		ActiveName:  "Blizzard",
		Passive:     game.PassiveFuncs{},
		Immunities:  im,
		Active: game.ActiveFuncs{
			CanActivateFunc: func(pc *game.Piece, b *game.Board, _ *effects.Ledger) bool {
				return len(b.EnemiesWithin(pc.Color, pc.Square, bal.Range)) > 0
			},
			TargetSquaresFunc: func(pc *game.Piece, b *game.Board, _ *effects.Ledger) game.Bitboard {
				return b.EmptyWithin(pc.Square, bal.Range)
			},
			ExecuteFunc: func(_ context.Context, e *game.Engine, pc *game.Piece, target game.Square) bool {
				l := e.Effects()
				area := append(shared.Neighbors(target, bal.Radius), target)
				for _, sq := range area {
					if l.TypeAt(sq) == effects.Fire {
						l.Clear(sq)
					}
				}
				scatter(l, e.Board(), area, effects.Ice, bal.Duration, pc.Color)
				chill(e.Board().EnemiesWithin(pc.Color, target, bal.Radius), bal.Duration)
				return true
			},
		},
	}
}

func iceKing(owner *game.Piece, bal game.AbilityBalance) game.Binding {
	return game.Binding{
		PassiveName: "Frost Aura",
		ActiveName:  "Flash Freeze",
		Passive: game.PassiveFuncs{
			OnTurnStartFunc: func(e *game.Engine, pc *game.Piece, current game.Color) {
				if current == pc.Color.Opposite() {
					chill(adjacentEnemies(e.Board(), pc), 1)
				}
			},
		},
		Active: game.ActiveFuncs{
			TargetSquaresFunc: func(pc *game.Piece, b *game.Board, _ *effects.Ledger) game.Bitboard {
				return hostileTargets(pc, adjacentEnemies(b, pc), func(t *game.Piece) bool {
					return immobilizable(t, effects.Frozen)
				})
			},
			ExecuteFunc: func(_ context.Context, e *game.Engine, _ *game.Piece, target game.Square) bool {
				victim := e.Board().PieceAt(target)
				return victim != nil && victim.ApplyStatus(effects.Frozen, bal.Duration, false)
			},
		},
	}
}
