package abilities

import (
	"context"

	"elemental_chess/internal/effects"
	"elemental_chess/internal/game"
	"elemental_chess/internal/shared"
)

func init() {
	mustRegister(game.ElementFire, game.Pawn, firePawn)
	mustRegister(game.ElementFire, game.Knight, fireKnight)
	mustRegister(game.ElementFire, game.Bishop, fireBishop)
	mustRegister(game.ElementFire, game.Rook, fireRook)
	mustRegister(game.ElementFire, game.Queen, fireQueen)
	mustRegister(game.ElementFire, game.King, fireKing)
}

// singe applies Singed to every enemy in the list.
func singe(targets []*game.Piece, turns int) {
	for _, t := range targets {
		t.ApplyStatus(effects.Singed, turns, false)
	}
}

func firePawn(owner *game.Piece, bal game.AbilityBalance) game.Binding {
	return game.Binding{
		PassiveName: "Ember",
		ActiveName:  "Flare",
		Passive: game.PassiveFuncs{
			OnPieceCapturedFunc: func(e *game.Engine, captured, capturer *game.Piece) {
				e.Effects().Create(captured.Square, effects.Fire, bal.Duration, captured.Color, 1)
				if capturer != nil {
					capturer.ApplyStatus(effects.Singed, bal.Duration, false)
				}
			},
		},
		Active: game.ActiveFuncs{
			TargetSquaresFunc: func(pc *game.Piece, b *game.Board, _ *effects.Ledger) game.Bitboard {
				return hostileTargets(pc, adjacentEnemies(b, pc), func(t *game.Piece) bool {
					return !t.Immunities.HasStatus(effects.Singed)
				})
			},
			ExecuteFunc: func(_ context.Context, e *game.Engine, pc *game.Piece, target game.Square) bool {
				victim := e.Board().PieceAt(target)
				return victim != nil && victim.ApplyStatus(effects.Singed, bal.Duration, false)
			},
		},
	}
}

// Meteor Leap teleports along bishop lines and scorches the landing area.
// Friendly pieces in the area, the knight included, are never touched.
func fireKnight(owner *game.Piece, bal game.AbilityBalance) game.Binding {
	return game.Binding{
		PassiveName: "Scorched Trail",
		ActiveName:  "Meteor Leap",
		Passive: game.PassiveFuncs{
			OnAfterMoveFunc: func(e *game.Engine, pc *game.Piece, from, _ game.Square) {
				if e.Board().IsEmpty(from) {
					e.Effects().Create(from, effects.Fire, bal.Duration, pc.Color, 1)
				}
			},
		},
		Active: game.ActiveFuncs{
			TargetSquaresFunc: func(pc *game.Piece, b *game.Board, _ *effects.Ledger) game.Bitboard {
				return phaseRays(b, pc, diagonals, bal.Range)
			},
			ExecuteFunc: func(ctx context.Context, e *game.Engine, pc *game.Piece, target game.Square) bool {
				impact := func(sc *game.StepContext) error {
					meteorImpact(sc.Engine, pc, bal)
					return nil
				}
				err := e.Sequence(ctx,
					game.Step{Kind: game.StepRelocate, Piece: pc, To: target},
					game.Step{Kind: game.StepCustom, Piece: pc, To: target, Effect: impact, Note: "impact"},
				)
				return err == nil
			},
		},
	}
}

func meteorImpact(e *game.Engine, pc *game.Piece, bal game.AbilityBalance) {
	b := e.Board()
	l := e.Effects()
	for _, sq := range shared.Neighbors(pc.Square, max(bal.Radius, 1)) {
		occupant := b.PieceAt(sq)
		switch {
		case occupant == nil:
			scatter(l, b, []game.Square{sq}, effects.Fire, bal.Duration, pc.Color)
		case occupant.Color != pc.Color:
			occupant.ApplyStatus(effects.Singed, bal.Duration, false)
		}
	}
}

func fireBishop(owner *game.Piece, bal game.AbilityBalance) game.Binding {
	return game.Binding{
		PassiveName: "Flameborn",
		ActiveName:  "Fire Line",
		Passive:     game.PassiveFuncs{},
		Immunities:  immuneSquares(effects.Fire),
		Active: game.ActiveFuncs{
			TargetSquaresFunc: func(pc *game.Piece, b *game.Board, _ *effects.Ledger) game.Bitboard {
				return openRays(b, pc.Square, diagonals, bal.Range)
			},
			ExecuteFunc: func(_ context.Context, e *game.Engine, pc *game.Piece, target game.Square) bool {
				scatter(e.Effects(), e.Board(), squaresBetween(pc.Square, target), effects.Fire, bal.Duration, pc.Color)
				return true
			},
		},
	}
}

func fireRook(owner *game.Piece, bal game.AbilityBalance) game.Binding {
	return game.Binding{
		PassiveName: "Blaze",
		ActiveName:  "Firewall",
		Passive: game.PassiveFuncs{
			OnAfterCaptureFunc: func(e *game.Engine, attacker, _ *game.Piece) {
				if attacker != owner {
					return
				}
				var near []*game.Piece
				for _, pc := range adjacentEnemies(e.Board(), owner) {
					if shared.Orthogonal(owner.Square, pc.Square) {
						near = append(near, pc)
					}
				}
				singe(near, 1)
			},
		},
		Active: game.ActiveFuncs{
			TargetSquaresFunc: func(pc *game.Piece, b *game.Board, _ *effects.Ledger) game.Bitboard {
				return openRays(b, pc.Square, orthogonals, 1)
			},
			ExecuteFunc: func(_ context.Context, e *game.Engine, pc *game.Piece, target game.Square) bool {
				wall := []game.Square{target}
				for _, d := range []int{-1, 1} {
					r, f := target.Rank(), target.File()
					if target.Rank() == pc.Square.Rank() {
						r += d
					} else {
						f += d
					}
					if sq, ok := shared.SquareFromCoords(r, f); ok {
						wall = append(wall, sq)
					}
				}
				scatter(e.Effects(), e.Board(), wall, effects.Fire, bal.Duration, pc.Color)
				return true
			},
		},
	}
}

func fireQueen(owner *game.Piece, bal game.AbilityBalance) game.Binding {
	im := immune(effects.Singed)
	im.GrantSquare(effects.Fire)
	return game.Binding{
		PassiveName: "Heart of Flame",
		ActiveName:  "Inferno",
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
				area := append(shared.Neighbors(target, bal.Radius), target)
				scatter(e.Effects(), e.Board(), area, effects.Fire, bal.Duration, pc.Color)
				singe(e.Board().EnemiesWithin(pc.Color, target, bal.Radius), bal.Duration)
				return true
			},
		},
	}
}

func fireKing(owner *game.Piece, bal game.AbilityBalance) game.Binding {
	return game.Binding{
		PassiveName: "Hearth",
		ActiveName:  "Cauterize",
		Passive: game.PassiveFuncs{
			OnTurnStartFunc: func(e *game.Engine, pc *game.Piece, current game.Color) {
				if current != pc.Color {
					return
				}
				for _, friend := range append(e.Board().FriendsWithin(pc.Color, pc.Square, 1), pc) {
					friend.Statuses.Remove(effects.Chilled)
					friend.Statuses.Remove(effects.Frozen)
				}
			},
		},
		Active: game.ActiveFuncs{
			TargetSquaresFunc: func(pc *game.Piece, b *game.Board, _ *effects.Ledger) game.Bitboard {
				var out game.Bitboard
				for _, friend := range append(b.FriendsWithin(pc.Color, pc.Square, 1), pc) {
					if afflicted(friend) {
						out = out.Add(friend.Square)
					}
				}
				return out
			},
			ExecuteFunc: func(_ context.Context, e *game.Engine, _ *game.Piece, target game.Square) bool {
				friend := e.Board().PieceAt(target)
				if friend == nil {
					return false
				}
				for _, t := range afflictions {
					friend.Statuses.Remove(t)
				}
				return true
			},
		},
	}
}

var afflictions = []effects.StatusType{effects.Stunned, effects.Singed, effects.Frozen, effects.Chilled, effects.Marked}

func afflicted(pc *game.Piece) bool {
	for _, t := range afflictions {
		if pc.HasStatus(t) {
			return true
		}
	}
	return false
}
