package game

import (
	"elemental_chess/internal/effects"
	"elemental_chess/internal/shared"
)

// LegalMoves returns the destinations pc may move to: pseudo moves gated by
// statuses and filtered for own-king safety.
func (b *Board) LegalMoves(pc *Piece) Bitboard {
	if pc == nil || b.grid[pc.Square] != pc {
		return 0
	}
	if pc.Immobile() {
		return 0
	}
	moves := b.PseudoMoves(pc)
	if pc.HasStatus(effects.Chilled) && (pc.IsSlider() || pc.Type == Pawn) {
		moves &= KingTargets(pc.Square)
	}
	return b.filterChecks(pc, moves)
}

func (b *Board) filterChecks(pc *Piece, moves Bitboard) Bitboard {
	moves.Iter(func(to Square) {
		if !b.LeavesKingSafe(pc, to) {
			moves = moves.Remove(to)
		}
	})
	return moves
}

// LeavesKingSafe provisionally plays pc to the destination, recalculates
// attacks and reports whether its own king is out of check. The board is
// restored either way.
func (b *Board) LeavesKingSafe(pc *Piece, to Square) bool {
	undo := b.provisional(pc, to)
	safe := !b.IsKingInCheck(pc.Color)
	undo()
	return safe
}

// GivesCheck reports whether playing pc to the destination checks the enemy
// king.
func (b *Board) GivesCheck(pc *Piece, to Square) bool {
	undo := b.provisional(pc, to)
	check := b.IsKingInCheck(pc.Color.Opposite())
	undo()
	return check
}

// Simulate plays pc to the destination, runs fn against the resulting board
// and restores it.
func (b *Board) Simulate(pc *Piece, to Square, fn func(*Board)) {
	undo := b.provisional(pc, to)
	fn(b)
	undo()
}

func (b *Board) provisional(pc *Piece, to Square) func() {
	from := pc.Square
	victim := b.grid[to]
	if victim != nil && victim.Color != pc.Color {
		b.RemovePiece(to)
	} else {
		victim = nil
	}
	rookFrom, rookTo, castle := castleRookSquares(pc, from, to)
	var rook *Piece
	if castle {
		rook = b.grid[rookFrom]
		if rook == nil || b.grid[rookTo] != nil {
			castle = false
		}
	}
	if err := b.MovePiece(from, to); err != nil {
		if victim != nil {
			_ = b.PlacePiece(victim, to)
		}
		return func() {}
	}
	if castle {
		_ = b.MovePiece(rookFrom, rookTo)
	}
	return func() {
		if castle {
			_ = b.MovePiece(rookTo, rookFrom)
		}
		_ = b.MovePiece(to, from)
		if victim != nil {
			_ = b.PlacePiece(victim, to)
		}
		b.dirty = true
	}
}

// HasLegalMove reports whether any piece of colour c can move.
func (b *Board) HasLegalMove(c Color) bool {
	for _, pc := range b.AllPieces(c) {
		if !b.LegalMoves(pc).Empty() {
			return true
		}
	}
	return false
}

// CanLand reports whether pc may be set down on sq by an ability: the square
// is on the board, empty and not blocked for pc.
func (b *Board) CanLand(pc *Piece, sq Square) bool {
	return b.grid[sq] == nil && !pc.BlockedBy(b.ledger, sq)
}

// EmptyWithin returns the empty squares within the Chebyshev radius of
// center.
func (b *Board) EmptyWithin(center Square, radius int) Bitboard {
	var out Bitboard
	for _, sq := range shared.Neighbors(center, radius) {
		if b.grid[sq] == nil {
			out = out.Add(sq)
		}
	}
	return out
}

// EnemiesWithin returns enemy pieces of c within the radius of center, in
// square order.
func (b *Board) EnemiesWithin(c Color, center Square, radius int) []*Piece {
	var out []*Piece
	for _, sq := range shared.Neighbors(center, radius) {
		if pc := b.grid[sq]; pc != nil && pc.Color != c {
			out = append(out, pc)
		}
	}
	return out
}

// FriendsWithin returns friendly pieces of c within the radius of center.
func (b *Board) FriendsWithin(c Color, center Square, radius int) []*Piece {
	var out []*Piece
	for _, sq := range shared.Neighbors(center, radius) {
		if pc := b.grid[sq]; pc != nil && pc.Color == c {
			out = append(out, pc)
		}
	}
	return out
}
