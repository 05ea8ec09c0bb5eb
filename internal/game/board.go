package game

import (
	"fmt"

	"elemental_chess/internal/effects"
	"elemental_chess/internal/shared"
)

// Board holds piece placement, per-colour occupancy and the derived attack
// maps. Attack data is recalculated lazily: every mutation marks it dirty and
// the next attack or check query rebuilds it.
type Board struct {
	grid      [64]*Piece
	occupancy [2]Bitboard
	attacks   [2]Bitboard
	inCheck   [2]bool
	dirty     bool
	ledger    *effects.Ledger
}

func NewBoard(ledger *effects.Ledger) *Board {
	if ledger == nil {
		ledger = effects.NewLedger()
	}
	return &Board{ledger: ledger, dirty: true}
}

func (b *Board) Effects() *effects.Ledger { return b.ledger }

func (b *Board) PieceAt(sq Square) *Piece { return b.grid[sq] }

// At returns the piece at board coordinates, nil when empty or off-board.
func (b *Board) At(x, y int) *Piece {
	sq, ok := shared.SquareAt(x, y)
	if !ok {
		return nil
	}
	return b.grid[sq]
}

func (b *Board) IsEmpty(sq Square) bool { return b.grid[sq] == nil }

func (b *Board) InBounds(x, y int) bool { return shared.InBounds(x, y) }

func (b *Board) Occupancy(c Color) Bitboard { return b.occupancy[c] }

func (b *Board) AllOccupancy() Bitboard { return b.occupancy[White] | b.occupancy[Black] }

// PlacePiece puts pc on an empty square.
func (b *Board) PlacePiece(pc *Piece, sq Square) error {
	if pc == nil {
		return ErrNoPiece
	}
	if b.grid[sq] != nil {
		return fmt.Errorf("%w: %s", ErrSquareOccupied, sq)
	}
	pc.Square = sq
	b.grid[sq] = pc
	b.occupancy[pc.Color] = b.occupancy[pc.Color].Add(sq)
	b.dirty = true
	return nil
}

// MovePiece relocates the piece on from to the empty square to. Captures
// must remove the victim first.
func (b *Board) MovePiece(from, to Square) error {
	pc := b.grid[from]
	if pc == nil {
		return fmt.Errorf("%w: %s", ErrNoPiece, from)
	}
	if from == to {
		return nil
	}
	if b.grid[to] != nil {
		return fmt.Errorf("%w: %s", ErrSquareOccupied, to)
	}
	b.grid[from] = nil
	b.grid[to] = pc
	pc.Square = to
	b.occupancy[pc.Color] = b.occupancy[pc.Color].Remove(from).Add(to)
	b.dirty = true
	return nil
}

// RemovePiece takes the piece off sq and returns it. The piece keeps its last
// square for hooks that need it.
func (b *Board) RemovePiece(sq Square) *Piece {
	pc := b.grid[sq]
	if pc == nil {
		return nil
	}
	b.grid[sq] = nil
	b.occupancy[pc.Color] = b.occupancy[pc.Color].Remove(sq)
	b.dirty = true
	return pc
}

// SwapPieces exchanges the occupants of two occupied squares in one step.
func (b *Board) SwapPieces(a, c Square) error {
	pa, pc := b.grid[a], b.grid[c]
	if pa == nil {
		return fmt.Errorf("%w: %s", ErrNoPiece, a)
	}
	if pc == nil {
		return fmt.Errorf("%w: %s", ErrNoPiece, c)
	}
	b.occupancy[pa.Color] = b.occupancy[pa.Color].Remove(a)
	b.occupancy[pc.Color] = b.occupancy[pc.Color].Remove(c)
	b.grid[a], b.grid[c] = pc, pa
	pa.Square, pc.Square = c, a
	b.occupancy[pa.Color] = b.occupancy[pa.Color].Add(c)
	b.occupancy[pc.Color] = b.occupancy[pc.Color].Add(a)
	b.dirty = true
	return nil
}

func (b *Board) Clear() {
	b.grid = [64]*Piece{}
	b.occupancy = [2]Bitboard{}
	b.dirty = true
}

// AllPieces returns the pieces of one colour in square order.
func (b *Board) AllPieces(c Color) []*Piece {
	out := make([]*Piece, 0, b.occupancy[c].Count())
	b.occupancy[c].Iter(func(sq Square) {
		if pc := b.grid[sq]; pc != nil {
			out = append(out, pc)
		}
	})
	return out
}

func (b *Board) King(c Color) *Piece {
	for _, pc := range b.AllPieces(c) {
		if pc.Type == King {
			return pc
		}
	}
	return nil
}

// RecalculateAttacks rebuilds both attack maps and the check flags.
func (b *Board) RecalculateAttacks() {
	for _, c := range [2]Color{White, Black} {
		var atk Bitboard
		for _, pc := range b.AllPieces(c) {
			atk |= b.attacksOf(pc)
		}
		b.attacks[c] = atk
	}
	for _, c := range [2]Color{White, Black} {
		king := b.King(c)
		b.inCheck[c] = king != nil && b.attacks[c.Opposite()].Has(king.Square)
	}
	b.dirty = false
}

func (b *Board) ensureAttacks() {
	if b.dirty {
		b.RecalculateAttacks()
	}
}

// Attacks returns every square the given colour currently attacks.
func (b *Board) Attacks(c Color) Bitboard {
	b.ensureAttacks()
	return b.attacks[c]
}

func (b *Board) IsSquareAttackedBy(sq Square, c Color) bool {
	b.ensureAttacks()
	return b.attacks[c].Has(sq)
}

func (b *Board) IsKingInCheck(c Color) bool {
	b.ensureAttacks()
	return b.inCheck[c]
}

// Verify checks that every piece's recorded square agrees with the grid and
// the occupancy bitboards.
func (b *Board) Verify() error {
	seen := make(map[*Piece]Square, 32)
	for idx, pc := range b.grid {
		sq := Square(idx)
		if pc == nil {
			if b.AllOccupancy().Has(sq) {
				return fmt.Errorf("occupancy set on empty square %s", sq)
			}
			continue
		}
		if pc.Square != sq {
			return fmt.Errorf("piece %d recorded at %s but stored at %s", pc.ID, pc.Square, sq)
		}
		if prev, dup := seen[pc]; dup {
			return fmt.Errorf("piece %d stored at both %s and %s", pc.ID, prev, sq)
		}
		seen[pc] = sq
		if !b.occupancy[pc.Color].Has(sq) || b.occupancy[pc.Color.Opposite()].Has(sq) {
			return fmt.Errorf("occupancy mismatch at %s", sq)
		}
	}
	return nil
}

// rebuildOccupancy derives occupancy from the grid after a bulk restore.
func (b *Board) rebuildOccupancy() {
	b.occupancy = [2]Bitboard{}
	for idx, pc := range b.grid {
		if pc != nil {
			b.occupancy[pc.Color] = b.occupancy[pc.Color].Add(Square(idx))
		}
	}
	b.dirty = true
}
