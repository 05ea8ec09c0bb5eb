package game

import (
	"elemental_chess/internal/effects"
	"elemental_chess/internal/shared"
)

type moveDelta struct {
	dr int
	df int
}

var (
	rookDirections = [...]moveDelta{
		{dr: 1, df: 0},
		{dr: -1, df: 0},
		{dr: 0, df: 1},
		{dr: 0, df: -1},
	}
	bishopDirections = [...]moveDelta{
		{dr: 1, df: 1},
		{dr: 1, df: -1},
		{dr: -1, df: 1},
		{dr: -1, df: -1},
	}
	knightOffsets = [...]moveDelta{
		{dr: 2, df: 1},
		{dr: 1, df: 2},
		{dr: -1, df: 2},
		{dr: -2, df: 1},
		{dr: -2, df: -1},
		{dr: -1, df: -2},
		{dr: 1, df: -2},
		{dr: 2, df: -1},
	}
	kingOffsets = [...]moveDelta{
		{dr: 1, df: 0}, {dr: 1, df: 1}, {dr: 0, df: 1}, {dr: -1, df: 1},
		{dr: -1, df: 0}, {dr: -1, df: -1}, {dr: 0, df: -1}, {dr: 1, df: -1},
	}
)

// KnightTargets returns the knight-jump squares from sq.
func KnightTargets(sq Square) Bitboard { return stepTargets(sq, knightOffsets[:]) }

// KingTargets returns the squares adjacent to sq.
func KingTargets(sq Square) Bitboard { return stepTargets(sq, kingOffsets[:]) }

// OrthogonalTargets returns the four orthogonal neighbours of sq.
func OrthogonalTargets(sq Square) Bitboard { return stepTargets(sq, rookDirections[:]) }

// DiagonalTargets returns the four diagonal neighbours of sq.
func DiagonalTargets(sq Square) Bitboard { return stepTargets(sq, bishopDirections[:]) }

func stepTargets(sq Square, offsets []moveDelta) Bitboard {
	var out Bitboard
	for _, d := range offsets {
		if target, ok := shared.SquareFromCoords(sq.Rank()+d.dr, sq.File()+d.df); ok {
			out = out.Add(target)
		}
	}
	return out
}

// Forward returns the rank direction a colour's pawns advance in.
func Forward(c Color) int {
	if c == White {
		return 1
	}
	return -1
}

// PromotionRank returns the last rank for a colour's pawns.
func PromotionRank(c Color) int {
	if c == White {
		return 7
	}
	return 0
}

func pawnStartRank(c Color) int {
	if c == White {
		return 1
	}
	return 6
}

// geometry produces the raw per-type candidates, captures included and
// friendly squares excluded. Castling is only considered for legal-move
// generation because it depends on the enemy attack map.
func (b *Board) geometry(pc *Piece, castling bool) Bitboard {
	switch pc.Type {
	case Pawn:
		return b.pawnPushes(pc) | b.pawnCaptures(pc)
	case Knight:
		return KnightTargets(pc.Square) &^ b.occupancy[pc.Color]
	case Bishop:
		return b.slidingMoves(pc, bishopDirections[:], false)
	case Rook:
		return b.slidingMoves(pc, rookDirections[:], false)
	case Queen:
		return b.slidingMoves(pc, rookDirections[:], false) | b.slidingMoves(pc, bishopDirections[:], false)
	case King:
		moves := KingTargets(pc.Square) &^ b.occupancy[pc.Color]
		if castling {
			moves |= b.castleDestinations(pc)
		}
		return moves
	}
	return 0
}

func (b *Board) pawnPushes(pc *Piece) Bitboard {
	var moves Bitboard
	dir := Forward(pc.Color)
	rank, file := pc.Square.Rank(), pc.Square.File()
	one, ok := shared.SquareFromCoords(rank+dir, file)
	if !ok || b.grid[one] != nil {
		return 0
	}
	moves = moves.Add(one)
	if rank == pawnStartRank(pc.Color) && !pc.HasMoved {
		if two, ok := shared.SquareFromCoords(rank+2*dir, file); ok && b.grid[two] == nil {
			moves = moves.Add(two)
		}
	}
	return moves
}

// PawnAttackSquares returns the two forward diagonals regardless of occupancy.
func PawnAttackSquares(pc *Piece) Bitboard {
	var out Bitboard
	dir := Forward(pc.Color)
	for _, df := range []int{-1, 1} {
		if sq, ok := shared.SquareFromCoords(pc.Square.Rank()+dir, pc.Square.File()+df); ok {
			out = out.Add(sq)
		}
	}
	return out
}

func (b *Board) pawnCaptures(pc *Piece) Bitboard {
	return PawnAttackSquares(pc) & b.occupancy[pc.Color.Opposite()]
}

// slidingMoves walks each ray until it leaves the board or meets a piece.
// Rays also stop on an enemy shadow decoy, which remains a candidate. With
// attacksOnly the first blocker is included whatever its colour.
func (b *Board) slidingMoves(pc *Piece, directions []moveDelta, attacksOnly bool) Bitboard {
	var moves Bitboard
	for _, d := range directions {
		rank := pc.Square.Rank() + d.dr
		file := pc.Square.File() + d.df
		for {
			target, ok := shared.SquareFromCoords(rank, file)
			if !ok {
				break
			}
			occupant := b.grid[target]
			if occupant != nil {
				if attacksOnly || occupant.Color != pc.Color {
					moves = moves.Add(target)
				}
				break
			}
			moves = moves.Add(target)
			if b.stopsAtDecoy(pc, target) {
				break
			}
			rank += d.dr
			file += d.df
		}
	}
	return moves
}

// stopsAtDecoy reports whether an enemy decoy on sq ends pc's ray. Pieces
// immune to decoys see through them.
func (b *Board) stopsAtDecoy(pc *Piece, sq Square) bool {
	eff := b.ledger.At(sq)
	return eff != nil && eff.Type == effects.ShadowDecoy && eff.Owner != pc.Color &&
		!pc.Immunities.HasSquare(effects.ShadowDecoy)
}

func (b *Board) castleDestinations(pc *Piece) Bitboard {
	if pc.Type != King || pc.HasMoved {
		return 0
	}
	rank := pc.Square.Rank()
	file := pc.Square.File()
	enemy := pc.Color.Opposite()
	if b.IsSquareAttackedBy(pc.Square, enemy) {
		return 0
	}

	var out Bitboard
	sides := []struct {
		rookFile int
		step     int
	}{
		{rookFile: 7, step: 1},
		{rookFile: 0, step: -1},
	}
	for _, side := range sides {
		rookSq, ok := shared.SquareFromCoords(rank, side.rookFile)
		if !ok {
			continue
		}
		rook := b.grid[rookSq]
		if rook == nil || rook.Color != pc.Color || rook.Type != Rook || rook.HasMoved {
			continue
		}
		clear := true
		for f := file + side.step; f != side.rookFile; f += side.step {
			sq, _ := shared.SquareFromCoords(rank, f)
			if b.grid[sq] != nil {
				clear = false
				break
			}
		}
		if !clear {
			continue
		}
		dest, ok := shared.SquareFromCoords(rank, file+2*side.step)
		if !ok {
			continue
		}
		pass, _ := shared.SquareFromCoords(rank, file+side.step)
		if b.IsSquareAttackedBy(pass, enemy) || b.IsSquareAttackedBy(dest, enemy) {
			continue
		}
		if pc.BlockedBy(b.ledger, dest) || rook.BlockedBy(b.ledger, pass) {
			continue
		}
		out = out.Add(dest)
	}
	return out
}

// castleRookSquares returns the rook relocation implied by a king moving from
// from to to, if that move is a castle.
func castleRookSquares(king *Piece, from, to Square) (Square, Square, bool) {
	if king.Type != King || from.Rank() != to.Rank() {
		return 0, 0, false
	}
	df := to.File() - from.File()
	if df != 2 && df != -2 {
		return 0, 0, false
	}
	rank := from.Rank()
	if df > 0 {
		rookFrom, _ := shared.SquareFromCoords(rank, 7)
		rookTo, _ := shared.SquareFromCoords(rank, from.File()+1)
		return rookFrom, rookTo, true
	}
	rookFrom, _ := shared.SquareFromCoords(rank, 0)
	rookTo, _ := shared.SquareFromCoords(rank, from.File()-1)
	return rookFrom, rookTo, true
}

// PseudoMoves runs geometry through the mover's passive and removes friendly
// and effect-blocked squares. Status gates and check filtering are not
// applied.
func (b *Board) PseudoMoves(pc *Piece) Bitboard {
	moves := b.geometry(pc, true)
	if pc.Passive != nil {
		moves = pc.Passive.ModifyMoveGeneration(moves, pc, b)
	}
	return b.filterLandings(pc, moves)
}

func (b *Board) filterLandings(pc *Piece, moves Bitboard) Bitboard {
	moves &^= b.occupancy[pc.Color]
	moves = moves.Remove(pc.Square)
	moves.Iter(func(sq Square) {
		if pc.BlockedBy(b.ledger, sq) {
			moves = moves.Remove(sq)
		}
	})
	return moves
}

// attacksOf is the attack-map counterpart of PseudoMoves. Friendly blockers
// count as attacked so defended squares show up. Pawns attack their
// diagonals plus any capture a passive adds.
func (b *Board) attacksOf(pc *Piece) Bitboard {
	var atk Bitboard
	switch pc.Type {
	case Pawn:
		atk = PawnAttackSquares(pc)
		if pc.Passive != nil {
			base := b.geometry(pc, false)
			added := pc.Passive.ModifyMoveGeneration(base, pc, b) &^ base
			atk |= added & b.occupancy[pc.Color.Opposite()]
		}
	case Knight:
		atk = KnightTargets(pc.Square)
	case King:
		atk = KingTargets(pc.Square)
	case Bishop:
		atk = b.slidingMoves(pc, bishopDirections[:], true)
	case Rook:
		atk = b.slidingMoves(pc, rookDirections[:], true)
	case Queen:
		atk = b.slidingMoves(pc, rookDirections[:], true) | b.slidingMoves(pc, bishopDirections[:], true)
	}
	if pc.Type != Pawn && pc.Passive != nil {
		atk = pc.Passive.ModifyMoveGeneration(atk, pc, b)
	}
	atk = atk.Remove(pc.Square)
	atk.Iter(func(sq Square) {
		if pc.BlockedBy(b.ledger, sq) {
			atk = atk.Remove(sq)
		}
	})
	return atk
}
