package game

import (
	"elemental_chess/internal/cooldown"
	"elemental_chess/internal/effects"
	"elemental_chess/internal/shared"
)

type (
	Color     = shared.Color
	PieceType = shared.PieceType
	Element   = shared.Element
	Square    = shared.Square
)

const (
	White = shared.White
	Black = shared.Black

	Pawn   = shared.Pawn
	Knight = shared.Knight
	Bishop = shared.Bishop
	Rook   = shared.Rook
	Queen  = shared.Queen
	King   = shared.King

	ElementFire      = shared.ElementFire
	ElementIce       = shared.ElementIce
	ElementEarth     = shared.ElementEarth
	ElementLightning = shared.ElementLightning
	ElementShadow    = shared.ElementShadow
	ElementNone      = shared.ElementNone
)

// PieceValues is the material table used by scoring and trade evaluation.
var PieceValues = [shared.PieceTypeCount]int{
	Pawn:   1,
	Knight: 3,
	Bishop: 3,
	Rook:   5,
	Queen:  9,
	King:   0,
}

// Piece is a single piece on the board. The board owns it; the elemental
// fields are only set when the piece is bound to an element.
type Piece struct {
	ID       int
	Type     PieceType
	Color    Color
	Square   Square
	HasMoved bool

	Element     Element
	Passive     Passive
	Active      Active
	PassiveName string
	ActiveName  string
	Cooldown    *cooldown.Tracker
	Statuses    effects.StatusSet
	Immunities  effects.Immunities
}

func (p *Piece) Elemental() bool { return p != nil && p.Element.Valid() }

func (p *Piece) Value() int { return PieceValues[p.Type] }

func (p *Piece) IsSlider() bool {
	return p.Type == Bishop || p.Type == Rook || p.Type == Queen
}

func (p *Piece) HasStatus(t effects.StatusType) bool { return p.Statuses.Has(t) }

// ApplyStatus adds a status unless the piece is immune to it. It reports
// whether the status landed.
func (p *Piece) ApplyStatus(t effects.StatusType, turns int, permanent bool) bool {
	if p == nil || p.Immunities.HasStatus(t) {
		return false
	}
	if !permanent && turns <= 0 {
		return false
	}
	p.Statuses.Add(t, turns, permanent)
	return true
}

// Immobile pieces generate no moves.
func (p *Piece) Immobile() bool {
	return p.Statuses.Has(effects.Stunned) || p.Statuses.Has(effects.Frozen)
}

// CanUseActive reports whether the piece's statuses allow activating its
// ability. Singed pieces can still move.
func (p *Piece) CanUseActive() bool {
	return !p.Immobile() && !p.Statuses.Has(effects.Singed)
}

// BlockedBy reports whether the effect on sq stops this piece from landing
// there.
func (p *Piece) BlockedBy(l *effects.Ledger, sq Square) bool {
	typ := l.TypeAt(sq)
	return typ.BlocksMovement() && !p.Immunities.HasSquare(typ)
}

func (p *Piece) String() string {
	if p == nil {
		return "none"
	}
	return p.Color.String() + " " + p.Type.Name() + "@" + p.Square.String()
}

func (p *Piece) clone() Piece {
	cp := *p
	if p.Cooldown != nil {
		tr := *p.Cooldown
		cp.Cooldown = &tr
	}
	return cp
}
