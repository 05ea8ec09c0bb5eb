// Package effects holds the timed modifiers bound to board squares and to
// pieces: the square-effect ledger, per-piece status sets and immunities.
package effects

import (
	"sort"

	"elemental_chess/internal/shared"
)

// SquareEffectType identifies a timed modifier bound to a single square.
type SquareEffectType uint8

const (
	SquareNone SquareEffectType = iota
	Fire
	Ice
	StoneWall
	LightningField
	ShadowVeil
	ShadowDecoy
)

// SquareEffectCount sizes per-type tables, SquareNone included.
const SquareEffectCount = 7

func (t SquareEffectType) String() string {
	switch t {
	case SquareNone:
		return "None"
	case Fire:
		return "Fire"
	case Ice:
		return "Ice"
	case StoneWall:
		return "StoneWall"
	case LightningField:
		return "LightningField"
	case ShadowVeil:
		return "ShadowVeil"
	case ShadowDecoy:
		return "ShadowDecoy"
	default:
		return "?"
	}
}

func (t SquareEffectType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// BlocksMovement reports whether the effect removes move candidates that land
// on it. LightningField never blocks.
func (t SquareEffectType) BlocksMovement() bool { return t == Fire || t == StoneWall }

// SquareEffect is a timed modifier on one square. HP is only meaningful for
// stone walls.
type SquareEffect struct {
	Type      SquareEffectType `json:"type"`
	Square    shared.Square    `json:"square"`
	TurnsLeft int              `json:"turnsLeft"`
	Owner     shared.Color     `json:"owner"`
	HP        int              `json:"hp,omitempty"`
}

// Ledger stores at most one effect per square.
type Ledger struct {
	cells [64]*SquareEffect
}

func NewLedger() *Ledger { return &Ledger{} }

// Create replaces any effect on sq and returns the new effect. A hp below 1
// is raised to 1.
func (l *Ledger) Create(sq shared.Square, typ SquareEffectType, turns int, owner shared.Color, hp int) *SquareEffect {
	if typ == SquareNone || turns <= 0 {
		l.cells[sq] = nil
		return nil
	}
	if hp < 1 {
		hp = 1
	}
	eff := &SquareEffect{Type: typ, Square: sq, TurnsLeft: turns, Owner: owner, HP: hp}
	l.cells[sq] = eff
	return eff
}

// At returns the effect on sq, or nil.
func (l *Ledger) At(sq shared.Square) *SquareEffect { return l.cells[sq] }

// TypeAt returns the effect type on sq, SquareNone when empty.
func (l *Ledger) TypeAt(sq shared.Square) SquareEffectType {
	if eff := l.cells[sq]; eff != nil {
		return eff.Type
	}
	return SquareNone
}

// Blocks reports whether sq currently carries a movement-blocking effect.
func (l *Ledger) Blocks(sq shared.Square) bool {
	eff := l.cells[sq]
	return eff != nil && eff.Type.BlocksMovement()
}

// TickAll decrements every effect once. Effects reaching zero are detached
// from their square and returned.
func (l *Ledger) TickAll() []SquareEffect {
	var expired []SquareEffect
	for i, eff := range l.cells {
		if eff == nil {
			continue
		}
		eff.TurnsLeft--
		if eff.TurnsLeft <= 0 {
			expired = append(expired, *eff)
			l.cells[i] = nil
		}
	}
	return expired
}

// TakeDamage removes hp from the effect on sq and reports whether it was
// destroyed. Squares without an effect report false.
func (l *Ledger) TakeDamage(sq shared.Square, amount int) bool {
	eff := l.cells[sq]
	if eff == nil || amount <= 0 {
		return false
	}
	eff.HP -= amount
	if eff.HP <= 0 {
		l.cells[sq] = nil
		return true
	}
	return false
}

// Clear removes the effect on sq and reports whether one was present.
func (l *Ledger) Clear(sq shared.Square) bool {
	if l.cells[sq] == nil {
		return false
	}
	l.cells[sq] = nil
	return true
}

// ClearType removes every effect of the given type and returns how many were
// removed.
func (l *Ledger) ClearType(typ SquareEffectType) int {
	n := 0
	for i, eff := range l.cells {
		if eff != nil && eff.Type == typ {
			l.cells[i] = nil
			n++
		}
	}
	return n
}

// All returns copies of the live effects ordered by square.
func (l *Ledger) All() []SquareEffect {
	out := make([]SquareEffect, 0, 8)
	for _, eff := range l.cells {
		if eff != nil {
			out = append(out, *eff)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Square < out[j].Square })
	return out
}

// Len returns the number of live effects.
func (l *Ledger) Len() int {
	n := 0
	for _, eff := range l.cells {
		if eff != nil {
			n++
		}
	}
	return n
}

// Clone returns an independent copy of the ledger.
func (l *Ledger) Clone() *Ledger {
	out := &Ledger{}
	for i, eff := range l.cells {
		if eff != nil {
			cp := *eff
			out.cells[i] = &cp
		}
	}
	return out
}

// Restore overwrites the ledger with the contents of src.
func (l *Ledger) Restore(src *Ledger) {
	for i := range l.cells {
		l.cells[i] = nil
		if src != nil && src.cells[i] != nil {
			cp := *src.cells[i]
			l.cells[i] = &cp
		}
	}
}
