package game

import (
	"fmt"

	"elemental_chess/internal/shared"
)

// AbilityBalance carries the tunable numbers of one (element, piece type)
// binding.
type AbilityBalance struct {
	Cooldown int `json:"cooldown"`
	Duration int `json:"duration"`
	Range    int `json:"range"`
	Radius   int `json:"radius"`
}

// BalanceTable is indexed by the same pair the ability factory resolves.
type BalanceTable [shared.ElementCount][shared.PieceTypeCount]AbilityBalance

// DefaultBalance returns the built-in tuning.
func DefaultBalance() BalanceTable {
	var t BalanceTable
	base := AbilityBalance{Cooldown: 3, Duration: 2, Range: 3, Radius: 1}
	for _, el := range shared.AllElements {
		for _, pt := range shared.AllPieceTypes {
			t[el][pt] = base
		}
	}

	for _, el := range shared.AllElements {
		t[el][Pawn] = AbilityBalance{Cooldown: 2, Duration: 1, Range: 1, Radius: 1}
		t[el][Queen].Cooldown = 4
		t[el][King].Cooldown = 5
	}

	t[ElementFire][Pawn].Duration = 2
	t[ElementFire][Knight] = AbilityBalance{Cooldown: 4, Duration: 2, Range: 3, Radius: 1}
	t[ElementFire][Bishop].Range = 4
	t[ElementFire][Rook] = AbilityBalance{Cooldown: 4, Duration: 2, Range: 3, Radius: 1}
	t[ElementFire][Queen] = AbilityBalance{Cooldown: 5, Duration: 2, Range: 4, Radius: 1}

	t[ElementIce][Pawn].Duration = 2
	t[ElementIce][Rook] = AbilityBalance{Cooldown: 4, Duration: 1, Range: 7, Radius: 1}
	t[ElementIce][Queen] = AbilityBalance{Cooldown: 5, Duration: 3, Range: 4, Radius: 1}
	t[ElementIce][King].Duration = 1

	t[ElementEarth][Pawn].Duration = 3
	t[ElementEarth][Knight].Duration = 1
	t[ElementEarth][Rook] = AbilityBalance{Cooldown: 3, Duration: 4, Range: 0, Radius: 0}
	t[ElementEarth][Queen].Range = 4
	t[ElementEarth][King].Duration = 2

	t[ElementLightning][Bishop].Duration = 3
	t[ElementLightning][Rook] = AbilityBalance{Cooldown: 5, Duration: 1, Range: 7, Radius: 0}
	t[ElementLightning][Queen] = AbilityBalance{Cooldown: 5, Duration: 2, Range: 3, Radius: 1}

	t[ElementShadow][Pawn].Duration = 2
	t[ElementShadow][Knight].Range = 0
	t[ElementShadow][Bishop].Range = 4
	t[ElementShadow][Queen] = AbilityBalance{Cooldown: 5, Duration: 1, Range: 5, Radius: 1}
	t[ElementShadow][King].Duration = 3
	return t
}

// For returns the tuning for a pair. Unknown elements get the zero value.
func (t *BalanceTable) For(el Element, pt PieceType) AbilityBalance {
	if !el.Valid() || int(pt) >= shared.PieceTypeCount {
		return AbilityBalance{}
	}
	return t[el][pt]
}

func (t *BalanceTable) Set(el Element, pt PieceType, bal AbilityBalance) {
	if !el.Valid() || int(pt) >= shared.PieceTypeCount {
		return
	}
	t[el][pt] = bal
}

// Validate rejects negative cooldowns, ranges and radii and non-positive
// durations.
func (t *BalanceTable) Validate() error {
	for _, el := range shared.AllElements {
		for _, pt := range shared.AllPieceTypes {
			b := t[el][pt]
			if b.Cooldown < 0 || b.Range < 0 || b.Radius < 0 || b.Duration < 1 {
				return fmt.Errorf("balance %s %s: %+v out of range", el, pt.Name(), b)
			}
		}
	}
	return nil
}
