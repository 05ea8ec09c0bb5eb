// Package cooldown tracks the recharge state of a single active ability.
package cooldown

import "fmt"

// Tracker counts owner turns until an active ability can be used again.
type Tracker struct {
	Remaining int `json:"remaining"`
	Max       int `json:"max"`
}

// New returns a ready tracker that recharges over max owner turns.
func New(max int) *Tracker {
	if max < 0 {
		max = 0
	}
	return &Tracker{Max: max}
}

func (t *Tracker) Ready() bool { return t == nil || t.Remaining <= 0 }

// Trigger starts a full recharge.
func (t *Tracker) Trigger() {
	if t == nil {
		return
	}
	t.Remaining = t.Max
}

// Tick advances the recharge by one owner turn.
func (t *Tracker) Tick() {
	if t == nil || t.Remaining <= 0 {
		return
	}
	t.Remaining--
}

// Reset makes the ability ready immediately.
func (t *Tracker) Reset() {
	if t == nil {
		return
	}
	t.Remaining = 0
}

func (t *Tracker) String() string {
	if t == nil {
		return "none"
	}
	if t.Ready() {
		return "ready"
	}
	return fmt.Sprintf("%d/%d", t.Remaining, t.Max)
}
