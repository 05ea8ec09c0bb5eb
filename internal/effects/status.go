package effects

// StatusType identifies a timed flag bound to a piece.
type StatusType uint8

const (
	Stunned StatusType = iota
	Singed
	Frozen
	Chilled
	Veiled
	Marked
)

// StatusTypeCount sizes per-status tables.
const StatusTypeCount = 6

func (t StatusType) String() string {
	switch t {
	case Stunned:
		return "Stunned"
	case Singed:
		return "Singed"
	case Frozen:
		return "Frozen"
	case Chilled:
		return "Chilled"
	case Veiled:
		return "Veiled"
	case Marked:
		return "Marked"
	default:
		return "?"
	}
}

func (t StatusType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// StatusEffect is one timed flag. Permanent effects ignore ticks and only
// clear through Trigger or Remove.
type StatusEffect struct {
	Type      StatusType `json:"type"`
	TurnsLeft int        `json:"turnsLeft"`
	Permanent bool       `json:"permanent,omitempty"`
}

// StatusSet holds at most one effect per type.
type StatusSet struct {
	slots [StatusTypeCount]StatusEffect
	live  uint8
}

func (s *StatusSet) bit(t StatusType) uint8 { return 1 << t }

// Add applies typ for the given number of turns. An existing effect of the
// same type is overwritten, never stacked. Non-permanent effects with no
// turns are ignored.
func (s *StatusSet) Add(typ StatusType, turns int, permanent bool) {
	if typ >= StatusTypeCount {
		return
	}
	if !permanent && turns <= 0 {
		return
	}
	s.slots[typ] = StatusEffect{Type: typ, TurnsLeft: turns, Permanent: permanent}
	s.live |= s.bit(typ)
}

func (s *StatusSet) Has(typ StatusType) bool {
	if typ >= StatusTypeCount {
		return false
	}
	return s.live&s.bit(typ) != 0
}

// Get returns the effect of typ if present.
func (s *StatusSet) Get(typ StatusType) (StatusEffect, bool) {
	if !s.Has(typ) {
		return StatusEffect{}, false
	}
	return s.slots[typ], true
}

// Remove clears typ and reports whether it was present.
func (s *StatusSet) Remove(typ StatusType) bool {
	if !s.Has(typ) {
		return false
	}
	s.slots[typ] = StatusEffect{}
	s.live &^= s.bit(typ)
	return true
}

// Trigger consumes a permanent-until-triggered effect. It reports whether the
// effect was present.
func (s *StatusSet) Trigger(typ StatusType) bool {
	eff, ok := s.Get(typ)
	if !ok || !eff.Permanent {
		return false
	}
	return s.Remove(typ)
}

// Tick decrements every non-permanent effect once and returns the types that
// expired.
func (s *StatusSet) Tick() []StatusType {
	var expired []StatusType
	for i := range s.slots {
		typ := StatusType(i)
		if !s.Has(typ) || s.slots[i].Permanent {
			continue
		}
		s.slots[i].TurnsLeft--
		if s.slots[i].TurnsLeft <= 0 {
			s.Remove(typ)
			expired = append(expired, typ)
		}
	}
	return expired
}

// Clear drops every effect.
func (s *StatusSet) Clear() { *s = StatusSet{} }

// Len returns the number of live effects.
func (s *StatusSet) Len() int {
	n := 0
	for i := range s.slots {
		if s.Has(StatusType(i)) {
			n++
		}
	}
	return n
}

// List returns the live effects ordered by type.
func (s *StatusSet) List() []StatusEffect {
	var out []StatusEffect
	for i := range s.slots {
		if s.Has(StatusType(i)) {
			out = append(out, s.slots[i])
		}
	}
	return out
}

// Immunities is a per-piece set over both status and square effect types.
type Immunities struct {
	status uint8
	square uint8
}

func (im *Immunities) GrantStatus(types ...StatusType) {
	for _, t := range types {
		im.status |= 1 << t
	}
}

func (im *Immunities) GrantSquare(types ...SquareEffectType) {
	for _, t := range types {
		im.square |= 1 << t
	}
}

func (im Immunities) HasStatus(t StatusType) bool { return im.status&(1<<t) != 0 }

func (im Immunities) HasSquare(t SquareEffectType) bool { return im.square&(1<<t) != 0 }

func (im Immunities) Empty() bool { return im.status == 0 && im.square == 0 }

// Merge returns the union of two immunity sets.
func (im Immunities) Merge(other Immunities) Immunities {
	return Immunities{status: im.status | other.status, square: im.square | other.square}
}

// StatusList and SquareList enumerate the set for display.
func (im Immunities) StatusList() []StatusType {
	var out []StatusType
	for i := 0; i < StatusTypeCount; i++ {
		if im.HasStatus(StatusType(i)) {
			out = append(out, StatusType(i))
		}
	}
	return out
}

func (im Immunities) SquareList() []SquareEffectType {
	var out []SquareEffectType
	for i := 1; i < SquareEffectCount; i++ {
		if im.HasSquare(SquareEffectType(i)) {
			out = append(out, SquareEffectType(i))
		}
	}
	return out
}
