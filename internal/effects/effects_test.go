package effects

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"elemental_chess/internal/shared"
)

func TestLedgerCreateReplaces(t *testing.T) {
	l := NewLedger()
	sq := shared.MustSquare("e4")

	l.Create(sq, Fire, 2, shared.White, 0)
	l.Create(sq, Ice, 3, shared.Black, 0)

	eff := l.At(sq)
	require.NotNil(t, eff)
	assert.Equal(t, Ice, eff.Type)
	assert.Equal(t, 3, eff.TurnsLeft)
	assert.Equal(t, shared.Black, eff.Owner)
	assert.Equal(t, 1, l.Len())
}

func TestLedgerFireDurationOne(t *testing.T) {
	l := NewLedger()
	sq := shared.MustSquare("d5")
	l.Create(sq, Fire, 1, shared.White, 0)
	require.True(t, l.Blocks(sq))

	expired := l.TickAll()
	require.Len(t, expired, 1)
	assert.Equal(t, Fire, expired[0].Type)
	assert.Nil(t, l.At(sq))
	assert.False(t, l.Blocks(sq))
}

func TestLedgerWallDamageIsSeparateFromTicks(t *testing.T) {
	l := NewLedger()
	sq := shared.MustSquare("c3")
	l.Create(sq, StoneWall, 5, shared.White, 2)

	assert.False(t, l.TakeDamage(sq, 1))
	require.NotNil(t, l.At(sq))
	assert.Equal(t, 5, l.At(sq).TurnsLeft)

	assert.True(t, l.TakeDamage(sq, 1))
	assert.Nil(t, l.At(sq))
	assert.False(t, l.TakeDamage(sq, 1))
}

func TestLedgerCloneIsIndependent(t *testing.T) {
	l := NewLedger()
	a := shared.MustSquare("a1")
	l.Create(a, LightningField, 2, shared.White, 0)
	cp := l.Clone()

	l.Clear(a)
	l.Create(shared.MustSquare("h8"), ShadowVeil, 1, shared.Black, 0)

	require.NotNil(t, cp.At(a))
	assert.Nil(t, cp.At(shared.MustSquare("h8")))

	l.Restore(cp)
	assert.Equal(t, LightningField, l.TypeAt(a))
	assert.Equal(t, 1, l.Len())
}

func TestLedgerClearType(t *testing.T) {
	l := NewLedger()
	l.Create(shared.MustSquare("a1"), Fire, 2, shared.White, 0)
	l.Create(shared.MustSquare("b1"), Fire, 2, shared.White, 0)
	l.Create(shared.MustSquare("c1"), Ice, 2, shared.White, 0)

	assert.Equal(t, 2, l.ClearType(Fire))
	all := l.All()
	require.Len(t, all, 1)
	assert.Equal(t, Ice, all[0].Type)
}

func TestBlockingTypes(t *testing.T) {
	cases := map[SquareEffectType]bool{
		Fire:           true,
		StoneWall:      true,
		Ice:            false,
		LightningField: false,
		ShadowVeil:     false,
		ShadowDecoy:    false,
		SquareNone:     false,
	}
	for typ, want := range cases {
		if got := typ.BlocksMovement(); got != want {
			t.Errorf("%s.BlocksMovement() = %v, want %v", typ, got, want)
		}
	}
}

func TestStatusRefreshesInsteadOfStacking(t *testing.T) {
	var s StatusSet
	s.Add(Stunned, 1, false)
	s.Add(Stunned, 3, false)

	assert.Equal(t, 1, s.Len())
	eff, ok := s.Get(Stunned)
	require.True(t, ok)
	assert.Equal(t, 3, eff.TurnsLeft)
}

func TestStatusTickExpires(t *testing.T) {
	var s StatusSet
	s.Add(Chilled, 1, false)
	s.Add(Singed, 2, false)

	expired := s.Tick()
	assert.Equal(t, []StatusType{Chilled}, expired)
	assert.False(t, s.Has(Chilled))
	assert.True(t, s.Has(Singed))

	s.Tick()
	assert.Zero(t, s.Len())
}

func TestPermanentStatusSurvivesTicks(t *testing.T) {
	var s StatusSet
	s.Add(Marked, 0, true)
	for i := 0; i < 10; i++ {
		s.Tick()
	}
	require.True(t, s.Has(Marked))

	assert.True(t, s.Trigger(Marked))
	assert.False(t, s.Has(Marked))
	assert.False(t, s.Trigger(Marked))
}

func TestTriggerIgnoresTimedStatus(t *testing.T) {
	var s StatusSet
	s.Add(Veiled, 2, false)
	assert.False(t, s.Trigger(Veiled))
	assert.True(t, s.Has(Veiled))
}

func TestImmunities(t *testing.T) {
	var im Immunities
	assert.True(t, im.Empty())

	im.GrantStatus(Chilled, Frozen)
	im.GrantSquare(Ice)

	assert.True(t, im.HasStatus(Chilled))
	assert.True(t, im.HasStatus(Frozen))
	assert.False(t, im.HasStatus(Stunned))
	assert.True(t, im.HasSquare(Ice))
	assert.False(t, im.HasSquare(Fire))
	assert.Equal(t, []StatusType{Frozen, Chilled}, im.StatusList())
	assert.Equal(t, []SquareEffectType{Ice}, im.SquareList())

	var other Immunities
	other.GrantSquare(Fire)
	merged := im.Merge(other)
	assert.True(t, merged.HasSquare(Fire))
	assert.True(t, merged.HasStatus(Chilled))
}
