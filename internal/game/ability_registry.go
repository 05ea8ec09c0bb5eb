package game

import (
	"errors"
	"fmt"

	"elemental_chess/internal/cooldown"
	"elemental_chess/internal/effects"
)

// Binding is what the factory returns for one (element, piece type) pair.
// Immunities are granted once, when the piece is bound.
type Binding struct {
	PassiveName string
	ActiveName  string
	Passive     Passive
	Active      Active
	Immunities  effects.Immunities
}

// AbilityFactory resolves a piece's element and type to a fresh binding. The
// owner is passed so instances can tell which piece they belong to.
type AbilityFactory func(owner *Piece, bal AbilityBalance) (Binding, error)

var (
	abilityFactory AbilityFactory

	// ErrAbilityFactoryNotConfigured indicates no resolver has been registered.
	ErrAbilityFactoryNotConfigured = errors.New("game: ability factory not configured")
	// ErrAbilityNotRegistered indicates the resolver has no binding for the pair.
	ErrAbilityNotRegistered = errors.New("game: ability binding not registered")
)

// RegisterAbilityFactory installs the resolver used to bind elemental pieces.
func RegisterAbilityFactory(factory AbilityFactory) {
	abilityFactory = factory
}

func resolveBinding(owner *Piece, bal AbilityBalance) (Binding, error) {
	if abilityFactory == nil {
		return Binding{}, ErrAbilityFactoryNotConfigured
	}
	return abilityFactory(owner, bal)
}

// bind attaches the element's abilities to pc. Existing statuses are kept so
// a promoted pawn carries them over.
func (e *Engine) bind(pc *Piece, el Element) error {
	pc.Element = ElementNone
	pc.Passive, pc.Active = nil, nil
	pc.PassiveName, pc.ActiveName = "", ""
	pc.Cooldown = nil
	pc.Immunities = effects.Immunities{}
	if !el.Valid() {
		return nil
	}
	pc.Element = el
	bal := e.balance.For(el, pc.Type)
	binding, err := resolveBinding(pc, bal)
	if err != nil {
		pc.Element = ElementNone
		return fmt.Errorf("bind %s %s: %w", el, pc.Type.Name(), err)
	}
	pc.Passive = binding.Passive
	pc.Active = binding.Active
	pc.PassiveName = binding.PassiveName
	pc.ActiveName = binding.ActiveName
	pc.Immunities = binding.Immunities
	if binding.Active != nil {
		pc.Cooldown = cooldown.New(bal.Cooldown)
	}
	for _, st := range pc.Statuses.List() {
		if pc.Immunities.HasStatus(st.Type) {
			pc.Statuses.Remove(st.Type)
		}
	}
	return nil
}
