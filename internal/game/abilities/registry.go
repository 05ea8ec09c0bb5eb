// Package abilities holds the elemental ability bindings and installs the
// factory the game engine resolves them through.
package abilities

import (
	"errors"
	"fmt"
	"sync"

	"elemental_chess/internal/game"
)

// Constructor builds a fresh binding for one piece.
type Constructor func(owner *game.Piece, bal game.AbilityBalance) game.Binding

type pair struct {
	element game.Element
	piece   game.PieceType
}

func (p pair) String() string { return p.element.String() + " " + p.piece.Name() }

var (
	registryMu sync.RWMutex
	registry   map[pair]Constructor

	// ErrDuplicateRegistration indicates a pair already has a constructor.
	ErrDuplicateRegistration = errors.New("abilities: binding already registered")
	// ErrNilConstructor indicates a registration attempt provided no constructor.
	ErrNilConstructor = errors.New("abilities: nil constructor")
	// ErrInvalidPair indicates the element or piece type cannot carry abilities.
	ErrInvalidPair = errors.New("abilities: invalid element or piece type")
	// ErrUnknownPair indicates nothing is registered for the pair.
	ErrUnknownPair = errors.New("abilities: binding not registered")
)

// Register associates an (element, piece type) pair with a constructor. It is
// safe for concurrent use.
func Register(el game.Element, pt game.PieceType, ctor Constructor) error {
	if !el.Valid() || pt > game.King {
		return ErrInvalidPair
	}
	if ctor == nil {
		return ErrNilConstructor
	}

	registryMu.Lock()
	defer registryMu.Unlock()
	if registry == nil {
		registry = make(map[pair]Constructor)
	}
	key := pair{element: el, piece: pt}
	if _, exists := registry[key]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateRegistration, key)
	}
	registry[key] = ctor
	return nil
}

// New builds the binding for owner's element and type.
func New(owner *game.Piece, bal game.AbilityBalance) (game.Binding, error) {
	key := pair{element: owner.Element, piece: owner.Type}
	registryMu.RLock()
	ctor := registry[key]
	registryMu.RUnlock()

	if ctor == nil {
		return game.Binding{}, fmt.Errorf("%w: %s", ErrUnknownPair, key)
	}
	return ctor(owner, bal), nil
}

func mustRegister(el game.Element, pt game.PieceType, ctor Constructor) {
	if err := Register(el, pt, ctor); err != nil {
		panic(err)
	}
}

// registeredPairs returns a copy of the registered keys. It is intended for
// tests.
func registeredPairs() []pair {
	registryMu.RLock()
	defer registryMu.RUnlock()

	out := make([]pair, 0, len(registry))
	for key := range registry {
		out = append(out, key)
	}
	return out
}

func init() {
	game.RegisterAbilityFactory(func(owner *game.Piece, bal game.AbilityBalance) (game.Binding, error) {
		binding, err := New(owner, bal)
		if err != nil {
			if errors.Is(err, ErrUnknownPair) {
				return game.Binding{}, fmt.Errorf("%w: %v", game.ErrAbilityNotRegistered, err)
			}
			return game.Binding{}, err
		}
		return binding, nil
	})
}
