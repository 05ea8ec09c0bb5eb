package game

import "errors"

var (
	// ErrIllegalAction rejects a move or target outside the generated
	// candidate set. Nothing is mutated.
	ErrIllegalAction = errors.New("illegal action")
	ErrNoPiece       = errors.New("no piece at source square")
	ErrNotYourTurn   = errors.New("not your turn")
	ErrGameOver      = errors.New("game is over")
	ErrNotConfigured = errors.New("sides not configured")
	ErrConfigLocked  = errors.New("configuration locked after first action")

	// ErrCaptureVetoed and ErrAbilityFailed are vetoed actions: validation
	// passed but a hook declined before commit. Callers fall back to another
	// action.
	ErrCaptureVetoed = errors.New("capture vetoed")
	ErrAbilityFailed = errors.New("ability failed")

	ErrSquareOccupied = errors.New("square occupied")
)

// IsVetoed reports whether err belongs to the vetoed-action category.
func IsVetoed(err error) bool {
	return errors.Is(err, ErrCaptureVetoed) || errors.Is(err, ErrAbilityFailed)
}
