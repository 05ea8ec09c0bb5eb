// Package targeting gates "use ability" input into a validated target set.
// A session belongs to the turn it was opened in and expires at the next
// turn boundary.
package targeting

import (
	"context"

	"github.com/looplab/fsm"
	"go.uber.org/zap"

	"elemental_chess/internal/game"
)

const (
	stateIdle      = "idle"
	stateTargeting = "targeting"

	eventOpen  = "open"
	eventClose = "close"
)

// Outcome reports what a primary action did.
type Outcome int

const (
	// OutcomeIgnored means no session was open; the input belongs to move
	// selection.
	OutcomeIgnored Outcome = iota
	// OutcomeCancelled closed the session without mutating anything.
	OutcomeCancelled
	// OutcomeApplied activated the ability. The session is closed.
	OutcomeApplied
)

func (o Outcome) String() string {
	switch o {
	case OutcomeIgnored:
		return "ignored"
	case OutcomeCancelled:
		return "cancelled"
	case OutcomeApplied:
		return "applied"
	default:
		return "unknown"
	}
}

// Controller is the ability-targeting state machine for one engine. Like the
// engine it is not safe for concurrent use.
type Controller struct {
	engine  *game.Engine
	machine *fsm.FSM
	logger  *zap.Logger

	source  game.Square
	targets game.Bitboard
	turn    int
}

type Option func(*Controller)

func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

func New(e *game.Engine, opts ...Option) *Controller {
	c := &Controller{engine: e, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	c.machine = fsm.NewFSM(stateIdle,
		fsm.Events{
			{Name: eventOpen, Src: []string{stateIdle}, Dst: stateTargeting},
			{Name: eventClose, Src: []string{stateTargeting}, Dst: stateIdle},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, ev *fsm.Event) {
				c.logger.Debug("targeting state", zap.String("from", ev.Src), zap.String("to", ev.Dst))
			},
		},
	)
	return c
}

// EnterAbilityMode opens a session for the piece on sq. It returns false when
// the piece cannot act now: wrong side, game over, ability on cooldown or
// blocked by a status, its king in check, or no valid target.
func (c *Controller) EnterAbilityMode(ctx context.Context, sq game.Square) bool {
	c.expire(ctx)
	e := c.engine
	if !e.Ready() || e.GameOver() {
		return false
	}
	pc := e.Board().PieceAt(sq)
	if pc == nil || pc.Color != e.Turn() {
		return false
	}
	targets := e.AbilityTargets(sq)
	if targets.Empty() {
		return false
	}
	if c.machine.Is(stateTargeting) {
		c.close(ctx)
	}
	if err := c.machine.Event(ctx, eventOpen); err != nil {
		c.logger.Warn("open targeting", zap.Error(err))
		return false
	}
	c.source = sq
	c.targets = targets
	c.turn = e.TurnNumber()
	c.logger.Info("ability mode opened",
		zap.String("ability", pc.ActiveName),
		zap.Stringer("piece", pc),
		zap.Int("targets", targets.Count()))
	return true
}

// ModeOpen reports whether a session is open for the current turn.
func (c *Controller) ModeOpen() bool {
	return c.machine.Is(stateTargeting) && c.turn == c.engine.TurnNumber()
}

// Targets returns the highlighted squares, empty when no session is open.
func (c *Controller) Targets() game.Bitboard {
	if !c.ModeOpen() {
		return 0
	}
	return c.targets
}

// Source returns the square of the piece whose ability is being targeted.
func (c *Controller) Source() (game.Square, bool) {
	if !c.ModeOpen() {
		return 0, false
	}
	return c.source, true
}

// Primary handles a primary action on sq. Inside a session a valid target
// activates the ability and anything else cancels. The session is closed
// whatever the activation returns; a vetoed activation leaves the turn to the
// caller.
func (c *Controller) Primary(ctx context.Context, sq game.Square) (Outcome, game.TurnResult, error) {
	c.expire(ctx)
	if !c.ModeOpen() {
		return OutcomeIgnored, game.TurnResult{}, nil
	}
	source, targets := c.source, c.targets
	c.close(ctx)
	if !targets.Has(sq) {
		return OutcomeCancelled, game.TurnResult{}, nil
	}
	res, err := c.engine.ApplyAbility(ctx, source, sq)
	if err != nil {
		return OutcomeCancelled, game.TurnResult{}, err
	}
	return OutcomeApplied, res, nil
}

// Cancel closes any open session without touching the engine.
func (c *Controller) Cancel(ctx context.Context) {
	if c.machine.Is(stateTargeting) {
		c.close(ctx)
	}
}

// expire closes a session left over from an earlier turn.
func (c *Controller) expire(ctx context.Context) {
	if c.machine.Is(stateTargeting) && c.turn != c.engine.TurnNumber() {
		c.logger.Debug("targeting session expired", zap.Int("opened", c.turn), zap.Int("now", c.engine.TurnNumber()))
		c.close(ctx)
	}
}

func (c *Controller) close(ctx context.Context) {
	if err := c.machine.Event(ctx, eventClose); err != nil {
		c.logger.Warn("close targeting", zap.Error(err))
	}
	c.targets = 0
}
