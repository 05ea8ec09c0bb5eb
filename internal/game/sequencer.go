package game

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"elemental_chess/internal/effects"
)

type StepKind uint8

const (
	// StepRelocate moves Piece to the empty square To.
	StepRelocate StepKind = iota
	// StepCapture removes the enemy on To. Piece is the capturer and stays
	// where it is.
	StepCapture
	// StepCustom runs Effect.
	StepCustom
	// StepSwap exchanges Piece with the piece on To. Both pieces then resolve
	// their landing squares and may promote.
	StepSwap
)

func (k StepKind) String() string {
	switch k {
	case StepRelocate:
		return "relocate"
	case StepCapture:
		return "capture"
	case StepCustom:
		return "custom"
	case StepSwap:
		return "swap"
	default:
		return "?"
	}
}

// Step is one atomic operation of a compound action.
type Step struct {
	Kind     StepKind
	Piece    *Piece
	To       Square
	Waypoint *Square
	Record   bool
	Settle   time.Duration
	Note     string
	Effect   func(*StepContext) error
}

// StepContext is handed to custom step effects.
type StepContext struct {
	Engine *Engine
	Step   *Step
	Index  int
}

// Terminal marks only the last step for history recording.
func Terminal(steps ...Step) []Step {
	for i := range steps {
		steps[i].Record = i == len(steps)-1
	}
	return steps
}

// Presenter mirrors logical moves onto a visual layer.
type Presenter interface {
	Relocate(pc *Piece, from, to Square, waypoint *Square)
	Remove(pc *Piece, at Square)
}

type nopPresenter struct{}

func (nopPresenter) Relocate(*Piece, Square, Square, *Square) {}
func (nopPresenter) Remove(*Piece, Square)                    {}

// Waiter blocks for a step's settle delay. Implementations return early when
// ctx is done.
type Waiter interface {
	Wait(ctx context.Context, d time.Duration)
}

// HeadlessWaiter skips every delay.
type HeadlessWaiter struct{}

func (HeadlessWaiter) Wait(context.Context, time.Duration) {}

// ClockWaiter sleeps through the delay.
type ClockWaiter struct{}

func (ClockWaiter) Wait(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

type captureRecord struct {
	attacker *Piece
	victim   *Piece
}

// Sequencer executes steps strictly in order, committing each mutation
// before the next step starts.
type Sequencer struct {
	engine    *Engine
	presenter Presenter
	waiter    Waiter
}

func (e *Engine) sequencer() *Sequencer {
	return &Sequencer{engine: e, presenter: e.presenter, waiter: e.waiter}
}

// Sequence runs steps on the engine's sequencer. Abilities use it for every
// board mutation that should be mirrored or recorded.
func (e *Engine) Sequence(ctx context.Context, steps ...Step) error {
	return e.sequencer().Run(ctx, steps)
}

// Run executes the steps. A cancelled ctx only skips remaining waits; the
// remaining steps still run. The first failing step aborts the sequence and
// its error is returned.
func (s *Sequencer) Run(ctx context.Context, steps []Step) error {
	e := s.engine
	for i := range steps {
		step := &steps[i]
		if err := s.apply(step, i); err != nil {
			e.logger.Debug("sequence step failed",
				zap.Int("index", i),
				zap.Stringer("kind", step.Kind),
				zap.Error(err))
			return fmt.Errorf("step %d (%s): %w", i, step.Kind, err)
		}
		if step.Settle > 0 && ctx.Err() == nil {
			s.waiter.Wait(ctx, step.Settle)
		}
	}
	return nil
}

func (s *Sequencer) apply(step *Step, index int) error {
	e := s.engine
	switch step.Kind {
	case StepRelocate:
		pc := step.Piece
		if pc == nil || e.board.PieceAt(pc.Square) != pc {
			return ErrNoPiece
		}
		from := pc.Square
		if err := e.board.MovePiece(from, step.To); err != nil {
			return err
		}
		pc.HasMoved = true
		s.presenter.Relocate(pc, from, step.To, step.Waypoint)
		e.resolveLanding(pc)
		e.maybePromote(pc)
		if step.Record {
			e.appendHistory(e.entryFor(pc, from, step.To, step.Note))
		}
	case StepCapture:
		victim := e.board.PieceAt(step.To)
		if victim == nil {
			return ErrNoPiece
		}
		attacker := step.Piece
		if attacker != nil && attacker.Color == victim.Color {
			return ErrIllegalAction
		}
		if !e.captureAllowed(attacker, victim) {
			return ErrCaptureVetoed
		}
		e.board.RemovePiece(step.To)
		s.presenter.Remove(victim, step.To)
		e.logger.Debug("piece captured",
			zap.Stringer("victim", victim),
			zap.Stringer("by", attacker))
		if victim.Passive != nil {
			victim.Passive.OnPieceCaptured(e, victim, attacker)
		}
		if e.action != nil {
			e.action.captures = append(e.action.captures, captureRecord{attacker: attacker, victim: victim})
		}
		if step.Record {
			from := step.To
			pt := Pawn
			if attacker != nil {
				from = attacker.Square
				pt = attacker.Type
			}
			entry := e.entryFor(attacker, from, step.To, step.Note)
			entry.Piece = pt
			captured := victim.Type
			entry.Captured = &captured
			e.appendHistory(entry)
		}
	case StepCustom:
		if step.Effect == nil {
			return errors.New("custom step without effect")
		}
		if err := step.Effect(&StepContext{Engine: e, Step: step, Index: index}); err != nil {
			return err
		}
		if step.Record {
			from := step.To
			pt := Pawn
			if step.Piece != nil {
				from = step.Piece.Square
				pt = step.Piece.Type
			}
			entry := e.entryFor(step.Piece, from, step.To, step.Note)
			entry.Piece = pt
			e.appendHistory(entry)
		}
	case StepSwap:
		pc := step.Piece
		if pc == nil || e.board.PieceAt(pc.Square) != pc {
			return ErrNoPiece
		}
		partner := e.board.PieceAt(step.To)
		if partner == nil {
			return ErrNoPiece
		}
		from := pc.Square
		if pc.BlockedBy(e.ledger, step.To) || partner.BlockedBy(e.ledger, from) {
			return fmt.Errorf("%w: swap %s-%s blocked", ErrIllegalAction, from, step.To)
		}
		if err := e.board.SwapPieces(from, step.To); err != nil {
			return err
		}
		for _, moved := range [2]*Piece{pc, partner} {
			moved.HasMoved = true
		}
		s.presenter.Relocate(pc, from, step.To, step.Waypoint)
		s.presenter.Relocate(partner, step.To, from, nil)
		e.resolveLanding(pc)
		e.resolveLanding(partner)
		e.maybePromote(pc)
		e.maybePromote(partner)
		if step.Record {
			e.appendHistory(e.entryFor(pc, from, step.To, step.Note))
		}
	default:
		return fmt.Errorf("unknown step kind %d", step.Kind)
	}
	return nil
}

// captureAllowed asks both passives before any mutation.
func (e *Engine) captureAllowed(attacker, victim *Piece) bool {
	if attacker != nil && attacker.Passive != nil && !attacker.Passive.OnBeforeCapture(e, attacker, victim) {
		return false
	}
	if victim.Passive != nil && !victim.Passive.OnBeforeCapture(e, attacker, victim) {
		return false
	}
	return true
}

func (e *Engine) entryFor(pc *Piece, from, to Square, note string) HistoryEntry {
	entry := HistoryEntry{From: from, To: to, Note: note, Color: e.turn}
	if pc != nil {
		entry.Piece = pc.Type
		entry.Color = pc.Color
	}
	if e.action != nil {
		entry.Ability = e.action.ability
		if last := len(e.action.captures); last > 0 {
			captured := e.action.captures[last-1].victim.Type
			entry.Captured = &captured
		}
	}
	return entry
}

// landingTurns keeps a landing status on the mover through its side's next
// turn; the mover's statuses tick at the boundary right after it acts.
const landingTurns = 2

// resolveLanding applies the effect of the square pc has just been set down
// on. Immunity is checked at application.
func (e *Engine) resolveLanding(pc *Piece) {
	eff := e.ledger.At(pc.Square)
	if eff == nil {
		return
	}
	switch eff.Type {
	case effects.LightningField:
		pc.ApplyStatus(effects.Stunned, landingTurns, false)
	case effects.Ice:
		pc.ApplyStatus(effects.Chilled, landingTurns, false)
	case effects.ShadowVeil:
		pc.ApplyStatus(effects.Veiled, landingTurns, false)
	case effects.StoneWall:
		e.ledger.TakeDamage(pc.Square, 1)
	case effects.ShadowDecoy:
		if eff.Owner != pc.Color {
			e.ledger.Clear(pc.Square)
		}
	}
}

// maybePromote turns a pawn on its last rank into a queen, rebinding an
// elemental pawn as the element's queen.
func (e *Engine) maybePromote(pc *Piece) {
	if pc.Type != Pawn || pc.Square.Rank() != PromotionRank(pc.Color) {
		return
	}
	pc.Type = Queen
	if pc.Elemental() {
		if err := e.bind(pc, pc.Element); err != nil {
			e.logger.Warn("promotion rebind failed", zap.Stringer("piece", pc), zap.Error(err))
		}
	}
	e.logger.Debug("pawn promoted", zap.Stringer("piece", pc))
}
