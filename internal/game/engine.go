// Package game implements the elemental chess rules engine: board state and
// move legality, ability contracts, the turn-cycle coordinator and the
// multi-step action sequencer.
package game

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"elemental_chess/internal/effects"
	"elemental_chess/internal/shared"
)

const tracerName = "elemental_chess/internal/game"

// SideConfig is the draft choice of one side: its element and the piece
// types that receive the element's abilities. An empty Types list binds every
// piece type.
type SideConfig struct {
	Element Element     `json:"element"`
	Types   []PieceType `json:"types,omitempty"`
}

func (c SideConfig) covers(pt PieceType) bool {
	return len(c.Types) == 0 || slices.Contains(c.Types, pt)
}

// Engine is the resolution context. It owns the board, the square ledger and
// the balance table and is the only path through which moves and abilities
// are applied, whether local or replayed. It is not safe for concurrent use.
type Engine struct {
	id         uuid.UUID
	board      *Board
	ledger     *effects.Ledger
	turn       Color
	turnNumber int
	passes     int
	sides      [2]SideConfig
	configured [2]bool
	locked     bool
	setup      bool
	history    []HistoryEntry
	status     GameStatus
	nextID     int
	action     *actionState

	balance   BalanceTable
	base      *zap.Logger
	logger    *zap.Logger
	tracer    trace.Tracer
	presenter Presenter
	waiter    Waiter
	settle    time.Duration
}

type actionState struct {
	ability  string
	recorded bool
	captures []captureRecord
}

type Option func(*Engine)

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

func WithBalance(t BalanceTable) Option {
	return func(e *Engine) { e.balance = t }
}

func WithPresenter(p Presenter) Option {
	return func(e *Engine) {
		if p != nil {
			e.presenter = p
		}
	}
}

func WithWaiter(w Waiter) Option {
	return func(e *Engine) {
		if w != nil {
			e.waiter = w
		}
	}
}

// WithSettleDelay sets the presentation delay after each relocation step.
func WithSettleDelay(d time.Duration) Option {
	return func(e *Engine) { e.settle = d }
}

func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(e *Engine) {
		if tp != nil {
			e.tracer = tp.Tracer(tracerName)
		}
	}
}

func newEngine(opts ...Option) *Engine {
	e := &Engine{
		balance:   DefaultBalance(),
		logger:    zap.NewNop(),
		tracer:    otel.Tracer(tracerName),
		presenter: nopPresenter{},
		waiter:    HeadlessWaiter{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewEngine creates an engine with the standard starting position. Sides
// still have to be configured before the first action.
func NewEngine(opts ...Option) *Engine {
	e := newEngine(opts...)
	e.Reset()
	return e
}

// Reset starts a new match from the standard position and clears the side
// configuration.
func (e *Engine) Reset() {
	e.clear()
	order := []PieceType{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}
	setup := func(color Color, backRank, pawnRank int) {
		for file, pt := range order {
			sq, _ := shared.SquareFromCoords(backRank, file)
			e.spawn(color, pt, sq, false)
		}
		for file := 0; file < 8; file++ {
			sq, _ := shared.SquareFromCoords(pawnRank, file)
			e.spawn(color, Pawn, sq, false)
		}
	}
	setup(White, 0, 1)
	setup(Black, 7, 6)
	e.finishSetup(White)
}

func (e *Engine) clear() {
	e.id = uuid.New()
	e.ledger = effects.NewLedger()
	e.board = NewBoard(e.ledger)
	e.turn = White
	e.turnNumber = 0
	e.passes = 0
	e.sides = [2]SideConfig{}
	e.configured = [2]bool{}
	e.locked = false
	e.setup = false
	e.history = nil
	e.status = GameStatus{Result: ResultOngoing}
	e.nextID = 1
	e.action = nil
	if e.base == nil {
		e.base = e.logger
	}
	e.logger = e.base.With(zap.String("match", e.id.String()))
}

func (e *Engine) spawn(color Color, pt PieceType, sq Square, moved bool) *Piece {
	pc := &Piece{ID: e.nextID, Type: pt, Color: color, HasMoved: moved, Element: ElementNone}
	e.nextID++
	if err := e.board.PlacePiece(pc, sq); err != nil {
		return nil
	}
	return pc
}

func (e *Engine) finishSetup(toMove Color) {
	e.turn = toMove
	e.setup = true
	e.board.RecalculateAttacks()
	e.refreshStatus()
	e.logger.Info("match ready for draft", zap.Stringer("toMove", toMove))
}

// ID returns the match identifier.
func (e *Engine) ID() uuid.UUID { return e.id }

func (e *Engine) Board() *Board { return e.board }

func (e *Engine) Effects() *effects.Ledger { return e.ledger }

func (e *Engine) Logger() *zap.Logger { return e.logger }

func (e *Engine) Balance(pc *Piece) AbilityBalance { return e.balance.For(pc.Element, pc.Type) }

// BalanceTable returns a copy of the engine's tuning.
func (e *Engine) BalanceTable() BalanceTable { return e.balance }

// SetSideConfig binds a side's element to its pieces. It fails once the
// first action has been applied.
func (e *Engine) SetSideConfig(color Color, cfg SideConfig) error {
	if e.locked {
		return ErrConfigLocked
	}
	if !cfg.Element.Valid() && cfg.Element != ElementNone {
		return fmt.Errorf("%w: unknown element %d", ErrIllegalAction, cfg.Element)
	}
	for _, pc := range e.board.AllPieces(color) {
		el := ElementNone
		if cfg.covers(pc.Type) {
			el = cfg.Element
		}
		if err := e.bind(pc, el); err != nil {
			return err
		}
	}
	e.sides[color] = SideConfig{Element: cfg.Element, Types: slices.Clone(cfg.Types)}
	e.configured[color] = true
	e.board.RecalculateAttacks()
	e.refreshStatus()
	e.logger.Info("side configured",
		zap.Stringer("color", color),
		zap.Stringer("element", cfg.Element))
	return nil
}

// Side returns the draft choice for a colour and whether it was made.
func (e *Engine) Side(c Color) (SideConfig, bool) { return e.sides[c], e.configured[c] }

// Ready reports whether the position is set up and both sides are drafted.
func (e *Engine) Ready() bool {
	return e.setup && e.configured[White] && e.configured[Black]
}

// actor validates that the piece on from may act now.
func (e *Engine) actor(from Square) (*Piece, error) {
	if e.status.GameOver {
		return nil, ErrGameOver
	}
	if !e.Ready() {
		return nil, ErrNotConfigured
	}
	pc := e.board.PieceAt(from)
	if pc == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoPiece, from)
	}
	if pc.Color != e.turn {
		return nil, fmt.Errorf("%w: %s to move", ErrNotYourTurn, e.turn)
	}
	return pc, nil
}

func (e *Engine) beginAction(ability string) { e.action = &actionState{ability: ability} }

func (e *Engine) endAction() { e.action = nil }

// LegalMoves returns the legal destinations of the piece on from.
func (e *Engine) LegalMoves(from Square) Bitboard {
	if e.status.GameOver {
		return 0
	}
	return e.board.LegalMoves(e.board.PieceAt(from))
}

// AbilityAvailable reports whether pc could open its ability now: it has an
// active ability off cooldown, no status forbids it, its king is not in
// check and the ability's own precondition holds.
func (e *Engine) AbilityAvailable(pc *Piece) bool {
	if pc == nil || pc.Active == nil || e.status.GameOver {
		return false
	}
	if !pc.Cooldown.Ready() || !pc.CanUseActive() {
		return false
	}
	if e.board.IsKingInCheck(pc.Color) {
		return false
	}
	return pc.Active.CanActivate(pc, e.board, e.ledger)
}

// AbilityTargets returns the valid targets of the piece on from, empty when
// the ability is unavailable.
func (e *Engine) AbilityTargets(from Square) Bitboard {
	pc := e.board.PieceAt(from)
	if !e.AbilityAvailable(pc) {
		return 0
	}
	return pc.Active.TargetSquares(pc, e.board, e.ledger)
}

// ApplyMove plays a legal move. A vetoed capture leaves the board and the
// turn untouched.
func (e *Engine) ApplyMove(ctx context.Context, from, to Square) (TurnResult, error) {
	pc, err := e.actor(from)
	if err != nil {
		return TurnResult{}, err
	}
	if !e.board.LegalMoves(pc).Has(to) {
		return TurnResult{}, fmt.Errorf("%w: %s-%s", ErrIllegalAction, from, to)
	}

	var steps []Step
	if rookFrom, rookTo, ok := castleRookSquares(pc, from, to); ok {
		steps = append(steps, Step{Kind: StepRelocate, Piece: e.board.PieceAt(rookFrom), To: rookTo})
	}
	captured := e.board.PieceAt(to) != nil
	if captured {
		steps = append(steps, Step{Kind: StepCapture, Piece: pc, To: to})
	}
	steps = append(steps, Step{Kind: StepRelocate, Piece: pc, To: to, Settle: e.settle})

	snap := e.snapshot()
	e.beginAction("")
	defer e.endAction()
	if err := e.sequencer().Run(ctx, Terminal(steps...)); err != nil {
		e.restore(snap)
		if IsVetoed(err) {
			e.logger.Info("capture vetoed", zap.Stringer("piece", pc), zap.Stringer("to", to))
		}
		return TurnResult{}, err
	}
	e.locked = true
	e.passes = 0

	captures := e.action.captures
	for _, c := range captures {
		if c.attacker != nil && c.attacker.Passive != nil {
			c.attacker.Passive.OnAfterCapture(e, c.attacker, c.victim)
		}
	}
	if pc.Passive != nil && e.board.PieceAt(pc.Square) == pc {
		pc.Passive.OnAfterMove(e, pc, from, to)
	}

	e.logger.Debug("move applied",
		zap.Stringer("piece", pc),
		zap.Stringer("from", from),
		zap.Stringer("to", to))
	events := []Event{EventMoved}
	if captured {
		events = append(events, EventCaptured)
	}
	e.endAction()
	result := e.EndTurn()
	result.Events = append(events, result.Events...)
	return result, nil
}

// ApplyAbility activates the ability of the piece on from against target.
// On failure everything the ability touched is rolled back and neither the
// cooldown nor the turn is spent.
func (e *Engine) ApplyAbility(ctx context.Context, from, target Square) (TurnResult, error) {
	ctx, span := e.tracer.Start(ctx, "game.ApplyAbility", trace.WithAttributes(
		attribute.String("from", from.String()),
		attribute.String("target", target.String()),
	))
	defer span.End()

	pc, err := e.actor(from)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return TurnResult{}, err
	}
	if !e.AbilityAvailable(pc) {
		return TurnResult{}, fmt.Errorf("%w: ability unavailable for %s", ErrIllegalAction, pc)
	}
	if !pc.Active.TargetSquares(pc, e.board, e.ledger).Has(target) {
		return TurnResult{}, fmt.Errorf("%w: %s is not a target of %s", ErrIllegalAction, target, pc.ActiveName)
	}
	span.SetAttributes(attribute.String("ability", pc.ActiveName))

	snap := e.snapshot()
	e.beginAction(pc.ActiveName)
	defer e.endAction()

	if !pc.Active.Execute(ctx, e, pc, target) {
		e.restore(snap)
		e.logger.Info("ability failed", zap.String("ability", pc.ActiveName), zap.Stringer("piece", pc))
		span.SetStatus(codes.Error, "execute failed")
		return TurnResult{}, fmt.Errorf("%w: %s", ErrAbilityFailed, pc.ActiveName)
	}
	e.board.RecalculateAttacks()
	if e.board.IsKingInCheck(pc.Color) {
		e.restore(snap)
		return TurnResult{}, fmt.Errorf("%w: %s would leave the king in check", ErrIllegalAction, pc.ActiveName)
	}
	e.locked = true
	e.passes = 0

	for _, c := range e.action.captures {
		if c.attacker != nil && c.attacker.Passive != nil && e.board.PieceAt(c.attacker.Square) == c.attacker {
			c.attacker.Passive.OnAfterCapture(e, c.attacker, c.victim)
		}
	}
	pc.Cooldown.Trigger()
	if !e.action.recorded {
		e.appendHistory(HistoryEntry{
			Color:   pc.Color,
			Piece:   pc.Type,
			From:    from,
			To:      target,
			Ability: pc.ActiveName,
		})
	}
	e.logger.Debug("ability applied",
		zap.String("ability", pc.ActiveName),
		zap.Stringer("from", from),
		zap.Stringer("target", target))

	events := []Event{EventAbility}
	if len(e.action.captures) > 0 {
		events = append(events, EventCaptured)
	}
	e.endAction()
	result := e.EndTurn()
	result.Events = append(events, result.Events...)
	return result, nil
}

// ForfeitTurn ends the current side's turn without an action.
func (e *Engine) ForfeitTurn(ctx context.Context) (TurnResult, error) {
	if e.status.GameOver {
		return TurnResult{}, ErrGameOver
	}
	if !e.Ready() {
		return TurnResult{}, ErrNotConfigured
	}
	e.logger.Info("turn forfeited", zap.Stringer("color", e.turn), zap.Int("turn", e.turnNumber))
	e.appendHistory(HistoryEntry{Color: e.turn, Note: "forfeit"})
	e.passes++
	if e.passes >= maxConsecutivePasses {
		e.status = GameStatus{GameOver: true, Result: ResultStalemate}
		return TurnResult{Turn: e.turn, TurnNumber: e.turnNumber, Status: e.status, Events: []Event{EventForfeit, EventStalemate}}, nil
	}
	result := e.EndTurn()
	result.Events = append([]Event{EventForfeit}, result.Events...)
	return result, nil
}

// ReplayKind selects the application path of a replayed action.
type ReplayKind string

const (
	ReplayMove    ReplayKind = "move"
	ReplayAbility ReplayKind = "ability"
)

// ReplayAction is an already-validated action from a remote peer.
type ReplayAction struct {
	Kind ReplayKind `json:"kind"`
	From Square     `json:"from"`
	To   Square     `json:"to"`
}

// Replay applies a remote action through the same path as a local one.
func (e *Engine) Replay(ctx context.Context, act ReplayAction) (TurnResult, error) {
	switch act.Kind {
	case ReplayMove:
		return e.ApplyMove(ctx, act.From, act.To)
	case ReplayAbility:
		return e.ApplyAbility(ctx, act.From, act.To)
	default:
		return TurnResult{}, fmt.Errorf("%w: unknown replay kind %q", ErrIllegalAction, act.Kind)
	}
}
