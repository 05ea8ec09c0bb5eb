// Package opponent implements the single-ply heuristic opponent. It is
// driven by Update ticks from the host's loop and never blocks.
package opponent

import (
	"cmp"
	"context"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/looplab/fsm"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"elemental_chess/internal/effects"
	"elemental_chess/internal/game"
)

const tracerName = "elemental_chess/internal/opponent"

const (
	stateIdle     = "idle"
	stateThinking = "thinking"

	eventThink = "think"
	eventDone  = "done"
	eventReset = "reset"
)

const (
	DefaultThinkDelay      = 600 * time.Millisecond
	DefaultWatchdogTimeout = 5 * time.Second
)

// ModeQuery reports whether an ability-targeting session is open.
type ModeQuery interface {
	ModeOpen() bool
}

// Candidate is one scored action under consideration.
type Candidate struct {
	Piece     *game.Piece
	From      game.Square
	Target    game.Square
	Score     float64
	IsAbility bool
}

// Outcome describes what one Update call did.
type Outcome struct {
	Acted     bool
	Forfeited bool
	Chosen    *Candidate
	Result    game.TurnResult
}

// Controller drives one colour. It is not safe for concurrent use; callers
// serialize it with the engine.
type Controller struct {
	engine     *game.Engine
	color      game.Color
	difficulty Difficulty
	thinkDelay time.Duration
	watchdog   time.Duration
	modes      ModeQuery
	machine    *fsm.FSM
	since      time.Time
	rng        *rand.Rand
	logger     *zap.Logger
	tracer     trace.Tracer
}

type Option func(*Controller)

func WithDifficulty(d Difficulty) Option { return func(c *Controller) { c.difficulty = d } }

func WithThinkDelay(d time.Duration) Option { return func(c *Controller) { c.thinkDelay = d } }

func WithWatchdogTimeout(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.watchdog = d
		}
	}
}

// WithModeQuery keeps the controller idle while a targeting session is open.
func WithModeQuery(q ModeQuery) Option { return func(c *Controller) { c.modes = q } }

// WithRand fixes the noise source, mainly for tests.
func WithRand(r *rand.Rand) Option { return func(c *Controller) { c.rng = r } }

func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Controller) {
		if tp != nil {
			c.tracer = tp.Tracer(tracerName)
		}
	}
}

func New(e *game.Engine, color game.Color, opts ...Option) *Controller {
	c := &Controller{
		engine:     e,
		color:      color,
		difficulty: Medium,
		thinkDelay: DefaultThinkDelay,
		watchdog:   DefaultWatchdogTimeout,
		rng:        rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x9e3779b97f4a7c15)),
		logger:     zap.NewNop(),
		tracer:     otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With(zap.Stringer("ai", color), zap.String("difficulty", string(c.difficulty)))
	c.machine = fsm.NewFSM(stateIdle,
		fsm.Events{
			{Name: eventThink, Src: []string{stateIdle}, Dst: stateThinking},
			{Name: eventDone, Src: []string{stateThinking}, Dst: stateIdle},
			{Name: eventReset, Src: []string{stateThinking}, Dst: stateIdle},
		},
		fsm.Callbacks{},
	)
	return c
}

func (c *Controller) Color() game.Color { return c.color }

func (c *Controller) Difficulty() Difficulty { return c.difficulty }

// Thinking reports whether a think cycle is in progress.
func (c *Controller) Thinking() bool { return c.machine.Is(stateThinking) }

// eligible is the gate for entering and staying in the thinking state.
func (c *Controller) eligible() bool {
	e := c.engine
	if !e.Ready() || e.GameOver() || e.Turn() != c.color {
		return false
	}
	return c.modes == nil || !c.modes.ModeOpen()
}

// Update advances the controller. Idle and eligible, it starts thinking.
// Thinking past the watchdog timeout, it drops back to idle without acting.
// Thinking past the think delay, it picks and executes an action.
func (c *Controller) Update(ctx context.Context, now time.Time) (Outcome, error) {
	if c.machine.Is(stateIdle) {
		if c.eligible() {
			c.transition(ctx, eventThink)
			c.since = now
			c.logger.Debug("thinking", zap.Int("turn", c.engine.TurnNumber()))
		}
		return Outcome{}, nil
	}

	elapsed := now.Sub(c.since)
	if elapsed > c.watchdog {
		c.logger.Warn("think cycle stalled, resetting", zap.Duration("elapsed", elapsed))
		c.transition(ctx, eventReset)
		return Outcome{}, nil
	}
	if !c.eligible() {
		c.transition(ctx, eventReset)
		return Outcome{}, nil
	}
	if elapsed < c.thinkDelay {
		return Outcome{}, nil
	}
	defer c.transition(ctx, eventDone)
	return c.decide(ctx)
}

func (c *Controller) transition(ctx context.Context, event string) {
	if err := c.machine.Event(ctx, event); err != nil {
		c.logger.Debug("opponent transition", zap.String("event", event), zap.Error(err))
	}
}

// Candidates lists every action the controller would consider, unscored.
func (c *Controller) Candidates() []Candidate {
	e := c.engine
	b := e.Board()
	abilities := c.difficulty.usesAbilities() && !b.IsKingInCheck(c.color)

	var out []Candidate
	for _, pc := range b.AllPieces(c.color) {
		if pc.HasStatus(effects.Stunned) {
			continue
		}
		e.LegalMoves(pc.Square).Iter(func(to game.Square) {
			out = append(out, Candidate{Piece: pc, From: pc.Square, Target: to})
		})
		if !abilities {
			continue
		}
		e.AbilityTargets(pc.Square).Iter(func(to game.Square) {
			out = append(out, Candidate{Piece: pc, From: pc.Square, Target: to, IsAbility: true})
		})
	}
	return out
}

// Rank scores the candidates with the controller's difficulty and sorts them
// best first. Ties keep generation order.
func (c *Controller) Rank(cands []Candidate) []Candidate {
	s := &scoring{board: c.engine.Board(), color: c.color, rng: c.rng, noise: c.difficulty.noise()}
	score := scorerFor(c.difficulty)
	for i := range cands {
		cands[i].Score = score(s, cands[i])
	}
	slices.SortStableFunc(cands, func(a, b Candidate) int { return cmp.Compare(b.Score, a.Score) })
	return cands
}

func (c *Controller) decide(ctx context.Context) (Outcome, error) {
	ctx, span := c.tracer.Start(ctx, "opponent.decide", trace.WithAttributes(
		attribute.String("color", c.color.String()),
		attribute.String("difficulty", string(c.difficulty)),
	))
	defer span.End()

	ranked := c.Rank(c.Candidates())
	span.SetAttributes(attribute.Int("candidates", len(ranked)))

	for i := range ranked {
		cand := &ranked[i]
		var (
			res game.TurnResult
			err error
		)
		if cand.IsAbility {
			res, err = c.engine.ApplyAbility(ctx, cand.From, cand.Target)
		} else {
			res, err = c.engine.ApplyMove(ctx, cand.From, cand.Target)
		}
		if err != nil {
			c.logger.Debug("candidate failed, trying next",
				zap.Stringer("from", cand.From),
				zap.Stringer("to", cand.Target),
				zap.Bool("ability", cand.IsAbility),
				zap.Error(err))
			continue
		}
		c.logger.Info("opponent acted",
			zap.Stringer("from", cand.From),
			zap.Stringer("to", cand.Target),
			zap.Bool("ability", cand.IsAbility),
			zap.Float64("score", cand.Score))
		span.SetAttributes(attribute.Int("attempt", i+1))
		return Outcome{Acted: true, Chosen: cand, Result: res}, nil
	}

	c.logger.Warn("no candidate succeeded, forfeiting turn", zap.Int("candidates", len(ranked)))
	res, err := c.engine.ForfeitTurn(ctx)
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{Forfeited: true, Result: res}, nil
}
