package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"elemental_chess/internal/game"
	"elemental_chess/internal/opponent"
	"elemental_chess/internal/shared"
	"elemental_chess/internal/targeting"
)

// Server wires the HTTP layer to the engine, the targeting session and the
// optional computer opponent. Every engine access holds engineMu.
type Server struct {
	engineMu  sync.Mutex
	engine    *game.Engine
	targeting *targeting.Controller
	opponent  *opponent.Controller
	logger    *zap.Logger
	ai        *aiSettings
	srvMu     sync.Mutex
	srv       *http.Server
}

const (
	maxJSONBodyBytes int64 = 1 << 20
	apiCSP                 = "default-src 'none'; frame-ancestors 'none'; base-uri 'none'"

	DefaultTickInterval = 100 * time.Millisecond
)

type Option func(*Server)

func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

type aiSettings struct {
	color game.Color
	opts  []opponent.Option
}

// WithOpponent lets the computer play color. The opponent stays idle while a
// targeting session is open.
func WithOpponent(color game.Color, opts ...opponent.Option) Option {
	return func(s *Server) { s.ai = &aiSettings{color: color, opts: opts} }
}

// NewServer builds a Server around engine.
func NewServer(engine *game.Engine, opts ...Option) *Server {
	s := &Server{engine: engine, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	s.targeting = targeting.New(engine, targeting.WithLogger(s.logger.Named("targeting")))
	if s.ai != nil {
		aiOpts := append([]opponent.Option{
			opponent.WithLogger(s.logger.Named("opponent")),
			opponent.WithModeQuery(s.targeting),
		}, s.ai.opts...)
		s.opponent = opponent.New(engine, s.ai.color, aiOpts...)
	}
	return s
}

// Listen starts the HTTP server.
func (s *Server) Listen(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 16,
	}

	s.srvMu.Lock()
	s.srv = srv
	s.srvMu.Unlock()
	defer func() {
		s.srvMu.Lock()
		s.srv = nil
		s.srvMu.Unlock()
	}()

	s.logger.Info("http listening", zap.String("addr", addr))
	err := srv.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close attempts a graceful shutdown of the HTTP server.
func (s *Server) Close(ctx context.Context) error {
	s.srvMu.Lock()
	srv := s.srv
	s.srvMu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

// RunOpponent ticks the computer opponent every interval until ctx is done.
// It returns immediately when no opponent is configured.
func (s *Server) RunOpponent(ctx context.Context, interval time.Duration) {
	if s.opponent == nil {
		return
	}
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.TickOpponent(ctx, now)
		}
	}
}

// TickOpponent runs one opponent update under the engine lock.
func (s *Server) TickOpponent(ctx context.Context, now time.Time) opponent.Outcome {
	if s.opponent == nil {
		return opponent.Outcome{}
	}
	s.engineMu.Lock()
	defer s.engineMu.Unlock()
	out, err := s.opponent.Update(ctx, now)
	if err != nil {
		s.logger.Warn("opponent update", zap.Error(err))
	}
	return out
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/state", s.withJSON(s.handleState))
	mux.HandleFunc("/api/moves", s.withJSON(s.handleMoves))
	mux.HandleFunc("/api/targets", s.withJSON(s.handleTargets))
	mux.HandleFunc("/api/move", s.withJSON(s.handleMove))
	mux.HandleFunc("/api/ability", s.withJSON(s.handleAbility))
	mux.HandleFunc("/api/replay", s.withJSON(s.handleReplay))
	mux.HandleFunc("/api/config", s.withJSON(s.handleConfig))
	mux.HandleFunc("/api/reset", s.withJSON(s.handleReset))

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

// ---- JSON helpers ----

func (s *Server) withJSON(h func(http.ResponseWriter, *http.Request)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		applyAPISecurityHeaders(w.Header())
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		if r.Body != nil && r.Body != http.NoBody {
			r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
		}
		h(w, r)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.WriteHeader(status)
	writeJSON(w, map[string]string{"error": msg})
}

// writeEngineError maps engine errors onto status codes.
func writeEngineError(w http.ResponseWriter, err error) {
	status := http.StatusBadRequest
	switch {
	case game.IsVetoed(err):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, game.ErrNotYourTurn), errors.Is(err, game.ErrGameOver),
		errors.Is(err, game.ErrNotConfigured), errors.Is(err, game.ErrConfigLocked):
		status = http.StatusConflict
	}
	writeError(w, status, err.Error())
}

func applyAPISecurityHeaders(h http.Header) {
	h.Set("Content-Security-Policy", apiCSP)
	h.Set("Cross-Origin-Opener-Policy", "same-origin")
	h.Set("Cross-Origin-Embedder-Policy", "require-corp")
}

func isBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

// decodeBody reads a JSON body into v. An empty body is accepted when
// optional is set.
func decodeBody(w http.ResponseWriter, r *http.Request, v any, optional bool) bool {
	defer r.Body.Close()
	err := json.NewDecoder(r.Body).Decode(v)
	switch {
	case err == nil:
		return true
	case optional && errors.Is(err, io.EOF):
		return true
	case isBodyTooLarge(err):
		writeError(w, http.StatusRequestEntityTooLarge, "request too large")
	default:
		writeError(w, http.StatusBadRequest, "invalid json")
	}
	return false
}

func allow(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return false
	}
	return true
}

func parseSquare(s string) (game.Square, bool) {
	return shared.CoordToSquare(strings.ToLower(strings.TrimSpace(s)))
}

// ---- API: queries ----

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.engineMu.Lock()
	state := s.engine.State()
	s.engineMu.Unlock()
	writeJSON(w, map[string]any{"state": state})
}

func (s *Server) handleMoves(w http.ResponseWriter, r *http.Request) {
	s.handleSquareQuery(w, r, "moves", s.engine.LegalMoves)
}

func (s *Server) handleTargets(w http.ResponseWriter, r *http.Request) {
	s.handleSquareQuery(w, r, "targets", s.engine.AbilityTargets)
}

func (s *Server) handleSquareQuery(w http.ResponseWriter, r *http.Request, key string, query func(game.Square) game.Bitboard) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	from, ok := parseSquare(r.URL.Query().Get("from"))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid from square")
		return
	}
	s.engineMu.Lock()
	squares := query(from).Squares()
	s.engineMu.Unlock()
	if squares == nil {
		squares = []game.Square{}
	}
	writeJSON(w, map[string]any{"from": from, key: squares})
}

// ---- API: actions ----

type actionBody struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func (b actionBody) squares(w http.ResponseWriter) (game.Square, game.Square, bool) {
	from, ok := parseSquare(b.From)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid from square")
		return 0, 0, false
	}
	to, ok := parseSquare(b.To)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid to square")
		return 0, 0, false
	}
	return from, to, true
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	var body actionBody
	if !decodeBody(w, r, &body, false) {
		return
	}
	from, to, ok := body.squares(w)
	if !ok {
		return
	}

	s.engineMu.Lock()
	s.targeting.Cancel(r.Context())
	res, err := s.engine.ApplyMove(r.Context(), from, to)
	state := s.engine.State()
	s.engineMu.Unlock()

	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, map[string]any{"state": state, "result": res})
}

// handleAbility runs the two-input targeting flow in one request: open the
// session on from, then act on to.
func (s *Server) handleAbility(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	var body actionBody
	if !decodeBody(w, r, &body, false) {
		return
	}
	from, to, ok := body.squares(w)
	if !ok {
		return
	}

	ctx := r.Context()
	s.engineMu.Lock()
	defer s.engineMu.Unlock()
	if !s.targeting.EnterAbilityMode(ctx, from) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("no ability available on %s", from))
		return
	}
	outcome, res, err := s.targeting.Primary(ctx, to)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	if outcome != targeting.OutcomeApplied {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("%s is not a valid target", to))
		return
	}
	writeJSON(w, map[string]any{"state": s.engine.State(), "result": res})
}

func (s *Server) handleReplay(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	var act game.ReplayAction
	if !decodeBody(w, r, &act, false) {
		return
	}

	s.engineMu.Lock()
	s.targeting.Cancel(r.Context())
	res, err := s.engine.Replay(r.Context(), act)
	state := s.engine.State()
	s.engineMu.Unlock()

	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, map[string]any{"state": state, "result": res})
}

// ---- API: config ----

type configBody struct {
	Color   string   `json:"color"`
	Element string   `json:"element"`
	Types   []string `json:"types"`
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	var body configBody
	if !decodeBody(w, r, &body, false) {
		return
	}

	color, ok := shared.ParseColor(body.Color)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid color")
		return
	}
	element, ok := shared.ParseElement(body.Element)
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid element %q; valid: %v", body.Element, shared.ElementStrings()))
		return
	}
	cfg := game.SideConfig{Element: element}
	for _, name := range body.Types {
		pt, ok := shared.ParsePieceType(name)
		if !ok {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid piece type %q", name))
			return
		}
		cfg.Types = append(cfg.Types, pt)
	}

	s.engineMu.Lock()
	err := s.engine.SetSideConfig(color, cfg)
	state := s.engine.State()
	s.engineMu.Unlock()
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, map[string]any{"state": state})
}

// ---- API: reset ----

type resetBody struct {
	FEN string `json:"fen"`
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	var body resetBody
	if r.Body != nil && r.Body != http.NoBody {
		if !decodeBody(w, r, &body, true) {
			return
		}
	}

	s.engineMu.Lock()
	s.targeting.Cancel(r.Context())
	var err error
	if fen := strings.TrimSpace(body.FEN); fen != "" {
		err = s.engine.LoadFEN(fen)
	} else {
		s.engine.Reset()
	}
	state := s.engine.State()
	s.engineMu.Unlock()

	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.logger.Info("match reset", zap.String("match", state.MatchID))
	writeJSON(w, map[string]any{"state": state})
}
