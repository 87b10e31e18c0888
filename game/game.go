package game

import (
	"context"
	"log/slog"
	"time"

	mem "make24/adapters/memory"
	"make24/core"
	"make24/engine"
	"make24/integrations/webhook"
	"make24/leaderboard"
	"make24/quiz"
	"make24/realtime"
)

// Option configures the game service builder.
type Option func(*config)

type config struct {
	board        leaderboard.Board
	scores       engine.ScoreStore
	mode         engine.DispatchMode
	hub          *realtime.Hub
	sink         *webhook.Sink
	logger       *slog.Logger
	writeTimeout time.Duration
}

// WithBoard sets the ranked score store.
func WithBoard(b leaderboard.Board) Option { return func(c *config) { c.board = b } }

// WithScores sets the durable score store receiving write-throughs.
func WithScores(s engine.ScoreStore) Option { return func(c *config) { c.scores = s } }

// WithDispatchMode selects sync or async event dispatch.
func WithDispatchMode(m engine.DispatchMode) Option { return func(c *config) { c.mode = m } }

// WithRealtime wires a realtime hub to receive score updates.
func WithRealtime(h *realtime.Hub) Option { return func(c *config) { c.hub = h } }

// WithWebhooks wires a webhook sink to receive score updates.
func WithWebhooks(s *webhook.Sink) Option { return func(c *config) { c.sink = s } }

// WithLogger sets the logger for write-through and pipeline failures.
func WithLogger(l *slog.Logger) Option { return func(c *config) { c.logger = l } }

// WithWriteTimeout bounds each durable write-through.
func WithWriteTimeout(d time.Duration) Option { return func(c *config) { c.writeTimeout = d } }

// New builds a configured QuizService. Defaults: in-process skiplist board,
// in-memory durable store, async dispatch.
func New(opts ...Option) *engine.QuizService {
	cfg := &config{mode: engine.DispatchAsync, writeTimeout: 5 * time.Second}
	for _, o := range opts {
		o(cfg)
	}
	if cfg.board == nil {
		cfg.board = leaderboard.NewSkipList()
	}
	if cfg.scores == nil {
		cfg.scores = mem.New()
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}

	bus := engine.NewEventBus(cfg.mode)
	syncer := engine.NewSyncer(cfg.scores, cfg.writeTimeout, cfg.logger)
	svc := engine.NewQuizService(quiz.NewStore(), cfg.board, syncer, bus, cfg.logger)

	if cfg.hub != nil {
		hub := cfg.hub
		bus.Subscribe(core.EventScoreUpdate, func(ctx context.Context, e core.Event) { hub.Broadcast(ctx, e) })
	}
	if cfg.sink != nil {
		sink := cfg.sink
		bus.Subscribe(core.EventScoreUpdate, func(_ context.Context, e core.Event) { sink.OnEvent(e) })
	}
	return svc
}
