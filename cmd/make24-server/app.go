package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	mem "make24/adapters/memory"
	redisAdapter "make24/adapters/redis"
	sqlxAdapter "make24/adapters/sqlx"
	"make24/api/httpapi"
	"make24/config"
	"make24/engine"
	"make24/game"
	"make24/integrations/webhook"
	"make24/leaderboard"
	"make24/realtime"
	"make24/sessions"
)

// UserStore is the durable account store shared by the HTTP API (register,
// login) and the score syncer (write-through, hydration).
type UserStore interface {
	httpapi.UserStore
	engine.ScoreStore
}

// App aggregates the assembled server components.
type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	Hub      *realtime.Hub
	Sessions *sessions.Manager
	Board    leaderboard.Board
	Users    UserStore
	Service  *engine.QuizService
	Handler  http.Handler
	Server   *http.Server
}

func provideConfig() (*config.Config, error) {
	return config.Load()
}

func provideLogger(cfg *config.Config) *slog.Logger {
	return setupLogging(cfg)
}

func provideHub() *realtime.Hub {
	return realtime.NewHub()
}

func provideSessions(cfg *config.Config) *sessions.Manager {
	return sessions.NewManager(cfg.Session.TTL)
}

func provideBoard(cfg *config.Config) (leaderboard.Board, error) {
	switch cfg.Storage.Board {
	case "memory":
		return leaderboard.NewSkipList(), nil
	case "redis":
		return redisAdapter.New(cfg.Storage.Redis)
	default:
		return nil, fmt.Errorf("unknown board adapter: %s", cfg.Storage.Board)
	}
}

func provideUsers(cfg *config.Config) (UserStore, error) {
	switch cfg.Storage.Store {
	case "memory":
		return mem.New(), nil
	case "sql":
		return sqlxAdapter.New(cfg.Storage.SQL)
	default:
		return nil, fmt.Errorf("unknown store adapter: %s", cfg.Storage.Store)
	}
}

func provideService(cfg *config.Config, logger *slog.Logger, hub *realtime.Hub, board leaderboard.Board, users UserStore) *engine.QuizService {
	opts := []game.Option{
		game.WithBoard(board),
		game.WithScores(users),
		game.WithRealtime(hub),
		game.WithLogger(logger),
		game.WithDispatchMode(engine.DispatchAsync),
	}
	if len(cfg.Webhooks.Endpoints) > 0 {
		opts = append(opts, game.WithWebhooks(webhook.New(cfg.Webhooks.Endpoints, webhook.WithLogger(logger))))
	}
	return game.New(opts...)
}

func provideHandler(svc *engine.QuizService, hub *realtime.Hub, sess *sessions.Manager, users UserStore, cfg *config.Config) http.Handler {
	return httpapi.NewMux(svc, hub, sess, users, httpapi.Options{
		PathPrefix:       cfg.Server.PathPrefix,
		AllowCORSOrigin:  cfg.Server.CORSOrigin,
		RateLimitEnabled: cfg.Security.EnableRateLimit,
		RateLimitRPM:     cfg.Security.RateLimit.RequestsPerMinute,
		RateLimitBurst:   cfg.Security.RateLimit.BurstSize,
	})
}

func provideServer(cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           handler,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}
}

// Hydrate loads durable top scores into an empty ranked board.
func (a *App) Hydrate(ctx context.Context) error {
	h := &engine.Hydrator{
		Board:  a.Board,
		Scores: a.Users,
		Size:   engine.HydrateSize,
		Logger: a.Logger,
	}
	return h.Run(ctx)
}

// setupLogging configures the logger based on configuration.
func setupLogging(cfg *config.Config) *slog.Logger {
	out := os.Stdout
	if cfg.Logging.Output == "stderr" {
		out = os.Stderr
	}

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Logging.Level),
	}

	var handler slog.Handler
	switch cfg.Logging.Format {
	case "text":
		handler = slog.NewTextHandler(out, opts)
	default:
		handler = slog.NewJSONHandler(out, opts)
	}

	if len(cfg.Logging.Attributes) > 0 {
		handler = handler.WithAttrs(convertAttributes(cfg.Logging.Attributes))
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// convertAttributes converts map[string]string to []slog.Attr.
func convertAttributes(attrs map[string]string) []slog.Attr {
	var result []slog.Attr
	for k, v := range attrs {
		result = append(result, slog.String(k, v))
	}
	return result
}
