package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	wsadapter "make24/adapters/websocket"
	"make24/core"
	"make24/engine"
	"make24/realtime"
	"make24/sessions"
)

const bcryptCost = 10
const minPasswordLength = 6

// UserStore is the account collaborator: registration and credential lookup.
type UserStore interface {
	CreateUser(ctx context.Context, username core.Username, passwordHash string) (int64, error)
	PasswordHash(ctx context.Context, username core.Username) (string, error)
}

// Options configures the HTTP API surface.
type Options struct {
	// PathPrefix, if set, is prepended to all routes (e.g., "/api").
	PathPrefix string
	// AllowCORSOrigin, if non-empty, enables basic CORS with the given origin (use "*" for any).
	AllowCORSOrigin string
	// RateLimitEnabled toggles rate limiting.
	RateLimitEnabled bool
	// RateLimitRPM is the allowed requests per minute per client.
	RateLimitRPM int
	// RateLimitBurst defines burst capacity.
	RateLimitBurst int
}

// NewMux builds an http.Handler exposing the game API and WebSocket stream.
// Routes:
//   - GET  {prefix}/quiz
//   - POST {prefix}/answer
//   - GET  {prefix}/leaderboard
//   - POST {prefix}/register
//   - POST {prefix}/login
//   - GET  {prefix}/healthz
//   - WS   {prefix}/ws
func NewMux(svc *engine.QuizService, hub *realtime.Hub, sess *sessions.Manager, users UserStore, opts Options) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc(withPrefix(opts.PathPrefix, "/quiz"), func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeFail(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		id := sess.Ensure(w, r)
		challenge := svc.NewQuiz(id)
		writeJSON(w, http.StatusOK, map[string]any{"numbers": challenge.Numbers()})
	})

	mux.HandleFunc(withPrefix(opts.PathPrefix, "/answer"), func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeFail(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		var body struct {
			Answer string `json:"answer"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Answer == "" {
			writeFail(w, http.StatusBadRequest, "Invalid answer format.")
			return
		}
		id := sess.Ensure(w, r)
		res, err := svc.SubmitAnswer(r.Context(), id, sess.Username(id), body.Answer)
		if err != nil {
			writeFail(w, statusForSubmitError(err), err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"status":     "success",
			"is_correct": res.Correct,
			"result":     res.Value,
		})
	})

	mux.HandleFunc(withPrefix(opts.PathPrefix, "/leaderboard"), func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeFail(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		top, err := svc.Leaderboard(r.Context())
		if err != nil {
			writeError(w, "Internal server error.")
			return
		}
		if top == nil {
			top = []core.RankEntry{}
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"status":      "success",
			"leaderboard": top,
		})
	})

	mux.HandleFunc(withPrefix(opts.PathPrefix, "/register"), func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeFail(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		username, password, ok := decodeCredentials(w, r)
		if !ok {
			return
		}
		if err := core.ValidateUsername(username); err != nil {
			writeFail(w, http.StatusBadRequest, err.Error())
			return
		}
		if len(password) < minPasswordLength {
			writeFail(w, http.StatusBadRequest, "Password must be at least 6 characters long")
			return
		}
		ctx := r.Context()
		if _, err := users.PasswordHash(ctx, username); err == nil {
			writeFail(w, http.StatusConflict, "Username already exists")
			return
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
		if err != nil {
			writeError(w, "Internal server error.")
			return
		}
		id, err := users.CreateUser(ctx, username, string(hash))
		if err != nil {
			writeFail(w, http.StatusConflict, "Username already exists")
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{
			"status":  "success",
			"message": "User registered successfully",
			"userId":  id,
		})
	})

	mux.HandleFunc(withPrefix(opts.PathPrefix, "/login"), func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeFail(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		username, password, ok := decodeCredentials(w, r)
		if !ok {
			return
		}
		hash, err := users.PasswordHash(r.Context(), username)
		if err != nil || bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
			writeFail(w, http.StatusUnauthorized, "Invalid credentials.")
			return
		}
		id := sess.Ensure(w, r)
		sess.SetUsername(id, username)
		writeJSON(w, http.StatusOK, map[string]any{
			"status":  "success",
			"message": "Logged in successfully.",
		})
	})

	mux.HandleFunc(withPrefix(opts.PathPrefix, "/healthz"), func(w http.ResponseWriter, r *http.Request) {
		if _, err := svc.Leaderboard(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "unhealthy"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": "healthy"})
	})

	// WebSocket score_update stream
	if hub != nil {
		mux.Handle(withPrefix(opts.PathPrefix, "/ws"), wsadapter.Handler(hub))
	}

	var handler http.Handler = mux
	if opts.AllowCORSOrigin != "" {
		handler = withCORS(handler, opts.AllowCORSOrigin)
	}
	if opts.RateLimitEnabled && opts.RateLimitRPM > 0 && opts.RateLimitBurst > 0 {
		handler = withRateLimit(handler, opts.RateLimitRPM, opts.RateLimitBurst)
	}
	return handler
}

// Helpers

func decodeCredentials(w http.ResponseWriter, r *http.Request) (core.Username, string, bool) {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeFail(w, http.StatusBadRequest, "invalid request body")
		return "", "", false
	}
	username, err := core.NormalizeUsername(core.Username(body.Username))
	if err != nil {
		writeFail(w, http.StatusBadRequest, err.Error())
		return "", "", false
	}
	return username, body.Password, true
}

func withPrefix(prefix, path string) string {
	if prefix == "" || prefix == "/" {
		return path
	}
	if prefix[len(prefix)-1] == '/' {
		return prefix[:len(prefix)-1] + path
	}
	return prefix + path
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeFail(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"status": "fail", "message": msg})
}

func writeError(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusInternalServerError, map[string]any{"status": "error", "message": msg})
}

// statusForSubmitError picks the HTTP status for validator failures; all are
// client errors today but kept in one place.
func statusForSubmitError(err error) int {
	switch {
	case errors.Is(err, core.ErrNoActiveChallenge),
		errors.Is(err, core.ErrMalformedAnswer),
		errors.Is(err, core.ErrChallengeMismatch),
		errors.Is(err, core.ErrEvaluation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// withCORS wraps a handler with a minimal CORS policy.
func withCORS(next http.Handler, origin string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Vary", "Origin")
		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withRateLimit applies a simple token-bucket limiter per client IP.
func withRateLimit(next http.Handler, rpm int, burst int) http.Handler {
	limiter := newRateLimiter(rpm, burst)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.allow(clientKey(r)) {
			writeFail(w, http.StatusTooManyRequests, "too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

type rateLimiter struct {
	rpm   float64
	burst float64
	mu    sync.Mutex
	b     map[string]*bucket
}

type bucket struct {
	tokens float64
	last   time.Time
}

func newRateLimiter(rpm, burst int) *rateLimiter {
	return &rateLimiter{
		rpm:   float64(rpm),
		burst: float64(burst),
		b:     make(map[string]*bucket),
	}
}

func (l *rateLimiter) allow(key string) bool {
	now := time.Now()
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.b[key]
	if !ok {
		l.b[key] = &bucket{tokens: l.burst - 1, last: now}
		return true
	}

	elapsed := now.Sub(b.last).Minutes()
	b.tokens += elapsed * l.rpm
	if b.tokens > l.burst {
		b.tokens = l.burst
	}
	if b.tokens < 1 {
		b.last = now
		return false
	}
	b.tokens--
	b.last = now
	return true
}
