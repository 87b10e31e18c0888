package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"make24/core"
)

// Syncer propagates board scores to the durable store. Writes are
// asynchronous relative to the request and serialized per username: each
// enqueue records the latest absolute score, and a single flusher per user
// drains pending values, so an older score can never land after a newer one.
//
// Failures are logged and swallowed. The board stays authoritative for
// ranking; the durable record catches up on the user's next write-through or
// at the next hydration after a restart. A crash between increment and
// write-through can therefore under-report the durable score.
type Syncer struct {
	store   ScoreStore
	timeout time.Duration
	logger  *slog.Logger

	mu      sync.Mutex
	pending map[core.Username]int64
	written map[core.Username]int64
	active  map[core.Username]bool
	wg      sync.WaitGroup
}

func NewSyncer(store ScoreStore, timeout time.Duration, logger *slog.Logger) *Syncer {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Syncer{
		store:   store,
		timeout: timeout,
		logger:  logger,
		pending: map[core.Username]int64{},
		written: map[core.Username]int64{},
		active:  map[core.Username]bool{},
	}
}

// Enqueue schedules a write-through of the user's absolute score. Scores only
// grow, so keeping the highest pending value both coalesces bursts and keeps
// durable writes in increment order even when enqueues race: a lower score
// never replaces a higher pending or already-written one.
func (s *Syncer) Enqueue(user core.Username, score int64) {
	s.mu.Lock()
	if score <= s.written[user] {
		s.mu.Unlock()
		return
	}
	if cur, ok := s.pending[user]; ok && cur >= score {
		s.mu.Unlock()
		return
	}
	s.pending[user] = score
	if s.active[user] {
		s.mu.Unlock()
		return
	}
	s.active[user] = true
	s.wg.Add(1)
	s.mu.Unlock()
	go s.flush(user)
}

func (s *Syncer) flush(user core.Username) {
	defer s.wg.Done()
	for {
		s.mu.Lock()
		score, ok := s.pending[user]
		if !ok {
			delete(s.active, user)
			s.mu.Unlock()
			return
		}
		delete(s.pending, user)
		s.mu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		err := s.store.SetScore(ctx, user, score)
		cancel()
		if err != nil {
			s.logger.Warn("score write-through failed",
				"username", user, "score", score, "error", err)
			continue
		}
		s.mu.Lock()
		if score > s.written[user] {
			s.written[user] = score
		}
		s.mu.Unlock()
	}
}

// Wait blocks until all in-flight write-throughs finish. Used by shutdown and
// tests.
func (s *Syncer) Wait() {
	s.wg.Wait()
}
