package leaderboard

import (
	"context"

	"make24/core"
)

// Board is the ranked score store: the fast path and the source of truth for
// ranking order. Contexts are part of the contract because boards may live
// out of process (Redis).
type Board interface {
	// IncrBy atomically adds delta to the user's score, creating the entry
	// at delta if absent, and returns the resulting score. Concurrent
	// increments for the same user must not lose updates.
	IncrBy(ctx context.Context, user core.Username, delta int64) (int64, error)

	// TopN returns up to n entries ordered by score descending. Ties are
	// broken by username ascending so a snapshot is deterministic.
	TopN(ctx context.Context, n int) ([]core.RankEntry, error)

	// Count reports the number of entries; hydration uses it to decide
	// whether the board is empty.
	Count(ctx context.Context) (int64, error)

	// Load bulk-inserts entries during hydration. It does not emit any
	// broadcast.
	Load(ctx context.Context, entries []core.RankEntry) error
}
