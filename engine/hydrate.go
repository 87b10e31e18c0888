package engine

import (
	"context"
	"fmt"
	"log/slog"

	"make24/leaderboard"
)

// HydrateSize is the number of durable entries loaded at startup. It must be
// at least as large as the broadcast top-N.
const HydrateSize = 10

// Hydrator repopulates an empty ranked board from the durable store so a
// restart does not lose ranking state. Run once, before serving traffic.
type Hydrator struct {
	Board  leaderboard.Board
	Scores ScoreStore
	Size   int
	Logger *slog.Logger
}

// Run loads the durable top scores into the board. If the board already holds
// entries the run is a no-op: a merge could clobber fresher in-memory state
// with stale durable data after a rolling restart where the board persists
// externally.
func (h *Hydrator) Run(ctx context.Context) error {
	logger := h.Logger
	if logger == nil {
		logger = slog.Default()
	}
	size := h.Size
	if size <= 0 {
		size = HydrateSize
	}

	count, err := h.Board.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to inspect leaderboard: %w", err)
	}
	if count > 0 {
		logger.Info("leaderboard already populated, skipping hydration", "entries", count)
		return nil
	}

	entries, err := h.Scores.TopScores(ctx, size)
	if err != nil {
		return fmt.Errorf("failed to read durable scores: %w", err)
	}
	if len(entries) == 0 {
		logger.Info("no durable scores to hydrate")
		return nil
	}

	if err := h.Board.Load(ctx, entries); err != nil {
		return fmt.Errorf("failed to load leaderboard: %w", err)
	}
	logger.Info("hydrated leaderboard from durable scores", "entries", len(entries))
	return nil
}
