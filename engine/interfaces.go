package engine

import (
	"context"

	"make24/core"
)

// ScoreStore abstracts the durable per-user score record. It is the long-lived
// store; the ranked board remains authoritative for instantaneous ranking.
type ScoreStore interface {
	// SetScore overwrites the persisted score with an absolute value.
	SetScore(ctx context.Context, user core.Username, score int64) error

	// TopScores returns up to limit users with score > 0, highest first,
	// for startup hydration.
	TopScores(ctx context.Context, limit int) ([]core.RankEntry, error)
}
