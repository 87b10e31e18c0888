package redis

import (
	"context"
	"fmt"
	"sort"
	"time"

	"make24/core"
	"make24/leaderboard"

	"github.com/redis/go-redis/v9"
)

// Config holds Redis connection configuration
type Config struct {
	Addr         string
	Password     string
	DB           int
	Key          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultConfig returns sensible defaults for Redis configuration
func DefaultConfig() Config {
	return Config{
		Addr:         "localhost:6379",
		Password:     "",
		DB:           0,
		Key:          "leaderboard",
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

// Board implements leaderboard.Board on a Redis sorted set. ZINCRBY gives the
// atomic no-lost-update increment; ranking order lives in the set itself, so
// the board survives process restarts when Redis does.
type Board struct {
	client *redis.Client
	key    string
}

// New creates a Redis-backed board with the provided configuration
func New(config Config) (*Board, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         config.Addr,
		Password:     config.Password,
		DB:           config.DB,
		PoolSize:     config.PoolSize,
		MinIdleConns: config.MinIdleConns,
		DialTimeout:  config.DialTimeout,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	key := config.Key
	if key == "" {
		key = "leaderboard"
	}
	return &Board{client: client, key: key}, nil
}

// NewWithClient creates a Board using an existing Redis client (useful for testing)
func NewWithClient(client *redis.Client, key string) *Board {
	if key == "" {
		key = "leaderboard"
	}
	return &Board{client: client, key: key}
}

// Close closes the Redis connection
func (b *Board) Close() error {
	return b.client.Close()
}

// IncrBy atomically adds delta to the user's score via ZINCRBY.
func (b *Board) IncrBy(ctx context.Context, user core.Username, delta int64) (int64, error) {
	score, err := b.client.ZIncrBy(ctx, b.key, float64(delta), string(user)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to increment score: %w", err)
	}
	return int64(score), nil
}

// TopN reads the n highest entries. Redis orders equal scores by member
// descending under ZREVRANGE, so ties are re-sorted username ascending to
// keep one deterministic rule across board implementations.
func (b *Board) TopN(ctx context.Context, n int) ([]core.RankEntry, error) {
	if n <= 0 {
		return nil, nil
	}
	zs, err := b.client.ZRevRangeWithScores(ctx, b.key, 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read leaderboard: %w", err)
	}
	out := make([]core.RankEntry, 0, len(zs))
	for _, z := range zs {
		member, ok := z.Member.(string)
		if !ok {
			continue
		}
		out = append(out, core.RankEntry{Username: core.Username(member), Score: int64(z.Score)})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score == out[j].Score {
			return out[i].Username < out[j].Username
		}
		return out[i].Score > out[j].Score
	})
	return out, nil
}

// Count reports the sorted set cardinality.
func (b *Board) Count(ctx context.Context) (int64, error) {
	n, err := b.client.ZCard(ctx, b.key).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count leaderboard: %w", err)
	}
	return n, nil
}

// Load bulk-inserts entries via a single ZADD.
func (b *Board) Load(ctx context.Context, entries []core.RankEntry) error {
	if len(entries) == 0 {
		return nil
	}
	members := make([]redis.Z, len(entries))
	for i, e := range entries {
		members[i] = redis.Z{Score: float64(e.Score), Member: string(e.Username)}
	}
	if err := b.client.ZAdd(ctx, b.key, members...).Err(); err != nil {
		return fmt.Errorf("failed to load leaderboard: %w", err)
	}
	return nil
}

var _ leaderboard.Board = (*Board)(nil)
