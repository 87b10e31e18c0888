package redis

import (
	"context"
	"sync"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"make24/core"
)

// newTestBoard spins up a miniredis server and returns a board plus cleanup.
func newTestBoard(t *testing.T) (*Board, func()) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cleanup := func() {
		_ = client.Close()
		mr.Close()
	}
	return NewWithClient(client, "leaderboard"), cleanup
}

func TestBoard_IncrBy(t *testing.T) {
	board, cleanup := newTestBoard(t)
	defer cleanup()
	ctx := context.Background()

	total, err := board.IncrBy(ctx, "alice", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	total, err = board.IncrBy(ctx, "alice", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
}

func TestBoard_ConcurrentIncrBy(t *testing.T) {
	board, cleanup := newTestBoard(t)
	defer cleanup()
	ctx := context.Background()

	const workers = 4
	const perWorker = 25
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				_, err := board.IncrBy(ctx, "bob", 1)
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	top, err := board.TopN(ctx, 1)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, int64(workers*perWorker), top[0].Score)
}

func TestBoard_TopNOrdering(t *testing.T) {
	board, cleanup := newTestBoard(t)
	defer cleanup()
	ctx := context.Background()

	_, err := board.IncrBy(ctx, "carol", 30)
	require.NoError(t, err)
	_, err = board.IncrBy(ctx, "alice", 10)
	require.NoError(t, err)
	_, err = board.IncrBy(ctx, "bob", 20)
	require.NoError(t, err)

	top, err := board.TopN(ctx, 10)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, core.Username("carol"), top[0].Username)
	assert.Equal(t, core.Username("bob"), top[1].Username)
	assert.Equal(t, core.Username("alice"), top[2].Username)
}

func TestBoard_TopNTieBreak(t *testing.T) {
	board, cleanup := newTestBoard(t)
	defer cleanup()
	ctx := context.Background()

	_, err := board.IncrBy(ctx, "zoe", 10)
	require.NoError(t, err)
	_, err = board.IncrBy(ctx, "amy", 10)
	require.NoError(t, err)

	top, err := board.TopN(ctx, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, core.Username("amy"), top[0].Username)
	assert.Equal(t, core.Username("zoe"), top[1].Username)
}

func TestBoard_TopNEmpty(t *testing.T) {
	board, cleanup := newTestBoard(t)
	defer cleanup()

	top, err := board.TopN(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, top)
}

func TestBoard_LoadAndCount(t *testing.T) {
	board, cleanup := newTestBoard(t)
	defer cleanup()
	ctx := context.Background()

	n, err := board.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	err = board.Load(ctx, []core.RankEntry{
		{Username: "a", Score: 30},
		{Username: "b", Score: 20},
		{Username: "c", Score: 10},
	})
	require.NoError(t, err)

	n, err = board.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}
