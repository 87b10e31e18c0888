package leaderboard

import (
	"context"
	"sync"
	"testing"

	"make24/core"
)

func TestSkipListBasic(t *testing.T) {
	ctx := context.Background()
	s := NewSkipList()
	if _, err := s.IncrBy(ctx, "a", 10); err != nil {
		t.Fatal(err)
	}
	if _, err := s.IncrBy(ctx, "b", 20); err != nil {
		t.Fatal(err)
	}
	if _, err := s.IncrBy(ctx, "c", 15); err != nil {
		t.Fatal(err)
	}
	top, err := s.TopN(ctx, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(top) != 3 || top[0].Username != "b" || top[1].Username != "c" || top[2].Username != "a" {
		t.Fatalf("unexpected order: %#v", top)
	}
	if _, err := s.IncrBy(ctx, "a", 16); err != nil {
		t.Fatal(err)
	}
	top, _ = s.TopN(ctx, 1)
	if top[0].Username != "a" || top[0].Score != 26 {
		t.Fatalf("top should be a at 26, got %#v", top)
	}
}

func TestSkipListIncrByAccumulates(t *testing.T) {
	ctx := context.Background()
	s := NewSkipList()
	total, err := s.IncrBy(ctx, "bob", 1)
	if err != nil || total != 1 {
		t.Fatalf("expected 1, got %d (%v)", total, err)
	}
	total, err = s.IncrBy(ctx, "bob", 1)
	if err != nil || total != 2 {
		t.Fatalf("expected 2, got %d (%v)", total, err)
	}
}

func TestSkipListConcurrentIncrementsDoNotLoseUpdates(t *testing.T) {
	ctx := context.Background()
	s := NewSkipList()
	const workers = 8
	const perWorker = 100

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				_, _ = s.IncrBy(ctx, "bob", 1)
			}
		}()
	}
	wg.Wait()

	e, ok := s.Get("bob")
	if !ok || e.Score != workers*perWorker {
		t.Fatalf("expected %d, got %#v", workers*perWorker, e)
	}
}

func TestSkipListTieBreakIsUsernameAscending(t *testing.T) {
	ctx := context.Background()
	s := NewSkipList()
	_, _ = s.IncrBy(ctx, "zoe", 10)
	_, _ = s.IncrBy(ctx, "amy", 10)
	top, _ := s.TopN(ctx, 2)
	if top[0].Username != "amy" || top[1].Username != "zoe" {
		t.Fatalf("expected username-ascending tie break, got %#v", top)
	}
}

func TestSkipListTopNEmpty(t *testing.T) {
	s := NewSkipList()
	top, err := s.TopN(context.Background(), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(top) != 0 {
		t.Fatalf("expected empty board, got %#v", top)
	}
}

func TestSkipListLoadAndCount(t *testing.T) {
	ctx := context.Background()
	s := NewSkipList()
	err := s.Load(ctx, []core.RankEntry{
		{Username: "a", Score: 30},
		{Username: "b", Score: 20},
		{Username: "c", Score: 10},
	})
	if err != nil {
		t.Fatal(err)
	}
	n, _ := s.Count(ctx)
	if n != 3 {
		t.Fatalf("expected 3 entries, got %d", n)
	}
	top, _ := s.TopN(ctx, 10)
	if top[0].Score != 30 || top[2].Score != 10 {
		t.Fatalf("unexpected order after load: %#v", top)
	}
}
