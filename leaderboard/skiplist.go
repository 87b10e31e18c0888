package leaderboard

import (
	"context"
	cryptorand "crypto/rand"
	"encoding/binary"
	"math/rand"
	"sync"

	"make24/core"
)

// A simple skip list keyed by (score desc, username asc) to achieve O(log n)
// updates. IncrBy runs read-remove-reinsert under one lock, so concurrent
// increments for the same user accumulate instead of racing.

const maxLevel = 16
const pFactor = 0.25

type node struct {
	e    core.RankEntry
	next [maxLevel]*node
}

type SkipList struct {
	mu     sync.RWMutex
	head   *node
	lvl    int
	byUser map[core.Username]*node
	rng    *rand.Rand
}

func NewSkipList() *SkipList {
	// Use crypto/rand to generate a secure seed
	var seed [16]byte
	if _, err := cryptorand.Read(seed[:]); err != nil {
		// Fallback to zero seed if crypto/rand fails (extremely unlikely)
		seed = [16]byte{}
	}
	seed1 := binary.BigEndian.Uint64(seed[:8])
	seed2 := binary.BigEndian.Uint64(seed[8:])

	return &SkipList{
		head:   &node{},
		lvl:    1,
		byUser: map[core.Username]*node{},
		rng:    rand.New(rand.NewSource(int64(seed1 ^ seed2))),
	}
}

func (s *SkipList) randomLevel() int {
	lvl := 1
	for lvl < maxLevel && s.rng.Float64() < pFactor {
		lvl++
	}
	return lvl
}

func less(a, b core.RankEntry) bool {
	if a.Score == b.Score {
		return a.Username < b.Username
	}
	return a.Score > b.Score // higher score first
}

// IncrBy adds delta to the user's score and returns the new total.
func (s *SkipList) IncrBy(_ context.Context, user core.Username, delta int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var score int64
	if old, ok := s.byUser[user]; ok {
		score = old.e.Score
		s.removeLocked(user, old.e)
	}
	score += delta
	s.insertLocked(core.RankEntry{Username: user, Score: score})
	return score, nil
}

// Load bulk-inserts entries, replacing any existing entry per user.
func (s *SkipList) Load(_ context.Context, entries []core.RankEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range entries {
		if old, ok := s.byUser[e.Username]; ok {
			s.removeLocked(e.Username, old.e)
		}
		s.insertLocked(e)
	}
	return nil
}

func (s *SkipList) insertLocked(e core.RankEntry) {
	update := [maxLevel]*node{}
	cur := s.head
	for i := s.lvl - 1; i >= 0; i-- {
		for cur.next[i] != nil && less(cur.next[i].e, e) {
			cur = cur.next[i]
		}
		update[i] = cur
	}
	lvl := s.randomLevel()
	if lvl > s.lvl {
		for i := s.lvl; i < lvl; i++ {
			update[i] = s.head
		}
		s.lvl = lvl
	}
	n := &node{e: e}
	for i := 0; i < lvl; i++ {
		n.next[i] = update[i].next[i]
		update[i].next[i] = n
	}
	s.byUser[e.Username] = n
}

func (s *SkipList) removeLocked(user core.Username, e core.RankEntry) {
	update := [maxLevel]*node{}
	cur := s.head
	for i := s.lvl - 1; i >= 0; i-- {
		for cur.next[i] != nil && less(cur.next[i].e, e) {
			cur = cur.next[i]
		}
		update[i] = cur
	}
	target := update[0].next[0]
	if target == nil || target.e.Username != user {
		return
	}
	for i := 0; i < s.lvl; i++ {
		if update[i].next[i] == target {
			update[i].next[i] = target.next[i]
		}
	}
	delete(s.byUser, user)
	for s.lvl > 1 && s.head.next[s.lvl-1] == nil {
		s.lvl--
	}
}

// TopN returns up to n entries, score descending, ties username ascending.
func (s *SkipList) TopN(_ context.Context, n int) ([]core.RankEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n <= 0 {
		return nil, nil
	}
	out := make([]core.RankEntry, 0, n)
	cur := s.head.next[0]
	for cur != nil && len(out) < n {
		out = append(out, cur.e)
		cur = cur.next[0]
	}
	return out, nil
}

// Count reports how many users hold an entry.
func (s *SkipList) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.byUser)), nil
}

// Get returns the entry for a user, if present.
func (s *SkipList) Get(user core.Username) (core.RankEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n, ok := s.byUser[user]; ok {
		return n.e, true
	}
	return core.RankEntry{}, false
}

var _ Board = (*SkipList)(nil)
