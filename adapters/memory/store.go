package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"make24/core"
)

// ErrUserNotFound mirrors the SQL store's sentinel for the in-memory case.
var ErrUserNotFound = errors.New("user not found")

// ErrUsernameTaken is returned when registering an existing username.
var ErrUsernameTaken = errors.New("username already exists")

// Store is a concurrent in-memory score store, used by tests and the demo
// server where no external database is available.
type Store struct {
	users  sync.Map // map[core.Username]*userRecord
	idMu   sync.Mutex
	nextID int64
}

type userRecord struct {
	mu           sync.Mutex
	id           int64
	passwordHash string
	score        int64
	createdAt    time.Time
}

func New() *Store { return &Store{} }

func (s *Store) CreateUser(_ context.Context, username core.Username, passwordHash string) (int64, error) {
	s.idMu.Lock()
	s.nextID++
	id := s.nextID
	s.idMu.Unlock()

	rec := &userRecord{id: id, passwordHash: passwordHash, createdAt: time.Now().UTC()}
	if _, loaded := s.users.LoadOrStore(username, rec); loaded {
		return 0, ErrUsernameTaken
	}
	return id, nil
}

// PasswordHash returns the stored hash for login checks.
func (s *Store) PasswordHash(_ context.Context, username core.Username) (string, error) {
	v, ok := s.users.Load(username)
	if !ok {
		return "", ErrUserNotFound
	}
	rec := v.(*userRecord)
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return rec.passwordHash, nil
}

func (s *Store) SetScore(_ context.Context, username core.Username, score int64) error {
	v, ok := s.users.Load(username)
	if !ok {
		return ErrUserNotFound
	}
	rec := v.(*userRecord)
	rec.mu.Lock()
	rec.score = score
	rec.mu.Unlock()
	return nil
}

func (s *Store) GetScore(_ context.Context, username core.Username) (int64, error) {
	v, ok := s.users.Load(username)
	if !ok {
		return 0, ErrUserNotFound
	}
	rec := v.(*userRecord)
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return rec.score, nil
}

func (s *Store) TopScores(_ context.Context, limit int) ([]core.RankEntry, error) {
	var entries []core.RankEntry
	s.users.Range(func(k, v any) bool {
		rec := v.(*userRecord)
		rec.mu.Lock()
		score := rec.score
		rec.mu.Unlock()
		if score > 0 {
			entries = append(entries, core.RankEntry{Username: k.(core.Username), Score: score})
		}
		return true
	})
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score == entries[j].Score {
			return entries[i].Username < entries[j].Username
		}
		return entries[i].Score > entries[j].Score
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}
