package quiz

import (
	cryptorand "crypto/rand"
	"encoding/binary"
	"math/rand"
	"sync"

	"make24/core"
)

// Store tracks the single active challenge per session. Issue overwrites any
// prior binding; Take returns and removes the binding in one critical section
// so concurrent submissions for the same session cannot both consume it.
type Store struct {
	mu    sync.Mutex
	bound map[string]core.Challenge
	rng   *rand.Rand
	rngMu sync.Mutex
}

func NewStore() *Store {
	// Use crypto/rand to generate a secure seed
	var seed [16]byte
	if _, err := cryptorand.Read(seed[:]); err != nil {
		// Fallback to zero seed if crypto/rand fails (extremely unlikely)
		seed = [16]byte{}
	}
	seed1 := binary.BigEndian.Uint64(seed[:8])
	seed2 := binary.BigEndian.Uint64(seed[8:])

	return &Store{
		bound: map[string]core.Challenge{},
		rng:   rand.New(rand.NewSource(int64(seed1 ^ seed2))),
	}
}

// Issue generates four integers independently and uniformly from [1,9] and
// binds them to the session, replacing any prior challenge.
func (s *Store) Issue(sessionID string) core.Challenge {
	var c core.Challenge
	s.rngMu.Lock()
	for i := range c {
		c[i] = s.rng.Intn(9) + 1
	}
	s.rngMu.Unlock()

	s.Bind(sessionID, c)
	return c
}

// Bind attaches a specific challenge to the session, replacing any prior one.
func (s *Store) Bind(sessionID string, c core.Challenge) {
	s.mu.Lock()
	s.bound[sessionID] = c
	s.mu.Unlock()
}

// Take returns the challenge bound to the session and removes the binding.
// The first submission therefore consumes the challenge regardless of whether
// the answer turns out to be correct.
func (s *Store) Take(sessionID string) (core.Challenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.bound[sessionID]
	if !ok {
		return core.Challenge{}, core.ErrNoActiveChallenge
	}
	delete(s.bound, sessionID)
	return c, nil
}

// Drop removes any binding for the session, e.g. on logout.
func (s *Store) Drop(sessionID string) {
	s.mu.Lock()
	delete(s.bound, sessionID)
	s.mu.Unlock()
}
