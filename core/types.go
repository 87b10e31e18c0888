package core

import (
	"errors"
	"strings"
)

// Username uniquely identifies a player. Usernames are owned by the auth
// layer; the scoring core only references them.
type Username string

// ChallengeSize is the number of values a challenge carries.
const ChallengeSize = 4

// Target is the value an answer expression must reach.
const Target = 24

// Tolerance absorbs floating-point rounding when comparing against Target
// without certifying near-misses.
const Tolerance = 1e-4

// Challenge is a multiset of four integers in [1,9]. Order is irrelevant;
// repeats are allowed. A challenge is bound to exactly one session.
type Challenge [ChallengeSize]int

// Counts returns the multiset view of the challenge.
func (c Challenge) Counts() map[int]int {
	m := make(map[int]int, ChallengeSize)
	for _, n := range c {
		m[n]++
	}
	return m
}

// Numbers returns the challenge values as a slice for JSON responses.
func (c Challenge) Numbers() []int {
	out := make([]int, ChallengeSize)
	copy(out, c[:])
	return out
}

// RankEntry is a (username, score) pair held by a ranked board.
type RankEntry struct {
	Username Username `json:"username"`
	Score    int64    `json:"score"`
}

// RankedEntry is a RankEntry with its 1-based position, as broadcast to
// observers.
type RankedEntry struct {
	Rank     int      `json:"rank"`
	Username Username `json:"username"`
	Score    int64    `json:"score"`
}

// Ranked annotates entries with their 1-based position.
func Ranked(entries []RankEntry) []RankedEntry {
	out := make([]RankedEntry, len(entries))
	for i, e := range entries {
		out[i] = RankedEntry{Rank: i + 1, Username: e.Username, Score: e.Score}
	}
	return out
}

// NormalizeUsername trims surrounding whitespace and lowercases the name.
func NormalizeUsername(u Username) (Username, error) {
	s := strings.TrimSpace(string(u))
	if s == "" {
		return "", errors.New("empty username")
	}
	return Username(strings.ToLower(s)), nil
}

// ValidateUsername enforces the registration charset: 3-30 characters of
// letters, digits, and underscores.
func ValidateUsername(u Username) error {
	s := string(u)
	if len(s) < 3 || len(s) > 30 {
		return errors.New("username must be between 3 and 30 characters")
	}
	for _, r := range s {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '_' {
			continue
		}
		return errors.New("username can only contain letters, numbers, and underscores")
	}
	return nil
}
