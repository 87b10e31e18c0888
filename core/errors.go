package core

import "errors"

// Answer pipeline failures, ordered by where the pipeline rejects. Each kind
// is reported to the caller with its specific reason; persistence and
// broadcast failures are never part of this set since they do not affect
// whether an answer was correct.
var (
	// ErrNoActiveChallenge: no challenge is bound to the session.
	ErrNoActiveChallenge = errors.New("no active quiz session")

	// ErrMalformedAnswer: disallowed characters, or not exactly four
	// numeric literals.
	ErrMalformedAnswer = errors.New("malformed answer")

	// ErrChallengeMismatch: the literals used do not multiset-match the
	// challenge numbers.
	ErrChallengeMismatch = errors.New("used number not in quiz")

	// ErrEvaluation: well-formed charset but not a valid arithmetic
	// expression, or division by zero.
	ErrEvaluation = errors.New("invalid mathematical expression")
)
