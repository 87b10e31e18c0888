package quiz

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"make24/core"
)

// Result reports the outcome of validating an answer expression.
type Result struct {
	Correct bool    `json:"is_correct"`
	Value   float64 `json:"result"`
}

// Validate checks a free-form answer against a challenge. The pipeline fails
// fast, each stage with its own error kind:
//
//  1. charset gate: digits, + - * / ( ) . and whitespace only. Anything else
//     is rejected before evaluation; the evaluator never sees it.
//  2. exactly four numeric literals (maximal digit runs).
//  3. the literals multiset-match the challenge: each challenge number is
//     consumed exactly once, so a value cannot be reused more times than the
//     challenge holds it.
//  4. arithmetic evaluation with standard precedence and parentheses;
//     division by zero is an evaluation failure, not a crash.
//
// Correctness means the value lands within Tolerance of Target.
func Validate(raw string, challenge core.Challenge) (Result, error) {
	expr := strings.TrimSpace(raw)
	if expr == "" {
		return Result{}, fmt.Errorf("%w: empty answer", core.ErrMalformedAnswer)
	}

	for _, r := range expr {
		if r >= '0' && r <= '9' || unicode.IsSpace(r) {
			continue
		}
		switch r {
		case '+', '-', '*', '/', '(', ')', '.':
			continue
		}
		return Result{}, fmt.Errorf("%w: invalid character %q", core.ErrMalformedAnswer, r)
	}

	literals := digitRuns(expr)
	if len(literals) != core.ChallengeSize {
		return Result{}, fmt.Errorf("%w: answer must use exactly %d numbers", core.ErrMalformedAnswer, core.ChallengeSize)
	}

	remaining := challenge.Counts()
	for _, lit := range literals {
		n, err := strconv.Atoi(lit)
		if err != nil || remaining[n] == 0 {
			return Result{}, fmt.Errorf("%w: %s", core.ErrChallengeMismatch, lit)
		}
		remaining[n]--
	}

	value, err := evaluate(expr)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", core.ErrEvaluation, err)
	}

	return Result{
		Correct: math.Abs(value-core.Target) < core.Tolerance,
		Value:   value,
	}, nil
}

// digitRuns extracts the maximal runs of decimal digits, i.e. the numbers the
// answer uses.
func digitRuns(s string) []string {
	var runs []string
	start := -1
	for i, r := range s {
		if r >= '0' && r <= '9' {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			runs = append(runs, s[start:i])
			start = -1
		}
	}
	if start >= 0 {
		runs = append(runs, s[start:])
	}
	return runs
}
