package engine

import (
	"context"
	"log/slog"

	"make24/core"
	"make24/leaderboard"
	"make24/quiz"
)

// TopSize is the number of entries exposed by leaderboard reads and
// broadcasts.
const TopSize = 10

// QuizService wires the challenge store, validator, ranked board, durable
// write-through, and event bus into the submission pipeline.
type QuizService struct {
	challenges *quiz.Store
	board      leaderboard.Board
	syncer     *Syncer
	bus        *EventBus
	logger     *slog.Logger
}

func NewQuizService(challenges *quiz.Store, board leaderboard.Board, syncer *Syncer, bus *EventBus, logger *slog.Logger) *QuizService {
	if challenges == nil || board == nil || syncer == nil || bus == nil {
		panic("NewQuizService requires non-nil challenges, board, syncer, and bus")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &QuizService{challenges: challenges, board: board, syncer: syncer, bus: bus, logger: logger}
}

// Subscribe convenience method.
func (s *QuizService) Subscribe(typ core.EventType, handler func(context.Context, core.Event)) func() {
	return s.bus.Subscribe(typ, handler)
}

func (s *QuizService) Publish(ctx context.Context, ev core.Event) {
	s.bus.Publish(ctx, ev)
}

// NewQuiz issues a fresh challenge bound to the session, replacing any prior
// one.
func (s *QuizService) NewQuiz(sessionID string) core.Challenge {
	return s.challenges.Issue(sessionID)
}

// DropChallenge discards any challenge bound to the session. Wire it to
// session expiry so abandoned bindings do not accumulate.
func (s *QuizService) DropChallenge(sessionID string) {
	s.challenges.Drop(sessionID)
}

// SubmitAnswer consumes the session's challenge and validates the answer
// against it. A correct answer by a known identity increments the ranked
// score, schedules the durable write-through, and broadcasts the new top-N.
// The returned result never waits on persistence or broadcast, only on the
// board increment.
func (s *QuizService) SubmitAnswer(ctx context.Context, sessionID string, user core.Username, raw string) (quiz.Result, error) {
	challenge, err := s.challenges.Take(sessionID)
	if err != nil {
		return quiz.Result{}, err
	}

	res, err := quiz.Validate(raw, challenge)
	if err != nil {
		return quiz.Result{}, err
	}
	if !res.Correct || user == "" {
		return res, nil
	}

	normalized, err := core.NormalizeUsername(user)
	if err != nil {
		return res, nil
	}

	score, err := s.board.IncrBy(ctx, normalized, 1)
	if err != nil {
		// The answer is still correct; ranking catches up on the next one.
		s.logger.Error("failed to increment score", "username", normalized, "error", err)
		return res, nil
	}

	s.syncer.Enqueue(normalized, score)

	// Snapshot after the increment so the broadcast never shows a stale
	// pre-increment ranking for this update.
	top, err := s.board.TopN(ctx, TopSize)
	if err != nil {
		s.logger.Error("failed to snapshot leaderboard", "error", err)
		return res, nil
	}
	s.bus.Publish(ctx, core.NewScoreUpdate(normalized, 1, score, top))
	return res, nil
}

// Leaderboard returns the current top-N ranking.
func (s *QuizService) Leaderboard(ctx context.Context) ([]core.RankEntry, error) {
	return s.board.TopN(ctx, TopSize)
}

// Close stops the event bus and drains pending write-throughs.
func (s *QuizService) Close() {
	s.bus.Close()
	s.syncer.Wait()
}
