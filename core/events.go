package core

import "time"

// EventType enumerates domain events.
type EventType string

const (
	// EventScoreUpdate carries the top-N ranking after a score change.
	EventScoreUpdate EventType = "score_update"
)

// Event represents an immutable domain event.
type Event struct {
	Type        EventType     `json:"type"`
	Time        time.Time     `json:"time"`
	Username    Username      `json:"username,omitempty"`
	Delta       int64         `json:"delta,omitempty"`
	Score       int64         `json:"score,omitempty"`
	Leaderboard []RankedEntry `json:"leaderboard,omitempty"`
}

// NewScoreUpdate builds a score_update event from the post-increment state of
// the ranked board. The leaderboard snapshot must be taken after the
// triggering increment.
func NewScoreUpdate(user Username, delta, score int64, top []RankEntry) Event {
	return Event{
		Type:        EventScoreUpdate,
		Time:        time.Now().UTC(),
		Username:    user,
		Delta:       delta,
		Score:       score,
		Leaderboard: Ranked(top),
	}
}
