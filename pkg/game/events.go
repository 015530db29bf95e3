package game

// Bus topics the engine publishes on. A UI (or the CLI) subscribes to
// these instead of polling engine state.
const (
	// TopicStatus carries a Status on every state transition.
	TopicStatus = "game:status"

	// TopicMatch carries a MatchEvent after every pair evaluation.
	TopicMatch = "game:match"

	// TopicScore carries a ScoreEvent whenever scores change.
	TopicScore = "game:score"
)

// MatchEvent describes one evaluated pair.
type MatchEvent struct {
	Product string // name on both cards of a match, "" on a mismatch
	Matched bool
	Points  int // awarded points, 0 on a mismatch
	Streak  int // multiplier after this evaluation
}

// ScoreEvent is the score line after an award or round end.
type ScoreEvent struct {
	Session int
	Total   int
	High    int
}
