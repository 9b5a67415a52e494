package model

// Events published to the progression topic after a state transition
// commits. Key is the user id so per-user ordering is preserved.

const ProgressionTopic = "progression"

const (
	EventRolloverCompleted = "rollover_completed"
	EventRankChanged       = "rank_changed"
)

type ProgressionEvent struct {
	Type string `json:"type"`

	RolloverCompleted *RolloverCompletedEvent `json:"rollover_completed,omitempty"`
	RankChanged       *RankChangedEvent       `json:"rank_changed,omitempty"`
}

type RolloverCompletedEvent struct {
	UserID       string `json:"user_id"`
	XPRolledOver int64  `json:"xp_rolled_over"`
	NewTotalXP   int64  `json:"new_total_xp"`
	NewLevel     int    `json:"new_level"`
}

type RankChangedEvent struct {
	UserID   string `json:"user_id"`
	FromRank string `json:"from_rank"`
	ToRank   string `json:"to_rank"`
}
