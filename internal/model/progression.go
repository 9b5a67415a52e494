package model

import "time"

type LevelProgress struct {
	CurrentLevelFloorXP int64   `json:"current_level_floor_xp"`
	NextLevelXP         int64   `json:"next_level_xp"`
	PercentToNext       float64 `json:"percent_to_next"`
}

type Progression struct {
	UserID         string        `json:"user_id"`
	TotalXP        int64         `json:"total_xp"`
	XPToday        int64         `json:"xp_today"`
	WeeklyXP       int64         `json:"weekly_xp"`
	MonthlyXP      int64         `json:"monthly_xp"`
	Level          int           `json:"level"`
	Rank           string        `json:"rank"`
	Prestige       int           `json:"prestige"`
	StatPoints     int64         `json:"stat_points"`
	TasksCompleted int64         `json:"tasks_completed"`
	CurrentStreak  int64         `json:"current_streak"`
	LastActive     time.Time     `json:"last_active"`
	LevelProgress  LevelProgress `json:"level_progress"`
}

type Stats struct {
	Strength  int `json:"strength"`
	Speed     int `json:"speed"`
	Endurance int `json:"endurance"`
	Agility   int `json:"agility"`
	Power     int `json:"power"`
	Recovery  int `json:"recovery"`
}

// Rank table

type RankThreshold struct {
	Rank     string `json:"rank"`
	MinLevel int    `json:"min_level"`
	MaxLevel int    `json:"max_level"`
	MinXP    int64  `json:"min_xp"`
}

type RankRequirement struct {
	Rank            string `json:"rank"`
	XPRequired      int64  `json:"xp_required"`
	TasksRequired   int64  `json:"tasks_required"`
	StreakRequired  int64  `json:"streak_required"`
	MinStatRequired int64  `json:"min_stat_required"`
}

type GetRankTableRequest struct {
	Prestige int `json:"prestige"`
}

type GetRankTableResponse struct {
	Thresholds   []RankThreshold   `json:"thresholds"`
	Requirements []RankRequirement `json:"requirements"`
}

// Progression record

type GetProgressionRequest struct {
	UserID string `json:"user_id"`
}

type GetProgressionResponse struct {
	Progression Progression `json:"progression"`
	Stats       Stats       `json:"stats"`

	// Projected values include the pending bucket, as if the next rollover
	// already ran.
	ProjectedLevel int    `json:"projected_level"`
	ProjectedRank  string `json:"projected_rank"`

	GlobalPosition uint64 `json:"global_position,omitempty"`
}

type AllocateStatPointsRequest struct {
	Strength  int `json:"strength"`
	Speed     int `json:"speed"`
	Endurance int `json:"endurance"`
	Agility   int `json:"agility"`
	Power     int `json:"power"`
	Recovery  int `json:"recovery"`
}

type AllocateStatPointsResponse struct {
	Stats      Stats `json:"stats"`
	StatPoints int64 `json:"stat_points"`
}

type ApplyDailyGainRequest struct {
	XPGain         int64 `json:"xp_gain"`
	StatPointsGain int64 `json:"stat_points_gain"`
}

type ApplyDailyGainResponse struct {
	Progression Progression `json:"progression"`
}

// Rollover

type LevelChange struct {
	Old int `json:"old"`
	New int `json:"new"`
}

type RankChange struct {
	Old string `json:"old"`
	New string `json:"new"`
}

type RolloverResult struct {
	UserID       string      `json:"user_id"`
	XPRolledOver int64       `json:"xp_rolled_over"`
	NewTotalXP   int64       `json:"new_total_xp"`
	LevelChange  LevelChange `json:"level_change"`
	RankUp       *RankChange `json:"rank_up,omitempty"`
}

type RolloverFailure struct {
	UserID string `json:"user_id"`
	Reason string `json:"reason"`
}

type RolloverRequest struct{}

type RolloverResponse struct {
	Result RolloverResult `json:"result"`
}

type RolloverAllRequest struct{}

type RolloverAllResponse struct {
	Results  []RolloverResult  `json:"results"`
	Failures []RolloverFailure `json:"failures"`
}

// Rank-up gate

const (
	RankUpStatusSuccess            = "success"
	RankUpStatusRequirementsNotMet = "requirements_not_met"
	RankUpStatusMaxRankReached     = "max_rank_reached"
)

type RankUpCriterion struct {
	Name     string `json:"name"`
	Required int64  `json:"required"`
	Current  int64  `json:"current"`
	Met      bool   `json:"met"`
}

type AttemptRankUpRequest struct{}

type AttemptRankUpResponse struct {
	Status   string            `json:"status"`
	NewRank  string            `json:"new_rank,omitempty"`
	Criteria []RankUpCriterion `json:"criteria,omitempty"`
}

// Scheduler

type NextResetTimeRequest struct{}

type NextResetTimeResponse struct {
	NextTaskReset time.Time `json:"next_task_reset"`
	NextRollover  time.Time `json:"next_rollover"`
}

type TriggerRolloverRequest struct{}

type TriggerRolloverResponse struct {
	Results  []RolloverResult  `json:"results"`
	Failures []RolloverFailure `json:"failures"`
}

type TriggerTaskResetRequest struct{}

type TriggerTaskResetResponse struct {
	ResetCount int64 `json:"reset_count"`
}

// Tasks

type Task struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	XPReward   int64  `json:"xp_reward"`
	Recurrence string `json:"recurrence"`
	Completed  bool   `json:"completed"`
}

type CreateTaskRequest struct {
	Title      string `json:"title"`
	XPReward   int64  `json:"xp_reward"`
	Recurrence string `json:"recurrence"`
}

type CreateTaskResponse struct {
	ID string `json:"id"`
}

type GetMyTasksRequest struct{}

type GetMyTasksResponse struct {
	Tasks []Task `json:"tasks"`
}

type CompleteTaskRequest struct {
	TaskID string `json:"task_id"`
}

type CompleteTaskResponse struct {
	Progression Progression `json:"progression"`
}

// Leaderboard

type LeaderboardEntry struct {
	UserID   string `json:"user_id"`
	Name     string `json:"name"`
	Value    int64  `json:"value"`
	Position uint64 `json:"position"`
}

type GetLeaderboardRequest struct {
	Period string `json:"period"`
	Offset int    `json:"offset"`
	Limit  int    `json:"limit"`
}

type GetLeaderboardResponse struct {
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
}

// Rank history

type RankHistoryEntry struct {
	FromRank string `json:"from_rank"`
	ToRank   string `json:"to_rank"`
	Level    int    `json:"level"`
	TotalXP  int64  `json:"total_xp"`
}

type GetRankHistoryRequest struct {
	UserID string `json:"user_id"`
	Offset int    `json:"offset"`
	Limit  int    `json:"limit"`
}

type GetRankHistoryResponse struct {
	History []RankHistoryEntry `json:"history"`
}
