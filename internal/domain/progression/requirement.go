package progression

import "github.com/arisefit-lab/backend/internal/entity"

// RankUpRequirement gates the manual advancement out of a rank. The XP
// criterion is measured within the rank's window, not against the raw
// total.
type RankUpRequirement struct {
	XPRequired      int64
	TasksRequired   int64
	StreakRequired  int64
	MinStatRequired int64
}

var rankUpRequirements = map[entity.Rank]RankUpRequirement{
	entity.RankF:     {XPRequired: 40000, TasksRequired: 10, StreakRequired: 5, MinStatRequired: 10},
	entity.RankE:     {XPRequired: 160000, TasksRequired: 30, StreakRequired: 14, MinStatRequired: 20},
	entity.RankD:     {XPRequired: 400000, TasksRequired: 75, StreakRequired: 30, MinStatRequired: 35},
	entity.RankC:     {XPRequired: 600000, TasksRequired: 150, StreakRequired: 60, MinStatRequired: 30},
	entity.RankB:     {XPRequired: 1200000, TasksRequired: 300, StreakRequired: 90, MinStatRequired: 50},
	entity.RankA:     {XPRequired: 1800000, TasksRequired: 500, StreakRequired: 120, MinStatRequired: 70},
	entity.RankAPlus: {XPRequired: 3600000, TasksRequired: 750, StreakRequired: 150, MinStatRequired: 85},
	entity.RankS:     {XPRequired: 12000000, TasksRequired: 1000, StreakRequired: 180, MinStatRequired: 100},
}

// Requirement looks up the gate for the given rank. Ranks without an entry
// have no local advancement path.
func Requirement(rank entity.Rank) (RankUpRequirement, bool) {
	req, ok := rankUpRequirements[rank]
	return req, ok
}

// WindowProgress measures XP accumulated within the current rank window.
func WindowProgress(totalXP int64, req RankUpRequirement) int64 {
	if req.XPRequired <= 0 {
		return 0
	}

	return totalXP % req.XPRequired
}
