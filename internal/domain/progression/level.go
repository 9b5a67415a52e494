package progression

import "math"

const (
	MaxLevel      = 340
	LevelsPerRank = 20

	baseXP   = 1000
	exponent = 1.18
)

// PrestigeMultiplier rescales every level cost. Each prestige tier makes the
// curve half again as expensive.
func PrestigeMultiplier(prestige int) float64 {
	if prestige < 0 {
		prestige = 0
	}

	return 1 + 0.5*float64(prestige)
}

func levelCost(level int, prestige int) int64 {
	return int64(math.Floor(baseXP * math.Pow(float64(level-1), exponent) * PrestigeMultiplier(prestige)))
}

// XPForLevel returns the cumulative XP needed to reach the given level.
// Level one costs nothing.
func XPForLevel(level int, prestige int) int64 {
	if level > MaxLevel {
		level = MaxLevel
	}

	var total int64
	for l := 2; l <= level; l++ {
		total += levelCost(l, prestige)
	}

	return total
}

// LevelForXP is monotonically non-decreasing in totalXP for a fixed
// prestige, and never exceeds MaxLevel.
func LevelForXP(totalXP int64, prestige int) int {
	if totalXP < 0 {
		return 1
	}

	level := 1
	var cumulative int64
	for level < MaxLevel {
		cumulative += levelCost(level+1, prestige)
		if cumulative > totalXP {
			break
		}

		level++
	}

	return level
}

type Progress struct {
	Level               int
	CurrentLevelFloorXP int64
	NextLevelXP         int64
	PercentToNext       float64
}

// LevelProgress reports how far into the current level the total sits. At
// MaxLevel there is no next level, so the floor repeats and the percent
// pins at one hundred.
func LevelProgress(totalXP int64, prestige int) Progress {
	level := LevelForXP(totalXP, prestige)
	floor := XPForLevel(level, prestige)

	if level >= MaxLevel {
		return Progress{
			Level:               level,
			CurrentLevelFloorXP: floor,
			NextLevelXP:         floor,
			PercentToNext:       100,
		}
	}

	next := floor + levelCost(level+1, prestige)
	percent := float64(totalXP-floor) / float64(next-floor) * 100
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	return Progress{
		Level:               level,
		CurrentLevelFloorXP: floor,
		NextLevelXP:         next,
		PercentToNext:       percent,
	}
}
