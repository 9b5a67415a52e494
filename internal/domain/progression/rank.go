package progression

import "github.com/arisefit-lab/backend/internal/entity"

// RankForLevel maps a level onto the ordered rank list. Each rank spans
// twenty levels, the last one is open ended.
func RankForLevel(level int) entity.Rank {
	if level < 1 {
		level = 1
	}

	index := level / LevelsPerRank
	if index >= len(entity.RankList) {
		index = len(entity.RankList) - 1
	}

	return entity.RankList[index]
}

// RankForXP derives the automatic rank for a cumulative total.
func RankForXP(totalXP int64, prestige int) entity.Rank {
	return RankForLevel(LevelForXP(totalXP, prestige))
}

// NextRank returns the successor in the ordered rank list, or false at the
// terminal rank.
func NextRank(rank entity.Rank) (entity.Rank, bool) {
	for i, r := range entity.RankList {
		if r == rank {
			if i+1 >= len(entity.RankList) {
				return rank, false
			}

			return entity.RankList[i+1], true
		}
	}

	return rank, false
}

type Threshold struct {
	Rank     entity.Rank
	MinLevel int
	MaxLevel int
	MinXP    int64
}

// Thresholds returns the full rank table for a prestige tier, ordered from
// lowest to highest minimum XP. The table is total over all non-negative
// totals, the first entry always starts at zero.
func Thresholds(prestige int) []Threshold {
	thresholds := make([]Threshold, 0, len(entity.RankList))
	for i, rank := range entity.RankList {
		minLevel := i * LevelsPerRank
		if minLevel < 1 {
			minLevel = 1
		}

		maxLevel := (i+1)*LevelsPerRank - 1
		if i == len(entity.RankList)-1 {
			maxLevel = MaxLevel
		}

		thresholds = append(thresholds, Threshold{
			Rank:     rank,
			MinLevel: minLevel,
			MaxLevel: maxLevel,
			MinXP:    XPForLevel(i*LevelsPerRank, prestige),
		})
	}

	return thresholds
}
