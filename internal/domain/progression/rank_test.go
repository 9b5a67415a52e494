package progression

import (
	"testing"

	"github.com/arisefit-lab/backend/internal/entity"
	"github.com/stretchr/testify/require"
)

func Test_RankForXP_Lowest(t *testing.T) {
	require.Equal(t, entity.RankF, RankForXP(0, 0))
	require.Equal(t, entity.RankF, RankForXP(40000, 0))
}

func Test_RankForLevel(t *testing.T) {
	require.Equal(t, entity.RankF, RankForLevel(1))
	require.Equal(t, entity.RankF, RankForLevel(19))
	require.Equal(t, entity.RankE, RankForLevel(20))
	require.Equal(t, entity.RankE, RankForLevel(39))
	require.Equal(t, entity.RankEPlus, RankForLevel(40))
	require.Equal(t, entity.RankMonarch, RankForLevel(340))
	require.Equal(t, entity.RankMonarch, RankForLevel(10_000))
}

func Test_RankForXP_Monotonic(t *testing.T) {
	rankIndex := func(r entity.Rank) int {
		for i, candidate := range entity.RankList {
			if candidate == r {
				return i
			}
		}
		return -1
	}

	prev := 0
	for xp := int64(0); xp <= 100_000_000; xp += 500_000 {
		index := rankIndex(RankForXP(xp, 0))
		require.GreaterOrEqual(t, index, prev)
		prev = index
	}
}

func Test_NextRank(t *testing.T) {
	next, ok := NextRank(entity.RankF)
	require.True(t, ok)
	require.Equal(t, entity.RankE, next)

	next, ok = NextRank(entity.RankSSPlus)
	require.True(t, ok)
	require.Equal(t, entity.RankMonarch, next)

	_, ok = NextRank(entity.RankMonarch)
	require.False(t, ok)
}

func Test_Thresholds(t *testing.T) {
	thresholds := Thresholds(0)
	require.Len(t, thresholds, len(entity.RankList))
	require.Equal(t, entity.RankF, thresholds[0].Rank)
	require.Equal(t, int64(0), thresholds[0].MinXP)
	require.Equal(t, 1, thresholds[0].MinLevel)
	require.Equal(t, 19, thresholds[0].MaxLevel)
	require.Equal(t, MaxLevel, thresholds[len(thresholds)-1].MaxLevel)

	for i := 1; i < len(thresholds); i++ {
		require.Greater(t, thresholds[i].MinXP, thresholds[i-1].MinXP)
		require.Equal(t, thresholds[i].MinLevel-1, thresholds[i-1].MaxLevel)
	}

	// A total right at a threshold resolves to that rank.
	for _, threshold := range thresholds {
		require.Equal(t, threshold.Rank, RankForXP(threshold.MinXP, 0))
	}
}
