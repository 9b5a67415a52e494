package progression

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_XPForLevel(t *testing.T) {
	require.Equal(t, int64(0), XPForLevel(1, 0))
	require.Equal(t, int64(0), XPForLevel(0, 0))

	// Level two costs the base amount, floor(1000 * 1^1.18).
	require.Equal(t, int64(1000), XPForLevel(2, 0))

	// The curve is strictly increasing from level two on.
	for level := 2; level <= MaxLevel; level++ {
		require.Greater(t, XPForLevel(level, 0), XPForLevel(level-1, 0))
	}
}

func Test_XPForLevel_Prestige(t *testing.T) {
	// Each prestige tier makes every level half again as expensive.
	require.Equal(t, int64(1500), XPForLevel(2, 1))
	require.Equal(t, int64(2000), XPForLevel(2, 2))

	for level := 2; level <= 50; level++ {
		require.Greater(t, XPForLevel(level, 1), XPForLevel(level, 0))
	}
}

func Test_LevelForXP(t *testing.T) {
	require.Equal(t, 1, LevelForXP(0, 0))
	require.Equal(t, 1, LevelForXP(999, 0))
	require.Equal(t, 2, LevelForXP(1000, 0))
	require.Equal(t, 1, LevelForXP(-5, 0))

	// Round trip: the XP floor of a level maps back to that level.
	for level := 1; level <= 100; level++ {
		require.Equal(t, level, LevelForXP(XPForLevel(level, 0), 0))
	}
}

func Test_LevelForXP_Monotonic(t *testing.T) {
	prev := 1
	for xp := int64(0); xp <= 2_000_000; xp += 10_000 {
		level := LevelForXP(xp, 0)
		require.GreaterOrEqual(t, level, prev)
		prev = level
	}
}

func Test_LevelForXP_Cap(t *testing.T) {
	require.Equal(t, MaxLevel, LevelForXP(1<<62, 0))
}

func Test_LevelProgress(t *testing.T) {
	progress := LevelProgress(500, 0)
	require.Equal(t, 1, progress.Level)
	require.Equal(t, int64(0), progress.CurrentLevelFloorXP)
	require.Equal(t, int64(1000), progress.NextLevelXP)
	require.InDelta(t, 50, progress.PercentToNext, 0.001)
}

func Test_LevelProgress_MaxLevel(t *testing.T) {
	progress := LevelProgress(1<<62, 0)
	require.Equal(t, MaxLevel, progress.Level)
	require.Equal(t, progress.CurrentLevelFloorXP, progress.NextLevelXP)
	require.Equal(t, float64(100), progress.PercentToNext)
}
