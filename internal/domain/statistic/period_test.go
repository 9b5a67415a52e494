package statistic

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func Test_Period(t *testing.T) {
	now := time.Date(2023, 5, 10, 15, 0, 0, 0, time.UTC)

	require.Equal(t, "week:2023-19", NewWeekPeriod(now).Period())
	require.Equal(t, "month:05-2023", NewMonthPeriod(now).Period())
	require.Equal(t, "alltime", NewAllTimePeriod().Period())
}

func Test_Period_WeekBoundary(t *testing.T) {
	// Sunday still belongs to the week that started the previous Monday.
	sunday := time.Date(2023, 5, 14, 23, 0, 0, 0, time.UTC)
	monday := time.Date(2023, 5, 8, 0, 0, 0, 0, time.UTC)
	require.Equal(t, NewWeekPeriod(monday).Period(), NewWeekPeriod(sunday).Period())
}

func Test_ToPeriodWithTime(t *testing.T) {
	now := time.Date(2023, 5, 10, 15, 0, 0, 0, time.UTC)

	period, err := ToPeriodWithTime("week", now)
	require.NoError(t, err)
	require.Equal(t, "week:2023-19", period.Period())

	period, err = ToPeriodWithTime("month", now)
	require.NoError(t, err)
	require.Equal(t, "month:05-2023", period.Period())

	period, err = ToPeriodWithTime("alltime", now)
	require.NoError(t, err)
	require.Equal(t, "alltime", period.Period())

	_, err = ToPeriodWithTime("decade", now)
	require.Error(t, err)
}
