package dateutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func Test_NextTrigger(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{
			name: "before today's trigger",
			now:  time.Date(2023, 5, 10, 11, 59, 0, 0, time.UTC),
			want: time.Date(2023, 5, 10, 12, 0, 0, 0, time.UTC),
		},
		{
			name: "after today's trigger",
			now:  time.Date(2023, 5, 10, 12, 1, 0, 0, time.UTC),
			want: time.Date(2023, 5, 11, 12, 0, 0, 0, time.UTC),
		},
		{
			name: "exactly at the trigger",
			now:  time.Date(2023, 5, 10, 12, 0, 0, 0, time.UTC),
			want: time.Date(2023, 5, 11, 12, 0, 0, 0, time.UTC),
		},
		{
			name: "end of month",
			now:  time.Date(2023, 5, 31, 13, 0, 0, 0, time.UTC),
			want: time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, NextTrigger(tt.now, 12, 0))
		})
	}
}

func Test_CurrentWeek(t *testing.T) {
	// Wednesday resolves to the preceding Monday.
	wednesday := time.Date(2023, 5, 10, 15, 30, 0, 0, time.UTC)
	require.Equal(t, time.Date(2023, 5, 8, 0, 0, 0, 0, time.UTC), CurrentWeek(wednesday))

	// Sunday belongs to the week that started six days earlier.
	sunday := time.Date(2023, 5, 14, 9, 0, 0, 0, time.UTC)
	require.Equal(t, time.Date(2023, 5, 8, 0, 0, 0, 0, time.UTC), CurrentWeek(sunday))

	monday := time.Date(2023, 5, 8, 0, 0, 0, 0, time.UTC)
	require.Equal(t, monday, CurrentWeek(monday))
}

func Test_NextDay(t *testing.T) {
	now := time.Date(2023, 12, 31, 23, 59, 0, 0, time.UTC)
	require.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), NextDay(now))
}
