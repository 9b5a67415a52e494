package dateutil

import "time"

func Date(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func BeginningOfDay(t time.Time) time.Time {
	return Date(t)
}

func NextDay(t time.Time) time.Time {
	return Date(t).AddDate(0, 0, 1)
}

// NextTrigger returns the next future occurrence of the given wall-clock
// trigger point: today's occurrence if it is still ahead of now, otherwise
// tomorrow's.
func NextTrigger(now time.Time, hour, minute int) time.Time {
	trigger := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !trigger.After(now) {
		trigger = trigger.AddDate(0, 0, 1)
	}

	return trigger
}

func CurrentWeek(t time.Time) time.Time {
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7
	}

	return Date(t).AddDate(0, 0, 1-weekday)
}

func LastWeek(t time.Time) time.Time {
	return t.AddDate(0, 0, -7)
}

func LastMonth(t time.Time) time.Time {
	return t.AddDate(0, -1, 0)
}
