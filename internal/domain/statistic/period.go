package statistic

import (
	"fmt"
	"time"

	"github.com/arisefit-lab/backend/pkg/dateutil"
)

type Period interface {
	Period() string
}

type weekPeriod struct {
	t time.Time
}

func NewWeekPeriod(t time.Time) Period {
	return weekPeriod{t: t}
}

func (p weekPeriod) Period() string {
	year, week := dateutil.CurrentWeek(p.t).ISOWeek()
	return fmt.Sprintf("week:%d-%d", year, week)
}

type monthPeriod struct {
	t time.Time
}

func NewMonthPeriod(t time.Time) Period {
	return monthPeriod{t: t}
}

func (p monthPeriod) Period() string {
	return fmt.Sprintf("month:%s", p.t.Format("01-2006"))
}

type allTimePeriod struct{}

func NewAllTimePeriod() Period {
	return allTimePeriod{}
}

func (p allTimePeriod) Period() string {
	return "alltime"
}

func ToPeriod(periodString string) (Period, error) {
	return ToPeriodWithTime(periodString, time.Now())
}

func ToPeriodWithTime(periodString string, current time.Time) (Period, error) {
	switch periodString {
	case "week":
		return NewWeekPeriod(current), nil
	case "month":
		return NewMonthPeriod(current), nil
	case "alltime":
		return NewAllTimePeriod(), nil
	}

	return nil, fmt.Errorf("invalid period, expected week, month or alltime, but got %s", periodString)
}
