package cron

import (
	"context"
	"time"

	"github.com/arisefit-lab/backend/config"
	"github.com/arisefit-lab/backend/internal/domain"
	"github.com/arisefit-lab/backend/pkg/dateutil"
	"github.com/arisefit-lab/backend/pkg/xcontext"
)

// DailyRolloverCronJob folds every user's pending XP into their totals once
// per day at the configured trigger point.
type DailyRolloverCronJob struct {
	progressionDomain domain.ProgressionDomain
	cfg               config.ProgressionConfigs
}

func NewDailyRolloverCronJob(
	progressionDomain domain.ProgressionDomain,
	cfg config.ProgressionConfigs,
) *DailyRolloverCronJob {
	return &DailyRolloverCronJob{progressionDomain: progressionDomain, cfg: cfg}
}

func (job *DailyRolloverCronJob) Do(ctx context.Context) {
	results, failures := job.progressionDomain.RolloverAll(ctx)
	xcontext.Logger(ctx).Infof("Rollover sweep finished: %d ok, %d failed", len(results), len(failures))
	for _, failure := range failures {
		xcontext.Logger(ctx).Warnf("Rollover of %s failed: %s", failure.UserID, failure.Reason)
	}
}

func (job *DailyRolloverCronJob) RunNow() bool {
	return false
}

func (job *DailyRolloverCronJob) Next() time.Time {
	return dateutil.NextTrigger(time.Now(), job.cfg.RolloverHour, job.cfg.RolloverMinute)
}
