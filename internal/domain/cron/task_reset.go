package cron

import (
	"context"
	"time"

	"github.com/arisefit-lab/backend/config"
	"github.com/arisefit-lab/backend/internal/domain"
	"github.com/arisefit-lab/backend/pkg/dateutil"
	"github.com/arisefit-lab/backend/pkg/xcontext"
)

// TaskResetCronJob flips completed recurring tasks back to pending once per
// day, independent of the rollover sweep.
type TaskResetCronJob struct {
	progressionDomain domain.ProgressionDomain
	cfg               config.ProgressionConfigs
}

func NewTaskResetCronJob(
	progressionDomain domain.ProgressionDomain,
	cfg config.ProgressionConfigs,
) *TaskResetCronJob {
	return &TaskResetCronJob{progressionDomain: progressionDomain, cfg: cfg}
}

func (job *TaskResetCronJob) Do(ctx context.Context) {
	count, err := job.progressionDomain.ResetAllTasks(ctx)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot reset tasks: %v", err)
		return
	}

	xcontext.Logger(ctx).Infof("Task reset finished, %d tasks back to pending", count)
}

func (job *TaskResetCronJob) RunNow() bool {
	return false
}

func (job *TaskResetCronJob) Next() time.Time {
	return dateutil.NextTrigger(time.Now(), job.cfg.TaskResetHour, job.cfg.TaskResetMinute)
}
