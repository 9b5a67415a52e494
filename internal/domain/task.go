package domain

import (
	"context"
	"errors"
	"time"

	"github.com/arisefit-lab/backend/internal/domain/progression"
	"github.com/arisefit-lab/backend/internal/domain/statistic"
	"github.com/arisefit-lab/backend/internal/entity"
	"github.com/arisefit-lab/backend/internal/model"
	"github.com/arisefit-lab/backend/internal/repository"
	"github.com/arisefit-lab/backend/pkg/dateutil"
	"github.com/arisefit-lab/backend/pkg/enum"
	"github.com/arisefit-lab/backend/pkg/errorx"
	"github.com/arisefit-lab/backend/pkg/xcontext"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TaskDomain interface {
	Create(ctx context.Context, req *model.CreateTaskRequest) (*model.CreateTaskResponse, error)
	GetMyTasks(ctx context.Context, req *model.GetMyTasksRequest) (*model.GetMyTasksResponse, error)
	Complete(ctx context.Context, req *model.CompleteTaskRequest) (*model.CompleteTaskResponse, error)
}

type taskDomain struct {
	taskRepo        repository.TaskRepository
	progressionRepo repository.ProgressionRepository
	leaderboard     statistic.Leaderboard
}

func NewTaskDomain(
	taskRepo repository.TaskRepository,
	progressionRepo repository.ProgressionRepository,
	leaderboard statistic.Leaderboard,
) TaskDomain {
	return &taskDomain{
		taskRepo:        taskRepo,
		progressionRepo: progressionRepo,
		leaderboard:     leaderboard,
	}
}

func (d *taskDomain) Create(ctx context.Context, req *model.CreateTaskRequest) (*model.CreateTaskResponse, error) {
	if req.Title == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow an empty title")
	}

	if req.XPReward < 0 {
		return nil, errorx.New(errorx.BadRequest, "XP reward must be non-negative")
	}

	recurrence := entity.TaskDaily
	if req.Recurrence != "" {
		var err error
		recurrence, err = enum.ToEnum[entity.TaskRecurrence](req.Recurrence)
		if err != nil {
			return nil, errorx.New(errorx.BadRequest, "Invalid recurrence %s", req.Recurrence)
		}
	}

	task := &entity.DailyTask{
		Base:       entity.Base{ID: uuid.NewString()},
		UserID:     xcontext.RequestUserID(ctx),
		Title:      req.Title,
		XPReward:   req.XPReward,
		Recurrence: recurrence,
	}

	if err := d.taskRepo.Create(ctx, task); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create task: %v", err)
		return nil, errorx.Unknown
	}

	return &model.CreateTaskResponse{ID: task.ID}, nil
}

func (d *taskDomain) GetMyTasks(ctx context.Context, req *model.GetMyTasksRequest) (*model.GetMyTasksResponse, error) {
	tasks, err := d.taskRepo.GetListByUserID(ctx, xcontext.RequestUserID(ctx))
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get tasks: %v", err)
		return nil, errorx.Unknown
	}

	modelTasks := []model.Task{}
	for i := range tasks {
		modelTasks = append(modelTasks, model.ConvertTask(&tasks[i]))
	}

	return &model.GetMyTasksResponse{Tasks: modelTasks}, nil
}

// Complete marks the task done, pays its XP into the pending bucket, and
// advances the streak. The cumulative total is untouched until rollover.
func (d *taskDomain) Complete(ctx context.Context, req *model.CompleteTaskRequest) (*model.CompleteTaskResponse, error) {
	userID := xcontext.RequestUserID(ctx)

	task, err := d.taskRepo.GetByID(ctx, req.TaskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found task")
		}

		xcontext.Logger(ctx).Errorf("Cannot get task: %v", err)
		return nil, errorx.Unknown
	}

	if task.UserID != userID {
		return nil, errorx.New(errorx.PermissionDenied, "Not allow to complete another user's task")
	}

	record, err := d.progressionRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found progression record")
		}

		xcontext.Logger(ctx).Errorf("Cannot get progression record: %v", err)
		return nil, errorx.Unknown
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if err := d.taskRepo.Complete(ctx, task.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.AlreadyExists, "The task is already completed")
		}

		xcontext.Logger(ctx).Errorf("Cannot complete task: %v", err)
		return nil, errorx.Unknown
	}

	if err := d.progressionRepo.ApplyDailyGain(ctx, userID, task.XPReward, 0); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot apply task reward: %v", err)
		return nil, errorx.Unknown
	}

	streak := nextStreak(record.LastActive, record.CurrentStreak)
	if err := d.progressionRepo.RecordTaskCompletion(ctx, userID, streak); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot record task completion: %v", err)
		return nil, errorx.Unknown
	}

	xcontext.WithCommitDBTransaction(ctx)

	now := time.Now()
	err = d.leaderboard.ChangeLeaderboard(ctx, task.XPReward, userID,
		statistic.NewWeekPeriod(now), statistic.NewMonthPeriod(now), statistic.NewAllTimePeriod())
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot update leaderboard: %v", err)
	}

	record, err = d.progressionRepo.GetByUserID(ctx, userID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot reload progression record: %v", err)
		return nil, errorx.Unknown
	}

	progress := progression.LevelProgress(record.TotalXP, record.Prestige)
	return &model.CompleteTaskResponse{
		Progression: model.ConvertProgression(record, model.LevelProgress{
			CurrentLevelFloorXP: progress.CurrentLevelFloorXP,
			NextLevelXP:         progress.NextLevelXP,
			PercentToNext:       progress.PercentToNext,
		}),
	}, nil
}

// nextStreak extends the streak when the previous activity was yesterday,
// keeps it for a same-day completion, and restarts it otherwise.
func nextStreak(lastActive time.Time, current int64) int64 {
	if lastActive.IsZero() {
		return 1
	}

	today := dateutil.Date(time.Now())
	lastDay := dateutil.Date(lastActive)

	switch {
	case lastDay.Equal(today):
		if current == 0 {
			return 1
		}
		return current
	case lastDay.Equal(today.AddDate(0, 0, -1)):
		return current + 1
	default:
		return 1
	}
}
