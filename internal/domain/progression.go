package domain

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/arisefit-lab/backend/internal/common"
	"github.com/arisefit-lab/backend/internal/domain/progression"
	"github.com/arisefit-lab/backend/internal/domain/statistic"
	"github.com/arisefit-lab/backend/internal/entity"
	"github.com/arisefit-lab/backend/internal/model"
	"github.com/arisefit-lab/backend/internal/repository"
	"github.com/arisefit-lab/backend/pkg/dateutil"
	"github.com/arisefit-lab/backend/pkg/errorx"
	"github.com/arisefit-lab/backend/pkg/pubsub"
	"github.com/arisefit-lab/backend/pkg/xcontext"
	"github.com/puzpuzpuz/xsync"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const rolloverSweepConcurrency = 8

type ProgressionDomain interface {
	Get(ctx context.Context, req *model.GetProgressionRequest) (*model.GetProgressionResponse, error)
	GetRankTable(ctx context.Context, req *model.GetRankTableRequest) (*model.GetRankTableResponse, error)
	ApplyDailyGain(ctx context.Context, req *model.ApplyDailyGainRequest) (*model.ApplyDailyGainResponse, error)
	AllocateStatPoints(ctx context.Context, req *model.AllocateStatPointsRequest) (*model.AllocateStatPointsResponse, error)
	Rollover(ctx context.Context, req *model.RolloverRequest) (*model.RolloverResponse, error)
	AttemptRankUp(ctx context.Context, req *model.AttemptRankUpRequest) (*model.AttemptRankUpResponse, error)
	GetRankHistory(ctx context.Context, req *model.GetRankHistoryRequest) (*model.GetRankHistoryResponse, error)
	NextResetTime(ctx context.Context, req *model.NextResetTimeRequest) (*model.NextResetTimeResponse, error)
	TriggerRollover(ctx context.Context, req *model.TriggerRolloverRequest) (*model.TriggerRolloverResponse, error)
	TriggerTaskReset(ctx context.Context, req *model.TriggerTaskResetRequest) (*model.TriggerTaskResetResponse, error)

	// RolloverAll sweeps every user. It never aborts on a single user's
	// failure, the failures are collected and reported instead.
	RolloverAll(ctx context.Context) ([]model.RolloverResult, []model.RolloverFailure)
	ResetAllTasks(ctx context.Context) (int64, error)
}

type progressionDomain struct {
	progressionRepo repository.ProgressionRepository
	statsRepo       repository.StatsRepository
	taskRepo        repository.TaskRepository
	rankHistoryRepo repository.RankHistoryRepository
	leaderboard     statistic.Leaderboard
	publisher       pubsub.Publisher

	// userLocks serializes in-process writers per user. The database guard
	// in CompleteRollover covers writers in other processes.
	userLocks *xsync.MapOf[string, *sync.Mutex]
}

func NewProgressionDomain(
	progressionRepo repository.ProgressionRepository,
	statsRepo repository.StatsRepository,
	taskRepo repository.TaskRepository,
	rankHistoryRepo repository.RankHistoryRepository,
	leaderboard statistic.Leaderboard,
	publisher pubsub.Publisher,
) ProgressionDomain {
	return &progressionDomain{
		progressionRepo: progressionRepo,
		statsRepo:       statsRepo,
		taskRepo:        taskRepo,
		rankHistoryRepo: rankHistoryRepo,
		leaderboard:     leaderboard,
		publisher:       publisher,
		userLocks:       xsync.NewMapOf[*sync.Mutex](),
	}
}

func (d *progressionDomain) lockUser(userID string) *sync.Mutex {
	mutex, _ := d.userLocks.LoadOrStore(userID, &sync.Mutex{})
	return mutex
}

func (d *progressionDomain) Get(
	ctx context.Context, req *model.GetProgressionRequest,
) (*model.GetProgressionResponse, error) {
	userID := req.UserID
	if userID == "" {
		userID = xcontext.RequestUserID(ctx)
	}

	record, err := d.progressionRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found progression record")
		}

		xcontext.Logger(ctx).Errorf("Cannot get progression record: %v", err)
		return nil, errorx.Unknown
	}

	stats, err := d.statsRepo.GetByUserID(ctx, userID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		xcontext.Logger(ctx).Errorf("Cannot get user stats: %v", err)
		return nil, errorx.Unknown
	}

	position, err := d.leaderboard.GetPosition(ctx, userID, statistic.NewAllTimePeriod())
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot get leaderboard position: %v", err)
		position = 0
	}

	projectedTotal := record.TotalXP + record.XPToday
	progress := progression.LevelProgress(record.TotalXP, record.Prestige)
	return &model.GetProgressionResponse{
		Progression: model.ConvertProgression(record, model.LevelProgress{
			CurrentLevelFloorXP: progress.CurrentLevelFloorXP,
			NextLevelXP:         progress.NextLevelXP,
			PercentToNext:       progress.PercentToNext,
		}),
		Stats:          model.ConvertStats(stats),
		ProjectedLevel: progression.LevelForXP(projectedTotal, record.Prestige),
		ProjectedRank:  string(progression.RankForXP(projectedTotal, record.Prestige)),
		GlobalPosition: position,
	}, nil
}

func (d *progressionDomain) GetRankTable(
	ctx context.Context, req *model.GetRankTableRequest,
) (*model.GetRankTableResponse, error) {
	if req.Prestige < 0 {
		return nil, errorx.New(errorx.BadRequest, "Prestige must be non-negative")
	}

	thresholds := []model.RankThreshold{}
	for _, t := range progression.Thresholds(req.Prestige) {
		thresholds = append(thresholds, model.RankThreshold{
			Rank:     string(t.Rank),
			MinLevel: t.MinLevel,
			MaxLevel: t.MaxLevel,
			MinXP:    t.MinXP,
		})
	}

	// Ranks without a requirement entry have no manual advancement path and
	// are left out.
	requirements := []model.RankRequirement{}
	for _, rank := range entity.RankList {
		requirement, ok := progression.Requirement(rank)
		if !ok {
			continue
		}

		requirements = append(requirements, model.RankRequirement{
			Rank:            string(rank),
			XPRequired:      requirement.XPRequired,
			TasksRequired:   requirement.TasksRequired,
			StreakRequired:  requirement.StreakRequired,
			MinStatRequired: requirement.MinStatRequired,
		})
	}

	return &model.GetRankTableResponse{Thresholds: thresholds, Requirements: requirements}, nil
}

func (d *progressionDomain) ApplyDailyGain(
	ctx context.Context, req *model.ApplyDailyGainRequest,
) (*model.ApplyDailyGainResponse, error) {
	if req.XPGain < 0 || req.StatPointsGain < 0 {
		return nil, errorx.New(errorx.BadRequest, "Gains must be non-negative")
	}

	userID := xcontext.RequestUserID(ctx)
	mutex := d.lockUser(userID)
	mutex.Lock()
	defer mutex.Unlock()

	err := d.progressionRepo.ApplyDailyGain(ctx, userID, req.XPGain, req.StatPointsGain)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found progression record")
		}

		xcontext.Logger(ctx).Errorf("Cannot apply daily gain: %v", err)
		return nil, errorx.Unknown
	}

	now := time.Now()
	err = d.leaderboard.ChangeLeaderboard(ctx, req.XPGain, userID,
		statistic.NewWeekPeriod(now), statistic.NewMonthPeriod(now), statistic.NewAllTimePeriod())
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot update leaderboard: %v", err)
	}

	record, err := d.progressionRepo.GetByUserID(ctx, userID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot reload progression record: %v", err)
		return nil, errorx.Unknown
	}

	progress := progression.LevelProgress(record.TotalXP, record.Prestige)
	return &model.ApplyDailyGainResponse{
		Progression: model.ConvertProgression(record, model.LevelProgress{
			CurrentLevelFloorXP: progress.CurrentLevelFloorXP,
			NextLevelXP:         progress.NextLevelXP,
			PercentToNext:       progress.PercentToNext,
		}),
	}, nil
}

// AllocateStatPoints spends the unspent pool into the attribute columns. The
// deduction and the attribute bumps commit together.
func (d *progressionDomain) AllocateStatPoints(
	ctx context.Context, req *model.AllocateStatPointsRequest,
) (*model.AllocateStatPointsResponse, error) {
	deltas := map[string]int{
		"strength":  req.Strength,
		"speed":     req.Speed,
		"endurance": req.Endurance,
		"agility":   req.Agility,
		"power":     req.Power,
		"recovery":  req.Recovery,
	}

	var total int64
	for column, delta := range deltas {
		if delta < 0 {
			return nil, errorx.New(errorx.BadRequest, "Allocations must be non-negative")
		}

		if delta == 0 {
			delete(deltas, column)
			continue
		}

		total += int64(delta)
	}

	if total == 0 {
		return nil, errorx.New(errorx.BadRequest, "Nothing to allocate")
	}

	userID := xcontext.RequestUserID(ctx)
	mutex := d.lockUser(userID)
	mutex.Lock()
	defer mutex.Unlock()

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	record, err := d.progressionRepo.GetForUpdate(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found progression record")
		}

		xcontext.Logger(ctx).Errorf("Cannot get progression record: %v", err)
		return nil, errorx.Unknown
	}

	if record.StatPoints < total {
		return nil, errorx.New(errorx.BadRequest, "Not enough stat points")
	}

	if err := d.progressionRepo.SpendStatPoints(ctx, userID, total); err != nil {
		if errors.Is(err, repository.ErrStaleProgression) {
			return nil, errorx.New(errorx.Unavailable, "Stat points changed concurrently, retry later")
		}

		xcontext.Logger(ctx).Errorf("Cannot spend stat points: %v", err)
		return nil, errorx.Unknown
	}

	if err := d.statsRepo.Increase(ctx, userID, deltas); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot increase stats: %v", err)
		return nil, errorx.Unknown
	}

	stats, err := d.statsRepo.GetByUserID(ctx, userID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot reload user stats: %v", err)
		return nil, errorx.Unknown
	}

	xcontext.WithCommitDBTransaction(ctx)

	return &model.AllocateStatPointsResponse{
		Stats:      model.ConvertStats(stats),
		StatPoints: record.StatPoints - total,
	}, nil
}

func (d *progressionDomain) Rollover(
	ctx context.Context, req *model.RolloverRequest,
) (*model.RolloverResponse, error) {
	result, err := d.rolloverUser(ctx, xcontext.RequestUserID(ctx))
	if err != nil {
		return nil, err
	}

	return &model.RolloverResponse{Result: *result}, nil
}

// rolloverUser folds the pending bucket into the total as one atomic
// read-modify-write. A stale write is retried from the read, up to the
// configured attempt budget.
func (d *progressionDomain) rolloverUser(ctx context.Context, userID string) (*model.RolloverResult, error) {
	mutex := d.lockUser(userID)
	mutex.Lock()
	defer mutex.Unlock()

	cfg := xcontext.Configs(ctx).Progression
	attempts := cfg.RetryAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			time.Sleep(cfg.RetryBackoff)
		}

		result, err := d.rolloverOnce(ctx, userID)
		if err == nil {
			return result, nil
		}

		if !errors.Is(err, repository.ErrStaleProgression) {
			return nil, err
		}

		xcontext.Logger(ctx).Debugf("Retry rollover of %s: %v", userID, err)
		lastErr = err
	}

	xcontext.Logger(ctx).Errorf("Rollover retries exhausted for %s: %v", userID, lastErr)
	return nil, errorx.New(errorx.Unavailable, "Storage unavailable, retry later")
}

func (d *progressionDomain) rolloverOnce(ctx context.Context, userID string) (*model.RolloverResult, error) {
	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	record, err := d.progressionRepo.GetForUpdate(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found progression record")
		}

		xcontext.Logger(ctx).Errorf("Cannot get progression record: %v", err)
		return nil, errorx.Unknown
	}

	newTotal := record.TotalXP + record.XPToday
	newLevel := progression.LevelForXP(newTotal, record.Prestige)
	newRank := progression.RankForXP(newTotal, record.Prestige)

	update := entity.UserProgression{
		TotalXP:          newTotal,
		Level:            newLevel,
		Rank:             newRank,
		LastRolloverDate: dateutil.Date(time.Now()).Format(model.DefaultDateLayout),
	}

	if err := d.progressionRepo.CompleteRollover(ctx, userID, record.XPToday, &update); err != nil {
		if errors.Is(err, repository.ErrStaleProgression) {
			return nil, err
		}

		xcontext.Logger(ctx).Errorf("Cannot complete rollover: %v", err)
		return nil, errorx.Unknown
	}

	result := &model.RolloverResult{
		UserID:       userID,
		XPRolledOver: record.XPToday,
		NewTotalXP:   newTotal,
		LevelChange:  model.LevelChange{Old: record.Level, New: newLevel},
	}

	if newRank != record.Rank {
		result.RankUp = &model.RankChange{Old: string(record.Rank), New: string(newRank)}
		err := d.rankHistoryRepo.Create(ctx, &entity.RankHistory{
			UserID:   userID,
			FromRank: record.Rank,
			ToRank:   newRank,
			Level:    newLevel,
			TotalXP:  newTotal,
		})
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot create rank history: %v", err)
			return nil, errorx.Unknown
		}
	}

	xcontext.WithCommitDBTransaction(ctx)

	d.publishRollover(ctx, result)
	return result, nil
}

func (d *progressionDomain) publishRollover(ctx context.Context, result *model.RolloverResult) {
	if d.publisher == nil {
		return
	}

	events := []model.ProgressionEvent{{
		Type: model.EventRolloverCompleted,
		RolloverCompleted: &model.RolloverCompletedEvent{
			UserID:       result.UserID,
			XPRolledOver: result.XPRolledOver,
			NewTotalXP:   result.NewTotalXP,
			NewLevel:     result.LevelChange.New,
		},
	}}

	if result.RankUp != nil {
		events = append(events, model.ProgressionEvent{
			Type: model.EventRankChanged,
			RankChanged: &model.RankChangedEvent{
				UserID:   result.UserID,
				FromRank: result.RankUp.Old,
				ToRank:   result.RankUp.New,
			},
		})
	}

	for _, event := range events {
		b, err := json.Marshal(event)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot marshal progression event: %v", err)
			continue
		}

		err = d.publisher.Publish(ctx, model.ProgressionTopic, &pubsub.Pack{
			Key: []byte(result.UserID),
			Msg: b,
		})
		if err != nil {
			xcontext.Logger(ctx).Warnf("Cannot publish progression event: %v", err)
		}
	}
}

func (d *progressionDomain) RolloverAll(ctx context.Context) ([]model.RolloverResult, []model.RolloverFailure) {
	startTime := time.Now()
	defer func() {
		common.PromHistograms[common.RolloverSweepDuration].
			WithLabelValues("sweep").
			Observe(time.Since(startTime).Seconds())
	}()

	userIDs, err := d.progressionRepo.GetAllUserIDs(ctx)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot list users for rollover sweep: %v", err)
		return nil, []model.RolloverFailure{{Reason: "cannot list users"}}
	}

	var mutex sync.Mutex
	results := []model.RolloverResult{}
	failures := []model.RolloverFailure{}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(rolloverSweepConcurrency)
	for _, userID := range userIDs {
		userID := userID
		group.Go(func() error {
			result, err := d.rolloverUser(groupCtx, userID)

			mutex.Lock()
			defer mutex.Unlock()
			if err != nil {
				common.PromCounters[common.RolloverSweepFailure].
					WithLabelValues("rollover").Inc()
				failures = append(failures, model.RolloverFailure{
					UserID: userID,
					Reason: err.Error(),
				})
			} else {
				results = append(results, *result)
			}

			// One user's failure never aborts the sweep.
			return nil
		})
	}

	group.Wait()
	return results, failures
}

func (d *progressionDomain) ResetAllTasks(ctx context.Context) (int64, error) {
	return d.resetTasks(ctx, time.Now())
}

func (d *progressionDomain) resetTasks(ctx context.Context, now time.Time) (int64, error) {
	count, err := d.taskRepo.ResetAllCompleted(ctx, entity.TaskDaily)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot reset completed tasks: %v", err)
		return 0, errorx.Unknown
	}

	// Weekly tasks only come back at the start of the week.
	if now.Weekday() == time.Monday {
		weeklyCount, err := d.taskRepo.ResetAllCompleted(ctx, entity.TaskWeekly)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot reset completed weekly tasks: %v", err)
			return 0, errorx.Unknown
		}

		count += weeklyCount
	}

	return count, nil
}

func (d *progressionDomain) AttemptRankUp(
	ctx context.Context, req *model.AttemptRankUpRequest,
) (*model.AttemptRankUpResponse, error) {
	userID := xcontext.RequestUserID(ctx)
	mutex := d.lockUser(userID)
	mutex.Lock()
	defer mutex.Unlock()

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	record, err := d.progressionRepo.GetForUpdate(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found progression record")
		}

		xcontext.Logger(ctx).Errorf("Cannot get progression record: %v", err)
		return nil, errorx.Unknown
	}

	currentRank := progression.RankForXP(record.TotalXP, record.Prestige)
	nextRank, ok := progression.NextRank(currentRank)
	if !ok {
		return &model.AttemptRankUpResponse{Status: model.RankUpStatusMaxRankReached}, nil
	}

	cfg := xcontext.Configs(ctx).Progression
	if string(currentRank) == cfg.CappedRank && record.Level >= cfg.CappedRankLevel {
		return &model.AttemptRankUpResponse{Status: model.RankUpStatusMaxRankReached}, nil
	}

	requirement, ok := progression.Requirement(currentRank)
	if !ok {
		// No local advancement path out of this rank.
		return &model.AttemptRankUpResponse{Status: model.RankUpStatusMaxRankReached}, nil
	}

	stats, err := d.statsRepo.GetByUserID(ctx, userID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			xcontext.Logger(ctx).Errorf("Cannot get user stats: %v", err)
			return nil, errorx.Unknown
		}

		stats = &entity.UserStats{}
	}

	windowProgress := progression.WindowProgress(record.TotalXP, requirement)
	criteria := []model.RankUpCriterion{
		{
			Name:     "xp",
			Required: requirement.XPRequired,
			Current:  windowProgress,
			Met:      windowProgress >= requirement.XPRequired,
		},
		{
			Name:     "tasks",
			Required: requirement.TasksRequired,
			Current:  record.TasksCompleted,
			Met:      record.TasksCompleted >= requirement.TasksRequired,
		},
		{
			Name:     "streak",
			Required: requirement.StreakRequired,
			Current:  record.CurrentStreak,
			Met:      record.CurrentStreak >= requirement.StreakRequired,
		},
		{
			Name:     "min_stat",
			Required: requirement.MinStatRequired,
			Current:  int64(stats.Min()),
			Met:      int64(stats.Min()) >= requirement.MinStatRequired,
		},
	}

	for _, criterion := range criteria {
		if !criterion.Met {
			return &model.AttemptRankUpResponse{
				Status:   model.RankUpStatusRequirementsNotMet,
				Criteria: criteria,
			}, nil
		}
	}

	if err := d.progressionRepo.UpdateRank(ctx, userID, record.Rank, nextRank, record.Level); err != nil {
		if errors.Is(err, repository.ErrStaleProgression) {
			return nil, errorx.New(errorx.Unavailable, "Rank changed concurrently, retry later")
		}

		xcontext.Logger(ctx).Errorf("Cannot update rank: %v", err)
		return nil, errorx.Unknown
	}

	err = d.rankHistoryRepo.Create(ctx, &entity.RankHistory{
		UserID:   userID,
		FromRank: record.Rank,
		ToRank:   nextRank,
		Level:    record.Level,
		TotalXP:  record.TotalXP,
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create rank history: %v", err)
		return nil, errorx.Unknown
	}

	xcontext.WithCommitDBTransaction(ctx)

	if d.publisher != nil {
		b, err := json.Marshal(model.ProgressionEvent{
			Type: model.EventRankChanged,
			RankChanged: &model.RankChangedEvent{
				UserID:   userID,
				FromRank: string(record.Rank),
				ToRank:   string(nextRank),
			},
		})
		if err == nil {
			err = d.publisher.Publish(ctx, model.ProgressionTopic, &pubsub.Pack{
				Key: []byte(userID),
				Msg: b,
			})
		}
		if err != nil {
			xcontext.Logger(ctx).Warnf("Cannot publish rank change event: %v", err)
		}
	}

	return &model.AttemptRankUpResponse{
		Status:   model.RankUpStatusSuccess,
		NewRank:  string(nextRank),
		Criteria: criteria,
	}, nil
}

func (d *progressionDomain) GetRankHistory(
	ctx context.Context, req *model.GetRankHistoryRequest,
) (*model.GetRankHistoryResponse, error) {
	userID := req.UserID
	if userID == "" {
		userID = xcontext.RequestUserID(ctx)
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 20
	}

	histories, err := d.rankHistoryRepo.GetListByUserID(ctx, userID, req.Offset, limit)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get rank history: %v", err)
		return nil, errorx.Unknown
	}

	entries := []model.RankHistoryEntry{}
	for i := range histories {
		entries = append(entries, model.ConvertRankHistory(&histories[i]))
	}

	return &model.GetRankHistoryResponse{History: entries}, nil
}

func (d *progressionDomain) NextResetTime(
	ctx context.Context, req *model.NextResetTimeRequest,
) (*model.NextResetTimeResponse, error) {
	cfg := xcontext.Configs(ctx).Progression
	now := time.Now()
	return &model.NextResetTimeResponse{
		NextTaskReset: dateutil.NextTrigger(now, cfg.TaskResetHour, cfg.TaskResetMinute),
		NextRollover:  dateutil.NextTrigger(now, cfg.RolloverHour, cfg.RolloverMinute),
	}, nil
}

func (d *progressionDomain) TriggerRollover(
	ctx context.Context, req *model.TriggerRolloverRequest,
) (*model.TriggerRolloverResponse, error) {
	results, failures := d.RolloverAll(ctx)
	return &model.TriggerRolloverResponse{Results: results, Failures: failures}, nil
}

func (d *progressionDomain) TriggerTaskReset(
	ctx context.Context, req *model.TriggerTaskResetRequest,
) (*model.TriggerTaskResetResponse, error) {
	count, err := d.ResetAllTasks(ctx)
	if err != nil {
		return nil, err
	}

	return &model.TriggerTaskResetResponse{ResetCount: count}, nil
}
