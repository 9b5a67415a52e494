package domain

import (
	"context"
	"testing"
	"time"

	"github.com/arisefit-lab/backend/internal/domain/progression"
	"github.com/arisefit-lab/backend/internal/domain/statistic"
	"github.com/arisefit-lab/backend/internal/entity"
	"github.com/arisefit-lab/backend/internal/model"
	"github.com/arisefit-lab/backend/internal/repository"
	"github.com/arisefit-lab/backend/pkg/errorx"
	"github.com/arisefit-lab/backend/pkg/testutil"
	"github.com/arisefit-lab/backend/pkg/xcontext"
	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/require"
)

func newTestProgressionDomain(t *testing.T) (context.Context, ProgressionDomain) {
	ctx := testutil.CreateFixtureContext()

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	progressionRepo := repository.NewProgressionRepository()
	d := NewProgressionDomain(
		progressionRepo,
		repository.NewStatsRepository(),
		repository.NewTaskRepository(),
		repository.NewRankHistoryRepository(node),
		statistic.New(progressionRepo, &testutil.MockRedisClient{}),
		&testutil.MockPublisher{},
	)

	return ctx, d
}

func setProgression(t *testing.T, ctx context.Context, userID string, fields map[string]any) {
	tx := xcontext.DB(ctx).
		Model(&entity.UserProgression{}).
		Where("user_id=?", userID).
		Updates(fields)
	require.NoError(t, tx.Error)
	require.Equal(t, int64(1), tx.RowsAffected)
}

func setStats(t *testing.T, ctx context.Context, userID string, value int) {
	tx := xcontext.DB(ctx).
		Model(&entity.UserStats{}).
		Where("user_id=?", userID).
		Updates(map[string]any{
			"strength": value, "speed": value, "endurance": value,
			"agility": value, "power": value, "recovery": value,
		})
	require.NoError(t, tx.Error)
	require.Equal(t, int64(1), tx.RowsAffected)
}

func Test_progressionDomain_ApplyDailyGain(t *testing.T) {
	tests := []struct {
		name    string
		userID  string
		req     *model.ApplyDailyGainRequest
		wantErr error
	}{
		{
			name:   "happy case",
			userID: testutil.User1.ID,
			req:    &model.ApplyDailyGainRequest{XPGain: 700, StatPointsGain: 2},
		},
		{
			name:    "negative xp gain",
			userID:  testutil.User1.ID,
			req:     &model.ApplyDailyGainRequest{XPGain: -1},
			wantErr: errorx.New(errorx.BadRequest, "Gains must be non-negative"),
		},
		{
			name:    "negative stat points gain",
			userID:  testutil.User1.ID,
			req:     &model.ApplyDailyGainRequest{XPGain: 10, StatPointsGain: -1},
			wantErr: errorx.New(errorx.BadRequest, "Gains must be non-negative"),
		},
		{
			name:    "no progression record",
			userID:  "invalid-user",
			req:     &model.ApplyDailyGainRequest{XPGain: 10},
			wantErr: errorx.New(errorx.NotFound, "Not found progression record"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, d := newTestProgressionDomain(t)
			ctx = xcontext.WithRequestUserID(ctx, tt.userID)

			resp, err := d.ApplyDailyGain(ctx, tt.req)
			if tt.wantErr != nil {
				require.Error(t, err)
				require.Equal(t, tt.wantErr, err)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tt.req.XPGain, resp.Progression.XPToday)
			require.Equal(t, tt.req.XPGain, resp.Progression.WeeklyXP)
			require.Equal(t, tt.req.XPGain, resp.Progression.MonthlyXP)
			require.Equal(t, tt.req.StatPointsGain, resp.Progression.StatPoints)

			// The total is only touched by a rollover.
			require.Equal(t, int64(0), resp.Progression.TotalXP)
		})
	}
}

func Test_progressionDomain_ApplyDailyGain_LeavesRecordUntouchedOnError(t *testing.T) {
	ctx, d := newTestProgressionDomain(t)
	ctx = xcontext.WithRequestUserID(ctx, testutil.User1.ID)

	_, err := d.ApplyDailyGain(ctx, &model.ApplyDailyGainRequest{XPGain: -100})
	require.Error(t, err)

	record, err := repository.NewProgressionRepository().GetByUserID(ctx, testutil.User1.ID)
	require.NoError(t, err)
	require.Equal(t, int64(0), record.XPToday)
	require.Equal(t, int64(0), record.TotalXP)
	require.Equal(t, int64(0), record.StatPoints)
}

func Test_progressionDomain_Rollover(t *testing.T) {
	ctx, d := newTestProgressionDomain(t)
	ctx = xcontext.WithRequestUserID(ctx, testutil.User1.ID)

	_, err := d.ApplyDailyGain(ctx, &model.ApplyDailyGainRequest{XPGain: 1500})
	require.NoError(t, err)

	resp, err := d.Rollover(ctx, &model.RolloverRequest{})
	require.NoError(t, err)
	require.Equal(t, testutil.User1.ID, resp.Result.UserID)
	require.Equal(t, int64(1500), resp.Result.XPRolledOver)
	require.Equal(t, int64(1500), resp.Result.NewTotalXP)
	require.Equal(t, model.LevelChange{Old: 1, New: 2}, resp.Result.LevelChange)
	require.Nil(t, resp.Result.RankUp)

	record, err := repository.NewProgressionRepository().GetByUserID(ctx, testutil.User1.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1500), record.TotalXP)
	require.Equal(t, int64(0), record.XPToday)
	require.Equal(t, 2, record.Level)
	require.Equal(t, entity.RankF, record.Rank)
}

func Test_progressionDomain_Rollover_Idempotent(t *testing.T) {
	ctx, d := newTestProgressionDomain(t)
	ctx = xcontext.WithRequestUserID(ctx, testutil.User1.ID)

	_, err := d.ApplyDailyGain(ctx, &model.ApplyDailyGainRequest{XPGain: 500})
	require.NoError(t, err)

	first, err := d.Rollover(ctx, &model.RolloverRequest{})
	require.NoError(t, err)
	require.Equal(t, int64(500), first.Result.NewTotalXP)

	// The second call observes an empty bucket and changes nothing.
	second, err := d.Rollover(ctx, &model.RolloverRequest{})
	require.NoError(t, err)
	require.Equal(t, int64(0), second.Result.XPRolledOver)
	require.Equal(t, int64(500), second.Result.NewTotalXP)

	record, err := repository.NewProgressionRepository().GetByUserID(ctx, testutil.User1.ID)
	require.NoError(t, err)
	require.Equal(t, int64(500), record.TotalXP)
	require.Equal(t, int64(0), record.XPToday)
}

func Test_progressionDomain_Rollover_Conservation(t *testing.T) {
	ctx, d := newTestProgressionDomain(t)
	ctx = xcontext.WithRequestUserID(ctx, testutil.User1.ID)
	progressionRepo := repository.NewProgressionRepository()

	var wantTotal int64
	for _, gain := range []int64{0, 1, 999, 123456} {
		if gain > 0 {
			_, err := d.ApplyDailyGain(ctx, &model.ApplyDailyGainRequest{XPGain: gain})
			require.NoError(t, err)
		}

		before, err := progressionRepo.GetByUserID(ctx, testutil.User1.ID)
		require.NoError(t, err)

		resp, err := d.Rollover(ctx, &model.RolloverRequest{})
		require.NoError(t, err)

		wantTotal += gain
		require.Equal(t, before.TotalXP+before.XPToday, resp.Result.NewTotalXP)
		require.Equal(t, wantTotal, resp.Result.NewTotalXP)
	}
}

func Test_progressionDomain_Rollover_NotFound(t *testing.T) {
	ctx, d := newTestProgressionDomain(t)
	ctx = xcontext.WithRequestUserID(ctx, "invalid-user")

	_, err := d.Rollover(ctx, &model.RolloverRequest{})
	require.Error(t, err)
	require.Equal(t, errorx.New(errorx.NotFound, "Not found progression record"), err)
}

func Test_progressionDomain_Rollover_RankUpRecorded(t *testing.T) {
	ctx, d := newTestProgressionDomain(t)
	ctx = xcontext.WithRequestUserID(ctx, testutil.User1.ID)

	// Enough XP to cross the first rank threshold in one rollover.
	gain := progression.XPForLevel(20, 0)
	_, err := d.ApplyDailyGain(ctx, &model.ApplyDailyGainRequest{XPGain: gain})
	require.NoError(t, err)

	resp, err := d.Rollover(ctx, &model.RolloverRequest{})
	require.NoError(t, err)
	require.NotNil(t, resp.Result.RankUp)
	require.Equal(t, string(entity.RankF), resp.Result.RankUp.Old)
	require.Equal(t, string(entity.RankE), resp.Result.RankUp.New)

	historyResp, err := d.GetRankHistory(ctx, &model.GetRankHistoryRequest{})
	require.NoError(t, err)
	require.Len(t, historyResp.History, 1)
	require.Equal(t, string(entity.RankF), historyResp.History[0].FromRank)
	require.Equal(t, string(entity.RankE), historyResp.History[0].ToRank)
}

func Test_progressionDomain_RolloverAll(t *testing.T) {
	ctx, d := newTestProgressionDomain(t)
	progressionRepo := repository.NewProgressionRepository()

	require.NoError(t, progressionRepo.ApplyDailyGain(ctx, testutil.User1.ID, 100, 0))
	require.NoError(t, progressionRepo.ApplyDailyGain(ctx, testutil.User2.ID, 200, 0))

	results, failures := d.RolloverAll(ctx)
	require.Empty(t, failures)
	require.Len(t, results, 3)

	for _, userID := range []string{testutil.User1.ID, testutil.User2.ID, testutil.Admin.ID} {
		record, err := progressionRepo.GetByUserID(ctx, userID)
		require.NoError(t, err)
		require.Equal(t, int64(0), record.XPToday)
	}

	record, err := progressionRepo.GetByUserID(ctx, testutil.User2.ID)
	require.NoError(t, err)
	require.Equal(t, int64(200), record.TotalXP)
}

func Test_progressionDomain_AttemptRankUp_WindowProgress(t *testing.T) {
	ctx, d := newTestProgressionDomain(t)
	ctx = xcontext.WithRequestUserID(ctx, testutil.User1.ID)

	// A raw total above the requirement, but only 500 XP inside the
	// current window. Every other criterion is satisfied.
	setProgression(t, ctx, testutil.User1.ID, map[string]any{
		"total_xp":        40500,
		"tasks_completed": 50,
		"current_streak":  30,
	})
	setStats(t, ctx, testutil.User1.ID, 50)

	resp, err := d.AttemptRankUp(ctx, &model.AttemptRankUpRequest{})
	require.NoError(t, err)
	require.Equal(t, model.RankUpStatusRequirementsNotMet, resp.Status)
	require.Len(t, resp.Criteria, 4)

	byName := map[string]model.RankUpCriterion{}
	for _, criterion := range resp.Criteria {
		byName[criterion.Name] = criterion
	}

	require.False(t, byName["xp"].Met)
	require.Equal(t, int64(40000), byName["xp"].Required)
	require.Equal(t, int64(500), byName["xp"].Current)
	require.True(t, byName["tasks"].Met)
	require.True(t, byName["streak"].Met)
	require.True(t, byName["min_stat"].Met)

	record, err := repository.NewProgressionRepository().GetByUserID(ctx, testutil.User1.ID)
	require.NoError(t, err)
	require.Equal(t, entity.RankF, record.Rank)
}

func Test_progressionDomain_AttemptRankUp_SingleDeficientStat(t *testing.T) {
	ctx, d := newTestProgressionDomain(t)
	ctx = xcontext.WithRequestUserID(ctx, testutil.User1.ID)

	setProgression(t, ctx, testutil.User1.ID, map[string]any{
		"total_xp":        39999,
		"tasks_completed": 50,
		"current_streak":  30,
	})
	setStats(t, ctx, testutil.User1.ID, 50)

	// One attribute below the minimum blocks the attempt no matter how
	// high the others are.
	tx := xcontext.DB(ctx).
		Model(&entity.UserStats{}).
		Where("user_id=?", testutil.User1.ID).
		Update("recovery", 3)
	require.NoError(t, tx.Error)

	resp, err := d.AttemptRankUp(ctx, &model.AttemptRankUpRequest{})
	require.NoError(t, err)
	require.Equal(t, model.RankUpStatusRequirementsNotMet, resp.Status)

	for _, criterion := range resp.Criteria {
		if criterion.Name == "min_stat" {
			require.False(t, criterion.Met)
			require.Equal(t, int64(3), criterion.Current)
		}
	}
}

func Test_progressionDomain_AttemptRankUp_FreshUser(t *testing.T) {
	ctx, d := newTestProgressionDomain(t)
	ctx = xcontext.WithRequestUserID(ctx, testutil.User1.ID)

	resp, err := d.AttemptRankUp(ctx, &model.AttemptRankUpRequest{})
	require.NoError(t, err)
	require.Equal(t, model.RankUpStatusRequirementsNotMet, resp.Status)
	require.Len(t, resp.Criteria, 4)
	for _, criterion := range resp.Criteria {
		require.False(t, criterion.Met)
	}
}

func Test_progressionDomain_AttemptRankUp_TerminalRank(t *testing.T) {
	ctx, d := newTestProgressionDomain(t)
	ctx = xcontext.WithRequestUserID(ctx, testutil.User1.ID)

	setProgression(t, ctx, testutil.User1.ID, map[string]any{
		"total_xp": int64(1) << 50,
		"level":    340,
		"rank":     entity.RankMonarch,
	})

	resp, err := d.AttemptRankUp(ctx, &model.AttemptRankUpRequest{})
	require.NoError(t, err)
	require.Equal(t, model.RankUpStatusMaxRankReached, resp.Status)
}

func Test_progressionDomain_AttemptRankUp_CappedRank(t *testing.T) {
	ctx, d := newTestProgressionDomain(t)
	ctx = xcontext.WithRequestUserID(ctx, testutil.User1.ID)

	// Rank S with a level past the configured cap resolves globally, not
	// through the local gate.
	setProgression(t, ctx, testutil.User1.ID, map[string]any{
		"total_xp": progression.XPForLevel(240, 0),
		"level":    240,
		"rank":     entity.RankS,
	})

	resp, err := d.AttemptRankUp(ctx, &model.AttemptRankUpRequest{})
	require.NoError(t, err)
	require.Equal(t, model.RankUpStatusMaxRankReached, resp.Status)
}

func Test_progressionDomain_ResetTasks_WeeklySurvivesMidweek(t *testing.T) {
	ctx, d := newTestProgressionDomain(t)
	taskRepo := repository.NewTaskRepository()

	require.NoError(t, taskRepo.Create(ctx, &entity.DailyTask{
		Base:       entity.Base{ID: "daily-task"},
		UserID:     testutil.User1.ID,
		Title:      "morning run",
		XPReward:   100,
		Recurrence: entity.TaskDaily,
	}))
	require.NoError(t, taskRepo.Create(ctx, &entity.DailyTask{
		Base:       entity.Base{ID: "weekly-task"},
		UserID:     testutil.User1.ID,
		Title:      "long hike",
		XPReward:   500,
		Recurrence: entity.TaskWeekly,
	}))
	require.NoError(t, taskRepo.Complete(ctx, "daily-task"))
	require.NoError(t, taskRepo.Complete(ctx, "weekly-task"))

	// Midweek only the daily task comes back.
	wednesday := time.Date(2023, 5, 10, 1, 0, 0, 0, time.UTC)
	count, err := d.(*progressionDomain).resetTasks(ctx, wednesday)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)

	weekly, err := taskRepo.GetByID(ctx, "weekly-task")
	require.NoError(t, err)
	require.True(t, weekly.Completed)

	require.NoError(t, taskRepo.Complete(ctx, "daily-task"))

	monday := time.Date(2023, 5, 8, 1, 0, 0, 0, time.UTC)
	count, err = d.(*progressionDomain).resetTasks(ctx, monday)
	require.NoError(t, err)
	require.Equal(t, int64(2), count)
}

func Test_progressionDomain_GetRankTable(t *testing.T) {
	ctx, d := newTestProgressionDomain(t)

	resp, err := d.GetRankTable(ctx, &model.GetRankTableRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Thresholds, len(entity.RankList))
	require.Equal(t, string(entity.RankF), resp.Thresholds[0].Rank)
	require.Equal(t, int64(0), resp.Thresholds[0].MinXP)
	require.Equal(t, 1, resp.Thresholds[0].MinLevel)
	require.Equal(t, 19, resp.Thresholds[0].MaxLevel)

	require.NotEmpty(t, resp.Requirements)
	require.Equal(t, model.RankRequirement{
		Rank:            string(entity.RankF),
		XPRequired:      40000,
		TasksRequired:   10,
		StreakRequired:  5,
		MinStatRequired: 10,
	}, resp.Requirements[0])

	_, err = d.GetRankTable(ctx, &model.GetRankTableRequest{Prestige: -1})
	require.Error(t, err)
	require.Equal(t, errorx.New(errorx.BadRequest, "Prestige must be non-negative"), err)
}

func Test_progressionDomain_Get(t *testing.T) {
	ctx, d := newTestProgressionDomain(t)
	ctx = xcontext.WithRequestUserID(ctx, testutil.User1.ID)

	resp, err := d.Get(ctx, &model.GetProgressionRequest{})
	require.NoError(t, err)
	require.Equal(t, testutil.User1.ID, resp.Progression.UserID)
	require.Equal(t, 1, resp.Progression.Level)
	require.Equal(t, string(entity.RankF), resp.Progression.Rank)
	require.Equal(t, int64(1000), resp.Progression.LevelProgress.NextLevelXP)

	// The pending bucket counts toward the projection but not the level.
	setProgression(t, ctx, testutil.User1.ID, map[string]any{"xp_today": 1500})
	resp, err = d.Get(ctx, &model.GetProgressionRequest{})
	require.NoError(t, err)
	require.Equal(t, 1, resp.Progression.Level)
	require.Equal(t, 2, resp.ProjectedLevel)
	require.Equal(t, string(entity.RankF), resp.ProjectedRank)

	_, err = d.Get(ctx, &model.GetProgressionRequest{UserID: "invalid-user"})
	require.Error(t, err)
	require.Equal(t, errorx.New(errorx.NotFound, "Not found progression record"), err)
}

func Test_progressionDomain_AllocateStatPoints(t *testing.T) {
	ctx, d := newTestProgressionDomain(t)
	ctx = xcontext.WithRequestUserID(ctx, testutil.User1.ID)

	setProgression(t, ctx, testutil.User1.ID, map[string]any{"stat_points": 10})
	setStats(t, ctx, testutil.User1.ID, 5)

	resp, err := d.AllocateStatPoints(ctx, &model.AllocateStatPointsRequest{Strength: 3, Recovery: 1})
	require.NoError(t, err)
	require.Equal(t, int64(6), resp.StatPoints)
	require.Equal(t, 8, resp.Stats.Strength)
	require.Equal(t, 6, resp.Stats.Recovery)
	require.Equal(t, 5, resp.Stats.Speed)

	// The deduction persisted together with the attribute bumps.
	getResp, err := d.Get(ctx, &model.GetProgressionRequest{})
	require.NoError(t, err)
	require.Equal(t, int64(6), getResp.Progression.StatPoints)
	require.Equal(t, 8, getResp.Stats.Strength)

	_, err = d.AllocateStatPoints(ctx, &model.AllocateStatPointsRequest{Power: 100})
	require.Error(t, err)
	require.Equal(t, errorx.New(errorx.BadRequest, "Not enough stat points"), err)

	_, err = d.AllocateStatPoints(ctx, &model.AllocateStatPointsRequest{Speed: -1})
	require.Error(t, err)
	require.Equal(t, errorx.New(errorx.BadRequest, "Allocations must be non-negative"), err)

	_, err = d.AllocateStatPoints(ctx, &model.AllocateStatPointsRequest{})
	require.Error(t, err)
	require.Equal(t, errorx.New(errorx.BadRequest, "Nothing to allocate"), err)

	invalidCtx := xcontext.WithRequestUserID(ctx, "invalid-user")
	_, err = d.AllocateStatPoints(invalidCtx, &model.AllocateStatPointsRequest{Strength: 1})
	require.Error(t, err)
	require.Equal(t, errorx.New(errorx.NotFound, "Not found progression record"), err)
}
