package repository_test

import (
	"testing"

	"github.com/arisefit-lab/backend/internal/entity"
	"github.com/arisefit-lab/backend/internal/repository"
	"github.com/arisefit-lab/backend/pkg/testutil"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func Test_taskRepository_CompleteOnce(t *testing.T) {
	ctx := testutil.CreateFixtureContext()
	repo := repository.NewTaskRepository()

	task := &entity.DailyTask{
		Base:       entity.Base{ID: "task1"},
		UserID:     testutil.User1.ID,
		Title:      "morning run",
		XPReward:   300,
		Recurrence: entity.TaskDaily,
	}
	require.NoError(t, repo.Create(ctx, task))

	require.NoError(t, repo.Complete(ctx, task.ID))

	// The second completion of the same day must not apply.
	err := repo.Complete(ctx, task.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	count, err := repo.CountCompletedByUserID(ctx, testutil.User1.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)
}

func Test_taskRepository_ResetAllCompleted(t *testing.T) {
	ctx := testutil.CreateFixtureContext()
	repo := repository.NewTaskRepository()

	for _, id := range []string{"task1", "task2"} {
		require.NoError(t, repo.Create(ctx, &entity.DailyTask{
			Base:       entity.Base{ID: id},
			UserID:     testutil.User1.ID,
			Title:      "workout " + id,
			XPReward:   100,
			Recurrence: entity.TaskDaily,
		}))
		require.NoError(t, repo.Complete(ctx, id))
	}

	require.NoError(t, repo.Create(ctx, &entity.DailyTask{
		Base:       entity.Base{ID: "task3"},
		UserID:     testutil.User1.ID,
		Title:      "long hike",
		XPReward:   500,
		Recurrence: entity.TaskWeekly,
	}))
	require.NoError(t, repo.Complete(ctx, "task3"))

	// The daily sweep must leave the weekly task completed.
	count, err := repo.ResetAllCompleted(ctx, entity.TaskDaily)
	require.NoError(t, err)
	require.Equal(t, int64(2), count)

	weekly, err := repo.GetByID(ctx, "task3")
	require.NoError(t, err)
	require.True(t, weekly.Completed)

	count, err = repo.ResetAllCompleted(ctx, entity.TaskWeekly)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)

	// Reset tasks are completable again.
	require.NoError(t, repo.Complete(ctx, "task1"))

	count, err = repo.ResetAllCompleted(ctx, entity.TaskDaily)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)
}
