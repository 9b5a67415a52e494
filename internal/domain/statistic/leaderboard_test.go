package statistic

import (
	"context"
	"sort"
	"testing"

	"github.com/arisefit-lab/backend/internal/entity"
	"github.com/arisefit-lab/backend/internal/repository"
	"github.com/arisefit-lab/backend/pkg/testutil"
	"github.com/arisefit-lab/backend/pkg/xcontext"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

// fakeSortedSets backs the redis mock with in-memory sorted sets.
func fakeSortedSets() (*testutil.MockRedisClient, map[string]map[string]float64) {
	store := map[string]map[string]float64{}

	client := &testutil.MockRedisClient{
		ExistFunc: func(ctx context.Context, key string) (bool, error) {
			_, ok := store[key]
			return ok, nil
		},
		ZAddFunc: func(ctx context.Context, key string, z redis.Z) error {
			if store[key] == nil {
				store[key] = map[string]float64{}
			}
			store[key][z.Member.(string)] = z.Score
			return nil
		},
		ZIncrByFunc: func(ctx context.Context, key string, incr int64, member string) error {
			if store[key] == nil {
				store[key] = map[string]float64{}
			}
			store[key][member] += float64(incr)
			return nil
		},
		ZRevRangeWithScoresFunc: func(ctx context.Context, key string, offset, limit int) ([]redis.Z, error) {
			results := []redis.Z{}
			for member, score := range store[key] {
				results = append(results, redis.Z{Member: member, Score: score})
			}

			sort.Slice(results, func(i, j int) bool { return results[i].Score > results[j].Score })
			if offset >= len(results) {
				return nil, nil
			}

			end := offset + limit
			if end > len(results) {
				end = len(results)
			}

			return results[offset:end], nil
		},
	}

	return client, store
}

func setTotalXP(t *testing.T, ctx context.Context, userID string, totalXP int64) {
	tx := xcontext.DB(ctx).
		Model(&entity.UserProgression{}).
		Where("user_id=?", userID).
		Update("total_xp", totalXP)
	require.NoError(t, tx.Error)
	require.Equal(t, int64(1), tx.RowsAffected)
}

func Test_leaderboard_GetLeaderboard_LazyRebuild(t *testing.T) {
	ctx := testutil.CreateFixtureContext()
	setTotalXP(t, ctx, testutil.User1.ID, 300)
	setTotalXP(t, ctx, testutil.User2.ID, 500)

	client, store := fakeSortedSets()
	lb := New(repository.NewProgressionRepository(), client)

	// The redis key does not exist yet, the first read rebuilds it from
	// the database.
	entries, err := lb.GetLeaderboard(ctx, NewAllTimePeriod(), 0, 10)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	require.Equal(t, testutil.User2.ID, entries[0].UserID)
	require.Equal(t, int64(500), entries[0].Value)
	require.Equal(t, uint64(1), entries[0].Position)
	require.Equal(t, testutil.User1.ID, entries[1].UserID)
	require.Equal(t, uint64(2), entries[1].Position)

	require.Contains(t, store, "leaderboard:alltime")
}

func Test_leaderboard_GetLeaderboard_Pagination(t *testing.T) {
	ctx := testutil.CreateFixtureContext()
	setTotalXP(t, ctx, testutil.User1.ID, 300)
	setTotalXP(t, ctx, testutil.User2.ID, 500)

	client, _ := fakeSortedSets()
	lb := New(repository.NewProgressionRepository(), client)

	entries, err := lb.GetLeaderboard(ctx, NewAllTimePeriod(), 1, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, testutil.User1.ID, entries[0].UserID)
	require.Equal(t, uint64(2), entries[0].Position)
}

func Test_leaderboard_ChangeLeaderboard(t *testing.T) {
	ctx := testutil.CreateFixtureContext()
	setTotalXP(t, ctx, testutil.User1.ID, 300)

	client, store := fakeSortedSets()
	lb := New(repository.NewProgressionRepository(), client)

	// An uncached period is skipped, the next read rebuilds it.
	err := lb.ChangeLeaderboard(ctx, 100, testutil.User1.ID, NewAllTimePeriod())
	require.NoError(t, err)
	require.NotContains(t, store, "leaderboard:alltime")

	_, err = lb.GetLeaderboard(ctx, NewAllTimePeriod(), 0, 10)
	require.NoError(t, err)

	err = lb.ChangeLeaderboard(ctx, 100, testutil.User1.ID, NewAllTimePeriod())
	require.NoError(t, err)
	require.Equal(t, float64(400), store["leaderboard:alltime"][testutil.User1.ID])
}
