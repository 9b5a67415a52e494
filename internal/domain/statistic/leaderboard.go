package statistic

import (
	"context"

	"github.com/arisefit-lab/backend/internal/model"
	"github.com/arisefit-lab/backend/internal/repository"
	"github.com/arisefit-lab/backend/pkg/errorx"
	"github.com/arisefit-lab/backend/pkg/xcontext"
	"github.com/arisefit-lab/backend/pkg/xredis"
	"github.com/redis/go-redis/v9"
)

type Leaderboard interface {
	GetLeaderboard(ctx context.Context, period Period, offset, limit int) ([]model.LeaderboardEntry, error)
	GetPosition(ctx context.Context, userID string, period Period) (uint64, error)
	ChangeLeaderboard(ctx context.Context, value int64, userID string, periods ...Period) error
}

type leaderboard struct {
	progressionRepo repository.ProgressionRepository
	redisClient     xredis.Client
}

func New(
	progressionRepo repository.ProgressionRepository,
	redisClient xredis.Client,
) *leaderboard {
	return &leaderboard{progressionRepo: progressionRepo, redisClient: redisClient}
}

func (l *leaderboard) GetLeaderboard(
	ctx context.Context, period Period, offset, limit int,
) ([]model.LeaderboardEntry, error) {
	key := redisKeyLeaderboard(period)
	ok, err := l.redisClient.Exist(ctx, key)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot call exist redis: %v", err)
		return nil, errorx.Unknown
	}

	// If the key didn't exist in redis, load it from database.
	if !ok {
		if err := l.loadLeaderboardFromDB(ctx, period); err != nil {
			return nil, err
		}
	}

	results, err := l.redisClient.ZRevRangeWithScores(ctx, key, offset, limit)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get revrange redis: %v", err)
		return nil, errorx.Unknown
	}

	entries := []model.LeaderboardEntry{}
	for i, z := range results {
		entries = append(entries, model.LeaderboardEntry{
			UserID:   z.Member.(string),
			Value:    int64(z.Score),
			Position: uint64(offset + i + 1),
		})
	}

	return entries, nil
}

func (l *leaderboard) GetPosition(ctx context.Context, userID string, period Period) (uint64, error) {
	key := redisKeyLeaderboard(period)
	ok, err := l.redisClient.Exist(ctx, key)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot call exist redis: %v", err)
		return 0, errorx.Unknown
	}

	if !ok {
		if err := l.loadLeaderboardFromDB(ctx, period); err != nil {
			return 0, err
		}
	}

	position, err := l.redisClient.ZRevRank(ctx, key, userID)
	if err != nil {
		xcontext.Logger(ctx).Debugf("Cannot get rev rank redis: %v", err)
		return 0, nil
	}

	return position + 1, nil
}

// ChangeLeaderboard bumps the user's score in every given period. A period
// whose key is not yet cached is skipped, the next read rebuilds it from the
// database.
func (l *leaderboard) ChangeLeaderboard(
	ctx context.Context, value int64, userID string, periods ...Period,
) error {
	for _, period := range periods {
		key := redisKeyLeaderboard(period)
		ok, err := l.redisClient.Exist(ctx, key)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot call exist redis: %v", err)
			return errorx.Unknown
		}

		if !ok {
			continue
		}

		if err := l.redisClient.ZIncrBy(ctx, key, value, userID); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot call ZIncrBy redis: %v", err)
		}
	}

	return nil
}

func (l *leaderboard) loadLeaderboardFromDB(ctx context.Context, period Period) error {
	key := redisKeyLeaderboard(period)
	const batch = 500

	for offset := 0; ; offset += batch {
		records, err := l.progressionRepo.GetList(ctx, offset, batch)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot load progression records: %v", err)
			return errorx.Unknown
		}

		for _, record := range records {
			var score int64
			switch period.(type) {
			case weekPeriod:
				score = record.WeeklyXP
			case monthPeriod:
				score = record.MonthlyXP
			default:
				score = record.TotalXP
			}

			err := l.redisClient.ZAdd(ctx, key, redis.Z{
				Score:  float64(score),
				Member: record.UserID,
			})
			if err != nil {
				xcontext.Logger(ctx).Errorf("Cannot add to leaderboard: %v", err)
				return errorx.Unknown
			}
		}

		if len(records) < batch {
			break
		}
	}

	return nil
}
