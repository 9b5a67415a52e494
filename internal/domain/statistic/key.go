package statistic

import "github.com/arisefit-lab/backend/internal/common"

func redisKeyLeaderboard(period Period) string {
	return common.RedisKeyLeaderboard(period.Period())
}
