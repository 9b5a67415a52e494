package domain

import (
	"context"

	"github.com/arisefit-lab/backend/internal/domain/statistic"
	"github.com/arisefit-lab/backend/internal/model"
	"github.com/arisefit-lab/backend/internal/repository"
	"github.com/arisefit-lab/backend/pkg/errorx"
	"github.com/arisefit-lab/backend/pkg/xcontext"
)

type StatisticDomain interface {
	GetLeaderboard(ctx context.Context, req *model.GetLeaderboardRequest) (*model.GetLeaderboardResponse, error)
}

type statisticDomain struct {
	leaderboard statistic.Leaderboard
	userRepo    repository.UserRepository
}

func NewStatisticDomain(
	leaderboard statistic.Leaderboard,
	userRepo repository.UserRepository,
) StatisticDomain {
	return &statisticDomain{leaderboard: leaderboard, userRepo: userRepo}
}

func (d *statisticDomain) GetLeaderboard(
	ctx context.Context, req *model.GetLeaderboardRequest,
) (*model.GetLeaderboardResponse, error) {
	period, err := statistic.ToPeriod(req.Period)
	if err != nil {
		xcontext.Logger(ctx).Debugf("Invalid period: %v", err)
		return nil, errorx.New(errorx.BadRequest, "Invalid period %s", req.Period)
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 10
	}

	if limit > 100 {
		return nil, errorx.New(errorx.BadRequest, "Not allow a limit above 100")
	}

	entries, err := d.leaderboard.GetLeaderboard(ctx, period, req.Offset, limit)
	if err != nil {
		return nil, err
	}

	userIDs := []string{}
	for _, entry := range entries {
		userIDs = append(userIDs, entry.UserID)
	}

	users, err := d.userRepo.GetByIDs(ctx, userIDs)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get users of leaderboard: %v", err)
		return nil, errorx.Unknown
	}

	nameByID := map[string]string{}
	for _, user := range users {
		nameByID[user.ID] = user.Name
	}

	for i := range entries {
		entries[i].Name = nameByID[entries[i].UserID]
	}

	return &model.GetLeaderboardResponse{Leaderboard: entries}, nil
}
