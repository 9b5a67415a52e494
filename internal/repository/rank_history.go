package repository

import (
	"context"

	"github.com/arisefit-lab/backend/internal/entity"
	"github.com/arisefit-lab/backend/pkg/xcontext"
	"github.com/bwmarrin/snowflake"
)

type RankHistoryRepository interface {
	Create(ctx context.Context, data *entity.RankHistory) error
	GetListByUserID(ctx context.Context, userID string, offset, limit int) ([]entity.RankHistory, error)
}

type rankHistoryRepository struct {
	node *snowflake.Node
}

func NewRankHistoryRepository(node *snowflake.Node) *rankHistoryRepository {
	return &rankHistoryRepository{node: node}
}

func (r *rankHistoryRepository) Create(ctx context.Context, data *entity.RankHistory) error {
	data.ID = r.node.Generate().Int64()
	return xcontext.DB(ctx).Create(data).Error
}

func (r *rankHistoryRepository) GetListByUserID(
	ctx context.Context, userID string, offset, limit int,
) ([]entity.RankHistory, error) {
	var result []entity.RankHistory
	err := xcontext.DB(ctx).
		Where("user_id=?", userID).
		Order("id DESC").
		Offset(offset).Limit(limit).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}
