package repository

import (
	"context"

	"github.com/arisefit-lab/backend/internal/entity"
	"github.com/arisefit-lab/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type StatsRepository interface {
	Create(ctx context.Context, data *entity.UserStats) error
	GetByUserID(ctx context.Context, userID string) (*entity.UserStats, error)
	Increase(ctx context.Context, userID string, deltas map[string]int) error
}

type statsRepository struct{}

func NewStatsRepository() *statsRepository {
	return &statsRepository{}
}

func (r *statsRepository) Create(ctx context.Context, data *entity.UserStats) error {
	return xcontext.DB(ctx).Create(data).Error
}

func (r *statsRepository) GetByUserID(ctx context.Context, userID string) (*entity.UserStats, error) {
	var result entity.UserStats
	if err := xcontext.DB(ctx).Take(&result, "user_id=?", userID).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

// Increase bumps the given attribute columns atomically. Keys must be column
// names of entity.UserStats.
func (r *statsRepository) Increase(ctx context.Context, userID string, deltas map[string]int) error {
	updateMap := map[string]any{}
	for column, delta := range deltas {
		updateMap[column] = gorm.Expr(column+"+?", delta)
	}

	tx := xcontext.DB(ctx).
		Model(&entity.UserStats{}).
		Where("user_id=?", userID).
		Updates(updateMap)

	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
