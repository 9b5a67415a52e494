package repository

import (
	"context"
	"errors"
	"time"

	"github.com/arisefit-lab/backend/internal/entity"
	"github.com/arisefit-lab/backend/pkg/xcontext"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrStaleProgression reports that a guarded update matched no row because
// another writer changed the observed columns first.
var ErrStaleProgression = errors.New("progression row changed concurrently")

type ProgressionRepository interface {
	Create(ctx context.Context, data *entity.UserProgression) error
	GetByUserID(ctx context.Context, userID string) (*entity.UserProgression, error)
	GetForUpdate(ctx context.Context, userID string) (*entity.UserProgression, error)
	GetAllUserIDs(ctx context.Context) ([]string, error)
	GetList(ctx context.Context, offset, limit int) ([]entity.UserProgression, error)
	ApplyDailyGain(ctx context.Context, userID string, xpGain, statPointsGain int64) error
	RecordTaskCompletion(ctx context.Context, userID string, streak int64) error
	SpendStatPoints(ctx context.Context, userID string, amount int64) error
	CompleteRollover(ctx context.Context, userID string, observedXPToday int64, update *entity.UserProgression) error
	UpdateRank(ctx context.Context, userID string, observedRank entity.Rank, newRank entity.Rank, newLevel int) error
}

type progressionRepository struct{}

func NewProgressionRepository() *progressionRepository {
	return &progressionRepository{}
}

func (r *progressionRepository) Create(ctx context.Context, data *entity.UserProgression) error {
	return xcontext.DB(ctx).Create(data).Error
}

func (r *progressionRepository) GetByUserID(ctx context.Context, userID string) (*entity.UserProgression, error) {
	var result entity.UserProgression
	if err := xcontext.DB(ctx).Take(&result, "user_id=?", userID).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

// GetForUpdate locks the row until the surrounding transaction ends. Only
// call it inside a transaction. Sqlite locks the whole database per
// transaction, so the row lock is skipped there.
func (r *progressionRepository) GetForUpdate(ctx context.Context, userID string) (*entity.UserProgression, error) {
	tx := xcontext.DB(ctx)
	if tx.Dialector.Name() != "sqlite" {
		tx = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var result entity.UserProgression
	if err := tx.Take(&result, "user_id=?", userID).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *progressionRepository) GetAllUserIDs(ctx context.Context) ([]string, error) {
	var result []string
	err := xcontext.DB(ctx).
		Model(&entity.UserProgression{}).
		Pluck("user_id", &result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *progressionRepository) GetList(ctx context.Context, offset, limit int) ([]entity.UserProgression, error) {
	var result []entity.UserProgression
	err := xcontext.DB(ctx).
		Order("total_xp DESC").
		Offset(offset).Limit(limit).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

// ApplyDailyGain adds to the pending bucket and the calendar accumulators.
// The total is untouched until the next rollover folds the bucket in.
func (r *progressionRepository) ApplyDailyGain(ctx context.Context, userID string, xpGain, statPointsGain int64) error {
	now := time.Now()
	tx := xcontext.DB(ctx).
		Model(&entity.UserProgression{}).
		Where("user_id=?", userID).
		Updates(map[string]any{
			"xp_today":    gorm.Expr("xp_today+?", xpGain),
			"weekly_xp":   gorm.Expr("weekly_xp+?", xpGain),
			"monthly_xp":  gorm.Expr("monthly_xp+?", xpGain),
			"stat_points": gorm.Expr("stat_points+?", statPointsGain),
			"last_active": now,
		})

	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// SpendStatPoints deducts from the unspent pool, guarded so the balance can
// never go negative.
func (r *progressionRepository) SpendStatPoints(ctx context.Context, userID string, amount int64) error {
	tx := xcontext.DB(ctx).
		Model(&entity.UserProgression{}).
		Where("user_id=? AND stat_points>=?", userID, amount).
		Update("stat_points", gorm.Expr("stat_points-?", amount))

	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return ErrStaleProgression
	}

	return nil
}

// RecordTaskCompletion bumps the task counter and replaces the streak value.
func (r *progressionRepository) RecordTaskCompletion(ctx context.Context, userID string, streak int64) error {
	tx := xcontext.DB(ctx).
		Model(&entity.UserProgression{}).
		Where("user_id=?", userID).
		Updates(map[string]any{
			"tasks_completed": gorm.Expr("tasks_completed+1"),
			"current_streak":  streak,
			"last_active":     time.Now(),
		})

	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// CompleteRollover folds the pending bucket into the total and stamps the
// rollover date, guarded on the xp_today value the caller observed. A
// concurrent gain between read and write makes the guard miss and the caller
// retries with a fresh read.
func (r *progressionRepository) CompleteRollover(
	ctx context.Context, userID string, observedXPToday int64, update *entity.UserProgression,
) error {
	tx := xcontext.DB(ctx).
		Model(&entity.UserProgression{}).
		Where("user_id=? AND xp_today=?", userID, observedXPToday).
		Updates(map[string]any{
			"total_xp":           update.TotalXP,
			"xp_today":           0,
			"level":              update.Level,
			"rank":               update.Rank,
			"last_active":        time.Now(),
			"last_rollover_date": update.LastRolloverDate,
		})

	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return ErrStaleProgression
	}

	return nil
}

// UpdateRank promotes the user, guarded on the rank the caller observed so
// two concurrent promotions cannot double-apply.
func (r *progressionRepository) UpdateRank(
	ctx context.Context, userID string, observedRank entity.Rank, newRank entity.Rank, newLevel int,
) error {
	tx := xcontext.DB(ctx).
		Model(&entity.UserProgression{}).
		Where("user_id=? AND rank=?", userID, observedRank).
		Updates(map[string]any{
			"rank":  newRank,
			"level": newLevel,
		})

	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return ErrStaleProgression
	}

	return nil
}
