package repository

import (
	"context"

	"github.com/arisefit-lab/backend/internal/entity"
	"github.com/arisefit-lab/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type TaskRepository interface {
	Create(ctx context.Context, data *entity.DailyTask) error
	GetByID(ctx context.Context, id string) (*entity.DailyTask, error)
	GetListByUserID(ctx context.Context, userID string) ([]entity.DailyTask, error)
	Complete(ctx context.Context, id string) error
	CountCompletedByUserID(ctx context.Context, userID string) (int64, error)
	ResetAllCompleted(ctx context.Context, recurrence entity.TaskRecurrence) (int64, error)
}

type taskRepository struct{}

func NewTaskRepository() *taskRepository {
	return &taskRepository{}
}

func (r *taskRepository) Create(ctx context.Context, data *entity.DailyTask) error {
	return xcontext.DB(ctx).Create(data).Error
}

func (r *taskRepository) GetByID(ctx context.Context, id string) (*entity.DailyTask, error) {
	var result entity.DailyTask
	if err := xcontext.DB(ctx).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *taskRepository) GetListByUserID(ctx context.Context, userID string) ([]entity.DailyTask, error) {
	var result []entity.DailyTask
	if err := xcontext.DB(ctx).Find(&result, "user_id=?", userID).Error; err != nil {
		return nil, err
	}

	return result, nil
}

// Complete marks a pending task as done. A task already completed today is
// not completed twice.
func (r *taskRepository) Complete(ctx context.Context, id string) error {
	tx := xcontext.DB(ctx).
		Model(&entity.DailyTask{}).
		Where("id=? AND completed=?", id, false).
		Update("completed", true)

	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *taskRepository) CountCompletedByUserID(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := xcontext.DB(ctx).
		Model(&entity.DailyTask{}).
		Where("user_id=? AND completed=?", userID, true).
		Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

// ResetAllCompleted flips every completed task of the given recurrence back
// to pending and returns the number of affected rows.
func (r *taskRepository) ResetAllCompleted(ctx context.Context, recurrence entity.TaskRecurrence) (int64, error) {
	tx := xcontext.DB(ctx).
		Model(&entity.DailyTask{}).
		Where("completed=? AND recurrence=?", true, recurrence).
		Update("completed", false)

	if tx.Error != nil {
		return 0, tx.Error
	}

	return tx.RowsAffected, nil
}
