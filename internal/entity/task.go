package entity

import "github.com/arisefit-lab/backend/pkg/enum"

type TaskRecurrence string

var (
	TaskDaily  = enum.New(TaskRecurrence("daily"))
	TaskWeekly = enum.New(TaskRecurrence("weekly"))
)

type DailyTask struct {
	Base

	UserID string `gorm:"index"`
	User   User   `gorm:"foreignKey:UserID"`

	Title      string
	XPReward   int64
	Recurrence TaskRecurrence `gorm:"default:daily"`
	Completed  bool           `gorm:"not null;default:false"`
}
