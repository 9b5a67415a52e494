package entity

import (
	"time"

	"github.com/arisefit-lab/backend/pkg/enum"
)

type Rank string

var (
	RankF       = enum.New(Rank("F"))
	RankE       = enum.New(Rank("E"))
	RankEPlus   = enum.New(Rank("E+"))
	RankD       = enum.New(Rank("D"))
	RankDPlus   = enum.New(Rank("D+"))
	RankC       = enum.New(Rank("C"))
	RankCPlus   = enum.New(Rank("C+"))
	RankB       = enum.New(Rank("B"))
	RankBPlus   = enum.New(Rank("B+"))
	RankBPlus2  = enum.New(Rank("B++"))
	RankA       = enum.New(Rank("A"))
	RankAPlus   = enum.New(Rank("A+"))
	RankS       = enum.New(Rank("S"))
	RankSPlus   = enum.New(Rank("S+"))
	RankSPlus2  = enum.New(Rank("S++"))
	RankSS      = enum.New(Rank("SS"))
	RankSSPlus  = enum.New(Rank("SS+"))
	RankMonarch = enum.New(Rank("Monarch"))
)

// RankList orders every rank from lowest to highest. Each rank spans twenty
// levels, except the last one which is open ended.
var RankList = []Rank{
	RankF, RankE, RankEPlus, RankD, RankDPlus,
	RankC, RankCPlus, RankB, RankBPlus, RankBPlus2,
	RankA, RankAPlus, RankS, RankSPlus, RankSPlus2,
	RankSS, RankSSPlus, RankMonarch,
}

// UserProgression is the single source of truth for a user's advancement.
// TotalXP only ever grows by folding XPToday into it during a rollover.
type UserProgression struct {
	CreatedAt time.Time
	UpdatedAt time.Time

	UserID string `gorm:"primaryKey"`
	User   User   `gorm:"foreignKey:UserID"`

	TotalXP   int64 `gorm:"not null;default:0"`
	XPToday   int64 `gorm:"not null;default:0"`
	WeeklyXP  int64 `gorm:"not null;default:0"`
	MonthlyXP int64 `gorm:"not null;default:0"`

	Level    int  `gorm:"not null;default:1"`
	Rank     Rank `gorm:"not null;default:F"`
	Prestige int  `gorm:"not null;default:0"`

	StatPoints     int64 `gorm:"not null;default:0"`
	TasksCompleted int64 `gorm:"not null;default:0"`
	CurrentStreak  int64 `gorm:"not null;default:0"`

	LastActive time.Time

	// LastRolloverDate is the local calendar date of the last completed
	// rollover, formatted as 2006-01-02. Empty for a fresh user.
	LastRolloverDate string
}
