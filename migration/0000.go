package migration

import (
	"context"

	"github.com/arisefit-lab/backend/internal/entity"
	"github.com/arisefit-lab/backend/pkg/xcontext"
)

// migrate0000 will create the database with the latest version.
func migrate0000(ctx context.Context) error {
	return xcontext.DB(ctx).AutoMigrate(
		&entity.User{},
		&entity.UserProgression{},
		&entity.UserStats{},
		&entity.DailyTask{},
		&entity.RankHistory{},
		&entity.Migration{},
	)
}
