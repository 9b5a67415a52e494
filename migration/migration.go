package migration

import (
	"context"
	"errors"

	"github.com/arisefit-lab/backend/internal/entity"
	"github.com/arisefit-lab/backend/pkg/xcontext"
	"gorm.io/gorm"
)

// Ordered list of schema versions. Append only, never reorder.
var migrations = []func(context.Context) error{
	migrate0000,
}

// Migrate runs every migration after the version recorded in the database.
// A fresh database runs all of them.
func Migrate(ctx context.Context) error {
	if err := xcontext.DB(ctx).AutoMigrate(&entity.Migration{}); err != nil {
		return err
	}

	current := -1
	var latest entity.Migration
	err := xcontext.DB(ctx).Order("version DESC").Take(&latest).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if err == nil {
		current = latest.Version
	}

	for version := current + 1; version < len(migrations); version++ {
		xcontext.Logger(ctx).Infof("Migrating to version %04d", version)
		if err := migrations[version](ctx); err != nil {
			return err
		}

		if err := xcontext.DB(ctx).Create(&entity.Migration{Version: version}).Error; err != nil {
			return err
		}
	}

	return nil
}
