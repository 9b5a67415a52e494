package testutil

import (
	"context"
	"time"

	"github.com/arisefit-lab/backend/config"
	"github.com/arisefit-lab/backend/internal/model"
	"github.com/arisefit-lab/backend/migration"
	"github.com/arisefit-lab/backend/pkg/authenticator"
	"github.com/arisefit-lab/backend/pkg/logger"
	"github.com/arisefit-lab/backend/pkg/xcontext"
	"github.com/gorilla/sessions"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func MockContext() context.Context {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		panic(err)
	}

	// Every connection of the pool gets its own in-memory database, keep a
	// single one so concurrent transactions share the same data.
	sqlDB, err := db.DB()
	if err != nil {
		panic(err)
	}
	sqlDB.SetMaxOpenConns(1)

	cfg := config.Configs{
		Env:      "testing",
		LogLevel: logger.ERROR,
		Auth: config.AuthConfigs{
			TokenSecret: "secret",
			AccessToken: config.TokenConfigs{
				Name:       "access_token",
				Expiration: time.Minute,
			},
		},
		Session: config.SessionConfigs{
			Secret: "session-secret",
			Name:   "auth_session",
		},
		Progression: config.ProgressionConfigs{
			RolloverHour:    0,
			RolloverMinute:  5,
			TaskResetHour:   0,
			TaskResetMinute: 30,
			RetryAttempts:   3,
			RetryBackoff:    time.Millisecond,
			CappedRank:      "S",
			CappedRankLevel: 100,
		},
	}

	ctx := context.Background()
	ctx = xcontext.WithConfigs(ctx, cfg)
	ctx = xcontext.WithLogger(ctx, logger.NewLogger(cfg.LogLevel))
	ctx = xcontext.WithTokenEngine(ctx, authenticator.NewTokenEngine[model.AccessToken](
		cfg.Auth.TokenSecret, cfg.Auth.AccessToken.Expiration))
	ctx = xcontext.WithSessionStore(ctx, sessions.NewCookieStore([]byte(cfg.Session.Secret)))
	ctx = xcontext.WithDB(ctx, db)

	if err := migration.Migrate(ctx); err != nil {
		panic(err)
	}

	return ctx
}

func MockContextWithUserID(userID string) context.Context {
	return xcontext.WithRequestUserID(MockContext(), userID)
}
