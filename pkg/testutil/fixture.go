package testutil

import (
	"context"

	"github.com/arisefit-lab/backend/internal/entity"
	"github.com/arisefit-lab/backend/internal/repository"
)

// Fixture users shared across domain tests.
var (
	User1 = entity.User{Base: entity.Base{ID: "user1"}, Name: "alice", Role: entity.UserRole}
	User2 = entity.User{Base: entity.Base{ID: "user2"}, Name: "bob", Role: entity.UserRole}
	Admin = entity.User{Base: entity.Base{ID: "admin"}, Name: "root", Role: entity.AdminRole}
)

func CreateFixtureContext() context.Context {
	ctx := MockContext()
	InsertUsers(ctx)
	InsertProgressions(ctx)
	return ctx
}

func InsertUsers(ctx context.Context) {
	userRepo := repository.NewUserRepository()
	for _, user := range []entity.User{User1, User2, Admin} {
		user := user
		if err := userRepo.Create(ctx, &user); err != nil {
			panic(err)
		}
	}
}

func InsertProgressions(ctx context.Context) {
	progressionRepo := repository.NewProgressionRepository()
	statsRepo := repository.NewStatsRepository()

	for _, userID := range []string{User1.ID, User2.ID, Admin.ID} {
		err := progressionRepo.Create(ctx, &entity.UserProgression{
			UserID: userID,
			Level:  1,
			Rank:   entity.RankF,
		})
		if err != nil {
			panic(err)
		}

		if err := statsRepo.Create(ctx, &entity.UserStats{UserID: userID}); err != nil {
			panic(err)
		}
	}
}
