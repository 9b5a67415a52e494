package domain

import (
	"context"
	"errors"

	"github.com/arisefit-lab/backend/internal/entity"
	"github.com/arisefit-lab/backend/internal/model"
	"github.com/arisefit-lab/backend/internal/repository"
	"github.com/arisefit-lab/backend/pkg/errorx"
	"github.com/arisefit-lab/backend/pkg/xcontext"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AuthDomain interface {
	Register(ctx context.Context, req *model.RegisterRequest) (*model.RegisterResponse, error)
	Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error)
	Update(ctx context.Context, req *model.UpdateUserRequest) (*model.UpdateUserResponse, error)
}

type authDomain struct {
	userRepo        repository.UserRepository
	progressionRepo repository.ProgressionRepository
	statsRepo       repository.StatsRepository
}

func NewAuthDomain(
	userRepo repository.UserRepository,
	progressionRepo repository.ProgressionRepository,
	statsRepo repository.StatsRepository,
) AuthDomain {
	return &authDomain{
		userRepo:        userRepo,
		progressionRepo: progressionRepo,
		statsRepo:       statsRepo,
	}
}

// Register creates the user together with its progression and stats rows, so
// every later operation can assume the rows exist.
func (d *authDomain) Register(ctx context.Context, req *model.RegisterRequest) (*model.RegisterResponse, error) {
	if req.Name == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow an empty name")
	}

	_, err := d.userRepo.GetByName(ctx, req.Name)
	if err == nil {
		return nil, errorx.New(errorx.AlreadyExists, "The name is already taken")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		xcontext.Logger(ctx).Errorf("Cannot check user name: %v", err)
		return nil, errorx.Unknown
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	user := &entity.User{
		Base: entity.Base{ID: uuid.NewString()},
		Name: req.Name,
		Role: entity.UserRole,
	}

	if err := d.userRepo.Create(ctx, user); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create user: %v", err)
		return nil, errorx.Unknown
	}

	err = d.progressionRepo.Create(ctx, &entity.UserProgression{
		UserID: user.ID,
		Level:  1,
		Rank:   entity.RankF,
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create progression record: %v", err)
		return nil, errorx.Unknown
	}

	if err := d.statsRepo.Create(ctx, &entity.UserStats{UserID: user.ID}); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create stats record: %v", err)
		return nil, errorx.Unknown
	}

	xcontext.WithCommitDBTransaction(ctx)

	token, err := xcontext.TokenEngine(ctx).Generate(user.ID, model.AccessToken{
		ID:   user.ID,
		Name: user.Name,
		Role: user.Role,
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot generate access token: %v", err)
		return nil, errorx.Unknown
	}

	return &model.RegisterResponse{AccessToken: token}, nil
}

func (d *authDomain) Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error) {
	user, err := d.userRepo.GetByName(ctx, req.Name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found user")
		}

		xcontext.Logger(ctx).Errorf("Cannot get user: %v", err)
		return nil, errorx.Unknown
	}

	token, err := xcontext.TokenEngine(ctx).Generate(user.ID, model.AccessToken{
		ID:   user.ID,
		Name: user.Name,
		Role: user.Role,
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot generate access token: %v", err)
		return nil, errorx.Unknown
	}

	return &model.LoginResponse{AccessToken: token}, nil
}

func (d *authDomain) Update(ctx context.Context, req *model.UpdateUserRequest) (*model.UpdateUserResponse, error) {
	if req.Name == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow an empty name")
	}

	_, err := d.userRepo.GetByName(ctx, req.Name)
	if err == nil {
		return nil, errorx.New(errorx.AlreadyExists, "The name is already taken")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		xcontext.Logger(ctx).Errorf("Cannot check user name: %v", err)
		return nil, errorx.Unknown
	}

	userID := xcontext.RequestUserID(ctx)
	err = d.userRepo.UpdateByID(ctx, userID, &entity.User{Name: req.Name})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot update user: %v", err)
		return nil, errorx.Unknown
	}

	return &model.UpdateUserResponse{}, nil
}
