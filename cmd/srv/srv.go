package main

import (
	"context"
	"net/http"

	"github.com/arisefit-lab/backend/config"
	"github.com/arisefit-lab/backend/internal/domain"
	"github.com/arisefit-lab/backend/internal/domain/statistic"
	"github.com/arisefit-lab/backend/internal/repository"
	"github.com/arisefit-lab/backend/migration"
	"github.com/arisefit-lab/backend/pkg/authenticator"
	"github.com/arisefit-lab/backend/pkg/kafka"
	"github.com/arisefit-lab/backend/pkg/logger"
	"github.com/arisefit-lab/backend/pkg/pubsub"
	"github.com/arisefit-lab/backend/pkg/router"
	"github.com/arisefit-lab/backend/pkg/xcontext"
	"github.com/arisefit-lab/backend/pkg/xredis"

	"github.com/arisefit-lab/backend/internal/model"
	"github.com/bwmarrin/snowflake"
	"github.com/gorilla/sessions"
	"github.com/urfave/cli/v2"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

type srv struct {
	app *cli.App
	ctx context.Context

	configs *config.Configs
	logger  logger.Logger

	userRepo        repository.UserRepository
	progressionRepo repository.ProgressionRepository
	statsRepo       repository.StatsRepository
	taskRepo        repository.TaskRepository
	rankHistoryRepo repository.RankHistoryRepository

	leaderboard statistic.Leaderboard

	authDomain        domain.AuthDomain
	progressionDomain domain.ProgressionDomain
	taskDomain        domain.TaskDomain
	statisticDomain   domain.StatisticDomain

	publisher   pubsub.Publisher
	redisClient xredis.Client

	router *router.Router
	server *http.Server
}

func (s *srv) loadConfig() {
	s.configs = defaultConfigs()
	s.ctx = xcontext.WithConfigs(context.Background(), *s.configs)
}

func (s *srv) loadLogger() {
	s.logger = logger.NewLogger(s.configs.LogLevel)
	s.ctx = xcontext.WithLogger(s.ctx, s.logger)
}

func (s *srv) loadEndpoint() {
	tokenEngine := authenticator.NewTokenEngine[model.AccessToken](
		s.configs.Auth.TokenSecret, s.configs.Auth.AccessToken.Expiration)
	s.ctx = xcontext.WithTokenEngine(s.ctx, tokenEngine)
	s.ctx = xcontext.WithSessionStore(s.ctx, sessions.NewCookieStore([]byte(s.configs.Session.Secret)))
}

func (s *srv) loadDatabase() {
	db, err := gorm.Open(mysql.New(mysql.Config{
		DSN:                       s.configs.Database.ConnectionString(),
		DefaultStringSize:         256,
		DisableDatetimePrecision:  true,
		DontSupportRenameIndex:    true,
		DontSupportRenameColumn:   true,
		SkipInitializeWithVersion: false,
	}), &gorm.Config{})
	if err != nil {
		panic(err)
	}

	s.ctx = xcontext.WithDB(s.ctx, db)
	if err := migration.Migrate(s.ctx); err != nil {
		panic(err)
	}
}

func (s *srv) loadRedis() {
	redisClient, err := xredis.NewClient(s.ctx)
	if err != nil {
		panic(err)
	}

	s.redisClient = redisClient
}

func (s *srv) loadPublisher() {
	publisher, err := kafka.NewPublisher("arisefit-backend", []string{s.configs.Kafka.Addr})
	if err != nil {
		panic(err)
	}

	s.publisher = publisher
}

func (s *srv) loadRepos() {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}

	s.userRepo = repository.NewUserRepository()
	s.progressionRepo = repository.NewProgressionRepository()
	s.statsRepo = repository.NewStatsRepository()
	s.taskRepo = repository.NewTaskRepository()
	s.rankHistoryRepo = repository.NewRankHistoryRepository(node)
}

func (s *srv) loadLeaderboard() {
	s.leaderboard = statistic.New(s.progressionRepo, s.redisClient)
}

func (s *srv) loadDomains() {
	s.authDomain = domain.NewAuthDomain(s.userRepo, s.progressionRepo, s.statsRepo)
	s.progressionDomain = domain.NewProgressionDomain(
		s.progressionRepo, s.statsRepo, s.taskRepo, s.rankHistoryRepo, s.leaderboard, s.publisher)
	s.taskDomain = domain.NewTaskDomain(s.taskRepo, s.progressionRepo, s.leaderboard)
	s.statisticDomain = domain.NewStatisticDomain(s.leaderboard, s.userRepo)
}
