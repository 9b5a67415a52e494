package main

import (
	"fmt"
	"net/http"

	"github.com/arisefit-lab/backend/internal/middleware"
	"github.com/arisefit-lab/backend/pkg/router"
	"github.com/arisefit-lab/backend/pkg/xcontext"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/urfave/cli/v2"
)

func (s *srv) startApi(ct *cli.Context) error {
	server.loadConfig()
	server.loadLogger()
	server.loadEndpoint()
	server.loadDatabase()
	server.loadRedis()
	server.loadPublisher()
	server.loadRepos()
	server.loadLeaderboard()
	server.loadDomains()
	server.loadRouter()

	c := cors.New(cors.Options{
		AllowedOrigins:   s.configs.ApiServer.AllowCORS,
		AllowCredentials: true,
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
	})

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%s", s.configs.ApiServer.Port),
		Handler: c.Handler(s.router.Handler()),
	}

	xcontext.Logger(s.ctx).Infof("Starting server on port: %s", s.configs.ApiServer.Port)
	if err := s.server.ListenAndServe(); err != nil {
		panic(err)
	}
	xcontext.Logger(s.ctx).Infof("Server stopped")
	return nil
}

func (s *srv) loadRouter() {
	s.router = router.New(s.ctx)
	s.router.AddCloser(middleware.Logger())
	s.router.Before(middleware.WithStartTime())
	s.router.AddCloser(middleware.Prometheus())

	// Public API.
	router.POST(s.router, "/register", s.authDomain.Register)
	router.POST(s.router, "/login", s.authDomain.Login)
	router.GET(s.router, "/getRankTable", s.progressionDomain.GetRankTable)
	router.GET(s.router, "/getLeaderboard", s.statisticDomain.GetLeaderboard)
	router.GET(s.router, "/nextResetTime", s.progressionDomain.NextResetTime)

	// These following APIs need authentication with only Access Token.
	onlyTokenAuthRouter := s.router.Branch()
	authVerifier := middleware.NewAuthVerifier().WithAccessToken().WithSession()
	onlyTokenAuthRouter.Before(authVerifier.Middleware())
	{
		// Progression API
		router.GET(onlyTokenAuthRouter, "/getProgression", s.progressionDomain.Get)
		router.GET(onlyTokenAuthRouter, "/getRankHistory", s.progressionDomain.GetRankHistory)
		router.POST(onlyTokenAuthRouter, "/applyDailyGain", s.progressionDomain.ApplyDailyGain)
		router.POST(onlyTokenAuthRouter, "/allocateStatPoints", s.progressionDomain.AllocateStatPoints)
		router.POST(onlyTokenAuthRouter, "/rollover", s.progressionDomain.Rollover)
		router.POST(onlyTokenAuthRouter, "/attemptRankUp", s.progressionDomain.AttemptRankUp)

		// User API
		router.POST(onlyTokenAuthRouter, "/updateUser", s.authDomain.Update)

		// Task API
		router.POST(onlyTokenAuthRouter, "/createTask", s.taskDomain.Create)
		router.GET(onlyTokenAuthRouter, "/getMyTasks", s.taskDomain.GetMyTasks)
		router.POST(onlyTokenAuthRouter, "/completeTask", s.taskDomain.Complete)
	}

	// These following APIs are only for administrators.
	onlyAdminRouter := onlyTokenAuthRouter.Branch()
	onlyAdminRouter.Before(middleware.NewOnlyAdmin(s.userRepo).Middleware())
	{
		router.POST(onlyAdminRouter, "/triggerRollover", s.progressionDomain.TriggerRollover)
		router.POST(onlyAdminRouter, "/triggerTaskReset", s.progressionDomain.TriggerTaskReset)
	}

	s.router.Handle("/metrics", promhttp.Handler())
}
