package main

import (
	"github.com/arisefit-lab/backend/internal/domain/cron"

	"github.com/urfave/cli/v2"
)

func (s *srv) startCron(ct *cli.Context) error {
	server.loadConfig()
	server.loadLogger()
	server.loadEndpoint()
	server.loadDatabase()
	server.loadRedis()
	server.loadPublisher()
	server.loadRepos()
	server.loadLeaderboard()
	server.loadDomains()

	manager := cron.NewCronJobManager()
	manager.Register(cron.NewDailyRolloverCronJob(s.progressionDomain, s.configs.Progression))
	manager.Register(cron.NewTaskResetCronJob(s.progressionDomain, s.configs.Progression))
	manager.Start(s.ctx)

	return nil
}
