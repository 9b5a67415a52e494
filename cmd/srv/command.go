package main

import "github.com/urfave/cli/v2"

func (s *srv) loadApp() {
	app := cli.NewApp()
	app.Action = cli.ShowAppHelp
	app.Name = "AriseFit"
	app.Usage = ""
	app.Commands = []*cli.Command{
		{
			Action:      server.startApi,
			Name:        "api",
			Usage:       "Start service api",
			Flags:       []cli.Flag{},
			Category:    "Api",
			Description: `Used for start service api, the main service included all apis.`,
		},
		{
			Action:      server.startCron,
			Name:        "cron",
			Usage:       "Start the background schedulers",
			Flags:       []cli.Flag{},
			Category:    "Worker",
			Description: `Used to start the daily rollover and task reset sweeps.`,
		},
		{
			Action:      server.startWorker,
			Name:        "worker",
			Usage:       "Start the progression event worker",
			Flags:       []cli.Flag{},
			Category:    "Worker",
			Description: `Used to consume progression events and refresh the cached leaderboard.`,
		},
	}

	s.app = app
}
