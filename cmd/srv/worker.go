package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/arisefit-lab/backend/internal/common"
	"github.com/arisefit-lab/backend/internal/model"
	"github.com/arisefit-lab/backend/pkg/kafka"
	"github.com/arisefit-lab/backend/pkg/pubsub"
	"github.com/arisefit-lab/backend/pkg/xcontext"

	"github.com/redis/go-redis/v9"
	"github.com/urfave/cli/v2"
)

// startWorker consumes progression events and keeps the cached alltime
// leaderboard in sync, so api replicas never serve a stale total after a
// rollover committed elsewhere.
func (s *srv) startWorker(ct *cli.Context) error {
	server.loadConfig()
	server.loadLogger()
	server.loadDatabase()
	server.loadRedis()

	subscriber, err := kafka.NewSubscriber(
		"arisefit-worker",
		[]string{s.configs.Kafka.Addr},
		[]string{model.ProgressionTopic},
		s.handleProgressionEvent,
	)
	if err != nil {
		panic(err)
	}

	subscriber.Subscribe(s.ctx)
	xcontext.Logger(s.ctx).Infof("Progression worker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	xcontext.Logger(s.ctx).Infof("Progression worker stopping")
	return subscriber.Stop(s.ctx)
}

func (s *srv) handleProgressionEvent(_ context.Context, pack *pubsub.Pack, t time.Time) {
	var event model.ProgressionEvent
	if err := json.Unmarshal(pack.Msg, &event); err != nil {
		xcontext.Logger(s.ctx).Errorf("Cannot unmarshal progression event: %v", err)
		return
	}

	switch event.Type {
	case model.EventRolloverCompleted:
		rollover := event.RolloverCompleted
		if rollover == nil {
			return
		}

		key := common.RedisKeyLeaderboard("alltime")
		ok, err := s.redisClient.Exist(s.ctx, key)
		if err != nil {
			xcontext.Logger(s.ctx).Errorf("Cannot call exist redis: %v", err)
			return
		}

		// An uncached board is rebuilt from the database on the next read.
		if !ok {
			return
		}

		err = s.redisClient.ZAdd(s.ctx, key, redis.Z{
			Score:  float64(rollover.NewTotalXP),
			Member: rollover.UserID,
		})
		if err != nil {
			xcontext.Logger(s.ctx).Errorf("Cannot update leaderboard: %v", err)
		}

	case model.EventRankChanged:
		change := event.RankChanged
		if change == nil {
			return
		}

		xcontext.Logger(s.ctx).Infof("User %s ranked up %s -> %s",
			change.UserID, change.FromRank, change.ToRank)

	default:
		xcontext.Logger(s.ctx).Debugf("Unknown progression event %s at %s", event.Type, t)
	}
}
