package config

import (
	"fmt"
	"time"
)

type Configs struct {
	Env      string
	LogLevel int

	Database    DatabaseConfigs
	ApiServer   ServerConfigs
	Auth        AuthConfigs
	Session     SessionConfigs
	Redis       RedisConfigs
	Kafka       KafkaConfigs
	Progression ProgressionConfigs
}

type DatabaseConfigs struct {
	Host     string
	Port     string
	Database string
	User     string
	Password string
}

func (d *DatabaseConfigs) ConnectionString() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.User,
		d.Password,
		d.Host,
		d.Port,
		d.Database,
	)
}

type ServerConfigs struct {
	Host      string
	Port      string
	AllowCORS []string
}

func (s ServerConfigs) Address() string {
	return fmt.Sprintf("%s:%s", s.Host, s.Port)
}

type AuthConfigs struct {
	TokenSecret string
	AccessToken TokenConfigs
}

type TokenConfigs struct {
	Name       string
	Expiration time.Duration
}

type SessionConfigs struct {
	Secret string
	Name   string
}

type RedisConfigs struct {
	Addr string
}

type KafkaConfigs struct {
	Addr string
}

// ProgressionConfigs controls the daily cycle and the rank cap.
type ProgressionConfigs struct {
	// RolloverHour and RolloverMinute set the local time at which the daily
	// rollover sweep begins.
	RolloverHour   int
	RolloverMinute int

	// TaskResetHour and TaskResetMinute set the local time at which completed
	// daily tasks flip back to pending.
	TaskResetHour   int
	TaskResetMinute int

	// RetryAttempts bounds the optimistic-write retries of a single user
	// rollover before it is reported as failed.
	RetryAttempts int
	RetryBackoff  time.Duration

	// CappedRank closes the manual rank-up gate once the user is at this
	// rank with a level at or above CappedRankLevel. Advancement past it is
	// resolved by the global leaderboard, not locally.
	CappedRank      string
	CappedRankLevel int
}
