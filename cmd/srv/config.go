package main

import (
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/arisefit-lab/backend/config"
	"github.com/arisefit-lab/backend/pkg/logger"
)

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}

	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}

	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}

	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}

	return d
}

// defaultConfigs reads everything from the environment. A toml file given
// through the CONFIG env var overrides the result field by field.
func defaultConfigs() *config.Configs {
	cfg := &config.Configs{
		Env:      getEnv("ENV", "local"),
		LogLevel: logger.LevelFromString(getEnv("LOG_LEVEL", "INFO")),
		Database: config.DatabaseConfigs{
			Host:     getEnv("MYSQL_HOST", "localhost"),
			Port:     getEnv("MYSQL_PORT", "3306"),
			Database: getEnv("MYSQL_DATABASE", "arisefit"),
			User:     getEnv("MYSQL_USER", "arisefit"),
			Password: getEnv("MYSQL_PASSWORD", "arisefit"),
		},
		ApiServer: config.ServerConfigs{
			Host:      getEnv("API_HOST", ""),
			Port:      getEnv("API_PORT", "8080"),
			AllowCORS: []string{getEnv("ALLOW_CORS", "http://localhost:3000")},
		},
		Auth: config.AuthConfigs{
			TokenSecret: getEnv("TOKEN_SECRET", "token-secret"),
			AccessToken: config.TokenConfigs{
				Name:       "access_token",
				Expiration: getEnvDuration("ACCESS_TOKEN_DURATION", 24*time.Hour),
			},
		},
		Session: config.SessionConfigs{
			Secret: getEnv("AUTH_SESSION_SECRET", "session-secret"),
			Name:   "auth_session",
		},
		Redis: config.RedisConfigs{
			Addr: getEnv("REDIS_ADDR", "localhost:6379"),
		},
		Kafka: config.KafkaConfigs{
			Addr: getEnv("KAFKA_ADDR", "localhost:9092"),
		},
		Progression: config.ProgressionConfigs{
			RolloverHour:    getEnvInt("ROLLOVER_HOUR", 0),
			RolloverMinute:  getEnvInt("ROLLOVER_MINUTE", 5),
			TaskResetHour:   getEnvInt("TASK_RESET_HOUR", 0),
			TaskResetMinute: getEnvInt("TASK_RESET_MINUTE", 30),
			RetryAttempts:   getEnvInt("ROLLOVER_RETRY_ATTEMPTS", 3),
			RetryBackoff:    getEnvDuration("ROLLOVER_RETRY_BACKOFF", 100*time.Millisecond),
			CappedRank:      getEnv("CAPPED_RANK", "S"),
			CappedRankLevel: getEnvInt("CAPPED_RANK_LEVEL", 100),
		},
	}

	if path := getEnv("CONFIG", ""); path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			panic(err)
		}
	}

	return cfg
}
