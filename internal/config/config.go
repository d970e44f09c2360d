// Package config loads daemon configuration from environment and flags.
package config

import (
	"flag"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds the callkeeper daemon configuration.
type Config struct {
	LogLevel string `env:"LOGLEVEL" envDefault:"debug"`

	// Persistence
	DatabasePath string `env:"DATABASE_PATH" envDefault:"data/callkeeper.db"`

	// Durable job queue
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// Record sync server
	SyncAddr           string        `env:"SYNC_ADDR" envDefault:"localhost:9815"`
	SyncConnectTimeout time.Duration `env:"SYNC_CONNECT_TIMEOUT" envDefault:"10s"`

	// Job worker
	JobPollInterval time.Duration `env:"JOB_POLL_INTERVAL" envDefault:"1s"`

	// How long to wait before touching the platform call log after a call
	// ends. The platform writes its log entry asynchronously.
	CallLogDeleteGrace time.Duration `env:"CALLLOG_DELETE_GRACE" envDefault:"6s"`
}

// LoadEnv loads the content of ENV_FILE (or .env) into environment variables.
// A missing file is not an error; env vars may be set by the platform.
func LoadEnv() error {
	envfile := os.Getenv("ENV_FILE")

	var err error
	if envfile == "" {
		err = godotenv.Load()
	} else {
		err = godotenv.Load(envfile)
	}
	if err != nil && os.IsNotExist(err) {
		return nil
	}
	return err
}

// Load parses the environment into a Config and applies flag overrides.
func Load() (*Config, error) {
	if err := LoadEnv(); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	flag.StringVar(&cfg.LogLevel, "loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	flag.StringVar(&cfg.DatabasePath, "db", cfg.DatabasePath, "Path to the call record database")
	flag.StringVar(&cfg.RedisAddr, "redis", cfg.RedisAddr, "Redis address for the durable job queue")
	flag.StringVar(&cfg.SyncAddr, "sync", cfg.SyncAddr, "Record sync server gRPC address")
	flag.Parse()

	return cfg, nil
}
