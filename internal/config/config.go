package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	AppPort string `env:"APP_PORT" envDefault:"8080"`

	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`

	// DailyLimit caps the number of first-visit admissions per day.
	// ConcurrentLimit caps how many sessions may be live at once.
	DailyLimit      int64 `env:"DAILY_LIMIT" envDefault:"1000"`
	ConcurrentLimit int   `env:"CONCURRENT_LIMIT" envDefault:"100"`

	// LivenessTTL is how long a session record survives without a
	// heartbeat. StalenessWindow is the shorter horizon a record must
	// stay within to count toward the concurrency cap.
	LivenessTTL       time.Duration `env:"LIVENESS_TTL" envDefault:"10m"`
	StalenessWindow   time.Duration `env:"STALENESS_WINDOW" envDefault:"5m"`
	HeartbeatInterval time.Duration `env:"HEARTBEAT_INTERVAL" envDefault:"30s"`

	// StatsTimezone partitions the read-only stats view. Admission
	// accounting always uses UTC and is not affected by this.
	StatsTimezone string `env:"STATS_TIMEZONE" envDefault:"Asia/Seoul"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse env: %w", err)
	}

	if cfg.StalenessWindow > cfg.LivenessTTL {
		return Config{}, fmt.Errorf(
			"config: STALENESS_WINDOW (%s) must not exceed LIVENESS_TTL (%s)",
			cfg.StalenessWindow, cfg.LivenessTTL,
		)
	}

	return cfg, nil
}
