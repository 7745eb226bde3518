package app

import (
	"admission-service/internal/config"
	"admission-service/internal/logger"
	"admission-service/internal/redis"
)

type Infra struct {
	Redis *redis.Client
}

// setupInfra connects the externally owned store. The shared key-value
// store is the only infrastructure this service depends on; all
// cross-request coordination happens through it.
func setupInfra(cfg config.Config) (*Infra, error) {
	redisClient, err := redis.New(cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		return nil, err
	}

	logger.Info("redis ready", nil)

	return &Infra{
		Redis: redisClient,
	}, nil
}
