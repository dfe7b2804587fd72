package database

import (
	"context"

	"github.com/go-redis/redis/v8"
	"yumigo/config"
	"yumigo/logger"
)

var Redis *redis.Client

// ConnectRedis opens the shared Redis client. Redis carries the
// favorite-change push channel and the suggested-users cache; if it is
// unreachable the server still starts and those features degrade.
func ConnectRedis() error {
	Redis = redis.NewClient(&redis.Options{
		Addr:     config.Cfg.RedisAddr,
		Password: config.Cfg.RedisPass,
	})

	if err := Redis.Ping(context.Background()).Err(); err != nil {
		return err
	}

	logger.L().Info("redis connected")
	return nil
}

func CloseRedis() {
	if Redis != nil {
		Redis.Close()
	}
}
