package cache

import (
	"context"

	redisstore "github.com/eko/gocache/store/redis/v4"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
)

// S is nil when no redis is configured; callers fall back to direct reads.
var S *redisstore.RedisStore

func NewStore() error {
	if !viper.IsSet("cache.redis") {
		return nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     viper.GetString("cache.redis"),
		Password: viper.GetString("cache.password"),
		DB:       viper.GetInt("cache.db"),
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return err
	}

	S = redisstore.NewRedis(rdb)
	return nil
}
