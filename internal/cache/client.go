package cache

import (
	"github.com/redis/go-redis/v9"

	"github.com/segyhp/lending-engine/internal/config"
)

// NewClient builds a redis client from REDIS_URL when set, otherwise from
// the discrete host settings.
func NewClient(cfg config.RedisConfig) (*redis.Client, error) {
	if cfg.URL != "" {
		opts, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, err
		}
		return redis.NewClient(opts), nil
	}

	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	}), nil
}
