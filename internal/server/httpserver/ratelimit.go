package httpserver

import (
	"time"

	rate "github.com/wallstreetcn/rate/redis"
)

// Limiter decides whether the client behind key may write another paste.
type Limiter interface {
	Allow(key string) bool
}

// RedisLimiter allows one create or update per client and interval, with
// the count shared through Redis.
type RedisLimiter struct {
	interval time.Duration
	prefix   string
}

// NewRedisLimiter connects the rate limiter to Redis. The limiter keeps its
// own connection, separate from the store's.
func NewRedisLimiter(host string, port int, password string, interval time.Duration) (*RedisLimiter, error) {
	if err := rate.SetRedis(&rate.ConfigRedis{
		Host: host,
		Port: port,
		Auth: password,
	}); err != nil {
		return nil, err
	}
	return &RedisLimiter{interval: interval, prefix: "pb_http_write_rl_"}, nil
}

// Allow reports whether key is under its limit.
func (l *RedisLimiter) Allow(key string) bool {
	return rate.NewLimiter(rate.Every(l.interval), 1, l.prefix+key).Allow()
}
