package ratelimiter

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore counts requests in fixed windows shared by all instances.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	now    func() time.Time
}

func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "licensekit:ratelimit:"
	}
	return &RedisStore{client: client, prefix: prefix, now: time.Now}
}

func (s *RedisStore) Take(ctx context.Context, key string, cfg Config) (*Result, error) {
	now := s.now()
	window := now.UnixNano() / int64(cfg.Window)
	resetAt := time.Unix(0, (window+1)*int64(cfg.Window))
	redisKey := s.prefix + key + ":" + strconv.FormatInt(window, 10)

	var incr *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, redisKey)
		pipe.ExpireAt(ctx, redisKey, resetAt.Add(time.Second))
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &Result{
		Limit:     cfg.Requests,
		Remaining: cfg.Requests - int(incr.Val()),
		ResetAt:   resetAt,
	}, nil
}
