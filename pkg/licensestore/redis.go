package licensestore

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig configures RedisStore.
type RedisConfig struct {
	KeyPrefix string        `env:"LICENSE_STORE_REDIS_PREFIX" envDefault:"licensekit:license:"`
	TTL       time.Duration `env:"LICENSE_STORE_REDIS_TTL" envDefault:"720h"`
}

// RedisStore keeps records as JSON values under KeyPrefix+sessionID.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

func NewRedisStore(client redis.UniversalClient, cfg RedisConfig) *RedisStore {
	if client == nil {
		panic("licensestore: redis client is required")
	}
	return &RedisStore{
		client: client,
		prefix: cfg.KeyPrefix,
		ttl:    cfg.TTL,
	}
}

func (s *RedisStore) key(sessionID string) string {
	return s.prefix + sessionID
}

func (s *RedisStore) Get(ctx context.Context, sessionID string) (Record, error) {
	data, err := s.client.Get(ctx, s.key(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, errors.Join(ErrStoreFailure, err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, errors.Join(ErrStoreFailure, err)
	}
	return rec, nil
}

func (s *RedisStore) Claim(ctx context.Context, rec Record) (Record, bool, error) {
	if err := rec.validate(); err != nil {
		return Record{}, false, err
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return Record{}, false, errors.Join(ErrStoreFailure, err)
	}

	inserted, err := s.client.SetNX(ctx, s.key(rec.SessionID), data, s.ttl).Result()
	if err != nil {
		return Record{}, false, errors.Join(ErrStoreFailure, err)
	}
	if inserted {
		return rec, true, nil
	}

	existing, err := s.Get(ctx, rec.SessionID)
	if err != nil {
		return Record{}, false, err
	}
	return existing, false, nil
}
