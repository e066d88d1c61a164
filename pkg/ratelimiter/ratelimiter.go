package ratelimiter

import (
	"context"
	"errors"
)

// Limiter applies a Config through a Store.
type Limiter struct {
	store  Store
	config Config
}

func New(store Store, config Config) (*Limiter, error) {
	if store == nil {
		return nil, errors.Join(ErrInvalidConfig, errors.New("store is required"))
	}
	if err := config.validate(); err != nil {
		return nil, err
	}
	return &Limiter{store: store, config: config}, nil
}

// Allow consumes one request for key.
func (l *Limiter) Allow(ctx context.Context, key string) (*Result, error) {
	res, err := l.store.Take(ctx, key, l.config)
	if err != nil {
		return nil, errors.Join(ErrStoreUnavailable, err)
	}
	return res, nil
}
