package ratelimiter

import "context"

// Store takes one request from the budget of key.
type Store interface {
	Take(ctx context.Context, key string, cfg Config) (*Result, error)
}
