// Package ratelimiter limits request rates per key.
//
// Two stores are provided. MemoryStore keeps one golang.org/x/time/rate
// token bucket per key and suits a single instance. RedisStore counts
// requests in fixed windows so that several instances share one budget.
//
//	store := ratelimiter.NewMemoryStore()
//	defer store.Close()
//
//	limiter, err := ratelimiter.New(store, ratelimiter.Config{
//		Requests: 10,
//		Window:   time.Minute,
//	})
//	if err != nil {
//		return err
//	}
//
//	r.With(ratelimiter.Middleware(limiter, ratelimiter.ByIP)).Post("/api/verify-license", h)
//
// Denied requests get 429 with Retry-After and X-RateLimit-* headers.
// Store failures are logged and the request is let through.
package ratelimiter
