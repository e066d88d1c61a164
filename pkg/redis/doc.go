// Package redis connects to Redis with retries and exposes a readiness probe.
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	health := redis.Healthcheck(client)
//
// Errors wrap the sentinels in errors.go via errors.Join.
package redis
