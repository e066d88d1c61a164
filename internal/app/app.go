// Package app wires configuration into a running license service.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"

	"github.com/linksphinx/licensekit/internal/api"
	"github.com/linksphinx/licensekit/internal/db/migrations"
	"github.com/linksphinx/licensekit/pkg/billing"
	"github.com/linksphinx/licensekit/pkg/email"
	"github.com/linksphinx/licensekit/pkg/fulfillment"
	"github.com/linksphinx/licensekit/pkg/httpserver"
	"github.com/linksphinx/licensekit/pkg/issuance"
	"github.com/linksphinx/licensekit/pkg/license"
	"github.com/linksphinx/licensekit/pkg/licensestore"
	"github.com/linksphinx/licensekit/pkg/logger"
	"github.com/linksphinx/licensekit/pkg/pg"
	"github.com/linksphinx/licensekit/pkg/ratelimiter"
	"github.com/linksphinx/licensekit/pkg/redis"
)

var ErrInvalidConfig = errors.New("invalid service configuration")

// App holds the built service.
type App struct {
	Handler http.Handler
	Server  *httpserver.Server

	log          *slog.Logger
	fulfillment  *fulfillment.Service
	drainTimeout time.Duration
	closers      []func()
}

// New connects external dependencies and builds the router.
func New(ctx context.Context, cfg Config, log *slog.Logger) (*App, error) {
	a := &App{log: log}
	if err := a.build(ctx, cfg); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) build(ctx context.Context, cfg Config) error {
	codec := license.New(cfg.License)
	if !codec.Configured() {
		a.log.WarnContext(ctx, "LICENSE_SIGNING_SECRET is not set; minting and verification will fail",
			logger.Component("app"))
	}
	issuer := issuance.NewIssuer(codec, issuance.WithLogger(a.log))

	providers, err := a.providers(ctx, cfg)
	if err != nil {
		return err
	}

	sender, err := email.NewSender(cfg.Email)
	if err != nil {
		return err
	}

	checks := map[string]httpserver.Check{}

	var rdb *goredis.Client
	if cfg.Redis.Enabled() {
		rdb, err = redis.Connect(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, func() { _ = rdb.Close() })
		checks["redis"] = redis.Healthcheck(rdb)
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.Enabled() {
		pool, err = pg.Connect(ctx, cfg.Postgres)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, pool.Close)
		checks["postgres"] = pg.Healthcheck(pool)

		if cfg.AutoMigrate {
			if err := pg.Migrate(ctx, pool, migrations.FS, cfg.Postgres, a.log); err != nil {
				return err
			}
		}
	}

	store, err := selectStore(cfg, rdb, pool)
	if err != nil {
		return err
	}

	opts := []fulfillment.Option{
		fulfillment.WithLogger(a.log),
		fulfillment.WithDeliveryTimeout(cfg.DeliveryTimeout),
		fulfillment.WithFulfillTimeout(cfg.FulfillTimeout),
		fulfillment.WithSupportEmail(cfg.Email.SupportEmail),
	}
	if store != nil {
		opts = append(opts, fulfillment.WithStore(store))
	}
	svc := fulfillment.NewService(providers, issuer, sender, opts...)
	a.fulfillment = svc
	a.drainTimeout = cfg.DrainTimeout

	var limiter *ratelimiter.Limiter
	if cfg.RateLimitEnabled {
		limiter, err = a.limiter(cfg, rdb)
		if err != nil {
			return err
		}
	}

	a.log.InfoContext(ctx, "license service configured",
		logger.Component("app"),
		slog.Any("providers", providers.Names()),
		slog.String("email_provider", cfg.Email.Provider),
		slog.Bool("store", store != nil),
		slog.Bool("rate_limit", limiter != nil),
	)

	a.Handler = api.NewRouter(api.Deps{
		Config:      cfg.API,
		Fulfillment: svc,
		Issuer:      issuer,
		Providers:   providers,
		Limiter:     limiter,
		Checks:      checks,
		Logger:      a.log,
	})
	a.Server = httpserver.NewFromConfig(cfg.HTTP, httpserver.WithLogger(a.log))
	return nil
}

func (a *App) providers(ctx context.Context, cfg Config) (*billing.Registry, error) {
	var list []billing.Provider

	if cfg.Stripe.Enabled() {
		p, err := billing.NewStripeProvider(cfg.Stripe)
		if err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	if cfg.Paddle.Enabled() {
		p, err := billing.NewPaddleProvider(cfg.Paddle)
		if err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	if cfg.MemoryWebhookSecret != "" {
		list = append(list, billing.NewMemoryProvider(cfg.MemoryWebhookSecret))
	}

	if len(list) == 0 {
		a.log.WarnContext(ctx, "no payment provider configured; only verification is available",
			logger.Component("app"))
	}
	return billing.NewRegistry(list...), nil
}

func selectStore(cfg Config, rdb *goredis.Client, pool *pgxpool.Pool) (licensestore.Store, error) {
	switch strings.ToLower(cfg.StoreBackend) {
	case StoreAuto, "":
		switch {
		case pool != nil:
			return licensestore.NewPostgresStore(pool), nil
		case rdb != nil:
			return licensestore.NewRedisStore(rdb, cfg.RedisStore), nil
		}
		return nil, nil
	case StoreNone:
		return nil, nil
	case StoreMemory:
		return licensestore.NewMemoryStore(), nil
	case StoreRedis:
		if rdb == nil {
			return nil, fmt.Errorf("%w: LICENSE_STORE=redis requires REDIS_URL", ErrInvalidConfig)
		}
		return licensestore.NewRedisStore(rdb, cfg.RedisStore), nil
	case StorePostgres:
		if pool == nil {
			return nil, fmt.Errorf("%w: LICENSE_STORE=postgres requires PG_CONN_URL", ErrInvalidConfig)
		}
		return licensestore.NewPostgresStore(pool), nil
	default:
		return nil, fmt.Errorf("%w: unknown LICENSE_STORE %q", ErrInvalidConfig, cfg.StoreBackend)
	}
}

func (a *App) limiter(cfg Config, rdb *goredis.Client) (*ratelimiter.Limiter, error) {
	if rdb != nil {
		return ratelimiter.New(ratelimiter.NewRedisStore(rdb, ""), cfg.RateLimit)
	}
	store := ratelimiter.NewMemoryStore()
	a.closers = append(a.closers, store.Close)
	return ratelimiter.New(store, cfg.RateLimit)
}

// Run serves HTTP until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	return a.Server.Run(ctx, a.Handler)
}

// Close waits for background license emails, bounded by the drain
// timeout, then releases connections in reverse order of creation. Call it
// after Run has returned.
func (a *App) Close() {
	if a.fulfillment != nil {
		ctx := context.Background()
		if a.drainTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, a.drainTimeout)
			defer cancel()
		}
		if err := a.fulfillment.Drain(ctx); err != nil {
			a.log.Warn("shutdown before all license emails were sent",
				logger.Component("app"), logger.Error(err))
		}
		a.fulfillment = nil
	}

	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
