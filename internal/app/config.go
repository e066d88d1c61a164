package app

import (
	"time"

	"github.com/linksphinx/licensekit/internal/api"
	"github.com/linksphinx/licensekit/pkg/billing"
	"github.com/linksphinx/licensekit/pkg/email"
	"github.com/linksphinx/licensekit/pkg/httpserver"
	"github.com/linksphinx/licensekit/pkg/license"
	"github.com/linksphinx/licensekit/pkg/licensestore"
	"github.com/linksphinx/licensekit/pkg/pg"
	"github.com/linksphinx/licensekit/pkg/ratelimiter"
	"github.com/linksphinx/licensekit/pkg/redis"
)

// License store backends accepted in Config.StoreBackend.
const (
	StoreAuto     = "auto"
	StoreNone     = "none"
	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

// Config is the full service configuration, parsed from the environment.
type Config struct {
	Env         string `env:"APP_ENV" envDefault:"development"`
	ServiceName string `env:"SERVICE_NAME" envDefault:"licensed"`

	// StoreBackend picks the idempotency cache. auto prefers Postgres, then
	// Redis, then none.
	StoreBackend    string        `env:"LICENSE_STORE" envDefault:"auto"`
	DeliveryTimeout time.Duration `env:"EMAIL_DELIVERY_TIMEOUT" envDefault:"15s"`
	FulfillTimeout  time.Duration `env:"FULFILL_TIMEOUT" envDefault:"30s"`
	// DrainTimeout bounds how long Close waits for background emails.
	DrainTimeout     time.Duration `env:"EMAIL_DRAIN_TIMEOUT" envDefault:"20s"`
	AutoMigrate      bool          `env:"PG_AUTO_MIGRATE" envDefault:"true"`
	RateLimitEnabled bool          `env:"RATE_LIMIT_ENABLED" envDefault:"true"`

	// MemoryWebhookSecret enables the in-process provider for local testing.
	MemoryWebhookSecret string `env:"MEMORY_WEBHOOK_SECRET"`

	HTTP       httpserver.Config
	API        api.Config
	License    license.Config
	Stripe     billing.StripeConfig
	Paddle     billing.PaddleConfig
	Email      email.Config
	Redis      redis.Config
	Postgres   pg.Config
	RedisStore licensestore.RedisConfig
	RateLimit  ratelimiter.Config
}
