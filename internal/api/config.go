package api

type Config struct {
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
	// ProxyHeaders lists headers trusted for the client IP, in order. Empty
	// means RemoteAddr only. Set it only behind a proxy that overwrites these
	// headers, otherwise clients can rotate them past the rate limiter.
	ProxyHeaders []string `env:"TRUSTED_PROXY_HEADERS" envSeparator:","`
	MaxBodyBytes int64    `env:"API_MAX_BODY_BYTES" envDefault:"65536"`
	ProductName  string   `env:"PRODUCT_DISPLAY_NAME" envDefault:"LinkSphinx"`
}
