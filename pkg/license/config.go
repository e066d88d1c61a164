package license

// Config holds codec configuration.
// SigningSecret is intentionally not marked required: verification endpoints
// must be able to report "server not configured" instead of refusing to start.
type Config struct {
	SigningSecret        string `env:"LICENSE_SIGNING_SECRET"`
	Product              string `env:"LICENSE_PRODUCT" envDefault:"linksphinx"`
	AllowedPaymentLinkID string `env:"ALLOWED_PAYMENT_LINK_ID"`
	AllowedPriceID       string `env:"ALLOWED_PRICE_ID"`
}
