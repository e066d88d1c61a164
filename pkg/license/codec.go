package license

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// Codec mints and verifies license keys. It holds no mutable state and is
// safe for concurrent use.
type Codec struct {
	secret       []byte
	product      string
	allowedPlink string
	allowedPrice string
}

// New creates a codec from cfg. An empty signing secret is accepted here and
// reported by Mint and Verify as ErrMissingSigningSecret.
func New(cfg Config) *Codec {
	product := cfg.Product
	if product == "" {
		product = DefaultProduct
	}
	return &Codec{
		secret:       []byte(cfg.SigningSecret),
		product:      product,
		allowedPlink: cfg.AllowedPaymentLinkID,
		allowedPrice: cfg.AllowedPriceID,
	}
}

// Configured reports whether the codec has a signing secret.
func (c *Codec) Configured() bool {
	return len(c.secret) > 0
}

// Product returns the product tag written into minted keys.
func (c *Codec) Product() string {
	return c.product
}

// CheckScope evaluates the allow-lists against a payment link id and price id.
// It returns an empty Reason when both are permitted.
func (c *Codec) CheckScope(paymentLinkID, priceID string) Reason {
	if c.allowedPlink != "" && paymentLinkID != c.allowedPlink {
		return ReasonPaymentLink
	}
	if c.allowedPrice != "" && priceID != c.allowedPrice {
		return ReasonPrice
	}
	return ""
}

// sign returns base64url(HMAC-SHA256(secret, segment)).
func (c *Codec) sign(segment string) string {
	h := hmac.New(sha256.New, c.secret)
	h.Write([]byte(segment))
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}
