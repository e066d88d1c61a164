package issuance

import (
	"log/slog"
	"time"
)

// Option configures an Issuer.
type Option func(*Issuer)

// WithLogger sets the logger used for rejection and fallback diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(i *Issuer) {
		if l != nil {
			i.log = l
		}
	}
}

// WithClock overrides the clock used only when a payment record carries no
// creation timestamp.
func WithClock(now func() time.Time) Option {
	return func(i *Issuer) {
		if now != nil {
			i.now = now
		}
	}
}
