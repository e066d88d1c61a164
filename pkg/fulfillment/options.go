package fulfillment

import (
	"log/slog"
	"time"

	"github.com/linksphinx/licensekit/pkg/licensestore"
)

// Option configures a Service.
type Option func(*Service)

// WithStore enables the idempotency cache used to pick the email sender.
func WithStore(store licensestore.Store) Option {
	return func(s *Service) {
		s.store = store
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithDeliveryTimeout bounds background email delivery.
func WithDeliveryTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.deliveryTimeout = d
		}
	}
}

// WithFulfillTimeout bounds the shared provider lookup and store claim of
// one collapsed fulfillment.
func WithFulfillTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.fulfillTimeout = d
		}
	}
}

// WithSupportEmail sets the reply address printed in license emails.
func WithSupportEmail(addr string) Option {
	return func(s *Service) {
		s.supportEmail = addr
	}
}
