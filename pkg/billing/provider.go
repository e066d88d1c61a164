package billing

import (
	"context"

	"github.com/linksphinx/licensekit/pkg/issuance"
)

// Provider is a payment provider that can confirm completed checkouts.
type Provider interface {
	// Name is the short identifier used in routes and logs.
	Name() string

	// SignatureHeader is the HTTP header carrying the webhook signature.
	SignatureHeader() string

	// ParseWebhook authenticates payload and extracts the event.
	// Returns ErrInvalidSignature when authentication fails.
	ParseWebhook(ctx context.Context, payload []byte, signature string) (*Event, error)

	// GetPaymentRecord fetches the session and normalizes it.
	// Returns ErrSessionNotFound for unknown ids.
	GetPaymentRecord(ctx context.Context, sessionID string) (*issuance.PaymentRecord, error)
}

// EventType is a provider-independent webhook event classification.
type EventType string

const (
	// EventCheckoutCompleted means a checkout finished and may be paid.
	EventCheckoutCompleted EventType = "checkout.completed"
	// EventIgnored covers every event the service does not act on.
	EventIgnored EventType = "ignored"
)

// Event is an authenticated webhook event.
type Event struct {
	Type          EventType
	ProviderEvent string
	ID            string
	SessionID     string
}

// Actionable reports whether the event should trigger fulfillment.
func (e *Event) Actionable() bool {
	return e != nil && e.Type == EventCheckoutCompleted && e.SessionID != ""
}
