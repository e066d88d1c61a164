package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/linksphinx/licensekit/pkg/issuance"
)

// StripeConfig holds configuration for the Stripe provider.
type StripeConfig struct {
	SecretKey     string `env:"STRIPE_SECRET_KEY"`
	WebhookSecret string `env:"STRIPE_WEBHOOK_SECRET"`
}

// Enabled reports whether enough is configured to look sessions up.
func (c StripeConfig) Enabled() bool {
	return c.SecretKey != ""
}

// StripeSessions is the subset of the Checkout Session API the provider uses.
// *session.Client satisfies it.
type StripeSessions interface {
	Get(id string, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

// StripeProvider implements Provider for Stripe Checkout.
type StripeProvider struct {
	sessions      StripeSessions
	webhookSecret string
}

// NewStripeProvider creates a Stripe provider using the live API backend.
func NewStripeProvider(cfg StripeConfig) (*StripeProvider, error) {
	if cfg.SecretKey == "" {
		return nil, fmt.Errorf("%w: stripe secret key is required", ErrProviderNotConfigured)
	}
	client := &session.Client{
		B:   stripe.GetBackend(stripe.APIBackend),
		Key: cfg.SecretKey,
	}
	return NewStripeProviderWithClient(client, cfg.WebhookSecret), nil
}

// NewStripeProviderWithClient creates a Stripe provider over a custom
// session client.
func NewStripeProviderWithClient(sessions StripeSessions, webhookSecret string) *StripeProvider {
	if sessions == nil {
		panic("billing: stripe session client is required")
	}
	return &StripeProvider{sessions: sessions, webhookSecret: webhookSecret}
}

func (p *StripeProvider) Name() string { return "stripe" }

func (p *StripeProvider) SignatureHeader() string { return "Stripe-Signature" }

// ParseWebhook verifies the Stripe-Signature header and extracts the session
// id from checkout events.
func (p *StripeProvider) ParseWebhook(ctx context.Context, payload []byte, signature string) (*Event, error) {
	if p.webhookSecret == "" {
		return nil, ErrWebhookNotConfigured
	}

	evt, err := webhook.ConstructEventWithOptions(payload, signature, p.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, errors.Join(ErrInvalidSignature, err)
	}

	event := &Event{
		Type:          mapStripeEventType(evt.Type),
		ProviderEvent: string(evt.Type),
		ID:            evt.ID,
	}
	if event.Type == EventIgnored {
		return event, nil
	}

	if evt.Data == nil || len(evt.Data.Raw) == 0 {
		return nil, ErrMalformedPayload
	}
	var obj struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(evt.Data.Raw, &obj); err != nil {
		return nil, errors.Join(ErrMalformedPayload, err)
	}
	event.SessionID = obj.ID

	return event, nil
}

func mapStripeEventType(t stripe.EventType) EventType {
	switch t {
	case stripe.EventTypeCheckoutSessionCompleted, stripe.EventTypeCheckoutSessionAsyncPaymentSucceeded:
		return EventCheckoutCompleted
	default:
		return EventIgnored
	}
}

// GetPaymentRecord retrieves the session with line items expanded.
func (p *StripeProvider) GetPaymentRecord(ctx context.Context, sessionID string) (*issuance.PaymentRecord, error) {
	if sessionID == "" {
		return nil, ErrSessionNotFound
	}

	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	params.AddExpand("line_items")

	s, err := p.sessions.Get(sessionID, params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) &&
			(stripeErr.Code == stripe.ErrorCodeResourceMissing || stripeErr.HTTPStatusCode == 404) {
			return nil, errors.Join(ErrSessionNotFound, err)
		}
		return nil, errors.Join(ErrLookupFailed, err)
	}

	rec := recordFromStripeSession(s)
	return &rec, nil
}

func recordFromStripeSession(s *stripe.CheckoutSession) issuance.PaymentRecord {
	rec := issuance.PaymentRecord{
		Provider:      "stripe",
		SessionID:     s.ID,
		PaymentStatus: string(s.PaymentStatus),
		Paid:          s.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
		CustomerEmail: s.CustomerEmail,
		CreatedAt:     s.Created,
	}
	if s.CustomerDetails != nil {
		rec.CustomerDetailsEmail = s.CustomerDetails.Email
	}
	if s.PaymentLink != nil {
		rec.PaymentLinkID = s.PaymentLink.ID
	}
	if s.LineItems != nil && len(s.LineItems.Data) > 0 {
		if item := s.LineItems.Data[0]; item != nil && item.Price != nil {
			rec.PriceID = item.Price.ID
		}
	}
	return rec
}
