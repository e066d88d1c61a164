package billing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	paddle "github.com/PaddleHQ/paddle-go-sdk/v4"

	"github.com/linksphinx/licensekit/pkg/issuance"
)

// PaddleConfig holds configuration for the Paddle provider.
type PaddleConfig struct {
	APIKey        string `env:"PADDLE_API_KEY"`
	WebhookSecret string `env:"PADDLE_WEBHOOK_SECRET"`
	Environment   string `env:"PADDLE_ENVIRONMENT" envDefault:"production"`
}

// Enabled reports whether enough is configured to look transactions up.
func (c PaddleConfig) Enabled() bool {
	return c.APIKey != ""
}

// PaddleTransactions is the subset of the Paddle transactions API the
// provider uses. *paddle.TransactionsClient satisfies it.
type PaddleTransactions interface {
	GetTransaction(ctx context.Context, req *paddle.GetTransactionRequest) (*paddle.Transaction, error)
}

// PaddleProvider implements Provider for Paddle Billing. A transaction id plays
// the role of the checkout session id.
type PaddleProvider struct {
	transactions PaddleTransactions
	verifier     *paddle.WebhookVerifier
}

// NewPaddleProvider creates a Paddle provider for the configured environment.
func NewPaddleProvider(cfg PaddleConfig) (*PaddleProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: paddle API key is required", ErrProviderNotConfigured)
	}

	var client *paddle.SDK
	var err error

	switch strings.ToLower(cfg.Environment) {
	case "sandbox":
		client, err = paddle.NewSandbox(cfg.APIKey)
	case "production", "":
		client, err = paddle.New(cfg.APIKey)
	default:
		return nil, fmt.Errorf("%w: invalid paddle environment %q", ErrProviderNotConfigured, cfg.Environment)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create paddle client: %w", err)
	}

	return NewPaddleProviderWithClient(client.TransactionsClient, cfg.WebhookSecret), nil
}

// NewPaddleProviderWithClient creates a Paddle provider over a custom
// transactions client.
func NewPaddleProviderWithClient(transactions PaddleTransactions, webhookSecret string) *PaddleProvider {
	if transactions == nil {
		panic("billing: paddle transactions client is required")
	}
	p := &PaddleProvider{transactions: transactions}
	if webhookSecret != "" {
		p.verifier = paddle.NewWebhookVerifier(webhookSecret)
	}
	return p
}

func (p *PaddleProvider) Name() string { return "paddle" }

func (p *PaddleProvider) SignatureHeader() string { return "Paddle-Signature" }

// ParseWebhook validates the Paddle-Signature header and extracts the
// transaction id from completed transaction events.
func (p *PaddleProvider) ParseWebhook(ctx context.Context, payload []byte, signature string) (*Event, error) {
	if p.verifier == nil {
		return nil, ErrWebhookNotConfigured
	}

	// The SDK verifier works on *http.Request.
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "/webhook", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request for verification: %w", err)
	}
	req.Header.Set(p.SignatureHeader(), signature)

	valid, err := p.verifier.Verify(req)
	if err != nil {
		return nil, errors.Join(ErrInvalidSignature, err)
	}
	if !valid {
		return nil, ErrInvalidSignature
	}

	return parsePaddleEvent(payload)
}

func parsePaddleEvent(payload []byte) (*Event, error) {
	var paddleEvent struct {
		EventID   string         `json:"event_id"`
		EventType string         `json:"event_type"`
		Data      map[string]any `json:"data"`
	}
	if err := json.Unmarshal(payload, &paddleEvent); err != nil {
		return nil, errors.Join(ErrMalformedPayload, err)
	}

	event := &Event{
		Type:          mapPaddleEventType(paddleEvent.EventType),
		ProviderEvent: paddleEvent.EventType,
		ID:            paddleEvent.EventID,
	}
	if event.Type == EventIgnored {
		return event, nil
	}

	id, _ := paddleEvent.Data["id"].(string)
	if id == "" {
		return nil, ErrMalformedPayload
	}
	event.SessionID = id

	return event, nil
}

func mapPaddleEventType(eventType string) EventType {
	switch eventType {
	case "transaction.completed", "transaction.paid":
		return EventCheckoutCompleted
	default:
		return EventIgnored
	}
}

// GetPaymentRecord retrieves the transaction and normalizes it.
func (p *PaddleProvider) GetPaymentRecord(ctx context.Context, sessionID string) (*issuance.PaymentRecord, error) {
	if sessionID == "" {
		return nil, ErrSessionNotFound
	}

	txn, err := p.transactions.GetTransaction(ctx, &paddle.GetTransactionRequest{TransactionID: sessionID})
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "not_found") {
			return nil, errors.Join(ErrSessionNotFound, err)
		}
		return nil, errors.Join(ErrLookupFailed, err)
	}
	if txn == nil {
		return nil, ErrSessionNotFound
	}

	// Normalize through the wire shape so the webhook payload and API
	// response share one parser.
	raw, err := json.Marshal(txn)
	if err != nil {
		return nil, errors.Join(ErrLookupFailed, err)
	}
	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, errors.Join(ErrLookupFailed, err)
	}

	rec := recordFromPaddleTransaction(data)
	if rec.SessionID == "" {
		rec.SessionID = sessionID
	}
	return &rec, nil
}

func recordFromPaddleTransaction(data map[string]any) issuance.PaymentRecord {
	rec := issuance.PaymentRecord{Provider: "paddle"}

	rec.SessionID, _ = data["id"].(string)
	rec.PaymentStatus, _ = data["status"].(string)
	rec.Paid = rec.PaymentStatus == "completed" || rec.PaymentStatus == "paid"

	if customData, ok := data["custom_data"].(map[string]any); ok {
		rec.CustomerEmail, _ = customData["email"].(string)
		rec.PaymentLinkID, _ = customData["payment_link_id"].(string)
	}

	if items, ok := data["items"].([]any); ok && len(items) > 0 {
		if item, ok := items[0].(map[string]any); ok {
			if price, ok := item["price"].(map[string]any); ok {
				rec.PriceID, _ = price["id"].(string)
			}
			if rec.PriceID == "" {
				rec.PriceID, _ = item["price_id"].(string)
			}
		}
	}

	if createdAt, ok := data["created_at"].(string); ok {
		if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
			rec.CreatedAt = t.Unix()
		}
	}

	return rec
}
