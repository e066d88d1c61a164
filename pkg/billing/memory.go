package billing

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"sync"

	"github.com/linksphinx/licensekit/pkg/issuance"
)

// MemoryProvider keeps checkout sessions in memory. Webhooks are JSON bodies
// of the form {"id":"evt_1","type":"checkout.session.completed","session_id":"cs_1"}
// signed with hex(HMAC-SHA256(secret, body)).
type MemoryProvider struct {
	mu       sync.RWMutex
	sessions map[string]issuance.PaymentRecord
	secret   []byte
}

// NewMemoryProvider creates an empty provider. An empty webhookSecret leaves
// webhooks unconfigured.
func NewMemoryProvider(webhookSecret string) *MemoryProvider {
	return &MemoryProvider{
		sessions: make(map[string]issuance.PaymentRecord),
		secret:   []byte(webhookSecret),
	}
}

// Put stores or replaces a session record.
func (p *MemoryProvider) Put(rec issuance.PaymentRecord) {
	if rec.Provider == "" {
		rec.Provider = p.Name()
	}
	p.mu.Lock()
	p.sessions[rec.SessionID] = rec
	p.mu.Unlock()
}

// Sign returns the signature header value for payload.
func (p *MemoryProvider) Sign(payload []byte) string {
	mac := hmac.New(sha256.New, p.secret)
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func (p *MemoryProvider) Name() string { return "memory" }

func (p *MemoryProvider) SignatureHeader() string { return "X-Memory-Signature" }

func (p *MemoryProvider) ParseWebhook(_ context.Context, payload []byte, signature string) (*Event, error) {
	if len(p.secret) == 0 {
		return nil, ErrWebhookNotConfigured
	}
	if !hmac.Equal([]byte(p.Sign(payload)), []byte(signature)) {
		return nil, ErrInvalidSignature
	}

	var body struct {
		ID        string `json:"id"`
		Type      string `json:"type"`
		SessionID string `json:"session_id"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, errors.Join(ErrMalformedPayload, err)
	}

	event := &Event{
		Type:          EventIgnored,
		ProviderEvent: body.Type,
		ID:            body.ID,
		SessionID:     body.SessionID,
	}
	if body.Type == "checkout.session.completed" {
		event.Type = EventCheckoutCompleted
	}
	return event, nil
}

func (p *MemoryProvider) GetPaymentRecord(_ context.Context, sessionID string) (*issuance.PaymentRecord, error) {
	p.mu.RLock()
	rec, ok := p.sessions[sessionID]
	p.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return &rec, nil
}
