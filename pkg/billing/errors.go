package billing

import "errors"

var (
	ErrInvalidSignature      = errors.New("webhook signature verification failed")
	ErrWebhookNotConfigured  = errors.New("webhook secret is not configured")
	ErrProviderNotConfigured = errors.New("payment provider is not configured")
	ErrMalformedPayload      = errors.New("malformed webhook payload")
	ErrSessionNotFound       = errors.New("checkout session not found")
	ErrLookupFailed          = errors.New("failed to retrieve checkout session")
	ErrUnknownProvider       = errors.New("unknown payment provider")
)
