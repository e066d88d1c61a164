// Package billing adapts payment providers to the license issuance flow.
//
// Every provider does two things: it authenticates webhook deliveries and
// reduces them to an Event naming a checkout session, and it looks a session
// up by id and normalizes it into an issuance.PaymentRecord. Webhook payloads
// are never minted from directly; callers always re-fetch the session so the
// webhook and success-page paths see identical records.
//
// Supported providers:
//
//   - StripeProvider: Checkout Sessions via github.com/stripe/stripe-go/v76.
//   - PaddleProvider: Paddle Billing transactions via
//     github.com/PaddleHQ/paddle-go-sdk/v4. Buyer email and payment link id
//     are read from the transaction's custom_data.
//   - MemoryProvider: in-process sessions for local development and tests.
//
// A Registry maps the provider names used in webhook routes to providers.
package billing
