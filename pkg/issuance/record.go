package issuance

import "strings"

// PaymentRecord is the provider-confirmed view of a completed checkout.
// Providers normalize their own payloads into this shape.
type PaymentRecord struct {
	Provider      string
	SessionID     string
	PaymentStatus string
	Paid          bool

	// Two alternative email sources; see EmailSources for precedence.
	CustomerDetailsEmail string
	CustomerEmail        string

	PriceID       string
	PaymentLinkID string

	// CreatedAt is the record's creation time in seconds since epoch.
	// Zero means the provider did not report one.
	CreatedAt int64
}

// EmailSource extracts one candidate buyer email from a record.
type EmailSource func(PaymentRecord) string

// EmailSources lists the record fields consulted for the buyer email,
// highest precedence first.
var EmailSources = []EmailSource{
	func(r PaymentRecord) string { return r.CustomerDetailsEmail },
	func(r PaymentRecord) string { return r.CustomerEmail },
}

// ResolveEmail returns the first non-blank email from EmailSources.
func (r PaymentRecord) ResolveEmail() string {
	for _, src := range EmailSources {
		if email := strings.TrimSpace(src(r)); email != "" {
			return email
		}
	}
	return ""
}
