package issuance

import "github.com/linksphinx/licensekit/pkg/license"

// Outcome is the caller-facing result of verifying a client-supplied key.
type Outcome struct {
	Valid   bool            `json:"valid"`
	Message string          `json:"message,omitempty"`
	Reason  license.Reason  `json:"-"`
	Claims  *license.Claims `json:"-"`
}

// MessageInvalid is shown for every trust or format failure.
const MessageInvalid = "Invalid license."

var messages = map[license.Reason]string{
	license.ReasonFormat:      MessageInvalid,
	license.ReasonSignature:   MessageInvalid,
	license.ReasonProduct:     "Wrong product.",
	license.ReasonPaymentLink: "Not for this link.",
	license.ReasonPrice:       "Not for this price.",
}

// Humanize converts a rejection reason into the message shown to clients.
func Humanize(r license.Reason) string {
	if msg, ok := messages[r]; ok {
		return msg
	}
	return MessageInvalid
}
