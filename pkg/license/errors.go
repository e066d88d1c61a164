package license

import "errors"

var (
	// ErrMissingSigningSecret reports an unconfigured codec. It is an operator
	// fault and must never be surfaced to clients as an invalid license.
	ErrMissingSigningSecret = errors.New("license signing secret is not configured")

	ErrInvalidToken      = errors.New("invalid license format")
	ErrSignatureInvalid  = errors.New("license signature mismatch")
	ErrProductMismatch   = errors.New("license issued for another product")
	ErrPaymentLinkDenied = errors.New("license payment link is not allowed")
	ErrPriceDenied       = errors.New("license price is not allowed")
)

// Err maps a rejection reason to its sentinel error.
// Returns nil for an empty reason.
func (r Reason) Err() error {
	switch r {
	case ReasonFormat:
		return ErrInvalidToken
	case ReasonSignature:
		return ErrSignatureInvalid
	case ReasonProduct:
		return ErrProductMismatch
	case ReasonPaymentLink:
		return ErrPaymentLinkDenied
	case ReasonPrice:
		return ErrPriceDenied
	default:
		return nil
	}
}
