package issuance

import "errors"

var (
	ErrPaymentNotConfirmed = errors.New("payment not confirmed")
	ErrMissingEmail        = errors.New("missing email")
	ErrPaymentLinkMismatch = errors.New("plink mismatch")
	ErrPriceMismatch       = errors.New("price mismatch")
)

// IsRejection reports whether err is a recoverable mint-time rejection
// (as opposed to a configuration fault).
func IsRejection(err error) bool {
	return errors.Is(err, ErrPaymentNotConfirmed) ||
		errors.Is(err, ErrMissingEmail) ||
		IsPolicyRejection(err)
}

// IsPolicyRejection reports whether err comes from the allow-list gate.
func IsPolicyRejection(err error) bool {
	return errors.Is(err, ErrPaymentLinkMismatch) || errors.Is(err, ErrPriceMismatch)
}
