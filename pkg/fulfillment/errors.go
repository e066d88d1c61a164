package fulfillment

import "errors"

var (
	ErrInvalidLicense = errors.New("invalid license")
	ErrDeliveryFailed = errors.New("license email delivery failed")
)
