// Package issuance turns confirmed payments into license keys and turns
// client-supplied keys into caller-facing verification outcomes.
//
// It sits between the trigger paths (payment webhook, success-page redirect,
// resend requests) and the license codec. Claim derivation is deterministic:
// the issue time comes from the payment record's own creation timestamp, so
// every path that sees the same purchase mints the same key without
// coordinating with the others.
//
// # Minting
//
//	issuer := issuance.NewIssuer(codec, issuance.WithLogger(log))
//
//	issued, err := issuer.MintFromPayment(ctx, record)
//	switch {
//	case errors.Is(err, issuance.ErrPaymentNotConfirmed):
//	case errors.Is(err, issuance.ErrMissingEmail):
//	case errors.Is(err, issuance.ErrPaymentLinkMismatch), errors.Is(err, issuance.ErrPriceMismatch):
//	case errors.Is(err, license.ErrMissingSigningSecret):
//	}
//
// The buyer email is resolved from an ordered list of record fields: the
// structured customer details email first, then the flat customer email.
//
// # Verifying
//
//	outcome, err := issuer.VerifyFromClient(ctx, key, "")
//	if err != nil {
//	    // server misconfiguration, report as 5xx
//	}
//	json.NewEncoder(w).Encode(outcome) // {"valid":false,"message":"Invalid license."}
//
// Signature and format failures share one generic message; the precise reason
// is kept in Outcome.Reason and in logs.
package issuance
