// Package fulfillment coordinates the trigger paths that lead to a license:
// provider webhooks, the post-checkout success page and explicit resend
// requests.
//
// Every path re-fetches the checkout session from its provider and hands the
// record to the issuer, so they all mint the same key. What differs is
// delivery. A fulfillment claims the session in the optional license store;
// the first claimant sends the email in the background while later ones only
// return the key. Without a store, only the webhook path emails.
//
//	svc := fulfillment.NewService(registry, issuer, sender,
//	    fulfillment.WithStore(store),
//	    fulfillment.WithLogger(log),
//	)
//
//	f, err := svc.FulfillSession(ctx, "stripe", sessionID)
//	if err != nil {
//	    // issuance.ErrPaymentNotConfirmed, issuance.ErrMissingEmail, ...
//	}
//	render(f.Issued.Token)
//
// Email failures on the fulfillment paths are logged and never returned.
// Resends are synchronous and do report delivery failures.
package fulfillment
