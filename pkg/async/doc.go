// Package async runs functions in background goroutines and exposes their
// results as generic futures.
//
//	f := async.Detach(r.Context(), 15*time.Second, msg, func(ctx context.Context, m email.SendEmailParams) (struct{}, error) {
//	    return struct{}{}, sender.SendEmail(ctx, m)
//	})
//	// respond to the client without waiting
//
//	_, err := f.AwaitWithTimeout(time.Second) // tests and shutdown hooks
//
// Async honours the caller's context. Detach is for best-effort side effects
// that must not be cancelled when an HTTP request finishes.
package async
