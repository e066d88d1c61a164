// Package licensestore records which checkout sessions already had a license
// issued, so that concurrent trigger paths can agree on who delivers the
// email.
//
// The store is a cache, not a source of truth: license keys are always
// re-derived from the payment record, and verification never consults it.
// Claim is the only coordination primitive. It inserts a record if none
// exists for the session and otherwise returns the stored one:
//
//	stored, inserted, err := store.Claim(ctx, licensestore.Record{
//	    SessionID: sessionID,
//	    Email:     issued.Email,
//	    Key:       issued.Token,
//	})
//	if inserted {
//	    // this caller delivers the email
//	}
//
// Implementations: MemoryStore, RedisStore (SETNX) and PostgresStore
// (INSERT ... ON CONFLICT DO NOTHING).
package licensestore
