package licensestore

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound      = errors.New("license record not found")
	ErrInvalidRecord = errors.New("license record requires a session id and key")
	ErrStoreFailure  = errors.New("license store operation failed")
)

// Record is a cached issuance.
type Record struct {
	SessionID string    `json:"session_id"`
	Provider  string    `json:"provider,omitempty"`
	Email     string    `json:"email"`
	Key       string    `json:"license"`
	CreatedAt time.Time `json:"created_at"`
}

func (r Record) validate() error {
	if r.SessionID == "" || r.Key == "" {
		return ErrInvalidRecord
	}
	return nil
}

// Store is an idempotent insert-or-read-back cache keyed by session id.
type Store interface {
	// Get returns the record for sessionID or ErrNotFound.
	Get(ctx context.Context, sessionID string) (Record, error)

	// Claim stores rec unless a record for rec.SessionID exists. It returns
	// the record now stored and whether this call inserted it.
	Claim(ctx context.Context, rec Record) (Record, bool, error)
}
