package licensestore

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/linksphinx/licensekit/pkg/pg"
)

const (
	insertLicenseQuery = `INSERT INTO licenses (session_id, provider, email, license_key, created_at)
VALUES ($1, $2, $3, $4, COALESCE($5, now()))
ON CONFLICT (session_id) DO NOTHING
RETURNING session_id, provider, email, license_key, created_at`

	selectLicenseQuery = `SELECT session_id, provider, email, license_key, created_at
FROM licenses WHERE session_id = $1`
)

// PostgresStore keeps records in the licenses table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	if pool == nil {
		panic("licensestore: postgres pool is required")
	}
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Get(ctx context.Context, sessionID string) (Record, error) {
	rec, err := scanRecord(s.pool.QueryRow(ctx, selectLicenseQuery, sessionID))
	if pg.IsNotFoundError(err) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, errors.Join(ErrStoreFailure, err)
	}
	return rec, nil
}

func (s *PostgresStore) Claim(ctx context.Context, rec Record) (Record, bool, error) {
	if err := rec.validate(); err != nil {
		return Record{}, false, err
	}

	var createdAt any
	if !rec.CreatedAt.IsZero() {
		createdAt = rec.CreatedAt
	}

	stored, err := scanRecord(s.pool.QueryRow(ctx, insertLicenseQuery,
		rec.SessionID, rec.Provider, rec.Email, rec.Key, createdAt))
	switch {
	case err == nil:
		return stored, true, nil
	case pg.IsNotFoundError(err), pg.IsDuplicateKeyError(err):
		// conflict: someone else holds the row
	default:
		return Record{}, false, errors.Join(ErrStoreFailure, err)
	}

	existing, err := s.Get(ctx, rec.SessionID)
	if err != nil {
		return Record{}, false, err
	}
	return existing, false, nil
}

func scanRecord(row pgx.Row) (Record, error) {
	var rec Record
	err := row.Scan(&rec.SessionID, &rec.Provider, &rec.Email, &rec.Key, &rec.CreatedAt)
	return rec, err
}
