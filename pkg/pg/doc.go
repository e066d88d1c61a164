// Package pg opens a pgx connection pool, applies goose migrations from an
// fs.FS and exposes a readiness probe.
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, migrations.FS, cfg, log); err != nil {
//	    return err
//	}
//
// Connect retries cfg.RetryAttempts times, pausing RetryInterval multiplied by
// the attempt number. Migrate bridges the pool to database/sql for goose and
// routes goose output to the supplied logger.
//
// IsNotFoundError and IsDuplicateKeyError classify driver errors.
package pg
