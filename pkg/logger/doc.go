// Package logger builds the service's *slog.Logger and provides attribute
// helpers that keep key names consistent across packages.
//
// New assembles a text or JSON handler from functional options and wraps it
// in a decorator that runs ContextExtractor callbacks on every record, which
// is how request ids reach log lines without being passed around explicitly.
//
//	log := logger.New(
//	    logger.WithEnvironment(cfg.Env, "licensed"),
//	    logger.WithContextExtractors(requestid.LoggerExtractor()),
//	)
//	logger.SetAsDefault(log)
//
//	log.InfoContext(ctx, "license mint rejected",
//	    logger.SessionID(sessionID),
//	    logger.Error(err),
//	)
//
// Error, Provider and SessionID return an empty attribute for empty input,
// so callers never need a nil check before logging.
package logger
