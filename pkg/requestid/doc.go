// Package requestid tags every request with a correlation id.
//
// Middleware reuses a well-formed X-Request-ID header or generates a UUIDv7,
// stores it in the context and echoes it in the response. LoggerExtractor
// plugs the id into pkg/logger so every log line of a request carries it:
//
//	log := logger.New(
//		logger.WithEnvironment(env, "licensed"),
//		logger.WithContextExtractors(requestid.LoggerExtractor()),
//	)
package requestid
