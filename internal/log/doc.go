// Package log builds the slog loggers used across wikibridge.
//
// Every logger returned here is wrapped in a SecureHandler, which masks the
// counterpart session cookie and other credentials before a record reaches
// its output. Keys that name a credential (cookie, session, token, password,
// authorization) are masked outright. String values that look like bearer
// tokens, JWTs or cookie pairs are masked whatever their key, and URLs keep
// their shape with any embedded password replaced.
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	logger.Debug("checking counterpart", "session_cookie", cfg.SessionCookie)
//	// session_cookie=***REDACTED***
package log
