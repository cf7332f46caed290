// Package logger provides the structured logging interface used across uranus.
//
// It wraps zerolog behind a small Logger interface so packages can be handed
// a TestLogger or a no-op logger in tests. Console output is colorized and
// written to stderr; when a log file is configured every event is also
// appended to it as JSON.
//
// Basic Usage:
//
//	err := logger.Initialize(&config.LoggingConfig{Level: "debug"})
//
//	log := logger.GetLogger().WithFields(map[string]interface{}{
//	    "run_id":   runID,
//	    "username": "alice",
//	})
//	log.Info("Resolving user")
//	log.WithError(err).Warn("Page request failed")
//
// The trace level carries raw request and response detail and is meant for
// debugging API behaviour.
package logger
