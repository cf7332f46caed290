package logger

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// LogRequest logs an API round trip at trace level
func LogRequest(log Logger, method, url string, statusCode int, duration time.Duration) {
	log.TraceWithFields("API request completed", map[string]interface{}{
		"method":      method,
		"url":         url,
		"status_code": statusCode,
		"duration_ms": duration.Milliseconds(),
	})
}

// LogRateLimit logs a quota suspension before it starts
func LogRateLimit(log Logger, remaining string, reset int64, wait time.Duration) {
	log.WithFields(map[string]interface{}{
		"remaining": remaining,
		"reset":     reset,
		"wait":      wait,
		"action":    "rate_limited",
	}).Warn("Rate limit reached, suspending")
}

// LogDispatch logs a download command before it is handed to the shell
func LogDispatch(log Logger, postID, kind, command string) {
	log.DebugWithFields("Dispatching download", map[string]interface{}{
		"post_id": postID,
		"kind":    kind,
		"command": command,
	})
}

// LogUserSummary logs the counters collected for one user
func LogUserSummary(log Logger, username string, counters map[string]interface{}) {
	fields := map[string]interface{}{
		"username": username,
		"type":     "summary",
	}
	for k, v := range counters {
		fields[k] = v
	}
	log.InfoWithFields("User export finished", fields)
}

// NewNopLogger creates a no-operation logger for testing
func NewNopLogger() Logger {
	return &nopLogger{}
}

// nopLogger is a logger that does nothing
type nopLogger struct{}

func (n *nopLogger) Trace(msg string)                                          {}
func (n *nopLogger) Debug(msg string)                                          {}
func (n *nopLogger) Info(msg string)                                           {}
func (n *nopLogger) Warn(msg string)                                           {}
func (n *nopLogger) Error(msg string)                                          {}
func (n *nopLogger) Fatal(msg string)                                          {}
func (n *nopLogger) WithField(key string, value interface{}) Logger            { return n }
func (n *nopLogger) WithFields(fields map[string]interface{}) Logger           { return n }
func (n *nopLogger) WithError(err error) Logger                                { return n }
func (n *nopLogger) WithContext(ctx context.Context) Logger                    { return n }
func (n *nopLogger) TraceWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) DebugWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) InfoWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) WarnWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) ErrorWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) FatalWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) GetZerolog() *zerolog.Logger                               { return nil }
