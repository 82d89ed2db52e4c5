// Package logging provides rossby's structured request logging: a gin
// middleware that tags every request with a UUID and logs
// method/path/status/duration through logrus, plus helpers for
// attaching the same structured fields to ad-hoc operation logs. The
// field set (operation, request_id, duration_ms) mirrors the original
// implementation's logging.rs.
package logging

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const requestIDKey = "request_id"

// NewLogger builds a logrus.Logger configured for the given level name
// (trace, debug, info, warn, error), matching internal/config's
// validated LogLevel values.
func NewLogger(level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	logger.SetLevel(parsed)
	return logger
}

// RequestID returns the UUID attached to ctx by RequestLogger, or an
// empty string if the middleware has not run.
func RequestID(ctx *gin.Context) string {
	id, _ := ctx.Get(requestIDKey)
	s, _ := id.(string)
	return s
}

// RequestLogger is a gin middleware that assigns each request a UUID
// and logs method, path, status and latency once the handler returns.
func RequestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id := uuid.NewString()
		ctx.Set(requestIDKey, id)

		start := time.Now()
		ctx.Next()
		duration := time.Since(start)

		entry := logger.WithFields(logrus.Fields{
			"request_id":  id,
			"method":      ctx.Request.Method,
			"path":        ctx.Request.URL.Path,
			"status":      ctx.Writer.Status(),
			"duration_ms": float64(duration.Microseconds()) / 1000.0,
		})

		if len(ctx.Errors) > 0 {
			entry.Warn(ctx.Errors.String())
			return
		}
		entry.Info("request handled")
	}
}

// Fields builds the common operation/request_id/duration_ms field set
// used for logging significant non-request operations, such as the
// dataset load at startup.
func Fields(operation, requestID string, duration time.Duration) logrus.Fields {
	fields := logrus.Fields{"operation": operation}
	if requestID != "" {
		fields["request_id"] = requestID
	}
	if duration > 0 {
		fields["duration_ms"] = float64(duration.Microseconds()) / 1000.0
	}
	return fields
}

// LogOperation logs the start and completion of a named operation with
// timing, mirroring logging.rs's log_timed_operation.
func LogOperation(logger *logrus.Logger, operation string, fn func() error) error {
	start := time.Now()
	logger.WithFields(logrus.Fields{"operation": operation}).Debug("starting operation")

	err := fn()
	duration := time.Since(start)

	entry := logger.WithFields(Fields(operation, "", duration))
	if err != nil {
		entry.WithError(err).Warn("operation completed with error")
		return err
	}
	entry.Info("operation completed")
	return nil
}
