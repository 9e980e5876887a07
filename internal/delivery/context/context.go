// Package context carries request-scoped values through echo and
// context.Context: the request ID, the explorer session ID and a logger
// already bound to both.
package context

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type valueKey int

const (
	requestIDKey valueKey = iota
	sessionIDKey
	loggerKey
)

// echoRequestIDKey is where the request ID lives in echo.Context.
const echoRequestIDKey = "request_id"

// HeaderXRequestID carries the request ID in and out of HTTP requests.
const HeaderXRequestID = echo.HeaderXRequestID

// GetRequestID returns the request ID of c, or a fresh UUID when the
// request ID middleware did not run.
func GetRequestID(c echo.Context) string {
	if id, ok := c.Get(echoRequestIDKey).(string); ok && id != "" {
		return id
	}

	return uuid.New().String()
}

func SetRequestID(c echo.Context, requestID string) {
	c.Set(echoRequestIDKey, requestID)
}

// GetRequestIDFromContext returns "" when ctx carries no request ID.
func GetRequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)

	return id
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// GetSessionIDFromContext returns "" outside of an explorer session.
func GetSessionIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(sessionIDKey).(string)

	return id
}

// WithSession scopes ctx to an explorer session: the session ID is stored and
// the logger of ctx (or base) gains a session_id attribute.
func WithSession(ctx context.Context, sessionID string, base *slog.Logger) context.Context {
	if GetSessionIDFromContext(ctx) == sessionID {
		return ctx
	}

	logger := GetLoggerOrDefault(ctx, base).With(slog.String("session_id", sessionID))
	ctx = context.WithValue(ctx, sessionIDKey, sessionID)

	return WithLogger(ctx, logger)
}

// GetLogger returns nil when ctx carries no logger.
func GetLogger(ctx context.Context) *slog.Logger {
	logger, _ := ctx.Value(loggerKey).(*slog.Logger)

	return logger
}

func GetLoggerOrDefault(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if logger := GetLogger(ctx); logger != nil {
		return logger
	}

	return fallback
}

func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}
