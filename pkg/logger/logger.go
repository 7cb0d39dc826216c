package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// Logger wraps slog.Logger with additional functionality
type Logger struct {
	*slog.Logger
}

// New creates a new logger instance
func New() *Logger {
	level := getLogLevel(os.Getenv("LOG_LEVEL"))

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	// Text handler for development, JSON for production
	var handler slog.Handler
	if gin.Mode() == gin.DebugMode {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return &Logger{
		Logger: slog.New(handler),
	}
}

// getLogLevel converts string to slog.Level
func getLogLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithRequestID adds request ID to logger context
func (l *Logger) WithRequestID(requestID string) *Logger {
	return &Logger{
		Logger: l.Logger.With(slog.String("request_id", requestID)),
	}
}

// WithUserID adds user ID to logger context
func (l *Logger) WithUserID(userID string) *Logger {
	return &Logger{
		Logger: l.Logger.With(slog.String("user_id", userID)),
	}
}

// WithError adds error to logger context
func (l *Logger) WithError(err error) *Logger {
	return &Logger{
		Logger: l.Logger.With(slog.String("error", err.Error())),
	}
}

// LogHTTPRequest logs an HTTP request
func (l *Logger) LogHTTPRequest(c *gin.Context, duration time.Duration) {
	l.Logger.InfoContext(c.Request.Context(),
		"HTTP Request",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.String("query", c.Request.URL.RawQuery),
		slog.Int("status", c.Writer.Status()),
		slog.Duration("duration", duration),
		slog.String("ip", c.ClientIP()),
		slog.String("user_agent", c.Request.UserAgent()),
		slog.Int("size", c.Writer.Size()),
	)
}

// LogHTTPError logs an HTTP error
func (l *Logger) LogHTTPError(c *gin.Context, err error, statusCode int) {
	l.Logger.ErrorContext(c.Request.Context(),
		"HTTP Error",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.Int("status", statusCode),
		slog.String("error", err.Error()),
		slog.String("ip", c.ClientIP()),
	)
}

// LogEventCreated logs when an organiser creates an event
func (l *Logger) LogEventCreated(ctx context.Context, eventID, ownerID string) {
	l.Logger.InfoContext(ctx,
		"Event Created",
		slog.String("event_id", eventID),
		slog.String("owner_id", ownerID),
	)
}

// LogEventCancelled logs when an organiser cancels an event
func (l *Logger) LogEventCancelled(ctx context.Context, eventID, ownerID string) {
	l.Logger.InfoContext(ctx,
		"Event Cancelled",
		slog.String("event_id", eventID),
		slog.String("owner_id", ownerID),
	)
}

// LogStatusSync logs a status synchronizer pass that changed rows
func (l *Logger) LogStatusSync(ctx context.Context, changed int, at time.Time) {
	l.Logger.DebugContext(ctx,
		"Event Status Sync",
		slog.Int("changed", changed),
		slog.Time("now", at),
	)
}

// LogBookingCreated logs when a booking is committed
func (l *Logger) LogBookingCreated(ctx context.Context, orderID, eventID, userID string) {
	l.Logger.InfoContext(ctx,
		"Booking Created",
		slog.String("order_id", orderID),
		slog.String("event_id", eventID),
		slog.String("user_id", userID),
	)
}

// LogBookingRejected logs a rejected booking attempt with its reason
func (l *Logger) LogBookingRejected(ctx context.Context, eventID, userID, reason string) {
	l.Logger.InfoContext(ctx,
		"Booking Rejected",
		slog.String("event_id", eventID),
		slog.String("user_id", userID),
		slog.String("reason", reason),
	)
}

// LogAuthSuccess logs successful authentication
func (l *Logger) LogAuthSuccess(ctx context.Context, userID, method string) {
	l.Logger.InfoContext(ctx,
		"Authentication Success",
		slog.String("user_id", userID),
		slog.String("method", method),
	)
}

// LogAuthFailure logs failed authentication
func (l *Logger) LogAuthFailure(ctx context.Context, email, reason string) {
	l.Logger.WarnContext(ctx,
		"Authentication Failure",
		slog.String("email", email),
		slog.String("reason", reason),
	)
}

// Global logger instance (can be replaced with dependency injection)
var defaultLogger = New()

// GetDefault returns the default logger instance
func GetDefault() *Logger {
	return defaultLogger
}

// SetDefault sets the default logger instance
func SetDefault(logger *Logger) {
	defaultLogger = logger
}
