// Package logger provides structured logging infrastructure for the application.
// This is part of the platform layer and contains no business logic.
package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
)

// Context key types for storing values in context
type contextKey string

const (
	// RequestIDKey is the context key for request ID
	RequestIDKey contextKey = "request_id"
	// RegionKey is the context key for the region a batch operation runs against
	RegionKey contextKey = "region"
)

// Logger wraps slog.Logger for structured logging
type Logger struct {
	*slog.Logger
}

// New creates a new logger based on environment
func New(env string) *Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}

	if strings.EqualFold(env, "development") {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithContext returns a logger with context values extracted.
// Supports request_id and region from context.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if ctx == nil {
		return l
	}

	newLogger := l

	if requestID, ok := ctx.Value(RequestIDKey).(string); ok && requestID != "" {
		newLogger = newLogger.WithRequestID(requestID)
	}

	if region, ok := ctx.Value(RegionKey).(string); ok && region != "" {
		newLogger = newLogger.WithRegion(region)
	}

	return newLogger
}

// WithRequestID returns a logger with request ID
func (l *Logger) WithRequestID(requestID string) *Logger {
	return &Logger{
		Logger: l.With(slog.String("request_id", requestID)),
	}
}

// WithRegion returns a logger scoped to a region
func (l *Logger) WithRegion(region string) *Logger {
	return &Logger{
		Logger: l.With(slog.String("region", region)),
	}
}

// HTTPRequest logs an HTTP request
func (l *Logger) HTTPRequest(method, path string, status int, latencyMs float64, clientIP string) {
	l.Info("http_request",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.Float64("latency_ms", latencyMs),
		slog.String("client_ip", clientIP),
	)
}

// BoardWarn logs a recovered board schema-drift condition. These are
// expected at runtime and must never fail a batch.
func (l *Logger) BoardWarn(operation string, err error) {
	l.Warn("board_degraded",
		slog.String("operation", operation),
		slog.String("error", err.Error()),
	)
}

// BoardError logs an unrecovered board API error.
func (l *Logger) BoardError(operation string, err error) {
	l.Error("board_error",
		slog.String("operation", operation),
		slog.String("error", err.Error()),
	)
}

// LeadSkipped logs a per-record failure during an import or send batch;
// the lead name gives the operator enough context to triage.
func (l *Logger) LeadSkipped(operation, leadName string, err error) {
	l.Warn("lead_skipped",
		slog.String("operation", operation),
		slog.String("lead", leadName),
		slog.String("error", err.Error()),
	)
}

// RateLimitExceeded logs rate limit events
func (l *Logger) RateLimitExceeded(clientIP, path string) {
	l.Warn("rate_limit_exceeded",
		slog.String("client_ip", clientIP),
		slog.String("path", path),
	)
}
