package logging

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"time"
)

type contextKey string

const (
	loggerKey  contextKey = "logger"
	traceIDKey contextKey = "trace_id"
)

// GenerateTraceID generates a new trace ID.
func GenerateTraceID() string {
	b := make([]byte, 16)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// FromContext retrieves the logger from context.
func FromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(loggerKey).(*Logger); ok {
		return l
	}
	return Default()
}

// NewContext creates a new context with the logger.
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// WithTraceContext adds a trace ID to the context and returns a logger with it.
func WithTraceContext(ctx context.Context) (context.Context, *Logger) {
	traceID := GenerateTraceID()
	l := Default().WithTraceID(traceID)
	newCtx := context.WithValue(ctx, traceIDKey, traceID)
	newCtx = context.WithValue(newCtx, loggerKey, l)
	return newCtx, l
}

// RunContext creates a logger context for one orchestrator invocation.
func RunContext(runID, minerType string, seriesCount int) *Logger {
	return Default().WithFields(map[string]interface{}{
		"run_id":       runID,
		"miner_type":   minerType,
		"series_count": seriesCount,
	}).WithComponent("run")
}

// MinerContext creates a logger context for a single miner pass.
func MinerContext(minerType string, patternLength, exitAfter int) *Logger {
	return Default().WithFields(map[string]interface{}{
		"miner_type":     minerType,
		"pattern_length": patternLength,
		"exit_after":     exitAfter,
	}).WithComponent("miner")
}

// QuotesContext creates a logger context for series loading.
func QuotesContext(path, ticker string, bars int) *Logger {
	return Default().WithFields(map[string]interface{}{
		"path":   path,
		"ticker": ticker,
		"bars":   bars,
	}).WithComponent("quotes")
}

// ReportContext creates a logger context for report emission.
func ReportContext(sinkType, destination string, elements int) *Logger {
	return Default().WithFields(map[string]interface{}{
		"sink_type":   sinkType,
		"destination": destination,
		"elements":    elements,
	}).WithComponent("report")
}

// APIContext creates a logger context for API operations.
func APIContext(method, path string, statusCode int) *Logger {
	return Default().WithFields(map[string]interface{}{
		"method":      method,
		"path":        path,
		"status_code": statusCode,
	}).WithComponent("api")
}

// WebSocketContext creates a logger context for WebSocket operations.
func WebSocketContext(runID, stream string) *Logger {
	return Default().WithFields(map[string]interface{}{
		"run_id": runID,
		"stream": stream,
	}).WithComponent("websocket")
}

// HTTPMiddleware is a middleware that adds logging to HTTP requests.
func HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		traceID := r.Header.Get("X-Trace-ID")
		if traceID == "" {
			traceID = GenerateTraceID()
		}

		l := Default().WithTraceID(traceID).WithFields(map[string]interface{}{
			"method":      r.Method,
			"path":        r.URL.Path,
			"remote_addr": r.RemoteAddr,
			"user_agent":  r.UserAgent(),
		}).WithComponent("http")

		ctx := NewContext(r.Context(), l)
		r = r.WithContext(ctx)

		wrapped := &responseWriter{ResponseWriter: w, statusCode: 200}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start)
		l.WithDuration(duration).WithField("status_code", wrapped.statusCode).Info("Request completed")
	})
}

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// DatabaseContext creates a logger context for database operations.
func DatabaseContext(operation, table string) *Logger {
	return Default().WithFields(map[string]interface{}{
		"operation": operation,
		"table":     table,
	}).WithComponent("database")
}

// CacheContext creates a logger context for cache operations.
func CacheContext(operation, key string) *Logger {
	return Default().WithFields(map[string]interface{}{
		"operation": operation,
		"key":       key,
	}).WithComponent("cache")
}
