package shared

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"io"
	"log/slog"
	"sync/atomic"
	"time"
)

// ContextKey is the type for values this package stores in a request context.
type ContextKey string

const (
	// ClientIDContextKey carries the authenticated client's ID.
	ClientIDContextKey ContextKey = "clientID"

	// TraceIDKey carries the per-request trace ID.
	TraceIDKey ContextKey = "traceID"

	// TraceIDLength is the number of random bytes in a trace ID. The
	// encoded form is twice as long (hex).
	TraceIDLength = 16
)

// SetTraceID stamps ctx with a fresh trace ID so logs and error
// responses for the same request can be correlated.
func SetTraceID(ctx context.Context) context.Context {
	return context.WithValue(ctx, TraceIDKey, newTraceID())
}

// GetTraceID returns the trace ID stored in ctx, or "" when absent.
func GetTraceID(ctx context.Context) string {
	id, _ := ctx.Value(TraceIDKey).(string)
	return id
}

// fallbackSeq disambiguates fallback trace IDs issued in the same nanosecond.
var fallbackSeq atomic.Uint64

// newTraceID returns a hex-encoded random ID. When the system entropy
// source fails it degrades to a timestamp-plus-counter ID rather than
// failing the request; the ID is for correlation, not security.
func newTraceID() string {
	b := make([]byte, TraceIDLength)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		slog.Error("failed to generate random trace ID, using time-based fallback", "error", err)
		binary.BigEndian.PutUint64(b[:8], uint64(time.Now().UnixNano()))
		binary.BigEndian.PutUint64(b[8:], fallbackSeq.Add(1))
	}
	return hex.EncodeToString(b)
}
