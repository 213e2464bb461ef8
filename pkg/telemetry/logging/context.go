package logging

import (
	"context"
	"log/slog"
)

// Context keys for common log fields.
type contextKey string

const (
	// RequestIDKey is the context key for request IDs.
	RequestIDKey contextKey = "request_id"

	// PolicyKey is the context key for the policy a request addresses.
	PolicyKey contextKey = "policy"

	// DatasourceKey is the context key for the data source a request
	// addresses.
	DatasourceKey contextKey = "datasource"

	// ScanIDKey is the context key for violation scan identifiers.
	ScanIDKey contextKey = "scan_id"
)

var contextKeys = []contextKey{RequestIDKey, PolicyKey, DatasourceKey, ScanIDKey}

// WithRequestID adds a request ID to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetRequestID retrieves the request ID from the context.
func GetRequestID(ctx context.Context) string {
	return getString(ctx, RequestIDKey)
}

// WithPolicy adds a policy name to the context.
func WithPolicy(ctx context.Context, policy string) context.Context {
	return context.WithValue(ctx, PolicyKey, policy)
}

// GetPolicy retrieves the policy name from the context.
func GetPolicy(ctx context.Context) string {
	return getString(ctx, PolicyKey)
}

// WithDatasource adds a data source identifier to the context.
func WithDatasource(ctx context.Context, datasource string) context.Context {
	return context.WithValue(ctx, DatasourceKey, datasource)
}

// GetDatasource retrieves the data source identifier from the context.
func GetDatasource(ctx context.Context) string {
	return getString(ctx, DatasourceKey)
}

// WithScanID adds a violation scan identifier to the context.
func WithScanID(ctx context.Context, scanID string) context.Context {
	return context.WithValue(ctx, ScanIDKey, scanID)
}

// GetScanID retrieves the violation scan identifier from the context.
func GetScanID(ctx context.Context) string {
	return getString(ctx, ScanIDKey)
}

func getString(ctx context.Context, key contextKey) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}

// contextAttrs extracts the context fields that are set.
func contextAttrs(ctx context.Context) []slog.Attr {
	var attrs []slog.Attr
	for _, key := range contextKeys {
		if v := getString(ctx, key); v != "" {
			attrs = append(attrs, slog.String(string(key), v))
		}
	}
	return attrs
}
