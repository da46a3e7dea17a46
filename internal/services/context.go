package services

import "context"

type contextKey string

const (
	clientIDKey  contextKey = "client_id"
	sessionIDKey contextKey = "session_id"
	flowIDKey    contextKey = "flow_id"
	stageKey     contextKey = "stage"
	requestIDKey contextKey = "request_id"
)

// WithClientID annotates context with the client the work belongs to.
func WithClientID(ctx context.Context, id string) context.Context {
	return withString(ctx, clientIDKey, id)
}

// ClientIDFromContext extracts the client identifier if present.
func ClientIDFromContext(ctx context.Context) (string, bool) {
	return stringFrom(ctx, clientIDKey)
}

// WithSessionID annotates context with a session identifier.
func WithSessionID(ctx context.Context, id string) context.Context {
	return withString(ctx, sessionIDKey, id)
}

// SessionIDFromContext extracts the session identifier if present.
func SessionIDFromContext(ctx context.Context) (string, bool) {
	return stringFrom(ctx, sessionIDKey)
}

// WithFlowID annotates context with the ingestion flow identifier.
func WithFlowID(ctx context.Context, id string) context.Context {
	return withString(ctx, flowIDKey, id)
}

// FlowIDFromContext extracts the ingestion flow identifier if present.
func FlowIDFromContext(ctx context.Context) (string, bool) {
	return stringFrom(ctx, flowIDKey)
}

// WithStage annotates context with the pipeline stage name.
func WithStage(ctx context.Context, stage string) context.Context {
	return withString(ctx, stageKey, stage)
}

// StageFromContext returns the stage name if present.
func StageFromContext(ctx context.Context) (string, bool) {
	return stringFrom(ctx, stageKey)
}

// WithRequestID annotates context with a correlation identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	return withString(ctx, requestIDKey, id)
}

// RequestIDFromContext extracts the correlation identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	return stringFrom(ctx, requestIDKey)
}

func withString(ctx context.Context, key contextKey, value string) context.Context {
	if value == "" {
		return ctx
	}
	return context.WithValue(ctx, key, value)
}

func stringFrom(ctx context.Context, key contextKey) (string, bool) {
	if ctx == nil {
		return "", false
	}
	if v, ok := ctx.Value(key).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
