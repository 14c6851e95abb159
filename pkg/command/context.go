package command

import "context"

// contextKey is a private type for context keys to avoid collisions.
type contextKey string

const (
	correlationIDKey contextKey = "correlation_id"
	principalIDKey   contextKey = "principal_id"
	commandNameKey   contextKey = "command_name"
)

// WithCorrelationID returns a context carrying the correlation ID picked up
// by every run started under it.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey, id)
}

// CorrelationIDFromContext retrieves the correlation ID, if any.
func CorrelationIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(correlationIDKey).(string)
	return id, ok && id != ""
}

// WithPrincipalID returns a context carrying the identity on whose behalf
// commands run.
func WithPrincipalID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, principalIDKey, id)
}

// PrincipalIDFromContext retrieves the principal ID, if any.
func PrincipalIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(principalIDKey).(string)
	return id, ok && id != ""
}

// WithCommandName returns a context carrying the name of the command being
// dispatched. The registry stamps it before the middleware chain runs.
func WithCommandName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, commandNameKey, name)
}

// CommandNameFromContext retrieves the dispatched command name, if any.
func CommandNameFromContext(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(commandNameKey).(string)
	return name, ok && name != ""
}
