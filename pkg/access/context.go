package access

import "context"

// ContextKey is the context key for the caller's role.
var ContextKey = &struct{ string }{"role"}

// FromContext returns the caller's role from the context.
func FromContext(ctx context.Context) Role {
	if r, ok := ctx.Value(ContextKey).(Role); ok {
		return r
	}

	return -1
}

// WithContext returns a new context with the caller's role.
func WithContext(ctx context.Context, r Role) context.Context {
	return context.WithValue(ctx, ContextKey, r)
}
