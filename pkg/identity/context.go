// Package identity carries the caller's identity through request context.
// The engine never authenticates; it only reads the identity an upstream
// collaborator established.
package identity

import "context"

// ctxKey is an unexported type used as the context key for Caller.
type ctxKey struct{}

// Caller identifies the user performing a request.
type Caller struct {
	UserID string
	Name   string
	Groups []string
}

// WithCaller returns a new context with the given Caller attached.
func WithCaller(ctx context.Context, c Caller) context.Context {
	return context.WithValue(ctx, ctxKey{}, c)
}

// CallerFromContext retrieves the Caller from the context.
// Returns the zero value and false if no caller is set.
func CallerFromContext(ctx context.Context) (Caller, bool) {
	c, ok := ctx.Value(ctxKey{}).(Caller)
	return c, ok
}

// UserIDFromContext is a convenience that returns the caller's user id, or
// "system" when no caller is set (internal/CLI invocations).
func UserIDFromContext(ctx context.Context) string {
	c, ok := CallerFromContext(ctx)
	if !ok || c.UserID == "" {
		return "system"
	}
	return c.UserID
}
