// Package shared holds small cross-context domain primitives.
package shared

import "context"

type secureAreaKey struct{}

// WithSecureArea returns a context carrying the authorization-bypass
// capability used during scheduled erasure runs. Data processors honor it to
// delete customer-facing records that would otherwise be protected by
// customer-session authorization checks. The capability is scoped to the
// derived context and disappears with it; it is never a process-wide flag.
func WithSecureArea(ctx context.Context) context.Context {
	return context.WithValue(ctx, secureAreaKey{}, true)
}

// IsSecureArea reports whether the context carries the authorization-bypass
// capability.
func IsSecureArea(ctx context.Context) bool {
	v, ok := ctx.Value(secureAreaKey{}).(bool)
	return ok && v
}
