package auth

import (
	"context"

	"github.com/gin-gonic/gin"
)

// Principal identifies the account behind a request.
type Principal struct {
	UserID    uint
	Username  string
	Superuser bool
}

type principalKey struct{}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// FromContext returns the principal stored in ctx, if any.
func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// Current returns the principal of the request being handled.
func Current(c *gin.Context) (Principal, bool) {
	return FromContext(c.Request.Context())
}
