package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
)

// ErrInvalidCredentials is returned by a SessionGate when credentials are
// present but malformed, expired or not verifiable.
var ErrInvalidCredentials = errors.New("invalid credentials")

// CtxPrincipal is the gin context key holding the resolved Principal.
const CtxPrincipal = "principal"

// Principal is the authenticated identity behind a request.
// The zero value is an anonymous caller.
type Principal struct {
	ID    string
	Email string
	Admin bool
}

// IsAuthenticated reports whether p carries a non-blank id.
func (p Principal) IsAuthenticated() bool {
	return strings.TrimSpace(p.ID) != ""
}

type principalKey struct{}

// WithPrincipal stores p on ctx.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the principal stored by WithPrincipal, or the zero Principal.
func PrincipalFromContext(ctx context.Context) Principal {
	p, _ := ctx.Value(principalKey{}).(Principal)
	return p
}

// CurrentPrincipal extracts the principal resolved by SessionMiddleware.
func CurrentPrincipal(c *gin.Context) Principal {
	if v, ok := c.Get(CtxPrincipal); ok {
		if p, ok := v.(Principal); ok {
			return p
		}
	}
	return PrincipalFromContext(c.Request.Context())
}
