package auth

import (
	"context"
	"net/http"
	"strings"
)

// SessionGate resolves the principal behind a request.
//
// A request without credentials yields the zero Principal and a nil error;
// whether anonymity is acceptable is decided by the caller. Credentials that are
// present but cannot be verified yield ErrInvalidCredentials.
type SessionGate interface {
	Authenticate(ctx context.Context, r *http.Request) (Principal, error)
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
// present is false when no Authorization header was sent at all.
func bearerToken(r *http.Request) (token string, present bool) {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if h == "" {
		return "", false
	}
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:]), true
	}
	return "", true
}
