package auth

import (
	"context"
	"net/http"
	"strings"
)

const (
	HeaderUserID    = "X-User-Id"
	HeaderUserEmail = "X-User-Email"
	HeaderUserRole  = "X-User-Role"
)

// HeaderGate trusts identity headers set by the caller.
// Use this ONLY for development/testing; config refuses it in production.
type HeaderGate struct{}

func NewHeaderGate() HeaderGate {
	return HeaderGate{}
}

func (HeaderGate) Authenticate(_ context.Context, r *http.Request) (Principal, error) {
	uid := strings.TrimSpace(r.Header.Get(HeaderUserID))
	if uid == "" {
		return Principal{}, nil
	}
	return Principal{
		ID:    uid,
		Email: strings.TrimSpace(r.Header.Get(HeaderUserEmail)),
		Admin: strings.EqualFold(strings.TrimSpace(r.Header.Get(HeaderUserRole)), "admin"),
	}, nil
}
