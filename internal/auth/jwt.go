package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// Claims is the JWT payload accepted by JWTGate.
type Claims struct {
	UserID string `json:"userID,omitempty"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// JWTGate verifies HS256 bearer tokens signed with a shared secret.
type JWTGate struct {
	secret []byte
	now    func() time.Time
}

func NewJWTGate(secret string) *JWTGate {
	return &JWTGate{secret: []byte(secret), now: time.Now}
}

func (g *JWTGate) Authenticate(_ context.Context, r *http.Request) (Principal, error) {
	raw, present := bearerToken(r)
	if !present {
		return Principal{}, nil
	}
	if raw == "" {
		return Principal{}, ErrInvalidCredentials
	}

	claims := &Claims{}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := parser.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return g.secret, nil
	})
	if err != nil {
		return Principal{}, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}
	if !token.Valid {
		return Principal{}, ErrInvalidCredentials
	}
	// exp is optional in jwt/v4; require it here.
	if !claims.VerifyExpiresAt(g.now(), true) {
		return Principal{}, fmt.Errorf("%w: missing or expired exp", ErrInvalidCredentials)
	}

	id := claims.Subject
	if id == "" {
		id = claims.UserID
	}
	p := Principal{ID: id, Email: claims.Email, Admin: claims.Role == "admin"}
	if !p.IsAuthenticated() {
		return Principal{}, ErrInvalidCredentials
	}
	return p, nil
}

// IssueToken signs a token for p that expires after ttl.
func (g *JWTGate) IssueToken(p Principal, ttl time.Duration) (string, error) {
	if !p.IsAuthenticated() {
		return "", errors.New("cannot issue token for anonymous principal")
	}
	now := g.now()
	claims := Claims{
		UserID: p.ID,
		Email:  p.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	if p.Admin {
		claims.Role = "admin"
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(g.secret)
}
