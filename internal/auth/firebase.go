package auth

import (
	"context"
	"fmt"
	"net/http"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

// InitializeFirebase initializes the Firebase Admin SDK and returns an Auth client
func InitializeFirebase(ctx context.Context, credentialsPath string) (*fbauth.Client, error) {
	if credentialsPath == "" {
		return nil, fmt.Errorf("FIREBASE_CREDENTIALS_PATH is required")
	}

	opt := option.WithCredentialsFile(credentialsPath)
	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get Auth client: %w", err)
	}

	return authClient, nil
}

// IDTokenVerifier is the part of *fbauth.Client the gate needs.
type IDTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
}

// FirebaseGate verifies Firebase ID tokens sent as bearer tokens.
type FirebaseGate struct {
	verifier IDTokenVerifier
}

func NewFirebaseGate(verifier IDTokenVerifier) *FirebaseGate {
	return &FirebaseGate{verifier: verifier}
}

func (g *FirebaseGate) Authenticate(ctx context.Context, r *http.Request) (Principal, error) {
	token, present := bearerToken(r)
	if !present {
		return Principal{}, nil
	}
	if token == "" {
		return Principal{}, ErrInvalidCredentials
	}

	decoded, err := g.verifier.VerifyIDToken(ctx, token)
	if err != nil {
		return Principal{}, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}

	p := Principal{ID: decoded.UID}
	if email, ok := decoded.Claims["email"].(string); ok {
		p.Email = email
	}
	if admin, ok := decoded.Claims["admin"].(bool); ok {
		p.Admin = admin
	}
	if !p.IsAuthenticated() {
		return Principal{}, ErrInvalidCredentials
	}
	return p, nil
}
