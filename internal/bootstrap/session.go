package bootstrap

import (
	"context"
	"fmt"

	"github.com/webforge-app/webforge-backend/config"
	"github.com/webforge-app/webforge-backend/internal/auth"
)

// NewSessionGate builds the gate selected by AUTH_MODE.
func NewSessionGate(ctx context.Context, cfg config.AuthConfig) (auth.SessionGate, error) {
	switch cfg.Mode {
	case config.AuthModeFirebase:
		client, err := auth.InitializeFirebase(ctx, cfg.FirebaseCredentialsPath)
		if err != nil {
			return nil, err
		}
		return auth.NewFirebaseGate(client), nil
	case config.AuthModeJWT:
		if cfg.JWTSecret == "" {
			return nil, fmt.Errorf("JWT_SECRET is required")
		}
		return auth.NewJWTGate(cfg.JWTSecret), nil
	case config.AuthModeHeader:
		return auth.NewHeaderGate(), nil
	default:
		return nil, fmt.Errorf("unsupported auth mode %q", cfg.Mode)
	}
}
