package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/webforge-app/webforge-backend/internal/auth"
	"github.com/webforge-app/webforge-backend/internal/logging"
)

// SessionMiddleware resolves the caller through gate and stores the principal
// on both the gin context and the request context.
// Anonymous requests pass through; invalid credentials are rejected with 401.
func SessionMiddleware(gate auth.SessionGate, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		p, err := gate.Authenticate(ctx, c.Request)
		if err != nil {
			logging.FromContext(ctx, logger).Info("session rejected", zap.Error(err))
			msg := "invalid credentials"
			if !errors.Is(err, auth.ErrInvalidCredentials) {
				msg = "authentication failed"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": msg})
			return
		}

		c.Set(auth.CtxPrincipal, p)
		c.Request = c.Request.WithContext(auth.WithPrincipal(ctx, p))
		c.Next()
	}
}
