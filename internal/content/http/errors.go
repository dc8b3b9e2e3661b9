package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/webforge-app/webforge-backend/internal/content/domain"
	"github.com/webforge-app/webforge-backend/internal/logging"
)

// writeError maps service errors onto status codes and the error envelope.
// Store failures are the one case where the body does not carry the
// underlying message: clients get "store unavailable: <op>" and the driver
// error goes to the log with the request id.
func (h *Handler) writeError(c *gin.Context, err error) {
	status, msg := http.StatusInternalServerError, "internal error"

	var ve *domain.ValidationError
	var se *domain.StoreError
	switch {
	case errors.As(err, &ve):
		status, msg = http.StatusBadRequest, ve.Error()
	case errors.Is(err, domain.ErrAuthenticationRequired):
		status, msg = http.StatusUnauthorized, "authentication required"
	case errors.Is(err, domain.ErrForbidden):
		status, msg = http.StatusForbidden, "forbidden"
	case errors.Is(err, domain.ErrNotFound):
		status, msg = http.StatusNotFound, "not found"
	case errors.Is(err, domain.ErrConflict):
		status, msg = http.StatusConflict, "version conflict"
	case errors.As(err, &se):
		msg = "store unavailable: " + se.Op
	}

	if status == http.StatusInternalServerError {
		logging.FromContext(c.Request.Context(), h.logger).Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
	}
	c.JSON(status, gin.H{"success": false, "error": msg})
}

func badBody(c *gin.Context) {
	c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid body"})
}
