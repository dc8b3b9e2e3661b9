package http

import (
	"go.uber.org/zap"

	"github.com/webforge-app/webforge-backend/internal/content/domain"
	"github.com/webforge-app/webforge-backend/internal/content/service"
)

// Handler bundles the dependencies for project and template endpoints.
type Handler struct {
	svc    *service.ContentService
	logger *zap.Logger
}

func New(svc *service.ContentService, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, logger: logger}
}

type updateProjectReq struct {
	ID string `json:"_id"`
	domain.ProjectPatch
}

type deleteProjectReq struct {
	ID string `json:"_id"`
}
