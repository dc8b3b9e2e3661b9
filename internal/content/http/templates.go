package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/webforge-app/webforge-backend/internal/auth"
	"github.com/webforge-app/webforge-backend/internal/content/domain"
	"github.com/webforge-app/webforge-backend/internal/content/query"
)

func (h *Handler) listTemplates(c *gin.Context) {
	var f query.TemplateFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		badBody(c)
		return
	}

	items, err := h.svc.ListTemplates(c.Request.Context(), f)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "templates": items})
}

func (h *Handler) getTemplate(c *gin.Context) {
	t, err := h.svc.GetTemplate(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "template": t})
}

func (h *Handler) createTemplate(c *gin.Context) {
	var req domain.TemplateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c)
		return
	}

	t, err := h.svc.CreateTemplate(c.Request.Context(), auth.CurrentPrincipal(c), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "template": t})
}
