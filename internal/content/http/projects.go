package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/webforge-app/webforge-backend/internal/auth"
	"github.com/webforge-app/webforge-backend/internal/content/domain"
	"github.com/webforge-app/webforge-backend/internal/content/query"
)

func (h *Handler) listProjects(c *gin.Context) {
	var f query.ProjectFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		badBody(c)
		return
	}

	items, err := h.svc.ListProjects(c.Request.Context(), f)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": items})
}

func (h *Handler) getProject(c *gin.Context) {
	p, err := h.svc.GetProject(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": p})
}

func (h *Handler) createProject(c *gin.Context) {
	var req domain.ProjectInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c)
		return
	}

	p, err := h.svc.CreateProject(c.Request.Context(), auth.CurrentPrincipal(c), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": p})
}

func (h *Handler) updateProject(c *gin.Context) {
	var req updateProjectReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c)
		return
	}

	p, err := h.svc.UpdateProject(c.Request.Context(), auth.CurrentPrincipal(c), req.ID, req.ProjectPatch)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": p})
}

func (h *Handler) deleteProject(c *gin.Context) {
	var req deleteProjectReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c)
		return
	}

	if err := h.svc.DeleteProject(c.Request.Context(), auth.CurrentPrincipal(c), req.ID); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
