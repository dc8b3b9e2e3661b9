package http

import "github.com/gin-gonic/gin"

// Register attaches project and template routes to rg.
// write runs in front of every mutating route.
func (h *Handler) Register(rg *gin.RouterGroup, write ...gin.HandlerFunc) {
	mutating := func(hf gin.HandlerFunc) []gin.HandlerFunc {
		return append(write[:len(write):len(write)], hf)
	}

	projects := rg.Group("/projects")
	projects.GET("", h.listProjects)
	projects.GET("/:id", h.getProject)
	projects.POST("", mutating(h.createProject)...)
	projects.PUT("", mutating(h.updateProject)...)
	projects.DELETE("", mutating(h.deleteProject)...)

	templates := rg.Group("/templates")
	templates.GET("", h.listTemplates)
	templates.GET("/:id", h.getTemplate)
	templates.POST("", mutating(h.createTemplate)...)
}
