package http

import (
	"github.com/gin-gonic/gin"

	"github.com/AutoForge-Systems/pbl-scheduler-student/internal/auth"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware gin.HandlerFunc) {
	group := g.Group("/absences")
	group.Use(authMiddleware, auth.RequireRole(auth.RoleFaculty))
	{
		group.GET("", h.List)
		group.POST("", h.Create)
		group.DELETE("/:id", h.Delete)
	}
}
