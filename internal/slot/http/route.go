package http

import (
	"github.com/gin-gonic/gin"

	"github.com/AutoForge-Systems/pbl-scheduler-student/internal/auth"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware gin.HandlerFunc) {
	group := g.Group("/slots")
	group.Use(authMiddleware, auth.RequireRole(auth.RoleFaculty))
	{
		group.GET("/faculty", h.ListMine)
		group.POST("/faculty", h.Create)
		group.POST("/faculty/bulk-create", h.BulkCreate)
		group.PATCH("/faculty/:id/availability", h.SetAvailability)
		group.DELETE("/faculty/:id", h.Delete)
		group.DELETE("/faculty/today", h.DeleteToday)
	}
}
