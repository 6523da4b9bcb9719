package http

import (
	"github.com/gin-gonic/gin"

	"github.com/AutoForge-Systems/pbl-scheduler-student/internal/auth"
)

// RegisterRoutes wires the student-facing browse endpoint and the
// shared-secret summary feed.
func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, secretMiddleware gin.HandlerFunc) {
	group := g.Group("/slots")

	group.GET("/available", authMiddleware, auth.RequireRole(auth.RoleStudent), h.AvailableSlots)
	group.GET("/availability-summary", secretMiddleware, h.Summary)
}
