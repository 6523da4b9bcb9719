package http

import (
	"github.com/gin-gonic/gin"

	"github.com/AutoForge-Systems/pbl-scheduler-student/internal/auth"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware gin.HandlerFunc) {
	group := g.Group("/bookings")
	group.Use(authMiddleware)

	student := group.Group("/student", auth.RequireRole(auth.RoleStudent))
	{
		student.GET("", h.ListMine)
		student.POST("", h.Create)
		student.POST("/:id/cancel", h.CancelByStudent)
	}

	faculty := group.Group("/faculty", auth.RequireRole(auth.RoleFaculty))
	{
		faculty.GET("", h.ListForFaculty)
		faculty.POST("/:id/cancel", h.CancelByFaculty)
		faculty.POST("/:id/absent", h.MarkAbsent)
		faculty.POST("/:id/complete", h.Complete)
	}
}
