package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AutoForge-Systems/pbl-scheduler-student/internal/auth"
	"github.com/AutoForge-Systems/pbl-scheduler-student/internal/availability"
	"github.com/AutoForge-Systems/pbl-scheduler-student/internal/pkg/response"
)

type Handler struct {
	service availability.Service
}

func NewHandler(service availability.Service) *Handler {
	return &Handler{service: service}
}

// Summary serves the per-subject availability feed consumed by the PBL site.
func (h *Handler) Summary(c *gin.Context) {
	summary, err := h.service.Summary(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewSummaryResponse(summary))
}

func (h *Handler) AvailableSlots(c *gin.Context) {
	var date *time.Time
	if v := c.Query("date"); v != "" {
		day, err := time.ParseInLocation("2006-01-02", v, time.Local)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, expected YYYY-MM-DD"})
			return
		}
		date = &day
	}

	view, err := h.service.AvailableSlots(c.Request.Context(), auth.GetUserID(c), date)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewStudentViewResponse(view))
}
