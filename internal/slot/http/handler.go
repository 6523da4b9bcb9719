package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/AutoForge-Systems/pbl-scheduler-student/internal/auth"
	"github.com/AutoForge-Systems/pbl-scheduler-student/internal/pkg/response"
	"github.com/AutoForge-Systems/pbl-scheduler-student/internal/slot"
)

type Handler struct {
	service slot.Service
}

func NewHandler(service slot.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Create(c *gin.Context) {
	var body CreateSlotRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}
	if err := body.Validate(); err != nil {
		response.Error(c, err)
		return
	}

	sl, err := h.service.Create(c.Request.Context(), slot.CreateRequest{
		FacultyID: auth.GetUserID(c),
		Subject:   body.Subject,
		StartTime: body.StartTime,
		EndTime:   body.EndTime,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewSlotResponse(sl))
}

func (h *Handler) BulkCreate(c *gin.Context) {
	var body BulkCreateSlotsRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}
	if err := body.Validate(); err != nil {
		response.Error(c, err)
		return
	}

	slots, err := h.service.BulkCreate(c.Request.Context(), slot.BulkCreateRequest{
		FacultyID:     auth.GetUserID(c),
		Subject:       body.Subject,
		StartTime:     body.StartTime,
		EndTime:       body.EndTime,
		SlotDuration:  body.SlotDuration,
		BreakDuration: body.BreakDuration,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.NewListResponse(NewSlotResponses(slots)))
}

func (h *Handler) ListMine(c *gin.Context) {
	var f slot.FacultyFilter
	if v := c.Query("date"); v != "" {
		day, err := time.ParseInLocation("2006-01-02", v, time.Local)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, expected YYYY-MM-DD"})
			return
		}
		f.Date = &day
	}
	f.FutureOnly = c.Query("future_only") == "true"

	slots, err := h.service.ListByFaculty(c.Request.Context(), auth.GetUserID(c), f)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, response.NewListResponse(NewSlotResponses(slots)))
}

func (h *Handler) SetAvailability(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	var body SetAvailabilityRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	sl, err := h.service.SetAvailability(c.Request.Context(), auth.GetUserID(c), id, *body.IsAvailable)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewSlotResponse(sl))
}

func (h *Handler) Delete(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	if err := h.service.Delete(c.Request.Context(), auth.GetUserID(c), id); err != nil {
		response.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) DeleteToday(c *gin.Context) {
	res, err := h.service.DeleteToday(c.Request.Context(), auth.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, DeleteTodayResponse{Deleted: res.Deleted, Skipped: res.Skipped})
}
