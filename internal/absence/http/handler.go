package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/AutoForge-Systems/pbl-scheduler-student/internal/absence"
	"github.com/AutoForge-Systems/pbl-scheduler-student/internal/auth"
	"github.com/AutoForge-Systems/pbl-scheduler-student/internal/pkg/response"
)

type Handler struct {
	service absence.Service
}

func NewHandler(service absence.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Create(c *gin.Context) {
	var body CreateBlockRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	b, err := h.service.Create(c.Request.Context(), absence.CreateRequest{
		StudentID: body.StudentID,
		Subject:   body.Subject,
		Detail:    body.Detail,
		CreatedBy: auth.GetUserID(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewBlockResponse(b))
}

func (h *Handler) List(c *gin.Context) {
	var (
		blocks []*absence.Block
		err    error
	)
	if studentID := c.Query("student_id"); studentID != "" {
		blocks, err = h.service.ListByStudent(c.Request.Context(), studentID)
	} else {
		blocks, err = h.service.ListAll(c.Request.Context())
	}
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, response.NewListResponse(NewBlockResponses(blocks)))
}

func (h *Handler) Delete(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	if err := h.service.Lift(c.Request.Context(), auth.GetUserID(c), id); err != nil {
		response.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
