package http

import (
	"time"

	"github.com/AutoForge-Systems/pbl-scheduler-student/internal/absence"
)

type CreateBlockRequest struct {
	StudentID string `json:"student_id" binding:"required"`
	Subject   string `json:"subject" binding:"required"`
	Detail    string `json:"detail"`
}

type BlockResponse struct {
	ID        string    `json:"id"`
	StudentID string    `json:"student_id"`
	Subject   string    `json:"subject"`
	Detail    string    `json:"detail"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewBlockResponse(b *absence.Block) BlockResponse {
	return BlockResponse{
		ID:        b.ID,
		StudentID: b.StudentID,
		Subject:   b.Subject,
		Detail:    b.Detail,
		CreatedBy: b.CreatedBy,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

func NewBlockResponses(blocks []*absence.Block) []BlockResponse {
	items := make([]BlockResponse, len(blocks))
	for i, b := range blocks {
		items[i] = NewBlockResponse(b)
	}
	return items
}
