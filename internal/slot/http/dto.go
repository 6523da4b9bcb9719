package http

import (
	"time"

	"github.com/AutoForge-Systems/pbl-scheduler-student/internal/slot"
)

type CreateSlotRequest struct {
	Subject   string    `json:"subject"`
	StartTime time.Time `json:"start_time" binding:"required"`
	EndTime   time.Time `json:"end_time" binding:"required"`
}

// Validate performs custom validation for CreateSlotRequest.
func (r *CreateSlotRequest) Validate() error {
	if !r.EndTime.After(r.StartTime) {
		return slot.ErrInvalidTimeRange
	}
	return nil
}

type BulkCreateSlotsRequest struct {
	Subject       string    `json:"subject"`
	StartTime     time.Time `json:"start_time" binding:"required"`
	EndTime       time.Time `json:"end_time" binding:"required"`
	SlotDuration  int       `json:"slot_duration" binding:"required,oneof=5 10 15"`
	BreakDuration int       `json:"break_duration" binding:"oneof=0 5 10 15"`
}

// Validate performs custom validation for BulkCreateSlotsRequest.
func (r *BulkCreateSlotsRequest) Validate() error {
	if !r.EndTime.After(r.StartTime) {
		return slot.ErrInvalidTimeRange
	}
	return nil
}

type SetAvailabilityRequest struct {
	IsAvailable *bool `json:"is_available" binding:"required"`
}

type SlotResponse struct {
	ID          string    `json:"id"`
	FacultyID   string    `json:"faculty_id"`
	Subject     string    `json:"subject"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	Capacity    int       `json:"capacity"`
	IsAvailable bool      `json:"is_available"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func NewSlotResponse(s *slot.Slot) SlotResponse {
	return SlotResponse{
		ID:          s.ID,
		FacultyID:   s.FacultyID,
		Subject:     s.Subject,
		StartTime:   s.StartTime,
		EndTime:     s.EndTime,
		Capacity:    s.Capacity,
		IsAvailable: s.IsAvailable,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

func NewSlotResponses(slots []*slot.Slot) []SlotResponse {
	items := make([]SlotResponse, len(slots))
	for i, s := range slots {
		items[i] = NewSlotResponse(s)
	}
	return items
}

type DeleteTodayResponse struct {
	Deleted int64 `json:"deleted"`
	Skipped int64 `json:"skipped"`
}
