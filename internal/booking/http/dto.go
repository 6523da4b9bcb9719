package http

import (
	"time"

	"github.com/AutoForge-Systems/pbl-scheduler-student/internal/booking"
)

type CreateBookingRequest struct {
	SlotID string `json:"slot_id" binding:"required,uuid"`
}

type CancelBookingRequest struct {
	Reason string `json:"reason"`
}

type MarkAbsentRequest struct {
	Detail string `json:"detail"`
}

type BookingResponse struct {
	ID                 string     `json:"id"`
	SlotID             string     `json:"slot_id"`
	StudentID          string     `json:"student_id"`
	FacultyID          string     `json:"faculty_id"`
	Subject            string     `json:"subject"`
	StartTime          time.Time  `json:"start_time"`
	EndTime            time.Time  `json:"end_time"`
	Status             string     `json:"status"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`
	CancellationReason string     `json:"cancellation_reason,omitempty"`
	AbsentAt           *time.Time `json:"absent_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

func NewBookingResponse(b *booking.Booking) BookingResponse {
	return BookingResponse{
		ID:                 b.ID,
		SlotID:             b.SlotID,
		StudentID:          b.StudentID,
		FacultyID:          b.FacultyID,
		Subject:            b.Subject,
		StartTime:          b.SlotStartTime,
		EndTime:            b.SlotEndTime,
		Status:             string(b.Status),
		CancelledAt:        b.CancelledAt,
		CancellationReason: b.CancellationReason,
		AbsentAt:           b.AbsentAt,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
	}
}

func NewBookingResponses(bookings []*booking.Booking) []BookingResponse {
	items := make([]BookingResponse, len(bookings))
	for i, b := range bookings {
		items[i] = NewBookingResponse(b)
	}
	return items
}
