package booking

import (
	"net/http"
	"time"

	"github.com/AutoForge-Systems/pbl-scheduler-student/internal/pkg/apperror"
)

var (
	ErrNotFound           = apperror.New(http.StatusNotFound, "booking not found")
	ErrSlotUnavailable    = apperror.New(http.StatusBadRequest, "this slot is not available")
	ErrSlotAlreadyBooked  = apperror.New(http.StatusConflict, "this slot is already booked")
	ErrDuplicateSubject   = apperror.New(http.StatusConflict, "you already have a booking for this subject")
	ErrStudentBlocked     = apperror.New(http.StatusForbidden, "booking is blocked because you were marked absent; your faculty must allow rebooking first")
	ErrAlreadyCancelled   = apperror.New(http.StatusConflict, "booking is already cancelled")
	ErrNotConfirmed       = apperror.New(http.StatusBadRequest, "only confirmed bookings can be changed")
	ErrCancellationWindow = apperror.New(http.StatusBadRequest, "cancellation is not allowed this close to the scheduled slot")
	ErrRebookCooldown     = apperror.New(http.StatusConflict, "rebooking this subject is not allowed yet after a cancellation")
	ErrNotStarted         = apperror.New(http.StatusBadRequest, "slot has not started yet")
	ErrPermissionDenied   = apperror.New(http.StatusForbidden, "permission denied")
)

type Status string

const (
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
	StatusAbsent    Status = "absent"
)

// Booking is a student's claim on a slot. Slot fields are denormalized into
// the struct by the list/get queries so callers get one row per booking.
type Booking struct {
	ID                 string
	SlotID             string
	StudentID          string
	Status             Status
	CancelledAt        *time.Time
	CancellationReason string
	AbsentAt           *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time

	// Joined slot data
	Subject       string
	SlotStartTime time.Time
	SlotEndTime   time.Time
	FacultyID     string
}

// IsConfirmed reports whether the booking currently holds its slot.
func (b *Booking) IsConfirmed() bool {
	return b.Status == StatusConfirmed
}
