package slot

import (
	"net/http"
	"time"

	"github.com/AutoForge-Systems/pbl-scheduler-student/internal/pkg/apperror"
)

var (
	ErrNotFound         = apperror.New(http.StatusNotFound, "slot not found")
	ErrInvalidTimeRange = apperror.New(http.StatusBadRequest, "end time must be after start time")
	ErrStartTimePast    = apperror.New(http.StatusBadRequest, "start time must be in the future")
	ErrInvalidSubject   = apperror.New(http.StatusBadRequest, "invalid subject")
	ErrSubjectRequired  = apperror.New(http.StatusBadRequest, "subject is required for your first slot")
	ErrSubjectFixed     = apperror.New(http.StatusBadRequest, "subject is fixed and cannot be changed")
	ErrSubjectMapping   = apperror.New(http.StatusBadRequest, "faculty must be assigned to exactly one subject")
	ErrOverlap          = apperror.New(http.StatusConflict, "slot overlaps an existing slot")
	ErrPermissionDenied = apperror.New(http.StatusForbidden, "permission denied")
	ErrHasHistory       = apperror.New(http.StatusBadRequest, "cannot delete a slot that has booking history")
	ErrConfirmedToday   = apperror.New(http.StatusConflict, "cannot delete today's slots while confirmed bookings exist")
	ErrNoSlotsGenerated = apperror.New(http.StatusBadRequest, "no valid slots could be generated")
)

// DefaultCapacity is the number of confirmed bookings a slot admits unless
// configured otherwise. The current product runs one-on-one mentoring, so
// every slot is created with capacity 1.
const DefaultCapacity = 1

// Slot is a bookable time window offered by one faculty member for one subject.
type Slot struct {
	ID          string
	FacultyID   string
	Subject     string
	StartTime   time.Time
	EndTime     time.Time
	Capacity    int
	IsAvailable bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsPast reports whether the slot's start time has already passed.
func (s *Slot) IsPast(now time.Time) bool {
	return !s.StartTime.After(now)
}

// FacultyFilter narrows a faculty's own slot listing.
type FacultyFilter struct {
	Date       *time.Time // calendar day, server timezone
	FutureOnly bool
	Now        time.Time // reference time for FutureOnly, stamped by the service
}

// BookableFilter narrows the student-facing bookable slot queries.
type BookableFilter struct {
	Now      time.Time
	Date     *time.Time // optional single calendar day
	Subjects []string   // restrict to these subjects; empty means all
}
