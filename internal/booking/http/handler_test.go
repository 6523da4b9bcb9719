package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AutoForge-Systems/pbl-scheduler-student/internal/auth"
	"github.com/AutoForge-Systems/pbl-scheduler-student/internal/booking"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testSlotID = "7b1deb4d-3b7d-4bad-9bdd-2b0d7b3dcb6d"
const testBookingID = "9b1deb4d-3b7d-4bad-9bdd-2b0d7b3dcb6d"

// stubService returns canned results so the handler's wiring and error
// mapping can be exercised without a database.
type stubService struct {
	booking *booking.Booking
	err     error
}

func (s *stubService) Create(ctx context.Context, studentID, slotID string) (*booking.Booking, error) {
	return s.booking, s.err
}

func (s *stubService) GetByID(ctx context.Context, id string) (*booking.Booking, error) {
	return s.booking, s.err
}

func (s *stubService) ListByStudent(ctx context.Context, studentID string) ([]*booking.Booking, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []*booking.Booking{s.booking}, nil
}

func (s *stubService) ListByFaculty(ctx context.Context, facultyID string) ([]*booking.Booking, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []*booking.Booking{s.booking}, nil
}

func (s *stubService) CancelByStudent(ctx context.Context, studentID, bookingID string) (*booking.Booking, error) {
	return s.booking, s.err
}

func (s *stubService) CancelByFaculty(ctx context.Context, facultyID, bookingID, reason string) (*booking.Booking, error) {
	return s.booking, s.err
}

func (s *stubService) MarkAbsent(ctx context.Context, facultyID, bookingID, detail string) (*booking.Booking, error) {
	return s.booking, s.err
}

func (s *stubService) Complete(ctx context.Context, facultyID, bookingID string) (*booking.Booking, error) {
	return s.booking, s.err
}

func newTestRouter(svc booking.Service, role string) *gin.Engine {
	r := gin.New()
	fakeAuth := func(c *gin.Context) {
		c.Set("userID", "user-1")
		c.Set("userRole", role)
		c.Next()
	}
	RegisterRoutes(r.Group("/api/v1"), NewHandler(svc), fakeAuth)
	return r
}

func confirmedBooking() *booking.Booking {
	start := time.Date(2026, time.March, 3, 10, 0, 0, 0, time.UTC)
	return &booking.Booking{
		ID:            testBookingID,
		SlotID:        testSlotID,
		StudentID:     "user-1",
		FacultyID:     "faculty-1",
		Subject:       "Web Development",
		Status:        booking.StatusConfirmed,
		SlotStartTime: start,
		SlotEndTime:   start.Add(15 * time.Minute),
	}
}

func TestCreateHandler(t *testing.T) {
	t.Run("creates a booking", func(t *testing.T) {
		r := newTestRouter(&stubService{booking: confirmedBooking()}, auth.RoleStudent)

		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/api/v1/bookings/student",
			strings.NewReader(`{"slot_id":"`+testSlotID+`"}`))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), testBookingID)
		assert.Contains(t, w.Body.String(), `"status":"confirmed"`)
	})

	t.Run("rejects a body without slot id", func(t *testing.T) {
		r := newTestRouter(&stubService{}, auth.RoleStudent)

		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/api/v1/bookings/student", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("maps engine errors onto status codes", func(t *testing.T) {
		tests := []struct {
			err  error
			want int
		}{
			{booking.ErrSlotUnavailable, http.StatusBadRequest},
			{booking.ErrSlotAlreadyBooked, http.StatusConflict},
			{booking.ErrDuplicateSubject, http.StatusConflict},
			{booking.ErrStudentBlocked, http.StatusForbidden},
			{booking.ErrRebookCooldown, http.StatusConflict},
		}

		for _, tt := range tests {
			r := newTestRouter(&stubService{err: tt.err}, auth.RoleStudent)

			w := httptest.NewRecorder()
			req := httptest.NewRequest("POST", "/api/v1/bookings/student",
				strings.NewReader(`{"slot_id":"`+testSlotID+`"}`))
			req.Header.Set("Content-Type", "application/json")
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code, tt.err.Error())
		}
	})
}

func TestCancelHandlers(t *testing.T) {
	t.Run("rejects a malformed booking id", func(t *testing.T) {
		r := newTestRouter(&stubService{}, auth.RoleStudent)

		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/api/v1/bookings/student/not-a-uuid/cancel", nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("maps the cancellation window error", func(t *testing.T) {
		r := newTestRouter(&stubService{err: booking.ErrCancellationWindow}, auth.RoleStudent)

		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/api/v1/bookings/student/"+testBookingID+"/cancel", nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("faculty cancel accepts a reason", func(t *testing.T) {
		b := confirmedBooking()
		b.Status = booking.StatusCancelled
		r := newTestRouter(&stubService{booking: b}, auth.RoleFaculty)

		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/api/v1/bookings/faculty/"+testBookingID+"/cancel",
			strings.NewReader(`{"reason":"emergency"}`))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"cancelled"`)
	})
}

func TestRoleSeparation(t *testing.T) {
	t.Run("students cannot reach faculty routes", func(t *testing.T) {
		r := newTestRouter(&stubService{booking: confirmedBooking()}, auth.RoleStudent)

		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/api/v1/bookings/faculty", nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("faculty cannot book slots", func(t *testing.T) {
		r := newTestRouter(&stubService{booking: confirmedBooking()}, auth.RoleFaculty)

		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/api/v1/bookings/student",
			strings.NewReader(`{"slot_id":"`+testSlotID+`"}`))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}
