package absence

import (
	"net/http"
	"time"

	"github.com/AutoForge-Systems/pbl-scheduler-student/internal/pkg/apperror"
)

var (
	ErrNotFound        = apperror.New(http.StatusNotFound, "absence block not found")
	ErrInvalidSubject  = apperror.New(http.StatusBadRequest, "subject is not offered")
	ErrStudentRequired = apperror.New(http.StatusBadRequest, "student id is required")
)

// Block bars a student from booking any slot of a subject until a faculty
// member lifts it. At most one block exists per (student, subject) pair.
type Block struct {
	ID        string
	StudentID string
	Subject   string
	Detail    string
	CreatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
}
