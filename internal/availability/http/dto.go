package http

import (
	"time"

	"github.com/AutoForge-Systems/pbl-scheduler-student/internal/availability"
	"github.com/AutoForge-Systems/pbl-scheduler-student/internal/slot"
)

type SubjectAvailabilityResponse struct {
	Subject           string `json:"subject"`
	HasAvailableSlots bool   `json:"has_available_slots"`
}

type SummaryResponse struct {
	GeneratedAt time.Time                     `json:"generated_at"`
	Subjects    []SubjectAvailabilityResponse `json:"subjects"`
}

func NewSummaryResponse(s *availability.Summary) SummaryResponse {
	subjects := make([]SubjectAvailabilityResponse, len(s.Subjects))
	for i, row := range s.Subjects {
		subjects[i] = SubjectAvailabilityResponse{
			Subject:           row.Subject,
			HasAvailableSlots: row.HasAvailableSlots,
		}
	}
	return SummaryResponse{GeneratedAt: s.GeneratedAt, Subjects: subjects}
}

type AvailableSlotResponse struct {
	ID        string    `json:"id"`
	FacultyID string    `json:"faculty_id"`
	Subject   string    `json:"subject"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

type BlockedSubjectResponse struct {
	Subject string `json:"subject"`
	Detail  string `json:"detail"`
}

type StudentViewResponse struct {
	Slots           []AvailableSlotResponse  `json:"slots"`
	BlockedSubjects []BlockedSubjectResponse `json:"blocked_subjects"`
}

func NewStudentViewResponse(v *availability.StudentView) StudentViewResponse {
	slots := make([]AvailableSlotResponse, len(v.Slots))
	for i, s := range v.Slots {
		slots[i] = newAvailableSlotResponse(s)
	}
	blocked := make([]BlockedSubjectResponse, len(v.BlockedSubjects))
	for i, b := range v.BlockedSubjects {
		blocked[i] = BlockedSubjectResponse{Subject: b.Subject, Detail: b.Detail}
	}
	return StudentViewResponse{Slots: slots, BlockedSubjects: blocked}
}

func newAvailableSlotResponse(s *slot.Slot) AvailableSlotResponse {
	return AvailableSlotResponse{
		ID:        s.ID,
		FacultyID: s.FacultyID,
		Subject:   s.Subject,
		StartTime: s.StartTime,
		EndTime:   s.EndTime,
	}
}
