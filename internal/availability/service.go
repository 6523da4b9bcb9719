package availability

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/AutoForge-Systems/pbl-scheduler-student/internal/absence"
	"github.com/AutoForge-Systems/pbl-scheduler-student/internal/slot"
	"github.com/AutoForge-Systems/pbl-scheduler-student/internal/subject"
)

// SlotSource is the read-only slice of the slot store the availability views
// are built from.
type SlotSource interface {
	ListBookable(ctx context.Context, f slot.BookableFilter) ([]*slot.Slot, error)
	SubjectsWithBookable(ctx context.Context, now time.Time) ([]string, error)
}

// AbsenceSource exposes a student's active absence blocks.
type AbsenceSource interface {
	ListByStudent(ctx context.Context, studentID string) ([]*absence.Block, error)
}

// SubjectAvailability is one row of the external summary feed.
type SubjectAvailability struct {
	Subject           string
	HasAvailableSlots bool
}

// Summary is the payload polled by the PBL site. It always carries every
// configured subject, in configured order, so consumers never have to guess
// whether a missing subject means "no slots" or "unknown subject".
type Summary struct {
	GeneratedAt time.Time
	Subjects    []SubjectAvailability
}

// BlockedSubject names a subject the student cannot book and why.
type BlockedSubject struct {
	Subject string
	Detail  string
}

// StudentView is what a student sees when browsing bookable slots: the open
// slots they may take, and the subjects their absence blocks shut them out of.
type StudentView struct {
	Slots           []*slot.Slot
	BlockedSubjects []BlockedSubject
}

type Service interface {
	Summary(ctx context.Context) (*Summary, error)
	// AvailableSlots lists bookable slots for the student, excluding
	// subjects the student is blocked on. Date narrows to one calendar day.
	AvailableSlots(ctx context.Context, studentID string, date *time.Time) (*StudentView, error)
}

type service struct {
	slots    SlotSource
	absences AbsenceSource
	subjects *subject.Set
	log      *zap.Logger
	now      func() time.Time
}

func NewService(slots SlotSource, absences AbsenceSource, subjects *subject.Set, log *zap.Logger) Service {
	return &service{
		slots:    slots,
		absences: absences,
		subjects: subjects,
		log:      log,
		now:      time.Now,
	}
}

func (s *service) Summary(ctx context.Context) (*Summary, error) {
	now := s.now()

	open, err := s.slots.SubjectsWithBookable(ctx, now)
	if err != nil {
		return nil, err
	}

	openSet := make(map[string]struct{}, len(open))
	for _, subj := range open {
		openSet[s.subjects.Normalize(subj)] = struct{}{}
	}

	all := s.subjects.All()
	rows := make([]SubjectAvailability, 0, len(all))
	for _, subj := range all {
		_, ok := openSet[subj]
		rows = append(rows, SubjectAvailability{Subject: subj, HasAvailableSlots: ok})
	}

	return &Summary{GeneratedAt: now, Subjects: rows}, nil
}

func (s *service) AvailableSlots(ctx context.Context, studentID string, date *time.Time) (*StudentView, error) {
	blocks, err := s.absences.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	blocked := make(map[string]struct{}, len(blocks))
	blockedSubjects := make([]BlockedSubject, 0, len(blocks))
	for _, b := range blocks {
		subj := s.subjects.Normalize(b.Subject)
		if _, seen := blocked[subj]; seen {
			continue
		}
		blocked[subj] = struct{}{}
		blockedSubjects = append(blockedSubjects, BlockedSubject{Subject: subj, Detail: b.Detail})
	}

	// Query only the subjects the student may still book. If everything is
	// blocked there is nothing to fetch.
	openSubjects := make([]string, 0, len(s.subjects.All()))
	for _, subj := range s.subjects.All() {
		if _, isBlocked := blocked[subj]; !isBlocked {
			openSubjects = append(openSubjects, subj)
		}
	}
	if len(openSubjects) == 0 {
		return &StudentView{Slots: []*slot.Slot{}, BlockedSubjects: blockedSubjects}, nil
	}

	slots, err := s.slots.ListBookable(ctx, slot.BookableFilter{
		Now:      s.now(),
		Date:     date,
		Subjects: openSubjects,
	})
	if err != nil {
		return nil, err
	}
	if slots == nil {
		slots = []*slot.Slot{}
	}

	return &StudentView{Slots: slots, BlockedSubjects: blockedSubjects}, nil
}
