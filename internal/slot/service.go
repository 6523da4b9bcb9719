package slot

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/AutoForge-Systems/pbl-scheduler-student/internal/subject"
)

// Slot generation choices offered to faculty in the booking UI.
var (
	allowedSlotDurations  = map[int]bool{5: true, 10: true, 15: true}
	allowedBreakDurations = map[int]bool{0: true, 5: true, 10: true, 15: true}
)

type CreateRequest struct {
	FacultyID string
	Subject   string
	StartTime time.Time
	EndTime   time.Time
}

type BulkCreateRequest struct {
	FacultyID     string
	Subject       string
	StartTime     time.Time
	EndTime       time.Time
	SlotDuration  int // minutes
	BreakDuration int // minutes
}

// DeleteTodayResult reports the outcome of a bulk delete of today's slots.
type DeleteTodayResult struct {
	Deleted int64
	Skipped int64
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Slot, error)
	BulkCreate(ctx context.Context, req BulkCreateRequest) ([]*Slot, error)
	GetByID(ctx context.Context, id string) (*Slot, error)
	ListByFaculty(ctx context.Context, facultyID string, f FacultyFilter) ([]*Slot, error)
	SetAvailability(ctx context.Context, facultyID, slotID string, available bool) (*Slot, error)
	Delete(ctx context.Context, facultyID, slotID string) error
	DeleteToday(ctx context.Context, facultyID string) (*DeleteTodayResult, error)
}

type service struct {
	repo     Repository
	subjects *subject.Set
	log      *zap.Logger
	now      func() time.Time
}

func NewService(repo Repository, subjects *subject.Set, log *zap.Logger) Service {
	return &service{
		repo:     repo,
		subjects: subjects,
		log:      log,
		now:      time.Now,
	}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Slot, error) {
	now := s.now()

	if !req.EndTime.After(req.StartTime) {
		return nil, ErrInvalidTimeRange
	}
	if !req.StartTime.After(now) {
		return nil, ErrStartTimePast
	}

	subj, err := s.resolveSubject(ctx, req.FacultyID, req.Subject)
	if err != nil {
		return nil, err
	}

	overlap, err := s.repo.HasOverlap(ctx, req.FacultyID, req.StartTime, req.EndTime, "")
	if err != nil {
		return nil, err
	}
	if overlap {
		return nil, ErrOverlap
	}

	sl := &Slot{
		FacultyID:   req.FacultyID,
		Subject:     subj,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Capacity:    DefaultCapacity,
		IsAvailable: true,
	}

	if err := s.repo.Create(ctx, sl); err != nil {
		return nil, err
	}

	s.log.Info("slot created",
		zap.String("slot_id", sl.ID),
		zap.String("faculty_id", sl.FacultyID),
		zap.String("subject", sl.Subject),
		zap.Time("start", sl.StartTime))

	return sl, nil
}

func (s *service) BulkCreate(ctx context.Context, req BulkCreateRequest) ([]*Slot, error) {
	now := s.now()

	if !req.EndTime.After(req.StartTime) {
		return nil, ErrInvalidTimeRange
	}
	if !req.StartTime.After(now) {
		return nil, ErrStartTimePast
	}
	if !allowedSlotDurations[req.SlotDuration] || !allowedBreakDurations[req.BreakDuration] {
		return nil, ErrNoSlotsGenerated
	}

	subj, err := s.resolveSubject(ctx, req.FacultyID, req.Subject)
	if err != nil {
		return nil, err
	}

	var slots []*Slot
	for _, w := range GenerateWindows(req.StartTime, req.EndTime, req.SlotDuration, req.BreakDuration) {
		overlap, err := s.repo.HasOverlap(ctx, req.FacultyID, w.Start, w.End, "")
		if err != nil {
			return nil, err
		}
		if overlap {
			continue
		}
		slots = append(slots, &Slot{
			FacultyID:   req.FacultyID,
			Subject:     subj,
			StartTime:   w.Start,
			EndTime:     w.End,
			Capacity:    DefaultCapacity,
			IsAvailable: true,
		})
	}

	if len(slots) == 0 {
		return nil, ErrNoSlotsGenerated
	}

	if err := s.repo.CreateBatch(ctx, slots); err != nil {
		return nil, err
	}

	s.log.Info("slots bulk created",
		zap.String("faculty_id", req.FacultyID),
		zap.String("subject", subj),
		zap.Int("count", len(slots)))

	return slots, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Slot, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) ListByFaculty(ctx context.Context, facultyID string, f FacultyFilter) ([]*Slot, error) {
	if f.FutureOnly {
		f.Now = s.now()
	}
	return s.repo.ListByFaculty(ctx, facultyID, f)
}

func (s *service) SetAvailability(ctx context.Context, facultyID, slotID string, available bool) (*Slot, error) {
	sl, err := s.repo.GetByID(ctx, slotID)
	if err != nil {
		return nil, err
	}
	if sl.FacultyID != facultyID {
		return nil, ErrPermissionDenied
	}

	if err := s.repo.SetAvailability(ctx, slotID, available); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, slotID)
}

func (s *service) Delete(ctx context.Context, facultyID, slotID string) error {
	sl, err := s.repo.GetByID(ctx, slotID)
	if err != nil {
		return err
	}
	if sl.FacultyID != facultyID {
		return ErrPermissionDenied
	}

	// Never delete booking history; open slots and slots whose only
	// bookings were cancelled may go.
	hasHistory, err := s.repo.HasBookingHistory(ctx, slotID)
	if err != nil {
		return err
	}
	if hasHistory {
		return ErrHasHistory
	}

	return s.repo.Delete(ctx, slotID)
}

func (s *service) DeleteToday(ctx context.Context, facultyID string) (*DeleteTodayResult, error) {
	now := s.now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	confirmed, err := s.repo.CountConfirmedInRange(ctx, facultyID, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}
	if confirmed > 0 {
		return nil, ErrConfirmedToday
	}

	all, err := s.repo.ListByFaculty(ctx, facultyID, FacultyFilter{Date: &now})
	if err != nil {
		return nil, err
	}

	deleted, err := s.repo.DeleteOpenInRange(ctx, facultyID, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}

	s.log.Info("today's open slots deleted",
		zap.String("faculty_id", facultyID),
		zap.Int64("deleted", deleted))

	return &DeleteTodayResult{
		Deleted: deleted,
		Skipped: int64(len(all)) - deleted,
	}, nil
}

// resolveSubject enforces the one-subject-per-faculty rule: the first slot
// fixes the faculty's subject and later slots must match it.
func (s *service) resolveSubject(ctx context.Context, facultyID, requested string) (string, error) {
	requested = s.subjects.Normalize(requested)
	if requested != "" && !s.subjects.Contains(requested) {
		return "", ErrInvalidSubject
	}

	existingRaw, err := s.repo.FacultySubjects(ctx, facultyID)
	if err != nil {
		return "", err
	}

	seen := map[string]bool{}
	var existing []string
	for _, raw := range existingRaw {
		subj := s.subjects.Normalize(raw)
		if !s.subjects.Contains(subj) || seen[subj] {
			continue
		}
		seen[subj] = true
		existing = append(existing, subj)
	}

	switch len(existing) {
	case 0:
		if requested == "" {
			return "", ErrSubjectRequired
		}
		return requested, nil
	case 1:
		if requested != "" && requested != existing[0] {
			return "", ErrSubjectFixed
		}
		return existing[0], nil
	default:
		return "", ErrSubjectMapping
	}
}

// Window is a candidate slot time range produced by bulk generation.
type Window struct {
	Start time.Time
	End   time.Time
}

// GenerateWindows cuts [start, end] into consecutive slots of slotDuration
// minutes separated by breakDuration minutes. A window that would run past
// end is dropped.
func GenerateWindows(start, end time.Time, slotDuration, breakDuration int) []Window {
	var windows []Window
	current := start

	for {
		next := current.Add(time.Duration(slotDuration) * time.Minute)
		if next.After(end) {
			break
		}
		windows = append(windows, Window{Start: current, End: next})
		current = next.Add(time.Duration(breakDuration) * time.Minute)
	}

	return windows
}
