package booking

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/AutoForge-Systems/pbl-scheduler-student/internal/absence"
	"github.com/AutoForge-Systems/pbl-scheduler-student/internal/db"
	"github.com/AutoForge-Systems/pbl-scheduler-student/internal/slot"
	"github.com/AutoForge-Systems/pbl-scheduler-student/internal/subject"
)

// SlotStore is the slice of the slot repository the engine needs inside its
// transaction.
type SlotStore interface {
	GetByIDForUpdate(ctx context.Context, q db.Querier, id string) (*slot.Slot, error)
}

// AbsenceStore gives the engine transactional access to absence blocks.
type AbsenceStore interface {
	Exists(ctx context.Context, q db.Querier, studentID, subj string) (bool, error)
	Upsert(ctx context.Context, q db.Querier, block *absence.Block) error
}

// TxManager runs a function inside a serializable transaction, retrying
// serialization failures once.
type TxManager interface {
	DoSerializable(ctx context.Context, fn func(tx pgx.Tx) error) error
}

// Rules are the configurable booking policies.
type Rules struct {
	// CancellationWindow is how long before slot start students lose the
	// right to cancel. Zero disables the window.
	CancellationWindow time.Duration
	// RebookCooldown blocks rebooking a subject for this long after a
	// cancellation. Zero disables the cooldown.
	RebookCooldown time.Duration
}

type Service interface {
	// Create books a slot for a student. All invariant checks and the
	// insert run in one serializable transaction with the slot row locked,
	// so two concurrent callers racing for the last spot cannot both win.
	Create(ctx context.Context, studentID, slotID string) (*Booking, error)
	GetByID(ctx context.Context, id string) (*Booking, error)
	ListByStudent(ctx context.Context, studentID string) ([]*Booking, error)
	ListByFaculty(ctx context.Context, facultyID string) ([]*Booking, error)
	CancelByStudent(ctx context.Context, studentID, bookingID string) (*Booking, error)
	CancelByFaculty(ctx context.Context, facultyID, bookingID, reason string) (*Booking, error)
	// MarkAbsent flips a confirmed booking to absent and raises an absence
	// block for the (student, subject) pair in the same transaction.
	MarkAbsent(ctx context.Context, facultyID, bookingID, detail string) (*Booking, error)
	Complete(ctx context.Context, facultyID, bookingID string) (*Booking, error)
}

type service struct {
	repo     Repository
	slots    SlotStore
	absences AbsenceStore
	tx       TxManager
	subjects *subject.Set
	rules    Rules
	log      *zap.Logger
	now      func() time.Time
}

func NewService(
	repo Repository,
	slots SlotStore,
	absences AbsenceStore,
	tx TxManager,
	subjects *subject.Set,
	rules Rules,
	log *zap.Logger,
) Service {
	return &service{
		repo:     repo,
		slots:    slots,
		absences: absences,
		tx:       tx,
		subjects: subjects,
		rules:    rules,
		log:      log,
		now:      time.Now,
	}
}

func (s *service) Create(ctx context.Context, studentID, slotID string) (*Booking, error) {
	var created *Booking

	err := s.tx.DoSerializable(ctx, func(tx pgx.Tx) error {
		now := s.now()

		// Lock the slot row; concurrent bookings of the same slot serialize here.
		sl, err := s.slots.GetByIDForUpdate(ctx, tx, slotID)
		if err != nil {
			return err
		}
		if !sl.IsAvailable || sl.IsPast(now) {
			return ErrSlotUnavailable
		}

		subj := s.subjects.Normalize(sl.Subject)

		confirmed, err := s.repo.CountConfirmedBySlot(ctx, tx, slotID)
		if err != nil {
			return err
		}
		if confirmed >= sl.Capacity {
			return ErrSlotAlreadyBooked
		}

		blocked, err := s.absences.Exists(ctx, tx, studentID, subj)
		if err != nil {
			return err
		}
		if blocked {
			return ErrStudentBlocked
		}

		duplicate, err := s.repo.HasConfirmedFutureForSubject(ctx, tx, studentID, subj, now)
		if err != nil {
			return err
		}
		if duplicate {
			return ErrDuplicateSubject
		}

		if s.rules.RebookCooldown > 0 {
			last, err := s.repo.LatestCancellationForSubject(ctx, tx, studentID, subj)
			if err != nil {
				return err
			}
			if last != nil && now.Sub(*last) < s.rules.RebookCooldown {
				return ErrRebookCooldown
			}
		}

		b := &Booking{
			SlotID:    slotID,
			StudentID: studentID,
			Status:    StatusConfirmed,

			Subject:       subj,
			SlotStartTime: sl.StartTime,
			SlotEndTime:   sl.EndTime,
			FacultyID:     sl.FacultyID,
		}
		if err := s.repo.Create(ctx, tx, b); err != nil {
			return err
		}

		created = b
		return nil
	})
	if err != nil {
		return nil, translateStorageError(err)
	}

	s.log.Info("booking created",
		zap.String("booking_id", created.ID),
		zap.String("slot_id", created.SlotID),
		zap.String("student_id", created.StudentID),
		zap.String("subject", created.Subject))

	return created, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Booking, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) ListByStudent(ctx context.Context, studentID string) ([]*Booking, error) {
	return s.repo.ListByStudent(ctx, studentID)
}

func (s *service) ListByFaculty(ctx context.Context, facultyID string) ([]*Booking, error) {
	return s.repo.ListByFaculty(ctx, facultyID)
}

func (s *service) CancelByStudent(ctx context.Context, studentID, bookingID string) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	// A foreign booking is indistinguishable from a missing one.
	if b.StudentID != studentID {
		return nil, ErrNotFound
	}
	if !b.IsConfirmed() {
		return nil, ErrAlreadyCancelled
	}

	if s.rules.CancellationWindow > 0 {
		deadline := b.SlotStartTime.Add(-s.rules.CancellationWindow)
		if !s.now().Before(deadline) {
			return nil, ErrCancellationWindow
		}
	}

	return s.cancel(ctx, b, "cancelled by student")
}

func (s *service) CancelByFaculty(ctx context.Context, facultyID, bookingID, reason string) (*Booking, error) {
	b, err := s.ownedByFaculty(ctx, facultyID, bookingID)
	if err != nil {
		return nil, err
	}
	if !b.IsConfirmed() {
		return nil, ErrAlreadyCancelled
	}
	if reason == "" {
		reason = "cancelled by faculty"
	}

	// Faculty cancellation deliberately skips the window check.
	return s.cancel(ctx, b, reason)
}

func (s *service) cancel(ctx context.Context, b *Booking, reason string) (*Booking, error) {
	ok, err := s.repo.SetStatusIfConfirmed(ctx, nil, b.ID, StatusCancelled, reason)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Someone else cancelled between our read and the update.
		return nil, ErrAlreadyCancelled
	}

	s.log.Info("booking cancelled",
		zap.String("booking_id", b.ID),
		zap.String("student_id", b.StudentID),
		zap.String("reason", reason))

	return s.repo.GetByID(ctx, b.ID)
}

func (s *service) MarkAbsent(ctx context.Context, facultyID, bookingID, detail string) (*Booking, error) {
	err := s.tx.DoSerializable(ctx, func(tx pgx.Tx) error {
		b, err := s.repo.GetByIDForUpdate(ctx, tx, bookingID)
		if err != nil {
			return err
		}
		if b.FacultyID != facultyID {
			return ErrPermissionDenied
		}
		if !b.IsConfirmed() {
			return ErrNotConfirmed
		}

		ok, err := s.repo.SetStatusIfConfirmed(ctx, tx, bookingID, StatusAbsent, "")
		if err != nil {
			return err
		}
		if !ok {
			return ErrNotConfirmed
		}

		block := &absence.Block{
			StudentID: b.StudentID,
			Subject:   s.subjects.Normalize(b.Subject),
			Detail:    detail,
			CreatedBy: facultyID,
		}
		return s.absences.Upsert(ctx, tx, block)
	})
	if err != nil {
		return nil, translateStorageError(err)
	}

	s.log.Info("booking marked absent",
		zap.String("booking_id", bookingID),
		zap.String("faculty_id", facultyID))

	return s.repo.GetByID(ctx, bookingID)
}

func (s *service) Complete(ctx context.Context, facultyID, bookingID string) (*Booking, error) {
	b, err := s.ownedByFaculty(ctx, facultyID, bookingID)
	if err != nil {
		return nil, err
	}
	if !b.IsConfirmed() {
		return nil, ErrNotConfirmed
	}
	if s.now().Before(b.SlotStartTime) {
		return nil, ErrNotStarted
	}

	ok, err := s.repo.SetStatusIfConfirmed(ctx, nil, bookingID, StatusCompleted, "")
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotConfirmed
	}

	return s.repo.GetByID(ctx, bookingID)
}

func (s *service) ownedByFaculty(ctx context.Context, facultyID, bookingID string) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.FacultyID != facultyID {
		return nil, ErrPermissionDenied
	}
	return b, nil
}

// translateStorageError maps low-level storage failures onto booking errors.
// The partial unique index on (slot_id, student_id) fires when the same
// student double-submits; serialization retries are already spent by the
// transaction manager when the error reaches us.
func translateStorageError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return ErrSlotAlreadyBooked
	}
	return err
}
