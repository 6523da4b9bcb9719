package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AutoForge-Systems/pbl-scheduler-student/internal/db"
)

const bookingColumns = `
	b.id, b.slot_id, b.student_id, b.status,
	b.cancelled_at, b.cancellation_reason, b.absent_at,
	b.created_at, b.updated_at,
	s.subject, s.start_time, s.end_time, s.faculty_id
`

type Repository interface {
	// Create inserts a confirmed booking through q, which is the engine's
	// serializable transaction.
	Create(ctx context.Context, q db.Querier, b *Booking) error
	GetByID(ctx context.Context, id string) (*Booking, error)
	GetByIDForUpdate(ctx context.Context, q db.Querier, id string) (*Booking, error)
	ListByStudent(ctx context.Context, studentID string) ([]*Booking, error)
	// ListByFaculty returns bookings on the faculty's slots.
	ListByFaculty(ctx context.Context, facultyID string) ([]*Booking, error)
	CountConfirmedBySlot(ctx context.Context, q db.Querier, slotID string) (int, error)
	// HasConfirmedFutureForSubject reports whether the student already holds
	// a confirmed booking on a future slot of the subject.
	HasConfirmedFutureForSubject(ctx context.Context, q db.Querier, studentID, subj string, now time.Time) (bool, error)
	// LatestCancellationForSubject returns when the student last cancelled a
	// booking for the subject, or nil if they never did.
	LatestCancellationForSubject(ctx context.Context, q db.Querier, studentID, subj string) (*time.Time, error)
	// SetStatusIfConfirmed flips a confirmed booking to the given terminal
	// status. It reports false when the booking was not confirmed anymore,
	// which is how concurrent cancels collapse to a single winner.
	// A nil q runs the statement against the pool.
	SetStatusIfConfirmed(ctx context.Context, q db.Querier, id string, status Status, reason string) (bool, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func (r *pgxRepository) querier(q db.Querier) db.Querier {
	if q == nil {
		return r.pool
	}
	return q
}

func (r *pgxRepository) Create(ctx context.Context, q db.Querier, b *Booking) error {
	const query = `
		INSERT INTO public.bookings (slot_id, student_id, status)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`

	return q.QueryRow(ctx, query, b.SlotID, b.StudentID, b.Status).
		Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Booking, error) {
	return r.get(ctx, r.pool, id, false)
}

func (r *pgxRepository) GetByIDForUpdate(ctx context.Context, q db.Querier, id string) (*Booking, error) {
	return r.get(ctx, q, id, true)
}

func (r *pgxRepository) get(ctx context.Context, q db.Querier, id string, forUpdate bool) (*Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM public.bookings b
		JOIN public.slots s ON b.slot_id = s.id
		WHERE b.id = $1
	`
	if forUpdate {
		query += " FOR UPDATE OF b"
	}

	var b Booking
	if err := scanBooking(q.QueryRow(ctx, query, id), &b); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get booking failed: %w", err)
	}
	return &b, nil
}

func (r *pgxRepository) ListByStudent(ctx context.Context, studentID string) ([]*Booking, error) {
	const query = `
		SELECT ` + bookingColumns + `
		FROM public.bookings b
		JOIN public.slots s ON b.slot_id = s.id
		WHERE b.student_id = $1
		ORDER BY s.start_time ASC, b.created_at ASC
	`
	return r.list(ctx, query, studentID)
}

func (r *pgxRepository) ListByFaculty(ctx context.Context, facultyID string) ([]*Booking, error) {
	const query = `
		SELECT ` + bookingColumns + `
		FROM public.bookings b
		JOIN public.slots s ON b.slot_id = s.id
		WHERE s.faculty_id = $1
		ORDER BY s.start_time ASC, b.created_at ASC
	`
	return r.list(ctx, query, facultyID)
}

func (r *pgxRepository) list(ctx context.Context, query string, arg any) ([]*Booking, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("list bookings failed: %w", err)
	}
	defer rows.Close()

	var bookings []*Booking
	for rows.Next() {
		var b Booking
		if err := scanBooking(rows, &b); err != nil {
			return nil, fmt.Errorf("scan booking failed: %w", err)
		}
		bookings = append(bookings, &b)
	}
	return bookings, rows.Err()
}

func (r *pgxRepository) CountConfirmedBySlot(ctx context.Context, q db.Querier, slotID string) (int, error) {
	const query = `
		SELECT count(*) FROM public.bookings
		WHERE slot_id = $1 AND status = 'confirmed'
	`

	var n int
	if err := q.QueryRow(ctx, query, slotID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count confirmed bookings failed: %w", err)
	}
	return n, nil
}

func (r *pgxRepository) HasConfirmedFutureForSubject(ctx context.Context, q db.Querier, studentID, subj string, now time.Time) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1
			FROM public.bookings b
			JOIN public.slots s ON b.slot_id = s.id
			WHERE b.student_id = $1
			  AND s.subject = $2
			  AND b.status = 'confirmed'
			  AND s.start_time > $3
		)
	`

	var exists bool
	if err := q.QueryRow(ctx, query, studentID, subj, now).Scan(&exists); err != nil {
		return false, fmt.Errorf("check subject booking failed: %w", err)
	}
	return exists, nil
}

func (r *pgxRepository) LatestCancellationForSubject(ctx context.Context, q db.Querier, studentID, subj string) (*time.Time, error) {
	const query = `
		SELECT max(b.cancelled_at)
		FROM public.bookings b
		JOIN public.slots s ON b.slot_id = s.id
		WHERE b.student_id = $1
		  AND s.subject = $2
		  AND b.status = 'cancelled'
	`

	var latest *time.Time
	if err := q.QueryRow(ctx, query, studentID, subj).Scan(&latest); err != nil {
		return nil, fmt.Errorf("get latest cancellation failed: %w", err)
	}
	return latest, nil
}

func (r *pgxRepository) SetStatusIfConfirmed(ctx context.Context, q db.Querier, id string, status Status, reason string) (bool, error) {
	const query = `
		UPDATE public.bookings
		SET status = $2,
		    cancelled_at = CASE WHEN $2 = 'cancelled' THEN now() ELSE cancelled_at END,
		    cancellation_reason = CASE WHEN $2 = 'cancelled' THEN $3 ELSE cancellation_reason END,
		    absent_at = CASE WHEN $2 = 'absent' THEN now() ELSE absent_at END,
		    updated_at = now()
		WHERE id = $1 AND status = 'confirmed'
	`

	ct, err := r.querier(q).Exec(ctx, query, id, status, reason)
	if err != nil {
		return false, fmt.Errorf("update booking status failed: %w", err)
	}
	return ct.RowsAffected() == 1, nil
}

// scannable covers pgx.Row and pgx.Rows.
type scannable interface {
	Scan(dest ...any) error
}

func scanBooking(row scannable, b *Booking) error {
	return row.Scan(
		&b.ID, &b.SlotID, &b.StudentID, &b.Status,
		&b.CancelledAt, &b.CancellationReason, &b.AbsentAt,
		&b.CreatedAt, &b.UpdatedAt,
		&b.Subject, &b.SlotStartTime, &b.SlotEndTime, &b.FacultyID,
	)
}
