package slot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AutoForge-Systems/pbl-scheduler-student/internal/db"
)

const slotColumns = "id, faculty_id, subject, start_time, end_time, capacity, is_available, created_at, updated_at"

// confirmedCountExpr counts the confirmed bookings held against a slot row s.
const confirmedCountExpr = "(SELECT count(*) FROM public.bookings b WHERE b.slot_id = s.id AND b.status = 'confirmed')"

type Repository interface {
	Create(ctx context.Context, s *Slot) error
	// CreateBatch inserts all slots in one transaction; either every slot
	// lands or none do.
	CreateBatch(ctx context.Context, slots []*Slot) error
	GetByID(ctx context.Context, id string) (*Slot, error)
	// GetByIDForUpdate loads a slot through q with a FOR UPDATE row lock.
	// The booking engine calls it inside its serializable transaction.
	GetByIDForUpdate(ctx context.Context, q db.Querier, id string) (*Slot, error)
	ListByFaculty(ctx context.Context, facultyID string, f FacultyFilter) ([]*Slot, error)
	// FacultySubjects returns the distinct subjects of a faculty's slots.
	FacultySubjects(ctx context.Context, facultyID string) ([]string, error)
	HasOverlap(ctx context.Context, facultyID string, start, end time.Time, excludeID string) (bool, error)
	SetAvailability(ctx context.Context, id string, available bool) error
	Delete(ctx context.Context, id string) error
	// HasBookingHistory reports whether the slot carries a confirmed,
	// completed, or absent booking. Such slots must never be deleted.
	HasBookingHistory(ctx context.Context, slotID string) (bool, error)
	CountConfirmedInRange(ctx context.Context, facultyID string, from, to time.Time) (int, error)
	// DeleteOpenInRange removes the faculty's slots in [from, to) that have
	// no booking history, returning how many were deleted.
	DeleteOpenInRange(ctx context.Context, facultyID string, from, to time.Time) (int64, error)
	ListBookable(ctx context.Context, f BookableFilter) ([]*Slot, error)
	// SubjectsWithBookable returns the subjects that currently have at least
	// one bookable slot (available, future, free capacity).
	SubjectsWithBookable(ctx context.Context, now time.Time) ([]string, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func (r *pgxRepository) Create(ctx context.Context, s *Slot) error {
	const query = `
		INSERT INTO public.slots (faculty_id, subject, start_time, end_time, capacity, is_available)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	return r.pool.QueryRow(ctx, query,
		s.FacultyID, s.Subject, s.StartTime, s.EndTime, s.Capacity, s.IsAvailable,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
}

func (r *pgxRepository) CreateBatch(ctx context.Context, slots []*Slot) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin batch insert: %w", err)
	}
	defer tx.Rollback(ctx)

	const query = `
		INSERT INTO public.slots (faculty_id, subject, start_time, end_time, capacity, is_available)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	for _, s := range slots {
		if err := tx.QueryRow(ctx, query,
			s.FacultyID, s.Subject, s.StartTime, s.EndTime, s.Capacity, s.IsAvailable,
		).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return fmt.Errorf("insert slot in batch: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit batch insert: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Slot, error) {
	return r.get(ctx, r.pool, id, false)
}

func (r *pgxRepository) GetByIDForUpdate(ctx context.Context, q db.Querier, id string) (*Slot, error) {
	return r.get(ctx, q, id, true)
}

func (r *pgxRepository) get(ctx context.Context, q db.Querier, id string, forUpdate bool) (*Slot, error) {
	query := "SELECT " + slotColumns + " FROM public.slots WHERE id = $1"
	if forUpdate {
		query += " FOR UPDATE"
	}

	var s Slot
	if err := q.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.FacultyID, &s.Subject, &s.StartTime, &s.EndTime,
		&s.Capacity, &s.IsAvailable, &s.CreatedAt, &s.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get slot failed: %w", err)
	}
	return &s, nil
}

func (r *pgxRepository) ListByFaculty(ctx context.Context, facultyID string, f FacultyFilter) ([]*Slot, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select(slotColumns).
		From("public.slots").
		Where(squirrel.Eq{"faculty_id": facultyID}).
		OrderBy("start_time ASC")

	if f.Date != nil {
		dayStart, dayEnd := dayBounds(*f.Date)
		query = query.Where(squirrel.GtOrEq{"start_time": dayStart}).
			Where(squirrel.Lt{"start_time": dayEnd})
	}
	if f.FutureOnly {
		query = query.Where(squirrel.Gt{"start_time": f.Now})
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list slots query failed: %w", err)
	}

	return r.queryMany(ctx, sql, args)
}

func (r *pgxRepository) FacultySubjects(ctx context.Context, facultyID string) ([]string, error) {
	const query = `SELECT DISTINCT subject FROM public.slots WHERE faculty_id = $1 ORDER BY subject`

	rows, err := r.pool.Query(ctx, query, facultyID)
	if err != nil {
		return nil, fmt.Errorf("list faculty subjects failed: %w", err)
	}
	defer rows.Close()

	var subjects []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("scan subject failed: %w", err)
		}
		subjects = append(subjects, s)
	}
	return subjects, rows.Err()
}

func (r *pgxRepository) HasOverlap(ctx context.Context, facultyID string, start, end time.Time, excludeID string) (bool, error) {
	// Overlap: (NewStart < ExistingEnd) AND (NewEnd > ExistingStart)
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	subQuery := psql.Select("1").
		From("public.slots").
		Where(squirrel.Eq{"faculty_id": facultyID}).
		Where(squirrel.Lt{"start_time": end}).
		Where(squirrel.Gt{"end_time": start})

	if excludeID != "" {
		subQuery = subQuery.Where(squirrel.NotEq{"id": excludeID})
	}

	sql, args, err := subQuery.ToSql()
	if err != nil {
		return false, fmt.Errorf("build check overlap query failed: %w", err)
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, "SELECT EXISTS ("+sql+")", args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("check overlap failed: %w", err)
	}
	return exists, nil
}

func (r *pgxRepository) SetAvailability(ctx context.Context, id string, available bool) error {
	const query = `
		UPDATE public.slots
		SET is_available = $1, updated_at = now()
		WHERE id = $2
	`

	ct, err := r.pool.Exec(ctx, query, available, id)
	if err != nil {
		return fmt.Errorf("set slot availability failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) Delete(ctx context.Context, id string) error {
	ct, err := r.pool.Exec(ctx, "DELETE FROM public.slots WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete slot failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) HasBookingHistory(ctx context.Context, slotID string) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM public.bookings
			WHERE slot_id = $1 AND status IN ('confirmed', 'completed', 'absent')
		)
	`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, slotID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check booking history failed: %w", err)
	}
	return exists, nil
}

func (r *pgxRepository) CountConfirmedInRange(ctx context.Context, facultyID string, from, to time.Time) (int, error) {
	const query = `
		SELECT count(*)
		FROM public.bookings b
		JOIN public.slots s ON b.slot_id = s.id
		WHERE s.faculty_id = $1
		  AND s.start_time >= $2 AND s.start_time < $3
		  AND b.status = 'confirmed'
	`

	var n int
	if err := r.pool.QueryRow(ctx, query, facultyID, from, to).Scan(&n); err != nil {
		return 0, fmt.Errorf("count confirmed bookings failed: %w", err)
	}
	return n, nil
}

func (r *pgxRepository) DeleteOpenInRange(ctx context.Context, facultyID string, from, to time.Time) (int64, error) {
	const query = `
		DELETE FROM public.slots s
		WHERE s.faculty_id = $1
		  AND s.start_time >= $2 AND s.start_time < $3
		  AND NOT EXISTS (
			SELECT 1 FROM public.bookings b
			WHERE b.slot_id = s.id AND b.status IN ('confirmed', 'completed', 'absent')
		  )
	`

	ct, err := r.pool.Exec(ctx, query, facultyID, from, to)
	if err != nil {
		return 0, fmt.Errorf("delete open slots failed: %w", err)
	}
	return ct.RowsAffected(), nil
}

func (r *pgxRepository) ListBookable(ctx context.Context, f BookableFilter) ([]*Slot, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select(
		"s.id", "s.faculty_id", "s.subject", "s.start_time", "s.end_time",
		"s.capacity", "s.is_available", "s.created_at", "s.updated_at",
	).
		From("public.slots s").
		Where(squirrel.Eq{"s.is_available": true}).
		Where(squirrel.Gt{"s.start_time": f.Now}).
		Where(squirrel.Expr(confirmedCountExpr + " < s.capacity")).
		OrderBy("s.subject ASC", "s.start_time ASC")

	if len(f.Subjects) > 0 {
		query = query.Where(squirrel.Eq{"s.subject": f.Subjects})
	}
	if f.Date != nil {
		dayStart, dayEnd := dayBounds(*f.Date)
		query = query.Where(squirrel.GtOrEq{"s.start_time": dayStart}).
			Where(squirrel.Lt{"s.start_time": dayEnd})
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build bookable slots query failed: %w", err)
	}

	return r.queryMany(ctx, sql, args)
}

func (r *pgxRepository) SubjectsWithBookable(ctx context.Context, now time.Time) ([]string, error) {
	const query = `
		SELECT DISTINCT s.subject
		FROM public.slots s
		WHERE s.is_available = true
		  AND s.start_time > $1
		  AND (SELECT count(*) FROM public.bookings b
		       WHERE b.slot_id = s.id AND b.status = 'confirmed') < s.capacity
	`

	rows, err := r.pool.Query(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("list subjects with bookable slots failed: %w", err)
	}
	defer rows.Close()

	var subjects []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("scan subject failed: %w", err)
		}
		subjects = append(subjects, s)
	}
	return subjects, rows.Err()
}

func (r *pgxRepository) queryMany(ctx context.Context, sql string, args []any) ([]*Slot, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list slots failed: %w", err)
	}
	defer rows.Close()

	var slots []*Slot
	for rows.Next() {
		var s Slot
		if err := rows.Scan(
			&s.ID, &s.FacultyID, &s.Subject, &s.StartTime, &s.EndTime,
			&s.Capacity, &s.IsAvailable, &s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan slot failed: %w", err)
		}
		slots = append(slots, &s)
	}
	return slots, rows.Err()
}

// dayBounds returns the [start, end) range covering the calendar day of t.
func dayBounds(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1)
}
