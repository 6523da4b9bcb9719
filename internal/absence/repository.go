package absence

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AutoForge-Systems/pbl-scheduler-student/internal/db"
)

const blockColumns = "id, student_id, subject, detail, created_by, created_at, updated_at"

type Repository interface {
	// Exists reports whether the student is blocked for the subject.
	// A nil q runs against the pool.
	Exists(ctx context.Context, q db.Querier, studentID, subj string) (bool, error)
	// Upsert creates a block or refreshes the detail of an existing one for
	// the same (student, subject) pair.
	Upsert(ctx context.Context, q db.Querier, b *Block) error
	GetByID(ctx context.Context, id string) (*Block, error)
	ListByStudent(ctx context.Context, studentID string) ([]*Block, error)
	ListAll(ctx context.Context) ([]*Block, error)
	Delete(ctx context.Context, id string) error
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

func (r *pgxRepository) Exists(ctx context.Context, q db.Querier, studentID, subj string) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM public.absence_blocks
			WHERE student_id = $1 AND subject = $2
		)
	`

	var exists bool
	if err := r.querier(q).QueryRow(ctx, query, studentID, subj).Scan(&exists); err != nil {
		return false, fmt.Errorf("check absence block failed: %w", err)
	}
	return exists, nil
}

func (r *pgxRepository) Upsert(ctx context.Context, q db.Querier, b *Block) error {
	const query = `
		INSERT INTO public.absence_blocks (student_id, subject, detail, created_by)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (student_id, subject) DO UPDATE
		SET detail = EXCLUDED.detail,
		    created_by = EXCLUDED.created_by,
		    updated_at = now()
		RETURNING id, created_at, updated_at
	`

	err := r.querier(q).QueryRow(ctx, query, b.StudentID, b.Subject, b.Detail, b.CreatedBy).
		Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert absence block failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Block, error) {
	query := "SELECT " + blockColumns + " FROM public.absence_blocks WHERE id = $1"

	var b Block
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&b.ID, &b.StudentID, &b.Subject, &b.Detail, &b.CreatedBy, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get absence block failed: %w", err)
	}
	return &b, nil
}

func (r *pgxRepository) ListByStudent(ctx context.Context, studentID string) ([]*Block, error) {
	query := `
		SELECT ` + blockColumns + `
		FROM public.absence_blocks
		WHERE student_id = $1
		ORDER BY subject ASC
	`
	return r.list(ctx, query, studentID)
}

func (r *pgxRepository) ListAll(ctx context.Context) ([]*Block, error) {
	query := `
		SELECT ` + blockColumns + `
		FROM public.absence_blocks
		ORDER BY created_at DESC
	`
	return r.list(ctx, query)
}

func (r *pgxRepository) list(ctx context.Context, query string, args ...any) ([]*Block, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list absence blocks failed: %w", err)
	}
	defer rows.Close()

	var blocks []*Block
	for rows.Next() {
		var b Block
		err := rows.Scan(&b.ID, &b.StudentID, &b.Subject, &b.Detail, &b.CreatedBy, &b.CreatedAt, &b.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan absence block failed: %w", err)
		}
		blocks = append(blocks, &b)
	}
	return blocks, rows.Err()
}

func (r *pgxRepository) Delete(ctx context.Context, id string) error {
	ct, err := r.pool.Exec(ctx, "DELETE FROM public.absence_blocks WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete absence block failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
