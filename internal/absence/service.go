package absence

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/AutoForge-Systems/pbl-scheduler-student/internal/subject"
)

type CreateRequest struct {
	StudentID string
	Subject   string
	Detail    string
	CreatedBy string
}

type Service interface {
	// Create raises a block for the student on the subject. Raising a block
	// on an already-blocked pair refreshes its detail.
	Create(ctx context.Context, req CreateRequest) (*Block, error)
	ListAll(ctx context.Context) ([]*Block, error)
	ListByStudent(ctx context.Context, studentID string) ([]*Block, error)
	// Lift removes a block, letting the student book the subject again.
	Lift(ctx context.Context, facultyID, id string) error
}

type service struct {
	repo     Repository
	subjects *subject.Set
	log      *zap.Logger
}

func NewService(repo Repository, subjects *subject.Set, log *zap.Logger) Service {
	return &service{repo: repo, subjects: subjects, log: log}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Block, error) {
	studentID := strings.TrimSpace(req.StudentID)
	if studentID == "" {
		return nil, ErrStudentRequired
	}

	subj := s.subjects.Normalize(req.Subject)
	if !s.subjects.Contains(subj) {
		return nil, ErrInvalidSubject
	}

	b := &Block{
		StudentID: studentID,
		Subject:   subj,
		Detail:    req.Detail,
		CreatedBy: req.CreatedBy,
	}
	if err := s.repo.Upsert(ctx, nil, b); err != nil {
		return nil, err
	}

	s.log.Info("absence block raised",
		zap.String("block_id", b.ID),
		zap.String("student_id", b.StudentID),
		zap.String("subject", b.Subject),
		zap.String("created_by", b.CreatedBy))

	return b, nil
}

func (s *service) ListAll(ctx context.Context) ([]*Block, error) {
	return s.repo.ListAll(ctx)
}

func (s *service) ListByStudent(ctx context.Context, studentID string) ([]*Block, error) {
	return s.repo.ListByStudent(ctx, studentID)
}

func (s *service) Lift(ctx context.Context, facultyID, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.log.Info("absence block lifted",
		zap.String("block_id", id),
		zap.String("lifted_by", facultyID))

	return nil
}
