package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/gradebook/core/internal/domain/entities"
	"github.com/gradebook/core/internal/infrastructure/logger"
	"github.com/gradebook/core/internal/ports"
)

// StoreMetrics counts student store operations by outcome.
type StoreMetrics struct {
	operations *prometheus.CounterVec
}

// NewStoreMetrics registers the store operation counter.
func NewStoreMetrics(reg prometheus.Registerer) *StoreMetrics {
	m := &StoreMetrics{
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gradebook_store_operations_total",
				Help: "Total number of student store operations",
			},
			[]string{"operation", "outcome"},
		),
	}
	reg.MustRegister(m.operations)
	return m
}

func (m *StoreMetrics) observe(operation string, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.operations.WithLabelValues(operation, outcome).Inc()
}

// StudentService handles student record operations
type StudentService struct {
	repo     ports.StudentRepository
	validate *validator.Validate
	metrics  *StoreMetrics
	logger   *logger.Logger
}

// NewStudentService creates a new student service
func NewStudentService(repo ports.StudentRepository, metrics *StoreMetrics, logger *logger.Logger) *StudentService {
	return &StudentService{
		repo:     repo,
		validate: validator.New(),
		metrics:  metrics,
		logger:   logger,
	}
}

// EnrollStudent adds a new student record
func (s *StudentService) EnrollStudent(ctx context.Context, req ports.EnrollStudentRequest) (*entities.Student, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	student := &entities.Student{
		ID:      req.ID,
		Name:    req.Name,
		Math:    req.Math,
		English: req.English,
	}

	err := s.repo.Add(ctx, student)
	s.metrics.observe("add", err)
	s.logger.LogStoreOperation("add", student.ID, err)
	if err != nil {
		return nil, err
	}

	return student, nil
}

// GetStudent retrieves a student by id. A missing id is a normal outcome
// and returns (nil, nil).
func (s *StudentService) GetStudent(ctx context.Context, id string) (*entities.Student, error) {
	student, err := s.repo.Get(ctx, strings.TrimSpace(id))
	s.metrics.observe("get", err)
	if err != nil {
		s.logger.LogStoreOperation("get", id, err)
		return nil, err
	}

	return student, nil
}

// ListStudents returns all students in store order
func (s *StudentService) ListStudents(ctx context.Context) ([]*entities.Student, error) {
	students, err := s.repo.List(ctx)
	s.metrics.observe("list", err)
	if err != nil {
		s.logger.LogStoreOperation("list", "", err)
		return nil, err
	}

	return students, nil
}

// UpdateStudent applies a partial update to an existing student
func (s *StudentService) UpdateStudent(ctx context.Context, id string, req ports.UpdateStudentRequest) (*entities.Student, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	patch := entities.StudentPatch{
		Name:    req.Name,
		Math:    req.Math,
		English: req.English,
	}

	student, err := s.repo.Update(ctx, strings.TrimSpace(id), patch)
	s.metrics.observe("update", err)
	s.logger.LogStoreOperation("update", id, err)
	if err != nil {
		return nil, err
	}

	return student, nil
}

// DeleteStudent removes a student by id
func (s *StudentService) DeleteStudent(ctx context.Context, id string) error {
	err := s.repo.Delete(ctx, strings.TrimSpace(id))
	s.metrics.observe("delete", err)
	s.logger.LogStoreOperation("delete", id, err)
	return err
}

// UpsertStudent inserts the record or replaces the existing one with the
// same id. Idempotent under repeated identical input.
func (s *StudentService) UpsertStudent(ctx context.Context, req ports.EnrollStudentRequest) (*entities.Student, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	student := &entities.Student{
		ID:      req.ID,
		Name:    req.Name,
		Math:    req.Math,
		English: req.English,
	}

	err := s.repo.Upsert(ctx, student)
	s.metrics.observe("upsert", err)
	s.logger.LogStoreOperation("upsert", student.ID, err)
	if err != nil {
		return nil, err
	}

	return student, nil
}

// validateRequest maps validator failures onto the invalid-student error
// so callers can match with errors.Is.
func (s *StudentService) validateRequest(req interface{}) error {
	if err := s.validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", entities.ErrInvalidStudent, err)
	}
	return nil
}
