package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-gradebook-api/internal/models"
	"github.com/noah-isme/sma-gradebook-api/internal/repository"
	appErrors "github.com/noah-isme/sma-gradebook-api/pkg/errors"
)

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	ExistsByNationalID(ctx context.Context, nationalID, excludeID string) (bool, error)
	Create(ctx context.Context, student *models.Student) error
	Deactivate(ctx context.Context, id string) error
}

// CreateStudentRequest holds payload for enrolling students.
type CreateStudentRequest struct {
	FirstName  string `json:"first_name" validate:"required,max=100"`
	LastName   string `json:"last_name" validate:"required,max=100"`
	NationalID string `json:"national_id" validate:"required,max=20"`
	GradeLevel string `json:"grade_level" validate:"required,max=20"`
	Section    string `json:"section" validate:"required,max=10"`
}

// StudentService handles student use-cases.
type StudentService struct {
	repo      studentRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(repo studentRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// List returns students and pagination metadata.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, error) {
	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.FromStorage(err, "failed to list students")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return students, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns a student.
func (s *StudentService) Get(ctx context.Context, id string) (*models.Student, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "student not found", "failed to load student")
	}
	return student, nil
}

// Create enrolls a new, active student.
func (s *StudentService) Create(ctx context.Context, req CreateStudentRequest) (*models.Student, error) {
	req.NationalID = strings.TrimSpace(req.NationalID)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid student payload")
	}
	exists, err := s.repo.ExistsByNationalID(ctx, req.NationalID, "")
	if err != nil {
		return nil, appErrors.FromStorage(err, "failed to validate national id")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "national id already registered")
	}
	student := &models.Student{
		FirstName:  strings.TrimSpace(req.FirstName),
		LastName:   strings.TrimSpace(req.LastName),
		NationalID: req.NationalID,
		GradeLevel: req.GradeLevel,
		Section:    req.Section,
		Active:     true,
	}
	if err := s.repo.Create(ctx, student); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "national id already registered")
		}
		return nil, appErrors.FromStorage(err, "failed to create student")
	}
	s.logger.Info("student enrolled", zap.String("student_id", student.ID), zap.String("grade_level", student.GradeLevel))
	return student, nil
}

// Deactivate withdraws a student. Grades and averages are kept; at-risk views drop the student.
func (s *StudentService) Deactivate(ctx context.Context, id string) error {
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return lookupError(err, "student not found", "failed to deactivate student")
	}
	s.cache.InvalidateRisk(ctx)
	s.logger.Info("student deactivated", zap.String("student_id", id))
	return nil
}
