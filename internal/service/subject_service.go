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

type subjectRepository interface {
	List(ctx context.Context, filter models.SubjectFilter) ([]models.Subject, error)
	FindByID(ctx context.Context, id string) (*models.Subject, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
	Create(ctx context.Context, subject *models.Subject) error
}

// CreateSubjectRequest is the payload for creating subjects.
type CreateSubjectRequest struct {
	Name       string  `json:"name" validate:"required,max=100"`
	Code       string  `json:"code" validate:"required,max=20"`
	GradeLevel string  `json:"grade_level" validate:"required"`
	Section    string  `json:"section" validate:"required"`
	TeacherID  *string `json:"teacher_id"`
}

// SubjectService manages subjects.
type SubjectService struct {
	repo      subjectRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSubjectService creates SubjectService.
func NewSubjectService(repo subjectRepository, validate *validator.Validate, logger *zap.Logger) *SubjectService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubjectService{repo: repo, validator: validate, logger: logger}
}

// List returns subjects for the filter.
func (s *SubjectService) List(ctx context.Context, filter models.SubjectFilter) ([]models.Subject, error) {
	subjects, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.FromStorage(err, "failed to list subjects")
	}
	return subjects, nil
}

// Get returns a subject.
func (s *SubjectService) Get(ctx context.Context, id string) (*models.Subject, error) {
	subject, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "subject not found", "failed to load subject")
	}
	return subject, nil
}

// Create registers a subject with a unique code.
func (s *SubjectService) Create(ctx context.Context, req CreateSubjectRequest) (*models.Subject, error) {
	req.Code = strings.ToUpper(strings.TrimSpace(req.Code))
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid subject payload")
	}
	exists, err := s.repo.ExistsByCode(ctx, req.Code)
	if err != nil {
		return nil, appErrors.FromStorage(err, "failed to validate subject code")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "subject code already exists")
	}
	subject := &models.Subject{
		Name:       strings.TrimSpace(req.Name),
		Code:       req.Code,
		GradeLevel: req.GradeLevel,
		Section:    req.Section,
		TeacherID:  req.TeacherID,
	}
	if err := s.repo.Create(ctx, subject); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "subject code already exists")
		}
		return nil, appErrors.FromStorage(err, "failed to create subject")
	}
	return subject, nil
}
