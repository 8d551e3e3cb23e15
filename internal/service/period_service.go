package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-gradebook-api/internal/models"
	"github.com/noah-isme/sma-gradebook-api/internal/repository"
	appErrors "github.com/noah-isme/sma-gradebook-api/pkg/errors"
)

type periodRepository interface {
	List(ctx context.Context) ([]models.GradingPeriod, error)
	ListActive(ctx context.Context) ([]models.GradingPeriod, error)
	FindByID(ctx context.Context, id string) (*models.GradingPeriod, error)
	Create(ctx context.Context, period *models.GradingPeriod) error
}

type evaluationTypeRepository interface {
	List(ctx context.Context) ([]models.EvaluationType, error)
	FindByID(ctx context.Context, id string) (*models.EvaluationType, error)
	Create(ctx context.Context, evalType *models.EvaluationType) error
}

// CreatePeriodRequest is the payload for creating grading periods.
type CreatePeriodRequest struct {
	Name      string    `json:"name" validate:"required,max=50"`
	StartDate time.Time `json:"start_date" validate:"required"`
	EndDate   time.Time `json:"end_date" validate:"required"`
	Active    bool      `json:"active"`
}

// CreateEvaluationTypeRequest is the payload for creating evaluation types.
type CreateEvaluationTypeRequest struct {
	Name   string  `json:"name" validate:"required,max=50"`
	Weight float64 `json:"weight" validate:"gte=0,lte=100"`
}

// PeriodService manages grading periods and evaluation types.
type PeriodService struct {
	periods   periodRepository
	evalTypes evaluationTypeRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPeriodService constructs PeriodService.
func NewPeriodService(periods periodRepository, evalTypes evaluationTypeRepository, validate *validator.Validate, logger *zap.Logger) *PeriodService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PeriodService{periods: periods, evalTypes: evalTypes, validator: validate, logger: logger}
}

// List returns all periods, most recent first.
func (s *PeriodService) List(ctx context.Context) ([]models.GradingPeriod, error) {
	periods, err := s.periods.List(ctx)
	if err != nil {
		return nil, appErrors.FromStorage(err, "failed to list periods")
	}
	return periods, nil
}

// Get returns a period.
func (s *PeriodService) Get(ctx context.Context, id string) (*models.GradingPeriod, error) {
	period, err := s.periods.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "grading period not found", "failed to load period")
	}
	return period, nil
}

// Active returns the active period with the latest start date.
func (s *PeriodService) Active(ctx context.Context) (*models.GradingPeriod, error) {
	periods, err := s.periods.ListActive(ctx)
	if err != nil {
		return nil, appErrors.FromStorage(err, "failed to load active period")
	}
	if len(periods) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no active grading period")
	}
	if len(periods) > 1 {
		ids := make([]string, len(periods))
		for i, p := range periods {
			ids[i] = p.ID
		}
		s.logger.Warn("multiple active grading periods", zap.Strings("period_ids", ids), zap.String("selected", periods[0].ID))
	}
	active := periods[0]
	return &active, nil
}

// Create registers a grading period.
func (s *PeriodService) Create(ctx context.Context, req CreatePeriodRequest) (*models.GradingPeriod, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid period payload")
	}
	if req.EndDate.Before(req.StartDate) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end date precedes start date")
	}
	period := &models.GradingPeriod{
		Name:      req.Name,
		StartDate: req.StartDate.UTC().Truncate(24 * time.Hour),
		EndDate:   req.EndDate.UTC().Truncate(24 * time.Hour),
		Active:    req.Active,
	}
	if err := s.periods.Create(ctx, period); err != nil {
		return nil, appErrors.FromStorage(err, "failed to create period")
	}
	return period, nil
}

// EvaluationTypes lists evaluation types.
func (s *PeriodService) EvaluationTypes(ctx context.Context) ([]models.EvaluationType, error) {
	types, err := s.evalTypes.List(ctx)
	if err != nil {
		return nil, appErrors.FromStorage(err, "failed to list evaluation types")
	}
	return types, nil
}

// CreateEvaluationType registers an evaluation type.
func (s *PeriodService) CreateEvaluationType(ctx context.Context, req CreateEvaluationTypeRequest) (*models.EvaluationType, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid evaluation type payload")
	}
	evalType := &models.EvaluationType{Name: req.Name, Weight: req.Weight}
	if err := s.evalTypes.Create(ctx, evalType); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "evaluation type name already exists")
		}
		return nil, appErrors.FromStorage(err, "failed to create evaluation type")
	}
	return evalType, nil
}
