package service

import (
	"context"
	"math"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-gradebook-api/internal/models"
	appErrors "github.com/noah-isme/sma-gradebook-api/pkg/errors"
)

type gradeEntryRepository interface {
	Upsert(ctx context.Context, entry *models.GradeEntry) error
	FindByKey(ctx context.Context, entry models.GradeEntry) (*models.GradeEntry, error)
	List(ctx context.Context, filter models.GradeFilter) ([]models.GradeEntry, error)
}

type studentLookup interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

type subjectLookup interface {
	FindByID(ctx context.Context, id string) (*models.Subject, error)
}

type evaluationTypeLookup interface {
	FindByID(ctx context.Context, id string) (*models.EvaluationType, error)
}

type averageMaintainer interface {
	Recompute(ctx context.Context, key models.AverageKey) (*models.SubjectAverage, error)
	GeneralAverage(ctx context.Context, studentID, periodID string) (float64, error)
}

type alertPublisher interface {
	Publish(alert models.AtRiskAlert) error
}

// RecordGradeRequest is the payload for recording a grade.
type RecordGradeRequest struct {
	StudentID        string    `json:"student_id" validate:"required"`
	SubjectID        string    `json:"subject_id" validate:"required"`
	TeacherID        string    `json:"teacher_id" validate:"required"`
	PeriodID         string    `json:"period_id" validate:"required"`
	EvaluationTypeID string    `json:"evaluation_type_id" validate:"required"`
	Score            float64   `json:"score"`
	EvaluatedOn      time.Time `json:"evaluated_on"`
	Notes            string    `json:"notes" validate:"max=500"`
}

// GradeConfig bounds accepted scores and sets the alert threshold.
type GradeConfig struct {
	MinScore        float64
	MaxScore        float64
	AtRiskThreshold float64
}

// GradeService records grade entries and keeps subject averages current.
type GradeService struct {
	grades    gradeEntryRepository
	students  studentLookup
	subjects  subjectLookup
	periods   periodLookup
	evalTypes evaluationTypeLookup
	averages  averageMaintainer
	alerts    alertPublisher
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	config    GradeConfig
	now       func() time.Time
}

// GradeServiceDeps groups the collaborators of GradeService.
type GradeServiceDeps struct {
	Grades          gradeEntryRepository
	Students        studentLookup
	Subjects        subjectLookup
	Periods         periodLookup
	EvaluationTypes evaluationTypeLookup
	Averages        averageMaintainer
	Alerts          alertPublisher
	Metrics         *MetricsService
	Validator       *validator.Validate
	Logger          *zap.Logger
}

// NewGradeService constructs GradeService.
func NewGradeService(deps GradeServiceDeps, cfg GradeConfig) *GradeService {
	if deps.Validator == nil {
		deps.Validator = validator.New()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if cfg.MaxScore <= cfg.MinScore {
		cfg.MinScore, cfg.MaxScore = 1.0, 10.0
	}
	if cfg.AtRiskThreshold <= 0 {
		cfg.AtRiskThreshold = 6.0
	}
	return &GradeService{
		grades:    deps.Grades,
		students:  deps.Students,
		subjects:  deps.Subjects,
		periods:   deps.Periods,
		evalTypes: deps.EvaluationTypes,
		averages:  deps.Averages,
		alerts:    deps.Alerts,
		metrics:   deps.Metrics,
		validator: deps.Validator,
		logger:    deps.Logger,
		config:    cfg,
		now:       time.Now,
	}
}

// RecordGrade validates and stores a grade, then refreshes the matching subject average.
// Rejected scores never reach storage.
func (s *GradeService) RecordGrade(ctx context.Context, req RecordGradeRequest) (*models.GradeRecordResult, error) {
	if err := s.validator.Struct(req); err != nil {
		s.metrics.RecordGrade("rejected")
		return nil, validationError(err, "invalid grade payload")
	}
	if math.IsNaN(req.Score) || req.Score < s.config.MinScore || req.Score > s.config.MaxScore {
		s.metrics.RecordGrade("rejected")
		return nil, appErrors.Clone(appErrors.ErrInvalidScore, "score must be between "+formatScore(s.config.MinScore)+" and "+formatScore(s.config.MaxScore))
	}

	student, err := s.students.FindByID(ctx, req.StudentID)
	if err != nil {
		return nil, lookupError(err, "student not found", "failed to load student")
	}
	if !student.Active {
		s.metrics.RecordGrade("rejected")
		return nil, appErrors.Clone(appErrors.ErrValidation, "student is not active")
	}
	if _, err := s.subjects.FindByID(ctx, req.SubjectID); err != nil {
		return nil, lookupError(err, "subject not found", "failed to load subject")
	}
	if _, err := s.periods.FindByID(ctx, req.PeriodID); err != nil {
		return nil, lookupError(err, "grading period not found", "failed to load period")
	}
	if _, err := s.evalTypes.FindByID(ctx, req.EvaluationTypeID); err != nil {
		return nil, lookupError(err, "evaluation type not found", "failed to load evaluation type")
	}

	evaluatedOn := req.EvaluatedOn
	if evaluatedOn.IsZero() {
		evaluatedOn = s.now()
	}
	entry := &models.GradeEntry{
		StudentID:        req.StudentID,
		SubjectID:        req.SubjectID,
		TeacherID:        req.TeacherID,
		PeriodID:         req.PeriodID,
		EvaluationTypeID: req.EvaluationTypeID,
		Score:            roundScore(req.Score),
		EvaluatedOn:      evaluatedOn.UTC().Truncate(24 * time.Hour),
		Notes:            req.Notes,
	}
	if err := s.grades.Upsert(ctx, entry); err != nil {
		s.metrics.RecordGrade("failed")
		return nil, appErrors.FromStorage(err, "failed to record grade")
	}
	stored, err := s.grades.FindByKey(ctx, *entry)
	if err != nil {
		s.metrics.RecordGrade("failed")
		return nil, appErrors.FromStorage(err, "failed to reload grade")
	}
	s.metrics.RecordGrade("ok")

	result := &models.GradeRecordResult{Entry: *stored}
	avg, err := s.averages.Recompute(ctx, models.AverageKey{StudentID: stored.StudentID, SubjectID: stored.SubjectID, PeriodID: stored.PeriodID})
	if err != nil {
		s.logger.Error("average recompute failed after grade write", zap.String("grade_id", stored.ID), zap.Error(err))
		return nil, err
	}
	result.SubjectAverage = avg

	s.logger.Info("grade recorded",
		zap.String("grade_id", stored.ID),
		zap.String("student_id", stored.StudentID),
		zap.String("subject_id", stored.SubjectID),
		zap.Float64("score", stored.Score),
		zap.Float64("subject_average", avg.Average),
	)

	if !avg.Cached {
		return result, nil
	}
	general, err := s.averages.GeneralAverage(ctx, stored.StudentID, stored.PeriodID)
	if err != nil {
		s.logger.Warn("general average unavailable, skipping alert check", zap.String("student_id", stored.StudentID), zap.Error(err))
		return result, nil
	}
	result.GeneralAverage = &general
	if general < s.config.AtRiskThreshold {
		result.AtRisk = true
		s.publishAlert(student, stored, general)
	}
	return result, nil
}

func (s *GradeService) publishAlert(student *models.Student, entry *models.GradeEntry, general float64) {
	if s.alerts == nil {
		return
	}
	alert := models.AtRiskAlert{
		StudentID:      student.ID,
		StudentName:    student.FullName(),
		GradeLevel:     student.GradeLevel,
		Section:        student.Section,
		PeriodID:       entry.PeriodID,
		SubjectID:      entry.SubjectID,
		GeneralAverage: general,
		Threshold:      s.config.AtRiskThreshold,
		Category:       Classify(general),
		RaisedAt:       s.now().UTC(),
	}
	if err := s.alerts.Publish(alert); err != nil {
		s.logger.Warn("at-risk alert not queued", zap.String("student_id", student.ID), zap.Error(err))
	}
}

// GradesForStudent lists the student's grades, optionally limited to one period.
func (s *GradeService) GradesForStudent(ctx context.Context, studentID, periodID string) ([]models.GradeEntry, error) {
	if _, err := s.students.FindByID(ctx, studentID); err != nil {
		return nil, lookupError(err, "student not found", "failed to load student")
	}
	entries, err := s.grades.List(ctx, models.GradeFilter{StudentID: studentID, PeriodID: periodID})
	if err != nil {
		return nil, appErrors.FromStorage(err, "failed to list grades")
	}
	return entries, nil
}

// roundScore keeps two decimals, the precision of the score column.
func roundScore(v float64) float64 {
	return math.Round(v*100) / 100
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
