package service

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-gradebook-api/internal/models"
	"github.com/noah-isme/sma-gradebook-api/internal/repository"
	appErrors "github.com/noah-isme/sma-gradebook-api/pkg/errors"
)

type subjectAverageRepository interface {
	Compute(ctx context.Context, key models.AverageKey) (*models.SubjectAverage, error)
	Aggregate(ctx context.Context) ([]models.SubjectAverage, error)
	Upsert(ctx context.Context, avg *models.SubjectAverage) error
	Delete(ctx context.Context, key models.AverageKey) error
	ReplaceAll(ctx context.Context, rows []models.SubjectAverage) (int, error)
	ListByStudent(ctx context.Context, studentID, periodID string) ([]models.SubjectAverage, error)
	GeneralAverages(ctx context.Context, periodID string) ([]models.StudentGeneralAverage, error)
}

// roundAverage rounds half-to-even at two decimals.
func roundAverage(v float64) float64 {
	return math.RoundToEven(v*100) / 100
}

// AverageService is the only writer of the subject average table.
// Reactive recomputes and full rebuilds are serialized by mu.
type AverageService struct {
	repo      subjectAverageRepository
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	mu        sync.Mutex
}

// NewAverageService constructs AverageService.
func NewAverageService(repo subjectAverageRepository, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *AverageService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AverageService{repo: repo, cache: cache, metrics: metrics, validator: validate, logger: logger}
}

// Recompute refreshes one (student, subject, period) row from its grade entries.
// When the average table is missing the computed value is returned with Cached=false.
func (s *AverageService) Recompute(ctx context.Context, key models.AverageKey) (*models.SubjectAverage, error) {
	if err := s.validator.Struct(key); err != nil {
		return nil, validationError(err, "student, subject and period are required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	start := time.Now()
	defer func() { s.metrics.ObserveRecompute("key", time.Since(start)) }()

	avg, err := s.repo.Compute(ctx, key)
	if err != nil {
		return nil, appErrors.FromStorage(err, "failed to compute subject average")
	}
	if avg.GradeCount == 0 {
		if err := s.repo.Delete(ctx, key); err != nil && !errors.Is(err, repository.ErrAverageTableMissing) {
			return nil, appErrors.FromStorage(err, "failed to remove stale subject average")
		}
		s.cache.InvalidateStudent(ctx, key.StudentID, key.PeriodID)
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no grades recorded for student, subject and period")
	}

	avg.Average = roundAverage(avg.Average)
	avg.Category = Classify(avg.Average)
	avg.UpdatedAt = time.Now().UTC()
	if err := s.repo.Upsert(ctx, avg); err != nil {
		if errors.Is(err, repository.ErrAverageTableMissing) {
			s.logger.Warn("subject average table missing, returning uncached average",
				zap.String("student_id", key.StudentID),
				zap.String("subject_id", key.SubjectID),
				zap.String("period_id", key.PeriodID),
			)
			avg.Cached = false
			return avg, nil
		}
		return nil, appErrors.FromStorage(err, "failed to store subject average")
	}
	avg.Cached = true
	s.cache.InvalidateStudent(ctx, key.StudentID, key.PeriodID)
	s.logger.Debug("subject average recomputed",
		zap.String("student_id", key.StudentID),
		zap.String("subject_id", key.SubjectID),
		zap.String("period_id", key.PeriodID),
		zap.Float64("average", avg.Average),
		zap.Int("grade_count", avg.GradeCount),
	)
	return avg, nil
}

// RecomputeAll rebuilds the whole average table in one transaction and returns the rows written.
func (s *AverageService) RecomputeAll(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	start := time.Now()

	rows, err := s.repo.Aggregate(ctx)
	if err != nil {
		return 0, appErrors.FromStorage(err, "failed to aggregate grade entries")
	}
	now := time.Now().UTC()
	for i := range rows {
		rows[i].Average = roundAverage(rows[i].Average)
		rows[i].UpdatedAt = now
	}
	written, err := s.repo.ReplaceAll(ctx, rows)
	if err != nil {
		if errors.Is(err, repository.ErrAverageTableMissing) {
			return 0, appErrors.Wrap(err, appErrors.ErrStorageUnavailable.Code, appErrors.ErrStorageUnavailable.Status, "subject average table missing, run migrations")
		}
		return 0, appErrors.FromStorage(err, "failed to rebuild subject averages")
	}

	s.cache.InvalidateAll(ctx)
	s.metrics.ObserveRecompute("all", time.Since(start))
	s.metrics.SetAverageRows(written)
	s.logger.Info("subject averages rebuilt", zap.Int("rows", written), zap.Duration("took", time.Since(start)))
	return written, nil
}

// SubjectAverages returns the student's report card for the period.
func (s *AverageService) SubjectAverages(ctx context.Context, studentID, periodID string) (*models.ReportCard, error) {
	var card models.ReportCard
	generation := s.cache.Generation()
	if s.cache.Get(ctx, subjectAveragesKey(studentID, periodID), &card) {
		return &card, nil
	}
	rows, err := s.subjectRows(ctx, studentID, periodID)
	if err != nil {
		return nil, err
	}
	general := meanOfAverages(rows)
	card = models.ReportCard{
		StudentID:      studentID,
		PeriodID:       periodID,
		Subjects:       rows,
		GeneralAverage: general,
		Category:       Classify(general),
	}
	s.cache.SetIfCurrent(ctx, subjectAveragesKey(studentID, periodID), card, generation)
	return &card, nil
}

// GeneralAverage is the unweighted mean of the student's subject averages in the period.
func (s *AverageService) GeneralAverage(ctx context.Context, studentID, periodID string) (float64, error) {
	var cached float64
	generation := s.cache.Generation()
	if s.cache.Get(ctx, generalAverageKey(studentID, periodID), &cached) {
		return cached, nil
	}
	rows, err := s.subjectRows(ctx, studentID, periodID)
	if err != nil {
		return 0, err
	}
	general := meanOfAverages(rows)
	s.cache.SetIfCurrent(ctx, generalAverageKey(studentID, periodID), general, generation)
	return general, nil
}

// GeneralAverages lists general averages of active students in the period, lowest first.
func (s *AverageService) GeneralAverages(ctx context.Context, periodID string) ([]models.StudentGeneralAverage, error) {
	rows, err := s.repo.GeneralAverages(ctx, periodID)
	if err != nil {
		return nil, averageReadError(err, "failed to load general averages")
	}
	for i := range rows {
		rows[i].GeneralAverage = roundAverage(rows[i].GeneralAverage)
		rows[i].Category = Classify(rows[i].GeneralAverage)
	}
	return rows, nil
}

func (s *AverageService) subjectRows(ctx context.Context, studentID, periodID string) ([]models.SubjectAverage, error) {
	if studentID == "" || periodID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "student and period are required")
	}
	rows, err := s.repo.ListByStudent(ctx, studentID, periodID)
	if err != nil {
		return nil, averageReadError(err, "failed to load subject averages")
	}
	if len(rows) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no averages for student in period")
	}
	for i := range rows {
		rows[i].Category = Classify(rows[i].Average)
		rows[i].Cached = true
	}
	return rows, nil
}

func meanOfAverages(rows []models.SubjectAverage) float64 {
	var sum float64
	for _, r := range rows {
		sum += r.Average
	}
	return roundAverage(sum / float64(len(rows)))
}

func averageReadError(err error, message string) error {
	if errors.Is(err, repository.ErrAverageTableMissing) {
		return appErrors.Wrap(err, appErrors.ErrStorageUnavailable.Code, appErrors.ErrStorageUnavailable.Status, "subject average table missing, run migrations")
	}
	return appErrors.FromStorage(err, message)
}
