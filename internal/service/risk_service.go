package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-gradebook-api/internal/models"
	appErrors "github.com/noah-isme/sma-gradebook-api/pkg/errors"
	"github.com/noah-isme/sma-gradebook-api/pkg/export"
)

// Classify maps an average to its category. Lower bounds are inclusive; NaN is At-Risk.
func Classify(average float64) models.RiskCategory {
	switch {
	case average >= 9.0:
		return models.CategoryExcellent
	case average >= 8.0:
		return models.CategoryVeryGood
	case average >= 7.0:
		return models.CategoryGood
	case average >= 6.0:
		return models.CategoryRegular
	default:
		return models.CategoryAtRisk
	}
}

type periodLookup interface {
	FindByID(ctx context.Context, id string) (*models.GradingPeriod, error)
}

type generalAverageSource interface {
	GeneralAverages(ctx context.Context, periodID string) ([]models.StudentGeneralAverage, error)
}

// RiskService finds students whose general average falls below a threshold.
type RiskService struct {
	periods          periodLookup
	averages         generalAverageSource
	cache            *CacheService
	metrics          *MetricsService
	logger           *zap.Logger
	defaultThreshold float64
}

// NewRiskService constructs RiskService. defaultThreshold applies when callers pass zero.
func NewRiskService(periods periodLookup, averages generalAverageSource, cache *CacheService, metrics *MetricsService, logger *zap.Logger, defaultThreshold float64) *RiskService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if defaultThreshold <= 0 {
		defaultThreshold = 6.0
	}
	return &RiskService{periods: periods, averages: averages, cache: cache, metrics: metrics, logger: logger, defaultThreshold: defaultThreshold}
}

// DefaultThreshold returns the configured at-risk threshold.
func (s *RiskService) DefaultThreshold() float64 {
	return s.defaultThreshold
}

// FindAtRisk returns active students with a general average strictly below threshold,
// lowest first with ties broken by name. Students without averages are not listed.
func (s *RiskService) FindAtRisk(ctx context.Context, periodID string, threshold float64) ([]models.StudentGeneralAverage, error) {
	if threshold == 0 {
		threshold = s.defaultThreshold
	}
	if math.IsNaN(threshold) || threshold < 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "threshold must be a non-negative number")
	}
	if err := s.ensurePeriod(ctx, periodID); err != nil {
		return nil, err
	}

	var cached []models.StudentGeneralAverage
	generation := s.cache.Generation()
	if s.cache.Get(ctx, atRiskKey(periodID, threshold), &cached) {
		return cached, nil
	}

	all, err := s.averages.GeneralAverages(ctx, periodID)
	if err != nil {
		return nil, err
	}
	atRisk := make([]models.StudentGeneralAverage, 0)
	for _, row := range all {
		if row.GeneralAverage < threshold {
			atRisk = append(atRisk, row)
		}
	}
	sort.SliceStable(atRisk, func(i, j int) bool {
		a, b := atRisk[i], atRisk[j]
		if a.GeneralAverage != b.GeneralAverage {
			return a.GeneralAverage < b.GeneralAverage
		}
		if a.LastName != b.LastName {
			return a.LastName < b.LastName
		}
		return a.FirstName < b.FirstName
	})

	s.metrics.SetAtRisk(periodID, len(atRisk))
	s.cache.SetIfCurrent(ctx, atRiskKey(periodID, threshold), atRisk, generation)
	s.logger.Debug("at-risk lookup", zap.String("period_id", periodID), zap.Float64("threshold", threshold), zap.Int("students", len(atRisk)))
	return atRisk, nil
}

// Distribution counts students per category in the period.
func (s *RiskService) Distribution(ctx context.Context, periodID string) (*models.RiskDistribution, error) {
	if err := s.ensurePeriod(ctx, periodID); err != nil {
		return nil, err
	}
	var dist models.RiskDistribution
	generation := s.cache.Generation()
	if s.cache.Get(ctx, distributionKey(periodID), &dist) {
		return &dist, nil
	}
	rows, err := s.averages.GeneralAverages(ctx, periodID)
	if err != nil {
		return nil, err
	}
	counts := make(map[models.RiskCategory]int, len(models.Categories))
	for _, row := range rows {
		counts[Classify(row.GeneralAverage)]++
	}
	dist = models.RiskDistribution{PeriodID: periodID, Total: len(rows), Buckets: make([]models.CategoryCount, 0, len(models.Categories))}
	for _, category := range models.Categories {
		dist.Buckets = append(dist.Buckets, models.CategoryCount{Category: category, Students: counts[category]})
	}
	s.cache.SetIfCurrent(ctx, distributionKey(periodID), dist, generation)
	return &dist, nil
}

// ExportAtRisk renders the at-risk list as CSV or PDF.
func (s *RiskService) ExportAtRisk(ctx context.Context, periodID string, threshold float64, format export.Format) (*export.File, error) {
	if threshold == 0 {
		threshold = s.defaultThreshold
	}
	students, err := s.FindAtRisk(ctx, periodID, threshold)
	if err != nil {
		return nil, err
	}
	period, err := s.periods.FindByID(ctx, periodID)
	if err != nil {
		return nil, lookupError(err, "grading period not found", "failed to load period")
	}

	data := export.Dataset{
		Title:    "At-risk students",
		Subtitle: fmt.Sprintf("%s - general average below %.2f - generated %s", period.Name, threshold, time.Now().UTC().Format("2006-01-02")),
		Columns: []export.Column{
			{Key: "rank", Title: "#", Numeric: true},
			{Key: "name", Title: "Student"},
			{Key: "grade", Title: "Grade"},
			{Key: "section", Title: "Section"},
			{Key: "average", Title: "General average", Numeric: true},
			{Key: "subjects", Title: "Subjects", Numeric: true},
		},
		Rows: make([]map[string]string, 0, len(students)),
	}
	for i, st := range students {
		data.Rows = append(data.Rows, map[string]string{
			"rank":     strconv.Itoa(i + 1),
			"name":     st.LastName + ", " + st.FirstName,
			"grade":    st.GradeLevel,
			"section":  st.Section,
			"average":  strconv.FormatFloat(st.GeneralAverage, 'f', 2, 64),
			"subjects": strconv.Itoa(st.SubjectCount),
		})
	}
	file, err := export.Render(format, "at-risk-"+periodID, data)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	return file, nil
}

func (s *RiskService) ensurePeriod(ctx context.Context, periodID string) error {
	if periodID == "" {
		return appErrors.Clone(appErrors.ErrValidation, "periodId is required")
	}
	if _, err := s.periods.FindByID(ctx, periodID); err != nil {
		return lookupError(err, "grading period not found", "failed to load period")
	}
	return nil
}
