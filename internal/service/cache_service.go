package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/noah-isme/sma-gradebook-api/pkg/errors"
)

// CacheRepository abstracts persistence for cached read models.
type CacheRepository interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

func generalAverageKey(studentID, periodID string) string {
	return fmt.Sprintf("avg:general:%s:%s", periodID, studentID)
}

func subjectAveragesKey(studentID, periodID string) string {
	return fmt.Sprintf("avg:subjects:%s:%s", periodID, studentID)
}

func atRiskKey(periodID string, threshold float64) string {
	return "risk:list:" + periodID + ":" + strconv.FormatFloat(threshold, 'g', -1, 64)
}

func distributionKey(periodID string) string {
	return fmt.Sprintf("risk:dist:%s", periodID)
}

// CacheService fronts read models with Redis and records cache metrics.
// Every method is a no-op when caching is disabled.
//
// Each invalidation bumps a generation counter. Readers capture it with Generation before
// loading from storage and store through SetIfCurrent, so a value computed before a write
// is never stored after that write's invalidation.
type CacheService struct {
	repo       CacheRepository
	metrics    *MetricsService
	defaultTTL time.Duration
	logger     *zap.Logger
	enabled    bool

	mu         sync.Mutex
	generation uint64
}

// NewCacheService constructs a cache service.
func NewCacheService(repo CacheRepository, metrics *MetricsService, defaultTTL time.Duration, logger *zap.Logger, enabled bool) *CacheService {
	if defaultTTL <= 0 {
		defaultTTL = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{repo: repo, metrics: metrics, defaultTTL: defaultTTL, logger: logger, enabled: enabled}
}

// Enabled indicates whether caching is active.
func (s *CacheService) Enabled() bool {
	return s != nil && s.enabled && s.repo != nil
}

// Get loads key into dest and reports a hit. Backend failures count as misses.
func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) bool {
	if !s.Enabled() {
		return false
	}
	start := time.Now()
	err := s.repo.Get(ctx, key, dest)
	s.metrics.RecordCacheOperation(err == nil, time.Since(start))
	if err != nil && !errors.Is(err, appErrors.ErrCacheMiss) {
		s.logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
	}
	return err == nil
}

// Generation returns the current invalidation generation.
func (s *CacheService) Generation() uint64 {
	if !s.Enabled() {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// SetIfCurrent stores value only when no invalidation happened since generation was read.
func (s *CacheService) SetIfCurrent(ctx context.Context, key string, value interface{}, generation uint64) bool {
	if !s.Enabled() {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != generation {
		s.logger.Debug("skipping stale cache fill", zap.String("key", key))
		return false
	}
	s.store(ctx, key, value)
	return true
}

// Set stores value under key. Failures are logged, never returned.
func (s *CacheService) Set(ctx context.Context, key string, value interface{}) {
	if !s.Enabled() {
		return
	}
	s.store(ctx, key, value)
}

func (s *CacheService) store(ctx context.Context, key string, value interface{}) {
	start := time.Now()
	err := s.repo.Set(ctx, key, value, s.defaultTTL)
	s.metrics.ObserveCacheWrite(time.Since(start))
	if err != nil {
		s.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
}

// InvalidateStudent drops the cached averages of one student plus the period-wide risk views.
func (s *CacheService) InvalidateStudent(ctx context.Context, studentID, periodID string) {
	if !s.Enabled() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	if err := s.repo.Delete(ctx, generalAverageKey(studentID, periodID), subjectAveragesKey(studentID, periodID), distributionKey(periodID)); err != nil {
		s.logger.Warn("cache invalidate failed", zap.String("student_id", studentID), zap.Error(err))
	}
	if err := s.repo.DeleteByPattern(ctx, "risk:list:"+periodID+":*"); err != nil {
		s.logger.Warn("cache invalidate failed", zap.String("period_id", periodID), zap.Error(err))
	}
}

// InvalidateRisk drops the at-risk lists and distributions of every period.
func (s *CacheService) InvalidateRisk(ctx context.Context) {
	s.invalidatePatterns(ctx, "risk:*")
}

// InvalidateAll drops every cached read model.
func (s *CacheService) InvalidateAll(ctx context.Context) {
	s.invalidatePatterns(ctx, "avg:*", "risk:*")
}

func (s *CacheService) invalidatePatterns(ctx context.Context, patterns ...string) {
	if !s.Enabled() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	for _, pattern := range patterns {
		if err := s.repo.DeleteByPattern(ctx, pattern); err != nil {
			s.logger.Warn("cache invalidate failed", zap.String("pattern", pattern), zap.Error(err))
		}
	}
}
