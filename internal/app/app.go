// Package app wires configuration, storage, services and HTTP handlers into a runnable server.
package app

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-gradebook-api/internal/handler"
	"github.com/noah-isme/sma-gradebook-api/internal/repository"
	"github.com/noah-isme/sma-gradebook-api/internal/router"
	"github.com/noah-isme/sma-gradebook-api/internal/service"
	"github.com/noah-isme/sma-gradebook-api/pkg/cache"
	"github.com/noah-isme/sma-gradebook-api/pkg/config"
)

const cacheKeyPrefix = "gradebook"

// App holds the assembled server and the resources it must release.
type App struct {
	Engine *gin.Engine

	cfg      *config.Config
	logger   *zap.Logger
	storage  *storage
	cache    *repository.CacheRepository
	alerts   *service.AlertService
	averages *service.AverageService
}

// New builds every component. Redis is optional: when it cannot be reached caching is disabled.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	store, err := openStorage(ctx, cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	a := &App{cfg: cfg, logger: logger, storage: store}

	metrics := service.NewMetricsService()
	validate := validator.New()

	var cacheRepo service.CacheRepository
	if cfg.Cache.Enabled {
		client, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logger.Warn("redis unavailable, caching disabled", zap.Error(err))
		} else {
			a.cache = repository.NewCacheRepository(client, cacheKeyPrefix, logger)
			cacheRepo = a.cache
		}
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Cache.TTL, logger, cacheRepo != nil)

	alerts, err := service.NewAlertService(service.NewLogNotifier(logger), service.AlertConfig{
		Enabled:    cfg.Alerts.Enabled,
		Workers:    cfg.Alerts.Workers,
		MaxRetries: cfg.Alerts.MaxRetries,
		RetryDelay: cfg.Alerts.RetryDelay,
	}, metrics, logger)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.alerts = alerts

	auth := service.NewAuthService(service.AuthConfig{Secret: cfg.JWT.Secret, Expiration: cfg.JWT.Expiration})
	students := service.NewStudentService(store.students, cacheSvc, validate, logger)
	subjects := service.NewSubjectService(store.subjects, validate, logger)
	periods := service.NewPeriodService(store.periods, store.evalTypes, validate, logger)
	a.averages = service.NewAverageService(store.averages, cacheSvc, metrics, validate, logger)
	grades := service.NewGradeService(service.GradeServiceDeps{
		Grades:          store.grades,
		Students:        store.students,
		Subjects:        store.subjects,
		Periods:         store.periods,
		EvaluationTypes: store.evalTypes,
		Averages:        a.averages,
		Alerts:          alerts,
		Metrics:         metrics,
		Validator:       validate,
		Logger:          logger,
	}, service.GradeConfig{
		MinScore:        cfg.Grading.MinScore,
		MaxScore:        cfg.Grading.MaxScore,
		AtRiskThreshold: cfg.Grading.AtRiskThreshold,
	})
	risk := service.NewRiskService(store.periods, a.averages, cacheSvc, metrics, logger, cfg.Grading.AtRiskThreshold)

	checks := map[string]handler.ReadinessCheck{"database": store.ping}
	if a.cache != nil {
		checks["cache"] = a.cache.Ping
	}

	a.Engine = router.Setup(cfg, router.Handlers{
		Students: handler.NewStudentHandler(students, grades, a.averages, periods),
		Subjects: handler.NewSubjectHandler(subjects),
		Periods:  handler.NewPeriodHandler(periods),
		Grades:   handler.NewGradeHandler(grades),
		Averages: handler.NewAverageHandler(a.averages),
		Risk:     handler.NewRiskHandler(risk, periods),
		Metrics:  handler.NewMetricsHandler(metrics, alerts, checks),
	}, auth, metrics, logger)

	return a, nil
}

// Start launches background workers and, for freshly seeded storage, builds the average table.
func (a *App) Start(ctx context.Context) error {
	a.alerts.Start(ctx)
	if !a.storage.seeded {
		return nil
	}
	start := time.Now()
	rows, err := a.averages.RecomputeAll(ctx)
	if err != nil {
		return err
	}
	a.logger.Info("subject averages built", zap.Int("rows", rows), zap.Duration("took", time.Since(start)))
	return nil
}

// Close stops workers and releases connections.
func (a *App) Close() error {
	a.alerts.Stop()
	var errs []error
	if a.cache != nil {
		errs = append(errs, a.cache.Close())
	}
	if a.storage != nil {
		errs = append(errs, a.storage.close())
	}
	return errors.Join(errs...)
}
