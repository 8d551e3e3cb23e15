package app

import (
	"context"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-gradebook-api/internal/models"
	"github.com/noah-isme/sma-gradebook-api/internal/repository"
	"github.com/noah-isme/sma-gradebook-api/internal/repository/memory"
	"github.com/noah-isme/sma-gradebook-api/pkg/config"
	"github.com/noah-isme/sma-gradebook-api/pkg/database"
)

type studentStore interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	ExistsByNationalID(ctx context.Context, nationalID, excludeID string) (bool, error)
	Create(ctx context.Context, student *models.Student) error
	Deactivate(ctx context.Context, id string) error
}

type subjectStore interface {
	List(ctx context.Context, filter models.SubjectFilter) ([]models.Subject, error)
	FindByID(ctx context.Context, id string) (*models.Subject, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
	Create(ctx context.Context, subject *models.Subject) error
}

type periodStore interface {
	List(ctx context.Context) ([]models.GradingPeriod, error)
	ListActive(ctx context.Context) ([]models.GradingPeriod, error)
	FindByID(ctx context.Context, id string) (*models.GradingPeriod, error)
	Create(ctx context.Context, period *models.GradingPeriod) error
}

type evaluationTypeStore interface {
	List(ctx context.Context) ([]models.EvaluationType, error)
	FindByID(ctx context.Context, id string) (*models.EvaluationType, error)
	Create(ctx context.Context, evalType *models.EvaluationType) error
}

type gradeStore interface {
	Upsert(ctx context.Context, entry *models.GradeEntry) error
	FindByKey(ctx context.Context, entry models.GradeEntry) (*models.GradeEntry, error)
	List(ctx context.Context, filter models.GradeFilter) ([]models.GradeEntry, error)
}

type averageStore interface {
	Compute(ctx context.Context, key models.AverageKey) (*models.SubjectAverage, error)
	Aggregate(ctx context.Context) ([]models.SubjectAverage, error)
	Upsert(ctx context.Context, avg *models.SubjectAverage) error
	Delete(ctx context.Context, key models.AverageKey) error
	ReplaceAll(ctx context.Context, rows []models.SubjectAverage) (int, error)
	ListByStudent(ctx context.Context, studentID, periodID string) ([]models.SubjectAverage, error)
	GeneralAverages(ctx context.Context, periodID string) ([]models.StudentGeneralAverage, error)
}

// storage is one backend's full set of repositories.
type storage struct {
	students  studentStore
	subjects  subjectStore
	periods   periodStore
	evalTypes evaluationTypeStore
	grades    gradeStore
	averages  averageStore

	ping  func(ctx context.Context) error
	close func() error
	// seeded reports whether sample data was loaded and averages need a rebuild.
	seeded bool
}

func openStorage(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*storage, error) {
	if cfg.Driver == config.DriverMemory {
		return memoryStorage(ctx, cfg.SeedSample, logger)
	}

	db, err := database.Open(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.AutoMigrate {
		if err := database.RunMigrations(db, logger); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	logger.Info("database connected", zap.String("driver", cfg.Driver), zap.String("host", cfg.Host), zap.String("name", cfg.Name))
	return sqlStorage(db), nil
}

func sqlStorage(db *sqlx.DB) *storage {
	return &storage{
		students:  repository.NewStudentRepository(db),
		subjects:  repository.NewSubjectRepository(db),
		periods:   repository.NewPeriodRepository(db),
		evalTypes: repository.NewEvaluationTypeRepository(db),
		grades:    repository.NewGradeEntryRepository(db),
		averages:  repository.NewSubjectAverageRepository(db),
		ping:      db.PingContext,
		close:     db.Close,
	}
}

func memoryStorage(ctx context.Context, seed bool, logger *zap.Logger) (*storage, error) {
	store := memory.NewStore()
	if seed {
		if err := memory.Seed(ctx, store); err != nil {
			return nil, err
		}
		logger.Info("sample data loaded into memory store")
	}
	return &storage{
		students:  memory.NewStudentRepository(store),
		subjects:  memory.NewSubjectRepository(store),
		periods:   memory.NewPeriodRepository(store),
		evalTypes: memory.NewEvaluationTypeRepository(store),
		grades:    memory.NewGradeEntryRepository(store),
		averages:  memory.NewSubjectAverageRepository(store),
		ping:      func(context.Context) error { return store.Ping() },
		close:     func() error { return nil },
		seeded:    seed,
	}, nil
}
