package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-gradebook-api/internal/models"
	"github.com/noah-isme/sma-gradebook-api/internal/repository/memory"
)

type gradebookFixture struct {
	store     *memory.Store
	students  *memory.StudentRepository
	subjects  *memory.SubjectRepository
	periods   *memory.PeriodRepository
	evalTypes *memory.EvaluationTypeRepository
	grades    *memory.GradeEntryRepository
	averages  *memory.SubjectAverageRepository

	averageSvc *AverageService
	gradeSvc   *GradeService
	riskSvc    *RiskService
	alerts     *recordingPublisher

	period   models.GradingPeriod
	exam     models.EvaluationType
	homework models.EvaluationType
	quiz     models.EvaluationType
	math     models.Subject
	lang     models.Subject
}

type recordingPublisher struct {
	mu     sync.Mutex
	alerts []models.AtRiskAlert
	err    error
}

func (p *recordingPublisher) Publish(alert models.AtRiskAlert) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.alerts = append(p.alerts, alert)
	return nil
}

func (p *recordingPublisher) published() []models.AtRiskAlert {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]models.AtRiskAlert(nil), p.alerts...)
}

func newGradebookFixture(t *testing.T) *gradebookFixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	f := &gradebookFixture{
		store:     store,
		students:  memory.NewStudentRepository(store),
		subjects:  memory.NewSubjectRepository(store),
		periods:   memory.NewPeriodRepository(store),
		evalTypes: memory.NewEvaluationTypeRepository(store),
		grades:    memory.NewGradeEntryRepository(store),
		averages:  memory.NewSubjectAverageRepository(store),
		alerts:    &recordingPublisher{},
	}

	f.period = models.GradingPeriod{Name: "Term 1", StartDate: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), EndDate: time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC), Active: true}
	require.NoError(t, f.periods.Create(ctx, &f.period))
	f.exam = models.EvaluationType{Name: "Exam", Weight: 40}
	f.homework = models.EvaluationType{Name: "Homework", Weight: 30}
	f.quiz = models.EvaluationType{Name: "Quiz", Weight: 30}
	for _, et := range []*models.EvaluationType{&f.exam, &f.homework, &f.quiz} {
		require.NoError(t, f.evalTypes.Create(ctx, et))
	}
	f.math = models.Subject{Name: "Mathematics", Code: "MAT", GradeLevel: "10", Section: "A"}
	f.lang = models.Subject{Name: "Language", Code: "LEN", GradeLevel: "10", Section: "A"}
	require.NoError(t, f.subjects.Create(ctx, &f.math))
	require.NoError(t, f.subjects.Create(ctx, &f.lang))

	logger := zap.NewNop()
	f.averageSvc = NewAverageService(f.averages, nil, nil, nil, logger)
	f.gradeSvc = NewGradeService(GradeServiceDeps{
		Grades:          f.grades,
		Students:        f.students,
		Subjects:        f.subjects,
		Periods:         f.periods,
		EvaluationTypes: f.evalTypes,
		Averages:        f.averageSvc,
		Alerts:          f.alerts,
		Logger:          logger,
	}, GradeConfig{MinScore: 1, MaxScore: 10, AtRiskThreshold: 6})
	f.riskSvc = NewRiskService(f.periods, f.averageSvc, nil, nil, logger, 6)
	return f
}

func (f *gradebookFixture) enroll(t *testing.T, first, last string) models.Student {
	t.Helper()
	st := models.Student{FirstName: first, LastName: last, NationalID: first + last, GradeLevel: "10", Section: "A", Active: true}
	require.NoError(t, f.students.Create(context.Background(), &st))
	return st
}

func (f *gradebookFixture) grade(t *testing.T, studentID string, subject models.Subject, evalType models.EvaluationType, score float64, day int) *models.GradeRecordResult {
	t.Helper()
	res, err := f.gradeSvc.RecordGrade(context.Background(), RecordGradeRequest{
		StudentID:        studentID,
		SubjectID:        subject.ID,
		TeacherID:        "teacher-1",
		PeriodID:         f.period.ID,
		EvaluationTypeID: evalType.ID,
		Score:            score,
		EvaluatedOn:      f.period.StartDate.AddDate(0, 0, day),
	})
	require.NoError(t, err)
	return res
}
