package service

import (
	"context"
	"database/sql/driver"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-gradebook-api/internal/models"
	appErrors "github.com/noah-isme/sma-gradebook-api/pkg/errors"
)

type failingGradeRepo struct {
	gradeEntryRepository
	err error
}

func (r *failingGradeRepo) Upsert(context.Context, *models.GradeEntry) error { return r.err }

func TestRecordGradeRejectsOutOfRangeScores(t *testing.T) {
	f := newGradebookFixture(t)
	ctx := context.Background()
	ana := f.enroll(t, "Ana", "Diaz")
	f.grade(t, ana.ID, f.math, f.exam, 8.0, 1)

	for _, score := range []float64{11.0, 0.5, math.NaN()} {
		_, err := f.gradeSvc.RecordGrade(ctx, RecordGradeRequest{
			StudentID: ana.ID, SubjectID: f.math.ID, TeacherID: "t", PeriodID: f.period.ID, EvaluationTypeID: f.homework.ID, Score: score,
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, appErrors.ErrValidation), "score %v", score)
	}

	rows, err := f.averages.ListByStudent(ctx, ana.ID, f.period.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 8.0, rows[0].Average)
	assert.Equal(t, 1, rows[0].GradeCount)
}

func TestRecordGradeAcceptsBounds(t *testing.T) {
	f := newGradebookFixture(t)
	ana := f.enroll(t, "Ana", "Diaz")
	f.grade(t, ana.ID, f.math, f.exam, 1.0, 1)
	res := f.grade(t, ana.ID, f.math, f.homework, 10.0, 2)
	assert.Equal(t, 5.5, res.SubjectAverage.Average)
}

func TestRecordGradeStoresTwoDecimals(t *testing.T) {
	f := newGradebookFixture(t)
	ana := f.enroll(t, "Ana", "Diaz")
	res := f.grade(t, ana.ID, f.math, f.exam, 7.333, 1)
	assert.Equal(t, 7.33, res.Entry.Score)

	res = f.grade(t, ana.ID, f.math, f.homework, 8.666, 2)
	assert.Equal(t, 8.67, res.Entry.Score)
	assert.Equal(t, 8.0, res.SubjectAverage.Average)
}

func TestRecordGradeOverwritesSameKey(t *testing.T) {
	f := newGradebookFixture(t)
	ana := f.enroll(t, "Ana", "Diaz")
	first := f.grade(t, ana.ID, f.math, f.exam, 4.0, 1)
	second := f.grade(t, ana.ID, f.math, f.exam, 9.0, 1)

	assert.Equal(t, first.Entry.ID, second.Entry.ID)
	assert.Equal(t, 9.0, second.SubjectAverage.Average)
	assert.Equal(t, 1, second.SubjectAverage.GradeCount)
}

func TestRecordGradeMissingReferences(t *testing.T) {
	f := newGradebookFixture(t)
	ctx := context.Background()
	ana := f.enroll(t, "Ana", "Diaz")
	base := RecordGradeRequest{StudentID: ana.ID, SubjectID: f.math.ID, TeacherID: "t", PeriodID: f.period.ID, EvaluationTypeID: f.exam.ID, Score: 7}

	cases := map[string]func(r *RecordGradeRequest){
		"student":   func(r *RecordGradeRequest) { r.StudentID = "missing" },
		"subject":   func(r *RecordGradeRequest) { r.SubjectID = "missing" },
		"period":    func(r *RecordGradeRequest) { r.PeriodID = "missing" },
		"eval type": func(r *RecordGradeRequest) { r.EvaluationTypeID = "missing" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			req := base
			mutate(&req)
			_, err := f.gradeSvc.RecordGrade(ctx, req)
			assert.True(t, errors.Is(err, appErrors.ErrNotFound))
		})
	}
}

func TestRecordGradeInactiveStudent(t *testing.T) {
	f := newGradebookFixture(t)
	ctx := context.Background()
	ana := f.enroll(t, "Ana", "Diaz")
	require.NoError(t, f.students.Deactivate(ctx, ana.ID))

	_, err := f.gradeSvc.RecordGrade(ctx, RecordGradeRequest{StudentID: ana.ID, SubjectID: f.math.ID, TeacherID: "t", PeriodID: f.period.ID, EvaluationTypeID: f.exam.ID, Score: 7})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestRecordGradeRequiresFields(t *testing.T) {
	f := newGradebookFixture(t)
	_, err := f.gradeSvc.RecordGrade(context.Background(), RecordGradeRequest{Score: 7})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestRecordGradeStorageFailureLeavesAveragesUntouched(t *testing.T) {
	f := newGradebookFixture(t)
	ctx := context.Background()
	ana := f.enroll(t, "Ana", "Diaz")
	f.grade(t, ana.ID, f.math, f.exam, 8.0, 1)

	f.gradeSvc.grades = &failingGradeRepo{gradeEntryRepository: f.grades, err: driver.ErrBadConn}
	_, err := f.gradeSvc.RecordGrade(ctx, RecordGradeRequest{StudentID: ana.ID, SubjectID: f.math.ID, TeacherID: "t", PeriodID: f.period.ID, EvaluationTypeID: f.homework.ID, Score: 2})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrStorageUnavailable))

	rows, err := f.averages.ListByStudent(ctx, ana.ID, f.period.ID)
	require.NoError(t, err)
	assert.Equal(t, 8.0, rows[0].Average)
}

func TestRecordGradePublishesAlertBelowThreshold(t *testing.T) {
	f := newGradebookFixture(t)
	ana := f.enroll(t, "Ana", "Diaz")

	res := f.grade(t, ana.ID, f.math, f.exam, 7.0, 1)
	assert.False(t, res.AtRisk)
	assert.Empty(t, f.alerts.published())

	res = f.grade(t, ana.ID, f.lang, f.exam, 3.0, 1)
	assert.True(t, res.AtRisk)
	alerts := f.alerts.published()
	require.Len(t, alerts, 1)
	assert.Equal(t, ana.ID, alerts[0].StudentID)
	assert.Equal(t, "Ana Diaz", alerts[0].StudentName)
	assert.Equal(t, 5.0, alerts[0].GeneralAverage)
	assert.Equal(t, models.CategoryAtRisk, alerts[0].Category)
}

func TestRecordGradeAlertFailureDoesNotFailWrite(t *testing.T) {
	f := newGradebookFixture(t)
	f.alerts.err = errors.New("queue full")
	ana := f.enroll(t, "Ana", "Diaz")
	res := f.grade(t, ana.ID, f.math, f.exam, 2.0, 1)
	assert.True(t, res.AtRisk)
}

func TestGradesForStudentOrdering(t *testing.T) {
	f := newGradebookFixture(t)
	ctx := context.Background()
	ana := f.enroll(t, "Ana", "Diaz")
	f.grade(t, ana.ID, f.math, f.exam, 7.0, 5)
	f.grade(t, ana.ID, f.math, f.homework, 8.0, 2)
	f.grade(t, ana.ID, f.lang, f.exam, 9.0, 9)

	entries, err := f.gradeSvc.GradesForStudent(ctx, ana.ID, "")
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "Language", entries[0].SubjectName)
	assert.Equal(t, 8.0, entries[1].Score)
	assert.Equal(t, 7.0, entries[2].Score)

	_, err = f.gradeSvc.GradesForStudent(ctx, "nobody", "")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}
