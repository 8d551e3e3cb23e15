package service

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-gradebook-api/internal/models"
	appErrors "github.com/noah-isme/sma-gradebook-api/pkg/errors"
)

func TestRoundAverageHalfToEven(t *testing.T) {
	assert.Equal(t, 8.12, roundAverage(8.125))
	assert.Equal(t, 8.38, roundAverage(8.375))
	assert.Equal(t, 7.67, roundAverage(23.0/3))
	assert.Equal(t, 8.5, roundAverage(8.5))
}

func TestRecomputeTracksMean(t *testing.T) {
	f := newGradebookFixture(t)
	ana := f.enroll(t, "Ana", "Diaz")

	f.grade(t, ana.ID, f.math, f.exam, 8.0, 1)
	res := f.grade(t, ana.ID, f.math, f.homework, 9.0, 2)
	require.NotNil(t, res.SubjectAverage)
	assert.Equal(t, 8.5, res.SubjectAverage.Average)
	assert.Equal(t, 2, res.SubjectAverage.GradeCount)
	assert.True(t, res.SubjectAverage.Cached)

	res = f.grade(t, ana.ID, f.math, f.quiz, 7.0, 3)
	assert.Equal(t, 8.0, res.SubjectAverage.Average)
	assert.Equal(t, 3, res.SubjectAverage.GradeCount)
	assert.Equal(t, models.CategoryVeryGood, res.SubjectAverage.Category)
}

func TestRecomputeWithoutGradesRemovesStaleRow(t *testing.T) {
	f := newGradebookFixture(t)
	ctx := context.Background()
	key := models.AverageKey{StudentID: "ghost", SubjectID: f.math.ID, PeriodID: f.period.ID}
	require.NoError(t, f.averages.Upsert(ctx, &models.SubjectAverage{StudentID: "ghost", SubjectID: f.math.ID, PeriodID: f.period.ID, Average: 5, GradeCount: 1}))

	_, err := f.averageSvc.Recompute(ctx, key)
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	rows, err := f.averages.ListByStudent(ctx, "ghost", f.period.ID)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestRecomputeRequiresKey(t *testing.T) {
	f := newGradebookFixture(t)
	_, err := f.averageSvc.Recompute(context.Background(), models.AverageKey{StudentID: "a"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestRecomputeToleratesMissingTable(t *testing.T) {
	f := newGradebookFixture(t)
	ana := f.enroll(t, "Ana", "Diaz")
	f.store.DropAverageTable()

	res := f.grade(t, ana.ID, f.math, f.exam, 7.0, 1)
	require.NotNil(t, res.SubjectAverage)
	assert.Equal(t, 7.0, res.SubjectAverage.Average)
	assert.False(t, res.SubjectAverage.Cached)
	assert.Nil(t, res.GeneralAverage)
}

func TestRecomputeAllMatchesRecompute(t *testing.T) {
	f := newGradebookFixture(t)
	ctx := context.Background()
	ana := f.enroll(t, "Ana", "Diaz")
	ben := f.enroll(t, "Ben", "Cruz")
	f.grade(t, ana.ID, f.math, f.exam, 7.0, 1)
	f.grade(t, ana.ID, f.math, f.homework, 8.0, 2)
	f.grade(t, ana.ID, f.math, f.quiz, 8.0, 3)
	f.grade(t, ben.ID, f.lang, f.exam, 4.5, 1)

	written, err := f.averageSvc.RecomputeAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, written)

	rebuilt, err := f.averages.ListByStudent(ctx, ana.ID, f.period.ID)
	require.NoError(t, err)
	require.Len(t, rebuilt, 1)
	assert.Equal(t, 7.67, rebuilt[0].Average)

	single, err := f.averageSvc.Recompute(ctx, models.AverageKey{StudentID: ana.ID, SubjectID: f.math.ID, PeriodID: f.period.ID})
	require.NoError(t, err)
	assert.Equal(t, rebuilt[0].Average, single.Average)
}

func TestRecomputeAllMissingTable(t *testing.T) {
	f := newGradebookFixture(t)
	f.store.DropAverageTable()
	_, err := f.averageSvc.RecomputeAll(context.Background())
	assert.True(t, errors.Is(err, appErrors.ErrStorageUnavailable))
}

func TestGeneralAverageIsMeanOfSubjectMeans(t *testing.T) {
	f := newGradebookFixture(t)
	ana := f.enroll(t, "Ana", "Diaz")
	f.grade(t, ana.ID, f.math, f.exam, 6.0, 1)
	res := f.grade(t, ana.ID, f.lang, f.exam, 9.0, 1)
	require.NotNil(t, res.GeneralAverage)
	assert.Equal(t, 7.5, *res.GeneralAverage)

	card, err := f.averageSvc.SubjectAverages(context.Background(), ana.ID, f.period.ID)
	require.NoError(t, err)
	assert.Equal(t, 7.5, card.GeneralAverage)
	assert.Equal(t, models.CategoryGood, card.Category)
	require.Len(t, card.Subjects, 2)
	assert.Equal(t, "Language", card.Subjects[0].SubjectName)
	assert.Equal(t, models.CategoryExcellent, card.Subjects[0].Category)
}

func TestGeneralAverageWithoutData(t *testing.T) {
	f := newGradebookFixture(t)
	_, err := f.averageSvc.GeneralAverage(context.Background(), "nobody", f.period.ID)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestClassifyBoundaries(t *testing.T) {
	cases := map[float64]models.RiskCategory{
		10.0:  models.CategoryExcellent,
		9.0:   models.CategoryExcellent,
		8.999: models.CategoryVeryGood,
		8.0:   models.CategoryVeryGood,
		7.0:   models.CategoryGood,
		6.999: models.CategoryRegular,
		6.0:   models.CategoryRegular,
		5.999: models.CategoryAtRisk,
		0:     models.CategoryAtRisk,
		-3:    models.CategoryAtRisk,
	}
	for avg, want := range cases {
		assert.Equal(t, want, Classify(avg), "average %v", avg)
	}
	assert.Equal(t, models.CategoryAtRisk, Classify(math.NaN()))
	assert.Equal(t, models.CategoryExcellent, Classify(math.Inf(1)))
}
