package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-gradebook-api/internal/models"
)

func newMock(t *testing.T, driver string) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, driver), mock, func() { db.Close() }
}

var gradeColumns = []string{"id", "student_id", "subject_id", "teacher_id", "period_id", "evaluation_type_id", "score", "evaluated_on", "notes", "created_at", "updated_at"}

func TestGradeEntryUpsertPostgres(t *testing.T) {
	db, mock, cleanup := newMock(t, "postgres")
	defer cleanup()
	repo := NewGradeEntryRepository(db)

	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (student_id, subject_id, period_id, evaluation_type_id, evaluated_on) DO UPDATE SET score = EXCLUDED.score, teacher_id = EXCLUDED.teacher_id, notes = EXCLUDED.notes, updated_at = EXCLUDED.updated_at")).
		WithArgs(sqlmock.AnyArg(), "stu-1", "sub-1", "tch-1", "per-1", "eval-1", 8.5, day, "", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	entry := &models.GradeEntry{StudentID: "stu-1", SubjectID: "sub-1", TeacherID: "tch-1", PeriodID: "per-1", EvaluationTypeID: "eval-1", Score: 8.5, EvaluatedOn: day}
	require.NoError(t, repo.Upsert(context.Background(), entry))
	assert.NotEmpty(t, entry.ID)
	assert.False(t, entry.UpdatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGradeEntryUpsertMySQL(t *testing.T) {
	db, mock, cleanup := newMock(t, "mysql")
	defer cleanup()
	repo := NewGradeEntryRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("ON DUPLICATE KEY UPDATE score = VALUES(score), teacher_id = VALUES(teacher_id)")).
		WillReturnResult(sqlmock.NewResult(1, 2))

	require.NoError(t, repo.Upsert(context.Background(), &models.GradeEntry{StudentID: "stu-1", Score: 7}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGradeEntryFindByKey(t *testing.T) {
	db, mock, cleanup := newMock(t, "postgres")
	defer cleanup()
	repo := NewGradeEntryRepository(db)

	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("WHERE g.student_id = $1 AND g.subject_id = $2 AND g.period_id = $3 AND g.evaluation_type_id = $4 AND g.evaluated_on = $5")).
		WithArgs("stu-1", "sub-1", "per-1", "eval-1", day).
		WillReturnRows(sqlmock.NewRows(gradeColumns).AddRow("g-1", "stu-1", "sub-1", "tch-1", "per-1", "eval-1", 9.0, day, "", now, now))

	entry, err := repo.FindByKey(context.Background(), models.GradeEntry{StudentID: "stu-1", SubjectID: "sub-1", PeriodID: "per-1", EvaluationTypeID: "eval-1", EvaluatedOn: day})
	require.NoError(t, err)
	assert.Equal(t, "g-1", entry.ID)
	assert.Equal(t, 9.0, entry.Score)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGradeEntryFindByKeyMissing(t *testing.T) {
	db, mock, cleanup := newMock(t, "postgres")
	defer cleanup()
	repo := NewGradeEntryRepository(db)

	mock.ExpectQuery("FROM grade_entries g").WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByKey(context.Background(), models.GradeEntry{StudentID: "stu-1"})
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestGradeEntryListByPeriod(t *testing.T) {
	db, mock, cleanup := newMock(t, "postgres")
	defer cleanup()
	repo := NewGradeEntryRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(append(gradeColumns, "subject_name")).
		AddRow("g-1", "stu-1", "sub-1", "tch-1", "per-1", "eval-1", 6.0, now, "", now, now, "Biology").
		AddRow("g-2", "stu-1", "sub-2", "tch-1", "per-1", "eval-1", 9.0, now, "", now, now, "Mathematics")
	mock.ExpectQuery(regexp.QuoteMeta("WHERE g.student_id = $1 AND g.period_id = $2 ORDER BY s.name, g.subject_id, g.evaluated_on, g.created_at")).
		WithArgs("stu-1", "per-1").
		WillReturnRows(rows)

	entries, err := repo.List(context.Background(), models.GradeFilter{StudentID: "stu-1", PeriodID: "per-1"})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Biology", entries[0].SubjectName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGradeEntryListWithoutPeriod(t *testing.T) {
	db, mock, cleanup := newMock(t, "mysql")
	defer cleanup()
	repo := NewGradeEntryRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE g.student_id = ? ORDER BY")).
		WithArgs("stu-9").
		WillReturnRows(sqlmock.NewRows(append(gradeColumns, "subject_name")))

	entries, err := repo.List(context.Background(), models.GradeFilter{StudentID: "stu-9"})
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.NoError(t, mock.ExpectationsWereMet())
}
