package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-gradebook-api/internal/models"
)

var subjectAverageKey = []string{"student_id", "subject_id", "period_id"}

const insertSubjectAverage = `INSERT INTO subject_averages (student_id, subject_id, period_id, average, grade_count, updated_at)
        VALUES (:student_id, :subject_id, :period_id, :average, :grade_count, :updated_at)`

// SubjectAverageRepository persists the derived (student, subject, period) average table.
// Averages are computed from grade_entries; rounding is left to the caller.
type SubjectAverageRepository struct {
	db      *sqlx.DB
	dialect dialect
}

// NewSubjectAverageRepository constructs repository.
func NewSubjectAverageRepository(db *sqlx.DB) *SubjectAverageRepository {
	return &SubjectAverageRepository{db: db, dialect: dialectOf(db)}
}

// Compute returns the raw mean and count of the grade entries matching key.
func (r *SubjectAverageRepository) Compute(ctx context.Context, key models.AverageKey) (*models.SubjectAverage, error) {
	query := r.db.Rebind(`SELECT COALESCE(AVG(score), 0) AS average, COUNT(*) AS grade_count
        FROM grade_entries
        WHERE student_id = ? AND subject_id = ? AND period_id = ?`)
	avg := models.SubjectAverage{StudentID: key.StudentID, SubjectID: key.SubjectID, PeriodID: key.PeriodID}
	if err := r.db.QueryRowxContext(ctx, query, key.StudentID, key.SubjectID, key.PeriodID).Scan(&avg.Average, &avg.GradeCount); err != nil {
		return nil, fmt.Errorf("compute subject average: %w", err)
	}
	return &avg, nil
}

// Aggregate returns the raw mean and count for every (student, subject, period) with grades.
func (r *SubjectAverageRepository) Aggregate(ctx context.Context) ([]models.SubjectAverage, error) {
	const query = `SELECT student_id, subject_id, period_id, AVG(score) AS average, COUNT(*) AS grade_count
        FROM grade_entries
        GROUP BY student_id, subject_id, period_id
        ORDER BY student_id, subject_id, period_id`
	var rows []models.SubjectAverage
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("aggregate subject averages: %w", err)
	}
	return rows, nil
}

// Upsert stores one average row.
func (r *SubjectAverageRepository) Upsert(ctx context.Context, avg *models.SubjectAverage) error {
	if avg.UpdatedAt.IsZero() {
		avg.UpdatedAt = time.Now().UTC()
	}
	query := insertSubjectAverage + r.dialect.upsertClause(subjectAverageKey, "average", "grade_count", "updated_at")
	if _, err := r.db.NamedExecContext(ctx, query, avg); err != nil {
		if isUndefinedTable(err) {
			return ErrAverageTableMissing
		}
		return fmt.Errorf("upsert subject average: %w", err)
	}
	return nil
}

// Delete removes the row for key if present.
func (r *SubjectAverageRepository) Delete(ctx context.Context, key models.AverageKey) error {
	query := r.db.Rebind("DELETE FROM subject_averages WHERE student_id = ? AND subject_id = ? AND period_id = ?")
	if _, err := r.db.ExecContext(ctx, query, key.StudentID, key.SubjectID, key.PeriodID); err != nil {
		if isUndefinedTable(err) {
			return ErrAverageTableMissing
		}
		return fmt.Errorf("delete subject average: %w", err)
	}
	return nil
}

// ReplaceAll swaps the whole table content for rows inside one transaction.
func (r *SubjectAverageRepository) ReplaceAll(ctx context.Context, rows []models.SubjectAverage) (int, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM subject_averages"); err != nil {
		tx.Rollback() //nolint:errcheck
		if isUndefinedTable(err) {
			return 0, ErrAverageTableMissing
		}
		return 0, fmt.Errorf("clear subject averages: %w", err)
	}
	now := time.Now().UTC()
	for i := range rows {
		if rows[i].UpdatedAt.IsZero() {
			rows[i].UpdatedAt = now
		}
		if _, err := tx.NamedExecContext(ctx, insertSubjectAverage, rows[i]); err != nil {
			tx.Rollback() //nolint:errcheck
			return 0, fmt.Errorf("insert subject average: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit subject averages: %w", err)
	}
	return len(rows), nil
}

// ListByStudent returns the student's subject averages in a period ordered by subject name.
func (r *SubjectAverageRepository) ListByStudent(ctx context.Context, studentID, periodID string) ([]models.SubjectAverage, error) {
	query := r.db.Rebind(`SELECT sa.student_id, sa.subject_id, sa.period_id, sa.average, sa.grade_count, sa.updated_at, s.name AS subject_name
        FROM subject_averages sa
        JOIN subjects s ON s.id = sa.subject_id
        WHERE sa.student_id = ? AND sa.period_id = ?
        ORDER BY s.name, sa.subject_id`)
	var rows []models.SubjectAverage
	if err := r.db.SelectContext(ctx, &rows, query, studentID, periodID); err != nil {
		if isUndefinedTable(err) {
			return nil, ErrAverageTableMissing
		}
		return nil, fmt.Errorf("list subject averages: %w", err)
	}
	return rows, nil
}

// GeneralAverages returns the unweighted mean of subject averages for every active student with
// averages in the period, lowest first.
func (r *SubjectAverageRepository) GeneralAverages(ctx context.Context, periodID string) ([]models.StudentGeneralAverage, error) {
	query := r.db.Rebind(`SELECT sa.student_id, st.first_name, st.last_name, st.grade_level, st.section, sa.period_id,
        AVG(sa.average) AS general_average, COUNT(*) AS subject_count
        FROM subject_averages sa
        JOIN students st ON st.id = sa.student_id
        WHERE sa.period_id = ? AND st.active = ?
        GROUP BY sa.student_id, st.first_name, st.last_name, st.grade_level, st.section, sa.period_id
        ORDER BY general_average ASC, st.last_name, st.first_name`)
	var rows []models.StudentGeneralAverage
	if err := r.db.SelectContext(ctx, &rows, query, periodID, true); err != nil {
		if isUndefinedTable(err) {
			return nil, ErrAverageTableMissing
		}
		return nil, fmt.Errorf("general averages: %w", err)
	}
	return rows, nil
}
