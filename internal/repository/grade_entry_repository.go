package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-gradebook-api/internal/models"
)

var gradeEntryKey = []string{"student_id", "subject_id", "period_id", "evaluation_type_id", "evaluated_on"}

// GradeEntryRepository handles grade entry persistence.
type GradeEntryRepository struct {
	db      *sqlx.DB
	dialect dialect
}

// NewGradeEntryRepository creates a new grade entry repository.
func NewGradeEntryRepository(db *sqlx.DB) *GradeEntryRepository {
	return &GradeEntryRepository{db: db, dialect: dialectOf(db)}
}

// Upsert inserts a grade entry or overwrites score, teacher and notes of the entry sharing its natural key.
func (r *GradeEntryRepository) Upsert(ctx context.Context, entry *models.GradeEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now
	}
	entry.UpdatedAt = now
	query := `INSERT INTO grade_entries (id, student_id, subject_id, teacher_id, period_id, evaluation_type_id, score, evaluated_on, notes, created_at, updated_at)
        VALUES (:id, :student_id, :subject_id, :teacher_id, :period_id, :evaluation_type_id, :score, :evaluated_on, :notes, :created_at, :updated_at)` +
		r.dialect.upsertClause(gradeEntryKey, "score", "teacher_id", "notes", "updated_at")
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("upsert grade entry: %w", err)
	}
	return nil
}

// FindByKey returns the stored entry matching the natural key of entry.
func (r *GradeEntryRepository) FindByKey(ctx context.Context, entry models.GradeEntry) (*models.GradeEntry, error) {
	query := r.db.Rebind(`SELECT g.id, g.student_id, g.subject_id, g.teacher_id, g.period_id, g.evaluation_type_id, g.score, g.evaluated_on, g.notes, g.created_at, g.updated_at
        FROM grade_entries g
        WHERE g.student_id = ? AND g.subject_id = ? AND g.period_id = ? AND g.evaluation_type_id = ? AND g.evaluated_on = ?`)
	var stored models.GradeEntry
	if err := r.db.GetContext(ctx, &stored, query, entry.StudentID, entry.SubjectID, entry.PeriodID, entry.EvaluationTypeID, entry.EvaluatedOn); err != nil {
		return nil, err
	}
	return &stored, nil
}

// List returns a student's grade entries ordered by subject then evaluation date.
func (r *GradeEntryRepository) List(ctx context.Context, filter models.GradeFilter) ([]models.GradeEntry, error) {
	query := `SELECT g.id, g.student_id, g.subject_id, g.teacher_id, g.period_id, g.evaluation_type_id, g.score, g.evaluated_on, g.notes, g.created_at, g.updated_at, s.name AS subject_name
        FROM grade_entries g
        JOIN subjects s ON s.id = g.subject_id
        WHERE g.student_id = ?`
	args := []interface{}{filter.StudentID}
	if filter.PeriodID != "" {
		query += " AND g.period_id = ?"
		args = append(args, filter.PeriodID)
	}
	query += " ORDER BY s.name, g.subject_id, g.evaluated_on, g.created_at"
	var entries []models.GradeEntry
	if err := r.db.SelectContext(ctx, &entries, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list grade entries: %w", err)
	}
	return entries, nil
}
