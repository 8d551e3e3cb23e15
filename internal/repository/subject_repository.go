package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-gradebook-api/internal/models"
)

const subjectColumns = "id, name, code, grade_level, section, teacher_id, created_at, updated_at"

// SubjectRepository manages persistence for subjects.
type SubjectRepository struct {
	db *sqlx.DB
}

// NewSubjectRepository constructs a SubjectRepository.
func NewSubjectRepository(db *sqlx.DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

// List returns subjects ordered by name.
func (r *SubjectRepository) List(ctx context.Context, filter models.SubjectFilter) ([]models.Subject, error) {
	conditions := []string{"1=1"}
	var args []interface{}
	if filter.GradeLevel != "" {
		conditions = append(conditions, "grade_level = ?")
		args = append(args, filter.GradeLevel)
	}
	if filter.Section != "" {
		conditions = append(conditions, "section = ?")
		args = append(args, filter.Section)
	}
	if filter.TeacherID != "" {
		conditions = append(conditions, "teacher_id = ?")
		args = append(args, filter.TeacherID)
	}
	query := fmt.Sprintf("SELECT %s FROM subjects WHERE %s ORDER BY name, code", subjectColumns, strings.Join(conditions, " AND "))
	var subjects []models.Subject
	if err := r.db.SelectContext(ctx, &subjects, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	return subjects, nil
}

// FindByID fetches a subject by ID. It returns sql.ErrNoRows when absent.
func (r *SubjectRepository) FindByID(ctx context.Context, id string) (*models.Subject, error) {
	var subject models.Subject
	if err := r.db.GetContext(ctx, &subject, r.db.Rebind("SELECT "+subjectColumns+" FROM subjects WHERE id = ?"), id); err != nil {
		return nil, err
	}
	return &subject, nil
}

// ExistsByCode checks whether a subject code is taken.
func (r *SubjectRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var exists int
	if err := r.db.GetContext(ctx, &exists, r.db.Rebind("SELECT 1 FROM subjects WHERE code = ? LIMIT 1"), code); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check subject code: %w", err)
	}
	return true, nil
}

// Create inserts a subject.
func (r *SubjectRepository) Create(ctx context.Context, subject *models.Subject) error {
	if subject.ID == "" {
		subject.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	subject.CreatedAt = now
	subject.UpdatedAt = now
	const query = `INSERT INTO subjects (id, name, code, grade_level, section, teacher_id, created_at, updated_at)
        VALUES (:id, :name, :code, :grade_level, :section, :teacher_id, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, subject); err != nil {
		return fmt.Errorf("create subject: %w", err)
	}
	return nil
}
