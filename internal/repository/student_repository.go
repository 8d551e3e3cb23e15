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

const studentColumns = "id, first_name, last_name, national_id, grade_level, section, active, created_at, updated_at"

// StudentRepository manages persistence for student records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// List returns students matching the provided filters together with the total count.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
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
	if filter.Active != nil {
		conditions = append(conditions, "active = ?")
		args = append(args, *filter.Active)
	}
	if filter.Search != "" {
		conditions = append(conditions, "(LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(national_id) LIKE ?)")
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		args = append(args, pattern, pattern, pattern)
	}

	base := "FROM students WHERE " + strings.Join(conditions, " AND ")

	allowedSorts := map[string]string{
		"last_name":  "last_name",
		"first_name": "first_name",
		"created_at": "created_at",
	}
	column, ok := allowedSorts[filter.SortBy]
	if !ok {
		column = "last_name"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s, id LIMIT %d OFFSET %d", studentColumns, base, column, order, size, offset)
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, r.db.Rebind(query), args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, r.db.Rebind("SELECT COUNT(*) "+base), args...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}
	return students, total, nil
}

// FindByID fetches a student by ID. It returns sql.ErrNoRows when absent.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	var student models.Student
	query := r.db.Rebind("SELECT " + studentColumns + " FROM students WHERE id = ?")
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}

// ExistsByNationalID checks whether a national ID is already registered, optionally excluding an ID.
func (r *StudentRepository) ExistsByNationalID(ctx context.Context, nationalID, excludeID string) (bool, error) {
	query := "SELECT 1 FROM students WHERE national_id = ?"
	args := []interface{}{nationalID}
	if excludeID != "" {
		query += " AND id <> ?"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, r.db.Rebind(query+" LIMIT 1"), args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check national id: %w", err)
	}
	return true, nil
}

// Create inserts a new student record.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if student.CreatedAt.IsZero() {
		student.CreatedAt = now
	}
	student.UpdatedAt = now
	const query = `INSERT INTO students (id, first_name, last_name, national_id, grade_level, section, active, created_at, updated_at)
        VALUES (:id, :first_name, :last_name, :national_id, :grade_level, :section, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// Deactivate marks a student as withdrawn. It returns sql.ErrNoRows when the student does not exist.
func (r *StudentRepository) Deactivate(ctx context.Context, id string) error {
	query := r.db.Rebind("UPDATE students SET active = ?, updated_at = ? WHERE id = ?")
	res, err := r.db.ExecContext(ctx, query, false, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("deactivate student: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deactivate student: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
