package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-gradebook-api/internal/models"
)

const periodColumns = "id, name, start_date, end_date, active, created_at, updated_at"

// PeriodRepository handles persistence for grading periods.
type PeriodRepository struct {
	db *sqlx.DB
}

// NewPeriodRepository instantiates a period repository.
func NewPeriodRepository(db *sqlx.DB) *PeriodRepository {
	return &PeriodRepository{db: db}
}

// List returns every period, most recent first.
func (r *PeriodRepository) List(ctx context.Context) ([]models.GradingPeriod, error) {
	var periods []models.GradingPeriod
	if err := r.db.SelectContext(ctx, &periods, "SELECT "+periodColumns+" FROM grading_periods ORDER BY start_date DESC, name"); err != nil {
		return nil, fmt.Errorf("list periods: %w", err)
	}
	return periods, nil
}

// ListActive returns periods flagged active, latest start date first.
func (r *PeriodRepository) ListActive(ctx context.Context) ([]models.GradingPeriod, error) {
	var periods []models.GradingPeriod
	query := r.db.Rebind("SELECT " + periodColumns + " FROM grading_periods WHERE active = ? ORDER BY start_date DESC, name")
	if err := r.db.SelectContext(ctx, &periods, query, true); err != nil {
		return nil, fmt.Errorf("list active periods: %w", err)
	}
	return periods, nil
}

// FindByID fetches a period by ID. It returns sql.ErrNoRows when absent.
func (r *PeriodRepository) FindByID(ctx context.Context, id string) (*models.GradingPeriod, error) {
	var period models.GradingPeriod
	if err := r.db.GetContext(ctx, &period, r.db.Rebind("SELECT "+periodColumns+" FROM grading_periods WHERE id = ?"), id); err != nil {
		return nil, err
	}
	return &period, nil
}

// Create inserts a grading period.
func (r *PeriodRepository) Create(ctx context.Context, period *models.GradingPeriod) error {
	if period.ID == "" {
		period.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	period.CreatedAt = now
	period.UpdatedAt = now
	const query = `INSERT INTO grading_periods (id, name, start_date, end_date, active, created_at, updated_at)
        VALUES (:id, :name, :start_date, :end_date, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, period); err != nil {
		return fmt.Errorf("create period: %w", err)
	}
	return nil
}
