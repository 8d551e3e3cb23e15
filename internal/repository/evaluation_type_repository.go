package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-gradebook-api/internal/models"
)

// EvaluationTypeRepository handles persistence for evaluation types.
type EvaluationTypeRepository struct {
	db *sqlx.DB
}

// NewEvaluationTypeRepository instantiates an evaluation type repository.
func NewEvaluationTypeRepository(db *sqlx.DB) *EvaluationTypeRepository {
	return &EvaluationTypeRepository{db: db}
}

// List returns evaluation types ordered by name.
func (r *EvaluationTypeRepository) List(ctx context.Context) ([]models.EvaluationType, error) {
	var types []models.EvaluationType
	if err := r.db.SelectContext(ctx, &types, "SELECT id, name, weight, created_at FROM evaluation_types ORDER BY name"); err != nil {
		return nil, fmt.Errorf("list evaluation types: %w", err)
	}
	return types, nil
}

// FindByID fetches an evaluation type. It returns sql.ErrNoRows when absent.
func (r *EvaluationTypeRepository) FindByID(ctx context.Context, id string) (*models.EvaluationType, error) {
	var evalType models.EvaluationType
	if err := r.db.GetContext(ctx, &evalType, r.db.Rebind("SELECT id, name, weight, created_at FROM evaluation_types WHERE id = ?"), id); err != nil {
		return nil, err
	}
	return &evalType, nil
}

// Create inserts an evaluation type.
func (r *EvaluationTypeRepository) Create(ctx context.Context, evalType *models.EvaluationType) error {
	if evalType.ID == "" {
		evalType.ID = uuid.NewString()
	}
	evalType.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO evaluation_types (id, name, weight, created_at) VALUES (:id, :name, :weight, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, evalType); err != nil {
		return fmt.Errorf("create evaluation type: %w", err)
	}
	return nil
}
