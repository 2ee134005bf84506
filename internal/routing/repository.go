package routing

import (
	"context"

	"gorm.io/gorm"

	"github.com/twoechelon/alns-solver/pkg/models"
)

// Repository is the GORM-backed persistence layer for optimization runs.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a Repository over db.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new optimization run.
func (r *Repository) Create(ctx context.Context, run *models.OptimizationRun) error {
	return r.db.WithContext(ctx).Create(run).Error
}

// GetByID fetches an optimization run by its id.
func (r *Repository) GetByID(ctx context.Context, id string) (*models.OptimizationRun, error) {
	var run models.OptimizationRun
	if err := r.db.WithContext(ctx).First(&run, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &run, nil
}
