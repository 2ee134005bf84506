package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OptimizationRun is the persisted record of a single ALNS solve: the
// instance it was run against, the parameters that produced it, and the
// resulting cost and operator weight trajectory.
type OptimizationRun struct {
	ID                  string          `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	InstanceName        string          `json:"instance_name" gorm:"size:200;not null;index"`
	Seed                int64           `json:"seed" gorm:"not null"`
	Iterations          int             `json:"iterations" gorm:"not null"`
	Temperature         float64         `json:"temperature" gorm:"not null"`
	Cool                float64         `json:"cool" gorm:"not null"`
	FinalCost           float64         `json:"final_cost" gorm:"not null"`
	FirstEchelonRoutes  int             `json:"first_echelon_routes"`
	SecondEchelonRoutes int             `json:"second_echelon_routes"`
	Feasible            bool            `json:"feasible" gorm:"not null;default:true"`
	DestroyWeights      json.RawMessage `json:"destroy_weights" gorm:"type:jsonb"`
	RepairWeights       json.RawMessage `json:"repair_weights" gorm:"type:jsonb"`
	WallTimeMS          int64           `json:"wall_time_ms"`
	CreatedAt           time.Time       `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt           time.Time       `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt           gorm.DeletedAt  `json:"deleted_at,omitempty" gorm:"index"`
}

// TableName pins the GORM-managed table name explicitly.
func (OptimizationRun) TableName() string {
	return "optimization_runs"
}

// BeforeCreate generates a UUID if one was not already assigned.
func (r *OptimizationRun) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}
