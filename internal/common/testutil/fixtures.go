package testutil

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/twoechelon/alns-solver/internal/alns"
	"github.com/twoechelon/alns-solver/pkg/models"
)

// NewTestOptimizationRun creates a persisted-run fixture with default values.
func NewTestOptimizationRun() *models.OptimizationRun {
	destroyWeights, _ := json.Marshal([]float64{0.25, 0.25, 0.25, 0.25})
	repairWeights, _ := json.Marshal([]float64{1.0 / 3, 1.0 / 3, 1.0 / 3})

	return &models.OptimizationRun{
		ID:                  uuid.New().String(),
		InstanceName:        "Ca1-2,3,15.txt",
		Seed:                1,
		Iterations:          500,
		Temperature:         100,
		Cool:                0.99,
		FinalCost:            1800.5,
		FirstEchelonRoutes:  2,
		SecondEchelonRoutes: 3,
		Feasible:            true,
		DestroyWeights:      destroyWeights,
		RepairWeights:       repairWeights,
		WallTimeMS:          120,
		CreatedAt:           time.Now(),
		UpdatedAt:           time.Now(),
	}
}

// NewTestProblem builds a small, feasible 2E-CVRP instance for unit
// tests: one depot, two satellites, and four customers split across
// them, laid out on a simple integer grid.
func NewTestProblem() *alns.Problem {
	depot := alns.NewLocation(0, 0, 0, 0, alns.KindDepot, 0)
	satellites := []alns.Location{
		alns.NewLocation(10, 0, 0, 0, alns.KindSatellite, 1),
		alns.NewLocation(-10, 0, 0, 0, alns.KindSatellite, 2),
	}

	customerLocs := []alns.Location{
		alns.NewLocation(12, 2, 10, 0, alns.KindCustomer, 3),
		alns.NewLocation(14, -1, 15, 0, alns.KindCustomer, 4),
		alns.NewLocation(-12, 3, 8, 0, alns.KindCustomer, 5),
		alns.NewLocation(-9, -4, 12, 0, alns.KindCustomer, 6),
	}

	customers := make([]alns.Customer, len(customerLocs))
	for i, loc := range customerLocs {
		customers[i] = alns.NewCustomer(loc.NodeID, loc)
	}

	return alns.NewProblem("test-instance", []alns.Location{depot}, satellites, customers)
}

// PtrString returns a pointer to s.
func PtrString(s string) *string {
	return &s
}

// PtrTime returns a pointer to t.
func PtrTime(t time.Time) *time.Time {
	return &t
}
