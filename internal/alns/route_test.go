package alns

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoute_ComputeCostAttributesHandlingToFirstEchelonOnly(t *testing.T) {
	p := tinyProblem()
	depot := p.Depots[0]
	sat := p.Satellites[0]

	r1 := NewRoute([]Location{depot, sat, depot}, p, true, []int{30})
	require.True(t, r1.Feasible)
	wantCost1 := r1.Distance + p.CostHandling*30 + p.CostFirst*3
	assert.InDelta(t, wantCost1, r1.Cost, 1e-9)

	cust := p.Customers[0].DeliveryLoc
	r2 := NewRoute([]Location{sat, cust, sat}, p, false, []int{5})
	require.True(t, r2.Feasible)
	wantCost2 := r2.Distance + p.CostSecond*3
	assert.InDelta(t, wantCost2, r2.Cost, 1e-9)
}

func TestRoute_IsFeasible_RejectsMismatchedEndpoints(t *testing.T) {
	p := tinyProblem()
	sat0, sat1 := p.Satellites[0], p.Satellites[1]
	cust := p.Customers[0].DeliveryLoc

	r := NewRoute([]Location{sat0, cust, sat1}, p, false, []int{5})
	assert.False(t, r.Feasible)
	assert.Equal(t, InfeasibleCost, r.Cost)
}

func TestRoute_IsFeasible_RejectsOverCapacity(t *testing.T) {
	p := tinyProblem()
	sat := p.Satellites[0]
	c1 := p.Customers[0].DeliveryLoc
	c2 := p.Customers[1].DeliveryLoc

	// CapacitySecond is 50; load each at 40 so the prefix sum overflows.
	r := NewRoute([]Location{sat, c1, c2, sat}, p, false, []int{40, 40})
	assert.False(t, r.Feasible)
}

func TestRoute_IsFeasible_RejectsRangeViolation(t *testing.T) {
	p := tinyProblem()
	p.RangeSecond = 1 // impossibly tight
	sat := p.Satellites[0]
	cust := p.Customers[0].DeliveryLoc

	r := NewRoute([]Location{sat, cust, sat}, p, false, []int{5})
	assert.False(t, r.Feasible)
}

func TestRoute_RemoveLocation_ThenInsertAt_RoundTrips(t *testing.T) {
	p := tinyProblem()
	sat := p.Satellites[0]
	c1 := p.Customers[0].DeliveryLoc
	c2 := p.Customers[1].DeliveryLoc

	original := NewRoute([]Location{sat, c1, c2, sat}, p, false, []int{5, 5})
	require.True(t, original.Feasible)
	originalDistance := original.Distance
	originalCost := original.Cost
	originalLoad := append([]int(nil), original.ServedLoad...)

	working := original.Clone()
	idx, load := working.RemoveLocation(c1)
	assert.Equal(t, 1, idx)
	assert.Equal(t, 5, load)

	restored := working.InsertAt(c1, load, idx)
	require.NotNil(t, restored)
	assert.InDelta(t, originalDistance, restored.Distance, 1e-9)
	assert.InDelta(t, originalCost, restored.Cost, 1e-9)
	assert.Equal(t, originalLoad, restored.ServedLoad)
}

func TestRoute_GreedyInsert_ReturnsNilForNonPositiveLoad(t *testing.T) {
	p := tinyProblem()
	sat := p.Satellites[0]
	cust := p.Customers[0].DeliveryLoc
	r := NewRoute([]Location{sat, sat}, p, false, nil)

	assert.Nil(t, r.GreedyInsert(cust, 0))
	assert.Nil(t, r.GreedyInsert(cust, -1))
}

func TestRoute_GreedyInsert_PicksMinimumDistancePosition(t *testing.T) {
	p := tinyProblem()
	sat := p.Satellites[0]
	c1 := p.Customers[0].DeliveryLoc
	c2 := p.Customers[1].DeliveryLoc

	r := NewRoute([]Location{sat, c1, sat}, p, false, []int{5})
	best := r.GreedyInsert(c2, 5)
	require.NotNil(t, best)
	assert.True(t, best.Feasible)
	assert.Len(t, best.Locations, 4)
	for i := 1; i < len(r.Locations); i++ {
		candidate := r.InsertAt(c2, 5, i)
		if candidate != nil && candidate.Feasible {
			assert.LessOrEqual(t, best.Distance, candidate.Distance)
		}
	}
}

func TestRoute_FindRegret_ReportsInfiniteSecondBestWithOnlyOneSlot(t *testing.T) {
	p := tinyProblem()
	sat := p.Satellites[0]
	c1 := p.Customers[0].DeliveryLoc
	// A degenerate route has exactly one internal insertion position.
	r := NewRoute([]Location{sat, sat}, p, false, nil)

	best, second, bestRoute := r.FindRegret(c1, c1.Demand)
	assert.Less(t, best, InfeasibleCost)
	assert.Equal(t, InfeasibleCost-r.Cost, second)
	assert.NotNil(t, bestRoute)
}

func TestRoute_IsDegenerate(t *testing.T) {
	p := tinyProblem()
	sat := p.Satellites[0]
	c1 := p.Customers[0].DeliveryLoc

	assert.True(t, NewRoute([]Location{sat, sat}, p, false, nil).IsDegenerate())
	assert.False(t, NewRoute([]Location{sat, c1, sat}, p, false, []int{5}).IsDegenerate())
}

func TestRoute_Clone_IsIndependent(t *testing.T) {
	p := tinyProblem()
	sat := p.Satellites[0]
	c1 := p.Customers[0].DeliveryLoc

	r := NewRoute([]Location{sat, c1, sat}, p, false, []int{5})
	clone := r.Clone()
	clone.RemoveLocation(c1)

	assert.Len(t, r.Locations, 3)
	assert.Len(t, clone.Locations, 2)
}
