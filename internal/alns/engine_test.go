package alns

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine_Run_BestCostNonIncreasing(t *testing.T) {
	p := tinyProblem()
	e := NewEngine(p, feasibleEngineConfig(1, 100))

	_, err := e.Run()
	require.NoError(t, err)

	last := e.Trajectory[0].BestCost
	for _, rec := range e.Trajectory {
		assert.LessOrEqual(t, rec.BestCost, last+1e-9)
		last = rec.BestCost
	}
}

func TestEngine_Run_IsReproducibleForFixedSeed(t *testing.T) {
	p1 := tinyProblem()
	p2 := tinyProblem()

	e1 := NewEngine(p1, feasibleEngineConfig(123, 60))
	e2 := NewEngine(p2, feasibleEngineConfig(123, 60))

	_, err1 := e1.Run()
	_, err2 := e2.Run()
	require.NoError(t, err1)
	require.NoError(t, err2)

	require.Equal(t, len(e1.Trajectory), len(e2.Trajectory))
	for i := range e1.Trajectory {
		assert.Equal(t, e1.Trajectory[i].TempCost, e2.Trajectory[i].TempCost, "iteration %d", i)
		assert.Equal(t, e1.Trajectory[i].CurrentCost, e2.Trajectory[i].CurrentCost, "iteration %d", i)
		assert.Equal(t, e1.Trajectory[i].BestCost, e2.Trajectory[i].BestCost, "iteration %d", i)
		assert.Equal(t, e1.Trajectory[i].DestroyOp, e2.Trajectory[i].DestroyOp, "iteration %d", i)
		assert.Equal(t, e1.Trajectory[i].RepairOp, e2.Trajectory[i].RepairOp, "iteration %d", i)
	}
}

func TestEngine_Run_WeightsStayValidProbabilityDistributions(t *testing.T) {
	p := tinyProblem()
	e := NewEngine(p, feasibleEngineConfig(9, 80))

	_, err := e.Run()
	require.NoError(t, err)

	assertIsProbabilityVector(t, e.DestroyWeights())
	assertIsProbabilityVector(t, e.RepairWeights())
}

func assertIsProbabilityVector(t *testing.T, weights []float64) {
	t.Helper()
	total := 0.0
	for _, w := range weights {
		assert.GreaterOrEqual(t, w, 0.0)
		total += w
	}
	assert.InDelta(t, 1.0, total, 1e-6)
}

func TestEngine_Run_EmptyInstanceCompletesWithZeroCost(t *testing.T) {
	p := NewProblem("empty", []Location{NewLocation(0, 0, 0, 0, KindDepot, 0)}, nil, nil)
	e := NewEngine(p, feasibleEngineConfig(1, 10))

	best, err := e.Run()
	require.NoError(t, err)
	assert.Zero(t, best.Cost)
	assert.Empty(t, best.Routes1)
	assert.Empty(t, best.Routes2)
}

func TestEngine_Run_FailsWhenCustomerDemandExceedsSecondEchelonCapacity(t *testing.T) {
	depot := NewLocation(0, 0, 0, 0, KindDepot, 0)
	sat := NewLocation(5, 0, 0, 0, KindSatellite, 1)
	cust := NewCustomer(2, NewLocation(6, 0, DefaultCapacitySecond+1, 0, KindCustomer, 2))
	p := NewProblem("overdemand", []Location{depot}, []Location{sat}, []Customer{cust})

	e := NewEngine(p, feasibleEngineConfig(1, 10))
	_, err := e.Run()
	assert.ErrorIs(t, err, ErrInfeasibleInstance)
}

func TestEngine_Run_FailsWhenCustomerUnreachableWithinRange(t *testing.T) {
	depot := NewLocation(0, 0, 0, 0, KindDepot, 0)
	sat := NewLocation(0, 0, 0, 0, KindSatellite, 1)
	far := DefaultRangeSecond // one leg alone already exceeds range/2 round trip
	cust := NewCustomer(2, NewLocation(far, 0, 5, 0, KindCustomer, 2))
	p := NewProblem("unreachable", []Location{depot}, []Location{sat}, []Customer{cust})

	e := NewEngine(p, feasibleEngineConfig(1, 10))
	_, err := e.Run()
	assert.ErrorIs(t, err, ErrInfeasibleInstance)
}

func TestEngine_Run_InfiniteTemperatureNeverRejects(t *testing.T) {
	p := tinyProblem()
	cfg := feasibleEngineConfig(4, 50)
	cfg.Temperature = 1e18
	cfg.Cool = 1.0
	e := NewEngine(p, cfg)

	_, err := e.Run()
	require.NoError(t, err)

	for i, rec := range e.Trajectory {
		assert.Equalf(t, rec.TempCost, rec.CurrentCost, "iteration %d: current should track temp when acceptance never rejects", i)
	}
}

func TestEngine_Run_D1R1Only_StillConverges(t *testing.T) {
	p := tinyProblem()
	cfg := feasibleEngineConfig(2, 150)
	cfg.DestroyOps = DefaultDestroyOperators()[:1]
	cfg.RepairOps = DefaultRepairOperators()[:1]

	e := NewEngine(p, cfg)
	best, err := e.Run()
	require.NoError(t, err)
	assert.Empty(t, best.NotServed)
	assert.Less(t, e.BestCost, InfeasibleCost)
}

func TestSelectOperator_ColdPhasePicksEveryOperatorAtLeastOnce(t *testing.T) {
	p := tinyProblem()
	e := NewEngine(p, feasibleEngineConfig(1, 1))

	seen := make(map[int]bool)
	for i := 0; i < 200 && len(seen) < len(e.DestroyOps); i++ {
		idx := e.selectOperator(e.destroyWeights, e.destroyUsage, e.destroyMeanTime)
		seen[idx] = true
	}
	assert.Len(t, seen, len(e.DestroyOps))
}

func TestSampleProportional_DistributesByWeight(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	counts := make([]int, 3)
	for i := 0; i < 6000; i++ {
		idx := sampleProportional(rng, []float64{1, 2, 3})
		counts[idx]++
	}
	// Rough monotonicity check: heavier weights draw more often.
	assert.Less(t, counts[0], counts[1])
	assert.Less(t, counts[1], counts[2])
}
