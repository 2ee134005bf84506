package alns

import (
	"errors"
	"math"
	"math/rand"
	"time"
)

// ErrInfeasibleInstance is returned by Engine.Run when the initial
// random-insertion construction cannot produce a feasible solution —
// the only fallible step in the search.
var ErrInfeasibleInstance = errors.New("alns: initial construction produced an infeasible solution")

// DestroyOperator is one entry of the destroy-operator catalogue. Name
// is used only for logging/telemetry; operator identity for weight
// bookkeeping is the operator's index in the catalogue slice.
type DestroyOperator struct {
	Name  string
	Apply func(s *Solution, nRemove int, rng *rand.Rand, firstEchelon bool)
}

// RepairOperator is one entry of the repair-operator catalogue.
type RepairOperator struct {
	Name  string
	Apply func(s *Solution, rng *rand.Rand, perturbation bool)
}

// DefaultDestroyOperators returns the full D1-D4 catalogue in their
// canonical order.
func DefaultDestroyOperators() []DestroyOperator {
	return []DestroyOperator{
		{Name: "random_removal", Apply: func(s *Solution, n int, rng *rand.Rand, fe bool) {
			s.RandomRemoval(n, rng, fe)
		}},
		{Name: "related_removal", Apply: func(s *Solution, n int, rng *rand.Rand, fe bool) {
			s.RelatedRemoval(n, rng, fe)
		}},
		{Name: "worst_removal", Apply: func(s *Solution, n int, rng *rand.Rand, fe bool) {
			s.WorstRemoval(n, rng, fe, false)
		}},
		{Name: "worst_removal_randomised", Apply: func(s *Solution, n int, rng *rand.Rand, fe bool) {
			s.WorstRemoval(n, rng, fe, true)
		}},
	}
}

// DefaultRepairOperators returns the full R1-R3 catalogue in their
// canonical order. R1 ignores the perturbation flag — it has none in
// the reference design.
func DefaultRepairOperators() []RepairOperator {
	return []RepairOperator{
		{Name: "random_insertion", Apply: func(s *Solution, rng *rand.Rand, _ bool) {
			s.RandomInsertion(rng)
		}},
		{Name: "greedy_insertion", Apply: func(s *Solution, rng *rand.Rand, p bool) {
			s.GreedyInsertion(rng, p)
		}},
		{Name: "regret_insertion", Apply: func(s *Solution, rng *rand.Rand, p bool) {
			s.RegretInsertion(rng, p)
		}},
	}
}

// EngineConfig parameterizes an Engine run. Zero-value fields are
// never valid on their own; use DefaultEngineConfig as a base and
// override only what a scenario needs (e.g. trimming DestroyOps /
// RepairOps down to D1+R1 only).
type EngineConfig struct {
	Seed         int64
	Iterations   int
	Temperature  float64
	Cool         float64
	Lambda       float64
	LambdaDecay  float64
	MinNBH       int
	Perturbation bool

	DestroyOps []DestroyOperator
	RepairOps  []RepairOperator
}

// DefaultEngineConfig reproduces the reference parameter set.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Seed:         1,
		Iterations:   500,
		Temperature:  100,
		Cool:         0.99,
		Lambda:       0.5,
		LambdaDecay:  0.99,
		MinNBH:       1,
		Perturbation: true,
		DestroyOps:   DefaultDestroyOperators(),
		RepairOps:    DefaultRepairOperators(),
	}
}

// IterationRecord is one entry of the engine's trajectory buffer,
// recorded every iteration regardless of acceptance outcome.
type IterationRecord struct {
	Iteration   int
	TempCost    float64
	CurrentCost float64
	BestCost    float64
	DestroyOp   string
	RepairOp    string
	Accepted    bool
	Score       float64
}

// Engine runs the adaptive large neighborhood search loop over a
// Problem: it owns operator weights, usage counters, mean operator
// times, the temperature schedule, and the current/best solutions. An
// Engine is single-use and single-threaded; nothing inside it is
// accessed from outside Run.
type Engine struct {
	Problem *Problem

	DestroyOps []DestroyOperator
	RepairOps  []RepairOperator

	destroyWeights  []float64
	destroyUsage    []int
	destroyMeanTime []float64

	repairWeights  []float64
	repairUsage    []int
	repairMeanTime []float64

	Lambda      float64
	LambdaDecay float64

	Temperature float64
	Cool        float64

	Iterations int
	MinNBH     int

	Perturbation bool

	rng *rand.Rand

	Current     *Solution
	Best        *Solution
	CurrentCost float64
	BestCost    float64

	Trajectory []IterationRecord
}

// NewEngine builds an Engine ready to Run against problem.
func NewEngine(problem *Problem, cfg EngineConfig) *Engine {
	e := &Engine{
		Problem:      problem,
		DestroyOps:   cfg.DestroyOps,
		RepairOps:    cfg.RepairOps,
		Lambda:       cfg.Lambda,
		LambdaDecay:  cfg.LambdaDecay,
		Temperature:  cfg.Temperature,
		Cool:         cfg.Cool,
		Iterations:   cfg.Iterations,
		MinNBH:       cfg.MinNBH,
		Perturbation: cfg.Perturbation,
		rng:          rand.New(rand.NewSource(cfg.Seed)),
	}
	e.destroyWeights = uniformWeights(len(e.DestroyOps))
	e.destroyUsage = make([]int, len(e.DestroyOps))
	e.destroyMeanTime = make([]float64, len(e.DestroyOps))
	e.repairWeights = uniformWeights(len(e.RepairOps))
	e.repairUsage = make([]int, len(e.RepairOps))
	e.repairMeanTime = make([]float64, len(e.RepairOps))
	return e
}

func uniformWeights(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 1
	}
	return w
}

// DestroyWeights returns a snapshot of the current destroy-operator
// weight vector, in DestroyOps order.
func (e *Engine) DestroyWeights() []float64 {
	return append([]float64(nil), e.destroyWeights...)
}

// RepairWeights returns a snapshot of the current repair-operator
// weight vector, in RepairOps order.
func (e *Engine) RepairWeights() []float64 {
	return append([]float64(nil), e.repairWeights...)
}

// constructInitialSolution builds the starting Solution via random
// insertion and audits that every resulting route is feasible — R1
// accepts fallback routes unconditionally, so an instance that cannot
// be served at all (a customer whose demand exceeds capacity_second,
// or that lies beyond range_second/2 of every satellite) only
// surfaces here, as the engine's one fallible step.
func (e *Engine) constructInitialSolution() (*Solution, error) {
	s := NewSolution(e.Problem)
	s.RandomInsertion(e.rng)
	for _, r := range s.Routes1 {
		if !r.Feasible {
			return nil, ErrInfeasibleInstance
		}
	}
	for _, r := range s.Routes2 {
		if !r.Feasible {
			return nil, ErrInfeasibleInstance
		}
	}
	s.ComputeCost()
	return s, nil
}

// Run executes the full ALNS loop to completion (Iterations
// iterations, or immediate failure if the instance cannot be
// constructed at all) and returns the best solution found.
func (e *Engine) Run() (*Solution, error) {
	initial, err := e.constructInitialSolution()
	if err != nil {
		return nil, err
	}
	e.Current = initial
	e.Best = initial.Clone()
	e.CurrentCost = initial.Cost
	e.BestCost = initial.Cost

	for i := 0; i < e.Iterations; i++ {
		temp := e.Current.Clone()

		size := e.neighborhoodSize(temp)

		dIdx := e.selectOperator(e.destroyWeights, e.destroyUsage, e.destroyMeanTime)
		rIdx := e.selectOperator(e.repairWeights, e.repairUsage, e.repairMeanTime)
		destroyOp := e.DestroyOps[dIdx]
		repairOp := e.RepairOps[rIdx]

		destroyStart := time.Now()
		destroyOp.Apply(temp, size, e.rng, false)
		destroyElapsed := time.Since(destroyStart).Seconds()

		repairStart := time.Now()
		repairOp.Apply(temp, e.rng, e.Perturbation)
		repairElapsed := time.Since(repairStart).Seconds()

		updateMeanTime(e.destroyMeanTime, e.destroyUsage, dIdx, destroyElapsed)
		updateMeanTime(e.repairMeanTime, e.repairUsage, rIdx, repairElapsed)

		tempCost := temp.ComputeCost()

		score, accepted := e.accept(temp, tempCost)
		e.Temperature *= e.Cool

		e.destroyWeights[dIdx] = (1-e.Lambda)*e.destroyWeights[dIdx] + e.Lambda*score
		e.repairWeights[rIdx] = (1-e.Lambda)*e.repairWeights[rIdx] + e.Lambda*score
		e.Lambda *= e.LambdaDecay
		normalize(e.destroyWeights)
		normalize(e.repairWeights)

		e.Trajectory = append(e.Trajectory, IterationRecord{
			Iteration:   i,
			TempCost:    tempCost,
			CurrentCost: e.CurrentCost,
			BestCost:    e.BestCost,
			DestroyOp:   destroyOp.Name,
			RepairOp:    repairOp.Name,
			Accepted:    accepted,
			Score:       score,
		})
	}

	return e.Best, nil
}

// accept applies the simulated-annealing acceptance rule for a
// candidate temp solution and returns the operator score (2 for a new
// best, 1 for an accepted non-improving move, 0 for a rejection) and
// whether temp replaced current.
func (e *Engine) accept(temp *Solution, tempCost float64) (score float64, accepted bool) {
	if tempCost < e.BestCost {
		e.Best = temp.Clone()
		e.BestCost = tempCost
		e.Current = temp.Clone()
		e.CurrentCost = tempCost
		return 2, true
	}
	delta := tempCost - e.CurrentCost
	p := e.rng.Float64()
	if p < math.Exp(-delta/e.Temperature) {
		e.Current = temp.Clone()
		e.CurrentCost = tempCost
		return 1, true
	}
	return 0, false
}

// neighborhoodSize draws size_nbh uniformly from [MinNBH, max(MinNBH,
// interior-location-count/2)] over the echelon-2 routes of s.
func (e *Engine) neighborhoodSize(s *Solution) int {
	interior := 0
	for _, r := range s.Routes2 {
		if len(r.Locations) > 2 {
			interior += len(r.Locations) - 2
		}
	}
	maxNBH := interior / 2
	if maxNBH < e.MinNBH {
		maxNBH = e.MinNBH
	}
	if maxNBH == e.MinNBH {
		return e.MinNBH
	}
	return e.MinNBH + e.rng.Intn(maxNBH-e.MinNBH+1)
}

// selectOperator draws an operator index proportional to its weight
// (the "cold phase", used while any operator in the family is still
// unused) or to weight/mean_time (the "time-regularized phase",
// biasing toward cheap-and-effective operators once every operator has
// run at least once).
func (e *Engine) selectOperator(weights []float64, usage []int, meanTime []float64) int {
	coldPhase := false
	for _, u := range usage {
		if u == 0 {
			coldPhase = true
			break
		}
	}
	scores := make([]float64, len(weights))
	for i, w := range weights {
		if coldPhase || meanTime[i] <= 0 {
			scores[i] = w
		} else {
			scores[i] = w / meanTime[i]
		}
	}
	return sampleProportional(e.rng, scores)
}

// sampleProportional is the standard inverse-CDF weighted draw: a
// single rng.Float64() call determines the outcome, so the same RNG
// stream always yields the same selection.
func sampleProportional(rng *rand.Rand, scores []float64) int {
	total := 0.0
	for _, s := range scores {
		total += s
	}
	if total <= 0 {
		return rng.Intn(len(scores))
	}
	target := rng.Float64() * total
	cum := 0.0
	for i, s := range scores {
		cum += s
		if target < cum {
			return i
		}
	}
	return len(scores) - 1
}

func updateMeanTime(meanTime []float64, usage []int, idx int, elapsed float64) {
	n := usage[idx]
	meanTime[idx] = (meanTime[idx]*float64(n) + elapsed) / float64(n+1)
	usage[idx] = n + 1
}

func normalize(weights []float64) {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	if total <= 0 {
		return
	}
	for i := range weights {
		weights[i] /= total
	}
}
