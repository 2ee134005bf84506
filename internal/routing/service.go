// Package routing wraps the ALNS engine the way the teacher's
// fleet.RouteOptimizer wraps its route search: validate a request,
// check a Redis cache, run the solver, persist the run, return a typed
// result. The engine itself never touches Redis or GORM.
package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/twoechelon/alns-solver/internal/alns"
	"github.com/twoechelon/alns-solver/internal/common/cache"
	"github.com/twoechelon/alns-solver/internal/common/logging"
	"github.com/twoechelon/alns-solver/internal/instance"
	apperrors "github.com/twoechelon/alns-solver/pkg/errors"
	"github.com/twoechelon/alns-solver/pkg/models"
)

// SolveRequest describes one solve invocation. InstancePath must name a
// readable fixed-column instance file; Seed/Iterations/Temperature/Cool
// override alns.DefaultEngineConfig when non-zero.
type SolveRequest struct {
	InstancePath string  `json:"instance_path" binding:"required"`
	Seed         int64   `json:"seed"`
	Iterations   int     `json:"iterations"`
	Temperature  float64 `json:"temperature"`
	Cool         float64 `json:"cool"`
}

// SolveResult is what a Solve call returns: the persisted run id plus
// the values a caller needs without fetching the row back.
type SolveResult struct {
	RunID               string        `json:"run_id"`
	InstanceName        string        `json:"instance_name"`
	FinalCost           float64       `json:"final_cost"`
	FirstEchelonRoutes  int           `json:"first_echelon_routes"`
	SecondEchelonRoutes int           `json:"second_echelon_routes"`
	Feasible            bool          `json:"feasible"`
	DestroyWeights      []float64     `json:"destroy_weights"`
	RepairWeights       []float64     `json:"repair_weights"`
	WallTime            time.Duration `json:"-"`
	WallTimeMS          int64         `json:"wall_time_ms"`
	CacheHit            bool          `json:"cache_hit"`
}

// Service is the routing use case: instance parsing + alns.Engine +
// persistence + caching.
type Service struct {
	repo   *Repository
	cache  *cache.RedisCache
	logger *logging.Logger
}

// NewService builds a Service. repo and redisCache may independently be
// nil: a nil repo skips persistence, a nil cache skips the cache lookup.
func NewService(repo *Repository, redisCache *cache.RedisCache, logger *logging.Logger) *Service {
	return &Service{repo: repo, cache: redisCache, logger: logger}
}

// Solve validates req, serves a cached result when available, and
// otherwise parses the instance, runs the ALNS engine to completion,
// persists the run, and caches it.
func (s *Service) Solve(ctx context.Context, req SolveRequest) (*SolveResult, error) {
	cfg := s.engineConfig(req)
	if err := validate(req, cfg); err != nil {
		return nil, err
	}

	problem, err := instance.Parse(req.InstancePath)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if cached, ok := s.lookupCache(ctx, problem.Name, cfg); ok {
			return cached, nil
		}
	}

	start := time.Now()
	engine := alns.NewEngine(problem, cfg)
	best, err := s.runEngine(engine, problem.Name)
	wallTime := time.Since(start)

	if err != nil {
		if s.logger != nil {
			s.logger.LogEngineRun(problem.Name, cfg.Iterations, 0, wallTime, err)
		}
		return nil, apperrors.NewUnprocessableEntityError(
			fmt.Sprintf("instance %s has no feasible solution", problem.Name)).WithInternal(err)
	}
	if s.logger != nil {
		s.logger.LogEngineRun(problem.Name, cfg.Iterations, best.Cost, wallTime, nil)
	}

	result := &SolveResult{
		InstanceName:        problem.Name,
		FinalCost:           best.Cost,
		FirstEchelonRoutes:  len(best.Routes1),
		SecondEchelonRoutes: len(best.Routes2),
		Feasible:            len(best.NotServed) == 0,
		DestroyWeights:      engine.DestroyWeights(),
		RepairWeights:       engine.RepairWeights(),
		WallTime:            wallTime,
		WallTimeMS:          wallTime.Milliseconds(),
	}

	if s.repo != nil {
		run, err := s.persist(ctx, req, cfg, result)
		if err != nil {
			return nil, err
		}
		result.RunID = run.ID
	}

	if s.cache != nil {
		s.storeCache(ctx, problem.Name, cfg, result)
	}

	return result, nil
}

// runEngine drives engine.Run through a logging.PerformanceMonitor so a
// slow ALNS run (the search routinely runs for seconds) is logged the
// same way a slow query is logged by the database package. With no
// logger configured it just calls engine.Run directly.
func (s *Service) runEngine(engine *alns.Engine, instanceName string) (*alns.Solution, error) {
	if s.logger == nil {
		return engine.Run()
	}

	pm := logging.NewPerformanceMonitor(s.logger)
	result, err := pm.TrackOperationWithResult("alns_run:"+instanceName, func() (interface{}, error) {
		return engine.Run()
	})
	if err != nil {
		return nil, err
	}
	return result.(*alns.Solution), nil
}

func (s *Service) engineConfig(req SolveRequest) alns.EngineConfig {
	cfg := alns.DefaultEngineConfig()
	if req.Seed != 0 {
		cfg.Seed = req.Seed
	}
	if req.Iterations != 0 {
		cfg.Iterations = req.Iterations
	}
	if req.Temperature != 0 {
		cfg.Temperature = req.Temperature
	}
	if req.Cool != 0 {
		cfg.Cool = req.Cool
	}
	return cfg
}

func validate(req SolveRequest, cfg alns.EngineConfig) error {
	if req.InstancePath == "" {
		return apperrors.NewValidationError("instance_path is required")
	}
	if cfg.Iterations <= 0 {
		return apperrors.NewValidationError("iterations must be positive")
	}
	if cfg.Temperature <= 0 {
		return apperrors.NewValidationError("temperature must be positive")
	}
	if cfg.Cool <= 0 || cfg.Cool >= 1 {
		return apperrors.NewValidationError("cool must be in (0, 1)")
	}
	return nil
}

func (s *Service) lookupCache(ctx context.Context, instanceName string, cfg alns.EngineConfig) (*SolveResult, bool) {
	key := s.cache.RunKey(instanceName, cfg.Seed, cfg.Iterations)
	var cached SolveResult
	if err := s.cache.Get(ctx, key, &cached); err != nil {
		return nil, false
	}
	cached.CacheHit = true
	return &cached, true
}

func (s *Service) storeCache(ctx context.Context, instanceName string, cfg alns.EngineConfig, result *SolveResult) {
	key := s.cache.RunKey(instanceName, cfg.Seed, cfg.Iterations)
	_ = s.cache.Set(ctx, key, result, cache.LongExpiration)
}

func (s *Service) persist(ctx context.Context, req SolveRequest, cfg alns.EngineConfig, result *SolveResult) (*models.OptimizationRun, error) {
	destroyWeights, _ := json.Marshal(result.DestroyWeights)
	repairWeights, _ := json.Marshal(result.RepairWeights)

	run := &models.OptimizationRun{
		InstanceName:        result.InstanceName,
		Seed:                cfg.Seed,
		Iterations:          cfg.Iterations,
		Temperature:         cfg.Temperature,
		Cool:                cfg.Cool,
		FinalCost:           result.FinalCost,
		FirstEchelonRoutes:  result.FirstEchelonRoutes,
		SecondEchelonRoutes: result.SecondEchelonRoutes,
		Feasible:            result.Feasible,
		DestroyWeights:      destroyWeights,
		RepairWeights:       repairWeights,
		WallTimeMS:          result.WallTimeMS,
	}

	if err := s.repo.Create(ctx, run); err != nil {
		return nil, apperrors.NewInternalError("failed to persist optimization run").WithInternal(err)
	}
	return run, nil
}
