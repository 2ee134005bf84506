package alns

import (
	"math"
	"math/rand"
)

// Solution is a complete (or partially destroyed) assignment of
// customers to second-echelon routes and satellite loads to
// first-echelon routes.
type Solution struct {
	Problem *Problem

	Routes1 []*Route // first echelon: depot -> satellites -> depot
	Routes2 []*Route // second echelon: satellite -> customers -> satellite

	Served    []Customer
	NotServed []Customer

	SatDemandServed    []int
	SatDemandNotServed []int

	Distance float64
	Cost     float64
}

// NewSolution builds an empty solution for problem with every customer
// unserved, ready for an initial repair to populate it.
func NewSolution(problem *Problem) *Solution {
	notServed := make([]Customer, len(problem.Customers))
	copy(notServed, problem.Customers)
	return &Solution{
		Problem:            problem,
		NotServed:          notServed,
		SatDemandServed:    make([]int, len(problem.Satellites)),
		SatDemandNotServed: make([]int, len(problem.Satellites)),
	}
}

// ComputeDistance sums the distance of every route across both
// echelons.
func (s *Solution) ComputeDistance() float64 {
	total := 0.0
	for _, r := range s.Routes1 {
		total += r.Distance
	}
	for _, r := range s.Routes2 {
		total += r.Distance
	}
	s.Distance = total
	return total
}

// ComputeCost recomputes and caches the solution's total cost as the
// sum of each route's own cost — each route already attributes
// handling to echelon-1 and the per-visit vehicle cost to itself, so
// no further handling/vehicle term is added at the solution level.
func (s *Solution) ComputeCost() float64 {
	s.ComputeDistance()
	total := 0.0
	for _, r := range s.Routes1 {
		total += r.Cost
	}
	for _, r := range s.Routes2 {
		total += r.Cost
	}
	s.Cost = total
	return total
}

// Clone returns a deep copy of the solution, safe for independent
// mutation — the unit of work the ALNS engine clones every iteration.
func (s *Solution) Clone() *Solution {
	clone := &Solution{
		Problem:            s.Problem,
		Routes1:            make([]*Route, len(s.Routes1)),
		Routes2:            make([]*Route, len(s.Routes2)),
		Served:             append([]Customer(nil), s.Served...),
		NotServed:          append([]Customer(nil), s.NotServed...),
		SatDemandServed:    append([]int(nil), s.SatDemandServed...),
		SatDemandNotServed: append([]int(nil), s.SatDemandNotServed...),
		Distance:           s.Distance,
		Cost:               s.Cost,
	}
	for i, r := range s.Routes1 {
		clone.Routes1[i] = r.Clone()
	}
	for i, r := range s.Routes2 {
		clone.Routes2[i] = r.Clone()
	}
	return clone
}

func (s *Solution) routesPtr(firstEchelon bool) *[]*Route {
	if firstEchelon {
		return &s.Routes1
	}
	return &s.Routes2
}

func removeRouteAt(routes []*Route, index int) []*Route {
	return append(routes[:index], routes[index+1:]...)
}

// removeLocation removes location from route (which must belong to the
// echelon identified by firstEchelon) and restores served/not-served
// bookkeeping accordingly.
func (s *Solution) removeLocation(location Location, firstEchelon bool, route *Route) {
	_, load := route.RemoveLocation(location)
	if firstEchelon {
		idx := s.Problem.SatelliteIndexByNodeID(location.NodeID)
		s.SatDemandServed[idx] -= load
		s.SatDemandNotServed[idx] += load
		return
	}
	for i, c := range s.Served {
		if c.DeliveryLoc.NodeID == location.NodeID {
			s.Served = append(s.Served[:i:i], s.Served[i+1:]...)
			s.NotServed = append(s.NotServed, c)
			break
		}
	}
}

// computeSatelliteDemand derives SatDemandNotServed from the current
// second-echelon routes and resets SatDemandServed to zero, ahead of a
// from-scratch reconstruction of the first echelon.
func (s *Solution) computeSatelliteDemand() {
	n := len(s.Problem.Satellites)
	s.SatDemandNotServed = make([]int, n)
	s.SatDemandServed = make([]int, n)
	for _, route := range s.Routes2 {
		if len(route.Locations) == 0 {
			continue
		}
		idx := s.Problem.SatelliteIndexByNodeID(route.Locations[0].NodeID)
		total := 0
		for _, load := range route.ServedLoad {
			total += load
		}
		s.SatDemandNotServed[idx] += total
	}
}

// pruneEmptyRoutes drops second-echelon routes that have become
// degenerate (no interior customer) so repairs never reuse them.
func (s *Solution) pruneEmptyRoutes() {
	kept := s.Routes2[:0]
	for _, r := range s.Routes2 {
		if !r.IsDegenerate() {
			kept = append(kept, r)
		}
	}
	s.Routes2 = kept
}

// perturb applies the r^u tie-breaking multiplier used throughout the
// repair operators: r uniform [0,1), u uniform [-0.2,0.2].
func perturb(rng *rand.Rand, value float64) float64 {
	const epsilon = 1e-9
	r := rng.Float64()
	if r < epsilon {
		r = epsilon
	}
	u := -0.2 + rng.Float64()*0.4
	return value * math.Pow(r, u)
}
