package alns

// Route is an ordered sequence of locations for one echelon, together
// with the load delivered at each interior stop. The first and last
// locations must be the same depot (first echelon) or satellite
// (second echelon). Routes are treated as values: InsertAt and
// GreedyInsert return new routes rather than mutating the receiver;
// RemoveLocation mutates in place because it is only ever applied to a
// route a caller already owns exclusively (see Solution.removeLocation).
type Route struct {
	Locations      []Location
	ServedLoad     []int
	IsFirstEchelon bool
	Customers      *CustomerSet

	problem *Problem

	Distance float64
	Cost     float64
	Feasible bool
}

// NewRoute builds a Route, computing its feasibility, distance, and
// cost. Infeasible routes get their Distance and Cost set to
// InfeasibleCost rather than being rejected at construction time — per
// spec, infeasible routes surface via Feasible=false and are simply
// never kept in a Solution.
func NewRoute(locations []Location, problem *Problem, isFirstEchelon bool, servedLoad []int) *Route {
	r := &Route{
		Locations:      locations,
		ServedLoad:     servedLoad,
		IsFirstEchelon: isFirstEchelon,
		problem:        problem,
	}
	if !isFirstEchelon {
		r.Customers = NewCustomerSet()
	}
	r.recompute()
	return r
}

func (r *Route) recompute() {
	r.Feasible = r.IsFeasible()
	if r.Feasible {
		r.Distance = r.ComputeDistance()
		r.Cost = r.ComputeCost()
	} else {
		r.Distance = InfeasibleCost
		r.Cost = InfeasibleCost
	}
}

// ComputeDistance sums the distance matrix entries along the route.
func (r *Route) ComputeDistance() float64 {
	total := 0.0
	for i := 1; i < len(r.Locations); i++ {
		prev := r.Locations[i-1]
		cur := r.Locations[i]
		total += r.problem.Dist(prev.NodeID, cur.NodeID)
	}
	return total
}

// ComputeCost returns handling (first echelon only) + distance +
// per-visit vehicle cost. The vehicle term is deliberately a per-visit
// cost, not a flat fixed cost — this reproduces the reference formula.
func (r *Route) ComputeCost() float64 {
	distance := r.ComputeDistance()
	var handling, costVeh float64
	if r.IsFirstEchelon {
		costVeh = r.problem.CostFirst
		sum := 0
		for _, l := range r.ServedLoad {
			sum += l
		}
		handling = r.problem.CostHandling * float64(sum)
	} else {
		costVeh = r.problem.CostSecond
	}
	vehicleCost := costVeh * float64(len(r.Locations))
	return handling + distance + vehicleCost
}

// IsFeasible checks endpoint legality, echelon-2 range, interior kind
// consistency, and prefix-sum capacity.
func (r *Route) IsFeasible() bool {
	if len(r.Locations) < 2 {
		return false
	}
	first := r.Locations[0]
	last := r.Locations[len(r.Locations)-1]
	if first.NodeID != last.NodeID {
		return false
	}

	var capacity int
	if r.IsFirstEchelon {
		if first.Kind != KindDepot {
			return false
		}
		capacity = r.problem.CapacityFirst
	} else {
		if first.Kind != KindSatellite {
			return false
		}
		capacity = r.problem.CapacitySecond
		if r.ComputeDistance() > r.problem.RangeSecond {
			return false
		}
	}

	wantInteriorKind := KindSatellite
	if !r.IsFirstEchelon {
		wantInteriorKind = KindCustomer
	}
	for i := 1; i < len(r.Locations)-1; i++ {
		if r.Locations[i].Kind != wantInteriorKind {
			return false
		}
	}

	if len(r.ServedLoad) != len(r.Locations)-2 {
		return false
	}
	curLoad := 0
	for _, load := range r.ServedLoad {
		curLoad += load
		if curLoad > capacity {
			return false
		}
	}
	return true
}

// IsDegenerate reports whether the route carries no interior stops
// (a length-2 loop).
func (r *Route) IsDegenerate() bool {
	return len(r.Locations) <= 2
}

// RemoveLocation removes the first occurrence (by NodeID) of location
// from the route, mutating it in place, and returns the position it
// occupied and the load that had been assigned there.
func (r *Route) RemoveLocation(location Location) (removedIndex, removedLoad int) {
	index := -1
	for i, l := range r.Locations {
		if l.NodeID == location.NodeID {
			index = i
			break
		}
	}
	if index <= 0 {
		return 0, 0
	}
	removedLoad = r.ServedLoad[index-1]
	r.Locations = append(r.Locations[:index], r.Locations[index+1:]...)
	r.ServedLoad = append(r.ServedLoad[:index-1], r.ServedLoad[index:]...)
	if !r.IsFirstEchelon && r.Customers != nil {
		r.Customers.Remove(location.NodeID)
	}
	r.recompute()
	return index, removedLoad
}

// InsertAt returns a new Route with location inserted at index and load
// recorded at index-1, or nil if the resulting route is infeasible.
func (r *Route) InsertAt(location Location, load, index int) *Route {
	locations := make([]Location, len(r.Locations)+1)
	copy(locations, r.Locations[:index])
	locations[index] = location
	copy(locations[index+1:], r.Locations[index:])

	served := make([]int, len(r.ServedLoad)+1)
	copy(served, r.ServedLoad[:index-1])
	served[index-1] = load
	copy(served[index:], r.ServedLoad[index-1:])

	candidate := NewRoute(locations, r.problem, r.IsFirstEchelon, served)
	if !candidate.Feasible {
		return nil
	}
	if !r.IsFirstEchelon && r.Customers != nil {
		candidate.Customers = r.Customers.Clone()
	}
	return candidate
}

// GreedyInsert tries every internal insertion position and returns the
// feasible result with the minimum resulting distance (first such
// position wins ties), or nil if load<=0 or no position is feasible.
func (r *Route) GreedyInsert(location Location, load int) *Route {
	if load <= 0 {
		return nil
	}
	var best *Route
	bestDistance := InfeasibleCost
	for i := 1; i < len(r.Locations); i++ {
		candidate := r.InsertAt(location, load, i)
		if candidate == nil {
			continue
		}
		if candidate.Distance < bestDistance {
			best = candidate
			bestDistance = candidate.Distance
		}
	}
	return best
}

// FindRegret explores every internal insertion position and returns the
// best and second-best Δcost (relative to the route's current cost) and
// the route realizing the best insertion. A missing slot's delta is
// +Inf (represented with InfeasibleCost) when fewer than two feasible
// insertions exist.
func (r *Route) FindRegret(location Location, load int) (bestDelta, secondDelta float64, bestRoute *Route) {
	curCost := r.Cost
	bestCost := InfeasibleCost
	secondCost := InfeasibleCost
	if load <= 0 {
		return bestCost - curCost, secondCost - curCost, nil
	}
	for i := 1; i < len(r.Locations); i++ {
		candidate := r.InsertAt(location, load, i)
		if candidate == nil {
			continue
		}
		if candidate.Cost < bestCost {
			secondCost = bestCost
			bestCost = candidate.Cost
			bestRoute = candidate
		} else if candidate.Cost < secondCost {
			secondCost = candidate.Cost
		}
	}
	return bestCost - curCost, secondCost - curCost, bestRoute
}

// Clone returns a deep copy of the route, safe for independent mutation
// by a different Solution snapshot.
func (r *Route) Clone() *Route {
	clone := &Route{
		Locations:      append([]Location(nil), r.Locations...),
		ServedLoad:     append([]int(nil), r.ServedLoad...),
		IsFirstEchelon: r.IsFirstEchelon,
		problem:        r.problem,
		Distance:       r.Distance,
		Cost:           r.Cost,
		Feasible:       r.Feasible,
	}
	if r.Customers != nil {
		clone.Customers = r.Customers.Clone()
	}
	return clone
}
