package alns

import "math/rand"

func sumInts(xs []int) int {
	total := 0
	for _, x := range xs {
		total += x
	}
	return total
}

func unservedSatelliteIndices(satDemandNotServed []int) []int {
	var out []int
	for i, d := range satDemandNotServed {
		if d > 0 {
			out = append(out, i)
		}
	}
	return out
}

func removeInt(xs []int, value int) []int {
	for i, x := range xs {
		if x == value {
			return append(xs[:i:i], xs[i+1:]...)
		}
	}
	return xs
}

func replaceRoute(routes *[]*Route, oldRoute, newRoute *Route) {
	for i, r := range *routes {
		if r == oldRoute {
			(*routes)[i] = newRoute
			return
		}
	}
}

// RandomInsertion is repair operator R1: while customers remain
// unserved, pick one at random and attempt a greedy insert into a
// random existing second-echelon route, retrying other random routes
// on infeasibility; if none work, open a new single-customer route.
// The echelon-1 routes are then rebuilt the same way over satellite
// loads, each load capped at the inserting route's remaining capacity.
func (s *Solution) RandomInsertion(rng *rand.Rand) {
	s.randomInsertionSecond(rng)
	s.randomInsertionFirst(rng)
}

func (s *Solution) randomInsertionSecond(rng *rand.Rand) {
	s.pruneEmptyRoutes()
	for len(s.NotServed) > 0 {
		idx := rng.Intn(len(s.NotServed))
		cust := s.NotServed[idx]

		potential := append([]*Route(nil), s.Routes2...)
		inserted := false
		for len(potential) > 0 {
			ri := rng.Intn(len(potential))
			route := potential[ri]
			after := route.GreedyInsert(cust.DeliveryLoc, cust.DeliveryLoc.Demand)
			if after == nil {
				potential = append(potential[:ri], potential[ri+1:]...)
				continue
			}
			after.Customers = route.Customers.Clone()
			after.Customers.Add(cust)
			replaceRoute(&s.Routes2, route, after)
			inserted = true
			break
		}
		if !inserted {
			sat := s.Problem.Satellites[rng.Intn(len(s.Problem.Satellites))]
			newRoute := NewRoute([]Location{sat, cust.DeliveryLoc, sat}, s.Problem, false, []int{cust.DeliveryLoc.Demand})
			newRoute.Customers.Add(cust)
			s.Routes2 = append(s.Routes2, newRoute)
		}
		s.Served = append(s.Served, cust)
		s.NotServed = append(s.NotServed[:idx:idx], s.NotServed[idx+1:]...)
	}
}

func (s *Solution) randomInsertionFirst(rng *rand.Rand) {
	s.Routes1 = nil
	s.computeSatelliteDemand()

	for sumInts(s.SatDemandNotServed) > 0 {
		var satIdx int
		for {
			satIdx = rng.Intn(len(s.SatDemandNotServed))
			if s.SatDemandNotServed[satIdx] > 0 {
				break
			}
		}
		loadMax := s.SatDemandNotServed[satIdx]

		potential := append([]*Route(nil), s.Routes1...)
		inserted := false
		load := loadMax
		for len(potential) > 0 {
			ri := rng.Intn(len(potential))
			route := potential[ri]
			remaining := s.Problem.CapacityFirst - sumInts(route.ServedLoad)
			load = loadMax
			if load > remaining {
				load = remaining
			}
			after := route.GreedyInsert(s.Problem.Satellites[satIdx], load)
			if after == nil {
				potential = append(potential[:ri], potential[ri+1:]...)
				continue
			}
			replaceRoute(&s.Routes1, route, after)
			inserted = true
			break
		}
		if !inserted {
			depot := s.Problem.Depots[0]
			load = loadMax
			if load > s.Problem.CapacityFirst {
				load = s.Problem.CapacityFirst
			}
			newRoute := NewRoute([]Location{depot, s.Problem.Satellites[satIdx], depot}, s.Problem, true, []int{load})
			s.Routes1 = append(s.Routes1, newRoute)
		}
		s.SatDemandNotServed[satIdx] -= load
		s.SatDemandServed[satIdx] += load
	}
}

// GreedyInsertion is repair operator R2: for each unserved customer,
// compute the cheapest feasible insertion across every current route;
// if that delta exceeds CostSecond, also consider opening a new
// single-customer route at the nearest satellite, accepting it only if
// strictly cheaper. The echelon-1 phase applies the same
// try-every-route-and-position convention (see DESIGN.md: the spec's
// open question on echelon-1 insertion is resolved this way).
func (s *Solution) GreedyInsertion(rng *rand.Rand, perturbation bool) {
	s.greedyInsertionSecond(rng, perturbation)
	s.greedyInsertionFirst(rng, perturbation)
}

func (s *Solution) greedyInsertionSecond(rng *rand.Rand, perturbation bool) {
	s.pruneEmptyRoutes()

	for len(s.NotServed) > 0 {
		idx := rng.Intn(len(s.NotServed))
		cust := s.NotServed[idx]

		bestCost := InfeasibleCost
		var bestRoute, bestAfter *Route
		for _, route := range s.Routes2 {
			after := route.GreedyInsert(cust.DeliveryLoc, cust.DeliveryLoc.Demand)
			if after == nil {
				continue
			}
			cost := after.Cost - route.Cost
			if perturbation {
				cost = perturb(rng, cost)
			}
			if cost < bestCost {
				bestCost = cost
				bestRoute = route
				bestAfter = after
			}
		}

		inserted := false
		if bestCost > s.Problem.CostSecond {
			satIdx := s.Problem.NearestSatellite(cust.DeliveryLoc)
			sat := s.Problem.Satellites[satIdx]
			newRoute := NewRoute([]Location{sat, cust.DeliveryLoc, sat}, s.Problem, false, []int{cust.DeliveryLoc.Demand})
			if newRoute.Cost < bestCost {
				newRoute.Customers.Add(cust)
				s.Routes2 = append(s.Routes2, newRoute)
				inserted = true
			}
		}
		if !inserted {
			if bestRoute == nil {
				satIdx := s.Problem.NearestSatellite(cust.DeliveryLoc)
				sat := s.Problem.Satellites[satIdx]
				newRoute := NewRoute([]Location{sat, cust.DeliveryLoc, sat}, s.Problem, false, []int{cust.DeliveryLoc.Demand})
				newRoute.Customers.Add(cust)
				s.Routes2 = append(s.Routes2, newRoute)
			} else {
				bestAfter.Customers = bestRoute.Customers.Clone()
				bestAfter.Customers.Add(cust)
				replaceRoute(&s.Routes2, bestRoute, bestAfter)
			}
		}
		s.Served = append(s.Served, cust)
		s.NotServed = append(s.NotServed[:idx:idx], s.NotServed[idx+1:]...)
	}
}

func (s *Solution) greedyInsertionFirst(rng *rand.Rand, perturbation bool) {
	s.Routes1 = nil
	s.computeSatelliteDemand()
	unserved := unservedSatelliteIndices(s.SatDemandNotServed)
	curNode := s.Problem.Depots[0].NodeID

	for len(unserved) > 0 {
		nearestPos := 0
		nearestDist := s.Problem.Dist(curNode, s.Problem.Satellites[unserved[0]].NodeID)
		for i := 1; i < len(unserved); i++ {
			d := s.Problem.Dist(curNode, s.Problem.Satellites[unserved[i]].NodeID)
			if d < nearestDist {
				nearestDist = d
				nearestPos = i
			}
		}
		satIdx := unserved[nearestPos]
		sat := s.Problem.Satellites[satIdx]
		loadAvailable := s.SatDemandNotServed[satIdx]

		bestCost := InfeasibleCost
		bestRouteIdx := -1
		var bestAfter *Route
		bestLoad := 0
		for ri, route := range s.Routes1 {
			remaining := s.Problem.CapacityFirst - sumInts(route.ServedLoad)
			load := loadAvailable
			if load > remaining {
				load = remaining
			}
			if load <= 0 {
				continue
			}
			after := route.GreedyInsert(sat, load)
			if after == nil {
				continue
			}
			cost := after.Cost - route.Cost
			if perturbation {
				cost = perturb(rng, cost)
			}
			if cost < bestCost {
				bestCost = cost
				bestRouteIdx = ri
				bestAfter = after
				bestLoad = load
			}
		}

		var load int
		if bestRouteIdx >= 0 {
			s.Routes1[bestRouteIdx] = bestAfter
			load = bestLoad
		} else {
			depot := s.Problem.Depots[0]
			load = loadAvailable
			if load > s.Problem.CapacityFirst {
				load = s.Problem.CapacityFirst
			}
			newRoute := NewRoute([]Location{depot, sat, depot}, s.Problem, true, []int{load})
			s.Routes1 = append(s.Routes1, newRoute)
		}
		s.SatDemandNotServed[satIdx] -= load
		s.SatDemandServed[satIdx] += load
		curNode = sat.NodeID
		if s.SatDemandNotServed[satIdx] <= 0 {
			unserved = removeInt(unserved, satIdx)
		}
	}
}

// regretEntry tracks the best and second-best insertion found so far
// for one unserved customer or satellite load.
type regretEntry struct {
	bestDelta      float64
	bestRouteIdx   int
	bestRoute      *Route
	secondDelta    float64
	secondRouteIdx int
}

func indexOfMaxRegret(entries []regretEntry) int {
	best := 0
	bestVal := entries[0].secondDelta - entries[0].bestDelta
	for i := 1; i < len(entries); i++ {
		val := entries[i].secondDelta - entries[i].bestDelta
		if val > bestVal {
			bestVal = val
			best = i
		}
	}
	return best
}

// RegretInsertion is repair operator R3: maintain, for every unserved
// customer, the best and second-best feasible insertion across all
// current routes; repeatedly insert the customer whose regret
// (second-best minus best) is largest, then incrementally refresh the
// regret table (full re-evaluation for any entry pointing at the
// affected route, a single-route re-evaluation for the rest). The same
// scheme runs over unserved satellite loads for the first echelon.
func (s *Solution) RegretInsertion(rng *rand.Rand, perturbation bool) {
	s.regretInsertionSecond(rng, perturbation)
	s.regretInsertionFirst(rng, perturbation)
}

func (s *Solution) computeRegretSecond(cust Customer, rng *rand.Rand, perturbation bool) regretEntry {
	entry := regretEntry{bestDelta: InfeasibleCost, bestRouteIdx: -1, secondDelta: InfeasibleCost, secondRouteIdx: -1}
	for ri, route := range s.Routes2 {
		bestCost, secondCost, routeBest := route.FindRegret(cust.DeliveryLoc, cust.DeliveryLoc.Demand)
		if perturbation {
			bestCost = perturb(rng, bestCost)
			secondCost = perturb(rng, secondCost)
		}
		if bestCost < entry.bestDelta {
			entry.secondDelta = entry.bestDelta
			entry.secondRouteIdx = entry.bestRouteIdx
			entry.bestDelta = bestCost
			entry.bestRouteIdx = ri
			entry.bestRoute = routeBest
		}
		if secondCost < entry.secondDelta {
			entry.secondDelta = secondCost
			entry.secondRouteIdx = ri
		}
	}
	return entry
}

func (s *Solution) updateRegretAgainstRouteSecond(entry *regretEntry, routeIdx int, cust Customer, rng *rand.Rand, perturbation bool) {
	route := s.Routes2[routeIdx]
	bestCost, secondCost, routeBest := route.FindRegret(cust.DeliveryLoc, cust.DeliveryLoc.Demand)
	if perturbation {
		bestCost = perturb(rng, bestCost)
		secondCost = perturb(rng, secondCost)
	}
	if bestCost < entry.bestDelta {
		entry.secondDelta = entry.bestDelta
		entry.secondRouteIdx = entry.bestRouteIdx
		entry.bestDelta = bestCost
		entry.bestRouteIdx = routeIdx
		entry.bestRoute = routeBest
	}
	if secondCost < entry.secondDelta {
		entry.secondDelta = secondCost
		entry.secondRouteIdx = routeIdx
	}
}

func (s *Solution) regretInsertionSecond(rng *rand.Rand, perturbation bool) {
	s.pruneEmptyRoutes()

	entries := make([]regretEntry, len(s.NotServed))
	for i, cust := range s.NotServed {
		entries[i] = s.computeRegretSecond(cust, rng, perturbation)
	}

	for len(s.NotServed) > 0 {
		bestIdx := indexOfMaxRegret(entries)
		entry := entries[bestIdx]
		cust := s.NotServed[bestIdx]

		inserted := false
		var insertedRouteIdx int
		if entry.bestDelta > s.Problem.CostSecond {
			satIdx := s.Problem.NearestSatellite(cust.DeliveryLoc)
			sat := s.Problem.Satellites[satIdx]
			newRoute := NewRoute([]Location{sat, cust.DeliveryLoc, sat}, s.Problem, false, []int{cust.DeliveryLoc.Demand})
			if newRoute.Cost < entry.bestDelta {
				newRoute.Customers.Add(cust)
				s.Routes2 = append(s.Routes2, newRoute)
				inserted = true
				insertedRouteIdx = len(s.Routes2) - 1
			}
		}
		if !inserted {
			if entry.bestRoute == nil {
				satIdx := s.Problem.NearestSatellite(cust.DeliveryLoc)
				sat := s.Problem.Satellites[satIdx]
				newRoute := NewRoute([]Location{sat, cust.DeliveryLoc, sat}, s.Problem, false, []int{cust.DeliveryLoc.Demand})
				newRoute.Customers.Add(cust)
				s.Routes2 = append(s.Routes2, newRoute)
				insertedRouteIdx = len(s.Routes2) - 1
			} else {
				after := entry.bestRoute
				after.Customers = s.Routes2[entry.bestRouteIdx].Customers.Clone()
				after.Customers.Add(cust)
				s.Routes2[entry.bestRouteIdx] = after
				insertedRouteIdx = entry.bestRouteIdx
			}
		}

		s.NotServed = append(s.NotServed[:bestIdx:bestIdx], s.NotServed[bestIdx+1:]...)
		entries = append(entries[:bestIdx:bestIdx], entries[bestIdx+1:]...)
		s.Served = append(s.Served, cust)

		for i := range entries {
			other := s.NotServed[i]
			if entries[i].bestRouteIdx == insertedRouteIdx || entries[i].secondRouteIdx == insertedRouteIdx {
				entries[i] = s.computeRegretSecond(other, rng, perturbation)
			} else {
				s.updateRegretAgainstRouteSecond(&entries[i], insertedRouteIdx, other, rng, perturbation)
			}
		}
	}
}

func (s *Solution) computeRegretFirst(satIdx int, rng *rand.Rand, perturbation bool) regretEntry {
	entry := regretEntry{bestDelta: InfeasibleCost, bestRouteIdx: -1, secondDelta: InfeasibleCost, secondRouteIdx: -1}
	sat := s.Problem.Satellites[satIdx]
	demand := s.SatDemandNotServed[satIdx]
	for ri, route := range s.Routes1 {
		remaining := s.Problem.CapacityFirst - sumInts(route.ServedLoad)
		load := demand
		if load > remaining {
			load = remaining
		}
		if load <= 0 {
			continue
		}
		bestCost, secondCost, routeBest := route.FindRegret(sat, load)
		if perturbation {
			bestCost = perturb(rng, bestCost)
			secondCost = perturb(rng, secondCost)
		}
		if bestCost < entry.bestDelta {
			entry.secondDelta = entry.bestDelta
			entry.secondRouteIdx = entry.bestRouteIdx
			entry.bestDelta = bestCost
			entry.bestRouteIdx = ri
			entry.bestRoute = routeBest
		}
		if secondCost < entry.secondDelta {
			entry.secondDelta = secondCost
			entry.secondRouteIdx = ri
		}
	}
	return entry
}

func (s *Solution) updateRegretAgainstRouteFirst(entry *regretEntry, routeIdx, satIdx int, rng *rand.Rand, perturbation bool) {
	route := s.Routes1[routeIdx]
	sat := s.Problem.Satellites[satIdx]
	demand := s.SatDemandNotServed[satIdx]
	remaining := s.Problem.CapacityFirst - sumInts(route.ServedLoad)
	load := demand
	if load > remaining {
		load = remaining
	}
	if load <= 0 {
		return
	}
	bestCost, secondCost, routeBest := route.FindRegret(sat, load)
	if perturbation {
		bestCost = perturb(rng, bestCost)
		secondCost = perturb(rng, secondCost)
	}
	if bestCost < entry.bestDelta {
		entry.secondDelta = entry.bestDelta
		entry.secondRouteIdx = entry.bestRouteIdx
		entry.bestDelta = bestCost
		entry.bestRouteIdx = routeIdx
		entry.bestRoute = routeBest
	}
	if secondCost < entry.secondDelta {
		entry.secondDelta = secondCost
		entry.secondRouteIdx = routeIdx
	}
}

func (s *Solution) regretInsertionFirst(rng *rand.Rand, perturbation bool) {
	s.Routes1 = nil
	s.computeSatelliteDemand()
	unserved := unservedSatelliteIndices(s.SatDemandNotServed)

	entries := make(map[int]regretEntry, len(unserved))
	for _, satIdx := range unserved {
		entries[satIdx] = s.computeRegretFirst(satIdx, rng, perturbation)
	}

	for len(unserved) > 0 {
		bestPos := 0
		bestVal := entries[unserved[0]].secondDelta - entries[unserved[0]].bestDelta
		for i := 1; i < len(unserved); i++ {
			v := entries[unserved[i]].secondDelta - entries[unserved[i]].bestDelta
			if v > bestVal {
				bestVal = v
				bestPos = i
			}
		}
		satIdx := unserved[bestPos]
		entry := entries[satIdx]
		sat := s.Problem.Satellites[satIdx]
		demand := s.SatDemandNotServed[satIdx]

		var insertedRouteIdx, insertedLoad int
		opened := false
		if entry.bestDelta > s.Problem.CostFirst {
			depot := s.Problem.Depots[0]
			load := demand
			if load > s.Problem.CapacityFirst {
				load = s.Problem.CapacityFirst
			}
			newRoute := NewRoute([]Location{depot, sat, depot}, s.Problem, true, []int{load})
			if newRoute.Cost < entry.bestDelta {
				s.Routes1 = append(s.Routes1, newRoute)
				insertedRouteIdx = len(s.Routes1) - 1
				insertedLoad = load
				opened = true
			}
		}
		if !opened {
			if entry.bestRoute == nil {
				depot := s.Problem.Depots[0]
				load := demand
				if load > s.Problem.CapacityFirst {
					load = s.Problem.CapacityFirst
				}
				newRoute := NewRoute([]Location{depot, sat, depot}, s.Problem, true, []int{load})
				s.Routes1 = append(s.Routes1, newRoute)
				insertedRouteIdx = len(s.Routes1) - 1
				insertedLoad = load
			} else {
				before := sumInts(s.Routes1[entry.bestRouteIdx].ServedLoad)
				s.Routes1[entry.bestRouteIdx] = entry.bestRoute
				insertedRouteIdx = entry.bestRouteIdx
				insertedLoad = sumInts(entry.bestRoute.ServedLoad) - before
			}
		}

		s.SatDemandNotServed[satIdx] -= insertedLoad
		s.SatDemandServed[satIdx] += insertedLoad

		remaining := make([]int, 0, len(unserved))
		for _, other := range unserved {
			if other == satIdx && s.SatDemandNotServed[satIdx] <= 0 {
				continue
			}
			remaining = append(remaining, other)
		}
		unserved = remaining

		for _, other := range unserved {
			e := entries[other]
			if e.bestRouteIdx == insertedRouteIdx || e.secondRouteIdx == insertedRouteIdx {
				entries[other] = s.computeRegretFirst(other, rng, perturbation)
			} else {
				s.updateRegretAgainstRouteFirst(&e, insertedRouteIdx, other, rng, perturbation)
				entries[other] = e
			}
		}
		if s.SatDemandNotServed[satIdx] > 0 {
			entries[satIdx] = s.computeRegretFirst(satIdx, rng, perturbation)
		} else {
			delete(entries, satIdx)
		}
	}
}
