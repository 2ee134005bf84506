package alns

import "math/rand"

// RandomRemoval is destroy operator D1: repeatedly pick a random
// non-degenerate route, pick a random interior location in it, and
// remove it. Terminates early once no route has a removable location.
func (s *Solution) RandomRemoval(nRemove int, rng *rand.Rand, firstEchelon bool) {
	routes := s.routesPtr(firstEchelon)
	for n := 0; n < nRemove; n++ {
		if len(*routes) == 0 {
			break
		}
		var route *Route
		for {
			idx := rng.Intn(len(*routes))
			route = (*routes)[idx]
			if len(route.Locations) > 2 {
				break
			}
			*routes = removeRouteAt(*routes, idx)
			if len(*routes) == 0 {
				break
			}
			total := 0
			for _, r := range *routes {
				total += len(r.Locations)
			}
			if total == 2*len(*routes) {
				break
			}
		}
		if len(route.Locations) <= 2 {
			break
		}
		loc := route.Locations[1+rng.Intn(len(route.Locations)-2)]
		s.removeLocation(loc, firstEchelon, route)
	}
}

// RelatedRemoval is destroy operator D2 (Shaw removal): remove a random
// seed location from a random non-degenerate route, then remove the
// nRemove-1 currently-served locations (of the same echelon) nearest to
// the seed by Euclidean distance.
func (s *Solution) RelatedRemoval(nRemove int, rng *rand.Rand, firstEchelon bool) {
	routes := s.routesPtr(firstEchelon)
	if len(*routes) == 0 {
		return
	}
	var seedRoute *Route
	for {
		seedRoute = (*routes)[rng.Intn(len(*routes))]
		if len(seedRoute.Locations) > 2 {
			break
		}
	}
	seed := seedRoute.Locations[1+rng.Intn(len(seedRoute.Locations)-2)]
	s.removeLocation(seed, firstEchelon, seedRoute)

	type candidate struct {
		loc   Location
		route *Route
		dist  float64
	}
	var candidates []candidate
	for _, route := range *routes {
		for i := 1; i < len(route.Locations)-1; i++ {
			loc := route.Locations[i]
			candidates = append(candidates, candidate{
				loc:   loc,
				route: route,
				dist:  Distance(seed, loc),
			})
		}
	}
	sortByDistance(candidates, func(a, b candidate) bool { return a.dist < b.dist })

	toRemove := nRemove - 1
	if toRemove > len(candidates) {
		toRemove = len(candidates)
	}
	for i := 0; i < toRemove; i++ {
		// the stored owning route stays valid: earlier removals in
		// this pass may have mutated route contents (ServedLoad
		// indices), but never move a location between routes.
		s.removeLocation(candidates[i].loc, firstEchelon, candidates[i].route)
	}
}

func sortByDistance[T any](items []T, less func(a, b T) bool) {
	// simple insertion sort: neighborhood sizes are small (<= a few
	// dozen), and this keeps the destroy operators free of any
	// non-deterministic sort implementation detail.
	for i := 1; i < len(items); i++ {
		for j := i; j > 0 && less(items[j], items[j-1]); j-- {
			items[j], items[j-1] = items[j-1], items[j]
		}
	}
}

type worstCandidate struct {
	score    float64
	location Location
	route    *Route
}

// WorstRemoval implements destroy operators D3 (deterministic, when
// randomised is false) and D4 (randomised). For every interior location
// of the chosen echelon's routes it computes the detour-cost ratio
// (d(prev,c)+d(c,next)-d(prev,next)) / avg(incident arcs), optionally
// scaled by the r^u perturbation, and removes the nRemove
// highest-scoring locations.
func (s *Solution) WorstRemoval(nRemove int, rng *rand.Rand, firstEchelon bool, randomised bool) {
	routes := *s.routesPtr(firstEchelon)
	var candidates []worstCandidate
	for _, route := range routes {
		for i := 1; i < len(route.Locations)-1; i++ {
			prev := route.Locations[i-1]
			cur := route.Locations[i]
			next := route.Locations[i+1]
			withDetour := s.Problem.Dist(prev.NodeID, cur.NodeID) + s.Problem.Dist(cur.NodeID, next.NodeID)
			without := s.Problem.Dist(prev.NodeID, next.NodeID)
			avg := withDetour / 2
			score := (withDetour - without) / avg
			if randomised {
				score = perturb(rng, score)
			}
			candidates = append(candidates, worstCandidate{score: score, location: cur, route: route})
		}
	}
	sortByDistance(candidates, func(a, b worstCandidate) bool { return a.score > b.score })

	n := nRemove
	if n > len(candidates) {
		n = len(candidates)
	}
	for i := 0; i < n; i++ {
		s.removeLocation(candidates[i].location, firstEchelon, candidates[i].route)
	}
}
