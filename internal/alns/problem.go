package alns

import "math"

// Default parameter values reproducing the reference instance set.
const (
	DefaultCapacityFirst  = 200
	DefaultCostFirst      = 50
	DefaultCapacitySecond = 50
	DefaultCostSecond     = 25
	DefaultCostHandling   = 5
	DefaultRangeSecond    = 200
)

// InfeasibleCost is the saturating sentinel used for infeasible routes
// and solutions in place of an unbounded cost. All arithmetic involving
// it must saturate rather than overflow.
const InfeasibleCost = math.MaxFloat64 / 4

// forbiddenArc marks depot<->customer connections, which must never be
// traversed by either echelon.
const forbiddenArc = math.MaxFloat64 / 2

// Problem is the static description of a 2E-CVRP instance: the network
// topology, precomputed distances, and cost/capacity parameters.
type Problem struct {
	Name       string
	Depots     []Location
	Satellites []Location
	Customers  []Customer

	// DistMatrix is indexed by NodeID and is symmetric. Entries between
	// a depot and a customer are forbiddenArc.
	DistMatrix [][]float64

	CapacityFirst  int
	CostFirst      float64
	CapacitySecond int
	CostSecond     float64
	CostHandling   float64
	RangeSecond    float64

	satIndex map[int]int
}

// NewProblem builds a Problem from its depots, satellites, and
// customers, computing the distance matrix and applying default
// parameters. NodeIDs must already be assigned contiguously: depot(s)
// first, then satellites, then customers (see internal/instance).
func NewProblem(name string, depots, satellites []Location, customers []Customer) *Problem {
	p := &Problem{
		Name:           name,
		Depots:         depots,
		Satellites:     satellites,
		Customers:      customers,
		CapacityFirst:  DefaultCapacityFirst,
		CostFirst:      DefaultCostFirst,
		CapacitySecond: DefaultCapacitySecond,
		CostSecond:     DefaultCostSecond,
		CostHandling:   DefaultCostHandling,
		RangeSecond:    DefaultRangeSecond,
	}
	p.buildDistanceMatrix()
	p.satIndex = make(map[int]int, len(satellites))
	for i, sat := range satellites {
		p.satIndex[sat.NodeID] = i
	}
	return p
}

// SatelliteIndexByNodeID maps a satellite's NodeID back to its index in
// Satellites.
func (p *Problem) SatelliteIndexByNodeID(nodeID int) int {
	return p.satIndex[nodeID]
}

func (p *Problem) buildDistanceMatrix() {
	n := len(p.Depots) + len(p.Satellites) + len(p.Customers)
	matrix := make([][]float64, n)
	for i := range matrix {
		matrix[i] = make([]float64, n)
	}

	all := make([]Location, 0, n)
	all = append(all, p.Depots...)
	all = append(all, p.Satellites...)
	for _, c := range p.Customers {
		all = append(all, c.DeliveryLoc)
	}

	for _, i := range all {
		for _, j := range all {
			if i.NodeID == j.NodeID {
				matrix[i.NodeID][j.NodeID] = 0
				continue
			}
			if (i.Kind == KindDepot && j.Kind == KindCustomer) ||
				(i.Kind == KindCustomer && j.Kind == KindDepot) {
				matrix[i.NodeID][j.NodeID] = forbiddenArc
				continue
			}
			matrix[i.NodeID][j.NodeID] = Distance(i, j)
		}
	}
	p.DistMatrix = matrix
}

// Dist returns the precomputed distance between two node ids.
func (p *Problem) Dist(a, b int) float64 {
	return p.DistMatrix[a][b]
}

// TotalCustomerDemand returns the sum of demand over every customer in
// the instance.
func (p *Problem) TotalCustomerDemand() int {
	total := 0
	for _, c := range p.Customers {
		total += c.DeliveryLoc.Demand
	}
	return total
}

// NearestSatellite returns the index into Satellites closest to loc.
func (p *Problem) NearestSatellite(loc Location) int {
	best := 0
	bestDist := math.Inf(1)
	for i, s := range p.Satellites {
		d := p.Dist(loc.NodeID, s.NodeID)
		if d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}
