package alns

// tinyProblem builds a small, hand-checkable instance: one depot, two
// satellites, four customers, all well within capacity and range so
// every operator has room to work.
func tinyProblem() *Problem {
	depot := NewLocation(0, 0, 0, 0, KindDepot, 0)
	sat0 := NewLocation(10, 0, 0, 5, KindSatellite, 1)
	sat1 := NewLocation(-10, 0, 0, 5, KindSatellite, 2)

	customers := []Customer{
		NewCustomer(3, NewLocation(12, 1, 5, 1, KindCustomer, 3)),
		NewCustomer(4, NewLocation(12, -1, 5, 1, KindCustomer, 4)),
		NewCustomer(5, NewLocation(-12, 1, 5, 1, KindCustomer, 5)),
		NewCustomer(6, NewLocation(-12, -1, 5, 1, KindCustomer, 6)),
	}

	p := NewProblem("tiny", []Location{depot}, []Location{sat0, sat1}, customers)
	return p
}

// feasibleEngineConfig returns a small, fast EngineConfig suitable for
// exercising the main loop in tests.
func feasibleEngineConfig(seed int64, iterations int) EngineConfig {
	cfg := DefaultEngineConfig()
	cfg.Seed = seed
	cfg.Iterations = iterations
	return cfg
}
