package testutil

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

// AssertValidUUID checks if a string is a valid UUID
func AssertValidUUID(t *testing.T, id string, msgAndArgs ...interface{}) bool {
	uuidRegex := regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)
	return assert.Regexp(t, uuidRegex, id, msgAndArgs...)
}

// AssertCostNonNegative checks that a solution or route cost is not negative.
func AssertCostNonNegative(t *testing.T, cost float64, msgAndArgs ...interface{}) bool {
	return assert.GreaterOrEqual(t, cost, 0.0, msgAndArgs...)
}

// AssertMonotonicBestCost checks that a sequence of best-cost-so-far values
// recorded across ALNS iterations never increases.
func AssertMonotonicBestCost(t *testing.T, bestCosts []float64, msgAndArgs ...interface{}) bool {
	for i := 1; i < len(bestCosts); i++ {
		if !assert.LessOrEqual(t, bestCosts[i], bestCosts[i-1], msgAndArgs...) {
			return false
		}
	}
	return true
}

// AssertWeightsSumToOne checks that a normalized operator weight vector sums
// to 1 within a small floating point tolerance.
func AssertWeightsSumToOne(t *testing.T, weights []float64, msgAndArgs ...interface{}) bool {
	sum := 0.0
	for _, w := range weights {
		sum += w
	}
	return assert.InDelta(t, 1.0, sum, 1e-9, msgAndArgs...)
}
