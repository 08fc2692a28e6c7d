package forecast

import (
	"math"

	"github.com/shopspring/decimal"
)

// ExpectedDemand translates a 365-day reliability fraction and an installed
// population into the expected number of failures, rounded to 2 places:
//
//	round((1 - factor) * population, 2)
//
// The calculation runs in decimal so that e.g. 0.95 and 1000 give exactly 50.
func ExpectedDemand(factor, population float64) (decimal.Decimal, error) {
	if math.IsNaN(factor) || factor < 0 || factor > 1 {
		return decimal.Zero, &InvalidRangeError{Field: "reliability_factor", Value: factor, Want: "[0, 1]"}
	}
	if math.IsNaN(population) || math.IsInf(population, 0) || population < 0 {
		return decimal.Zero, &InvalidRangeError{Field: "population", Value: population, Want: ">= 0"}
	}

	failing := decimal.NewFromInt(1).Sub(decimal.NewFromFloat(factor))
	return failing.Mul(decimal.NewFromFloat(population)).Round(2), nil
}

// LookupReliability finds the factor for a material in the reliability table.
func LookupReliability(table []ReliabilityRecord, material MaterialID) (ReliabilityRecord, error) {
	for _, r := range table {
		if r.MaterialID == material {
			return r, nil
		}
	}
	return ReliabilityRecord{}, &NotFoundError{Kind: "reliability", MaterialID: material}
}
