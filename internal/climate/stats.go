package climate

import (
	"math"
)

// ComputeBaselines groups observations by (season, city) and computes the mean
// and sample standard deviation (n-1 denominator) of each group's temperature.
// A single-observation group gets Std = NaN.
func ComputeBaselines(obs []Observation) BaselineTable {
	groups := make(map[SeasonKey][]float64)
	for _, o := range obs {
		k := SeasonKey{Season: o.Season, City: o.City}
		groups[k] = append(groups[k], o.Temperature)
	}

	table := make(BaselineTable, len(groups))
	for k, temps := range groups {
		table[k] = Baseline{
			Mean:  mean(temps),
			Std:   sampleStd(temps),
			Count: len(temps),
		}
	}
	return table
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// sampleStd uses the two-pass formula to avoid cancellation on large offsets.
func sampleStd(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return math.NaN()
	}
	m := mean(values)
	var ss float64
	for _, v := range values {
		d := v - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(n-1))
}
