package climate

import (
	"math"
)

// SigmaThreshold is the number of standard deviations a temperature must
// deviate from the mean to be anomalous.
const SigmaThreshold = 2.0

// IsAnomaly applies the 2-sigma rule. An undefined (NaN) or zero spread
// never yields an anomaly.
func IsAnomaly(temperature float64, b Baseline) bool {
	if math.IsNaN(b.Std) || b.Std == 0 {
		return false
	}
	lower := b.Mean - SigmaThreshold*b.Std
	upper := b.Mean + SigmaThreshold*b.Std
	return temperature < lower || temperature > upper
}

// Classify joins every observation with its (season, city) baseline and flags
// outliers. The result is aligned with obs by index; MovingAvg is left zero.
func Classify(obs []Observation, table BaselineTable) ([]EnrichedObservation, error) {
	out := make([]EnrichedObservation, len(obs))
	for i, o := range obs {
		b, ok := table.Lookup(o.City, o.Season)
		if !ok {
			return nil, &MissingBaselineError{Key: SeasonKey{Season: o.Season, City: o.City}}
		}
		out[i] = EnrichedObservation{
			Observation: o,
			Mean:        b.Mean,
			Std:         b.Std,
			Anomaly:     IsAnomaly(o.Temperature, b),
		}
	}
	return out, nil
}
