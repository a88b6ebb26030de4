package climate

import (
	"math"
	"sort"
)

// Summary is the descriptive statistics of a temperature series.
type Summary struct {
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
	Std   float64 `json:"std"`
	Min   float64 `json:"min"`
	P25   float64 `json:"p25"`
	P50   float64 `json:"p50"`
	P75   float64 `json:"p75"`
	Max   float64 `json:"max"`
}

// Summarize describes values. Quantiles use linear interpolation between the
// closest ranks. An empty input yields NaN statistics.
func Summarize(values []float64) Summary {
	if len(values) == 0 {
		nan := math.NaN()
		return Summary{Mean: nan, Std: nan, Min: nan, P25: nan, P50: nan, P75: nan, Max: nan}
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	return Summary{
		Count: len(sorted),
		Mean:  mean(sorted),
		Std:   sampleStd(sorted),
		Min:   sorted[0],
		P25:   quantile(sorted, 0.25),
		P50:   quantile(sorted, 0.50),
		P75:   quantile(sorted, 0.75),
		Max:   sorted[len(sorted)-1],
	}
}

func quantile(sorted []float64, q float64) float64 {
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// SeasonBaseline is one row of a city's seasonal baseline table.
type SeasonBaseline struct {
	Season Season `json:"season"`
	Baseline
}

// SeasonTable lists the baselines of city in winter, spring, summer, autumn
// order, skipping seasons without history.
func SeasonTable(table BaselineTable, city string) []SeasonBaseline {
	var rows []SeasonBaseline
	for _, s := range Seasons {
		if b, ok := table.Lookup(city, s); ok {
			rows = append(rows, SeasonBaseline{Season: s, Baseline: b})
		}
	}
	return rows
}

// Cities returns the distinct cities of a dataset in first-seen order.
func Cities(obs []Observation) []string {
	seen := make(map[string]struct{})
	var cities []string
	for _, o := range obs {
		if _, ok := seen[o.City]; ok {
			continue
		}
		seen[o.City] = struct{}{}
		cities = append(cities, o.City)
	}
	return cities
}
