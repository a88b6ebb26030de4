package climate

import (
	"sort"
)

// DefaultWindow is the moving average window size in observations.
const DefaultWindow = 30

// RollingMean computes a centered rolling mean with a minimum of one value per
// window. For window w the value at i averages the clipped range
// [i-w/2, i+(w-1)/2], so boundary positions use a shorter window.
// A window below 1 is treated as 1.
func RollingMean(values []float64, window int) []float64 {
	if window < 1 {
		window = 1
	}
	n := len(values)
	out := make([]float64, n)
	offset := (window - 1) / 2
	for i := range values {
		end := i + 1 + offset
		start := end - window
		if start < 0 {
			start = 0
		}
		if end > n {
			end = n
		}
		var sum float64
		for _, v := range values[start:end] {
			sum += v
		}
		out[i] = sum / float64(end-start)
	}
	return out
}

// MovingAverage smooths each city's temperatures, ordered by timestamp, with
// two sequential passes of RollingMean. The result is aligned with obs by
// index and windows never cross city boundaries.
func MovingAverage(obs []Observation, window int) []float64 {
	byCity := make(map[string][]int)
	var cities []string
	for i, o := range obs {
		if _, ok := byCity[o.City]; !ok {
			cities = append(cities, o.City)
		}
		byCity[o.City] = append(byCity[o.City], i)
	}

	out := make([]float64, len(obs))
	for _, city := range cities {
		idx := byCity[city]
		sort.SliceStable(idx, func(a, b int) bool {
			return obs[idx[a]].Timestamp.Before(obs[idx[b]].Timestamp)
		})

		temps := make([]float64, len(idx))
		for j, i := range idx {
			temps[j] = obs[i].Temperature
		}

		smoothed := RollingMean(RollingMean(temps, window), window)
		for j, i := range idx {
			out[i] = smoothed[j]
		}
	}
	return out
}
