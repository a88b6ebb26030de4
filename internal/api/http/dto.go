package httpapi

import (
	"math"
	"time"

	"github.com/i474232898/temperature-anomaly/internal/climate"
	"github.com/i474232898/temperature-anomaly/internal/store"
)

// JSON cannot carry NaN, so undefined statistics are encoded as null.
func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

type datasetResponse struct {
	ID       string    `json:"id"`
	LoadedAt time.Time `json:"loadedAt"`
	Rows     int       `json:"rows"`
	Cities   []string  `json:"cities"`
}

func newDatasetResponse(ds *store.Dataset) datasetResponse {
	cities := ds.Cities
	if cities == nil {
		cities = []string{}
	}
	return datasetResponse{
		ID:       ds.ID,
		LoadedAt: ds.LoadedAt,
		Rows:     len(ds.Rows),
		Cities:   cities,
	}
}

type observationResponse struct {
	Timestamp   time.Time      `json:"timestamp"`
	Temperature float64        `json:"temperature"`
	Season      climate.Season `json:"season"`
	Month       int            `json:"month"`
	Mean        *float64       `json:"mean"`
	Std         *float64       `json:"std"`
	Anomaly     bool           `json:"anomaly"`
	MovingAvg   *float64       `json:"movingAvg"`
}

func newObservationResponses(rows []climate.EnrichedObservation) []observationResponse {
	out := make([]observationResponse, len(rows))
	for i, r := range rows {
		out[i] = observationResponse{
			Timestamp:   r.Timestamp,
			Temperature: r.Temperature,
			Season:      r.Season,
			Month:       r.Month,
			Mean:        finite(r.Mean),
			Std:         finite(r.Std),
			Anomaly:     r.Anomaly,
			MovingAvg:   finite(r.MovingAvg),
		}
	}
	return out
}

type baselineResponse struct {
	Season climate.Season `json:"season"`
	Mean   *float64       `json:"mean"`
	Std    *float64       `json:"std"`
	Count  int            `json:"count"`
}

func newBaselineResponses(rows []climate.SeasonBaseline) []baselineResponse {
	out := make([]baselineResponse, len(rows))
	for i, r := range rows {
		out[i] = baselineResponse{
			Season: r.Season,
			Mean:   finite(r.Mean),
			Std:    finite(r.Std),
			Count:  r.Count,
		}
	}
	return out
}

type summaryResponse struct {
	Count int      `json:"count"`
	Mean  *float64 `json:"mean"`
	Std   *float64 `json:"std"`
	Min   *float64 `json:"min"`
	P25   *float64 `json:"25%"`
	P50   *float64 `json:"50%"`
	P75   *float64 `json:"75%"`
	Max   *float64 `json:"max"`
}

func newSummaryResponse(s climate.Summary) summaryResponse {
	return summaryResponse{
		Count: s.Count,
		Mean:  finite(s.Mean),
		Std:   finite(s.Std),
		Min:   finite(s.Min),
		P25:   finite(s.P25),
		P50:   finite(s.P50),
		P75:   finite(s.P75),
		Max:   finite(s.Max),
	}
}

type liveResponse struct {
	City        string         `json:"city"`
	Season      climate.Season `json:"season"`
	Temperature float64        `json:"temperatureC"`
	Anomaly     bool           `json:"anomaly"`
	Mean        *float64       `json:"mean"`
	Std         *float64       `json:"std"`
	CheckedAt   time.Time      `json:"checkedAt"`
}

func newLiveResponses(readings []climate.LiveReading) []liveResponse {
	out := make([]liveResponse, len(readings))
	for i, r := range readings {
		out[i] = liveResponse{
			City:        r.City,
			Season:      r.Season,
			Temperature: r.Temperature,
			Anomaly:     r.Anomaly,
			Mean:        finite(r.Mean),
			Std:         finite(r.Std),
			CheckedAt:   r.CheckedAt,
		}
	}
	return out
}
