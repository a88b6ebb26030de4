package climate

import (
	"time"
)

// Season is a meteorological season name.
type Season string

const (
	SeasonWinter Season = "winter"
	SeasonSpring Season = "spring"
	SeasonSummer Season = "summer"
	SeasonAutumn Season = "autumn"
)

// Seasons lists all seasons in calendar display order.
var Seasons = []Season{SeasonWinter, SeasonSpring, SeasonSummer, SeasonAutumn}

// Observation is one historical temperature reading for a city.
// Season and Month are derived from the recorded local time when the dataset
// is loaded.
type Observation struct {
	City        string    `json:"city"`
	Timestamp   time.Time `json:"timestamp"`
	Temperature float64   `json:"temperature"`
	Season      Season    `json:"season"`
	Month       int       `json:"month"`
}

// NewObservation builds an Observation and fills in its derived fields.
// Season and Month follow the wall clock of ts in its own location, so a
// reading taken on 1 March at +03:00 is spring. Timestamp is stored in UTC.
func NewObservation(city string, ts time.Time, temperature float64) Observation {
	return Observation{
		City:        city,
		Timestamp:   ts.UTC(),
		Temperature: temperature,
		Season:      SeasonForMonth(ts.Month()),
		Month:       int(ts.Month()),
	}
}

// SeasonKey identifies a baseline group.
type SeasonKey struct {
	Season Season `json:"season"`
	City   string `json:"city"`
}

// Baseline holds the historical temperature statistics of one (season, city) group.
// Std is NaN when the group has a single observation.
type Baseline struct {
	Mean  float64 `json:"mean"`
	Std   float64 `json:"std"`
	Count int     `json:"count"`
}

// BaselineTable maps each (season, city) group present in a dataset to its baseline.
type BaselineTable map[SeasonKey]Baseline

// Lookup returns the baseline for a city in a season.
func (t BaselineTable) Lookup(city string, season Season) (Baseline, bool) {
	b, ok := t[SeasonKey{Season: season, City: city}]
	return b, ok
}

// EnrichedObservation is an Observation with its baseline, anomaly flag and
// smoothed temperature attached.
type EnrichedObservation struct {
	Observation
	Mean      float64 `json:"mean"`
	Std       float64 `json:"std"`
	Anomaly   bool    `json:"anomaly"`
	MovingAvg float64 `json:"movingAvg"`
}

// LiveReading is the classification of a current temperature against the
// baseline of the current season.
type LiveReading struct {
	City        string    `json:"city"`
	Season      Season    `json:"season"`
	Temperature float64   `json:"temperatureC"`
	Anomaly     bool      `json:"anomaly"`
	Mean        float64   `json:"mean"`
	Std         float64   `json:"std"`
	CheckedAt   time.Time `json:"checkedAt"` // always UTC
}
