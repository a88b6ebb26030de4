// Package climate computes seasonal temperature baselines and anomalies for
// a historical city dataset.
//
// # Seasons
//
// Seasons are meteorological and derived from the observation month:
//
//	Dec, Jan, Feb  winter
//	Mar, Apr, May  spring
//	Jun, Jul, Aug  summer
//	Sep, Oct, Nov  autumn
//
// Baselines are keyed by (season, city). Live comparisons use the season of
// the current date, so historical and live lookups share one granularity.
//
// # Pipeline
//
// [Process] forks two branches over the same immutable observations:
// [ComputeBaselines] followed by [Classify], and [MovingAverage]. The moving
// average is merged into the classified rows by slice index once both finish.
//
// Anomalies follow the 2-sigma rule against the row's own baseline. Groups
// with a single observation have an undefined (NaN) standard deviation and
// never produce anomalies.
package climate
