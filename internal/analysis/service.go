package analysis

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/i474232898/temperature-anomaly/internal/climate"
	"github.com/i474232898/temperature-anomaly/internal/ingest"
	"github.com/i474232898/temperature-anomaly/internal/observability"
	"github.com/i474232898/temperature-anomaly/internal/store"
)

// ErrNoSource is returned by live checks when no weather provider is configured.
var ErrNoSource = errors.New("no temperature source configured")

// Service loads datasets through the climate pipeline and answers queries
// against the current one.
type Service struct {
	datasets   *store.DatasetStore
	live       *store.LiveStore
	source     climate.TemperatureSource
	comparator *climate.Comparator
	window     int
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// Deps bundles the collaborators of a Service.
type Deps struct {
	Datasets   *store.DatasetStore
	Live       *store.LiveStore
	Source     climate.TemperatureSource
	Comparator *climate.Comparator
	Window     int
	Logger     *slog.Logger
	Metrics    *observability.Metrics
}

// NewService creates a new Service.
func NewService(d Deps) *Service {
	if d.Window < 1 {
		d.Window = climate.DefaultWindow
	}
	if d.Comparator == nil {
		d.Comparator = climate.NewComparator(nil)
	}
	return &Service{
		datasets:   d.Datasets,
		live:       d.Live,
		source:     d.Source,
		comparator: d.Comparator,
		window:     d.Window,
		logger:     d.Logger,
		metrics:    d.Metrics,
	}
}

// Load parses r, runs the pipeline and replaces the current dataset.
func (s *Service) Load(ctx context.Context, r io.Reader, format ingest.Format) (*store.Dataset, error) {
	obs, err := ingest.Parse(r, format)
	if err != nil {
		s.metrics.DatasetLoads.WithLabelValues("malformed").Inc()
		s.logger.Warn("dataset rejected", "error", err)
		return nil, err
	}

	start := time.Now()
	res, err := climate.Process(ctx, obs, s.window)
	if err != nil {
		s.metrics.DatasetLoads.WithLabelValues("error").Inc()
		s.logger.Error("pipeline failed", "rows", len(obs), "error", err)
		return nil, fmt.Errorf("process dataset: %w", err)
	}
	elapsed := time.Since(start)

	anomalies := 0
	for _, row := range res.Rows {
		if row.Anomaly {
			anomalies++
		}
	}

	ds := s.datasets.Replace(res)

	s.metrics.DatasetLoads.WithLabelValues("success").Inc()
	s.metrics.RowsIngested.Add(float64(len(obs)))
	s.metrics.DatasetRows.Set(float64(len(obs)))
	s.metrics.PipelineDuration.Observe(elapsed.Seconds())
	s.metrics.AnomaliesFlagged.Add(float64(anomalies))

	s.logger.Info("dataset loaded",
		"dataset_id", ds.ID,
		"rows", len(ds.Rows),
		"cities", len(ds.Cities),
		"baselines", len(ds.Baselines),
		"anomalies", anomalies,
		"duration", elapsed,
	)
	return ds, nil
}

// LoadFile loads a dataset from disk, choosing TSV for .tsv/.tab files.
func (s *Service) LoadFile(ctx context.Context, path string) (*store.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	return s.Load(ctx, f, FormatForName(path))
}

// FormatForName guesses the input format from a file name.
func FormatForName(name string) ingest.Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".tsv", ".tab":
		return ingest.FormatTSV
	case ".csv":
		return ingest.FormatCSV
	default:
		return ingest.FormatAuto
	}
}

// Current returns the loaded dataset.
func (s *Service) Current() (*store.Dataset, error) {
	return s.datasets.Current()
}

// RowFilter narrows the observations returned by CityRows. Zero values match
// every row.
type RowFilter struct {
	AnomaliesOnly bool
	Season        climate.Season
}

func (f RowFilter) match(r climate.EnrichedObservation) bool {
	if f.AnomaliesOnly && !r.Anomaly {
		return false
	}
	return f.Season == "" || r.Season == f.Season
}

// CityRows returns a city's enriched observations in timestamp order,
// narrowed by f.
func (s *Service) CityRows(city string, f RowFilter) ([]climate.EnrichedObservation, error) {
	ds, err := s.datasets.Current()
	if err != nil {
		return nil, err
	}
	rows, ok := ds.CityRows(city)
	if !ok {
		return nil, fmt.Errorf("%w: %s", store.ErrNotFound, city)
	}
	if f == (RowFilter{}) {
		return rows, nil
	}

	// rows is a copy owned by this call.
	matched := rows[:0]
	for _, r := range rows {
		if f.match(r) {
			matched = append(matched, r)
		}
	}
	return matched, nil
}

// CityBaselines returns a city's baselines in season order.
func (s *Service) CityBaselines(city string) ([]climate.SeasonBaseline, error) {
	ds, err := s.datasets.Current()
	if err != nil {
		return nil, err
	}
	rows := climate.SeasonTable(ds.Baselines, city)
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s", store.ErrNotFound, city)
	}
	return rows, nil
}

// CitySummary describes all historical temperatures of a city.
func (s *Service) CitySummary(city string) (climate.Summary, error) {
	rows, err := s.CityRows(city, RowFilter{})
	if err != nil {
		return climate.Summary{}, err
	}
	temps := make([]float64, len(rows))
	for i, r := range rows {
		temps[i] = r.Temperature
	}
	return climate.Summarize(temps), nil
}

// CheckLive compares the current temperature of each city with its baseline
// for the current season and records the readings.
func (s *Service) CheckLive(ctx context.Context, cities []string) ([]climate.LiveReading, error) {
	ds, err := s.datasets.Current()
	if err != nil {
		return nil, err
	}
	if s.source == nil {
		return nil, ErrNoSource
	}

	readings, err := s.comparator.CompareCities(ctx, ds.Baselines, s.source, cities)
	if err != nil {
		s.metrics.LiveChecks.WithLabelValues("error").Inc()
		s.logger.Warn("live check failed", "cities", cities, "error", err)
		return nil, err
	}

	for _, r := range readings {
		s.live.Save(r)
		outcome := "normal"
		if r.Anomaly {
			outcome = "anomaly"
			s.logger.Info("live temperature anomaly",
				"city", r.City,
				"season", r.Season,
				"temperature_c", r.Temperature,
				"mean", r.Mean,
				"std", r.Std,
			)
		}
		s.metrics.LiveChecks.WithLabelValues(outcome).Inc()
	}
	return readings, nil
}

// LatestLive returns the most recent live reading of a city.
func (s *Service) LatestLive(city string) (climate.LiveReading, error) {
	return s.live.Latest(city)
}

// LiveHistory returns the retained live readings of a city.
func (s *Service) LiveHistory(city string) ([]climate.LiveReading, error) {
	return s.live.History(city)
}
