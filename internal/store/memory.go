package store

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/i474232898/temperature-anomaly/internal/climate"
)

var (
	// ErrNotFound is returned when no data is available for a given city.
	ErrNotFound = errors.New("no data for city")

	// ErrNoDataset is returned before any dataset has been loaded.
	ErrNoDataset = errors.New("no dataset loaded")
)

// Dataset is one processed upload. It is never mutated after Replace.
type Dataset struct {
	ID        string
	LoadedAt  time.Time
	Rows      []climate.EnrichedObservation
	Baselines climate.BaselineTable
	Cities    []string

	// byCity holds row indexes per city in timestamp order.
	byCity map[string][]int
}

// CityRows returns the rows of a city ordered by timestamp.
func (d *Dataset) CityRows(city string) ([]climate.EnrichedObservation, bool) {
	idx, ok := d.byCity[city]
	if !ok {
		return nil, false
	}
	rows := make([]climate.EnrichedObservation, len(idx))
	for i, j := range idx {
		rows[i] = d.Rows[j]
	}
	return rows, true
}

// DatasetStore holds the current dataset. Loading a new one replaces it wholesale.
type DatasetStore struct {
	mu      sync.RWMutex
	current *Dataset
	clock   clockwork.Clock
}

// NewDatasetStore creates an empty store. A nil clock uses real time.
func NewDatasetStore(clock clockwork.Clock) *DatasetStore {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &DatasetStore{clock: clock}
}

// Replace indexes a pipeline result and makes it the current dataset.
func (s *DatasetStore) Replace(res climate.Result) *Dataset {
	ds := &Dataset{
		ID:        uuid.NewString(),
		LoadedAt:  s.clock.Now().UTC(),
		Rows:      res.Rows,
		Baselines: res.Baselines,
		Cities:    res.Cities,
		byCity:    make(map[string][]int, len(res.Cities)),
	}
	for i, r := range res.Rows {
		ds.byCity[r.City] = append(ds.byCity[r.City], i)
	}
	for _, idx := range ds.byCity {
		sortByTimestamp(idx, res.Rows)
	}

	s.mu.Lock()
	s.current = ds
	s.mu.Unlock()
	return ds
}

// Current returns the loaded dataset.
func (s *DatasetStore) Current() (*Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return nil, ErrNoDataset
	}
	return s.current, nil
}

// LiveStore is a concurrency-safe history of live readings per city.
type LiveStore struct {
	mu sync.RWMutex

	data map[string][]climate.LiveReading

	// retention configuration
	maxHistory int           // max number of readings per city
	maxAge     time.Duration // optional max age for readings
	clock      clockwork.Clock
}

// NewLiveStore creates a LiveStore with optional limits.
// If maxHistory or maxAge is <= 0, it is treated as unlimited.
func NewLiveStore(maxHistory int, maxAge time.Duration, clock clockwork.Clock) *LiveStore {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &LiveStore{
		data:       make(map[string][]climate.LiveReading),
		maxHistory: maxHistory,
		maxAge:     maxAge,
		clock:      clock,
	}
}

// Save appends a reading for its city and enforces retention.
func (s *LiveStore) Save(r climate.LiveReading) {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := append(s.data[r.City], r)

	// Enforce retention by count.
	if s.maxHistory > 0 && len(history) > s.maxHistory {
		history = history[len(history)-s.maxHistory:]
	}

	// Enforce retention by age.
	if s.maxAge > 0 {
		cutoff := s.clock.Now().Add(-s.maxAge)
		i := 0
		for ; i < len(history); i++ {
			if !history[i].CheckedAt.Before(cutoff) {
				break
			}
		}
		history = history[i:]
	}

	s.data[r.City] = history
}

// Latest returns the most recent reading for a city.
func (s *LiveStore) Latest(city string) (climate.LiveReading, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.data[city]
	if len(history) == 0 {
		return climate.LiveReading{}, ErrNotFound
	}
	return history[len(history)-1], nil
}

// History returns a copy of the retained readings for a city, oldest first.
func (s *LiveStore) History(city string) ([]climate.LiveReading, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.data[city]
	if len(history) == 0 {
		return nil, ErrNotFound
	}
	return append([]climate.LiveReading(nil), history...), nil
}
