package climate

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingBaseline is returned when an observation has no (season, city) baseline.
	ErrMissingBaseline = errors.New("missing seasonal baseline")

	// ErrUnknownCityOrPeriod is returned when a live comparison targets a city
	// or season absent from the historical data.
	ErrUnknownCityOrPeriod = errors.New("unknown city or period")

	// ErrMalformedDataset is returned when input rows cannot be turned into observations.
	ErrMalformedDataset = errors.New("malformed dataset")
)

// MissingBaselineError reports the group that could not be found.
type MissingBaselineError struct {
	Key SeasonKey
}

func (e *MissingBaselineError) Error() string {
	return fmt.Sprintf("%v: city %q, season %s", ErrMissingBaseline, e.Key.City, e.Key.Season)
}

func (e *MissingBaselineError) Unwrap() error { return ErrMissingBaseline }

// UnknownCityOrPeriodError reports the city and season of a failed live lookup.
type UnknownCityOrPeriodError struct {
	City   string
	Season Season
}

func (e *UnknownCityOrPeriodError) Error() string {
	return fmt.Sprintf("%v: no history for city %q in %s", ErrUnknownCityOrPeriod, e.City, e.Season)
}

func (e *UnknownCityOrPeriodError) Unwrap() error { return ErrUnknownCityOrPeriod }

// MalformedDatasetError points at the offending input location.
// Line is 1-based and counts the header; zero means the whole input.
type MalformedDatasetError struct {
	Line   int
	Column string
	Reason string
}

func (e *MalformedDatasetError) Error() string {
	switch {
	case e.Line > 0 && e.Column != "":
		return fmt.Sprintf("%v: line %d, column %q: %s", ErrMalformedDataset, e.Line, e.Column, e.Reason)
	case e.Line > 0:
		return fmt.Sprintf("%v: line %d: %s", ErrMalformedDataset, e.Line, e.Reason)
	case e.Column != "":
		return fmt.Sprintf("%v: column %q: %s", ErrMalformedDataset, e.Column, e.Reason)
	default:
		return fmt.Sprintf("%v: %s", ErrMalformedDataset, e.Reason)
	}
}

func (e *MalformedDatasetError) Unwrap() error { return ErrMalformedDataset }
