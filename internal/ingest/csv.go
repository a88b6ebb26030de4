package ingest

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/i474232898/temperature-anomaly/internal/climate"
	"github.com/i474232898/temperature-anomaly/internal/common"
)

// Format selects the field delimiter of the input.
type Format string

const (
	FormatAuto Format = ""
	FormatCSV  Format = "csv"
	FormatTSV  Format = "tsv"
)

// ParseFormat validates a user supplied format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatAuto, FormatCSV, FormatTSV:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported format %q; use csv or tsv", s)
	}
}

const (
	colCity        = "city"
	colTimestamp   = "timestamp"
	colTemperature = "temperature"
)

// timestampLayouts are tried in order for every row.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	time.DateTime,
	time.DateOnly,
}

// Parse reads observations from a delimited file with a header row containing
// city, timestamp and temperature columns (any order, case-insensitive).
// Other columns, including season, are ignored: season and month are derived
// from the timestamp. Every failure is a *climate.MalformedDatasetError.
func Parse(r io.Reader, format Format) ([]climate.Observation, error) {
	br := bufio.NewReader(r)

	delim, err := delimiter(br, format)
	if err != nil {
		return nil, err
	}

	cr := csv.NewReader(br)
	cr.Comma = delim
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, &climate.MalformedDatasetError{Reason: "empty input"}
	}
	if err != nil {
		return nil, malformedFromCSV(err)
	}

	cols, err := locateColumns(header)
	if err != nil {
		return nil, err
	}

	var obs []climate.Observation
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, malformedFromCSV(err)
		}
		line, _ := cr.FieldPos(0)

		o, err := parseRecord(rec, cols, line)
		if err != nil {
			return nil, err
		}
		obs = append(obs, o)
	}

	if len(obs) == 0 {
		return nil, &climate.MalformedDatasetError{Reason: "no data rows"}
	}
	return obs, nil
}

type columns struct {
	city, timestamp, temperature int
}

func locateColumns(header []string) (columns, error) {
	idx := map[string]int{}
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := idx[name]; !dup {
			idx[name] = i
		}
	}

	var cols columns
	for _, c := range []struct {
		name string
		dst  *int
	}{
		{colCity, &cols.city},
		{colTimestamp, &cols.timestamp},
		{colTemperature, &cols.temperature},
	} {
		i, ok := idx[c.name]
		if !ok {
			return columns{}, &climate.MalformedDatasetError{Line: 1, Column: c.name, Reason: "required column missing"}
		}
		*c.dst = i
	}
	return cols, nil
}

func parseRecord(rec []string, cols columns, line int) (climate.Observation, error) {
	field := func(i int) string {
		if i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	city := field(cols.city)
	if city == "" {
		return climate.Observation{}, &climate.MalformedDatasetError{Line: line, Column: colCity, Reason: "empty value"}
	}

	ts, err := parseTimestamp(field(cols.timestamp))
	if err != nil {
		return climate.Observation{}, &climate.MalformedDatasetError{Line: line, Column: colTimestamp, Reason: err.Error()}
	}

	raw := field(cols.temperature)
	temp, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(temp) || math.IsInf(temp, 0) {
		return climate.Observation{}, &climate.MalformedDatasetError{
			Line:   line,
			Column: colTemperature,
			Reason: fmt.Sprintf("not a finite number: %q", raw),
		}
	}

	return climate.NewObservation(city, ts, temp), nil
}

func parseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, errors.New("empty value")
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// delimiter resolves the field separator, looking at the header line when the
// format is not given.
func delimiter(br *bufio.Reader, format Format) (rune, error) {
	switch format {
	case FormatCSV:
		return ',', nil
	case FormatTSV:
		return '\t', nil
	}

	peek, err := br.Peek(br.Size())
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return 0, &climate.MalformedDatasetError{Reason: err.Error()}
	}
	first, _, _ := strings.Cut(string(peek), "\n")
	if common.ContainsAny(first, "\t") && !common.ContainsAny(first, ",") {
		return '\t', nil
	}
	return ',', nil
}

func malformedFromCSV(err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &climate.MalformedDatasetError{Line: pe.Line, Reason: pe.Err.Error()}
	}
	return &climate.MalformedDatasetError{Reason: err.Error()}
}
