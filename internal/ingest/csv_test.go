package ingest

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/temperature-anomaly/internal/climate"
)

func TestParse_CSVWithSeasonColumn(t *testing.T) {
	input := "city,timestamp,temperature,season\n" +
		"New York,2010-01-01,-3.5,winter\n" +
		"New York,2010-06-15T08:30:00Z,24.25,summer\n" +
		"Berlin,2010-10-02 12:00:00,11,autumn\n"

	obs, err := Parse(strings.NewReader(input), FormatAuto)
	require.NoError(t, err)
	require.Len(t, obs, 3)

	assert.Equal(t, "New York", obs[0].City)
	assert.Equal(t, time.Date(2010, time.January, 1, 0, 0, 0, 0, time.UTC), obs[0].Timestamp)
	assert.Equal(t, -3.5, obs[0].Temperature)
	assert.Equal(t, climate.SeasonWinter, obs[0].Season)
	assert.Equal(t, 1, obs[0].Month)

	assert.Equal(t, climate.SeasonSummer, obs[1].Season)
	assert.Equal(t, 6, obs[1].Month)
	assert.Equal(t, climate.SeasonAutumn, obs[2].Season)
}

func TestParse_OffsetTimestampKeepsLocalSeason(t *testing.T) {
	input := "city,timestamp,temperature\n" +
		"Moscow,2020-03-01T01:00:00+03:00,1\n" +
		"Tokyo,2020-06-01T08:00:00+09:00,20\n" +
		"Lima,2020-11-30T22:00:00-05:00,18\n"

	obs, err := Parse(strings.NewReader(input), FormatAuto)
	require.NoError(t, err)
	require.Len(t, obs, 3)

	assert.Equal(t, time.Date(2020, time.February, 29, 22, 0, 0, 0, time.UTC), obs[0].Timestamp)
	assert.Equal(t, climate.SeasonSpring, obs[0].Season)
	assert.Equal(t, 3, obs[0].Month)

	assert.Equal(t, time.Date(2020, time.May, 31, 23, 0, 0, 0, time.UTC), obs[1].Timestamp)
	assert.Equal(t, climate.SeasonSummer, obs[1].Season)
	assert.Equal(t, 6, obs[1].Month)

	// UTC is already December here, the reading still belongs to autumn.
	assert.Equal(t, climate.SeasonAutumn, obs[2].Season)
	assert.Equal(t, 11, obs[2].Month)
	assert.Equal(t, time.UTC, obs[2].Timestamp.Location())
}

func TestParse_TSVSniffedAndReorderedColumns(t *testing.T) {
	input := "Temperature\tCity\tTimestamp\n" +
		"5.5\tOslo\t2020-03-01\n"

	obs, err := Parse(strings.NewReader(input), FormatAuto)
	require.NoError(t, err)
	require.Len(t, obs, 1)
	assert.Equal(t, "Oslo", obs[0].City)
	assert.Equal(t, 5.5, obs[0].Temperature)
	assert.Equal(t, climate.SeasonSpring, obs[0].Season)
}

func TestParse_ExplicitFormat(t *testing.T) {
	input := "city\ttimestamp\ttemperature\nRome\t2020-07-01\t30\n"
	_, err := Parse(strings.NewReader(input), FormatCSV)
	require.Error(t, err, "tab separated input must not parse as csv")

	obs, err := Parse(strings.NewReader(input), FormatTSV)
	require.NoError(t, err)
	assert.Len(t, obs, 1)
}

func TestParse_MalformedInputs(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		line   int
		column string
	}{
		{name: "empty", input: ""},
		{name: "header only", input: "city,timestamp,temperature\n"},
		{name: "missing column", input: "city,timestamp\nA,2020-01-01\n", line: 1, column: "temperature"},
		{name: "bad timestamp", input: "city,timestamp,temperature\nA,yesterday,1\n", line: 2, column: "timestamp"},
		{name: "bad temperature", input: "city,timestamp,temperature\nA,2020-01-01,warm\n", line: 2, column: "temperature"},
		{name: "nan temperature", input: "city,timestamp,temperature\nA,2020-01-01,NaN\n", line: 2, column: "temperature"},
		{name: "empty city", input: "city,timestamp,temperature\nA,2020-01-01,1\n,2020-01-02,2\n", line: 3, column: "city"},
		{name: "ragged row", input: "city,timestamp,temperature\nA,2020-01-01\n", line: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input), FormatAuto)
			require.Error(t, err)
			assert.ErrorIs(t, err, climate.ErrMalformedDataset)

			var me *climate.MalformedDatasetError
			require.ErrorAs(t, err, &me)
			assert.Equal(t, tt.line, me.Line)
			assert.Equal(t, tt.column, me.Column)
		})
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("TSV")
	require.NoError(t, err)
	assert.Equal(t, FormatTSV, f)

	f, err = ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatAuto, f)

	_, err = ParseFormat("xlsx")
	assert.Error(t, err)
}
