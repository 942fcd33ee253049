package source

import (
	"errors"
	"math"
	"testing"

	"github.com/couchcryptid/covid-series-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testHeader = []string{"Province/State", "Country/Region", "Lat", "Long", "1/22/20", "1/23/20"}

func TestParseSeries(t *testing.T) {
	s, err := ParseSeries([][]string{
		testHeader,
		{"Hubei", "China", "30.9756", "112.2707", "444", "444"},
		{"", "Italy", "43.0", "12.0", "0", "2"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"2020-01-22", "2020-01-23"}, s.Days())
	assert.Equal(t, 2, s.NumLocations())

	agg := aggregatorOf(t, s)
	total, err := agg.TotalOnDay(domain.TableConfirmed, "2020-01-23")
	require.NoError(t, err)
	assert.Equal(t, int64(446), total)

	locs, err := agg.ActiveLocations(domain.TableConfirmed, "2020-01-22", false)
	require.NoError(t, err)
	require.Len(t, locs, 2)
	assert.Equal(t, domain.Location{ProvinceState: "Hubei", CountryRegion: "China", Lat: 30.9756, Lon: 112.2707}, locs[0].Location)
	assert.Equal(t, domain.Location{CountryRegion: "Italy", Lat: 43, Lon: 12}, locs[1].Location)
}

func TestParseSeries_LenientCells(t *testing.T) {
	s, err := ParseSeries([][]string{
		testHeader,
		{"", "Italy", "", "bad", "", "12.0"},
		{"", "", "", "", "", ""},
		{"", "Japan", "36", "138", "2"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, s.NumLocations(), "blank row should be skipped")

	agg := aggregatorOf(t, s)
	locs, err := agg.ActiveLocations(domain.TableConfirmed, "2020-01-23", false)
	require.NoError(t, err)
	assert.Equal(t, []domain.LocationCount{
		{Location: domain.Location{CountryRegion: "Italy"}, Count: 12},
		{Location: domain.Location{CountryRegion: "Japan", Lat: 36, Lon: 138}, Count: 0},
	}, locs)
}

func TestParseSeries_Errors(t *testing.T) {
	tests := []struct {
		name    string
		rows    [][]string
		wantMsg string
	}{
		{"no rows", nil, "missing header"},
		{"short header", [][]string{{"Province/State", "Country/Region"}}, "header has 2 columns"},
		{"wide row", [][]string{testHeader, {"", "Italy", "43", "12", "0", "2", "5"}}, "row 2 has 7 columns"},
		{"bad count", [][]string{testHeader, {"", "Italy", "43", "12", "0", "two"}}, `row 2: column 6: invalid count "two"`},
		{"fractional count", [][]string{testHeader, {"", "Italy", "43", "12", "0.5", "1"}}, `invalid count "0.5"`},
		{"unordered days", [][]string{{"Province/State", "Country/Region", "Lat", "Long", "1/23/20", "1/22/20"}}, "not strictly ascending"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSeries(tt.rows)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestParseSeries_BadDateLabel(t *testing.T) {
	_, err := ParseSeries([][]string{
		{"Province/State", "Country/Region", "Lat", "Long", "1/22/20", "Jan 23"},
	})
	var dfe *domain.DateFormatError
	require.True(t, errors.As(err, &dfe))
	assert.Equal(t, "Jan 23", dfe.Label)
}

func TestParseCount(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"", 0, false},
		{"0", 0, false},
		{"67801", 67801, false},
		{"-5", -5, false},
		{"12.0", 12, false},
		{"1e3", 1000, false},
		{"NaN", 0, true},
		{"Inf", 0, true},
		{"1.5", 0, true},
		{"n/a", 0, true},
		{"1e30", 0, true},
		{"9.3e18", 0, true},
		{"-1e19", 0, true},
		{"9223372036854775808", 0, true},
		{"-9.223372036854775808e18", math.MinInt64, false},
		{"9e18", 9_000_000_000_000_000_000, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseCount(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// aggregatorOf uses one series for all three tables.
func aggregatorOf(t *testing.T, s *domain.Series) *domain.Aggregator {
	t.Helper()
	agg, err := domain.NewAggregator(domain.Tables{Confirmed: s, Deaths: s, Recovered: s})
	require.NoError(t, err)
	return agg
}
