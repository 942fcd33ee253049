package source

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/couchcryptid/covid-series-service/internal/domain"
)

// leadingColumns is the number of location columns before the first day:
// Province/State, Country/Region, Lat, Long.
const leadingColumns = 4

// ParseSeries converts the rows of one source table into a domain.Series.
// The header's day labels are normalized to YYYY-MM-DD. Empty count cells
// and rows shorter than the header count as 0; integral floats such as
// "12.0" are accepted. Fully blank rows are skipped.
func ParseSeries(rows [][]string) (*domain.Series, error) {
	if len(rows) == 0 {
		return nil, errors.New("parse series: missing header row")
	}
	header := rows[0]
	if len(header) < leadingColumns {
		return nil, fmt.Errorf("parse series: header has %d columns, want at least %d", len(header), leadingColumns)
	}

	labels := header[leadingColumns:]
	canonical, err := domain.NormalizeDateLabels(labels)
	if err != nil {
		return nil, fmt.Errorf("parse series: %w", err)
	}
	days := make([]string, len(labels))
	for i, label := range labels {
		days[i] = canonical[label]
	}

	out := make([]domain.Row, 0, len(rows)-1)
	for r, rec := range rows[1:] {
		line := r + 2
		if isBlank(rec) {
			continue
		}
		if len(rec) > len(header) {
			return nil, fmt.Errorf("parse series: row %d has %d columns, header has %d", line, len(rec), len(header))
		}
		row, err := parseRow(rec, len(days))
		if err != nil {
			return nil, fmt.Errorf("parse series: row %d: %w", line, err)
		}
		out = append(out, row)
	}

	s, err := domain.NewSeries(days, out)
	if err != nil {
		return nil, fmt.Errorf("parse series: %w", err)
	}
	return s, nil
}

func parseRow(rec []string, numDays int) (domain.Row, error) {
	cell := func(i int) string {
		if i < len(rec) {
			return strings.TrimSpace(rec[i])
		}
		return ""
	}

	row := domain.Row{
		Location: domain.Location{
			ProvinceState: cell(0),
			CountryRegion: cell(1),
			Lat:           parseFloatOrZero(cell(2)),
			Lon:           parseFloatOrZero(cell(3)),
		},
		Counts: make([]int64, numDays),
	}
	for i := range numDays {
		v, err := parseCount(cell(leadingColumns + i))
		if err != nil {
			return domain.Row{}, fmt.Errorf("column %d: %w", leadingColumns+i+1, err)
		}
		row.Counts[i] = v
	}
	return row, nil
}

// parseCount parses a cumulative count cell. Empty cells are 0.
func parseCount(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("invalid count %q", s)
	}
	// float64(math.MaxInt64) rounds up to 2^63, which int64 cannot hold.
	if f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, fmt.Errorf("invalid count %q: out of range", s)
	}
	return int64(f), nil
}

// parseFloatOrZero parses a coordinate, returning 0 on failure.
func parseFloatOrZero(s string) float64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func isBlank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
