package domain

import (
	"fmt"
	"slices"
)

// Location identifies one source row. ProvinceState is empty for countries
// reported as a single row.
type Location struct {
	ProvinceState string  `json:"province_state,omitempty"`
	CountryRegion string  `json:"country_region"`
	Lat           float64 `json:"lat"`
	Lon           float64 `json:"lon"`
}

// Name returns "Province, Country", or just the country when no province is set.
func (l Location) Name() string {
	if l.ProvinceState == "" {
		return l.CountryRegion
	}
	return l.ProvinceState + ", " + l.CountryRegion
}

// Row is one location with its cumulative count per day.
type Row struct {
	Location Location
	Counts   []int64
}

// Series is one immutable table: an ascending day sequence and one row of
// counts per location, aligned with the days.
type Series struct {
	days   []string
	index  map[string]int
	rows   []Row
	totals []int64
}

// NewSeries validates and builds a Series. Days must be canonical YYYY-MM-DD
// labels in strictly ascending order and every row must hold exactly one
// count per day. Inputs are copied.
func NewSeries(days []string, rows []Row) (*Series, error) {
	index := make(map[string]int, len(days))
	for i, day := range days {
		canon, ok := CanonicalDay(day)
		if !ok || canon != day {
			return nil, &DateFormatError{Label: day, Err: fmt.Errorf("want %s", DayLayout)}
		}
		if i > 0 && day <= days[i-1] {
			return nil, fmt.Errorf("%w: %s after %s", ErrUnorderedDays, day, days[i-1])
		}
		index[day] = i
	}

	s := &Series{
		days:   slices.Clone(days),
		index:  index,
		rows:   make([]Row, len(rows)),
		totals: make([]int64, len(days)),
	}
	for r, row := range rows {
		if len(row.Counts) != len(days) {
			return nil, fmt.Errorf("%w: %s has %d counts for %d days",
				ErrRowLength, row.Location.Name(), len(row.Counts), len(days))
		}
		s.rows[r] = Row{Location: row.Location, Counts: slices.Clone(row.Counts)}
		for i, c := range row.Counts {
			s.totals[i] += c
		}
	}
	return s, nil
}

// Days returns a copy of the day sequence.
func (s *Series) Days() []string {
	return slices.Clone(s.days)
}

// NumLocations returns the number of location rows.
func (s *Series) NumLocations() int {
	return len(s.rows)
}

// Locations returns the location of every row in source order.
func (s *Series) Locations() []Location {
	out := make([]Location, len(s.rows))
	for i, row := range s.rows {
		out[i] = row.Location
	}
	return out
}

// dayIndex resolves a query day to its position in the day sequence.
func (s *Series) dayIndex(day string) (int, error) {
	canon, ok := CanonicalDay(day)
	if !ok {
		return 0, &UnknownDateError{Day: day, Reason: "want YYYY-MM-DD"}
	}
	i, ok := s.index[canon]
	if !ok {
		return 0, s.unknownDay(day)
	}
	return i, nil
}

func (s *Series) unknownDay(day string) *UnknownDateError {
	if len(s.days) == 0 {
		return &UnknownDateError{Day: day}
	}
	return &UnknownDateError{Day: day, First: s.days[0], Last: s.days[len(s.days)-1]}
}
