package domain

import (
	"fmt"
	"slices"
	"strings"
)

// Table selects one of the three series.
type Table string

const (
	TableConfirmed Table = "confirmed"
	TableDeaths    Table = "deaths"
	TableRecovered Table = "recovered"
)

// AllTables returns the three tables in dashboard order.
func AllTables() []Table {
	return []Table{TableConfirmed, TableDeaths, TableRecovered}
}

// ParseTable resolves a case-insensitive table name.
func ParseTable(s string) (Table, error) {
	t := Table(strings.ToLower(strings.TrimSpace(s)))
	switch t {
	case TableConfirmed, TableDeaths, TableRecovered:
		return t, nil
	default:
		return "", &UnknownTableError{Table: s}
	}
}

// Tables bundles the three series an aggregator is built from.
type Tables struct {
	Confirmed *Series
	Deaths    *Series
	Recovered *Series
}

// Series returns the series of a table, or nil for an unknown table.
func (t Tables) Series(table Table) *Series {
	switch table {
	case TableConfirmed:
		return t.Confirmed
	case TableDeaths:
		return t.Deaths
	case TableRecovered:
		return t.Recovered
	default:
		return nil
	}
}

// DayTotal is the across-location sum for one day.
type DayTotal struct {
	Day   string `json:"day"`
	Total int64  `json:"total"`
}

// LocationCount is one location's count on a given day.
type LocationCount struct {
	Location Location `json:"location"`
	Count    int64    `json:"count"`
}

// KPI is the total and day-over-day delta of one table on one day. Delta is
// nil on the first loaded day.
type KPI struct {
	Table Table  `json:"table"`
	Day   string `json:"day"`
	Total int64  `json:"total"`
	Delta *int64 `json:"delta,omitempty"`
}

// Correction is a day whose across-location total fell below the previous day's.
type Correction struct {
	Day   string `json:"day"`
	Delta int64  `json:"delta"`
}

// Aggregator answers point-in-time and range queries over three series that
// share one day sequence. It is immutable and safe for concurrent use.
type Aggregator struct {
	tables map[Table]*Series
	days   []string
}

// NewAggregator checks that all three series are present and share the
// identical day sequence.
func NewAggregator(t Tables) (*Aggregator, error) {
	tables := make(map[Table]*Series, 3)
	for _, name := range AllTables() {
		s := t.Series(name)
		if s == nil {
			return nil, fmt.Errorf("build aggregator: %s series is missing", name)
		}
		tables[name] = s
	}

	days := t.Confirmed.days
	for _, name := range []Table{TableDeaths, TableRecovered} {
		if !slices.Equal(days, tables[name].days) {
			return nil, fmt.Errorf("build aggregator: %w: %s has %d days, confirmed has %d",
				ErrDayMismatch, name, len(tables[name].days), len(days))
		}
	}

	return &Aggregator{tables: tables, days: days}, nil
}

// Days returns a copy of the shared day sequence.
func (a *Aggregator) Days() []string {
	return slices.Clone(a.days)
}

// FirstDay returns the earliest loaded day, or "" when no days are loaded.
func (a *Aggregator) FirstDay() string {
	if len(a.days) == 0 {
		return ""
	}
	return a.days[0]
}

// LastDay returns the latest loaded day, or "" when no days are loaded.
func (a *Aggregator) LastDay() string {
	if len(a.days) == 0 {
		return ""
	}
	return a.days[len(a.days)-1]
}

// NumLocations returns the number of location rows in a table.
func (a *Aggregator) NumLocations(table Table) (int, error) {
	s, err := a.series(table)
	if err != nil {
		return 0, err
	}
	return s.NumLocations(), nil
}

// TotalOnDay sums the day's counts across all locations of a table.
func (a *Aggregator) TotalOnDay(table Table, day string) (int64, error) {
	s, err := a.series(table)
	if err != nil {
		return 0, err
	}
	i, err := s.dayIndex(day)
	if err != nil {
		return 0, err
	}
	return s.totals[i], nil
}

// DeltaOnDay returns the day's total minus the previous day's total. The
// result is negative when upstream data was corrected downwards. The first
// loaded day has no previous day and yields an *UnknownDateError.
func (a *Aggregator) DeltaOnDay(table Table, day string) (int64, error) {
	s, err := a.series(table)
	if err != nil {
		return 0, err
	}
	i, err := s.dayIndex(day)
	if err != nil {
		return 0, err
	}
	if i == 0 {
		return 0, &UnknownDateError{Day: day, Reason: "no previous day to compare with"}
	}
	return s.totals[i] - s.totals[i-1], nil
}

// CumulativeSeries returns the across-location total of every day from the
// first loaded day through uptoDay inclusive, in ascending order.
func (a *Aggregator) CumulativeSeries(table Table, uptoDay string) ([]DayTotal, error) {
	s, err := a.series(table)
	if err != nil {
		return nil, err
	}
	last, err := s.dayIndex(uptoDay)
	if err != nil {
		return nil, err
	}
	out := make([]DayTotal, last+1)
	for i := 0; i <= last; i++ {
		out[i] = DayTotal{Day: s.days[i], Total: s.totals[i]}
	}
	return out, nil
}

// ActiveLocations returns every location's count on a day in source row
// order. With excludeZero, locations whose count is exactly 0 are dropped.
func (a *Aggregator) ActiveLocations(table Table, day string, excludeZero bool) ([]LocationCount, error) {
	s, err := a.series(table)
	if err != nil {
		return nil, err
	}
	i, err := s.dayIndex(day)
	if err != nil {
		return nil, err
	}
	out := make([]LocationCount, 0, len(s.rows))
	for _, row := range s.rows {
		c := row.Counts[i]
		if excludeZero && c == 0 {
			continue
		}
		out = append(out, LocationCount{Location: row.Location, Count: c})
	}
	return out, nil
}

// Summary returns the KPI of every table for one day. The first loaded day
// has no delta.
func (a *Aggregator) Summary(day string) ([]KPI, error) {
	i, err := a.tables[TableConfirmed].dayIndex(day)
	if err != nil {
		return nil, err
	}
	kpis := make([]KPI, 0, len(a.tables))
	for _, table := range AllTables() {
		s := a.tables[table]
		kpi := KPI{Table: table, Day: a.days[i], Total: s.totals[i]}
		if i > 0 {
			delta := s.totals[i] - s.totals[i-1]
			kpi.Delta = &delta
		}
		kpis = append(kpis, kpi)
	}
	return kpis, nil
}

// Corrections lists the days on which a table's total decreased.
func (a *Aggregator) Corrections(table Table) ([]Correction, error) {
	s, err := a.series(table)
	if err != nil {
		return nil, err
	}
	var out []Correction
	for i := 1; i < len(s.totals); i++ {
		if d := s.totals[i] - s.totals[i-1]; d < 0 {
			out = append(out, Correction{Day: s.days[i], Delta: d})
		}
	}
	return out, nil
}

func (a *Aggregator) series(table Table) (*Series, error) {
	s, ok := a.tables[table]
	if !ok {
		return nil, &UnknownTableError{Table: string(table)}
	}
	return s, nil
}
