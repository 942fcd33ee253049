// Command validate loads the three series from a CSV directory or an XLSX
// workbook and checks their integrity: shared day sequence, location
// alignment, and cross-table plausibility. Day-over-day drops are listed as
// corrections but do not fail validation.
//
// Usage:
//
//	go run ./cmd/validate -data-dir data
//	go run ./cmd/validate -format xlsx -xlsx data/covid.xlsx
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"github.com/couchcryptid/covid-series-service/internal/adapter/source"
	"github.com/couchcryptid/covid-series-service/internal/config"
	"github.com/couchcryptid/covid-series-service/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	dataDir := flag.String("data-dir", "data", "directory containing the time_series_19-covid-*.csv files")
	format := flag.String("format", config.FormatCSV, "source format: csv or xlsx")
	xlsxFile := flag.String("xlsx", "", "path to the workbook when -format is xlsx")
	flag.Parse()

	if *format == config.FormatXLSX && *xlsxFile == "" {
		flag.Usage()
		os.Exit(1)
	}

	cfg := &config.Config{DataDir: *dataDir, DataFormat: *format, XLSXFile: *xlsxFile}
	if code := run(context.Background(), cfg, os.Stdout); code != 0 {
		os.Exit(code)
	}
}

func run(ctx context.Context, cfg *config.Config, out io.Writer) int {
	fmt.Fprintln(out, "=== COVID-19 Series Integrity Validation ===")
	fmt.Fprintln(out)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	loader := source.NewFileLoader(cfg, logger)
	tables, err := loader.Load(ctx)
	if err != nil {
		fmt.Fprintf(out, "FATAL: %v\n", err)
		return 1
	}

	days := validateDaySequence(tables)
	phases := []*phase{days, validateLocations(tables)}

	var agg *domain.Aggregator
	if days.passed() {
		agg, err = domain.NewAggregator(tables)
		if err != nil {
			days.errorf("build aggregator: %v", err)
		}
	}
	if agg != nil {
		phases = append(phases, validatePlausibility(agg))
	}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(out, "  %-42s %s\n", p.name, status)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Source: %s\n", loader.Source())
	if agg != nil {
		fmt.Fprintf(out, "Days: %d (%s to %s)\n", len(agg.Days()), agg.FirstDay(), agg.LastDay())
		reportCorrections(out, agg)
	}
	for _, table := range domain.AllTables() {
		fmt.Fprintf(out, "Locations in %s: %d\n", table, tables.Series(table).NumLocations())
	}

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(out, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(out, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(out, "\nAll validations passed.")
		return 0
	}
	fmt.Fprintln(out, "\nValidation FAILED.")
	return 1
}

// validateDaySequence checks that deaths and recovered carry exactly the
// confirmed table's days.
func validateDaySequence(t domain.Tables) *phase {
	p := &phase{name: "Shared day sequence"}
	want := t.Confirmed.Days()
	for _, other := range []struct {
		table  domain.Table
		series *domain.Series
	}{
		{domain.TableDeaths, t.Deaths},
		{domain.TableRecovered, t.Recovered},
	} {
		table, got := other.table, other.series.Days()
		if slices.Equal(got, want) {
			continue
		}
		p.errorf("%s has %d days, confirmed has %d", table, len(got), len(want))
		for i := range min(len(got), len(want)) {
			if got[i] != want[i] {
				p.errorf("%s column %d is %s, confirmed has %s", table, i, got[i], want[i])
				break
			}
		}
	}
	return p
}

// validateLocations checks that every table lists the same locations in the
// same order as confirmed.
func validateLocations(t domain.Tables) *phase {
	p := &phase{name: "Location alignment"}
	want := locationNames(t.Confirmed)
	for _, table := range []domain.Table{domain.TableDeaths, domain.TableRecovered} {
		got := locationNames(t.Series(table))
		if len(got) != len(want) {
			p.errorf("%s has %d locations, confirmed has %d", table, len(got), len(want))
			continue
		}
		for i := range got {
			if got[i] != want[i] {
				p.errorf("%s row %d is %q, confirmed has %q", table, i+1, got[i], want[i])
			}
		}
	}
	return p
}

// validatePlausibility checks that deaths plus recovered never exceed
// confirmed on any day.
func validatePlausibility(agg *domain.Aggregator) *phase {
	p := &phase{name: "Deaths and recovered within confirmed"}
	for _, day := range agg.Days() {
		kpis, err := agg.Summary(day)
		if err != nil {
			p.errorf("%s: %v", day, err)
			continue
		}
		confirmed, deaths, recovered := kpis[0].Total, kpis[1].Total, kpis[2].Total
		if deaths+recovered > confirmed {
			p.errorf("%s: deaths %d + recovered %d exceed confirmed %d", day, deaths, recovered, confirmed)
		}
	}
	return p
}

func reportCorrections(out io.Writer, agg *domain.Aggregator) {
	for _, table := range domain.AllTables() {
		corrections, err := agg.Corrections(table)
		if err != nil || len(corrections) == 0 {
			continue
		}
		fmt.Fprintf(out, "Corrections in %s:\n", table)
		for _, c := range corrections {
			fmt.Fprintf(out, "  %s  %+d\n", c.Day, c.Delta)
		}
	}
}

func locationNames(s *domain.Series) []string {
	locs := s.Locations()
	names := make([]string, len(locs))
	for i, l := range locs {
		names[i] = l.Name()
	}
	return names
}
