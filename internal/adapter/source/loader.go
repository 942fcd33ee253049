package source

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/couchcryptid/covid-series-service/internal/config"
	"github.com/couchcryptid/covid-series-service/internal/domain"
	"golang.org/x/sync/errgroup"
)

// sheetNames maps each table to its CSV file suffix and workbook sheet name.
var sheetNames = map[domain.Table]string{
	domain.TableConfirmed: "Confirmed",
	domain.TableDeaths:    "Deaths",
	domain.TableRecovered: "Recovered",
}

// CSVFileName returns the file name a table is read from in CSV mode,
// e.g. "time_series_19-covid-Confirmed.csv".
func CSVFileName(table domain.Table) string {
	return "time_series_19-covid-" + sheetNames[table] + ".csv"
}

// SheetName returns the worksheet a table is read from in XLSX mode.
func SheetName(table domain.Table) string {
	return sheetNames[table]
}

// FileLoader reads the three series from local files.
// It implements pipeline.Loader.
type FileLoader struct {
	format   string
	dir      string
	workbook string
	logger   *slog.Logger
}

// NewFileLoader creates a loader for the configured data format and location.
func NewFileLoader(cfg *config.Config, logger *slog.Logger) *FileLoader {
	return &FileLoader{
		format:   cfg.DataFormat,
		dir:      cfg.DataDir,
		workbook: cfg.XLSXFile,
		logger:   logger,
	}
}

// Source describes where the loader reads from.
func (l *FileLoader) Source() string {
	if l.format == config.FormatXLSX {
		return l.workbook
	}
	return l.dir
}

// Load reads and parses the three tables concurrently.
func (l *FileLoader) Load(ctx context.Context) (domain.Tables, error) {
	start := time.Now()
	tables := domain.AllTables()
	series := make([]*domain.Series, len(tables))

	g, gctx := errgroup.WithContext(ctx)
	for i, table := range tables {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rows, err := l.readRows(table)
			if err != nil {
				return fmt.Errorf("%s: %w", table, err)
			}
			s, err := ParseSeries(rows)
			if err != nil {
				return fmt.Errorf("%s: %w", table, err)
			}
			series[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return domain.Tables{}, fmt.Errorf("load series from %s: %w", l.Source(), err)
	}

	l.logger.Debug("series files loaded",
		"source", l.Source(),
		"format", l.format,
		"days", len(series[0].Days()),
		"duration", time.Since(start),
	)

	return domain.Tables{Confirmed: series[0], Deaths: series[1], Recovered: series[2]}, nil
}

func (l *FileLoader) readRows(table domain.Table) ([][]string, error) {
	path := filepath.Join(l.dir, CSVFileName(table))
	if l.format == config.FormatXLSX {
		path = l.workbook
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if l.format == config.FormatXLSX {
		return ReadXLSX(f, SheetName(table))
	}
	return ReadCSV(f)
}
