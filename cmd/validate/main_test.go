package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/couchcryptid/covid-series-service/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const header = "Province/State,Country/Region,Lat,Long,1/22/20,1/23/20\n"

func writeTables(t *testing.T, confirmed, deaths, recovered string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range map[string]string{
		"time_series_19-covid-Confirmed.csv": confirmed,
		"time_series_19-covid-Deaths.csv":    deaths,
		"time_series_19-covid-Recovered.csv": recovered,
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600))
	}
	return dir
}

func TestRun_Testdata(t *testing.T) {
	var out bytes.Buffer
	cfg := &config.Config{DataDir: "../../internal/adapter/source/testdata", DataFormat: config.FormatCSV}

	code := run(context.Background(), cfg, &out)

	assert.Equal(t, 0, code, out.String())
	assert.Contains(t, out.String(), "Days: 3 (2020-01-22 to 2020-01-24)")
	assert.Contains(t, out.String(), "Locations in confirmed: 3")
	assert.Contains(t, out.String(), "All validations passed.")
}

func TestRun_ReportsCorrectionsWithoutFailing(t *testing.T) {
	dir := writeTables(t,
		header+",Italy,43,12,450,440\n",
		header+",Italy,43,12,1,1\n",
		header+",Italy,43,12,0,0\n",
	)
	var out bytes.Buffer

	code := run(context.Background(), &config.Config{DataDir: dir, DataFormat: config.FormatCSV}, &out)

	assert.Equal(t, 0, code, out.String())
	assert.Contains(t, out.String(), "Corrections in confirmed:")
	assert.Contains(t, out.String(), "2020-01-23  -10")
}

func TestRun_LocationMismatch(t *testing.T) {
	dir := writeTables(t,
		header+",Italy,43,12,1,2\n",
		header+",Italy,43,12,0,0\n",
		header+",Italy,43,12,0,0\n,Japan,36,138,0,0\n",
	)
	var out bytes.Buffer

	code := run(context.Background(), &config.Config{DataDir: dir, DataFormat: config.FormatCSV}, &out)

	assert.Equal(t, 1, code)
	assert.Contains(t, out.String(), "recovered has 2 locations, confirmed has 1")
	assert.Contains(t, out.String(), "Validation FAILED.")
}

func TestRun_Implausible(t *testing.T) {
	dir := writeTables(t,
		header+",Italy,43,12,1,2\n",
		header+",Italy,43,12,1,2\n",
		header+",Italy,43,12,0,1\n",
	)
	var out bytes.Buffer

	code := run(context.Background(), &config.Config{DataDir: dir, DataFormat: config.FormatCSV}, &out)

	assert.Equal(t, 1, code)
	assert.Contains(t, out.String(), "2020-01-23: deaths 2 + recovered 1 exceed confirmed 2")
}

func TestRun_MissingFiles(t *testing.T) {
	var out bytes.Buffer

	code := run(context.Background(), &config.Config{DataDir: t.TempDir(), DataFormat: config.FormatCSV}, &out)

	assert.Equal(t, 1, code)
	assert.Contains(t, out.String(), "FATAL:")
}

func TestRun_LocationMismatchWithoutDays(t *testing.T) {
	const noDays = "Province/State,Country/Region,Lat,Long\n"
	dir := writeTables(t,
		noDays+",Italy,43,12\n",
		noDays+",Italy,43,12\n",
		noDays+",Japan,36,138\n",
	)
	var out bytes.Buffer

	code := run(context.Background(), &config.Config{DataDir: dir, DataFormat: config.FormatCSV}, &out)

	assert.Equal(t, 1, code)
	assert.Contains(t, out.String(), `recovered row 1 is "Japan", confirmed has "Italy"`)
}
