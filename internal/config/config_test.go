package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const defaultBroker = "localhost:9092"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, FormatCSV, cfg.DataFormat)
	assert.Empty(t, cfg.XLSXFile)
	assert.Equal(t, 24*time.Hour, cfg.RefreshInterval)
	assert.False(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{defaultBroker}, cfg.KafkaBrokers)
	assert.Equal(t, "covid-daily-summary", cfg.KafkaSummaryTopic)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("DATA_FORMAT", "XLSX")
	t.Setenv("XLSX_FILE", "/srv/covid.xlsx")
	t.Setenv("REFRESH_INTERVAL", "6h")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_SUMMARY_TOPIC", "custom-summary")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, FormatXLSX, cfg.DataFormat)
	assert.Equal(t, "/srv/covid.xlsx", cfg.XLSXFile)
	assert.Equal(t, 6*time.Hour, cfg.RefreshInterval)
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "custom-summary", cfg.KafkaSummaryTopic)
}

func TestLoad_RefreshDisabled(t *testing.T) {
	t.Setenv("REFRESH_INTERVAL", "0s")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Zero(t, cfg.RefreshInterval)
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_InvalidRefreshInterval(t *testing.T) {
	for _, v := range []string{"bad", "-1h"} {
		t.Run(v, func(t *testing.T) {
			t.Setenv("REFRESH_INTERVAL", v)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "REFRESH_INTERVAL")
		})
	}
}

func TestLoad_InvalidDataFormat(t *testing.T) {
	t.Setenv("DATA_FORMAT", "parquet")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATA_FORMAT")
}

func TestLoad_XLSXWithoutFile(t *testing.T) {
	t.Setenv("DATA_FORMAT", "xlsx")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "XLSX_FILE")
}

func TestLoad_KafkaOnlyWhenExplicitlyEnabled(t *testing.T) {
	t.Setenv("KAFKA_ENABLED", "yes")
	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.KafkaEnabled)
}
