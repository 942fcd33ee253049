package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Data source formats.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Series source.
	DataDir    string
	DataFormat string
	XLSXFile   string

	// RefreshInterval is the period between reloads. Zero loads once at start.
	RefreshInterval time.Duration

	// Optional daily summary publishing.
	KafkaEnabled      bool
	KafkaBrokers      []string
	KafkaSummaryTopic string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	refreshInterval, err := time.ParseDuration(sharedcfg.EnvOrDefault("REFRESH_INTERVAL", "24h"))
	if err != nil || refreshInterval < 0 {
		return nil, errors.New("invalid REFRESH_INTERVAL")
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		DataDir:    sharedcfg.EnvOrDefault("DATA_DIR", "data"),
		DataFormat: strings.ToLower(sharedcfg.EnvOrDefault("DATA_FORMAT", FormatCSV)),
		XLSXFile:   os.Getenv("XLSX_FILE"),

		RefreshInterval: refreshInterval,

		KafkaEnabled:      os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers:      sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSummaryTopic: sharedcfg.EnvOrDefault("KAFKA_SUMMARY_TOPIC", "covid-daily-summary"),
	}

	switch cfg.DataFormat {
	case FormatCSV:
		if cfg.DataDir == "" {
			return nil, errors.New("DATA_DIR is required")
		}
	case FormatXLSX:
		if cfg.XLSXFile == "" {
			return nil, errors.New("XLSX_FILE is required when DATA_FORMAT is xlsx")
		}
	default:
		return nil, fmt.Errorf("invalid DATA_FORMAT %q: want csv or xlsx", cfg.DataFormat)
	}

	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is true")
		}
		if cfg.KafkaSummaryTopic == "" {
			return nil, errors.New("KAFKA_SUMMARY_TOPIC is required when KAFKA_ENABLED is true")
		}
	}

	return cfg, nil
}
