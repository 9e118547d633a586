package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type IngestConfig struct {
	CatalogFile string        `mapstructure:"catalog_file"`
	RunInterval time.Duration `mapstructure:"run_interval"`
	RunOnce     bool          `mapstructure:"run_once"`
	StartDate   string        `mapstructure:"start_date"`
	MetricsPort int           `mapstructure:"metrics_port"`
}

// StartTime returns the ingestion horizon. validate guarantees the value
// parses, so errors are ignored here.
func (config IngestConfig) StartTime() time.Time {
	t, _ := time.Parse(time.RFC3339, config.StartDate)
	return t
}

func (config IngestConfig) validate() error {
	var errs []error

	if config.CatalogFile == "" {
		errs = append(errs, fmt.Errorf("missing variable: catalog_file"))
	}
	if !config.RunOnce && config.RunInterval <= 0 {
		errs = append(errs, fmt.Errorf("run_interval must be positive when run_once is false"))
	}
	if _, err := time.Parse(time.RFC3339, config.StartDate); err != nil {
		errs = append(errs, fmt.Errorf("invalid start_date: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred: %w", errors.Join(errs...))
	}

	return nil
}

func (config IngestConfig) bindEnvironmentVariables() error {
	var errs []error

	if err := viper.BindEnv("ingest.run_interval", "INGEST_RUN_INTERVAL"); err != nil {
		errs = append(errs, err)
	}

	if err := viper.BindEnv("ingest.run_once", "INGEST_RUN_ONCE"); err != nil {
		errs = append(errs, err)
	}

	if err := viper.BindEnv("ingest.metrics_port", "METRICS_PORT"); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return createMultiError(errs)
	}

	return nil
}
