package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type FetcherConfig struct {
	RequestTimeout        time.Duration `mapstructure:"request_timeout"`
	MaxConcurrentRequests int           `mapstructure:"max_concurrent_requests"`
	MaxRequestsPerSecond  float32       `mapstructure:"max_requests_per_second"`
	UserAgent             string        `mapstructure:"user_agent"`
}

func (config FetcherConfig) validate() error {
	var errs []error

	if config.RequestTimeout <= 0 {
		errs = append(errs, fmt.Errorf("request_timeout must be positive"))
	}
	if config.MaxConcurrentRequests <= 0 {
		errs = append(errs, fmt.Errorf("max_concurrent_requests must be positive"))
	}
	if config.MaxRequestsPerSecond <= 0 {
		errs = append(errs, fmt.Errorf("max_requests_per_second must be positive"))
	}
	if config.UserAgent == "" {
		errs = append(errs, fmt.Errorf("missing variable: user_agent"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred: %w", errors.Join(errs...))
	}

	return nil
}

func (config FetcherConfig) bindEnvironmentVariables() error {
	var errs []error

	if err := viper.BindEnv("fetcher.request_timeout", "FETCHER_REQUEST_TIMEOUT"); err != nil {
		errs = append(errs, err)
	}

	if err := viper.BindEnv("fetcher.max_requests_per_second", "FETCHER_MAX_REQUESTS_PER_SECOND"); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return createMultiError(errs)
	}

	return nil
}
