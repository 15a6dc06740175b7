package config

import (
	"fmt"
	"slices"

	"github.com/kbukum/lazyseq/logger"
	"github.com/kbukum/lazyseq/observability"
	"github.com/kbukum/lazyseq/validation"
)

var environments = []string{"development", "staging", "production"}

// ServiceConfig contains the fields every lazyseq binary needs. Binaries
// embed it in their own config structs:
//
//	type Config struct {
//	    config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
//	    Query QueryConfig `yaml:"query" mapstructure:"query"`
//	}
type ServiceConfig struct {
	Name        string          `yaml:"name" mapstructure:"name" validate:"required"`
	Environment string          `yaml:"environment" mapstructure:"environment"`
	Version     string          `yaml:"version" mapstructure:"version"`
	Debug       bool            `yaml:"debug" mapstructure:"debug"`
	Logging     logger.Config   `yaml:"logging" mapstructure:"logging"`
	Telemetry   TelemetryConfig `yaml:"telemetry" mapstructure:"telemetry"`
}

// TelemetryConfig switches OpenTelemetry export on and configures it.
type TelemetryConfig struct {
	Enabled bool                       `yaml:"enabled" mapstructure:"enabled"`
	Tracing observability.TracerConfig `yaml:"tracing" mapstructure:"tracing"`
	Metrics observability.MeterConfig  `yaml:"metrics" mapstructure:"metrics"`
}

// GetServiceConfig returns the embedded ServiceConfig. It is promoted to
// embedding structs.
func (c *ServiceConfig) GetServiceConfig() *ServiceConfig {
	return c
}

// ApplyDefaults fills unset fields. Embedding structs that override it
// should call c.ServiceConfig.ApplyDefaults() first.
func (c *ServiceConfig) ApplyDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Environment == "development" {
		c.Debug = true
	}
	if c.Logging.ServiceName == "" && c.Name != "" {
		c.Logging.ServiceName = c.Name
	}
	c.Logging.ApplyDefaults()
	c.Telemetry.applyDefaults(c.Name, c.Version, c.Environment)
}

func (t *TelemetryConfig) applyDefaults(name, version, env string) {
	tracing := observability.DefaultTracerConfig(name)
	if t.Tracing.ServiceName == "" {
		t.Tracing.ServiceName = tracing.ServiceName
	}
	if t.Tracing.Endpoint == "" {
		t.Tracing.Endpoint = tracing.Endpoint
		t.Tracing.Insecure = tracing.Insecure
	}
	if t.Tracing.SampleRate == 0 {
		t.Tracing.SampleRate = tracing.SampleRate
	}

	metrics := observability.DefaultMeterConfig(name)
	if t.Metrics.ServiceName == "" {
		t.Metrics.ServiceName = metrics.ServiceName
	}
	if t.Metrics.Endpoint == "" {
		t.Metrics.Endpoint = metrics.Endpoint
		t.Metrics.Insecure = metrics.Insecure
	}
	if t.Metrics.Interval == 0 {
		t.Metrics.Interval = metrics.Interval
	}

	for _, field := range []*string{&t.Tracing.ServiceVersion, &t.Metrics.ServiceVersion} {
		if *field == "" {
			*field = version
		}
	}
	for _, field := range []*string{&t.Tracing.Environment, &t.Metrics.Environment} {
		if *field == "" {
			*field = env
		}
	}
}

// Validate checks the struct tags and the rules that tags cannot express.
// Embedding structs that override it should call c.ServiceConfig.Validate()
// first.
func (c *ServiceConfig) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}
	if !slices.Contains(environments, c.Environment) {
		return fmt.Errorf("config.environment must be one of %v (got: %s)", environments, c.Environment)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("config.logging: %w", err)
	}
	return nil
}
