package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/lazyseq/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	// ServiceName is the name of the service.
	ServiceName string `yaml:"service_name" mapstructure:"service_name"`
	// ServiceVersion is the version of the service.
	ServiceVersion string `yaml:"service_version" mapstructure:"service_version"`
	// Environment is the deployment environment.
	Environment string `yaml:"environment" mapstructure:"environment"`
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint" validate:"required"`
	// Insecure allows insecure connections (for development).
	Insecure bool `yaml:"insecure" mapstructure:"insecure"`
	// Interval is the metric export interval.
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`
}

// DefaultMeterConfig returns sensible defaults for development.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: "1.0.0",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter initializes the OpenTelemetry meter provider.
// Returns a MeterProvider that should be shut down on application exit.
func InitMeter(ctx context.Context, config MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Get("observability").Info("meter initialized", logger.Fields(
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// QueryMetrics holds the instruments recorded for terminal operators.
type QueryMetrics struct {
	operatorTotal    metric.Int64Counter
	operatorDuration metric.Float64Histogram
	elementsPulled   metric.Int64Counter
	errorTotal       metric.Int64Counter
}

// NewQueryMetrics creates metric instruments on the given meter.
func NewQueryMetrics(meter metric.Meter) (*QueryMetrics, error) {
	operatorTotal, err := meter.Int64Counter("lazyseq.operator.total",
		metric.WithDescription("Total number of terminal operators evaluated"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating operator.total counter: %w", err)
	}

	operatorDuration, err := meter.Float64Histogram("lazyseq.operator.duration",
		metric.WithDescription("Duration of terminal operators in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating operator.duration histogram: %w", err)
	}

	elementsPulled, err := meter.Int64Counter("lazyseq.elements.pulled",
		metric.WithDescription("Elements delivered to terminal operators"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating elements.pulled counter: %w", err)
	}

	errorTotal, err := meter.Int64Counter("lazyseq.error.total",
		metric.WithDescription("Terminal operator failures by error code"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating error.total counter: %w", err)
	}

	return &QueryMetrics{
		operatorTotal:    operatorTotal,
		operatorDuration: operatorDuration,
		elementsPulled:   elementsPulled,
		errorTotal:       errorTotal,
	}, nil
}

// RecordOperator records one terminal operator evaluation.
func (m *QueryMetrics) RecordOperator(ctx context.Context, operator, status string, duration time.Duration, elements int64) {
	m.operatorTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operator", operator),
		attribute.String("status", status),
	))
	m.operatorDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("operator", operator),
	))
	if elements > 0 {
		m.elementsPulled.Add(ctx, elements, metric.WithAttributes(
			attribute.String("operator", operator),
		))
	}
}

// RecordError records a failed operator by error code.
func (m *QueryMetrics) RecordError(ctx context.Context, code, operator string) {
	m.errorTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("code", code),
		attribute.String("operator", operator),
	))
}
