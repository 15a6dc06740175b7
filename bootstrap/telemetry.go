package bootstrap

import (
	"context"
	"fmt"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/kbukum/lazyseq/config"
	"github.com/kbukum/lazyseq/observability"
)

// telemetry holds the providers installed by the start hook so the stop hook
// can flush them.
type telemetry struct {
	cfg    config.TelemetryConfig
	tracer *sdktrace.TracerProvider
	meter  *sdkmetric.MeterProvider
}

func (a *App[C]) registerTelemetry(cfg config.TelemetryConfig) {
	t := &telemetry{cfg: cfg}
	a.OnStart(t.start)
	a.OnStop(t.stop)
	a.Summary.Telemetry = true
}

func (t *telemetry) start(ctx context.Context) error {
	tp, err := observability.InitTracer(ctx, t.cfg.Tracing)
	if err != nil {
		return fmt.Errorf("tracer: %w", err)
	}
	t.tracer = tp

	mp, err := observability.InitMeter(ctx, t.cfg.Metrics)
	if err != nil {
		return fmt.Errorf("meter: %w", err)
	}
	t.meter = mp
	return nil
}

func (t *telemetry) stop(ctx context.Context) error {
	var firstErr error
	if t.meter != nil {
		if err := t.meter.Shutdown(ctx); err != nil {
			firstErr = fmt.Errorf("meter shutdown: %w", err)
		}
	}
	if t.tracer != nil {
		if err := t.tracer.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("tracer shutdown: %w", err)
		}
	}
	return firstErr
}
