package observability

import (
	"context"
	"fmt"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/kbukum/lazyseq/errors"
)

func TestDefaultTracerConfig(t *testing.T) {
	cfg := DefaultTracerConfig("test-service")

	if cfg.ServiceName != "test-service" {
		t.Errorf("expected ServiceName 'test-service', got %s", cfg.ServiceName)
	}
	if cfg.Endpoint != "localhost:4318" {
		t.Errorf("expected Endpoint 'localhost:4318', got %s", cfg.Endpoint)
	}
	if cfg.SampleRate != 1.0 {
		t.Errorf("expected SampleRate 1.0, got %f", cfg.SampleRate)
	}
	if !cfg.Insecure {
		t.Error("expected Insecure to be true")
	}
}

func TestDefaultMeterConfig(t *testing.T) {
	cfg := DefaultMeterConfig("test-service")

	if cfg.ServiceName != "test-service" {
		t.Errorf("expected ServiceName 'test-service', got %s", cfg.ServiceName)
	}
	if cfg.Interval != 15*time.Second {
		t.Errorf("expected Interval 15s, got %v", cfg.Interval)
	}
}

func TestNewQueryMetrics_Noop(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	metrics, err := NewQueryMetrics(meter)
	if err != nil {
		t.Fatalf("unexpected error creating metrics: %v", err)
	}
	ctx := context.Background()
	metrics.RecordOperator(ctx, "sum", "ok", 10*time.Millisecond, 4)
	metrics.RecordError(ctx, "INVALID_OPERATION", "single")
}

func TestQueryMetrics_Recorded(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	metrics, err := NewQueryMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	metrics.RecordOperator(ctx, "count", "ok", time.Millisecond, 3)
	metrics.RecordOperator(ctx, "count", "ok", time.Millisecond, 2)

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatal(err)
	}
	pulled := findSum(t, rm, "lazyseq.elements.pulled")
	if pulled != 5 {
		t.Errorf("expected 5 elements pulled, got %d", pulled)
	}
	total := findSum(t, rm, "lazyseq.operator.total")
	if total != 2 {
		t.Errorf("expected 2 operators, got %d", total)
	}
}

func findSum(t *testing.T, rm metricdata.ResourceMetrics, name string) int64 {
	t.Helper()
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("metric %s is %T, not an int64 sum", name, m.Data)
			}
			var total int64
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
			return total
		}
	}
	t.Fatalf("metric %s not found", name)
	return 0
}

func withRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })
	return recorder
}

func TestStartOperator_Success(t *testing.T) {
	recorder := withRecorder(t)

	_, scope := StartOperator(context.Background(), nil, "sum", "p-1")
	scope.End(nil, 7)

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	span := spans[0]
	if span.Name() != "query.sum" {
		t.Errorf("expected span 'query.sum', got %q", span.Name())
	}
	if !hasAttr(span.Attributes(), AttrElements, attribute.Int64Value(7)) {
		t.Errorf("expected elements=7 attribute, got %v", span.Attributes())
	}
	if !hasAttr(span.Attributes(), AttrPipelineID, attribute.StringValue("p-1")) {
		t.Errorf("expected pipeline id attribute, got %v", span.Attributes())
	}
}

func TestStartOperator_Error(t *testing.T) {
	recorder := withRecorder(t)

	_, scope := StartOperator(context.Background(), nil, "single", "p-2")
	scope.End(errors.InvalidOperation("two matches"), 2)

	span := recorder.Ended()[0]
	if span.Status().Code != codes.Error {
		t.Errorf("expected error status, got %v", span.Status())
	}
	if !hasAttr(span.Attributes(), AttrErrorCode, attribute.StringValue("INVALID_OPERATION")) {
		t.Errorf("expected error code attribute, got %v", span.Attributes())
	}
}

func TestStartOperator_PlainError(t *testing.T) {
	recorder := withRecorder(t)

	_, scope := StartOperator(context.Background(), nil, "to_array", "p-3")
	scope.End(fmt.Errorf("source failed"), 0)

	span := recorder.Ended()[0]
	if !hasAttr(span.Attributes(), AttrErrorCode, attribute.StringValue("UNKNOWN")) {
		t.Errorf("expected UNKNOWN code, got %v", span.Attributes())
	}
}

func hasAttr(attrs []attribute.KeyValue, key string, want attribute.Value) bool {
	for _, kv := range attrs {
		if string(kv.Key) == key && kv.Value == want {
			return true
		}
	}
	return false
}

func TestTracer(t *testing.T) {
	if Tracer("test-tracer") == nil {
		t.Fatal("expected non-nil tracer")
	}
}

func TestMeter(t *testing.T) {
	if Meter("test-meter") == nil {
		t.Fatal("expected non-nil meter")
	}
}

func TestSetSpanError_NilSafe(t *testing.T) {
	SetSpanError(nil, fmt.Errorf("x"))
	_, span := StartSpan(context.Background(), "noop")
	SetSpanError(span, nil)
	span.End()
}
