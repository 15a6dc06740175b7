// Package observability provides OpenTelemetry tracing and metrics for query
// evaluation.
//
// The query package reports every terminal operator through the global otel
// providers, which are no-ops until a binary installs real ones:
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("seqq"))
//	defer tp.Shutdown(ctx)
//
//	mp, err := observability.InitMeter(ctx, observability.DefaultMeterConfig("seqq"))
//	defer mp.Shutdown(ctx)
//
// Operator scopes pair a span with metric recording:
//
//	ctx, scope := observability.StartOperator(ctx, metrics, "sum", pipelineID)
//	defer func() { scope.End(err, pulled) }()
package observability
