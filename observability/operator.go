package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/lazyseq/errors"
)

// OperatorScope tracks one terminal operator from start to finish.
type OperatorScope struct {
	Operator   string
	PipelineID string
	StartTime  time.Time
	Metrics    *QueryMetrics

	span trace.Span
	ctx  context.Context
}

// StartOperator starts a span named "query.<operator>". If metrics is nil,
// metric recording is silently skipped.
func StartOperator(ctx context.Context, metrics *QueryMetrics, operator, pipelineID string) (context.Context, *OperatorScope) {
	ctx, span := StartSpan(ctx, SpanPrefixOperator+operator,
		trace.WithAttributes(
			attribute.String(AttrOperator, operator),
			attribute.String(AttrPipelineID, pipelineID),
		),
	)
	return ctx, &OperatorScope{
		Operator:   operator,
		PipelineID: pipelineID,
		StartTime:  time.Now(),
		Metrics:    metrics,
		span:       span,
		ctx:        ctx,
	}
}

// Duration returns the time elapsed since the operator started.
func (s *OperatorScope) Duration() time.Duration {
	return time.Since(s.StartTime)
}

// End finishes the span and records metrics. elements is the number of
// values the operator received from the pipeline.
func (s *OperatorScope) End(err error, elements int64) {
	status := "ok"
	s.span.SetAttributes(attribute.Int64(AttrElements, elements))
	if err != nil {
		status = "error"
		code := string(errors.CodeOf(err))
		if code == "" {
			code = "UNKNOWN"
		}
		s.span.SetAttributes(attribute.String(AttrErrorCode, code))
		SetSpanError(s.span, err)
		if s.Metrics != nil {
			s.Metrics.RecordError(s.ctx, code, s.Operator)
		}
	}
	if s.Metrics != nil {
		s.Metrics.RecordOperator(s.ctx, s.Operator, status, s.Duration(), elements)
	}
	s.span.End()
}
