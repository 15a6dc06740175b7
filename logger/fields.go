package logger

import (
	"time"
)

// Standard field key constants for structured logging.
const (
	FieldComponent  = "component"
	FieldPipelineID = "pipeline_id"
	FieldOperator   = "operator"
	FieldStage      = "stage"
	FieldDepth      = "depth"
	FieldQueued     = "queued"
	FieldElements   = "elements"
	FieldSource     = "source"
	FieldStatus     = "status"
	FieldError      = "error"
	FieldDuration   = "duration_ms"
)

// Fields builds a map[string]any from alternating key-value pairs.
//
//	logger.Debug("stage attached", logger.Fields("stage", "map", "depth", 2))
func Fields(kvs ...any) map[string]any {
	m := make(map[string]any, len(kvs)/2)
	for i := 0; i < len(kvs)-1; i += 2 {
		if key, ok := kvs[i].(string); ok {
			m[key] = kvs[i+1]
		}
	}
	return m
}

// ErrorFields creates fields for an operator that failed.
func ErrorFields(op string, err error) map[string]any {
	return map[string]any{
		FieldOperator: op,
		FieldError:    err.Error(),
	}
}

// DurationFields creates fields for a timed operator.
func DurationFields(op string, d time.Duration) map[string]any {
	return map[string]any{
		FieldOperator: op,
		FieldDuration: d.Milliseconds(),
	}
}
