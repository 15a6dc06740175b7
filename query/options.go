package query

import (
	"context"

	"github.com/kbukum/lazyseq/pipeline"
	"github.com/kbukum/lazyseq/value"
)

// Selector transforms one element.
type Selector = pipeline.MapFunc

// Predicate decides whether an element matches. A nil Predicate means
// "truthy" for Where and "anything" for the counting operators.
type Predicate = pipeline.Predicate

// Spread receives the members of a list element as arguments.
type Spread = pipeline.SpreadFunc

// Reducer folds one element into an accumulator.
type Reducer = pipeline.ReduceFunc

// ZipSelector combines a pair of elements from Zip.
type ZipSelector func(ctx context.Context, a, b any) (any, error)

// CompareOption configures the equality used by Distinct, Except and Contains.
type CompareOption func(*compareConfig)

type compareConfig struct {
	strict   bool
	comparer value.Comparer
}

// Strict switches equality from value.Equal to value.Identical.
func Strict() CompareOption {
	return func(c *compareConfig) { c.strict = true }
}

// WithComparer sets a custom equality function. It overrides Strict.
func WithComparer(fn value.Comparer) CompareOption {
	return func(c *compareConfig) { c.comparer = fn }
}

func resolveCompare(opts []CompareOption) compareConfig {
	var c compareConfig
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

func (c compareConfig) equal() value.Comparer {
	switch {
	case c.comparer != nil:
		return c.comparer
	case c.strict:
		return value.Identical
	default:
		return value.Equal
	}
}

func matchAll(pred Predicate) Predicate {
	if pred == nil {
		return func(any) bool { return true }
	}
	return pred
}
