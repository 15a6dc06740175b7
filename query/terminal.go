package query

import (
	"context"

	"github.com/kbukum/lazyseq/errors"
	"github.com/kbukum/lazyseq/logger"
	"github.com/kbukum/lazyseq/observability"
	"github.com/kbukum/lazyseq/pipeline"
	"github.com/kbukum/lazyseq/value"
)

// run drives the pipeline for a terminal operator inside a span. each sees
// every element; returning false stops pulling. finish, when set, turns the
// element count into the operator's final error. The pipeline is closed on
// return.
func (q *Query) run(ctx context.Context, op string, each func(v any) (bool, error), finish func(n int64) error) error {
	ctx, scope := observability.StartOperator(ctx, metrics(), op, q.p.ID())
	var n int64
	err := q.err
	if err == nil {
		err = q.p.ForEach(ctx, func(v any) (bool, error) {
			n++
			return each(v)
		})
	} else {
		_ = q.p.Close()
	}
	if err == nil && finish != nil {
		err = finish(n)
	}
	scope.End(err, n)

	fields := logger.DurationFields(op, scope.Duration())
	fields[logger.FieldPipelineID] = q.p.ID()
	fields[logger.FieldElements] = n
	if err != nil {
		log().WithError(err).Debug("terminal operator failed", fields)
		return err
	}
	log().Debug("terminal operator finished", fields)
	return nil
}

// reject ends a terminal operator without pulling anything. A sticky
// composition error takes precedence over err.
func (q *Query) reject(ctx context.Context, op string, err error) error {
	_, scope := observability.StartOperator(ctx, metrics(), op, q.p.ID())
	switch {
	case q.err != nil:
		err = q.err
	case q.p.State() == pipeline.StateClosed:
		err = errors.SequenceClosed()
	}
	if cerr := q.p.Close(); err == nil && cerr != nil {
		err = cerr
	}
	scope.End(err, 0)
	if err != nil {
		log().WithError(err).Debug("terminal operator rejected", logger.Fields(
			logger.FieldOperator, op,
			logger.FieldPipelineID, q.p.ID(),
		))
	}
	return err
}

// ToArray drains the sequence into a slice. The slice is never nil.
func (q *Query) ToArray(ctx context.Context) ([]any, error) {
	out := make([]any, 0)
	err := q.run(ctx, "to_array", func(v any) (bool, error) {
		out = append(out, v)
		return true, nil
	}, nil)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Aggregate folds the sequence with fn. With a seed the fold starts from
// seed[0]; without one the first element is the seed, and an empty sequence
// is INVALID_OPERATION.
func (q *Query) Aggregate(ctx context.Context, fn Reducer, seed ...any) (any, error) {
	if fn == nil {
		return nil, q.reject(ctx, "aggregate", errors.ArgumentNull("fn"))
	}
	var acc any
	seeded := len(seed) > 0
	if seeded {
		acc = seed[0]
	}
	err := q.run(ctx, "aggregate", func(v any) (bool, error) {
		if !seeded {
			acc, seeded = v, true
			return true, nil
		}
		next, err := fn(acc, v)
		if err != nil {
			return false, err
		}
		acc = next
		return true, nil
	}, func(int64) error {
		if !seeded {
			return errors.InvalidOperation("sequence contains no elements")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return acc, nil
}

// Reduce folds the sequence from initial. A nil fn sums numerically.
func (q *Query) Reduce(ctx context.Context, fn Reducer, initial any) (any, error) {
	if fn == nil {
		fn = value.Add
	}
	acc := initial
	err := q.run(ctx, "reduce", func(v any) (bool, error) {
		next, err := fn(acc, v)
		if err != nil {
			return false, err
		}
		acc = next
		return true, nil
	}, nil)
	if err != nil {
		return nil, err
	}
	return acc, nil
}

// All reports whether every element matches pred. It stops at the first
// element that does not. A nil pred tests truthiness.
func (q *Query) All(ctx context.Context, pred Predicate) (bool, error) {
	if pred == nil {
		pred = value.Truthy
	}
	result := true
	err := q.run(ctx, "all", func(v any) (bool, error) {
		if !pred(v) {
			result = false
			return false, nil
		}
		return true, nil
	}, nil)
	return result && err == nil, err
}

// Any reports whether some element matches pred. A nil pred reports whether
// the sequence has any element at all.
func (q *Query) Any(ctx context.Context, pred Predicate) (bool, error) {
	pred = matchAll(pred)
	found := false
	err := q.run(ctx, "any", func(v any) (bool, error) {
		found = pred(v)
		return !found, nil
	}, nil)
	return found && err == nil, err
}

// Contains reports whether the sequence holds an element equal to v.
func (q *Query) Contains(ctx context.Context, v any, opts ...CompareOption) (bool, error) {
	return q.contains(ctx, "contains", v, resolveCompare(opts).equal())
}

// ContainsExactly reports whether the sequence holds an element identical
// to v; see value.Identical.
func (q *Query) ContainsExactly(ctx context.Context, v any) (bool, error) {
	return q.contains(ctx, "contains_exactly", v, value.Identical)
}

func (q *Query) contains(ctx context.Context, op string, target any, eq value.Comparer) (bool, error) {
	found := false
	err := q.run(ctx, op, func(v any) (bool, error) {
		found = eq(v, target)
		return !found, nil
	}, nil)
	return found && err == nil, err
}

// Count returns the number of elements matching pred, or of all elements
// when pred is nil.
func (q *Query) Count(ctx context.Context, pred Predicate) (int, error) {
	pred = matchAll(pred)
	count := 0
	err := q.run(ctx, "count", func(v any) (bool, error) {
		if pred(v) {
			count++
		}
		return true, nil
	}, nil)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// ElementAt returns the element at index i. A negative i or one past the end
// is ARGUMENT_OUT_OF_RANGE; an empty sequence is ARGUMENT_NULL. Nothing past
// index i is pulled.
func (q *Query) ElementAt(ctx context.Context, i int) (any, error) {
	return q.elementAt(ctx, "element_at", i, true)
}

// ElementAtOrDefault is ElementAt returning nil where ElementAt would fail
// on the index or on an empty sequence.
func (q *Query) ElementAtOrDefault(ctx context.Context, i int) (any, error) {
	return q.elementAt(ctx, "element_at_or_default", i, false)
}

func (q *Query) elementAt(ctx context.Context, op string, i int, strict bool) (any, error) {
	if i < 0 {
		if !strict {
			return nil, q.reject(ctx, op, nil)
		}
		return nil, q.reject(ctx, op, errors.ArgumentOutOfRange("index", i))
	}
	var (
		result any
		found  bool
		index  int
	)
	err := q.run(ctx, op, func(v any) (bool, error) {
		if index == i {
			result, found = v, true
			return false, nil
		}
		index++
		return true, nil
	}, func(n int64) error {
		switch {
		case found || !strict:
			return nil
		case n == 0:
			return errors.ArgumentNull("source").WithDetail("index", i)
		default:
			return errors.ArgumentOutOfRange("index", i)
		}
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// First returns the first element matching pred, or nil if none does.
func (q *Query) First(ctx context.Context, pred Predicate) (any, error) {
	pred = matchAll(pred)
	var result any
	err := q.run(ctx, "first", func(v any) (bool, error) {
		if pred(v) {
			result = v
			return false, nil
		}
		return true, nil
	}, nil)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Last returns the last element matching pred, or nil if none does.
func (q *Query) Last(ctx context.Context, pred Predicate) (any, error) {
	pred = matchAll(pred)
	var result any
	err := q.run(ctx, "last", func(v any) (bool, error) {
		if pred(v) {
			result = v
		}
		return true, nil
	}, nil)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Single returns the only element matching pred, or nil if none does. A
// second match is INVALID_OPERATION, raised without pulling further.
func (q *Query) Single(ctx context.Context, pred Predicate) (any, error) {
	pred = matchAll(pred)
	var (
		result any
		found  bool
	)
	err := q.run(ctx, "single", func(v any) (bool, error) {
		if !pred(v) {
			return true, nil
		}
		if found {
			return false, errors.InvalidOperation("sequence contains more than one matching element")
		}
		result, found = v, true
		return true, nil
	}, nil)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// project applies sel to v when sel is set.
func project(ctx context.Context, sel Selector, v any) (any, error) {
	if sel == nil {
		return v, nil
	}
	return sel(ctx, v)
}

// Sum adds the elements, or sel applied to them. Integers sum to int64 and
// any float makes the result float64. An empty sequence sums to int64(0).
func (q *Query) Sum(ctx context.Context, sel Selector) (any, error) {
	var acc any = int64(0)
	err := q.run(ctx, "sum", func(v any) (bool, error) {
		x, err := project(ctx, sel, v)
		if err != nil {
			return false, err
		}
		if acc, err = value.Add(acc, x); err != nil {
			return false, err
		}
		return true, nil
	}, nil)
	if err != nil {
		return nil, err
	}
	return acc, nil
}

// Average returns the arithmetic mean of the elements, or of sel applied to
// them. An empty sequence is INVALID_OPERATION.
func (q *Query) Average(ctx context.Context, sel Selector) (float64, error) {
	var (
		acc   any = int64(0)
		count int64
	)
	err := q.run(ctx, "average", func(v any) (bool, error) {
		x, err := project(ctx, sel, v)
		if err != nil {
			return false, err
		}
		if acc, err = value.Add(acc, x); err != nil {
			return false, err
		}
		return true, nil
	}, func(n int64) error {
		count = n
		if n == 0 {
			return errors.InvalidOperation("cannot average an empty sequence")
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	total, _ := value.ToFloat(acc)
	return total / float64(count), nil
}

// Min returns the smallest element, or of sel applied to them, under
// value.Compare. An empty sequence yields nil.
func (q *Query) Min(ctx context.Context, sel Selector) (any, error) {
	return q.extreme(ctx, "min", sel, -1)
}

// Max returns the largest element, or of sel applied to them, under
// value.Compare. An empty sequence yields nil.
func (q *Query) Max(ctx context.Context, sel Selector) (any, error) {
	return q.extreme(ctx, "max", sel, 1)
}

func (q *Query) extreme(ctx context.Context, op string, sel Selector, sign int) (any, error) {
	var (
		best any
		seen bool
	)
	err := q.run(ctx, op, func(v any) (bool, error) {
		x, err := project(ctx, sel, v)
		if err != nil {
			return false, err
		}
		if !seen || value.Compare(x, best)*sign > 0 {
			best, seen = x, true
		}
		return true, nil
	}, nil)
	if err != nil {
		return nil, err
	}
	return best, nil
}
