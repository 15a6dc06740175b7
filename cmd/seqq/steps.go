package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/kbukum/lazyseq/errors"
	"github.com/kbukum/lazyseq/query"
	"github.com/kbukum/lazyseq/value"
)

// applySteps queues each step on d. Nothing is evaluated until the terminal
// runs.
func applySteps(d *query.Deferred, steps []Step) error {
	for i, s := range steps {
		if err := applyStep(d, s); err != nil {
			return fmt.Errorf("step %d (%s): %w", i, s.Op, err)
		}
	}
	return nil
}

func applyStep(d *query.Deferred, s Step) error {
	switch s.Op {
	case "distinct":
		d.Distinct(s.compareOptions()...)
	case "except":
		d.Except(s.Values, s.compareOptions()...)
	case "cast", "of_type":
		kind, ok := value.ParseKind(s.Kind)
		if !ok {
			return errors.InvalidArgument("kind", fmt.Sprintf("unknown kind %q", s.Kind))
		}
		if s.Op == "cast" {
			d.Cast(kind)
		} else {
			d.OfType(kind)
		}
	case "skip":
		d.Skip(s.Count)
	case "take":
		d.Take(s.Count)
	case "append":
		d.Append(s.Values...)
	case "prepend":
		d.Prepend(s.Values...)
	case "select":
		d.Select(pluck(s.Field))
	case "where":
		d.Where(truthy(s.Field))
	default:
		return errors.InvalidArgument("op", fmt.Sprintf("unknown step %q", s.Op))
	}
	return nil
}

func (s Step) compareOptions() []query.CompareOption {
	if s.Strict {
		return []query.CompareOption{query.Strict()}
	}
	return nil
}

// runTerminal drives d with the named terminal operator.
func runTerminal(ctx context.Context, d *query.Deferred, qc QueryConfig) (any, error) {
	sel := pluck(qc.Field)
	pred := truthy(qc.Field)

	switch qc.Terminal {
	case "", "to_array":
		return d.ToArray(ctx)
	case "count":
		return d.Count(ctx, pred)
	case "sum":
		return d.Sum(ctx, sel)
	case "average":
		return d.Average(ctx, sel)
	case "min":
		return d.Min(ctx, sel)
	case "max":
		return d.Max(ctx, sel)
	case "first":
		return d.First(ctx, pred)
	case "last":
		return d.Last(ctx, pred)
	case "single":
		return d.Single(ctx, pred)
	case "element_at":
		return d.ElementAt(ctx, qc.Index)
	}
	return nil, errors.InvalidArgument("terminal", fmt.Sprintf("unknown terminal %q", qc.Terminal))
}

// pluck returns a selector reading a dotted path from object elements, or
// nil for an empty path. Missing keys and non-object elements select nil.
func pluck(path string) query.Selector {
	if path == "" {
		return nil
	}
	keys := strings.Split(path, ".")
	return func(_ context.Context, v any) (any, error) {
		return lookup(v, keys), nil
	}
}

// truthy returns a predicate on the truthiness of path, or nil for an
// empty path.
func truthy(path string) query.Predicate {
	if path == "" {
		return nil
	}
	keys := strings.Split(path, ".")
	return func(v any) bool {
		return value.Truthy(lookup(v, keys))
	}
}

func lookup(v any, keys []string) any {
	for _, k := range keys {
		m, ok := v.(map[string]any)
		if !ok {
			return nil
		}
		v = m[k]
	}
	return v
}
