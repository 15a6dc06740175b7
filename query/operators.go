package query

import (
	"context"

	"github.com/kbukum/lazyseq/pipeline"
	"github.com/kbukum/lazyseq/value"
)

// Select maps every element through fn.
func (q *Query) Select(fn Selector) *Query {
	return q.attach(func(p *pipeline.Pipeline) error { return p.Map(fn) })
}

// SelectMany maps every element through fn (identity when nil) and flattens
// list results one level. Non-list results pass through as one element.
func (q *Query) SelectMany(fn Selector) *Query {
	return q.attach(func(p *pipeline.Pipeline) error {
		return p.FlatMap("select_many", func(ctx context.Context, in any, emit func(any)) error {
			out := in
			if fn != nil {
				var err error
				if out, err = fn(ctx, in); err != nil {
					return err
				}
			}
			members, ok := value.Members(out)
			if !ok {
				emit(out)
				return nil
			}
			for _, m := range members {
				emit(m)
			}
			return nil
		})
	})
}

// Unpack spreads each list element into fn as arguments. With a nil fn the
// members are yielded directly.
func (q *Query) Unpack(fn Spread) *Query {
	return q.attach(func(p *pipeline.Pipeline) error { return p.Unpack(fn) })
}

// Where keeps elements matching pred. A nil pred keeps truthy elements.
func (q *Query) Where(pred Predicate) *Query {
	return q.attach(func(p *pipeline.Pipeline) error { return p.Filter(pred) })
}

// Filter is an alias for Where.
func (q *Query) Filter(pred Predicate) *Query {
	return q.Where(pred)
}

// Distinct removes elements equal to the element directly before them. Only
// adjacent duplicates are removed: [1 1 2 1] becomes [1 2 1].
func (q *Query) Distinct(opts ...CompareOption) *Query {
	eq := resolveCompare(opts).equal()
	return q.attach(func(p *pipeline.Pipeline) error {
		return p.FlatMap("distinct", distinctStep(eq))
	})
}

type distinctState struct {
	prev any
	seen bool
}

func distinctStep(eq value.Comparer) pipeline.StepFunc {
	st := &distinctState{}
	return func(_ context.Context, in any, emit func(any)) error {
		if st.seen && eq(st.prev, in) {
			return nil
		}
		st.prev, st.seen = in, true
		emit(in)
		return nil
	}
}

// Except drops elements equal to any element of other, then removes adjacent
// duplicates from the rest with the same equality. other is read in full the
// first time an element reaches the stage.
func (q *Query) Except(other any, opts ...CompareOption) *Query {
	cfg := resolveCompare(opts)
	return q.attach(func(p *pipeline.Pipeline) error {
		if err := p.FlatMap("except", exceptStep(other, cfg)); err != nil {
			return err
		}
		return p.FlatMap("distinct", distinctStep(cfg.equal()))
	})
}

type exceptState struct {
	loaded bool
	// keys holds hashable members when membership can be tested by lookup.
	keys map[any]struct{}
	// scan holds members that must be compared one by one.
	scan []any
}

func exceptStep(other any, cfg compareConfig) pipeline.StepFunc {
	st := &exceptState{}
	eq := cfg.equal()
	src := pipeline.Describe(other)
	hashed := src.Kind == pipeline.SourceList && cfg.comparer == nil && !cfg.strict

	load := func(ctx context.Context) error {
		op, err := pipeline.Open(src)
		if err != nil {
			return err
		}
		members, err := op.Collect(ctx)
		if err != nil {
			return err
		}
		if !hashed {
			st.scan = members
			return nil
		}
		st.keys = make(map[any]struct{}, len(members))
		for _, m := range members {
			if k, ok := value.Key(m); ok {
				st.keys[k] = struct{}{}
			} else {
				st.scan = append(st.scan, m)
			}
		}
		return nil
	}

	return func(ctx context.Context, in any, emit func(any)) error {
		if !st.loaded {
			if err := load(ctx); err != nil {
				return err
			}
			st.loaded = true
		}
		if st.keys != nil {
			if k, ok := value.Key(in); ok {
				if _, found := st.keys[k]; found {
					return nil
				}
			}
		}
		for _, m := range st.scan {
			if eq(in, m) {
				return nil
			}
		}
		emit(in)
		return nil
	}
}

// Cast coerces every element to kind, dropping the ones that cannot be
// coerced. It never fails.
func (q *Query) Cast(kind value.Kind) *Query {
	return q.attach(func(p *pipeline.Pipeline) error {
		return p.FlatMap("cast", func(_ context.Context, in any, emit func(any)) error {
			if out, ok := value.Cast(in, kind); ok {
				emit(out)
			}
			return nil
		})
	})
}

// OfType keeps elements of the given kind.
func (q *Query) OfType(kind value.Kind) *Query {
	return q.attach(func(p *pipeline.Pipeline) error {
		return p.FlatMap("of_type", pipeline.FilterStep(func(v any) bool {
			return value.KindOf(v) == kind
		}))
	})
}

// OfClass keeps objects whose struct type is named name; see value.IsClass.
// Non-objects are dropped.
func (q *Query) OfClass(name string) *Query {
	return q.attach(func(p *pipeline.Pipeline) error {
		return p.FlatMap("of_class", pipeline.FilterStep(func(v any) bool {
			return value.IsClass(v, name)
		}))
	})
}

// Concat yields every element of q followed by the elements of each source
// in turn. A source is not opened until the sequence reaches it.
func (q *Query) Concat(sources ...any) *Query {
	parts := make([]part, len(sources))
	for i, s := range sources {
		src := pipeline.Describe(s)
		parts[i] = part{src: &src}
	}
	return q.attach(func(p *pipeline.Pipeline) error {
		return p.Compose("concat", func(up pipeline.Iterator[any]) pipeline.Iterator[any] {
			return &concatIter{current: up, rest: parts}
		})
	})
}

// Append yields values after the elements of q.
func (q *Query) Append(values ...any) *Query {
	return q.attach(func(p *pipeline.Pipeline) error {
		return p.Compose("append", func(up pipeline.Iterator[any]) pipeline.Iterator[any] {
			return &concatIter{current: up, rest: []part{{it: pipeline.Slice(values)}}}
		})
	})
}

// Prepend yields values before the elements of q.
func (q *Query) Prepend(values ...any) *Query {
	return q.attach(func(p *pipeline.Pipeline) error {
		return p.Compose("prepend", func(up pipeline.Iterator[any]) pipeline.Iterator[any] {
			return &concatIter{current: pipeline.Slice(values), rest: []part{{it: up}}}
		})
	})
}

// Skip bypasses the first n elements.
func (q *Query) Skip(n int) *Query {
	return q.attach(func(p *pipeline.Pipeline) error {
		skipped := 0
		return p.FlatMap("skip", func(_ context.Context, in any, emit func(any)) error {
			if skipped < n {
				skipped++
				return nil
			}
			emit(in)
			return nil
		})
	})
}

// SkipWhile bypasses elements while pred holds, then yields the rest.
func (q *Query) SkipWhile(pred Predicate) *Query {
	pred = matchAll(pred)
	return q.attach(func(p *pipeline.Pipeline) error {
		bypassing := true
		return p.FlatMap("skip_while", func(_ context.Context, in any, emit func(any)) error {
			if bypassing && pred(in) {
				return nil
			}
			bypassing = false
			emit(in)
			return nil
		})
	})
}

// Take yields at most n elements. Upstream is not pulled past the n-th.
func (q *Query) Take(n int) *Query {
	return q.attach(func(p *pipeline.Pipeline) error {
		return p.Compose("take", func(up pipeline.Iterator[any]) pipeline.Iterator[any] {
			return &takeIter{source: up, remaining: n}
		})
	})
}

// TakeWhile yields elements while pred holds. The first failing element is
// the last one pulled.
func (q *Query) TakeWhile(pred Predicate) *Query {
	pred = matchAll(pred)
	return q.attach(func(p *pipeline.Pipeline) error {
		return p.Compose("take_while", func(up pipeline.Iterator[any]) pipeline.Iterator[any] {
			return &takeWhileIter{source: up, pred: pred}
		})
	})
}

// Zip pairs elements of q and other by position and stops at the shorter.
// other is advanced one step per pair and never rewound. A nil sel yields
// []any{a, b} pairs.
func (q *Query) Zip(other any, sel ZipSelector) *Query {
	if sel == nil {
		sel = func(_ context.Context, a, b any) (any, error) { return []any{a, b}, nil }
	}
	src := pipeline.Describe(other)
	return q.attach(func(p *pipeline.Pipeline) error {
		return p.Compose("zip", func(up pipeline.Iterator[any]) pipeline.Iterator[any] {
			return &zipIter{left: up, rightSrc: src, sel: sel}
		})
	})
}
