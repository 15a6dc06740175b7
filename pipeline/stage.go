package pipeline

import (
	"context"

	"github.com/kbukum/lazyseq/value"
)

// StepFunc is the universal stage primitive: given one input element it
// emits zero or more output elements, in order. Map emits exactly once,
// Filter zero or once, FlatMap any number of times.
//
// A step that carries state across elements (a counter, the previous
// element) keeps it in a value captured by the closure; each stage instance
// owns its own state.
type StepFunc func(ctx context.Context, in any, emit func(any)) error

// MapFunc transforms one element.
type MapFunc func(ctx context.Context, v any) (any, error)

// Predicate decides whether an element is kept.
type Predicate func(v any) bool

// SpreadFunc receives the members of a list element as arguments.
type SpreadFunc func(ctx context.Context, args ...any) (any, error)

// ReduceFunc folds one element into the accumulator.
type ReduceFunc func(acc, v any) (any, error)

type stage struct {
	name string
	step StepFunc
}

// MapStep returns the step for fn: exactly one output per input.
func MapStep(fn MapFunc) StepFunc {
	return func(ctx context.Context, in any, emit func(any)) error {
		out, err := fn(ctx, in)
		if err != nil {
			return err
		}
		emit(out)
		return nil
	}
}

// FilterStep returns the step for fn: the input itself or nothing. A nil
// predicate keeps truthy elements.
func FilterStep(fn Predicate) StepFunc {
	if fn == nil {
		fn = value.Truthy
	}
	return func(_ context.Context, in any, emit func(any)) error {
		if fn(in) {
			emit(in)
		}
		return nil
	}
}

// UnpackStep returns the flattening step. List elements are spread into fn,
// or emitted member by member when fn is nil. Non-list elements count as a
// single argument.
func UnpackStep(fn SpreadFunc) StepFunc {
	return func(ctx context.Context, in any, emit func(any)) error {
		members, ok := value.Members(in)
		if !ok {
			members = []any{in}
		}
		if fn == nil {
			for _, m := range members {
				emit(m)
			}
			return nil
		}
		out, err := fn(ctx, members...)
		if err != nil {
			return err
		}
		emit(out)
		return nil
	}
}

// queue buffers the outputs one stage produced for the next one.
type queue struct {
	items []any
	head  int
}

func (q *queue) push(v any) { q.items = append(q.items, v) }

func (q *queue) empty() bool { return q.head >= len(q.items) }

func (q *queue) pop() (any, bool) {
	if q.empty() {
		return nil, false
	}
	v := q.items[q.head]
	q.items[q.head] = nil
	q.head++
	if q.head == len(q.items) {
		q.items = q.items[:0]
		q.head = 0
	}
	return v, true
}

// fusedIter runs every stage inside one traversal. Outputs are drained
// depth-first, so a later source element is not pulled until everything
// derived from the earlier ones has been handed out.
type fusedIter struct {
	source Iterator[any]
	stages []stage
	// queues[i] holds elements waiting to enter stage i; the last queue holds
	// finished outputs. queues[0] is unused because stage 0 reads the source.
	queues []queue
	emit   []func(any)
}

func fuse(source Iterator[any], stages []stage) Iterator[any] {
	if len(stages) == 0 {
		return source
	}
	it := &fusedIter{
		source: source,
		stages: stages,
		queues: make([]queue, len(stages)+1),
		emit:   make([]func(any), len(stages)),
	}
	for i := range stages {
		it.emit[i] = it.queues[i+1].push
	}
	return it
}

func (it *fusedIter) Next(ctx context.Context) (any, bool, error) {
	last := len(it.stages)
	for {
		if v, ok := it.queues[last].pop(); ok {
			return v, true, nil
		}
		level := -1
		for i := last - 1; i >= 1; i-- {
			if !it.queues[i].empty() {
				level = i
				break
			}
		}
		var in any
		if level < 0 {
			v, ok, err := it.source.Next(ctx)
			if err != nil || !ok {
				return nil, false, err
			}
			in, level = v, 0
		} else {
			in, _ = it.queues[level].pop()
		}
		if err := it.stages[level].step(ctx, in, it.emit[level]); err != nil {
			return nil, false, err
		}
	}
}

func (it *fusedIter) Close() error { return it.source.Close() }
