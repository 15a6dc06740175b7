package pipeline

import (
	"context"
	"iter"
)

// Iterator provides pull-based sequential access to a stream of values.
type Iterator[T any] interface {
	// Next returns the next value. Returns (zero, false, nil) when exhausted.
	Next(ctx context.Context) (T, bool, error)
	// Close releases any resources held by the iterator.
	Close() error
}

// Generator adapts a next function into an Iterator. The function is not
// called again once it reports exhaustion or an error.
func Generator[T any](next func(ctx context.Context) (T, bool, error)) Iterator[T] {
	return &funcIter[T]{next: next}
}

// Slice returns an Iterator over items.
func Slice[T any](items []T) Iterator[T] {
	return &sliceIter[T]{items: items}
}

// --- Internal iterators ---

type sliceIter[T any] struct {
	items []T
	index int
}

func (it *sliceIter[T]) Next(_ context.Context) (T, bool, error) {
	if it.index >= len(it.items) {
		var zero T
		return zero, false, nil
	}
	val := it.items[it.index]
	it.index++
	return val, true, nil
}

func (it *sliceIter[T]) Close() error { return nil }

type funcIter[T any] struct {
	next func(ctx context.Context) (T, bool, error)
	done bool
}

func (it *funcIter[T]) Next(ctx context.Context) (result T, ok bool, err error) {
	if it.done {
		return result, false, nil
	}
	result, ok, err = it.next(ctx)
	if err != nil || !ok {
		it.done = true
		var zero T
		return zero, false, err
	}
	return result, true, nil
}

func (it *funcIter[T]) Close() error {
	it.done = true
	return nil
}

// seqIter pulls from an iter.Seq. The sequence is not started until the
// first Next call.
type seqIter[T any] struct {
	seq  iter.Seq[T]
	next func() (T, bool)
	stop func()
	done bool
}

func (it *seqIter[T]) Next(_ context.Context) (T, bool, error) {
	var zero T
	if it.done {
		return zero, false, nil
	}
	if it.next == nil {
		it.next, it.stop = iter.Pull(it.seq)
	}
	val, ok := it.next()
	if !ok {
		it.done = true
		it.stop()
		return zero, false, nil
	}
	return val, true, nil
}

func (it *seqIter[T]) Close() error {
	it.done = true
	if it.stop != nil {
		it.stop()
	}
	return nil
}

type rangeIter struct {
	next      int
	remaining int
}

func (it *rangeIter) Next(_ context.Context) (any, bool, error) {
	if it.remaining <= 0 {
		return nil, false, nil
	}
	val := it.next
	it.next++
	it.remaining--
	return val, true, nil
}

func (it *rangeIter) Close() error { return nil }

type repeatIter struct {
	value     any
	remaining int
}

func (it *repeatIter) Next(_ context.Context) (any, bool, error) {
	if it.remaining <= 0 {
		return nil, false, nil
	}
	it.remaining--
	return it.value, true, nil
}

func (it *repeatIter) Close() error { return nil }
