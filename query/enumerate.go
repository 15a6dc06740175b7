package query

import (
	"context"
	"encoding/json"
	"iter"

	"github.com/kbukum/lazyseq/pipeline"
)

// Iterator hands out the composed sequence for manual pulling. Exhausting
// or closing the iterator closes the Query.
func (q *Query) Iterator() (pipeline.Iterator[any], error) {
	if q.err != nil {
		_ = q.p.Close()
		return nil, q.err
	}
	return q.p.Iter()
}

// Seq adapts the Query to a range-over-func sequence. Breaking out of the
// loop stops pulling and closes the Query. An error is yielded once, as the
// last pair.
func (q *Query) Seq(ctx context.Context) iter.Seq2[any, error] {
	return func(yield func(any, error) bool) {
		it, err := q.Iterator()
		if err != nil {
			yield(nil, err)
			return
		}
		defer it.Close()
		for {
			v, ok, err := it.Next(ctx)
			if err != nil {
				yield(nil, err)
				return
			}
			if !ok || !yield(v, nil) {
				return
			}
		}
	}
}

// ForEach calls fn for every element. A non-nil error from fn stops the
// traversal and is returned.
func (q *Query) ForEach(ctx context.Context, fn func(v any) error) error {
	return q.run(ctx, "for_each", func(v any) (bool, error) {
		if err := fn(v); err != nil {
			return false, err
		}
		return true, nil
	}, nil)
}

// MarshalJSON drains the Query into a JSON array.
func (q *Query) MarshalJSON() ([]byte, error) {
	items, err := q.ToArray(context.Background())
	if err != nil {
		return nil, err
	}
	return json.Marshal(items)
}
