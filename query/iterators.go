package query

import (
	"context"

	"github.com/kbukum/lazyseq/pipeline"
)

type takeIter struct {
	source    pipeline.Iterator[any]
	remaining int
}

func (it *takeIter) Next(ctx context.Context) (any, bool, error) {
	if it.remaining <= 0 {
		return nil, false, nil
	}
	v, ok, err := it.source.Next(ctx)
	if err != nil || !ok {
		it.remaining = 0
		return nil, false, err
	}
	it.remaining--
	return v, true, nil
}

func (it *takeIter) Close() error { return it.source.Close() }

type takeWhileIter struct {
	source pipeline.Iterator[any]
	pred   Predicate
	done   bool
}

func (it *takeWhileIter) Next(ctx context.Context) (any, bool, error) {
	if it.done {
		return nil, false, nil
	}
	v, ok, err := it.source.Next(ctx)
	if err != nil || !ok || !it.pred(v) {
		it.done = true
		return nil, false, err
	}
	return v, true, nil
}

func (it *takeWhileIter) Close() error { return it.source.Close() }

// zipIter walks two sequences in lock-step. The right side is opened on the
// first pull and the left side is always pulled first.
type zipIter struct {
	left     pipeline.Iterator[any]
	right    pipeline.Iterator[any]
	rightSrc pipeline.Source
	sel      ZipSelector
	done     bool
}

func (it *zipIter) Next(ctx context.Context) (any, bool, error) {
	if it.done {
		return nil, false, nil
	}
	a, ok, err := it.left.Next(ctx)
	if err != nil || !ok {
		it.done = true
		return nil, false, err
	}
	if it.right == nil {
		if it.right, err = it.rightSrc.Open(); err != nil {
			it.done = true
			return nil, false, err
		}
	}
	b, ok, err := it.right.Next(ctx)
	if err != nil || !ok {
		it.done = true
		return nil, false, err
	}
	out, err := it.sel(ctx, a, b)
	if err != nil {
		it.done = true
		return nil, false, err
	}
	return out, true, nil
}

func (it *zipIter) Close() error {
	err := it.left.Close()
	if it.right != nil {
		if rerr := it.right.Close(); err == nil {
			err = rerr
		}
	}
	return err
}

// part is one segment of a concatenation: either an iterator already in
// hand or a source opened when the concatenation reaches it.
type part struct {
	it  pipeline.Iterator[any]
	src *pipeline.Source
}

type concatIter struct {
	current pipeline.Iterator[any]
	rest    []part
}

func (it *concatIter) Next(ctx context.Context) (any, bool, error) {
	for it.current != nil {
		v, ok, err := it.current.Next(ctx)
		if err != nil {
			return nil, false, err
		}
		if ok {
			return v, true, nil
		}
		_ = it.current.Close()
		it.current = nil
		if err := it.advance(); err != nil {
			return nil, false, err
		}
	}
	return nil, false, nil
}

func (it *concatIter) advance() error {
	if len(it.rest) == 0 {
		return nil
	}
	next := it.rest[0]
	it.rest = it.rest[1:]
	if next.it != nil {
		it.current = next.it
		return nil
	}
	opened, err := next.src.Open()
	if err != nil {
		return err
	}
	it.current = opened
	return nil
}

func (it *concatIter) Close() error {
	var err error
	if it.current != nil {
		err = it.current.Close()
		it.current = nil
	}
	for _, p := range it.rest {
		if p.it != nil {
			if cerr := p.it.Close(); err == nil {
				err = cerr
			}
		}
	}
	it.rest = nil
	return err
}
