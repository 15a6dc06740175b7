package main

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"

	"github.com/kbukum/lazyseq/errors"
)

// arrayReader streams the elements of a top-level JSON array one at a time.
// It is a non-restartable source: each element is decoded only when pulled.
// An empty input reads as an empty array.
type arrayReader struct {
	dec     *json.Decoder
	closer  io.Closer
	started bool
	done    bool
	closed  bool
}

func newArrayReader(r io.Reader) *arrayReader {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	a := &arrayReader{dec: dec}
	if c, ok := r.(io.Closer); ok {
		a.closer = c
	}
	return a
}

func (a *arrayReader) Next(ctx context.Context) (any, bool, error) {
	if a.done {
		return nil, false, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	if !a.started {
		tok, err := a.dec.Token()
		if stderrors.Is(err, io.EOF) {
			a.done = true
			return nil, false, nil
		}
		if err != nil {
			return a.fail("malformed input", err)
		}
		if d, ok := tok.(json.Delim); !ok || d != '[' {
			a.done = true
			return nil, false, errors.InvalidArgument("input", "expected a JSON array")
		}
		a.started = true
	}

	if !a.dec.More() {
		a.done = true
		if _, err := a.dec.Token(); err != nil {
			return a.fail("unterminated array", err)
		}
		return nil, false, nil
	}

	var v any
	if err := a.dec.Decode(&v); err != nil {
		return a.fail("malformed element", err)
	}
	return normalize(v), true, nil
}

func (a *arrayReader) fail(reason string, cause error) (any, bool, error) {
	a.done = true
	return nil, false, errors.InvalidArgument("input", reason).WithCause(cause)
}

// Close releases the underlying reader. It is safe to call more than once.
func (a *arrayReader) Close() error {
	a.done = true
	if a.closed || a.closer == nil {
		return nil
	}
	a.closed = true
	return a.closer.Close()
}

// normalize turns json.Number into int64 when it is integral and float64
// otherwise, so elements carry int and float kinds.
func normalize(v any) any {
	switch t := v.(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case []any:
		for i, item := range t {
			t[i] = normalize(item)
		}
		return t
	case map[string]any:
		for k, item := range t {
			t[k] = normalize(item)
		}
		return t
	}
	return v
}
