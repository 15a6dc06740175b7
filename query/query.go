package query

import (
	"sync/atomic"

	"github.com/kbukum/lazyseq/logger"
	"github.com/kbukum/lazyseq/observability"
	"github.com/kbukum/lazyseq/pipeline"
)

// Query is a lazy, single-pass sequence with the operator library attached.
// It is not safe for concurrent use.
type Query struct {
	p   *pipeline.Pipeline
	err error
}

// From builds a Query over source. Accepted sources are slices and arrays,
// pipeline.Iterator[any], iter.Seq[any], another *Query or *Deferred (whose
// sequence is taken over), thunks (invoked with args) and scalars, which
// become one-element sequences. nil is a one-element sequence holding nil.
func From(source any, args ...any) *Query {
	p, err := pipeline.From(source, args...)
	if err != nil {
		return failed(err)
	}
	return wrap(p)
}

// Of builds a Query over the given values.
func Of(values ...any) *Query {
	return From(values)
}

// Empty returns a Query with no elements.
func Empty() *Query {
	return wrap(pipeline.Empty())
}

// Range returns count consecutive integers starting at start.
func Range(start, count int) *Query {
	return wrap(pipeline.Range(start, count))
}

// Repeat returns a Query yielding v count times.
func Repeat(v any, count int) *Query {
	return wrap(pipeline.Repeat(v, count))
}

// FromPipeline wraps an existing pipeline. The Query takes ownership of it.
func FromPipeline(p *pipeline.Pipeline) *Query {
	return wrap(p)
}

func wrap(p *pipeline.Pipeline) *Query {
	return &Query{p: p}
}

// failed returns a Query that reports err. Its pipeline has no origin, so
// Restart reports err again.
func failed(err error) *Query {
	p := pipeline.New(pipeline.Slice[any](nil))
	_ = p.Close()
	return &Query{p: p, err: err}
}

// Err returns the first error raised while composing the Query.
func (q *Query) Err() error { return q.err }

// ID returns the identifier of the underlying pipeline.
func (q *Query) ID() string { return q.p.ID() }

// State returns the lifecycle state of the underlying pipeline.
func (q *Query) State() pipeline.State { return q.p.State() }

// Pipeline exposes the underlying pipeline for low-level composition.
func (q *Query) Pipeline() *pipeline.Pipeline { return q.p }

// Close releases the underlying sequence without consuming it.
func (q *Query) Close() error { return q.p.Close() }

// Detach hands the composed sequence to a new owner and closes the Query.
// It makes *Query usable as a source for From, Concat, Except and Zip.
func (q *Query) Detach() (pipeline.Iterator[any], error) {
	if q.err != nil {
		_ = q.p.Close()
		return nil, q.err
	}
	return q.p.Detach()
}

// Restart returns a fresh Query over the original, un-consumed source.
// Operators applied to q are not carried over. Sources that were adopted
// iterators cannot be restarted and yield INVALID_OPERATION.
func (q *Query) Restart() *Query {
	if _, ok := q.p.Origin(); !ok && q.err != nil {
		return failed(q.err)
	}
	p, err := q.p.Restart()
	if err != nil {
		return failed(err)
	}
	return wrap(p)
}

// attach applies fn to the pipeline unless an earlier step failed.
func (q *Query) attach(fn func(p *pipeline.Pipeline) error) *Query {
	if q.err == nil {
		q.err = fn(q.p)
	}
	return q
}

func log() *logger.Logger {
	return logger.Get("query")
}

// --- metrics ---

var queryMetrics atomic.Pointer[observability.QueryMetrics]

// SetMetrics installs the instruments terminal operators record into. A
// nil value restores the instruments built from the global meter provider.
func SetMetrics(m *observability.QueryMetrics) {
	queryMetrics.Store(m)
}

func metrics() *observability.QueryMetrics {
	if m := queryMetrics.Load(); m != nil {
		return m
	}
	m, err := observability.NewQueryMetrics(observability.Meter(observability.InstrumentationName))
	if err != nil {
		log().Warn("query metrics unavailable", logger.Fields(logger.FieldError, err.Error()))
		return nil
	}
	queryMetrics.CompareAndSwap(nil, m)
	return queryMetrics.Load()
}
