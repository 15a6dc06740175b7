package query

import (
	"context"
	"iter"

	"github.com/kbukum/lazyseq/errors"
	"github.com/kbukum/lazyseq/logger"
	"github.com/kbukum/lazyseq/pipeline"
	"github.com/kbukum/lazyseq/value"
)

// Deferred records non-terminal operators instead of applying them. The
// source is not opened, invoked or read until the first terminal operator,
// which opens it, replays the recorded commands in order and delegates to
// the resulting Query. Operators recorded after that are replayed by the
// next terminal operator.
type Deferred struct {
	src     *pipeline.Source
	q       *Query
	queue   []Command
	history []Command
	// wrapped holds the operators q carried when passed to Wrap.
	wrapped int
}

// Defer records source without touching it. See From for accepted sources;
// thunks are invoked with args by the first terminal operator.
func Defer(source any, args ...any) *Deferred {
	src := pipeline.Describe(source, args...)
	return &Deferred{src: &src}
}

// Wrap puts a Deferred in front of an existing Query. Operators already
// applied to q are not recorded, so Restart on a Deferred wrapping a
// composed Query fails with INVALID_OPERATION.
func Wrap(q *Query) *Deferred {
	return &Deferred{q: q, wrapped: q.p.Operators()}
}

func (d *Deferred) enqueue(c Command) *Deferred {
	d.queue = append(d.queue, c)
	d.history = append(d.history, c)
	return d
}

// Pending returns the number of recorded commands not yet replayed.
func (d *Deferred) Pending() int { return len(d.queue) }

// Opened reports whether a terminal operator has opened the source.
func (d *Deferred) Opened() bool { return d.q != nil }

// Query opens the source if needed, replays pending commands and returns
// the underlying Query.
func (d *Deferred) Query() *Query {
	if d.q == nil {
		p, err := pipeline.Open(*d.src)
		if err != nil {
			d.q = failed(err)
		} else {
			d.q = wrap(p)
		}
	}
	if len(d.queue) > 0 {
		log().Debug("replaying deferred commands", logger.Fields(
			logger.FieldPipelineID, d.q.ID(),
			logger.FieldQueued, len(d.queue),
		))
		for _, c := range d.queue {
			apply(d.q, c)
		}
		d.queue = nil
	}
	return d.q
}

// Err returns the composition error of the underlying Query. It is nil
// until a terminal operator has run.
func (d *Deferred) Err() error {
	if d.q == nil {
		return nil
	}
	return d.q.err
}

// Detach implements pipeline.Detacher so a Deferred can feed another query.
func (d *Deferred) Detach() (pipeline.Iterator[any], error) {
	return d.Query().Detach()
}

// Restart returns a new Deferred over the original source with every
// command recorded so far queued again. The returned Deferred fails with
// INVALID_OPERATION on its first terminal operator when the source, or a
// sequence handed to Concat, Except or Zip, is an adopted iterator, or when
// the wrapped Query had operators applied before Wrap.
func (d *Deferred) Restart() *Deferred {
	if d.wrapped > 0 {
		return restartFailed("operators applied before Wrap cannot be replayed")
	}
	src := d.src
	if src == nil && d.q != nil {
		if origin, ok := d.q.p.Origin(); ok {
			src = &origin
		}
	}
	if src == nil || !src.Restartable() {
		return restartFailed("source cannot be restarted")
	}
	for _, c := range d.history {
		if !c.restartable() {
			return restartFailed(c.Op.String() + " input cannot be restarted")
		}
	}
	history := append([]Command(nil), d.history...)
	return &Deferred{
		src:     src,
		queue:   history,
		history: append([]Command(nil), history...),
	}
}

func restartFailed(msg string) *Deferred {
	return &Deferred{q: failed(errors.InvalidOperation(msg))}
}

// --- non-terminal operators ---

// Select records a Select.
func (d *Deferred) Select(fn Selector) *Deferred {
	return d.enqueue(Command{Op: OpSelect, Selector: fn})
}

// SelectMany records a SelectMany.
func (d *Deferred) SelectMany(fn Selector) *Deferred {
	return d.enqueue(Command{Op: OpSelectMany, Selector: fn})
}

// Unpack records an Unpack.
func (d *Deferred) Unpack(fn Spread) *Deferred {
	return d.enqueue(Command{Op: OpUnpack, Spread: fn})
}

// Where records a Where.
func (d *Deferred) Where(pred Predicate) *Deferred {
	return d.enqueue(Command{Op: OpWhere, Predicate: pred})
}

// Filter is an alias of Where.
func (d *Deferred) Filter(pred Predicate) *Deferred {
	return d.Where(pred)
}

// Distinct records a Distinct.
func (d *Deferred) Distinct(opts ...CompareOption) *Deferred {
	return d.enqueue(Command{Op: OpDistinct, Options: opts})
}

// Except records an Except. other is not read until replay.
func (d *Deferred) Except(other any, opts ...CompareOption) *Deferred {
	return d.enqueue(Command{Op: OpExcept, Other: other, Options: opts})
}

// Cast records a Cast.
func (d *Deferred) Cast(kind value.Kind) *Deferred {
	return d.enqueue(Command{Op: OpCast, Kind: kind})
}

// OfType records an OfType.
func (d *Deferred) OfType(kind value.Kind) *Deferred {
	return d.enqueue(Command{Op: OpOfType, Kind: kind})
}

// OfClass records an OfClass.
func (d *Deferred) OfClass(name string) *Deferred {
	return d.enqueue(Command{Op: OpOfClass, Class: name})
}

// Concat records a Concat. The sources are not opened until replay.
func (d *Deferred) Concat(sources ...any) *Deferred {
	return d.enqueue(Command{Op: OpConcat, Values: sources})
}

// Append records an Append.
func (d *Deferred) Append(values ...any) *Deferred {
	return d.enqueue(Command{Op: OpAppend, Values: values})
}

// Prepend records a Prepend.
func (d *Deferred) Prepend(values ...any) *Deferred {
	return d.enqueue(Command{Op: OpPrepend, Values: values})
}

// Skip records a Skip.
func (d *Deferred) Skip(n int) *Deferred {
	return d.enqueue(Command{Op: OpSkip, Count: n})
}

// SkipWhile records a SkipWhile.
func (d *Deferred) SkipWhile(pred Predicate) *Deferred {
	return d.enqueue(Command{Op: OpSkipWhile, Predicate: pred})
}

// Take records a Take.
func (d *Deferred) Take(n int) *Deferred {
	return d.enqueue(Command{Op: OpTake, Count: n})
}

// TakeWhile records a TakeWhile.
func (d *Deferred) TakeWhile(pred Predicate) *Deferred {
	return d.enqueue(Command{Op: OpTakeWhile, Predicate: pred})
}

// Zip records a Zip. other is not opened until replay.
func (d *Deferred) Zip(other any, sel ZipSelector) *Deferred {
	return d.enqueue(Command{Op: OpZip, Other: other, Zip: sel})
}

// --- terminal operators ---

// ToArray replays the recorded commands and collects the elements.
func (d *Deferred) ToArray(ctx context.Context) ([]any, error) {
	return d.Query().ToArray(ctx)
}

// Aggregate replays the recorded commands and folds the elements; see Query.Aggregate.
func (d *Deferred) Aggregate(ctx context.Context, fn Reducer, seed ...any) (any, error) {
	return d.Query().Aggregate(ctx, fn, seed...)
}

// Reduce replays the recorded commands and folds from initial.
func (d *Deferred) Reduce(ctx context.Context, fn Reducer, initial any) (any, error) {
	return d.Query().Reduce(ctx, fn, initial)
}

// All replays the recorded commands and reports whether every element matches.
func (d *Deferred) All(ctx context.Context, pred Predicate) (bool, error) {
	return d.Query().All(ctx, pred)
}

// Any replays the recorded commands and reports whether an element matches.
func (d *Deferred) Any(ctx context.Context, pred Predicate) (bool, error) {
	return d.Query().Any(ctx, pred)
}

// Contains replays the recorded commands and looks for v.
func (d *Deferred) Contains(ctx context.Context, v any, opts ...CompareOption) (bool, error) {
	return d.Query().Contains(ctx, v, opts...)
}

// ContainsExactly is Contains under identity.
func (d *Deferred) ContainsExactly(ctx context.Context, v any) (bool, error) {
	return d.Query().ContainsExactly(ctx, v)
}

// Count replays the recorded commands and counts matching elements.
func (d *Deferred) Count(ctx context.Context, pred Predicate) (int, error) {
	return d.Query().Count(ctx, pred)
}

// ElementAt replays the recorded commands and returns the element at i.
func (d *Deferred) ElementAt(ctx context.Context, i int) (any, error) {
	return d.Query().ElementAt(ctx, i)
}

// ElementAtOrDefault is ElementAt yielding nil when i is out of range.
func (d *Deferred) ElementAtOrDefault(ctx context.Context, i int) (any, error) {
	return d.Query().ElementAtOrDefault(ctx, i)
}

// First replays the recorded commands and returns the first match.
func (d *Deferred) First(ctx context.Context, pred Predicate) (any, error) {
	return d.Query().First(ctx, pred)
}

// Last replays the recorded commands and returns the last match.
func (d *Deferred) Last(ctx context.Context, pred Predicate) (any, error) {
	return d.Query().Last(ctx, pred)
}

// Single replays the recorded commands and returns the only match.
func (d *Deferred) Single(ctx context.Context, pred Predicate) (any, error) {
	return d.Query().Single(ctx, pred)
}

// Sum replays the recorded commands and adds the elements.
func (d *Deferred) Sum(ctx context.Context, sel Selector) (any, error) {
	return d.Query().Sum(ctx, sel)
}

// Average replays the recorded commands and returns the mean.
func (d *Deferred) Average(ctx context.Context, sel Selector) (float64, error) {
	return d.Query().Average(ctx, sel)
}

// Min replays the recorded commands and returns the smallest element.
func (d *Deferred) Min(ctx context.Context, sel Selector) (any, error) {
	return d.Query().Min(ctx, sel)
}

// Max replays the recorded commands and returns the largest element.
func (d *Deferred) Max(ctx context.Context, sel Selector) (any, error) {
	return d.Query().Max(ctx, sel)
}

// Iterator replays the recorded commands and hands out the sequence.
func (d *Deferred) Iterator() (pipeline.Iterator[any], error) {
	return d.Query().Iterator()
}

// Seq replays the recorded commands when ranged over.
func (d *Deferred) Seq(ctx context.Context) iter.Seq2[any, error] {
	return func(yield func(any, error) bool) {
		d.Query().Seq(ctx)(yield)
	}
}

// ForEach replays the recorded commands and calls fn for every element.
func (d *Deferred) ForEach(ctx context.Context, fn func(v any) error) error {
	return d.Query().ForEach(ctx, fn)
}

// MarshalJSON replays the recorded commands and encodes the elements as a JSON array.
func (d *Deferred) MarshalJSON() ([]byte, error) {
	return d.Query().MarshalJSON()
}
