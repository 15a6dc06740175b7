package pipeline

import (
	"context"

	"github.com/google/uuid"

	"github.com/kbukum/lazyseq/errors"
	"github.com/kbukum/lazyseq/logger"
	"github.com/kbukum/lazyseq/value"
)

// State is the lifecycle position of a Pipeline.
type State int

const (
	// StateOpen accepts new stages and has not been pulled from.
	StateOpen State = iota
	// StateConsuming has handed out its iterator.
	StateConsuming
	// StateClosed has been drained, detached or closed. It cannot be reused.
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateConsuming:
		return "consuming"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Pipeline owns one sequence plus the stages composed onto it. Operators
// mutate it in place. Once it has been consumed it reports SEQUENCE_CLOSED
// for every further operation instead of yielding an empty sequence.
//
// A Pipeline is not safe for concurrent use.
type Pipeline struct {
	id     string
	source Iterator[any]
	stages []stage
	state  State
	origin *Source
	active Iterator[any]
	ops    int
}

// New wraps an iterator in an open Pipeline, taking ownership of it.
func New(source Iterator[any]) *Pipeline {
	return &Pipeline{
		id:     uuid.NewString(),
		source: source,
	}
}

// ID returns the pipeline's unique identifier, used in logs and spans.
func (p *Pipeline) ID() string { return p.id }

// State returns the current lifecycle state.
func (p *Pipeline) State() State { return p.state }

// Operators returns how many stages and compositions have been attached.
func (p *Pipeline) Operators() int { return p.ops }

// Origin returns the described source the pipeline was opened from, if any.
func (p *Pipeline) Origin() (Source, bool) {
	if p.origin == nil {
		return Source{}, false
	}
	return *p.origin, true
}

func (p *Pipeline) log() *logger.Logger {
	return logger.WithComponent("pipeline").WithFields(logger.Fields(logger.FieldPipelineID, p.id))
}

func (p *Pipeline) ensureOpen() error {
	if p.state != StateOpen {
		return errors.SequenceClosed().WithDetail("state", p.state.String())
	}
	return nil
}

// --- Composition ---

// FlatMap attaches a stage running step for every element.
func (p *Pipeline) FlatMap(name string, step StepFunc) error {
	if err := p.ensureOpen(); err != nil {
		return err
	}
	p.stages = append(p.stages, stage{name: name, step: step})
	p.ops++
	p.log().Debug("stage attached", logger.Fields(logger.FieldStage, name, logger.FieldDepth, len(p.stages)))
	return nil
}

// Map attaches a stage yielding fn(element) for every element.
func (p *Pipeline) Map(fn MapFunc) error {
	return p.FlatMap("map", MapStep(fn))
}

// Filter attaches a stage keeping elements for which fn is true. A nil fn
// keeps truthy elements.
func (p *Pipeline) Filter(fn Predicate) error {
	return p.FlatMap("filter", FilterStep(fn))
}

// Unpack attaches the flattening stage; see UnpackStep.
func (p *Pipeline) Unpack(fn SpreadFunc) error {
	return p.FlatMap("unpack", UnpackStep(fn))
}

// Compose replaces the underlying sequence with wrap applied to the current
// fused chain. Operators that must decide when upstream is pulled (take,
// zip, concat) use it instead of a stage.
func (p *Pipeline) Compose(name string, wrap func(Iterator[any]) Iterator[any]) error {
	if err := p.ensureOpen(); err != nil {
		return err
	}
	p.source = wrap(fuse(p.source, p.stages))
	p.stages = nil
	p.ops++
	p.log().Debug("sequence composed", logger.Fields(logger.FieldStage, name))
	return nil
}

// --- Consumption ---

// Iter hands out the fused iterator and moves the pipeline to consuming.
// The pipeline closes itself when the iterator is exhausted, fails or is
// closed.
func (p *Pipeline) Iter() (Iterator[any], error) {
	if err := p.ensureOpen(); err != nil {
		return nil, err
	}
	p.active = fuse(p.source, p.stages)
	p.stages = nil
	p.state = StateConsuming
	return &cursor{p: p}, nil
}

// Detach transfers the fused sequence to the caller and closes the pipeline.
func (p *Pipeline) Detach() (Iterator[any], error) {
	if err := p.ensureOpen(); err != nil {
		return nil, err
	}
	it := fuse(p.source, p.stages)
	p.source, p.stages = nil, nil
	p.state = StateClosed
	p.log().Debug("sequence detached")
	return it, nil
}

// Close releases the underlying sequence. Closing twice is a no-op.
func (p *Pipeline) Close() error {
	if p.state == StateClosed {
		return nil
	}
	p.state = StateClosed
	var err error
	switch {
	case p.active != nil:
		err = p.active.Close()
	case p.source != nil:
		err = p.source.Close()
	}
	p.active, p.source, p.stages = nil, nil, nil
	p.log().Debug("pipeline closed")
	return err
}

// ForEach is the single driving loop behind every terminal operator. fn
// returns false to stop; no further element is pulled after that. The
// pipeline is closed on return.
func (p *Pipeline) ForEach(ctx context.Context, fn func(v any) (bool, error)) error {
	it, err := p.Iter()
	if err != nil {
		return err
	}
	defer it.Close()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		v, ok, err := it.Next(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		more, err := fn(v)
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
	}
}

// Collect drains the pipeline into a slice. The slice is never nil.
func (p *Pipeline) Collect(ctx context.Context) ([]any, error) {
	out := make([]any, 0)
	err := p.ForEach(ctx, func(v any) (bool, error) {
		out = append(out, v)
		return true, nil
	})
	return out, err
}

// Reduce drains the pipeline with a left fold. A nil fn sums numerically.
func (p *Pipeline) Reduce(ctx context.Context, fn ReduceFunc, initial any) (any, error) {
	if fn == nil {
		fn = value.Add
	}
	acc := initial
	err := p.ForEach(ctx, func(v any) (bool, error) {
		next, err := fn(acc, v)
		if err != nil {
			return false, err
		}
		acc = next
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return acc, nil
}

// Restart opens a fresh pipeline over the original source. Stages are not
// carried over. Adopted iterators cannot be restarted.
func (p *Pipeline) Restart() (*Pipeline, error) {
	if p.origin == nil || !p.origin.Restartable() {
		return nil, errors.InvalidOperation("source cannot be restarted").WithDetail("pipeline_id", p.id)
	}
	return Open(*p.origin)
}

// cursor is the iterator handed out by Iter. It reports SEQUENCE_CLOSED when
// driven after the pipeline closed.
type cursor struct {
	p *Pipeline
}

func (c *cursor) Next(ctx context.Context) (any, bool, error) {
	if c.p.state == StateClosed {
		return nil, false, errors.SequenceClosed()
	}
	v, ok, err := c.p.active.Next(ctx)
	if err != nil || !ok {
		_ = c.p.Close()
		return nil, false, err
	}
	return v, true, nil
}

func (c *cursor) Close() error { return c.p.Close() }
