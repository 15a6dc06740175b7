package pipeline

import (
	"fmt"
	"iter"

	"github.com/kbukum/lazyseq/errors"
	"github.com/kbukum/lazyseq/value"
)

// RangeThreshold is the element count from which Range produces values
// lazily. Smaller ranges are materialized into a slice up front.
const RangeThreshold = 101

// SourceKind tags the shape of a Source.
type SourceKind int

const (
	// SourceList is an in-memory ordered list.
	SourceList SourceKind = iota
	// SourceSequence is an existing iterator, iter.Seq or pipeline that is adopted.
	SourceSequence
	// SourceThunk is a callable whose result becomes the source.
	SourceThunk
	// SourceScalar is a single value wrapped as a one-element sequence.
	SourceScalar
	// SourceGenerated is a counter or repeat generator.
	SourceGenerated
)

func (k SourceKind) String() string {
	switch k {
	case SourceList:
		return "list"
	case SourceSequence:
		return "sequence"
	case SourceThunk:
		return "thunk"
	case SourceScalar:
		return "scalar"
	case SourceGenerated:
		return "generated"
	default:
		return "unknown"
	}
}

// Detacher is implemented by owners of a sequence that can hand it over.
// After Detach the donor is closed and the caller owns the iterator.
type Detacher interface {
	Detach() (Iterator[any], error)
}

// Thunk is the normalized form of a callable source.
type Thunk func(args ...any) (any, error)

// Source describes where a pipeline gets its elements. Describing a source
// never reads from it; Open does.
type Source struct {
	Kind SourceKind

	list     []any
	adopted  Iterator[any]
	detacher Detacher
	seq      iter.Seq[any]
	thunk    Thunk
	args     []any
	scalar   any
	generate func() Iterator[any]

	// taken is shared by copies of a one-shot source and set by its first Open.
	taken *bool
}

// Describe classifies source without touching it.
//
//   - slices and arrays become list sources
//   - Iterator[any], iter.Seq[any] and Detachers are adopted
//   - func() any, func() (any, error), func(...any) any and
//     func(...any) (any, error) are thunks called with args on Open
//   - anything else, nil included, is a one-element scalar source
func Describe(source any, args ...any) Source {
	switch s := source.(type) {
	case []any:
		return Source{Kind: SourceList, list: s}
	case Detacher:
		return Source{Kind: SourceSequence, detacher: s, taken: new(bool)}
	case Iterator[any]:
		return Source{Kind: SourceSequence, adopted: s, taken: new(bool)}
	case iter.Seq[any]:
		return Source{Kind: SourceSequence, seq: s}
	case func(yield func(any) bool):
		return Source{Kind: SourceSequence, seq: s}
	case Thunk:
		return Source{Kind: SourceThunk, thunk: s, args: args}
	case func() any:
		return Source{Kind: SourceThunk, thunk: func(...any) (any, error) { return s(), nil }}
	case func() (any, error):
		return Source{Kind: SourceThunk, thunk: func(...any) (any, error) { return s() }}
	case func(...any) any:
		return Source{Kind: SourceThunk, thunk: func(a ...any) (any, error) { return s(a...), nil }, args: args}
	case func(...any) (any, error):
		return Source{Kind: SourceThunk, thunk: s, args: args}
	}
	if members, ok := value.Members(source); ok {
		return Source{Kind: SourceList, list: members}
	}
	return Source{Kind: SourceScalar, scalar: source}
}

// Restartable reports whether Open may be called more than once.
func (s Source) Restartable() bool {
	return s.adopted == nil && s.detacher == nil
}

// Open produces the iterator for the source. Thunks are invoked here and
// their result is described and opened in turn. Adopted iterators and
// Detachers can be opened once; later calls report SEQUENCE_CLOSED.
func (s Source) Open() (Iterator[any], error) {
	if s.taken != nil {
		if *s.taken {
			return nil, errors.SequenceClosed()
		}
		*s.taken = true
	}
	switch s.Kind {
	case SourceList:
		return &sliceIter[any]{items: s.list}, nil
	case SourceSequence:
		switch {
		case s.detacher != nil:
			return s.detacher.Detach()
		case s.adopted != nil:
			return s.adopted, nil
		default:
			return &seqIter[any]{seq: s.seq}, nil
		}
	case SourceThunk:
		result, err := s.thunk(s.args...)
		if err != nil {
			return nil, err
		}
		return Describe(result).Open()
	case SourceScalar:
		return &sliceIter[any]{items: []any{s.scalar}}, nil
	case SourceGenerated:
		return s.generate(), nil
	default:
		return nil, errors.Internal(fmt.Errorf("unknown source kind %d", s.Kind))
	}
}

// From materializes source into a new Pipeline. See Describe for the accepted
// shapes. Thunks are invoked immediately with args.
func From(source any, args ...any) (*Pipeline, error) {
	return Open(Describe(source, args...))
}

// Open materializes a described source into a new Pipeline.
func Open(src Source) (*Pipeline, error) {
	it, err := src.Open()
	if err != nil {
		return nil, err
	}
	p := New(it)
	p.origin = &src
	return p, nil
}

// Empty returns a pipeline with no elements.
func Empty() *Pipeline {
	p, _ := Open(Source{Kind: SourceList, list: []any{}})
	return p
}

// Range returns count consecutive integers starting at start. Below
// RangeThreshold the integers are built into a slice immediately; from the
// threshold on they are generated one at a time.
func Range(start, count int) *Pipeline {
	p, _ := Open(RangeSource(start, count))
	return p
}

// RangeSource describes the source Range opens.
func RangeSource(start, count int) Source {
	if count <= 0 {
		return Source{Kind: SourceList, list: []any{}}
	}
	if count < RangeThreshold {
		list := make([]any, count)
		for i := range list {
			list[i] = start + i
		}
		return Source{Kind: SourceList, list: list}
	}
	return Source{Kind: SourceGenerated, generate: func() Iterator[any] {
		return &rangeIter{next: start, remaining: count}
	}}
}

// Repeat returns a pipeline yielding v count times. It is always lazy.
func Repeat(v any, count int) *Pipeline {
	p, _ := Open(RepeatSource(v, count))
	return p
}

// RepeatSource describes the source Repeat opens.
func RepeatSource(v any, count int) Source {
	return Source{Kind: SourceGenerated, generate: func() Iterator[any] {
		return &repeatIter{value: v, remaining: count}
	}}
}
