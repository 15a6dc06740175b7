// Package pipeline is the single-pass evaluation engine behind package query.
//
// A Pipeline owns exactly one Iterator[any] and a list of fused stages.
// Stages are StepFunc values that emit zero or more outputs per input; Map,
// Filter and Unpack are the common shapes. All stages run inside one
// iterator and outputs are drained depth-first, so elements come out in
// source order and nothing upstream is pulled before it is needed.
//
// Operators that must decide when upstream is pulled (take, zip, concat)
// replace the sequence through Compose instead of adding a stage.
//
// # Sources
//
// Describe classifies a source without reading it; Open materializes it.
// Slices become list sources, iterators and iter.Seq values are adopted,
// thunks are invoked on Open and anything else is a one-element sequence.
// Range builds a slice below RangeThreshold elements and generates lazily
// from there on; Repeat always generates.
//
// # Lifecycle
//
// A Pipeline moves Open -> Consuming -> Closed. Draining, detaching or
// closing it is final: any later stage or iteration returns SEQUENCE_CLOSED.
//
//	p, _ := pipeline.From([]any{1, 2, 3})
//	_ = p.Map(func(_ context.Context, v any) (any, error) { return v.(int) * 2, nil })
//	out, err := p.Collect(ctx) // [2 4 6]
package pipeline
