// Package query is the operator library on top of package pipeline: a lazy,
// single-pass, LINQ-style query over any source.
//
// A Query owns one pipeline. Non-terminal operators (Select, Where, Distinct,
// Take, Zip, ...) attach stages and return the same Query; nothing is read
// from the source until a terminal operator (ToArray, Sum, Single, First, ...)
// drives it. A Query can be consumed once: after a terminal operator every
// further call fails with SEQUENCE_CLOSED.
//
//	total, err := query.Range(1, 1000).
//	    Where(func(v any) bool { return v.(int)%3 == 0 }).
//	    Take(10).
//	    Sum(ctx, nil)
//
// Deferred queues non-terminal calls instead of applying them and does not
// touch its source at all until the first terminal call, which replays the
// queue onto a freshly materialized Query.
//
// Errors from non-terminal operators are sticky: the chain keeps returning
// the Query and the first error is reported by the next terminal operator
// (or Err).
//
// # Operators
//
// Non-terminal: Select, SelectMany, Unpack, Where/Filter, Distinct, Except,
// Cast, OfType, OfClass, Concat, Append, Prepend, Skip, SkipWhile, Take,
// TakeWhile, Zip.
//
// Terminal: ToArray, Aggregate, Reduce, All, Any, Contains, ContainsExactly,
// Count, ElementAt, ElementAtOrDefault, First, Last, Single, Sum, Average,
// Min, Max, ForEach, Iterator, Seq, MarshalJSON.
package query
