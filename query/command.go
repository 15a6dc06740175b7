package query

import (
	"github.com/kbukum/lazyseq/pipeline"
	"github.com/kbukum/lazyseq/value"
)

// Op names a non-terminal operator recorded by a Deferred.
type Op int

const (
	// OpSelect replays Query.Select.
	OpSelect Op = iota
	// OpSelectMany replays Query.SelectMany.
	OpSelectMany
	// OpUnpack replays Query.Unpack.
	OpUnpack
	// OpWhere replays Query.Where.
	OpWhere
	// OpDistinct replays Query.Distinct.
	OpDistinct
	// OpExcept replays Query.Except.
	OpExcept
	// OpCast replays Query.Cast.
	OpCast
	// OpOfType replays Query.OfType.
	OpOfType
	// OpOfClass replays Query.OfClass.
	OpOfClass
	// OpConcat replays Query.Concat.
	OpConcat
	// OpAppend replays Query.Append.
	OpAppend
	// OpPrepend replays Query.Prepend.
	OpPrepend
	// OpSkip replays Query.Skip.
	OpSkip
	// OpSkipWhile replays Query.SkipWhile.
	OpSkipWhile
	// OpTake replays Query.Take.
	OpTake
	// OpTakeWhile replays Query.TakeWhile.
	OpTakeWhile
	// OpZip replays Query.Zip.
	OpZip
)

var opNames = [...]string{
	OpSelect:     "select",
	OpSelectMany: "select_many",
	OpUnpack:     "unpack",
	OpWhere:      "where",
	OpDistinct:   "distinct",
	OpExcept:     "except",
	OpCast:       "cast",
	OpOfType:     "of_type",
	OpOfClass:    "of_class",
	OpConcat:     "concat",
	OpAppend:     "append",
	OpPrepend:    "prepend",
	OpSkip:       "skip",
	OpSkipWhile:  "skip_while",
	OpTake:       "take",
	OpTakeWhile:  "take_while",
	OpZip:        "zip",
}

// String returns the snake_case operator name.
func (o Op) String() string {
	if int(o) >= 0 && int(o) < len(opNames) {
		return opNames[o]
	}
	return "unknown"
}

// Command is one recorded operator call. Only the fields its Op reads are
// set.
type Command struct {
	Op        Op
	Selector  Selector
	Spread    Spread
	Predicate Predicate
	Options   []CompareOption
	Kind      value.Kind
	Class     string
	Count     int
	Other     any
	Values    []any
	Zip       ZipSelector
}

// restartable reports whether the sequences c reads can be opened again.
func (c Command) restartable() bool {
	var inputs []any
	switch c.Op {
	case OpExcept, OpZip:
		inputs = []any{c.Other}
	case OpConcat:
		inputs = c.Values
	}
	for _, in := range inputs {
		if !pipeline.Describe(in).Restartable() {
			return false
		}
	}
	return true
}

// apply replays c onto q.
func apply(q *Query, c Command) *Query {
	switch c.Op {
	case OpSelect:
		return q.Select(c.Selector)
	case OpSelectMany:
		return q.SelectMany(c.Selector)
	case OpUnpack:
		return q.Unpack(c.Spread)
	case OpWhere:
		return q.Where(c.Predicate)
	case OpDistinct:
		return q.Distinct(c.Options...)
	case OpExcept:
		return q.Except(c.Other, c.Options...)
	case OpCast:
		return q.Cast(c.Kind)
	case OpOfType:
		return q.OfType(c.Kind)
	case OpOfClass:
		return q.OfClass(c.Class)
	case OpConcat:
		return q.Concat(c.Values...)
	case OpAppend:
		return q.Append(c.Values...)
	case OpPrepend:
		return q.Prepend(c.Values...)
	case OpSkip:
		return q.Skip(c.Count)
	case OpSkipWhile:
		return q.SkipWhile(c.Predicate)
	case OpTake:
		return q.Take(c.Count)
	case OpTakeWhile:
		return q.TakeWhile(c.Predicate)
	case OpZip:
		return q.Zip(c.Other, c.Zip)
	default:
		return q
	}
}
