package value

import (
	"github.com/spf13/cast"
)

// Cast coerces v to the given kind. ok is false when the coercion is not
// possible; callers drop such elements rather than failing.
//
// Only nil casts to KindNull, and only objects and callables cast to their own
// kinds. A non-list scalar casts to a one-element list.
func Cast(v any, kind Kind) (out any, ok bool) {
	var err error
	switch kind {
	case KindNull:
		return nil, KindOf(v) == KindNull
	case KindBool:
		out, err = cast.ToBoolE(v)
	case KindInt:
		out, err = cast.ToInt64E(v)
	case KindFloat:
		out, err = cast.ToFloat64E(v)
	case KindString:
		out, err = cast.ToStringE(v)
	case KindList:
		return castList(v)
	case KindMap:
		if KindOf(v) == KindMap {
			if m, err := cast.ToStringMapE(v); err == nil {
				return m, true
			}
			return v, true
		}
		return nil, false
	case KindObject, KindCallable:
		return v, KindOf(v) == kind
	default:
		return nil, false
	}
	if err != nil {
		return nil, false
	}
	return out, true
}

func castList(v any) (any, bool) {
	switch KindOf(v) {
	case KindList:
		members, _ := Members(v)
		return members, true
	case KindNull:
		return []any{}, true
	case KindMap, KindObject, KindCallable:
		if s, err := cast.ToSliceE(v); err == nil {
			return s, true
		}
		return nil, false
	default:
		return []any{v}, true
	}
}
