package value

import (
	"cmp"
	"fmt"
	"reflect"
	"strings"
)

// Comparer reports whether two elements are equal.
type Comparer func(a, b any) bool

// rank orders kinds for Compare. Int and Float share a rank so that numbers
// order by magnitude regardless of representation.
var rank = map[Kind]int{
	KindNull:     0,
	KindBool:     1,
	KindInt:      2,
	KindFloat:    2,
	KindString:   3,
	KindList:     4,
	KindMap:      5,
	KindObject:   6,
	KindCallable: 7,
}

// Equal is value equality: both sides must have the same Kind and the same
// value. Lists compare element-wise with Equal, maps and objects deeply.
func Equal(a, b any) bool {
	ka, kb := KindOf(a), KindOf(b)
	if ka != kb {
		return false
	}
	switch ka {
	case KindNull:
		return true
	case KindBool:
		return reflect.ValueOf(a).Bool() == reflect.ValueOf(b).Bool()
	case KindInt:
		return compareInts(reflect.ValueOf(a), reflect.ValueOf(b)) == 0
	case KindFloat:
		return reflect.ValueOf(a).Float() == reflect.ValueOf(b).Float()
	case KindString:
		return reflect.ValueOf(a).String() == reflect.ValueOf(b).String()
	case KindList:
		ra, rb := reflect.ValueOf(a), reflect.ValueOf(b)
		if ra.Len() != rb.Len() {
			return false
		}
		for i := 0; i < ra.Len(); i++ {
			if !Equal(ra.Index(i).Interface(), rb.Index(i).Interface()) {
				return false
			}
		}
		return true
	case KindMap, KindObject:
		return Identical(a, b) || reflect.DeepEqual(a, b)
	default:
		return Identical(a, b)
	}
}

// Identical is strict equality: the same dynamic Go type and ==. Slices, maps,
// funcs and pointers are identical only when they share the same reference.
func Identical(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	ra, rb := reflect.ValueOf(a), reflect.ValueOf(b)
	switch ra.Kind() { //nolint:exhaustive
	case reflect.Slice:
		return ra.Len() == rb.Len() && ra.Pointer() == rb.Pointer()
	case reflect.Map, reflect.Func, reflect.Chan, reflect.Pointer, reflect.UnsafePointer:
		return ra.Pointer() == rb.Pointer()
	}
	if !ta.Comparable() {
		return false
	}
	return safeEqual(a, b)
}

// safeEqual guards == against structs whose interface fields hold
// non-comparable values.
func safeEqual(a, b any) (eq bool) {
	defer func() {
		if recover() != nil {
			eq = false
		}
	}()
	return a == b
}

// Compare is a total ordering across all kinds. Values of different kinds
// order by kind (null < bool < number < string < list < map < object <
// callable); numbers compare by magnitude across int and float.
func Compare(a, b any) int {
	ka, kb := KindOf(a), KindOf(b)
	if r := cmp.Compare(rank[ka], rank[kb]); r != 0 {
		return r
	}
	switch ka {
	case KindNull:
		return 0
	case KindBool:
		return compareBools(reflect.ValueOf(a).Bool(), reflect.ValueOf(b).Bool())
	case KindInt, KindFloat:
		if ka == KindInt && kb == KindInt {
			return compareInts(reflect.ValueOf(a), reflect.ValueOf(b))
		}
		fa, _ := ToFloat(a)
		fb, _ := ToFloat(b)
		return cmp.Compare(fa, fb)
	case KindString:
		return strings.Compare(reflect.ValueOf(a).String(), reflect.ValueOf(b).String())
	case KindList:
		ra, rb := reflect.ValueOf(a), reflect.ValueOf(b)
		n := min(ra.Len(), rb.Len())
		for i := 0; i < n; i++ {
			if r := Compare(ra.Index(i).Interface(), rb.Index(i).Interface()); r != 0 {
				return r
			}
		}
		return cmp.Compare(ra.Len(), rb.Len())
	case KindMap:
		if r := cmp.Compare(reflect.ValueOf(a).Len(), reflect.ValueOf(b).Len()); r != 0 {
			return r
		}
		return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
	default:
		if Identical(a, b) {
			return 0
		}
		return strings.Compare(fmt.Sprintf("%#v", a), fmt.Sprintf("%#v", b))
	}
}

func compareBools(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}

// compareInts compares two integer reflect values of any width or signedness.
func compareInts(a, b reflect.Value) int {
	aNeg, bNeg := isNegative(a), isNegative(b)
	switch {
	case aNeg && !bNeg:
		return -1
	case !aNeg && bNeg:
		return 1
	case aNeg && bNeg:
		return cmp.Compare(a.Int(), b.Int())
	default:
		return cmp.Compare(magnitude(a), magnitude(b))
	}
}

func isNegative(v reflect.Value) bool {
	return v.CanInt() && v.Int() < 0
}

func magnitude(v reflect.Value) uint64 {
	if v.CanInt() {
		return uint64(v.Int())
	}
	return v.Uint()
}

// Key returns a map key consistent with Equal for scalar kinds. ok is false
// for lists, maps, objects and callables, which must be compared by scanning.
func Key(v any) (key any, ok bool) {
	k := KindOf(v)
	switch k {
	case KindNull:
		return scalarKey{kind: k}, true
	case KindBool:
		return scalarKey{kind: k, v: reflect.ValueOf(v).Bool()}, true
	case KindInt:
		rv := reflect.ValueOf(v)
		if isNegative(rv) {
			return scalarKey{kind: k, v: rv.Int()}, true
		}
		return scalarKey{kind: k, v: magnitude(rv)}, true
	case KindFloat:
		return scalarKey{kind: k, v: reflect.ValueOf(v).Float()}, true
	case KindString:
		return scalarKey{kind: k, v: reflect.ValueOf(v).String()}, true
	default:
		return nil, false
	}
}

type scalarKey struct {
	kind Kind
	v    any
}

// Truthy reports whether v counts as true when no predicate is given: nil,
// false, zero numbers, empty strings and empty lists or maps are false.
func Truthy(v any) bool {
	switch KindOf(v) {
	case KindNull:
		return false
	case KindBool:
		return reflect.ValueOf(v).Bool()
	case KindInt, KindFloat:
		f, _ := ToFloat(v)
		return f != 0
	case KindString, KindList, KindMap:
		return reflect.ValueOf(v).Len() > 0
	default:
		return true
	}
}
