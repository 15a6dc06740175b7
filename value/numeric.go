package value

import (
	"fmt"
	"math"
	"reflect"

	"github.com/kbukum/lazyseq/errors"
)

// ToFloat converts a numeric value to float64. ok is false for non-numbers.
func ToFloat(v any) (float64, bool) {
	switch KindOf(v) {
	case KindInt:
		rv := reflect.ValueOf(v)
		if rv.CanInt() {
			return float64(rv.Int()), true
		}
		return float64(rv.Uint()), true
	case KindFloat:
		return reflect.ValueOf(v).Float(), true
	default:
		return 0, false
	}
}

// ToInt converts an integer value to int64. ok is false for anything else,
// including unsigned values above math.MaxInt64.
func ToInt(v any) (int64, bool) {
	if KindOf(v) != KindInt {
		return 0, false
	}
	rv := reflect.ValueOf(v)
	if rv.CanInt() {
		return rv.Int(), true
	}
	u := rv.Uint()
	if u > math.MaxInt64 {
		return 0, false
	}
	return int64(u), true
}

// Add sums two numbers. Two integers produce an int64; any float operand
// produces a float64, as does an integer sum that does not fit in int64.
// nil counts as integer zero so Add can seed a fold.
func Add(a, b any) (any, error) {
	if a == nil {
		a = int64(0)
	}
	if b == nil {
		b = int64(0)
	}
	ai, aInt := ToInt(a)
	bi, bInt := ToInt(b)
	if aInt && bInt {
		if sum, ok := addInt(ai, bi); ok {
			return sum, nil
		}
	}
	af, aNum := ToFloat(a)
	bf, bNum := ToFloat(b)
	if !aNum {
		return nil, notNumeric(a)
	}
	if !bNum {
		return nil, notNumeric(b)
	}
	return af + bf, nil
}

// addInt adds a and b, reporting false when the result overflows int64.
func addInt(a, b int64) (int64, bool) {
	sum := a + b
	if (a > 0 && b > 0 && sum < 0) || (a < 0 && b < 0 && sum >= 0) {
		return 0, false
	}
	return sum, true
}

func notNumeric(v any) error {
	return errors.InvalidArgument("value", fmt.Sprintf("%v (%s) is not numeric", v, KindOf(v)))
}
