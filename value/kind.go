package value

import (
	"maps"
	"reflect"
	"slices"
	"strings"
)

// Kind is the runtime type tag of a sequence element.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindList
	KindMap
	KindObject
	KindCallable
)

var kindNames = map[Kind]string{
	KindNull:     "null",
	KindBool:     "bool",
	KindInt:      "int",
	KindFloat:    "float",
	KindString:   "string",
	KindList:     "list",
	KindMap:      "map",
	KindObject:   "object",
	KindCallable: "callable",
}

var kindAliases = map[string]Kind{
	"null":     KindNull,
	"nil":      KindNull,
	"bool":     KindBool,
	"boolean":  KindBool,
	"int":      KindInt,
	"integer":  KindInt,
	"float":    KindFloat,
	"double":   KindFloat,
	"string":   KindString,
	"list":     KindList,
	"array":    KindList,
	"map":      KindMap,
	"object":   KindObject,
	"callable": KindCallable,
	"func":     KindCallable,
}

// KindNames returns every name ParseKind accepts, sorted.
func KindNames() []string {
	return slices.Sorted(maps.Keys(kindAliases))
}

// String returns the canonical kind name.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// ParseKind resolves a kind name or alias, case-insensitively.
func ParseKind(name string) (Kind, bool) {
	k, ok := kindAliases[strings.ToLower(strings.TrimSpace(name))]
	return k, ok
}

// IsNumeric reports whether the kind takes part in arithmetic.
func (k Kind) IsNumeric() bool { return k == KindInt || k == KindFloat }

// KindOf classifies v.
func KindOf(v any) Kind {
	if v == nil {
		return KindNull
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() { //nolint:exhaustive
	case reflect.Bool:
		return KindBool
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return KindInt
	case reflect.Float32, reflect.Float64:
		return KindFloat
	case reflect.String:
		return KindString
	case reflect.Slice, reflect.Array:
		return KindList
	case reflect.Map:
		return KindMap
	case reflect.Func:
		return KindCallable
	case reflect.Pointer:
		if rv.IsNil() {
			return KindNull
		}
		return KindObject
	default:
		return KindObject
	}
}

// ClassName returns the struct type name of v and its package-qualified form.
// Pointers are dereferenced. ok is false for anything that is not a struct.
func ClassName(v any) (name, qualified string, ok bool) {
	if v == nil {
		return "", "", false
	}
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct || t.Name() == "" {
		return "", "", false
	}
	return t.Name(), t.PkgPath() + "." + t.Name(), true
}

// IsClass reports whether v is an object whose class matches name. name may be
// the bare type name, the package-qualified name, or the short form printed by
// %T (for example "query.person").
func IsClass(v any, name string) bool {
	short, qualified, ok := ClassName(v)
	if !ok {
		return false
	}
	if name == short || name == qualified {
		return true
	}
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return name == t.String()
}

// Members returns the elements of a list value. ok is false for non-lists.
func Members(v any) ([]any, bool) {
	if v == nil {
		return nil, false
	}
	if list, ok := v.([]any); ok {
		return list, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}
