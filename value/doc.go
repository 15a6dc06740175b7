// Package value defines the closed set of value kinds a sequence element can
// have, and the comparison, arithmetic and coercion rules the query operators
// apply to them.
//
// Elements are plain Go values held in an any. KindOf classifies them:
//
//   - KindNull: untyped nil and nil pointers
//   - KindBool, KindInt (all signed and unsigned integers), KindFloat, KindString
//   - KindList: slices and arrays
//   - KindMap: maps
//   - KindObject: structs, pointers and everything else
//   - KindCallable: funcs
//
// Equal is value equality within a single kind: int(1) equals int64(1) but
// never float64(1). Identical is exact Go type plus == (or reference identity
// for slices, maps and funcs). There is no cross-kind coercion.
package value
