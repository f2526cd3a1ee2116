package object

import "reflect"

// identityHash and identityEqual give every heap object kind without a
// user-overridable equality operator reference-identity semantics: two
// values compare/hash equal only if they are the same Go pointer. This
// mirrors the reference implementation's default of comparing raw object
// pointers absent an overriding $op_binary_equals_equals method (§4.1).
func identityHash(o Obj) uint64 {
	rv := reflect.ValueOf(o)
	if rv.Kind() != reflect.Ptr {
		return 0
	}
	return uint64(rv.Pointer())
}

func identityEqual(a, b Obj) bool {
	ra, rb := reflect.ValueOf(a), reflect.ValueOf(b)
	if ra.Kind() != reflect.Ptr || rb.Kind() != reflect.Ptr {
		return a == b
	}
	return ra.Pointer() == rb.Pointer()
}
