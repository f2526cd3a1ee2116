package object

import "math"

// Eq implements the built-in half of Pyro's `==` semantics (§4.1): same-
// variant primitives compare by value, numeric kinds cross-compare, tuples
// compare element-wise (Err-tuples equal plain tuples if their elements
// do), and every other heap kind without a user override falls back to
// reference identity. The VM is responsible for consulting an instance's
// overridable $op_binary_equals_equals before falling back to this
// function, since that requires invoking user code that this package
// cannot reach.
func Eq(a, b Value) bool {
	if a.kind == KindObj && b.kind == KindObj {
		return eqObj(a.obj, b.obj)
	}
	if isNumeric(a.kind) && isNumeric(b.kind) {
		return eqNumeric(a, b)
	}
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNull:
		return true
	case KindBool:
		return a.AsBool() == b.AsBool()
	default:
		return false
	}
}

func isNumeric(k Kind) bool { return k == KindI64 || k == KindF64 || k == KindChar }

func eqNumeric(a, b Value) bool {
	if a.kind == b.kind {
		switch a.kind {
		case KindI64:
			return a.AsI64() == b.AsI64()
		case KindF64:
			return a.AsF64() == b.AsF64()
		case KindChar:
			return a.AsChar() == b.AsChar()
		}
	}
	af, _ := a.NumericF64()
	bf, _ := b.NumericF64()
	return af == bf
}

func eqObj(a, b Obj) bool {
	if a == b {
		return true
	}
	sa, aIsStr := a.(*Str)
	sb, bIsStr := b.(*Str)
	if aIsStr && bIsStr {
		return sa.hash == sb.hash && string(sa.bytes) == string(sb.bytes)
	}
	ta, aIsTup := a.(*Tup)
	tb, bIsTup := b.(*Tup)
	if aIsTup && bIsTup {
		if len(ta.Elements) != len(tb.Elements) {
			return false
		}
		for i := range ta.Elements {
			if !Eq(ta.Elements[i], tb.Elements[i]) {
				return false
			}
		}
		return true
	}
	return identityEqual(a, b)
}

// Ordering is the result of a natural-order comparison.
type Ordering int

const (
	Less Ordering = iota - 1
	Equal
	Greater
	Unordered
)

// Compare implements the natural-ordering fallback used when a value's
// class has no $op_binary_less override (§4.1): numbers, chars, strings
// (lexicographic byte order), and tuples (element-wise, shorter-is-less on
// a common prefix).
func Compare(a, b Value) Ordering {
	if isNumeric(a.kind) && isNumeric(b.kind) {
		af, _ := a.NumericF64()
		bf, _ := b.NumericF64()
		if math.IsNaN(af) || math.IsNaN(bf) {
			return Unordered
		}
		switch {
		case af < bf:
			return Less
		case af > bf:
			return Greater
		default:
			return Equal
		}
	}
	if a.kind == KindObj && b.kind == KindObj {
		sa, aIsStr := a.obj.(*Str)
		sb, bIsStr := b.obj.(*Str)
		if aIsStr && bIsStr {
			switch {
			case string(sa.bytes) < string(sb.bytes):
				return Less
			case string(sa.bytes) > string(sb.bytes):
				return Greater
			default:
				return Equal
			}
		}
		ta, aIsTup := a.obj.(*Tup)
		tb, bIsTup := b.obj.(*Tup)
		if aIsTup && bIsTup {
			n := len(ta.Elements)
			if len(tb.Elements) < n {
				n = len(tb.Elements)
			}
			for i := 0; i < n; i++ {
				if o := Compare(ta.Elements[i], tb.Elements[i]); o != Equal {
					return o
				}
			}
			switch {
			case len(ta.Elements) < len(tb.Elements):
				return Less
			case len(ta.Elements) > len(tb.Elements):
				return Greater
			default:
				return Equal
			}
		}
	}
	return Unordered
}
