// Package object implements Pyro's value representation and heap object
// kinds: the tagged Value union (§3 of the design spec), every Obj kind it
// can point at, and the class-resolution / equality / ordering rules that
// the compiler and VM both lean on.
//
// Design Philosophy:
//
// Values are small, stack-friendly structs copied by value, the same way
// smog's VM pushed and popped bare interface{} values. Unlike smog, Pyro
// values carry an explicit type tag instead of relying on a Go type switch,
// because the VM needs to distinguish Null/Bool/I64/F64/Char without an
// allocation and needs two internal sentinels (Tombstone, Empty) that must
// never leak into user-visible code.
package object

import (
	"math"
)

// Kind tags a Value's active variant.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindI64
	KindF64
	KindChar
	KindObj
	KindTombstone
	KindEmpty
)

// Value is the 16-byte-class tagged union every Pyro expression evaluates
// to. Exactly one of the payload fields is meaningful, selected by Kind.
type Value struct {
	kind Kind
	bits uint64 // Bool / I64 / Char payload (reinterpreted per Kind)
	f64  float64
	obj  Obj
}

func Null() Value { return Value{kind: KindNull} }

func Bool(b bool) Value {
	var bits uint64
	if b {
		bits = 1
	}
	return Value{kind: KindBool, bits: bits}
}

func I64(v int64) Value { return Value{kind: KindI64, bits: uint64(v)} }

func F64(v float64) Value { return Value{kind: KindF64, f64: v} }

// Char holds a single Unicode scalar value (never a surrogate).
func Char(cp uint32) Value { return Value{kind: KindChar, bits: uint64(cp)} }

func FromObj(o Obj) Value { return Value{kind: KindObj, obj: o} }

// Tombstone and Empty are internal map sentinels; they are never returned
// to user code and panic if stringified through the normal path.
func Tombstone() Value { return Value{kind: KindTombstone} }
func Empty() Value     { return Value{kind: KindEmpty} }

func (v Value) Kind() Kind    { return v.kind }
func (v Value) IsNull() bool  { return v.kind == KindNull }
func (v Value) IsBool() bool  { return v.kind == KindBool }
func (v Value) IsI64() bool   { return v.kind == KindI64 }
func (v Value) IsF64() bool   { return v.kind == KindF64 }
func (v Value) IsChar() bool  { return v.kind == KindChar }
func (v Value) IsObj() bool   { return v.kind == KindObj }
func (v Value) IsTombstone() bool { return v.kind == KindTombstone }
func (v Value) IsEmpty() bool     { return v.kind == KindEmpty }

func (v Value) AsBool() bool    { return v.bits != 0 }
func (v Value) AsI64() int64    { return int64(v.bits) }
func (v Value) AsF64() float64  { return v.f64 }
func (v Value) AsChar() uint32  { return uint32(v.bits) }
func (v Value) AsObj() Obj      { return v.obj }

// IsObjOfKind reports whether v is a heap object of the given ObjKind.
func (v Value) IsObjOfKind(k ObjKind) bool {
	return v.kind == KindObj && v.obj != nil && v.obj.ObjKind() == k
}

// IsErrTuple reports whether v is the Err flavor of Tup, used as the
// signalling / iterator-exhausted sentinel (§3, glossary "Err").
func (v Value) IsErrTuple() bool {
	if t, ok := v.obj.(*Tup); v.kind == KindObj && ok {
		return t.IsErr
	}
	return false
}

// IsTruthy implements the falsy set described in §4.1: false, null, and any
// Err-flavored tuple are falsy; everything else (including zero, "", empty
// containers) is truthy.
func (v Value) IsTruthy() bool {
	switch v.kind {
	case KindNull:
		return false
	case KindBool:
		return v.AsBool()
	case KindObj:
		return !v.IsErrTuple()
	default:
		return true
	}
}

// ClassOf returns the class carrying methods for v, or nil for values with
// no associated class (the VM reports a NameError/TypeError when a method
// is invoked on one of those).
func ClassOf(v Value) *Class {
	if v.kind != KindObj || v.obj == nil {
		return nil
	}
	return v.obj.Class()
}

// GetMethod looks up name on v's class's method map.
func GetMethod(v Value, name string) (Value, bool) {
	class := ClassOf(v)
	if class == nil {
		return Value{}, false
	}
	return class.LookupMethod(name)
}

// HasMethod is a convenience predicate over GetMethod.
func HasMethod(v Value, name string) bool {
	_, ok := GetMethod(v, name)
	return ok
}

// NumericF64 converts an I64, F64, or Char value to float64 for mixed
// arithmetic promotion; ok is false for non-numeric values.
func (v Value) NumericF64() (float64, bool) {
	switch v.kind {
	case KindI64:
		return float64(v.AsI64()), true
	case KindF64:
		return v.AsF64(), true
	case KindChar:
		return float64(v.AsChar()), true
	default:
		return 0, false
	}
}

// sameNumericValue reports whether an F64 and an I64 denote the same
// mathematical value, preserving the "equal implies equal-hash" rule from
// §4.1 / §8 property 2.
func sameNumericValue(f float64, i int64) bool {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return false
	}
	return f == math.Trunc(f) && int64(f) == i
}
