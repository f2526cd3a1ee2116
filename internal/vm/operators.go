package vm

import (
	"math"

	"github.com/pyro-lang/pyro/internal/bytecode"
	"github.com/pyro-lang/pyro/internal/object"
	"github.com/pyro-lang/pyro/internal/panicx"
)

// overloadName maps a binary opcode to the $op_binary_* method Pyro
// instances can define to override it (§4.1 "Instances consult an
// overridable $op_binary_equals_equals method... Ordering operators route
// through $op_binary_less etc. when present"). The two confirmed names
// anchor the rest of the family, named consistently with them.
var overloadName = map[bytecode.Opcode]string{
	bytecode.OpAdd:        "$op_binary_plus",
	bytecode.OpSub:        "$op_binary_minus",
	bytecode.OpMul:        "$op_binary_star",
	bytecode.OpDiv:        "$op_binary_slash",
	bytecode.OpFloorDiv:   "$op_binary_slash_slash",
	bytecode.OpMod:        "$op_binary_percent",
	bytecode.OpPow:        "$op_binary_star_star",
	bytecode.OpBitAnd:     "$op_binary_amp",
	bytecode.OpBitOr:      "$op_binary_pipe",
	bytecode.OpBitXor:     "$op_binary_caret",
	bytecode.OpShiftLeft:  "$op_binary_less_less",
	bytecode.OpShiftRight: "$op_binary_greater_greater",
	bytecode.OpEq:         "$op_binary_equals_equals",
	bytecode.OpLess:       "$op_binary_less",
	bytecode.OpLessEq:     "$op_binary_less_equals",
	bytecode.OpGreater:    "$op_binary_greater",
	bytecode.OpGreaterEq:  "$op_binary_greater_equals",
}

func (vm *VM) binaryOp(op bytecode.Opcode, a, b object.Value) (object.Value, *panicx.Panic) {
	if op == bytecode.OpAdd && isStr(a) && isStr(b) {
		return vm.concatStr(a, b), nil
	}
	if name, ok := overloadName[op]; ok && a.IsObj() {
		if cls := object.ClassOf(a); cls != nil {
			if method, ok := cls.LookupMethod(name); ok {
				return vm.callOverload(method, a, b)
			}
		}
	}
	if op == bytecode.OpNotEq {
		eq, p := vm.binaryOp(bytecode.OpEq, a, b)
		if p != nil {
			return object.Value{}, p
		}
		return object.Bool(!eq.IsTruthy()), nil
	}

	switch op {
	case bytecode.OpEq:
		return object.Bool(object.Eq(a, b)), nil
	case bytecode.OpLess, bytecode.OpLessEq, bytecode.OpGreater, bytecode.OpGreaterEq:
		ord := object.Compare(a, b)
		if ord == object.Unordered {
			return object.Value{}, vm.runtimeError(panicx.TypeError, "values are not comparable")
		}
		switch op {
		case bytecode.OpLess:
			return object.Bool(ord == object.Less), nil
		case bytecode.OpLessEq:
			return object.Bool(ord != object.Greater), nil
		case bytecode.OpGreater:
			return object.Bool(ord == object.Greater), nil
		default:
			return object.Bool(ord != object.Less), nil
		}
	}

	af, aok := a.NumericF64()
	bf, bok := b.NumericF64()
	if !aok || !bok {
		return object.Value{}, vm.runtimeError(panicx.TypeError, "operator requires numeric operands")
	}
	bothInt := a.IsI64() && b.IsI64()

	switch op {
	case bytecode.OpAdd:
		if bothInt {
			return object.I64(a.AsI64() + b.AsI64()), nil
		}
		return object.F64(af + bf), nil
	case bytecode.OpSub:
		if bothInt {
			return object.I64(a.AsI64() - b.AsI64()), nil
		}
		return object.F64(af - bf), nil
	case bytecode.OpMul:
		if bothInt {
			return object.I64(a.AsI64() * b.AsI64()), nil
		}
		return object.F64(af * bf), nil
	case bytecode.OpDiv:
		if bf == 0 {
			return object.Value{}, vm.runtimeError(panicx.ValueError, "division by zero")
		}
		return object.F64(af / bf), nil
	case bytecode.OpFloorDiv:
		if bothInt {
			if b.AsI64() == 0 {
				return object.Value{}, vm.runtimeError(panicx.ValueError, "division by zero")
			}
			q := a.AsI64() / b.AsI64()
			if (a.AsI64()%b.AsI64() != 0) && ((a.AsI64() < 0) != (b.AsI64() < 0)) {
				q--
			}
			return object.I64(q), nil
		}
		if bf == 0 {
			return object.Value{}, vm.runtimeError(panicx.ValueError, "division by zero")
		}
		return object.F64(floorDiv(af, bf)), nil
	case bytecode.OpMod:
		if bothInt {
			if b.AsI64() == 0 {
				return object.Value{}, vm.runtimeError(panicx.ValueError, "division by zero")
			}
			m := a.AsI64() % b.AsI64()
			if m != 0 && (m < 0) != (b.AsI64() < 0) {
				m += b.AsI64()
			}
			return object.I64(m), nil
		}
		return object.F64(mathMod(af, bf)), nil
	case bytecode.OpPow:
		return object.F64(mathPow(af, bf)), nil
	case bytecode.OpBitAnd:
		if !bothInt {
			return object.Value{}, vm.runtimeError(panicx.TypeError, "bitwise operator requires integer operands")
		}
		return object.I64(a.AsI64() & b.AsI64()), nil
	case bytecode.OpBitOr:
		if !bothInt {
			return object.Value{}, vm.runtimeError(panicx.TypeError, "bitwise operator requires integer operands")
		}
		return object.I64(a.AsI64() | b.AsI64()), nil
	case bytecode.OpBitXor:
		if !bothInt {
			return object.Value{}, vm.runtimeError(panicx.TypeError, "bitwise operator requires integer operands")
		}
		return object.I64(a.AsI64() ^ b.AsI64()), nil
	case bytecode.OpShiftLeft:
		if !bothInt {
			return object.Value{}, vm.runtimeError(panicx.TypeError, "bitwise operator requires integer operands")
		}
		if b.AsI64() < 0 {
			return object.Value{}, vm.runtimeError(panicx.ValueError, "negative shift count")
		}
		return object.I64(a.AsI64() << uint(b.AsI64())), nil
	case bytecode.OpShiftRight:
		if !bothInt {
			return object.Value{}, vm.runtimeError(panicx.TypeError, "bitwise operator requires integer operands")
		}
		if b.AsI64() < 0 {
			return object.Value{}, vm.runtimeError(panicx.ValueError, "negative shift count")
		}
		return object.I64(a.AsI64() >> uint(b.AsI64())), nil
	}
	return object.Value{}, vm.runtimeError(panicx.TypeError, "unsupported binary operator")
}

func floorDiv(a, b float64) float64 {
	return mathFloor(a / b)
}

func (vm *VM) unaryNeg(v object.Value) (object.Value, *panicx.Panic) {
	if cls := object.ClassOf(v); cls != nil {
		if method, ok := cls.LookupMethod("$op_unary_minus"); ok {
			return vm.callOverload(method, v, object.Value{})
		}
	}
	switch {
	case v.IsI64():
		return object.I64(-v.AsI64()), nil
	case v.IsF64():
		return object.F64(-v.AsF64()), nil
	default:
		return object.Value{}, vm.runtimeError(panicx.TypeError, "unary - requires a numeric operand")
	}
}

func (vm *VM) callOverload(method, a, b object.Value) (object.Value, *panicx.Panic) {
	if b == (object.Value{}) {
		return vm.CallValue(method, []object.Value{a})
	}
	return vm.CallValue(method, []object.Value{a, b})
}

func isStr(v object.Value) bool { return v.IsObjOfKind(object.ObjStr) }

func (vm *VM) concatStr(a, b object.Value) object.Value {
	as := a.AsObj().(*object.Str)
	bs := b.AsObj().(*object.Str)
	joined := append(append([]byte(nil), as.Bytes()...), bs.Bytes()...)
	return object.FromObj(vm.Alloc.Intern(joined))
}

func mathFloor(f float64) float64 { return math.Floor(f) }
func mathMod(a, b float64) float64 {
	m := math.Mod(a, b)
	if m != 0 && (m < 0) != (b < 0) {
		m += b
	}
	return m
}
func mathPow(a, b float64) float64 { return math.Pow(a, b) }
