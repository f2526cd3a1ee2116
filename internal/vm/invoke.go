package vm

import (
	"github.com/pyro-lang/pyro/internal/bytecode"
	"github.com/pyro-lang/pyro/internal/object"
	"github.com/pyro-lang/pyro/internal/panicx"
)

// invoke implements OP_INVOKE_METHOD (§4.7 family 6): it fuses the usual
// GET_FIELD+CALL pair into one dispatch so a method call never allocates a
// transient BoundMethod (§4.6 "INVOKE... avoids allocating a bound method
// for the common call-immediately case").
func (vm *VM) invoke(recv object.Value, name string, argc int) *panicx.Panic {
	if name == "$membership_test" {
		haystack := vm.peek(0)
		vm.stack = vm.stack[:len(vm.stack)-argc-1]
		result, p := vm.containsCheck(haystack, recv)
		if p != nil {
			return p
		}
		vm.push(result)
		return nil
	}

	cls := object.ClassOf(recv)
	if cls == nil {
		return vm.runtimeError(panicx.TypeError, "value has no method %q", name)
	}
	method, ok := cls.LookupMethod(name)
	if !ok {
		return vm.runtimeError(panicx.NameError, "%s has no method %q", cls.Name, name)
	}
	if nf, ok := method.AsObj().(*object.NativeFn); ok {
		if nf.Arity >= 0 && nf.Arity != argc+1 {
			return vm.runtimeError(panicx.ArgsError, "%s expected %d arguments but got %d", nf.Name, nf.Arity-1, argc)
		}
		args := make([]object.Value, argc+1)
		args[0] = recv
		copy(args[1:], vm.stack[len(vm.stack)-argc:])
		vm.stack = vm.stack[:len(vm.stack)-argc-1]
		result, pv := nf.Fn(vm, args)
		if pv != nil {
			return asPanic(pv)
		}
		vm.push(result)
		return nil
	}
	_, p := vm.callValue(method, argc, false)
	return p
}

// invokeNamed calls recv.name(args...) from Go code, used when a builtin
// needs to call back into a user method rather than through the bytecode
// dispatch loop (e.g. $membership_test forwarding to an instance's own
// "contains").
func (vm *VM) invokeNamed(recv object.Value, name string, args []object.Value) (object.Value, *panicx.Panic) {
	cls := object.ClassOf(recv)
	if cls == nil {
		return object.Value{}, vm.runtimeError(panicx.TypeError, "value has no method %q", name)
	}
	method, ok := cls.LookupMethod(name)
	if !ok {
		return object.Value{}, vm.runtimeError(panicx.NameError, "%s has no method %q", cls.Name, name)
	}
	if nf, ok := method.AsObj().(*object.NativeFn); ok {
		allArgs := append([]object.Value{recv}, args...)
		result, pv := nf.Fn(vm, allArgs)
		if pv != nil {
			return object.Value{}, asPanic(pv)
		}
		return result, nil
	}
	vm.push(recv)
	for _, a := range args {
		vm.push(a)
	}
	return vm.callValue(method, len(args), false)
}

// containsCheck implements the `in` operator (§ grammar note in
// internal/compiler/expressions.go's emitBinaryOp): built-in containers are
// inspected directly, anything else with a "contains" method has it called.
func (vm *VM) containsCheck(haystack, needle object.Value) (object.Value, *panicx.Panic) {
	switch h := haystack.AsObj().(type) {
	case *object.Vec:
		for _, e := range h.Slice() {
			if vm.valuesEqual(e, needle) {
				return object.Bool(true), nil
			}
		}
		return object.Bool(false), nil
	case *object.Tup:
		for _, e := range h.Elements {
			if vm.valuesEqual(e, needle) {
				return object.Bool(true), nil
			}
		}
		return object.Bool(false), nil
	case *object.Map:
		return object.Bool(h.Contains(needle)), nil
	case *object.Str:
		if ns, ok := needle.AsObj().(*object.Str); ok {
			return object.Bool(containsBytes(h.Bytes(), ns.Bytes())), nil
		}
		return object.Value{}, vm.runtimeError(panicx.TypeError, "a str can only contain another str")
	}
	if object.HasMethod(haystack, "contains") {
		return vm.invokeNamed(haystack, "contains", []object.Value{needle})
	}
	return object.Value{}, vm.runtimeError(panicx.TypeError, "value does not support 'in'")
}

// valuesEqual consults an operator overload before falling back to
// identity/structural equality, the same rule binaryOp applies to ==.
func (vm *VM) valuesEqual(a, b object.Value) bool {
	eq, p := vm.binaryOp(bytecode.OpEq, a, b)
	if p != nil {
		return object.Eq(a, b)
	}
	return eq.IsTruthy()
}

func containsBytes(haystack, needle []byte) bool {
	if len(needle) == 0 {
		return true
	}
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if string(haystack[i:i+len(needle)]) == string(needle) {
			return true
		}
	}
	return false
}
