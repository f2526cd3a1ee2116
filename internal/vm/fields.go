package vm

import (
	"github.com/pyro-lang/pyro/internal/object"
	"github.com/pyro-lang/pyro/internal/panicx"
)

// getField implements OP_GET_FIELD (§4.7 family 2): an Instance's own
// fields take priority over its class's methods, matching the reference
// implementation's instance_get_member. Every other value kind exposes
// only methods, returned bound to their receiver.
func (vm *VM) getField(recv object.Value, name string) (object.Value, *panicx.Panic) {
	if inst, ok := recv.AsObj().(*object.Instance); ok {
		if idx, ok := inst.Class().FieldIndex[name]; ok {
			return inst.GetField(idx), nil
		}
	}
	cls := object.ClassOf(recv)
	if cls == nil {
		return object.Value{}, vm.runtimeError(panicx.TypeError, "value has no field or method %q", name)
	}
	method, ok := cls.LookupMethod(name)
	if !ok {
		return object.Value{}, vm.runtimeError(panicx.NameError, "%s has no field or method %q", cls.Name, name)
	}
	return object.FromObj(object.NewBoundMethod(recv, method)), nil
}

// setField implements OP_SET_FIELD; only Instance fields are assignable.
func (vm *VM) setField(recv object.Value, name string, val object.Value) *panicx.Panic {
	inst, ok := recv.AsObj().(*object.Instance)
	if !ok {
		return vm.runtimeError(panicx.TypeError, "cannot set field %q on a value of this type", name)
	}
	idx, ok := inst.Class().FieldIndex[name]
	if !ok {
		return vm.runtimeError(panicx.NameError, "%s has no field %q", inst.Class().Name, name)
	}
	inst.SetField(idx, val)
	return nil
}
