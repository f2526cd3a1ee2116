package vm

import "github.com/pyro-lang/pyro/internal/object"

// registerMapMethods builds Map's method table (§4.3). Iteration over
// keys()/values()/entries() yields an eager Vec rather than a lazy Iter
// here; `for k in m.keys()` still sees insertion order either way since
// the underlying Map.Entries walk is order-preserving (§8 scenario 4).
func (vm *VM) registerMapMethods() {
	cls := vm.classes.mapCls

	nativeMethod(cls, "count", 1, func(_ object.NativeVM, args []object.Value) (object.Value, *object.Value) {
		return object.I64(int64(args[0].AsObj().(*object.Map).Count())), nil
	})
	nativeMethod(cls, "is_empty", 1, func(_ object.NativeVM, args []object.Value) (object.Value, *object.Value) {
		return object.Bool(args[0].AsObj().(*object.Map).Count() == 0), nil
	})
	nativeMethod(cls, "get", 2, func(_ object.NativeVM, args []object.Value) (object.Value, *object.Value) {
		v, ok := args[0].AsObj().(*object.Map).Get(args[1])
		if !ok {
			return object.Null(), nil
		}
		return v, nil
	})
	nativeMethod(cls, "set", 3, func(_ object.NativeVM, args []object.Value) (object.Value, *object.Value) {
		args[0].AsObj().(*object.Map).Set(args[1], args[2])
		return object.Null(), nil
	})
	nativeMethod(cls, "contains", 2, func(_ object.NativeVM, args []object.Value) (object.Value, *object.Value) {
		return object.Bool(args[0].AsObj().(*object.Map).Contains(args[1])), nil
	})
	nativeMethod(cls, "remove", 2, func(_ object.NativeVM, args []object.Value) (object.Value, *object.Value) {
		return object.Bool(args[0].AsObj().(*object.Map).Remove(args[1])), nil
	})
	nativeMethod(cls, "keys", 1, func(_ object.NativeVM, args []object.Value) (object.Value, *object.Value) {
		return object.FromObj(vm.drainToVec(object.NewMapIter(object.IterOverMapKeys, args[0].AsObj().(*object.Map)))), nil
	})
	nativeMethod(cls, "values", 1, func(_ object.NativeVM, args []object.Value) (object.Value, *object.Value) {
		return object.FromObj(vm.drainToVec(object.NewMapIter(object.IterOverMapValues, args[0].AsObj().(*object.Map)))), nil
	})
	nativeMethod(cls, "entries", 1, func(_ object.NativeVM, args []object.Value) (object.Value, *object.Value) {
		return object.FromObj(vm.drainToVec(object.NewMapIter(object.IterOverMapEntries, args[0].AsObj().(*object.Map)))), nil
	})
	nativeMethod(cls, "$iter", 1, func(_ object.NativeVM, args []object.Value) (object.Value, *object.Value) {
		return object.FromObj(object.NewMapIter(object.IterOverMapEntries, args[0].AsObj().(*object.Map))), nil
	})
	nativeMethod(cls, "copy", 1, func(_ object.NativeVM, args []object.Value) (object.Value, *object.Value) {
		cp := args[0].AsObj().(*object.Map).Copy()
		cp.SetClass(vm.classes.mapCls)
		return object.FromObj(cp), nil
	})
}

// registerSetMethods builds the Set view's method table: the same backing
// object.Map with IsSet true, exposed under a set-shaped API (add/contains/
// remove, no values) per §3's "Set view" flavor.
func (vm *VM) registerSetMethods() {
	cls := vm.classes.setCls

	nativeMethod(cls, "count", 1, func(_ object.NativeVM, args []object.Value) (object.Value, *object.Value) {
		return object.I64(int64(args[0].AsObj().(*object.Map).Count())), nil
	})
	nativeMethod(cls, "is_empty", 1, func(_ object.NativeVM, args []object.Value) (object.Value, *object.Value) {
		return object.Bool(args[0].AsObj().(*object.Map).Count() == 0), nil
	})
	nativeMethod(cls, "add", 2, func(_ object.NativeVM, args []object.Value) (object.Value, *object.Value) {
		args[0].AsObj().(*object.Map).Set(args[1], object.Bool(true))
		return object.Null(), nil
	})
	nativeMethod(cls, "contains", 2, func(_ object.NativeVM, args []object.Value) (object.Value, *object.Value) {
		return object.Bool(args[0].AsObj().(*object.Map).Contains(args[1])), nil
	})
	nativeMethod(cls, "remove", 2, func(_ object.NativeVM, args []object.Value) (object.Value, *object.Value) {
		return object.Bool(args[0].AsObj().(*object.Map).Remove(args[1])), nil
	})
	nativeMethod(cls, "$iter", 1, func(_ object.NativeVM, args []object.Value) (object.Value, *object.Value) {
		return object.FromObj(object.NewMapIter(object.IterOverMapKeys, args[0].AsObj().(*object.Map))), nil
	})
	nativeMethod(cls, "to_vec", 1, func(_ object.NativeVM, args []object.Value) (object.Value, *object.Value) {
		return object.FromObj(vm.drainToVec(object.NewMapIter(object.IterOverMapKeys, args[0].AsObj().(*object.Map)))), nil
	})
}
