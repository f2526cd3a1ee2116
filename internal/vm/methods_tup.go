package vm

import "github.com/pyro-lang/pyro/internal/object"

// registerTupMethods builds Tup's method table. A Tup's Err flavor (§3,
// glossary "Err") answers the same "count"/"get" protocol as a plain tuple
// plus is_err/unwrap for code that consumes a try expression's result.
func (vm *VM) registerTupMethods() {
	cls := vm.classes.tup

	nativeMethod(cls, "count", 1, func(_ object.NativeVM, args []object.Value) (object.Value, *object.Value) {
		return object.I64(int64(args[0].AsObj().(*object.Tup).Len())), nil
	})
	nativeMethod(cls, "get", 2, func(_ object.NativeVM, args []object.Value) (object.Value, *object.Value) {
		t := args[0].AsObj().(*object.Tup)
		i, p := vm.normalizeIndex(args[1], t.Len())
		if p != nil {
			return object.Value{}, panicArg(p)
		}
		return t.Elements[i], nil
	})
	nativeMethod(cls, "is_err", 1, func(_ object.NativeVM, args []object.Value) (object.Value, *object.Value) {
		return object.Bool(args[0].AsObj().(*object.Tup).IsErr), nil
	})
	nativeMethod(cls, "$iter", 1, func(_ object.NativeVM, args []object.Value) (object.Value, *object.Value) {
		return object.FromObj(object.NewTupIter(args[0].AsObj().(*object.Tup))), nil
	})
	nativeMethod(cls, "to_vec", 1, func(_ object.NativeVM, args []object.Value) (object.Value, *object.Value) {
		v := vm.Alloc.NewVec()
		v.SetClass(vm.classes.vec)
		for _, e := range args[0].AsObj().(*object.Tup).Elements {
			v.Append(e)
		}
		return object.FromObj(v), nil
	})
}
