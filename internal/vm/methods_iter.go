package vm

import "github.com/pyro-lang/pyro/internal/object"

// registerIterMethods builds the lazy-adapter surface every built-in Iter
// supports (§4.8): map/filter/enumerate/skip_first/skip_last wrap the
// receiver in another Iter without pulling a value, and the eager
// terminals (to_vec/to_set/join/count) drive it to exhaustion.
func (vm *VM) registerIterMethods() {
	cls := vm.classes.iter

	nativeMethod(cls, "$iter", 1, func(_ object.NativeVM, args []object.Value) (object.Value, *object.Value) {
		return args[0], nil
	})
	nativeMethod(cls, "$next", 1, func(nv object.NativeVM, args []object.Value) (object.Value, *object.Value) {
		v, ok := args[0].AsObj().(*object.Iter).Next(nv)
		if !ok {
			return object.FromObj(vm.exhaustedSentinel()), nil
		}
		return v, nil
	})
	nativeMethod(cls, "map", 2, func(_ object.NativeVM, args []object.Value) (object.Value, *object.Value) {
		return object.FromObj(object.NewMapTransformIter(args[0].AsObj().(*object.Iter), args[1])), nil
	})
	nativeMethod(cls, "filter", 2, func(_ object.NativeVM, args []object.Value) (object.Value, *object.Value) {
		return object.FromObj(object.NewFilterIter(args[0].AsObj().(*object.Iter), args[1])), nil
	})
	nativeMethod(cls, "enumerate", 1, func(_ object.NativeVM, args []object.Value) (object.Value, *object.Value) {
		return object.FromObj(object.NewEnumerateIter(args[0].AsObj().(*object.Iter))), nil
	})
	nativeMethod(cls, "skip_first", 2, func(nv object.NativeVM, args []object.Value) (object.Value, *object.Value) {
		n, ok := requireIndex(args[1])
		if !ok || n < 0 {
			errv := nv.Panic("ValueError", "skip_first() count must be a non-negative integer")
			return object.Value{}, &errv
		}
		return object.FromObj(object.NewSkipFirstIter(args[0].AsObj().(*object.Iter), int(n))), nil
	})
	nativeMethod(cls, "skip_last", 2, func(nv object.NativeVM, args []object.Value) (object.Value, *object.Value) {
		n, ok := requireIndex(args[1])
		if !ok || n < 0 {
			errv := nv.Panic("ValueError", "skip_last() count must be a non-negative integer")
			return object.Value{}, &errv
		}
		return object.FromObj(object.NewSkipLastIter(args[0].AsObj().(*object.Iter), int(n))), nil
	})
	nativeMethod(cls, "to_vec", 1, func(_ object.NativeVM, args []object.Value) (object.Value, *object.Value) {
		return object.FromObj(vm.drainToVec(args[0].AsObj().(*object.Iter))), nil
	})
	nativeMethod(cls, "to_set", 1, func(_ object.NativeVM, args []object.Value) (object.Value, *object.Value) {
		s := vm.Alloc.NewSet()
		s.SetClass(vm.classes.setCls)
		it := args[0].AsObj().(*object.Iter)
		for {
			v, ok := it.Next(vm)
			if !ok {
				break
			}
			s.Set(v, object.Bool(true))
		}
		return object.FromObj(s), nil
	})
	nativeMethod(cls, "count", 1, func(_ object.NativeVM, args []object.Value) (object.Value, *object.Value) {
		it := args[0].AsObj().(*object.Iter)
		n := 0
		for {
			if _, ok := it.Next(vm); !ok {
				break
			}
			n++
		}
		return object.I64(int64(n)), nil
	})
	nativeMethod(cls, "join", 2, func(nv object.NativeVM, args []object.Value) (object.Value, *object.Value) {
		sep, ok := args[1].AsObj().(*object.Str)
		if !ok {
			errv := nv.Panic("TypeError", "join() separator must be a str")
			return object.Value{}, &errv
		}
		vec := vm.drainToVec(args[0].AsObj().(*object.Iter))
		return object.FromObj(vm.Alloc.Intern([]byte(vm.joinAsString(vec.Slice(), sep.String())))), nil
	})
}
