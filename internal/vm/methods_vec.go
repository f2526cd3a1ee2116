package vm

import (
	"sort"

	"github.com/pyro-lang/pyro/internal/object"
)

// registerVecMethods builds Vec's method table (§4.3, §4.8). Every method
// takes the receiver as args[0] per the native calling convention invoke()
// establishes; arity counts the receiver, so a zero-argument Pyro method
// like count() is registered with arity 1.
func (vm *VM) registerVecMethods() {
	cls := vm.classes.vec

	nativeMethod(cls, "count", 1, func(_ object.NativeVM, args []object.Value) (object.Value, *object.Value) {
		return object.I64(int64(args[0].AsObj().(*object.Vec).Len())), nil
	})
	nativeMethod(cls, "is_empty", 1, func(_ object.NativeVM, args []object.Value) (object.Value, *object.Value) {
		return object.Bool(args[0].AsObj().(*object.Vec).Len() == 0), nil
	})
	nativeMethod(cls, "append", 2, func(nv object.NativeVM, args []object.Value) (object.Value, *object.Value) {
		args[0].AsObj().(*object.Vec).Append(args[1])
		return object.Null(), nil
	})
	nativeMethod(cls, "get", 2, func(_ object.NativeVM, args []object.Value) (object.Value, *object.Value) {
		v := args[0].AsObj().(*object.Vec)
		i, p := vm.normalizeIndex(args[1], v.Len())
		if p != nil {
			return object.Value{}, panicArg(p)
		}
		val, _ := v.Get(i)
		return val, nil
	})
	nativeMethod(cls, "set", 3, func(_ object.NativeVM, args []object.Value) (object.Value, *object.Value) {
		v := args[0].AsObj().(*object.Vec)
		i, p := vm.normalizeIndex(args[1], v.Len())
		if p != nil {
			return object.Value{}, panicArg(p)
		}
		v.Set(i, args[2])
		return object.Null(), nil
	})
	nativeMethod(cls, "remove_first", 1, func(nv object.NativeVM, args []object.Value) (object.Value, *object.Value) {
		v := args[0].AsObj().(*object.Vec)
		val, ok := v.RemoveFirst()
		if !ok {
			errv := nv.Panic("ValueError", "cannot remove from an empty vec")
			return object.Value{}, &errv
		}
		return val, nil
	})
	nativeMethod(cls, "remove_last", 1, func(nv object.NativeVM, args []object.Value) (object.Value, *object.Value) {
		v := args[0].AsObj().(*object.Vec)
		val, ok := v.PopLast()
		if !ok {
			errv := nv.Panic("ValueError", "cannot remove from an empty vec")
			return object.Value{}, &errv
		}
		return val, nil
	})
	nativeMethod(cls, "remove_at", 2, func(_ object.NativeVM, args []object.Value) (object.Value, *object.Value) {
		v := args[0].AsObj().(*object.Vec)
		i, p := vm.normalizeIndex(args[1], v.Len())
		if p != nil {
			return object.Value{}, panicArg(p)
		}
		val, _ := v.RemoveAt(i)
		return val, nil
	})
	nativeMethod(cls, "insert_at", 3, func(nv object.NativeVM, args []object.Value) (object.Value, *object.Value) {
		v := args[0].AsObj().(*object.Vec)
		if !args[1].IsI64() {
			errv := nv.Panic("ValueError", "index must be an integer")
			return object.Value{}, &errv
		}
		idx := int(args[1].AsI64())
		if idx < 0 {
			idx += v.Len()
		}
		if !v.InsertAt(idx, args[2]) {
			errv := nv.Panic("ValueError", "vec index out of bounds")
			return object.Value{}, &errv
		}
		return object.Null(), nil
	})
	nativeMethod(cls, "copy", 1, func(_ object.NativeVM, args []object.Value) (object.Value, *object.Value) {
		cp := args[0].AsObj().(*object.Vec).Copy()
		cp.SetClass(vm.classes.vec)
		return object.FromObj(cp), nil
	})
	nativeMethod(cls, "contains", 2, func(_ object.NativeVM, args []object.Value) (object.Value, *object.Value) {
		for _, e := range args[0].AsObj().(*object.Vec).Slice() {
			if vm.valuesEqual(e, args[1]) {
				return object.Bool(true), nil
			}
		}
		return object.Bool(false), nil
	})
	nativeMethod(cls, "$iter", 1, func(_ object.NativeVM, args []object.Value) (object.Value, *object.Value) {
		return object.FromObj(object.NewVecIter(args[0].AsObj().(*object.Vec))), nil
	})
	nativeMethod(cls, "map", 2, func(_ object.NativeVM, args []object.Value) (object.Value, *object.Value) {
		it := object.NewVecIter(args[0].AsObj().(*object.Vec))
		mapped := object.NewMapTransformIter(it, args[1])
		return object.FromObj(vm.drainToVec(mapped)), nil
	})
	nativeMethod(cls, "filter", 2, func(_ object.NativeVM, args []object.Value) (object.Value, *object.Value) {
		it := object.NewVecIter(args[0].AsObj().(*object.Vec))
		filtered := object.NewFilterIter(it, args[1])
		return object.FromObj(vm.drainToVec(filtered)), nil
	})
	nativeMethod(cls, "join", 2, func(nv object.NativeVM, args []object.Value) (object.Value, *object.Value) {
		sep, ok := args[1].AsObj().(*object.Str)
		if !ok {
			errv := nv.Panic("TypeError", "join() separator must be a str")
			return object.Value{}, &errv
		}
		return object.FromObj(vm.Alloc.Intern([]byte(vm.joinAsString(args[0].AsObj().(*object.Vec).Slice(), sep.String())))), nil
	})
	nativeMethod(cls, "sort", 1, func(_ object.NativeVM, args []object.Value) (object.Value, *object.Value) {
		v := args[0].AsObj().(*object.Vec)
		elems := append([]object.Value(nil), v.Slice()...)
		sort.SliceStable(elems, func(i, j int) bool {
			return object.Compare(elems[i], elems[j]) == object.Less
		})
		for i, e := range elems {
			v.Set(i, e)
		}
		return object.Null(), nil
	})
	nativeMethod(cls, "reverse", 1, func(_ object.NativeVM, args []object.Value) (object.Value, *object.Value) {
		v := args[0].AsObj().(*object.Vec)
		n := v.Len()
		for i := 0; i < n/2; i++ {
			a, _ := v.Get(i)
			b, _ := v.Get(n - 1 - i)
			v.Set(i, b)
			v.Set(n-1-i, a)
		}
		return object.Null(), nil
	})
}

// drainToVec exhausts it eagerly into a fresh Vec (§4.8 "to_vec... drive
// the iterator to exhaustion eagerly").
func (vm *VM) drainToVec(it *object.Iter) *object.Vec {
	out := vm.Alloc.NewVec()
	out.SetClass(vm.classes.vec)
	for {
		v, ok := it.Next(vm)
		if !ok {
			break
		}
		out.Append(v)
	}
	return out
}

func (vm *VM) joinAsString(elems []object.Value, sep string) string {
	var out []byte
	for i, e := range elems {
		if i > 0 {
			out = append(out, sep...)
		}
		out = append(out, vm.stringify(e)...)
	}
	return string(out)
}

// requireIndex validates that v is an integer, for call sites like
// write_byte/skip_first/skip_last whose argument is a plain count rather
// than an index into a receiver that vm.normalizeIndex can bounds-check.
func requireIndex(v object.Value) (int64, bool) {
	if !v.IsI64() {
		return 0, false
	}
	return v.AsI64(), true
}
