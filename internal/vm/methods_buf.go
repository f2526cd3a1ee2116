package vm

import "github.com/pyro-lang/pyro/internal/object"

// registerBufMethods builds Buf's method table (§4.3): a growable byte
// array that can be converted to an interned Str by transferring its
// backing array (ToStr), the conversion spec.md calls buf_to_str.
func (vm *VM) registerBufMethods() {
	cls := vm.classes.buf

	nativeMethod(cls, "count", 1, func(_ object.NativeVM, args []object.Value) (object.Value, *object.Value) {
		return object.I64(int64(args[0].AsObj().(*object.Buf).Len())), nil
	})
	nativeMethod(cls, "is_empty", 1, func(_ object.NativeVM, args []object.Value) (object.Value, *object.Value) {
		return object.Bool(args[0].AsObj().(*object.Buf).Len() == 0), nil
	})
	nativeMethod(cls, "write_byte", 2, func(nv object.NativeVM, args []object.Value) (object.Value, *object.Value) {
		n, ok := requireIndex(args[1])
		if !ok || n < 0 || n > 255 {
			errv := nv.Panic("ValueError", "byte value must be in [0, 255]")
			return object.Value{}, &errv
		}
		args[0].AsObj().(*object.Buf).AppendByte(byte(n))
		return object.Null(), nil
	})
	nativeMethod(cls, "write_str", 2, func(nv object.NativeVM, args []object.Value) (object.Value, *object.Value) {
		s, ok := args[1].AsObj().(*object.Str)
		if !ok {
			errv := nv.Panic("TypeError", "write_str() argument must be a str")
			return object.Value{}, &errv
		}
		args[0].AsObj().(*object.Buf).Append(s.Bytes())
		return object.Null(), nil
	})
	// to_str transfers ownership of the buffer's bytes to a fresh interned
	// string and empties the buffer (§4.3 "Conversion... leaves the buffer
	// empty"); it must go through the allocator's intern pool like any
	// other string construction so §3 invariant 1 keeps holding.
	nativeMethod(cls, "to_str", 1, func(_ object.NativeVM, args []object.Value) (object.Value, *object.Value) {
		b := args[0].AsObj().(*object.Buf)
		raw := b.ToStr()
		interned := vm.Alloc.Intern(raw.Bytes())
		return object.FromObj(interned), nil
	})
}
