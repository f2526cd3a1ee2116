package vm

import (
	"strconv"
	"strings"

	"github.com/pyro-lang/pyro/internal/object"
	"github.com/pyro-lang/pyro/internal/utf8"
)

// registerStrMethods builds Str's method table (§4.4, §8 scenario 7). Str
// is immutable, so every method here returns a new value rather than
// mutating the receiver's bytes in place.
func (vm *VM) registerStrMethods() {
	cls := vm.classes.str

	nativeMethod(cls, "byte_count", 1, func(_ object.NativeVM, args []object.Value) (object.Value, *object.Value) {
		return object.I64(int64(args[0].AsObj().(*object.Str).Len())), nil
	})
	nativeMethod(cls, "char_count", 1, func(_ object.NativeVM, args []object.Value) (object.Value, *object.Value) {
		return object.I64(int64(utf8.CodepointCount(args[0].AsObj().(*object.Str).Bytes()))), nil
	})
	nativeMethod(cls, "grapheme_count", 1, func(_ object.NativeVM, args []object.Value) (object.Value, *object.Value) {
		return object.I64(int64(utf8.GraphemeCount(args[0].AsObj().(*object.Str).Bytes()))), nil
	})
	nativeMethod(cls, "is_empty", 1, func(_ object.NativeVM, args []object.Value) (object.Value, *object.Value) {
		return object.Bool(args[0].AsObj().(*object.Str).Len() == 0), nil
	})
	nativeMethod(cls, "is_ascii", 1, func(_ object.NativeVM, args []object.Value) (object.Value, *object.Value) {
		for _, b := range args[0].AsObj().(*object.Str).Bytes() {
			if b >= 0x80 {
				return object.Bool(false), nil
			}
		}
		return object.Bool(true), nil
	})
	nativeMethod(cls, "to_upper", 1, func(_ object.NativeVM, args []object.Value) (object.Value, *object.Value) {
		s := strings.ToUpper(args[0].AsObj().(*object.Str).String())
		return object.FromObj(vm.Alloc.Intern([]byte(s))), nil
	})
	nativeMethod(cls, "to_lower", 1, func(_ object.NativeVM, args []object.Value) (object.Value, *object.Value) {
		s := strings.ToLower(args[0].AsObj().(*object.Str).String())
		return object.FromObj(vm.Alloc.Intern([]byte(s))), nil
	})
	nativeMethod(cls, "strip", 1, func(_ object.NativeVM, args []object.Value) (object.Value, *object.Value) {
		s := strings.TrimSpace(args[0].AsObj().(*object.Str).String())
		return object.FromObj(vm.Alloc.Intern([]byte(s))), nil
	})
	nativeMethod(cls, "starts_with", 2, func(nv object.NativeVM, args []object.Value) (object.Value, *object.Value) {
		prefix, ok := args[1].AsObj().(*object.Str)
		if !ok {
			errv := nv.Panic("TypeError", "starts_with() argument must be a str")
			return object.Value{}, &errv
		}
		return object.Bool(strings.HasPrefix(args[0].AsObj().(*object.Str).String(), prefix.String())), nil
	})
	nativeMethod(cls, "ends_with", 2, func(nv object.NativeVM, args []object.Value) (object.Value, *object.Value) {
		suffix, ok := args[1].AsObj().(*object.Str)
		if !ok {
			errv := nv.Panic("TypeError", "ends_with() argument must be a str")
			return object.Value{}, &errv
		}
		return object.Bool(strings.HasSuffix(args[0].AsObj().(*object.Str).String(), suffix.String())), nil
	})
	nativeMethod(cls, "contains", 2, func(nv object.NativeVM, args []object.Value) (object.Value, *object.Value) {
		needle, ok := args[1].AsObj().(*object.Str)
		if !ok {
			errv := nv.Panic("TypeError", "contains() argument must be a str")
			return object.Value{}, &errv
		}
		return object.Bool(strings.Contains(args[0].AsObj().(*object.Str).String(), needle.String())), nil
	})
	nativeMethod(cls, "split", 2, func(nv object.NativeVM, args []object.Value) (object.Value, *object.Value) {
		sep, ok := args[1].AsObj().(*object.Str)
		if !ok {
			errv := nv.Panic("TypeError", "split() separator must be a str")
			return object.Value{}, &errv
		}
		parts := strings.Split(args[0].AsObj().(*object.Str).String(), sep.String())
		v := vm.Alloc.NewVec()
		v.SetClass(vm.classes.vec)
		for _, p := range parts {
			v.Append(object.FromObj(vm.Alloc.Intern([]byte(p))))
		}
		return object.FromObj(v), nil
	})
	nativeMethod(cls, "join", 2, func(nv object.NativeVM, args []object.Value) (object.Value, *object.Value) {
		vec, ok := args[1].AsObj().(*object.Vec)
		if !ok {
			errv := nv.Panic("TypeError", "join() argument must be a vec")
			return object.Value{}, &errv
		}
		sep := args[0].AsObj().(*object.Str).String()
		return object.FromObj(vm.Alloc.Intern([]byte(vm.joinAsString(vec.Slice(), sep)))), nil
	})
	nativeMethod(cls, "to_i64", 1, func(nv object.NativeVM, args []object.Value) (object.Value, *object.Value) {
		n, err := strconv.ParseInt(strings.TrimSpace(args[0].AsObj().(*object.Str).String()), 0, 64)
		if err != nil {
			errv := nv.Panic("ValueError", "cannot parse %q as an integer", args[0].AsObj().(*object.Str).String())
			return object.Value{}, &errv
		}
		return object.I64(n), nil
	})
	nativeMethod(cls, "to_f64", 1, func(nv object.NativeVM, args []object.Value) (object.Value, *object.Value) {
		f, err := strconv.ParseFloat(strings.TrimSpace(args[0].AsObj().(*object.Str).String()), 64)
		if err != nil {
			errv := nv.Panic("ValueError", "cannot parse %q as a float", args[0].AsObj().(*object.Str).String())
			return object.Value{}, &errv
		}
		return object.F64(f), nil
	})
	nativeMethod(cls, "$iter", 1, func(_ object.NativeVM, args []object.Value) (object.Value, *object.Value) {
		return object.FromObj(object.NewStringIter(object.IterOverStringChars, args[0].AsObj().(*object.Str))), nil
	})
	nativeMethod(cls, "bytes", 1, func(_ object.NativeVM, args []object.Value) (object.Value, *object.Value) {
		return object.FromObj(object.NewStringIter(object.IterOverStringBytes, args[0].AsObj().(*object.Str))), nil
	})
	nativeMethod(cls, "chars", 1, func(_ object.NativeVM, args []object.Value) (object.Value, *object.Value) {
		return object.FromObj(object.NewStringIter(object.IterOverStringChars, args[0].AsObj().(*object.Str))), nil
	})
	nativeMethod(cls, "graphemes", 1, func(_ object.NativeVM, args []object.Value) (object.Value, *object.Value) {
		return object.FromObj(object.NewStringIter(object.IterOverStringGraphemes, args[0].AsObj().(*object.Str))), nil
	})
	nativeMethod(cls, "lines", 1, func(_ object.NativeVM, args []object.Value) (object.Value, *object.Value) {
		return object.FromObj(object.NewStringIter(object.IterOverStringLines, args[0].AsObj().(*object.Str))), nil
	})
}
