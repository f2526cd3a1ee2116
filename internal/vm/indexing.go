package vm

import (
	"github.com/pyro-lang/pyro/internal/object"
	"github.com/pyro-lang/pyro/internal/panicx"
	"github.com/pyro-lang/pyro/internal/utf8"
)

// getIndex implements OP_GET_INDEX (§4.3): integer indexing into Vec/Tup/
// Buf/Str (negative indices count from the end, matching the reference
// implementation's index normalization), and key lookup on Map/Set.
func (vm *VM) getIndex(recv, idx object.Value) (object.Value, *panicx.Panic) {
	switch r := recv.AsObj().(type) {
	case *object.Vec:
		i, p := vm.normalizeIndex(idx, r.Len())
		if p != nil {
			return object.Value{}, p
		}
		v, _ := r.Get(i)
		return v, nil
	case *object.Tup:
		i, p := vm.normalizeIndex(idx, r.Len())
		if p != nil {
			return object.Value{}, p
		}
		return r.Elements[i], nil
	case *object.Buf:
		i, p := vm.normalizeIndex(idx, r.Len())
		if p != nil {
			return object.Value{}, p
		}
		return object.I64(int64(r.Bytes()[i])), nil
	case *object.Str:
		cps := decodeCodepoints(r.Bytes())
		i, p := vm.normalizeIndex(idx, len(cps))
		if p != nil {
			return object.Value{}, p
		}
		return object.Char(cps[i]), nil
	case *object.Map:
		v, ok := r.Get(idx)
		if !ok {
			return object.Value{}, vm.runtimeError(panicx.ValueError, "key not found")
		}
		return v, nil
	}
	return object.Value{}, vm.runtimeError(panicx.TypeError, "value does not support indexing")
}

// setIndex implements OP_SET_INDEX; Tup and Str are immutable and reject
// index assignment with a TypeError.
func (vm *VM) setIndex(recv, idx, val object.Value) *panicx.Panic {
	switch r := recv.AsObj().(type) {
	case *object.Vec:
		i, p := vm.normalizeIndex(idx, r.Len())
		if p != nil {
			return p
		}
		r.Set(i, val)
		return nil
	case *object.Map:
		r.Set(idx, val)
		return nil
	case *object.Tup:
		return vm.runtimeError(panicx.TypeError, "a tup is immutable")
	case *object.Str:
		return vm.runtimeError(panicx.TypeError, "a str is immutable")
	}
	return vm.runtimeError(panicx.TypeError, "value does not support index assignment")
}

func decodeCodepoints(b []byte) []uint32 {
	var cps []uint32
	for i := 0; i < len(b); {
		cp, size := utf8.DecodeRune(b[i:])
		cps = append(cps, cp)
		i += size
	}
	return cps
}

func (vm *VM) normalizeIndex(idx object.Value, length int) (int, *panicx.Panic) {
	if !idx.IsI64() {
		return 0, vm.runtimeError(panicx.TypeError, "index must be an integer")
	}
	i := int(idx.AsI64())
	if i < 0 {
		i += length
	}
	if i < 0 || i >= length {
		return 0, vm.runtimeError(panicx.ValueError, "index %d is out of bounds", idx.AsI64())
	}
	return i, nil
}
