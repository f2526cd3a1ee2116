package vm

import (
	"github.com/pyro-lang/pyro/internal/object"
	"github.com/pyro-lang/pyro/internal/panicx"
)

// makeIterator implements OP_GET_ITERATOR (§4.7 family 9): it picks the
// default iteration strategy for each container kind — chars for strings,
// insertion order for maps/sets — and falls back to the generic-next
// protocol (a "$next" method) for user instances (§4.6).
func (vm *VM) makeIterator(v object.Value) (*object.Iter, *panicx.Panic) {
	switch o := v.AsObj().(type) {
	case *object.Vec:
		return object.NewVecIter(o), nil
	case *object.Tup:
		return object.NewTupIter(o), nil
	case *object.Queue:
		return object.NewQueueIter(o), nil
	case *object.Str:
		return object.NewStringIter(object.IterOverStringChars, o), nil
	case *object.Map:
		if o.IsSet {
			return object.NewMapIter(object.IterOverMapKeys, o), nil
		}
		return object.NewMapIter(object.IterOverMapEntries, o), nil
	case *object.Iter:
		return o, nil
	case *object.Instance:
		if next, ok := object.GetMethod(v, "$next"); ok {
			bound := object.FromObj(object.NewBoundMethod(v, next))
			return object.NewGenericNextIter(bound), nil
		}
		if _, ok := object.GetMethod(v, "$iter"); ok {
			result, p := vm.invokeNamed(v, "$iter", nil)
			if p != nil {
				return nil, p
			}
			return vm.makeIterator(result)
		}
	}
	return nil, vm.runtimeError(panicx.TypeError, "value is not iterable")
}

// unpackInto implements OP_UNPACK (§4.7 family 12): destructuring a Vec or
// Tup of exactly n elements onto the stack, used by `var (a, b) = pair;`.
func (vm *VM) unpackInto(src object.Value, n int) ([]object.Value, *panicx.Panic) {
	var elems []object.Value
	switch s := src.AsObj().(type) {
	case *object.Tup:
		elems = s.Elements
	case *object.Vec:
		elems = s.Slice()
	default:
		return nil, vm.runtimeError(panicx.TypeError, "value cannot be unpacked")
	}
	if len(elems) != n {
		return nil, vm.runtimeError(panicx.ValueError, "expected %d values to unpack but got %d", n, len(elems))
	}
	out := make([]object.Value, n)
	copy(out, elems)
	return out, nil
}
