package vm

import "github.com/pyro-lang/pyro/internal/object"

// registerQueueMethods builds Queue's method table (§4.3): a singly-linked
// FIFO with O(1) enqueue/dequeue.
func (vm *VM) registerQueueMethods() {
	cls := vm.classes.queue

	nativeMethod(cls, "count", 1, func(_ object.NativeVM, args []object.Value) (object.Value, *object.Value) {
		return object.I64(int64(args[0].AsObj().(*object.Queue).Len())), nil
	})
	nativeMethod(cls, "is_empty", 1, func(_ object.NativeVM, args []object.Value) (object.Value, *object.Value) {
		return object.Bool(args[0].AsObj().(*object.Queue).Len() == 0), nil
	})
	nativeMethod(cls, "enqueue", 2, func(_ object.NativeVM, args []object.Value) (object.Value, *object.Value) {
		args[0].AsObj().(*object.Queue).Enqueue(args[1])
		return object.Null(), nil
	})
	nativeMethod(cls, "dequeue", 1, func(nv object.NativeVM, args []object.Value) (object.Value, *object.Value) {
		v, ok := args[0].AsObj().(*object.Queue).Dequeue()
		if !ok {
			errv := nv.Panic("ValueError", "cannot dequeue from an empty queue")
			return object.Value{}, &errv
		}
		return v, nil
	})
	nativeMethod(cls, "peek", 1, func(nv object.NativeVM, args []object.Value) (object.Value, *object.Value) {
		v, ok := args[0].AsObj().(*object.Queue).Peek()
		if !ok {
			errv := nv.Panic("ValueError", "cannot peek an empty queue")
			return object.Value{}, &errv
		}
		return v, nil
	})
	nativeMethod(cls, "$iter", 1, func(_ object.NativeVM, args []object.Value) (object.Value, *object.Value) {
		return object.FromObj(object.NewQueueIter(args[0].AsObj().(*object.Queue))), nil
	})
}
