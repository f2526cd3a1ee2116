package vm

import "github.com/pyro-lang/pyro/internal/object"

// builtinClasses holds the singleton classes backing every built-in
// container kind, the same role kristofer/smog's bootstrap gave its
// handful of core classes: OP_BUILD_VEC/TUP/MAP/SET stamp these onto the
// container they just built so method dispatch (invoke/getField) and
// operator overload lookup both go through the ordinary Class.Methods path
// regardless of whether the receiver is user-defined or built-in (§4.3,
// §4.6).
type builtinClasses struct {
	vec    *object.Class
	tup    *object.Class
	mapCls *object.Class
	setCls *object.Class
	str    *object.Class
	buf    *object.Class
	queue  *object.Class
	iter   *object.Class
}

func (b *builtinClasses) walkRoots(mark func(object.Value)) {
	for _, c := range []*object.Class{b.vec, b.tup, b.mapCls, b.setCls, b.str, b.buf, b.queue, b.iter} {
		if c != nil {
			mark(object.FromObj(c))
		}
	}
}

// registerBuiltinClasses builds the method tables for every built-in kind.
// Methods take the receiver as args[0] (§ invoke's native-method calling
// convention) followed by the call's own arguments.
func (vm *VM) registerBuiltinClasses() {
	vm.classes.vec = object.NewClass("Vec")
	vm.classes.tup = object.NewClass("Tup")
	vm.classes.mapCls = object.NewClass("Map")
	vm.classes.setCls = object.NewClass("Set")
	vm.classes.str = object.NewClass("Str")
	vm.classes.buf = object.NewClass("Buf")
	vm.classes.queue = object.NewClass("Queue")
	vm.classes.iter = object.NewClass("Iter")

	vm.registerVecMethods()
	vm.registerTupMethods()
	vm.registerMapMethods()
	vm.registerSetMethods()
	vm.registerStrMethods()
	vm.registerBufMethods()
	vm.registerQueueMethods()
	vm.registerIterMethods()
}

// classifyHeapObjects stamps the built-in classes onto every already-heap-
// tracked Str/Buf/Queue the compiler created before the VM existed (string
// constants in a Fn's constant pool are interned directly against the
// allocator at compile time, with no VM around yet to assign a class).
// Run calls this once, after compilation but before execution, so method
// dispatch on a literal like "abc".byte_count() works the same as on a string
// built at runtime.
func (vm *VM) classifyHeapObjects() {
	for o := vm.Alloc.Objects(); o != nil; o = o.Next() {
		if o.Class() != nil {
			continue
		}
		switch o.(type) {
		case *object.Str:
			o.SetClass(vm.classes.str)
		case *object.Buf:
			o.SetClass(vm.classes.buf)
		case *object.Queue:
			o.SetClass(vm.classes.queue)
		case *object.Vec:
			o.SetClass(vm.classes.vec)
		case *object.Tup:
			o.SetClass(vm.classes.tup)
		case *object.Map:
			m := o.(*object.Map)
			if m.IsSet {
				o.SetClass(vm.classes.setCls)
			} else if !m.IsWeakRef {
				o.SetClass(vm.classes.mapCls)
			}
		}
	}
}

func nativeMethod(cls *object.Class, name string, arity int, fn object.NativeFnImpl) {
	cls.SetMethod(name, object.FromObj(object.NewNativeFn(name, arity, fn)))
}

// exhaustedSentinel builds the zero-length Err tuple an iterator returns
// once it has no more values (§4.8), heap-tracked and classed like any
// other runtime-built Tup so is_err()/unwrap() work on it like on any
// other try-produced Err value.
func (vm *VM) exhaustedSentinel() *object.Tup {
	t := vm.Alloc.NewTup(nil)
	t.IsErr = true
	t.SetClass(vm.classes.tup)
	return t
}
