// Package vm implements Pyro's stack-based bytecode interpreter (§4.8): a
// CallFrame dispatch loop over internal/bytecode opcodes, running against
// internal/object values and internal/heap's allocator/collector. It keeps
// kristofer/smog's pkg/vm shape — one VM struct holding a value stack and a
// frame stack, a big dispatch switch in Run — but replaces smog's
// `stack []interface{}` message-send interpreter with Pyro's typed
// object.Value stack and opcode family described in §4.7/§4.8.
package vm

import (
	"fmt"

	"github.com/pyro-lang/pyro/internal/bytecode"
	"github.com/pyro-lang/pyro/internal/heap"
	"github.com/pyro-lang/pyro/internal/object"
	"github.com/pyro-lang/pyro/internal/panicx"
)

const (
	maxFrames  = 256
	stackLimit = 256 * maxFrames
)

// CallFrame is one activation record: the running closure, its bytecode
// cursor, and the base stack slot its locals/params start at (§4.8).
type CallFrame struct {
	closure  *object.Closure
	ip       int
	base     int
	tryDepth int // stack depth of the most recently pushed try handler, for this frame's unwind
}

// tryHandler marks a recovery landing pad installed by OP_TRY (§4.7 family
// 10): on a catchable panic, the VM unwinds frames/stack back to here and
// pushes the resulting Err tuple instead of propagating further.
type tryHandler struct {
	frameIndex int
	stackDepth int
	target     int // bytecode offset to resume at, within frames[frameIndex]
}

// Importer resolves and loads a module by dotted path segments, called by
// OP_IMPORT_MODULE/OP_IMPORT_MEMBERS (§4.9). internal/loader implements
// this; VM only depends on the interface to avoid an import cycle.
type Importer interface {
	Load(vm *VM, segments []string) (*object.Module, *panicx.Panic)
}

// VM is Pyro's bytecode interpreter. One VM runs one program: a module
// table, a global namespace per module, and the shared heap/collector
// every running closure allocates against (§4.8).
type VM struct {
	Alloc     *heap.Allocator
	Collector *heap.Collector
	Importer  Importer

	// stack is allocated with capacity == StackLimit up front (New,
	// SetStackLimit) and never regrown past that, so push's append never
	// reallocates the backing array out from under an open Upvalue's Stack
	// alias (§9 "Closure over the call stack", §3 invariant 4).
	stack  []object.Value
	frames []CallFrame
	tries  []tryHandler

	openUpvalues []*object.Upvalue

	globals map[string]object.Value
	module  *object.Module

	classes builtinClasses

	Stdout func(string)

	// StackLimit caps the value stack's length (§4.8); the CLI's
	// -s/--stack-size flag overrides the default of stackLimit.
	StackLimit int

	// ExitRequested/ExitCode record a $exit() call (§6, §7): $exit halts
	// execution with a hard, uncatchable panic so it unwinds past any
	// enclosing try, and the driver checks these fields rather than
	// treating the unwind as a reportable error.
	ExitRequested bool
	ExitCode      int
}

// New constructs a VM ready to run compiled chunks against a fresh global
// namespace. stdout defaults to fmt.Print when nil (§4.8 "echo writes to
// stdout").
func New(alloc *heap.Allocator, importer Importer) *VM {
	vm := &VM{
		Alloc:      alloc,
		Collector:  heap.NewCollector(alloc),
		Importer:   importer,
		globals:    make(map[string]object.Value),
		module:     object.NewModule("main"),
		StackLimit: stackLimit,
	}
	vm.stack = make([]object.Value, 0, vm.StackLimit)
	vm.Stdout = func(s string) { fmt.Print(s) }
	vm.registerBuiltinClasses()
	vm.registerGlobalNatives()
	return vm
}

// SetStackLimit overrides the default stack capacity (the CLI's
// -s/--stack-size flag). It must be called before any value is pushed:
// it reallocates the backing array outright rather than growing it, which
// is safe only while the stack is still empty — growing it in place via
// append would reallocate the backing array out from under any already-open
// Upvalue, which keeps its own alias into the old array (§9 "Closure over
// the call stack": the stack must have stable addresses once anything has
// taken a pointer into it).
func (vm *VM) SetStackLimit(n int) {
	vm.StackLimit = n
	vm.stack = make([]object.Value, 0, n)
}

// WalkRoots implements heap.Roots: the value stack, every call frame's
// closure, open upvalues, globals, and the running module (§4.2 "GC
// roots").
func (vm *VM) WalkRoots(mark func(object.Value)) {
	for _, v := range vm.stack {
		mark(v)
	}
	for _, f := range vm.frames {
		mark(object.FromObj(f.closure))
	}
	for _, uv := range vm.openUpvalues {
		mark(object.FromObj(uv))
	}
	for _, v := range vm.globals {
		mark(v)
	}
	mark(object.FromObj(vm.module))
	vm.classes.walkRoots(mark)
}

func (vm *VM) push(v object.Value) {
	if len(vm.stack) >= vm.StackLimit {
		panic(vm.hardPanic(panicx.OutOfMemory, "stack overflow"))
	}
	vm.stack = append(vm.stack, v)
}

func (vm *VM) pop() object.Value {
	n := len(vm.stack) - 1
	v := vm.stack[n]
	vm.stack = vm.stack[:n]
	return v
}

func (vm *VM) peek(distFromTop int) object.Value {
	return vm.stack[len(vm.stack)-1-distFromTop]
}

func (vm *VM) currentFrame() *CallFrame { return &vm.frames[len(vm.frames)-1] }

// Run loads fn as the top-level script closure of a fresh module and
// executes it to completion (§4.7 "The top-level program is compiled into
// a zero-arg function").
func (vm *VM) Run(fn *object.Fn, moduleID string) (result object.Value, p *panicx.Panic) {
	vm.classifyHeapObjects()
	closure := vm.Alloc.NewClosure(fn, nil, moduleID)
	vm.push(object.FromObj(closure))
	return vm.callValue(object.FromObj(closure), 0, true)
}

// callValue dispatches a call to a Closure, NativeFn, Class (instance
// construction), or BoundMethod; topLevel is true only for the initial
// Run entry, where the caller wants the interpreter loop to drain to
// completion rather than return after one CALL.
func (vm *VM) callValue(callee object.Value, argc int, topLevel bool) (object.Value, *panicx.Panic) {
	if !callee.IsObj() {
		return object.Value{}, vm.runtimeError(panicx.TypeError, "value is not callable")
	}
	switch callee := callee.AsObj().(type) {
	case *object.Closure:
		if callee.Fn.Arity != argc {
			return object.Value{}, vm.runtimeError(panicx.ArgsError, "%s expected %d arguments but got %d", callee.Fn.Name, callee.Fn.Arity, argc)
		}
		if len(vm.frames) >= maxFrames {
			return object.Value{}, vm.hardPanic(panicx.OutOfMemory, "call stack overflow")
		}
		base := len(vm.stack) - argc - 1
		vm.frames = append(vm.frames, CallFrame{closure: callee, base: base})
		return vm.runLoop()

	case *object.NativeFn:
		if callee.Arity >= 0 && callee.Arity != argc {
			return object.Value{}, vm.runtimeError(panicx.ArgsError, "%s expected %d arguments but got %d", callee.Name, callee.Arity, argc)
		}
		args := make([]object.Value, argc)
		copy(args, vm.stack[len(vm.stack)-argc:])
		vm.stack = vm.stack[:len(vm.stack)-argc-1]
		result, pv := callee.Fn(vm, args)
		if pv != nil {
			return object.Value{}, asPanic(pv)
		}
		vm.push(result)
		return result, nil

	case *object.Class:
		inst := vm.Alloc.NewInstance(callee)
		copy(inst.Fields, callee.FieldInit)
		instVal := object.FromObj(inst)
		// Replace the class reference the call convention left at this
		// frame's base slot with the new instance, exactly where a method
		// call expects its receiver to sit in local slot 0 (§4.6).
		vm.stack[len(vm.stack)-argc-1] = instVal
		if !callee.Initializer.IsNull() {
			if _, p := vm.callValue(callee.Initializer, argc, false); p != nil {
				return object.Value{}, p
			}
			vm.pop() // discard $init's own return value (Null, by convention)
			vm.push(instVal)
			return instVal, nil
		}
		if argc != 0 {
			return object.Value{}, vm.runtimeError(panicx.ArgsError, "%s has no initializer but was called with %d arguments", callee.Name, argc)
		}
		return instVal, nil

	case *object.BoundMethod:
		vm.stack[len(vm.stack)-argc-1] = callee.Receiver
		return vm.callValue(callee.Method, argc, topLevel)

	default:
		return object.Value{}, vm.runtimeError(panicx.TypeError, "value of type %s is not callable", callee.ObjKind())
	}
}

// CallValue invokes callee with args and reports failure as a
// *panicx.Panic, the convenience form used internally (operator overload
// dispatch, OpInvokeMethod on a user class, iterator step functions).
func (vm *VM) CallValue(callee object.Value, args []object.Value) (object.Value, *panicx.Panic) {
	vm.push(callee)
	for _, a := range args {
		vm.push(a)
	}
	return vm.callValue(callee, len(args), false)
}

// Call implements object.NativeVM: the same call as CallValue, but with
// failure reported through the (Value, *Value) shape native function
// bodies (internal/object has no panicx import) use to propagate errors.
func (vm *VM) Call(callee object.Value, args []object.Value) (object.Value, *object.Value) {
	result, p := vm.CallValue(callee, args)
	if p != nil {
		v := wrapPanic(p)
		return object.Value{}, &v
	}
	return result, nil
}

// Panic implements object.NativeVM for native-function bodies.
func (vm *VM) Panic(kind string, format string, args ...interface{}) object.Value {
	k := panicx.Error
	for i := panicx.Error; i <= panicx.SyntaxError; i++ {
		if i.String() == kind {
			k = i
			break
		}
	}
	p := panicx.New(k, format, args...)
	return wrapPanic(p)
}

// panicWrap smuggles a *panicx.Panic through object.NativeVM's
// (Value, *Value) signature, which object deliberately keeps free of a
// panicx import (§ package layering). asPanic/wrapPanic are the only two
// functions that touch its internals.
type panicWrap struct {
	object.Header
	p *panicx.Panic
}

func (w *panicWrap) ObjKind() object.ObjKind { return object.ObjResourcePointer }

func wrapPanic(p *panicx.Panic) object.Value {
	return object.FromObj(&panicWrap{p: p})
}

// panicArg adapts a *panicx.Panic into the *object.Value error-arm shape
// nativeMethod bodies return; a nil p yields a nil error arm.
func panicArg(p *panicx.Panic) *object.Value {
	if p == nil {
		return nil
	}
	v := wrapPanic(p)
	return &v
}

func asPanic(v *object.Value) *panicx.Panic {
	if v == nil {
		return nil
	}
	if w, ok := v.AsObj().(*panicWrap); ok {
		return w.p
	}
	return panicx.New(panicx.Error, "native call failed")
}

func (vm *VM) runtimeError(kind panicx.Kind, format string, args ...interface{}) *panicx.Panic {
	p := panicx.New(kind, format, args...)
	for i := len(vm.frames) - 1; i >= 0; i-- {
		f := vm.frames[i]
		p.PushFrame(panicx.Frame{
			FnName:   f.closure.Fn.Name,
			SourceID: f.closure.Fn.SourceID,
			Line:     f.closure.Fn.LineForOffset(f.ip),
		})
	}
	return p
}

func (vm *VM) hardPanic(kind panicx.Kind, format string, args ...interface{}) *panicx.Panic {
	p := panicx.NewHard(kind, format, args...)
	return p
}
