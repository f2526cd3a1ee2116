package object

// LineEntry run-length encodes one bytecode-offset range's source line, so
// the line-number table stays compact even for long functions (§4.5/§4.7).
type LineEntry struct {
	Offset int
	Line   int
}

// Fn is a compiled function: its bytecode, constant pool, and enough
// metadata for the VM to build a CallFrame and for panics to report a
// source location (§4.3, §4.5).
type Fn struct {
	Header
	Name        string
	Arity       int
	HasVariadic bool
	UpvalueCount int
	Code        []byte
	Constants   []Value
	Lines       []LineEntry
	SourceID    string
}

func NewFn(name string) *Fn {
	return &Fn{Name: name}
}

func (f *Fn) ObjKind() ObjKind { return ObjFn }

// LineForOffset resolves a bytecode offset to a source line by scanning the
// run-length table, mirroring the compressed format the compiler emits.
func (f *Fn) LineForOffset(offset int) int {
	line := 0
	for _, e := range f.Lines {
		if e.Offset > offset {
			break
		}
		line = e.Line
	}
	return line
}

// UpvalueRef describes one upvalue a closure captures, as produced by the
// compiler's CompilerFrame resolution: either a local slot in the
// immediately enclosing frame or an upvalue already captured by it
// (§4.5 "resolve_upvalue").
type UpvalueRef struct {
	IsLocal bool
	Index   int
}

// Upvalue is a single captured variable. While Open it aliases a live stack
// slot (Stack/StackIndex); Close copies the value in and severs the link,
// which the VM does when a frame whose locals are captured returns
// (§4.2/§4.5).
type Upvalue struct {
	Header
	Stack      []Value
	StackIndex int
	closed     Value
	isClosed   bool
}

func NewOpenUpvalue(stack []Value, index int) *Upvalue {
	return &Upvalue{Stack: stack, StackIndex: index}
}

func (u *Upvalue) ObjKind() ObjKind { return ObjUpvalue }

func (u *Upvalue) Get() Value {
	if u.isClosed {
		return u.closed
	}
	return u.Stack[u.StackIndex]
}

func (u *Upvalue) Set(v Value) {
	if u.isClosed {
		u.closed = v
		return
	}
	u.Stack[u.StackIndex] = v
}

func (u *Upvalue) IsOpen() bool { return !u.isClosed }

func (u *Upvalue) Close() {
	if u.isClosed {
		return
	}
	u.closed = u.Stack[u.StackIndex]
	u.isClosed = true
	u.Stack = nil
}

// Closure pairs a compiled Fn with the upvalues captured at the point its
// MAKE_CLOSURE instruction ran (§4.3, §4.5).
type Closure struct {
	Header
	Fn       *Fn
	Upvalues []*Upvalue
	ModuleID string
}

func NewClosure(fn *Fn, upvalues []*Upvalue, moduleID string) *Closure {
	return &Closure{Fn: fn, Upvalues: upvalues, ModuleID: moduleID}
}

func (c *Closure) ObjKind() ObjKind { return ObjClosure }

// NativeFn wraps a Go function exposed to Pyro code as a callable, the same
// shape the VM uses for every builtin and standard-library entry point
// (§4.3, §7).
type NativeFnImpl func(vm NativeVM, args []Value) (Value, *Value)

// NativeVM is the slice of VM behaviour a NativeFn needs: raising panics,
// allocating, and re-entrantly calling back into Pyro callables. Kept as an
// interface here so object has no import-cycle dependency on vm.
type NativeVM interface {
	Panic(kind string, format string, args ...interface{}) Value
	Call(callee Value, args []Value) (Value, *Value)
}

type NativeFn struct {
	Header
	Name  string
	Arity int
	Fn    NativeFnImpl
}

func NewNativeFn(name string, arity int, fn NativeFnImpl) *NativeFn {
	return &NativeFn{Name: name, Arity: arity, Fn: fn}
}

func (n *NativeFn) ObjKind() ObjKind { return ObjNativeFn }
