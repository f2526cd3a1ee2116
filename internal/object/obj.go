package object

// ObjKind tags the concrete heap-object type a Value's Obj payload points
// at. Every Obj implementation reports one of these from ObjKind().
type ObjKind uint8

const (
	ObjStr ObjKind = iota
	ObjTup
	ObjVec
	ObjMap
	ObjBuf
	ObjFile
	ObjFn
	ObjClosure
	ObjNativeFn
	ObjClass
	ObjInstance
	ObjBoundMethod
	ObjModule
	ObjUpvalue
	ObjIter
	ObjQueue
	ObjResourcePointer
)

func (k ObjKind) String() string {
	switch k {
	case ObjStr:
		return "str"
	case ObjTup:
		return "tup"
	case ObjVec:
		return "vec"
	case ObjMap:
		return "map"
	case ObjBuf:
		return "buf"
	case ObjFile:
		return "file"
	case ObjFn:
		return "fn"
	case ObjClosure:
		return "closure"
	case ObjNativeFn:
		return "native fn"
	case ObjClass:
		return "class"
	case ObjInstance:
		return "instance"
	case ObjBoundMethod:
		return "method"
	case ObjModule:
		return "module"
	case ObjUpvalue:
		return "upvalue"
	case ObjIter:
		return "iter"
	case ObjQueue:
		return "queue"
	case ObjResourcePointer:
		return "resource pointer"
	default:
		return "unknown"
	}
}

// Obj is implemented by every heap object kind. The heap package threads
// these onto a single global object list (the GC's sweep set) via Next/
// SetNext, and the collector toggles IsMarked/SetMarked during tracing.
// Every object carries a nullable class pointer per §3 ("Heap object
// kinds"); built-in container types point at one of the VM's singleton
// classes, Instance carries its own.
type Obj interface {
	ObjKind() ObjKind
	Class() *Class
	SetClass(*Class)
	IsMarked() bool
	SetMarked(bool)
	Next() Obj
	SetNext(Obj)
}

// Header is embedded by every concrete Obj implementation to satisfy the
// bookkeeping half of the Obj interface without repeating it per kind.
type Header struct {
	class   *Class
	marked  bool
	next    Obj
}

func (h *Header) Class() *Class      { return h.class }
func (h *Header) SetClass(c *Class)  { h.class = c }
func (h *Header) IsMarked() bool     { return h.marked }
func (h *Header) SetMarked(m bool)   { h.marked = m }
func (h *Header) Next() Obj          { return h.next }
func (h *Header) SetNext(o Obj)      { h.next = o }
