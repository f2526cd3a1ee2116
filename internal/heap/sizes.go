package heap

import "github.com/pyro-lang/pyro/internal/object"

// ApproxSize estimates the conceptual byte cost of o for the allocator's
// bytes_allocated accounting. These are nominal figures, not exact Go
// struct sizes — the point is to drive the same threshold-doubling
// behaviour as original_source/src/vm/heap.c, not to account for Go's own
// (separately GC'd) memory.
func ApproxSize(o object.Obj) uint64 {
	const header = 32
	switch t := o.(type) {
	case *object.Str:
		return header + uint64(t.Len())
	case *object.Tup:
		return header + uint64(t.Len())*16
	case *object.Vec:
		return header + uint64(t.Cap())*16
	case *object.Map:
		return header + uint64(t.Count())*32
	case *object.Buf:
		return header + uint64(t.Len())
	case *object.Queue:
		return header + uint64(t.Len())*24
	case *object.Fn:
		return header + uint64(len(t.Code)) + uint64(len(t.Constants))*16
	case *object.Closure:
		return header + uint64(len(t.Upvalues))*8
	case *object.Instance:
		return header + uint64(len(t.Fields))*16
	default:
		return header
	}
}
