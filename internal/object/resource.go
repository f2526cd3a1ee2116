package object

// ResourcePointer wraps an opaque native resource (e.g. a compiled regex, a
// DB handle owned by an embedder) behind a free callback the collector
// invokes when the pointer becomes unreachable, so native resources ride
// the same GC lifetime as everything else (§4.3).
type ResourcePointer struct {
	Header
	Value interface{}
	Free  func(interface{})
	freed bool
}

func NewResourcePointer(value interface{}, free func(interface{})) *ResourcePointer {
	return &ResourcePointer{Value: value, Free: free}
}

func (r *ResourcePointer) ObjKind() ObjKind { return ObjResourcePointer }

func (r *ResourcePointer) ReleaseNow() {
	if r.freed {
		return
	}
	r.freed = true
	if r.Free != nil {
		r.Free(r.Value)
	}
}
