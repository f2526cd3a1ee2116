package heap

import "github.com/pyro-lang/pyro/internal/object"

// Collector runs Pyro's mark-and-sweep pass: a grey worklist over the
// allocator's live object graph, non-moving, stop-the-world, matching
// original_source/src/vm/gc.h's single pyro_collect_garbage entry point
// (§4.2).
type Collector struct {
	alloc *Allocator
	grey  []object.Obj
}

func NewCollector(alloc *Allocator) *Collector {
	return &Collector{alloc: alloc}
}

// MaybeCollect runs a collection only once bytes_allocated has crossed
// next_gc_threshold, the same trigger original_source checks before most
// allocations.
func (c *Collector) MaybeCollect(roots Roots) {
	if c.alloc.BytesAllocated > c.alloc.NextGCThreshold {
		c.Collect(roots)
	}
}

// Collect runs one full pass unconditionally. It is a no-op while the
// allocator's disallow counter is non-zero (bootstrap, or a native
// function mid-allocation that can't tolerate its partially built object
// being swept).
func (c *Collector) Collect(roots Roots) {
	if c.alloc.GCDisallows > 0 {
		return
	}

	roots.WalkRoots(c.markValue)
	c.traceGrey()

	// PruneDead must run against the marks traceGrey just finished, before
	// sweep() clears every surviving object's bit back to false — otherwise
	// every interned string looks dead and the pool is wiped on every
	// collection, breaking §3 invariant 1's "at most one Str per byte
	// sequence" the next time the same bytes are interned.
	c.alloc.strings.PruneDead(func(v object.Value) bool {
		o := v.AsObj()
		return o != nil && o.IsMarked()
	})

	c.sweep()

	c.alloc.NextGCThreshold = c.alloc.BytesAllocated * growFactor
}

func (c *Collector) markValue(v object.Value) {
	if !v.IsObj() {
		return
	}
	c.markObj(v.AsObj())
}

func (c *Collector) markObj(o object.Obj) {
	if o == nil || o.IsMarked() {
		return
	}
	o.SetMarked(true)
	c.grey = append(c.grey, o)
}

func (c *Collector) traceGrey() {
	for len(c.grey) > 0 {
		o := c.grey[len(c.grey)-1]
		c.grey = c.grey[:len(c.grey)-1]
		c.traceChildren(o)
	}
}

func (c *Collector) sweep() {
	var prev object.Obj
	curr := c.alloc.Objects()

	for curr != nil {
		next := curr.Next()
		if curr.IsMarked() {
			curr.SetMarked(false)
			prev = curr
			curr = next
			continue
		}
		if prev == nil {
			c.alloc.setObjects(next)
		} else {
			prev.SetNext(next)
		}
		c.finalize(curr)
		curr = next
	}
}

// finalize releases any native resource an object holds before it's
// dropped, then reverses its accounting — the Go equivalent of
// pyro_free_object's per-kind destructors in original_source/src/vm/heap.c.
func (c *Collector) finalize(o object.Obj) {
	switch t := o.(type) {
	case *object.File:
		t.Close()
	case *object.ResourcePointer:
		t.ReleaseNow()
	}
	c.alloc.Untrack(ApproxSize(o))
}
