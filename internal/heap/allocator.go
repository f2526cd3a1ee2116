// Package heap implements Pyro's allocation accounting, string intern
// pool, and mark-and-sweep collector. It sits directly on top of object's
// heap-object kinds and layers Pyro's own bytes_allocated/next_gc_threshold
// bookkeeping over Go's allocator, grounded on
// original_source/src/vm/heap.c and original_source/src/vm/pyro.h — Go's
// runtime still owns the underlying memory, but Collect drives Pyro's own
// object graph traversal so that File/ResourcePointer finalizers and the
// string intern pool behave exactly as the reference implementation
// describes (§4.2).
package heap

import "github.com/pyro-lang/pyro/internal/object"

// DefaultInitialThreshold matches PYRO_INIT_GC_THRESHOLD (1MiB).
const DefaultInitialThreshold = 1024 * 1024

// growFactor matches PYRO_GC_HEAP_GROW_FACTOR: after a collection, the next
// threshold is set to bytes_allocated * growFactor.
const growFactor = 2

// Allocator tracks conceptual byte accounting for every live Pyro object
// and holds the singly-linked sweep list (object.Obj.Next/SetNext) the
// collector walks.
type Allocator struct {
	BytesAllocated   uint64
	MaxBytes         uint64
	AllocationFailed bool
	NextGCThreshold  uint64
	GCDisallows      int

	objects object.Obj
	strings *object.Map
}

// NewAllocator creates an allocator with the given initial GC threshold and
// an optional ceiling (0 means unlimited, matching max_bytes = SIZE_MAX).
func NewAllocator(initThreshold, maxBytes uint64) *Allocator {
	if initThreshold == 0 {
		initThreshold = DefaultInitialThreshold
	}
	a := &Allocator{NextGCThreshold: initThreshold}
	if maxBytes == 0 {
		a.MaxBytes = ^uint64(0)
	} else {
		a.MaxBytes = maxBytes
	}
	a.strings = object.NewWeakRefMap()
	a.strings.IsSet = true
	return a
}

// Track registers size bytes of conceptual allocation against the ceiling
// and links obj onto the sweep list. It refuses and sets AllocationFailed
// when the ceiling would be breached, mirroring pyro_realloc's max_bytes
// check.
func (a *Allocator) Track(obj object.Obj, size uint64) bool {
	newTotal := a.BytesAllocated + size
	if newTotal > a.MaxBytes {
		a.AllocationFailed = true
		return false
	}
	a.BytesAllocated = newTotal
	obj.SetNext(a.objects)
	a.objects = obj
	return true
}

// Untrack reverses the accounting performed by Track, called by the
// collector's sweep when an object is freed.
func (a *Allocator) Untrack(size uint64) {
	if size > a.BytesAllocated {
		a.BytesAllocated = 0
		return
	}
	a.BytesAllocated -= size
}

// Disallow and Allow bracket regions where a collection must not run —
// VM bootstrap, before the class table and intern pool exist, per
// original_source/src/vm/vm.c's gc_disallows counter.
func (a *Allocator) Disallow() { a.GCDisallows++ }

func (a *Allocator) Allow() {
	if a.GCDisallows > 0 {
		a.GCDisallows--
	}
}

func (a *Allocator) Strings() *object.Map { return a.strings }

func (a *Allocator) Objects() object.Obj     { return a.objects }
func (a *Allocator) setObjects(o object.Obj) { a.objects = o }
