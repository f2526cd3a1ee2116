package heap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pyro-lang/pyro/internal/object"
)

// stubRoots pins exactly the values a test hands it, standing in for
// vm.VM's WalkRoots during collector tests that don't need a whole VM.
type stubRoots struct {
	values []object.Value
}

func (r stubRoots) WalkRoots(mark func(object.Value)) {
	for _, v := range r.values {
		mark(v)
	}
}

func TestCollectFreesUnreachableObject(t *testing.T) {
	alloc := NewAllocator(0, 0)
	coll := NewCollector(alloc)

	kept := alloc.NewVec()
	_ = alloc.NewVec() // unreachable from any root

	before := alloc.BytesAllocated
	require.Greater(t, before, uint64(0))

	coll.Collect(stubRoots{values: []object.Value{object.FromObj(kept)}})

	assert.Equal(t, ApproxSize(kept), alloc.BytesAllocated)
}

func TestCollectIsIdempotentOnStableRootSet(t *testing.T) {
	alloc := NewAllocator(0, 0)
	coll := NewCollector(alloc)

	kept := alloc.NewVec()
	roots := stubRoots{values: []object.Value{object.FromObj(kept)}}

	coll.Collect(roots)
	afterFirst := alloc.BytesAllocated

	coll.Collect(roots)
	assert.Equal(t, afterFirst, alloc.BytesAllocated)
}

func TestCollectGrowsNextThresholdByGrowFactor(t *testing.T) {
	alloc := NewAllocator(0, 0)
	coll := NewCollector(alloc)

	kept := alloc.NewVec()
	coll.Collect(stubRoots{values: []object.Value{object.FromObj(kept)}})

	assert.Equal(t, alloc.BytesAllocated*growFactor, alloc.NextGCThreshold)
}

func TestCollectNoOpWhileDisallowed(t *testing.T) {
	alloc := NewAllocator(0, 0)
	coll := NewCollector(alloc)

	_ = alloc.NewVec() // unreachable, but GC is disallowed below

	alloc.Disallow()
	before := alloc.BytesAllocated
	coll.Collect(stubRoots{})
	assert.Equal(t, before, alloc.BytesAllocated)

	alloc.Allow()
	coll.Collect(stubRoots{})
	assert.Equal(t, uint64(0), alloc.BytesAllocated)
}

func TestMaybeCollectOnlyRunsPastThreshold(t *testing.T) {
	alloc := NewAllocator(1<<20, 0)
	coll := NewCollector(alloc)

	_ = alloc.NewVec() // unreachable, but far below the 1MiB threshold

	coll.MaybeCollect(stubRoots{})
	assert.Greater(t, alloc.BytesAllocated, uint64(0), "collection should not have run yet")

	alloc.NextGCThreshold = 0
	coll.MaybeCollect(stubRoots{})
	assert.Equal(t, uint64(0), alloc.BytesAllocated)
}

func TestCollectPreservesInternedStringIdentity(t *testing.T) {
	alloc := NewAllocator(0, 0)
	coll := NewCollector(alloc)

	s := alloc.Intern([]byte("hello"))
	roots := stubRoots{values: []object.Value{object.FromObj(s)}}

	coll.Collect(roots)

	again := alloc.Intern([]byte("hello"))
	assert.Same(t, s, again, "interning the same bytes after a collection must return the same object (§3 invariant 1)")
}

func TestTrackRefusesPastMaxBytes(t *testing.T) {
	alloc := NewAllocator(0, 1)
	ok := alloc.New(object.NewVec())
	assert.False(t, ok)
	assert.True(t, alloc.AllocationFailed)
	assert.Equal(t, uint64(0), alloc.BytesAllocated)
}
