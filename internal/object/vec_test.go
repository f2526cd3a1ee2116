package object

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVecAppendGrowsCapacityByDoublingFromEight(t *testing.T) {
	v := NewVec()
	for i := 0; i < 8; i++ {
		v.Append(I64(int64(i)))
	}
	assert.Equal(t, 8, v.Len())
	assert.Equal(t, 8, v.Cap())

	v.Append(I64(8))
	assert.Equal(t, 9, v.Len())
	assert.Equal(t, 16, v.Cap())
}

func TestVecGetSetOutOfBounds(t *testing.T) {
	v := NewVec()
	v.Append(I64(1))

	_, ok := v.Get(5)
	assert.False(t, ok)
	assert.False(t, v.Set(5, I64(9)))

	require.True(t, v.Set(0, I64(42)))
	got, ok := v.Get(0)
	require.True(t, ok)
	assert.Equal(t, int64(42), got.AsI64())
}

func TestVecRemoveAtShiftsElementsDown(t *testing.T) {
	v := NewVecFrom([]Value{I64(1), I64(2), I64(3)})
	removed, ok := v.RemoveAt(1)
	require.True(t, ok)
	assert.Equal(t, int64(2), removed.AsI64())
	assert.Equal(t, 2, v.Len())
	first, _ := v.Get(0)
	second, _ := v.Get(1)
	assert.Equal(t, int64(1), first.AsI64())
	assert.Equal(t, int64(3), second.AsI64())
}

func TestVecInsertAtEndAppends(t *testing.T) {
	v := NewVecFrom([]Value{I64(1), I64(2)})
	require.True(t, v.InsertAt(2, I64(3)))
	assert.Equal(t, 3, v.Len())
	last, _ := v.Get(2)
	assert.Equal(t, int64(3), last.AsI64())
}

func TestVecInsertAtRejectsPastEnd(t *testing.T) {
	v := NewVecFrom([]Value{I64(1)})
	assert.False(t, v.InsertAt(2, I64(9)))
}

func TestVecPopLastAndRemoveFirst(t *testing.T) {
	v := NewVecFrom([]Value{I64(1), I64(2), I64(3)})

	last, ok := v.PopLast()
	require.True(t, ok)
	assert.Equal(t, int64(3), last.AsI64())
	assert.Equal(t, 2, v.Len())

	first, ok := v.RemoveFirst()
	require.True(t, ok)
	assert.Equal(t, int64(1), first.AsI64())
	assert.Equal(t, 1, v.Len())
}

func TestVecCopyIsIndependentOfOriginal(t *testing.T) {
	v := NewVecFrom([]Value{I64(1), I64(2)})
	cp := v.Copy()
	cp.Set(0, I64(99))

	orig, _ := v.Get(0)
	copied, _ := cp.Get(0)
	assert.Equal(t, int64(1), orig.AsI64())
	assert.Equal(t, int64(99), copied.AsI64())
}
