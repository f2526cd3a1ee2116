package object

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapPreservesInsertionOrder(t *testing.T) {
	m := NewMap()
	keys := []string{"z", "a", "m", "b"}
	for i, k := range keys {
		m.Set(FromObj(NewStr([]byte(k))), I64(int64(i)))
	}

	var seen []string
	m.Entries(func(k, v Value) bool {
		s := k.AsObj().(*Str)
		seen = append(seen, s.String())
		return true
	})

	assert.Equal(t, keys, seen)
}

func TestMapSetOverwritesExistingKey(t *testing.T) {
	m := NewMap()
	key := FromObj(NewStr([]byte("x")))

	m.Set(key, I64(1))
	m.Set(key, I64(2))

	require.Equal(t, 1, m.Count())
	v, ok := m.Get(key)
	require.True(t, ok)
	assert.Equal(t, int64(2), v.AsI64())
}

func TestMapRemoveThenReinsertDoesNotDoubleCount(t *testing.T) {
	m := NewMap()
	key := FromObj(NewStr([]byte("x")))

	m.Set(key, I64(1))
	require.True(t, m.Remove(key))
	require.Equal(t, 0, m.Count())
	_, ok := m.Get(key)
	require.False(t, ok)

	m.Set(key, I64(9))
	assert.Equal(t, 1, m.Count())
	v, _ := m.Get(key)
	assert.Equal(t, int64(9), v.AsI64())
}

func TestMapGrowsPastInitialCapacityAndStaysConsistent(t *testing.T) {
	m := NewMap()
	const n = 64
	for i := 0; i < n; i++ {
		m.Set(I64(int64(i)), I64(int64(i*i)))
	}
	require.Equal(t, n, m.Count())
	for i := 0; i < n; i++ {
		v, ok := m.Get(I64(int64(i)))
		require.True(t, ok)
		assert.Equal(t, int64(i*i), v.AsI64())
	}
}

func TestMapCopyPreservesSetFlavorAndOrder(t *testing.T) {
	s := NewSet()
	s.Set(I64(1), Bool(true))
	s.Set(I64(2), Bool(true))

	cp := s.Copy()
	assert.True(t, cp.IsSet)
	assert.Equal(t, 2, cp.Count())
	assert.True(t, cp.Contains(I64(1)))
	assert.True(t, cp.Contains(I64(2)))
}

func TestMapPruneDeadRemovesUnreachableWeakEntries(t *testing.T) {
	m := NewWeakRefMap()
	alive := FromObj(NewStr([]byte("alive")))
	dead := FromObj(NewStr([]byte("dead")))
	m.Set(alive, Bool(true))
	m.Set(dead, Bool(true))

	m.PruneDead(func(v Value) bool {
		return v.AsObj().(*Str) == alive.AsObj().(*Str)
	})

	assert.Equal(t, 1, m.Count())
	assert.True(t, m.Contains(alive))
	assert.False(t, m.Contains(dead))
}
