package object

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueFIFOOrder(t *testing.T) {
	q := NewQueue()
	q.Enqueue(I64(1))
	q.Enqueue(I64(2))
	q.Enqueue(I64(3))
	assert.Equal(t, 3, q.Len())

	for _, want := range []int64{1, 2, 3} {
		v, ok := q.Dequeue()
		require.True(t, ok)
		assert.Equal(t, want, v.AsI64())
	}

	_, ok := q.Dequeue()
	assert.False(t, ok)
}

func TestQueuePeekDoesNotRemove(t *testing.T) {
	q := NewQueue()
	q.Enqueue(I64(7))

	v, ok := q.Peek()
	require.True(t, ok)
	assert.Equal(t, int64(7), v.AsI64())
	assert.Equal(t, 1, q.Len())
}

func TestQueueEachWalksFrontToBackAndCanStopEarly(t *testing.T) {
	q := NewQueue()
	q.Enqueue(I64(1))
	q.Enqueue(I64(2))
	q.Enqueue(I64(3))

	var seen []int64
	q.Each(func(v Value) bool {
		seen = append(seen, v.AsI64())
		return v.AsI64() < 2
	})
	assert.Equal(t, []int64{1, 2}, seen)
}

func TestQueueDequeueAfterDrainResetsTail(t *testing.T) {
	q := NewQueue()
	q.Enqueue(I64(1))
	q.Dequeue()
	assert.Equal(t, 0, q.Len())

	q.Enqueue(I64(2))
	v, ok := q.Dequeue()
	require.True(t, ok)
	assert.Equal(t, int64(2), v.AsI64())
}
