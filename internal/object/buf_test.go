package object

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufAppendAndAppendByte(t *testing.T) {
	b := NewBuf()
	b.Append([]byte("hel"))
	b.AppendByte('l')
	b.AppendByte('o')
	assert.Equal(t, "hello", string(b.Bytes()))
	assert.Equal(t, 5, b.Len())
}

func TestBufGrowsPastInitialCapacity(t *testing.T) {
	b := NewBuf()
	for i := 0; i < 100; i++ {
		b.AppendByte('x')
	}
	assert.Equal(t, 100, b.Len())
	require.GreaterOrEqual(t, cap(b.Bytes()), 101)
}

func TestBufToStrTransfersOwnershipAndEmptiesBuffer(t *testing.T) {
	b := NewBuf()
	b.Append([]byte("hello"))

	s := b.ToStr()
	assert.Equal(t, "hello", s.String())
	assert.Equal(t, 0, b.Len())
}
