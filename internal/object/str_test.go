package object

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStrBytesStringAndLen(t *testing.T) {
	s := NewStr([]byte("hello"))
	assert.Equal(t, "hello", s.String())
	assert.Equal(t, []byte("hello"), s.Bytes())
	assert.Equal(t, 5, s.Len())
}

func TestStrEqualBytesHashEqual(t *testing.T) {
	a := NewStr([]byte("same"))
	b := NewStr([]byte("same"))
	assert.Equal(t, a.Hash(), b.Hash())
	assert.True(t, Eq(FromObj(a), FromObj(b)))
}

func TestStrDistinctBytesUsuallyHashDifferently(t *testing.T) {
	a := NewStr([]byte("alpha"))
	b := NewStr([]byte("beta"))
	assert.NotEqual(t, a.Hash(), b.Hash())
	assert.False(t, Eq(FromObj(a), FromObj(b)))
}

func TestStrCompareIsLexicographicByteOrder(t *testing.T) {
	a := FromObj(NewStr([]byte("apple")))
	b := FromObj(NewStr([]byte("banana")))
	assert.Equal(t, Less, Compare(a, b))
	assert.Equal(t, Greater, Compare(b, a))
	assert.Equal(t, Equal, Compare(a, a))
}
