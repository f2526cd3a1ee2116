package object

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTupLenAndElements(t *testing.T) {
	tup := NewTup([]Value{I64(1), I64(2), I64(3)})
	assert.Equal(t, 3, tup.Len())
	assert.Equal(t, int64(2), tup.Elements[1].AsI64())
}

func TestErrTupIsFalsyButPlainTupleIsTruthy(t *testing.T) {
	plain := FromObj(NewTup([]Value{I64(1)}))
	errTup := FromObj(NewErrTup([]Value{I64(1)}))

	assert.True(t, plain.IsTruthy())
	assert.False(t, errTup.IsTruthy())
	assert.False(t, plain.IsErrTuple())
	assert.True(t, errTup.IsErrTuple())
}

func TestErrTupAndPlainTupWithSameElementsAreEqual(t *testing.T) {
	plain := FromObj(NewTup([]Value{I64(1), I64(2)}))
	errTup := FromObj(NewErrTup([]Value{I64(1), I64(2)}))
	assert.True(t, Eq(plain, errTup))
}

func TestEmptyTupIsTheIterExhaustedSentinel(t *testing.T) {
	empty := NewErrTup(nil)
	assert.Equal(t, 0, empty.Len())
	assert.True(t, FromObj(empty).IsErrTuple())
}

func TestTupCompareIsElementWiseShorterIsLessOnCommonPrefix(t *testing.T) {
	short := FromObj(NewTup([]Value{I64(1), I64(2)}))
	long := FromObj(NewTup([]Value{I64(1), I64(2), I64(3)}))
	assert.Equal(t, Less, Compare(short, long))
	assert.Equal(t, Greater, Compare(long, short))
	assert.Equal(t, Equal, Compare(short, short))
}
