package object

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsTruthyFalsySet(t *testing.T) {
	assert.False(t, Null().IsTruthy())
	assert.False(t, Bool(false).IsTruthy())
	assert.True(t, Bool(true).IsTruthy())
	assert.True(t, I64(0).IsTruthy())
	assert.True(t, F64(0).IsTruthy())
	assert.True(t, FromObj(NewStr(nil)).IsTruthy())
	assert.True(t, FromObj(NewVec()).IsTruthy())
	assert.False(t, FromObj(NewErrTup(nil)).IsTruthy())
}

func TestEqCrossesNumericKinds(t *testing.T) {
	assert.True(t, Eq(I64(2), F64(2.0)))
	assert.True(t, Eq(F64(2.0), I64(2)))
	assert.True(t, Eq(Char(65), I64(65)))
	assert.False(t, Eq(I64(2), F64(2.5)))
}

func TestEqualValuesHashEqual(t *testing.T) {
	assert.Equal(t, Hash(I64(2)), Hash(F64(2.0)))
	assert.Equal(t, Hash(Char(65)), Hash(I64(65)))

	a := FromObj(NewStr([]byte("x")))
	b := FromObj(NewStr([]byte("x")))
	assert.True(t, Eq(a, b))
	assert.Equal(t, Hash(a), Hash(b))
}

func TestCompareNaNIsUnordered(t *testing.T) {
	assert.Equal(t, Unordered, Compare(F64(math.NaN()), I64(1)))
}

func TestCompareMixedKindsWithoutNaturalOrderIsUnordered(t *testing.T) {
	assert.Equal(t, Unordered, Compare(FromObj(NewVec()), FromObj(NewVec())))
}

func TestIdentityEqualityForHeapKindsWithoutOverride(t *testing.T) {
	a := FromObj(NewVec())
	b := FromObj(NewVec())
	assert.False(t, Eq(a, b))
	assert.True(t, Eq(a, a))
}

func TestClassOfNilForNonObjectValues(t *testing.T) {
	assert.Nil(t, ClassOf(I64(1)))
	assert.Nil(t, ClassOf(Null()))
}

func TestNumericF64ConversionAndNonNumericRejection(t *testing.T) {
	f, ok := I64(3).NumericF64()
	assert.True(t, ok)
	assert.Equal(t, 3.0, f)

	_, ok = Null().NumericF64()
	assert.False(t, ok)
}
