package object

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassAddFieldReservesSlotsInOrder(t *testing.T) {
	c := NewClass("Point")
	xIdx := c.AddField("x", I64(0))
	yIdx := c.AddField("y", I64(0))
	assert.Equal(t, 0, xIdx)
	assert.Equal(t, 1, yIdx)
	assert.Equal(t, 2, len(c.FieldInit))
}

func TestSetMethodAlsoCapturesInitializer(t *testing.T) {
	c := NewClass("Point")
	initFn := FromObj(NewFn(""))
	c.SetMethod("$init", initFn)
	c.SetMethod("magnitude", FromObj(NewFn("")))

	assert.Equal(t, initFn, c.Initializer)
	_, ok := c.LookupMethod("magnitude")
	assert.True(t, ok)
}

func TestNewInstanceAllocatesOneFieldSlotPerClassField(t *testing.T) {
	c := NewClass("Point")
	c.AddField("x", I64(0))
	c.AddField("y", I64(0))

	inst := NewInstance(c)
	require.Equal(t, 2, len(inst.Fields))
	assert.Same(t, c, inst.Class())

	inst.SetField(0, I64(3))
	assert.Equal(t, int64(3), inst.GetField(0).AsI64())
}

func TestLookupMethodMissReturnsFalse(t *testing.T) {
	c := NewClass("Empty")
	_, ok := c.LookupMethod("nope")
	assert.False(t, ok)
}

func TestGetMethodAndHasMethodGoThroughClassOf(t *testing.T) {
	c := NewClass("Greeter")
	greet := FromObj(NewFn(""))
	c.SetMethod("greet", greet)

	inst := FromObj(NewInstance(c))
	assert.True(t, HasMethod(inst, "greet"))
	got, ok := GetMethod(inst, "greet")
	require.True(t, ok)
	assert.Equal(t, greet, got)

	assert.False(t, HasMethod(inst, "missing"))
}

func TestBoundMethodPairsReceiverAndMethod(t *testing.T) {
	c := NewClass("Greeter")
	method := FromObj(NewFn(""))
	c.SetMethod("greet", method)
	inst := FromObj(NewInstance(c))

	bound := NewBoundMethod(inst, method)
	assert.Equal(t, inst, bound.Receiver)
	assert.Equal(t, method, bound.Method)
}
