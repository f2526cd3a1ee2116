package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pyro-lang/pyro/internal/bytecode"
	"github.com/pyro-lang/pyro/internal/heap"
	"github.com/pyro-lang/pyro/internal/panicx"
)

func TestCompileTopLevelFnHasZeroArity(t *testing.T) {
	alloc := heap.NewAllocator(0, 0)
	fn, p := Compile("echo 1;", "<test>", alloc)
	require.Nil(t, p)
	assert.Equal(t, 0, fn.Arity)
	assert.Equal(t, "$main", fn.Name)
}

func TestCompileReportsSyntaxErrorOnUnterminatedBlock(t *testing.T) {
	alloc := heap.NewAllocator(0, 0)
	_, p := Compile("def f() { echo 1;", "<test>", alloc)
	require.NotNil(t, p)
	assert.Equal(t, panicx.SyntaxError, p.Kind)
}

// Self-inheritance is a runtime TypeError raised by OP_INHERIT (§8), not a
// compile-time syntax error: `class A < A {}` compiles cleanly, same as
// any other `class B < A {}`. See internal/vm's
// TestSelfInheritingClassRaisesTypeError for the runtime check.
func TestCompileAcceptsSelfInheritingClassSyntactically(t *testing.T) {
	alloc := heap.NewAllocator(0, 0)
	_, p := Compile("class A < A {}", "<test>", alloc)
	assert.Nil(t, p)
}

func TestCompileRejectsRedeclaredLocalInSameScope(t *testing.T) {
	alloc := heap.NewAllocator(0, 0)
	_, p := Compile("def f(){ var x = 1; var x = 2; }", "<test>", alloc)
	require.NotNil(t, p)
}

func TestCompileAllowsShadowingInNestedScope(t *testing.T) {
	alloc := heap.NewAllocator(0, 0)
	_, p := Compile("def f(){ var x = 1; { var x = 2; echo x; } }", "<test>", alloc)
	assert.Nil(t, p)
}

// forStatement's loop body must not emit a pop between OP_GET_ITERATOR_NEXT
// and the point the loop variable is declared: declareLocal only labels
// whatever is already on top of the stack, so an intervening pop would
// alias the loop variable to the wrong runtime slot (regression for the
// for-loop variable binding fix).
func TestForLoopBodyDoesNotPopBetweenIterNextAndVariableBind(t *testing.T) {
	alloc := heap.NewAllocator(0, 0)
	fn, p := Compile(`for k in [1,2,3] { echo k; }`, "<test>", alloc)
	require.Nil(t, p)

	code := fn.Code
	iterNextAt := -1
	for i := 0; i < len(code); i++ {
		if bytecode.Opcode(code[i]) == bytecode.OpIterNext {
			iterNextAt = i
			break
		}
	}
	require.GreaterOrEqual(t, iterNextAt, 0, "expected OP_GET_ITERATOR_NEXT in compiled loop")

	// The instruction right after OP_GET_ITERATOR_NEXT must be the
	// conditional exit jump (OP_JUMP_IF_ERR), not an unconditional OP_POP:
	// a pop there would run on the normal (non-exhausted) path too and
	// discard the value about to be bound as the loop variable.
	next := bytecode.Opcode(code[iterNextAt+1])
	assert.Equal(t, bytecode.OpJumpIfErr, next)
}
