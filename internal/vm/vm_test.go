package vm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pyro-lang/pyro/internal/compiler"
	"github.com/pyro-lang/pyro/internal/heap"
	"github.com/pyro-lang/pyro/internal/object"
	"github.com/pyro-lang/pyro/internal/panicx"
)

// runSource compiles and runs src in a fresh VM, returning everything echoed
// to stdout and the final expression's panic (if any). It mirrors the
// cmd/pyro driver's compileAndRun without the CLI plumbing around it.
func runSource(t *testing.T, src string) (string, *VM) {
	t.Helper()
	alloc := heap.NewAllocator(0, 0)
	fn, p := compiler.Compile(src, "<test>", alloc)
	require.Nil(t, p, "compile error: %v", p)

	machine := New(alloc, nil)
	var out strings.Builder
	machine.Stdout = func(s string) { out.WriteString(s) }

	_, p = machine.Run(fn, "<test>")
	require.Nil(t, p, "runtime panic: %v", p)
	return out.String(), machine
}

// Scenario 1: echo 1 + 2; -> stdout = "3\n"
func TestEchoArithmetic(t *testing.T) {
	out, _ := runSource(t, "echo 1 + 2;")
	assert.Equal(t, "3\n", out)
}

// Scenario 2: def f(){return 7;} echo f(); -> stdout = "7\n"
func TestFunctionCallAndReturn(t *testing.T) {
	out, _ := runSource(t, "def f(){return 7;} echo f();")
	assert.Equal(t, "7\n", out)
}

// Scenario 3: class A{def m(){return 1;}} class B<A{} echo B():m(); -> "1\n"
func TestClassInheritanceMethodDispatch(t *testing.T) {
	out, _ := runSource(t, "class A{def m(){return 1;}} class B<A{} echo B():m();")
	assert.Equal(t, "1\n", out)
}

// Scenario 4: map iteration walks entries in insertion order.
func TestMapKeysIterateInInsertionOrder(t *testing.T) {
	out, _ := runSource(t, `var m={"a"=1,"b"=2}; for k in m.keys(){echo k;}`)
	assert.Equal(t, "a\nb\n", out)
}

// Scenario 5: vec:map(fn) applies fn elementwise and preserves order.
func TestVecMapTransformsElementwise(t *testing.T) {
	out, _ := runSource(t, `var v=[1,2,3]; echo v:map(def(x){return x*x;});`)
	assert.Equal(t, "[1, 4, 9]\n", out)
}

// Scenario 6: try $panic("boom") yields an Err tuple rather than aborting.
func TestTryPanicYieldsErrTuple(t *testing.T) {
	out, machine := runSource(t, `var r = try $panic("boom"); echo r:is_err();`)
	assert.Equal(t, "true\n", out)
	_ = machine
}

func TestTryPanicErrTupleCarriesKindAndMessage(t *testing.T) {
	alloc := heap.NewAllocator(0, 0)
	fn, p := compiler.Compile(`var r = try $panic("boom");`, "<test>", alloc)
	require.Nil(t, p)

	machine := New(alloc, nil)
	machine.Stdout = func(string) {}
	_, p = machine.Run(fn, "<test>")
	require.Nil(t, p)

	r, ok := machine.Global("r")
	require.True(t, ok)
	require.True(t, r.IsErrTuple())

	tup := r.AsObj().(*object.Tup)
	require.Len(t, tup.Elements, 2)
	assert.Equal(t, int64(0), tup.Elements[0].AsI64()) // panicx.Error == 0
	assert.Equal(t, "boom", tup.Elements[1].AsObj().(*object.Str).String())
}

// Scenario 7: UTF-8 aware char_count over a multi-byte string.
func TestStringCharCountIsUTF8Aware(t *testing.T) {
	out, _ := runSource(t, `var s="héllo"; echo s:char_count();`)
	assert.Equal(t, "5\n", out)
}

// Regression for the try-handler leak: a panic inside a function called
// after an earlier try in the same frame completed normally must not be
// mistaken for still being inside that earlier try's recovery scope.
func TestTryHandlerDoesNotLeakPastNormalCompletion(t *testing.T) {
	src := `
		var a = try 1;
		$panic("uncaught");
	`
	alloc := heap.NewAllocator(0, 0)
	fn, p := compiler.Compile(src, "<test>", alloc)
	require.Nil(t, p)

	machine := New(alloc, nil)
	machine.Stdout = func(string) {}
	_, p = machine.Run(fn, "<test>")
	require.NotNil(t, p, "the uncaught $panic after the first try completed should propagate, not be swallowed")
}

// A second, unrelated panic after a try resolves must still propagate
// instead of being silently caught by the first try's stale handler.
func TestSecondPanicAfterTryIsNotCaughtByStaleHandler(t *testing.T) {
	src := `
		def f(){
			var a = try 1;
			return 1 / 0;
		}
		f();
	`
	alloc := heap.NewAllocator(0, 0)
	fn, p := compiler.Compile(src, "<test>", alloc)
	require.Nil(t, p)

	machine := New(alloc, nil)
	machine.Stdout = func(string) {}
	_, p = machine.Run(fn, "<test>")
	require.NotNil(t, p)
}

// Regression: a closure that mutates an enclosing local must see the same
// storage the enclosing frame sees, and keep it after the enclosing frame
// returns. The value stack is allocated at full capacity up front and never
// regrown, so an open upvalue's alias into it stays valid (§3 invariant 4,
// §9 "Closure over the call stack").
func TestClosureMutatesEnclosingLocalAcrossStackGrowth(t *testing.T) {
	src := `
		def make_counter(){
			var n = 0;
			def inc(){
				n = n + 1;
				return n;
			}
			return inc;
		}
		var c = make_counter();
		echo c();
		echo c();
		echo c();
	`
	out, _ := runSource(t, src)
	assert.Equal(t, "1\n2\n3\n", out)
}

// §8 boundary behavior: shifting by a negative amount raises ValueError
// instead of reinterpreting the negative count as a huge unsigned shift.
func TestNegativeShiftAmountRaisesValueError(t *testing.T) {
	for _, src := range []string{"var x = 1 << -1;", "var x = 1 >> -1;"} {
		alloc := heap.NewAllocator(0, 0)
		fn, p := compiler.Compile(src, "<test>", alloc)
		require.Nil(t, p, "compile error for %q: %v", src, p)

		machine := New(alloc, nil)
		machine.Stdout = func(string) {}
		_, p = machine.Run(fn, "<test>")
		require.NotNil(t, p, "expected a panic for %q", src)
		assert.Equal(t, panicx.ValueError, p.Kind)
	}
}

// §8 boundary behavior: float-to-int conversion outside [I64_MIN, I64_MAX]
// raises ValueError rather than wrapping or truncating silently.
func TestI64ConversionOutOfRangeRaisesValueError(t *testing.T) {
	out, _ := runSource(t, `var r = try $i64(1.0e30); echo r:is_err();`)
	assert.Equal(t, "true\n", out)
}

func TestI64ConversionInRangeSucceeds(t *testing.T) {
	out, _ := runSource(t, `echo $i64(3.9);`)
	assert.Equal(t, "3\n", out)
}

// §8 boundary behavior: a class inheriting from itself raises TypeError at
// runtime (OP_INHERIT) rather than being rejected by a compile-time,
// literal-name syntax check — the class's own name is bound to its (not
// yet fully built) Class object as soon as OP_CLASS/OP_DEFINE_GLOBAL run,
// before the superclass clause is evaluated, so `class A < A {}` resolves
// both the superclass and subclass operands to the identical object by the
// time OP_INHERIT runs, whatever expression was used to name it.
func TestSelfInheritingClassRaisesTypeError(t *testing.T) {
	alloc := heap.NewAllocator(0, 0)
	fn, p := compiler.Compile("class A < A {}", "<test>", alloc)
	require.Nil(t, p, "compile error: %v", p)

	machine := New(alloc, nil)
	machine.Stdout = func(string) {}
	_, p = machine.Run(fn, "<test>")
	require.NotNil(t, p, "expected a panic")
	assert.Equal(t, panicx.TypeError, p.Kind)
}

func TestExitSetsExitCodeAndSkipsRemainingProgram(t *testing.T) {
	src := `$exit(3); echo "unreachable";`
	alloc := heap.NewAllocator(0, 0)
	fn, p := compiler.Compile(src, "<test>", alloc)
	require.Nil(t, p)

	machine := New(alloc, nil)
	var out strings.Builder
	machine.Stdout = func(s string) { out.WriteString(s) }

	// $exit unwinds as a hard, uncatchable panic internally; callers are
	// expected to check ExitRequested before treating Run's returned panic
	// as a reportable failure (the same contract cmd/pyro's compileAndRun
	// follows).
	machine.Run(fn, "<test>")
	require.True(t, machine.ExitRequested)
	assert.Equal(t, 3, machine.ExitCode)
	assert.Equal(t, "", out.String())
}
