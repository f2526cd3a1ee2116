package heap

import "github.com/pyro-lang/pyro/internal/object"

// Roots is implemented by the VM to enumerate every reference it holds
// directly and that isn't reachable by tracing from another heap object:
// the value stack, each call frame's closure, open upvalues, globals,
// loaded modules, canned singleton strings, and the compiler-in-progress
// chain during `pyro check`/`import` (§4.2 "GC roots").
type Roots interface {
	WalkRoots(mark func(object.Value))
}
