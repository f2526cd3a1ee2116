package vm

import (
	"github.com/pyro-lang/pyro/internal/object"
	"github.com/pyro-lang/pyro/internal/panicx"
)

// RunModule executes fn as mod's top-level closure against this VM's heap,
// temporarily making mod the active module/globals namespace so that
// OpDefineGlobal populates mod.Globals instead of the importing module's
// (§4.9 "compile+execute the located file in its context"). Control
// returns to the importing module's namespace when fn returns or panics,
// which is what lets internal/loader register mod into its parent's
// submodule map before calling RunModule and still have a well-formed VM
// afterward on either outcome.
func (vm *VM) RunModule(fn *object.Fn, mod *object.Module) *panicx.Panic {
	vm.classifyHeapObjects()
	savedGlobals := vm.globals
	savedModule := vm.module
	vm.globals = mod.Globals
	vm.module = mod

	closure := vm.Alloc.NewClosure(fn, nil, mod.Path)
	vm.push(object.FromObj(closure))
	_, p := vm.callValue(object.FromObj(closure), 0, true)

	vm.globals = savedGlobals
	vm.module = savedModule
	return p
}

// CurrentModule exposes the module currently executing, so native
// functions ($std among them) can report where they were invoked from.
func (vm *VM) CurrentModule() *object.Module { return vm.module }

// Global looks up a name in the currently active global namespace, for a
// driver that needs to find $main/$test_*/$time_* after running a script.
func (vm *VM) Global(name string) (object.Value, bool) {
	v, ok := vm.globals[name]
	return v, ok
}

// SetGlobal injects a value into the currently active global namespace
// before a script runs, used by the CLI driver to set $args/$roots/$std.
func (vm *VM) SetGlobal(name string, v object.Value) {
	vm.globals[name] = v
	vm.module.Set(name, v)
}

// GlobalNames returns every name currently defined in the active global
// namespace, for `pyro test`/`pyro time` to find $test_*/$time_* functions.
func (vm *VM) GlobalNames() []string {
	names := make([]string, 0, len(vm.globals))
	for name := range vm.globals {
		names = append(names, name)
	}
	return names
}
