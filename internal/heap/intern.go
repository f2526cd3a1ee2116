package heap

import "github.com/pyro-lang/pyro/internal/object"

// Intern returns the canonical Str for bytes, allocating a new one only
// when no equal string is already interned. vm->strings in
// original_source/src/vm/vm.c is consulted by ObjStr_copy/ObjStr_take the
// same way before allocating a new string object (§4.2 "string interning",
// §3 invariant: equal strings are identical objects after interning).
func (a *Allocator) Intern(bytes []byte) *object.Str {
	probe := object.NewStr(bytes)
	if existing, ok := a.strings.Get(object.FromObj(probe)); ok {
		return existing.AsObj().(*object.Str)
	}
	if !a.Track(probe, ApproxSize(probe)) {
		return nil
	}
	a.strings.Set(object.FromObj(probe), object.FromObj(probe))
	return probe
}

// InternString is a convenience wrapper over Intern for Go string literals
// used internally by the VM (canned names like "$init", "$next").
func (a *Allocator) InternString(s string) *object.Str {
	return a.Intern([]byte(s))
}
