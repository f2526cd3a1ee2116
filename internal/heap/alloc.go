package heap

import "github.com/pyro-lang/pyro/internal/object"

// New tracks a freshly constructed object against the allocator's
// accounting and links it onto the sweep list, returning false (without
// linking it) if doing so would breach MaxBytes. Every object.New* call
// site in the compiler/vm packages should route its result through here
// before making it reachable from Pyro code.
func (a *Allocator) New(o object.Obj) bool {
	return a.Track(o, ApproxSize(o))
}

func (a *Allocator) NewVec() *object.Vec {
	v := object.NewVec()
	a.New(v)
	return v
}

func (a *Allocator) NewTup(elements []object.Value) *object.Tup {
	t := object.NewTup(elements)
	a.New(t)
	return t
}

func (a *Allocator) NewMap() *object.Map {
	m := object.NewMap()
	a.New(m)
	return m
}

func (a *Allocator) NewSet() *object.Map {
	m := object.NewSet()
	a.New(m)
	return m
}

func (a *Allocator) NewBuf() *object.Buf {
	b := object.NewBuf()
	a.New(b)
	return b
}

func (a *Allocator) NewQueue() *object.Queue {
	q := object.NewQueue()
	a.New(q)
	return q
}

func (a *Allocator) NewInstance(class *object.Class) *object.Instance {
	inst := object.NewInstance(class)
	a.New(inst)
	return inst
}

func (a *Allocator) NewClosure(fn *object.Fn, upvalues []*object.Upvalue, moduleID string) *object.Closure {
	cl := object.NewClosure(fn, upvalues, moduleID)
	a.New(cl)
	return cl
}
