package object

// Module is a compiled or native module's namespace: a flat global table
// plus a table of submodules reached through further `::` segments of an
// import path (§4.3, §7). Pre-registering an empty Module before compiling
// its body is what lets two modules import each other (§7 "cycle support").
type Module struct {
	Header
	Path       string
	Globals    map[string]Value
	Submodules map[string]*Module
}

func NewModule(path string) *Module {
	return &Module{
		Path:       path,
		Globals:    make(map[string]Value),
		Submodules: make(map[string]*Module),
	}
}

func (m *Module) ObjKind() ObjKind { return ObjModule }

func (m *Module) Get(name string) (Value, bool) {
	v, ok := m.Globals[name]
	return v, ok
}

func (m *Module) Set(name string, v Value) {
	m.Globals[name] = v
}

func (m *Module) Submodule(name string) (*Module, bool) {
	sub, ok := m.Submodules[name]
	return sub, ok
}
