package object

// Class describes a user-defined type: a method table, a field-name-to-slot
// map, and the initializer expressions run for each field when an instance
// is constructed (§4.3, §4.6). Superclass is non-nil when the class was
// declared with "< Base"; OP_INHERIT copies the superclass's
// tables down into the subclass at declaration time rather than walking a
// chain at call time (§4.7 "INHERIT copies superclass methods and field
// slots down into the subclass").
type Class struct {
	Header
	Name        string
	Superclass  *Class
	Methods     map[string]Value
	FieldIndex  map[string]int
	FieldInit   []Value // parallel to FieldIndex, one initializer per slot
	Initializer Value   // $init method, or Null() if none
}

func NewClass(name string) *Class {
	return &Class{
		Name:       name,
		Methods:    make(map[string]Value),
		FieldIndex: make(map[string]int),
	}
}

func (c *Class) ObjKind() ObjKind { return ObjClass }

// AddField reserves the next slot for name with the given initializer
// expression closure, returning the slot index.
func (c *Class) AddField(name string, init Value) int {
	idx := len(c.FieldInit)
	c.FieldIndex[name] = idx
	c.FieldInit = append(c.FieldInit, init)
	return idx
}

func (c *Class) SetMethod(name string, fn Value) {
	c.Methods[name] = fn
	if name == "$init" {
		c.Initializer = fn
	}
}

// LookupMethod finds name on c, matching the lookup rule used throughout
// §4.6: since INHERIT copies tables down at declaration time, a single map
// lookup on the receiver's own class is enough; there is no runtime walk up
// a superclass chain.
func (c *Class) LookupMethod(name string) (Value, bool) {
	v, ok := c.Methods[name]
	return v, ok
}

// Instance is a user-defined object: a class pointer plus one Value per
// field slot, indexed by the class's FieldIndex (§4.3).
type Instance struct {
	Header
	Fields []Value
}

func NewInstance(class *Class) *Instance {
	inst := &Instance{Fields: make([]Value, len(class.FieldInit))}
	inst.SetClass(class)
	return inst
}

func (i *Instance) ObjKind() ObjKind { return ObjInstance }

func (i *Instance) GetField(idx int) Value { return i.Fields[idx] }
func (i *Instance) SetField(idx int, v Value) { i.Fields[idx] = v }

// BoundMethod pairs a receiver with the method Value looked up on its
// class, the result of a `.`/`:` member access that resolves to a method
// rather than a field (§4.6, §8).
type BoundMethod struct {
	Header
	Receiver Value
	Method   Value
}

func NewBoundMethod(receiver, method Value) *BoundMethod {
	return &BoundMethod{Receiver: receiver, Method: method}
}

func (b *BoundMethod) ObjKind() ObjKind { return ObjBoundMethod }
