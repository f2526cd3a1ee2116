package heap

import "github.com/pyro-lang/pyro/internal/object"

// traceChildren marks every Value and Obj o holds a direct reference to.
// Weak-reference maps (the intern pool) are deliberately not traced here —
// Collect prunes their dead entries after marking and before sweep, which is what lets an
// otherwise-unreachable string actually get collected (§4.2 "Weak
// references are not traced").
func (c *Collector) traceChildren(o object.Obj) {
	if cls := o.Class(); cls != nil {
		c.markObj(cls)
	}

	switch t := o.(type) {
	case *object.Tup:
		for _, el := range t.Elements {
			c.markValue(el)
		}

	case *object.Vec:
		for _, el := range t.Slice() {
			c.markValue(el)
		}

	case *object.Map:
		if t.IsWeakRef {
			return
		}
		t.Entries(func(k, v object.Value) bool {
			c.markValue(k)
			c.markValue(v)
			return true
		})

	case *object.Queue:
		t.Each(func(v object.Value) bool {
			c.markValue(v)
			return true
		})

	case *object.Closure:
		c.markObj(t.Fn)
		for _, uv := range t.Upvalues {
			c.markObj(uv)
		}

	case *object.Fn:
		for _, cst := range t.Constants {
			c.markValue(cst)
		}

	case *object.Upvalue:
		if !t.IsOpen() {
			c.markValue(t.Get())
		}

	case *object.Class:
		if t.Superclass != nil {
			c.markObj(t.Superclass)
		}
		for _, m := range t.Methods {
			c.markValue(m)
		}
		for _, fi := range t.FieldInit {
			c.markValue(fi)
		}
		c.markValue(t.Initializer)

	case *object.Instance:
		for _, f := range t.Fields {
			c.markValue(f)
		}

	case *object.BoundMethod:
		c.markValue(t.Receiver)
		c.markValue(t.Method)

	case *object.Module:
		for _, v := range t.Globals {
			c.markValue(v)
		}
		for _, sub := range t.Submodules {
			c.markObj(sub)
		}

	case *object.Iter:
		if t.Vec != nil {
			c.markObj(t.Vec)
		}
		if t.Tup != nil {
			c.markObj(t.Tup)
		}
		if t.Queue != nil {
			c.markObj(t.Queue)
		}
		if t.Str != nil {
			c.markObj(t.Str)
		}
		if t.MapSrc != nil {
			c.markObj(t.MapSrc)
		}
		if t.File != nil {
			c.markObj(t.File)
		}
		if t.Inner != nil {
			c.markObj(t.Inner)
		}
		c.markValue(t.Callback)
	}
}
