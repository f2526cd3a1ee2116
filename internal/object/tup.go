package object

// Tup is a fixed-length value array. Setting IsErr marks it as the "Err"
// flavor used as a signalling value (glossary) and as the canned
// iterator-exhausted sentinel when zero-length.
type Tup struct {
	Header
	Elements []Value
	IsErr    bool
}

func NewTup(elements []Value) *Tup          { return &Tup{Elements: elements} }
func NewErrTup(elements []Value) *Tup       { return &Tup{Elements: elements, IsErr: true} }
func (t *Tup) ObjKind() ObjKind             { return ObjTup }
func (t *Tup) Len() int                     { return len(t.Elements) }
