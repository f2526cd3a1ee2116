package object

// Str is an immutable UTF-8 byte array with a cached hash, interned so
// that at most one Str exists per distinct byte sequence (§3 invariant 1).
// Interning itself is the heap package's job (it owns the weak intern
// pool); Str only carries the bytes and the hash the pool keys on.
type Str struct {
	Header
	bytes []byte
	hash  uint64
}

// NewStr constructs a Str directly from already-validated, already-decoded
// bytes. Callers that need interning should go through heap.Allocator.Intern
// instead — this constructor exists for the allocator and for tests.
func NewStr(bytes []byte) *Str {
	return &Str{bytes: bytes, hash: fnv1a64(bytes)}
}

func (s *Str) ObjKind() ObjKind { return ObjStr }
func (s *Str) Bytes() []byte    { return s.bytes }
func (s *Str) String() string   { return string(s.bytes) }
func (s *Str) Hash() uint64     { return s.hash }
func (s *Str) Len() int         { return len(s.bytes) }
