package object

// Buf is a growable byte array. Unlike Vec, it always keeps capacity >=
// count+1 (see ensure). ToStr hands the backing array to a new Str without
// copying it; no terminating null byte is written (§4.3).
type Buf struct {
	Header
	bytes []byte
}

func NewBuf() *Buf {
	return &Buf{bytes: make([]byte, 0, 1)}
}

func (b *Buf) ObjKind() ObjKind { return ObjBuf }
func (b *Buf) Len() int         { return len(b.bytes) }
func (b *Buf) Bytes() []byte    { return b.bytes }

func (b *Buf) ensure(extra int) {
	if cap(b.bytes) >= len(b.bytes)+extra+1 {
		return
	}
	newCap := cap(b.bytes)
	if newCap < 8 {
		newCap = 8
	}
	for newCap < len(b.bytes)+extra+1 {
		newCap *= 2
	}
	grown := make([]byte, len(b.bytes), newCap)
	copy(grown, b.bytes)
	b.bytes = grown
}

func (b *Buf) Append(data []byte) {
	b.ensure(len(data))
	b.bytes = append(b.bytes, data...)
}

func (b *Buf) AppendByte(c byte) {
	b.ensure(1)
	b.bytes = append(b.bytes, c)
}

// ToStr transfers ownership of the byte array to a new Str without copying
// it or appending a terminating null, then leaves the buffer empty
// (§4.3 "Conversion transfers ownership... and leaves the buffer empty").
func (b *Buf) ToStr() *Str {
	b.ensure(0)
	owned := b.bytes
	str := NewStr(owned)
	b.bytes = nil
	return str
}
