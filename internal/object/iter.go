package object

import "github.com/pyro-lang/pyro/internal/utf8"

// IterKind tags which concrete iteration strategy an Iter runs (§4.3, §6).
type IterKind uint8

const (
	IterOverVec IterKind = iota
	IterOverTup
	IterOverQueue
	IterOverStringBytes
	IterOverStringChars
	IterOverStringGraphemes
	IterOverStringLines
	IterOverMapKeys
	IterOverMapValues
	IterOverMapEntries
	IterRange
	IterEnumerate
	IterFilter
	IterMap
	IterSkipFirst
	IterSkipLast
	IterFileLines
	IterGenericNext // delegates to a $next method on a user instance
)

// Iter is a single tagged iterator object. Only the fields relevant to Kind
// are meaningful; the rest are zero. Wrapping every strategy in one struct
// (rather than one Go type per kind) mirrors the reference implementation's
// single ObjIter with a union of cursor fields, and lets GET_ITERATOR_NEXT
// stay a single opcode regardless of what's being iterated (§4.7).
type Iter struct {
	Header

	Kind IterKind

	// Source containers (one of these is set depending on Kind).
	Vec    *Vec
	Tup    *Tup
	Queue  *Queue
	Str    *Str
	MapSrc *Map
	File   *File

	// Cursor state.
	Index      int // byte/element/entry offset, or range cursor
	RangeStop  int64
	RangeStep  int64
	skipN      int
	skipBuf    []Value // ring buffer used by skip_last's lookahead

	// Composition: wraps another iterator.
	Inner *Iter

	// filter/map predicate or transform, called back into Pyro.
	Callback Value

	Exhausted bool
}

func NewVecIter(v *Vec) *Iter    { return &Iter{Kind: IterOverVec, Vec: v} }
func NewTupIter(t *Tup) *Iter    { return &Iter{Kind: IterOverTup, Tup: t} }
func NewQueueIter(q *Queue) *Iter {
	return &Iter{Kind: IterOverQueue, Queue: q}
}

func NewStringIter(kind IterKind, s *Str) *Iter {
	return &Iter{Kind: kind, Str: s}
}

func NewMapIter(kind IterKind, m *Map) *Iter {
	return &Iter{Kind: kind, MapSrc: m}
}

func NewRangeIter(start, stop, step int64) *Iter {
	return &Iter{Kind: IterRange, Index: int(start), RangeStop: stop, RangeStep: step}
}

func NewEnumerateIter(inner *Iter) *Iter {
	return &Iter{Kind: IterEnumerate, Inner: inner}
}

func NewFilterIter(inner *Iter, predicate Value) *Iter {
	return &Iter{Kind: IterFilter, Inner: inner, Callback: predicate}
}

func NewMapTransformIter(inner *Iter, transform Value) *Iter {
	return &Iter{Kind: IterMap, Inner: inner, Callback: transform}
}

func NewSkipFirstIter(inner *Iter, n int) *Iter {
	return &Iter{Kind: IterSkipFirst, Inner: inner, skipN: n}
}

func NewSkipLastIter(inner *Iter, n int) *Iter {
	return &Iter{Kind: IterSkipLast, Inner: inner, skipN: n}
}

func NewFileLinesIter(f *File) *Iter {
	return &Iter{Kind: IterFileLines, File: f}
}

func NewGenericNextIter(receiver Value) *Iter {
	return &Iter{Kind: IterGenericNext, Callback: receiver}
}

func (it *Iter) ObjKind() ObjKind { return ObjIter }

// done reports exhaustion as ok=false; the VM's GET_ITERATOR_NEXT turns
// that into a zero-length Err tuple (§4.3 glossary "Err").
func done() (Value, bool) { return Value{}, false }

// Next advances the iterator and returns its next value, or ok=false at
// exhaustion. vm is used only by the composed kinds (filter/map) that must
// call back into a Pyro callable; it is nil-safe for every other kind.
func (it *Iter) Next(vm NativeVM) (Value, bool) {
	if it.Exhausted {
		return done()
	}
	switch it.Kind {
	case IterOverVec:
		if it.Index >= it.Vec.Len() {
			it.Exhausted = true
			return done()
		}
		v, _ := it.Vec.Get(it.Index)
		it.Index++
		return v, true

	case IterOverTup:
		if it.Index >= it.Tup.Len() {
			it.Exhausted = true
			return done()
		}
		v := it.Tup.Elements[it.Index]
		it.Index++
		return v, true

	case IterOverQueue:
		v, ok := it.Queue.Dequeue()
		if !ok {
			it.Exhausted = true
			return done()
		}
		return v, true

	case IterOverStringBytes:
		b := it.Str.Bytes()
		if it.Index >= len(b) {
			it.Exhausted = true
			return done()
		}
		v := I64(int64(b[it.Index]))
		it.Index++
		return v, true

	case IterOverStringChars:
		b := it.Str.Bytes()
		if it.Index >= len(b) {
			it.Exhausted = true
			return done()
		}
		cp, size := utf8.DecodeRune(b[it.Index:])
		it.Index += size
		return Char(cp), true

	case IterOverStringGraphemes:
		b := it.Str.Bytes()
		if it.Index >= len(b) {
			it.Exhausted = true
			return done()
		}
		cluster, size := utf8.NextGrapheme(b[it.Index:])
		it.Index += size
		return FromObj(NewStr(cluster)), true

	case IterOverStringLines:
		b := it.Str.Bytes()
		if it.Index >= len(b) {
			it.Exhausted = true
			return done()
		}
		start := it.Index
		end := start
		for end < len(b) && b[end] != '\n' {
			end++
		}
		line := b[start:end]
		if len(line) > 0 && line[len(line)-1] == '\r' {
			line = line[:len(line)-1]
		}
		if end < len(b) {
			end++ // consume the newline
		}
		it.Index = end
		return FromObj(NewStr(append([]byte(nil), line...))), true

	case IterOverMapKeys, IterOverMapValues, IterOverMapEntries:
		return it.nextMapEntry()

	case IterRange:
		if it.RangeStep == 0 {
			it.Exhausted = true
			return done()
		}
		cur := int64(it.Index)
		if it.RangeStep > 0 {
			if cur >= it.RangeStop {
				it.Exhausted = true
				return done()
			}
		} else if cur <= it.RangeStop {
			it.Exhausted = true
			return done()
		}
		it.Index = int(cur + it.RangeStep)
		return I64(cur), true

	case IterEnumerate:
		v, ok := it.Inner.Next(vm)
		if !ok {
			it.Exhausted = true
			return done()
		}
		idx := it.Index
		it.Index++
		return FromObj(NewTup([]Value{I64(int64(idx)), v})), true

	case IterFilter:
		for {
			v, ok := it.Inner.Next(vm)
			if !ok {
				it.Exhausted = true
				return done()
			}
			result, panicVal := vm.Call(it.Callback, []Value{v})
			if panicVal != nil {
				it.Exhausted = true
				return done()
			}
			if result.IsTruthy() {
				return v, true
			}
		}

	case IterMap:
		v, ok := it.Inner.Next(vm)
		if !ok {
			it.Exhausted = true
			return done()
		}
		result, panicVal := vm.Call(it.Callback, []Value{v})
		if panicVal != nil {
			it.Exhausted = true
			return done()
		}
		return result, true

	case IterSkipFirst:
		for it.skipN > 0 {
			if _, ok := it.Inner.Next(vm); !ok {
				it.Exhausted = true
				return done()
			}
			it.skipN--
		}
		v, ok := it.Inner.Next(vm)
		if !ok {
			it.Exhausted = true
		}
		return v, ok

	case IterSkipLast:
		return it.nextSkipLast(vm)

	case IterFileLines:
		return it.nextFileLine()

	case IterGenericNext:
		result, panicVal := vm.Call(it.Callback, nil)
		if panicVal != nil || result.IsErrTuple() {
			it.Exhausted = true
			return done()
		}
		return result, true
	}
	return done()
}

func (it *Iter) nextMapEntry() (Value, bool) {
	count := 0
	var key, val Value
	found := false
	it.MapSrc.Entries(func(k, v Value) bool {
		if count == it.Index {
			key, val = k, v
			found = true
			return false
		}
		count++
		return true
	})
	if !found {
		it.Exhausted = true
		return done()
	}
	it.Index++
	switch it.Kind {
	case IterOverMapKeys:
		return key, true
	case IterOverMapValues:
		return val, true
	default:
		return FromObj(NewTup([]Value{key, val})), true
	}
}

// nextSkipLast buffers skipN+1 elements ahead so it can hold back the
// trailing N before the inner source is exhausted.
func (it *Iter) nextSkipLast(vm NativeVM) (Value, bool) {
	for len(it.skipBuf) <= it.skipN {
		v, ok := it.Inner.Next(vm)
		if !ok {
			break
		}
		it.skipBuf = append(it.skipBuf, v)
	}
	if len(it.skipBuf) <= it.skipN {
		it.Exhausted = true
		return done()
	}
	v := it.skipBuf[0]
	it.skipBuf = it.skipBuf[1:]
	next, ok := it.Inner.Next(vm)
	if ok {
		it.skipBuf = append(it.skipBuf, next)
	}
	return v, true
}

func (it *Iter) nextFileLine() (Value, bool) {
	var line []byte
	buf := make([]byte, 1)
	readAny := false
	for {
		n, err := it.File.Handle.Read(buf)
		if n == 1 {
			readAny = true
			if buf[0] == '\n' {
				break
			}
			line = append(line, buf[0])
		}
		if err != nil {
			break
		}
	}
	if !readAny {
		it.Exhausted = true
		return done()
	}
	if len(line) > 0 && line[len(line)-1] == '\r' {
		line = line[:len(line)-1]
	}
	return FromObj(NewStr(line)), true
}
