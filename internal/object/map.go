package object

// mapEntry holds one (possibly tombstoned) key/value pair in the dense
// entry array. A tombstoned entry carries Tombstone() in Key.
type mapEntry struct {
	Key   Value
	Value Value
}

const (
	mapEmpty     int64 = -1
	mapTombstone int64 = -2
)

// maxLoad is the index array's load threshold as a fraction of capacity
// (§3 invariant 3 / original_source/src/vm/pyro.h PYRO_MAX_HASHMAP_LOAD).
const maxLoad = 0.5

// EqualFunc and HashFunc let the VM plug in operator-overridable equality
// for keys whose class defines $op_binary_equals_equals, per §4.3's rule
// that hash equality must agree with user-visible ==. Built-in maps default
// to the primitive rules in equality.go/hash.go.
type EqualFunc func(a, b Value) bool
type HashFunc func(v Value) uint64

// Map is Pyro's ordered, open-addressed map (§4.3). Two flavors share this
// type: IsSet (a Set view that ignores values) and IsWeakRef (the intern
// pool's weak-reference flavor, pruned by the collector instead of traced).
type Map struct {
	Header
	entryArray        []mapEntry
	liveEntryCount    int
	indexArray        []int64
	indexArrayCount   int // includes tombstones, per §9 open-question resolution
	maxLoadThreshold  int
	IsSet             bool
	IsWeakRef         bool
	Eq                EqualFunc
	HashOf            HashFunc
}

func NewMap() *Map {
	return &Map{Eq: Eq, HashOf: Hash}
}

func NewSet() *Map {
	m := NewMap()
	m.IsSet = true
	return m
}

func NewWeakRefMap() *Map {
	m := NewMap()
	m.IsWeakRef = true
	return m
}

func (m *Map) ObjKind() ObjKind { return ObjMap }

// Count returns the number of live (non-tombstoned) entries (§8 property 3).
func (m *Map) Count() int { return m.liveEntryCount }

func growCapacity(cap int) int {
	if cap < 8 {
		return 8
	}
	return cap * 2
}

// findSlot returns the index-array slot for key: either an empty slot
// where it should be inserted, a tombstoned slot, or the slot already
// holding its entry index. Mirrors original_source/src/vm/objects.c
// find_entry's linear probing.
func (m *Map) findSlot(key Value) int {
	capacity := len(m.indexArray)
	i := int(m.HashOf(key) & uint64(capacity-1))
	firstTombstone := -1
	for {
		slot := m.indexArray[i]
		switch slot {
		case mapEmpty:
			if firstTombstone != -1 {
				return firstTombstone
			}
			return i
		case mapTombstone:
			if firstTombstone == -1 {
				firstTombstone = i
			}
		default:
			if m.Eq(key, m.entryArray[slot].Key) {
				return i
			}
		}
		i = (i + 1) & (capacity - 1)
	}
}

func (m *Map) resizeIndexArray() {
	newCap := growCapacity(len(m.indexArray))
	newIndex := make([]int64, newCap)
	for i := range newIndex {
		newIndex[i] = mapEmpty
	}
	oldIndex := m.indexArray
	m.indexArray = newIndex
	m.indexArrayCount = m.liveEntryCount
	m.maxLoadThreshold = int(float64(newCap) * maxLoad)
	_ = oldIndex

	// Compact the entry array in place, dropping tombstones, while
	// rebuilding the index array — the reference implementation does both
	// in the same pass whenever the index array is resized (§3 invariant
	// 2: "entry array is compacted only when the index array is resized").
	if len(m.entryArray) > m.liveEntryCount {
		dst := 0
		for src := 0; src < len(m.entryArray); src++ {
			if m.entryArray[src].Key.IsTombstone() {
				continue
			}
			if dst != src {
				m.entryArray[dst] = m.entryArray[src]
			}
			slot := m.findSlot(m.entryArray[dst].Key)
			m.indexArray[slot] = int64(dst)
			dst++
		}
		m.entryArray = m.entryArray[:dst]
	} else {
		for i, e := range m.entryArray {
			slot := m.findSlot(e.Key)
			m.indexArray[slot] = int64(i)
		}
	}
}

func (m *Map) appendEntry(key, value Value) int {
	m.entryArray = append(m.entryArray, mapEntry{Key: key, Value: value})
	return len(m.entryArray) - 1
}

// Set inserts or overwrites key => value. Resizes the index array (and
// compacts the entry array) when index_array_count, including tombstones,
// would breach the 50% load threshold (§3 invariant 3, §9 open question:
// the numerator is the tombstone-inclusive count, not the live count).
func (m *Map) Set(key, value Value) {
	if len(m.indexArray) == 0 {
		m.resizeIndexArray()
	}

	slot := m.findSlot(key)
	switch m.indexArray[slot] {
	case mapEmpty:
		if m.indexArrayCount == m.maxLoadThreshold {
			m.resizeIndexArray()
			slot = m.findSlot(key)
		}
		idx := m.appendEntry(key, value)
		m.indexArray[slot] = int64(idx)
		m.liveEntryCount++
		m.indexArrayCount++
	case mapTombstone:
		idx := m.appendEntry(key, value)
		m.indexArray[slot] = int64(idx)
		m.liveEntryCount++
	default:
		idx := m.indexArray[slot]
		m.entryArray[idx].Value = value
	}
}

func (m *Map) Get(key Value) (Value, bool) {
	if m.liveEntryCount == 0 {
		return Value{}, false
	}
	slot := m.findSlot(key)
	idx := m.indexArray[slot]
	if idx == mapEmpty || idx == mapTombstone {
		return Value{}, false
	}
	return m.entryArray[idx].Value, true
}

func (m *Map) Contains(key Value) bool {
	_, ok := m.Get(key)
	return ok
}

// Remove tombstones both the index slot and the entry's key slot, so a
// removed key stays visible to the GC tracer (and to compaction) until the
// next resize — matching ObjMap_remove in the reference implementation.
func (m *Map) Remove(key Value) bool {
	if m.liveEntryCount == 0 {
		return false
	}
	slot := m.findSlot(key)
	idx := m.indexArray[slot]
	if idx == mapEmpty || idx == mapTombstone {
		return false
	}
	m.entryArray[idx].Key = Tombstone()
	m.indexArray[slot] = mapTombstone
	m.liveEntryCount--
	return true
}

// Entries iterates live entries in insertion order (§3 invariant 2, §8
// property 3), skipping tombstones.
func (m *Map) Entries(fn func(key, value Value) bool) {
	for _, e := range m.entryArray {
		if e.Key.IsTombstone() {
			continue
		}
		if !fn(e.Key, e.Value) {
			return
		}
	}
}

func (m *Map) Copy() *Map {
	cp := &Map{
		IsSet:     m.IsSet,
		IsWeakRef: m.IsWeakRef,
		Eq:        m.Eq,
		HashOf:    m.HashOf,
	}
	m.Entries(func(k, v Value) bool {
		cp.Set(k, v)
		return true
	})
	return cp
}

// PruneDead is invoked by the collector on weak-reference maps (the string
// intern pool) after marking but before sweep clears mark bits, to drop
// entries whose object target didn't survive the trace — weak references
// aren't traced, so their targets can die unmarked
// (§4.2 "Weak references are not traced").
func (m *Map) PruneDead(isAlive func(Value) bool) {
	var dead []Value
	m.Entries(func(k, _ Value) bool {
		if !isAlive(k) {
			dead = append(dead, k)
		}
		return true
	})
	for _, k := range dead {
		m.Remove(k)
	}
}
