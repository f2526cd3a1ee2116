package object

import "math"

// fnv1a64 hashes a byte slice with 64-bit FNV-1a, matching the hashing
// scheme used by original_source/src/vm/utf8.c for interned string
// construction — grounded so Pyro's intern pool agrees with the reference
// implementation's hash distribution.
func fnv1a64(data []byte) uint64 {
	const offset = 14695981039346656037
	const prime = 1099511628211
	h := uint64(offset)
	for _, b := range data {
		h ^= uint64(b)
		h *= prime
	}
	return h
}

// Hash computes a Value's hash, honoring the universal invariant (§8 #2)
// that v == w implies Hash(v) == Hash(w), including across I64/F64/Char.
func Hash(v Value) uint64 {
	switch v.kind {
	case KindNull:
		return 0x9e3779b97f4a7c15
	case KindBool:
		if v.AsBool() {
			return 1
		}
		return 0
	case KindI64:
		return hashI64(v.AsI64())
	case KindF64:
		f := v.AsF64()
		if f == math.Trunc(f) && !math.IsInf(f, 0) && f >= math.MinInt64 && f <= math.MaxInt64 {
			return hashI64(int64(f))
		}
		bits := math.Float64bits(f)
		return hashI64(int64(bits))
	case KindChar:
		return hashI64(int64(v.AsChar()))
	case KindObj:
		return hashObj(v.obj)
	default:
		return 0
	}
}

func hashI64(i int64) uint64 {
	u := uint64(i)
	u = (u ^ (u >> 30)) * 0xbf58476d1ce4e5b9
	u = (u ^ (u >> 27)) * 0x94d049bb133111eb
	u = u ^ (u >> 31)
	return u
}

func hashObj(o Obj) uint64 {
	switch t := o.(type) {
	case *Str:
		return t.hash
	case *Tup:
		h := uint64(0x51ed270b)
		for _, el := range t.Elements {
			h ^= Hash(el)
			h *= 1099511628211
		}
		return h
	default:
		// Reference identity: every other heap kind hashes (and equals) by
		// pointer, matching the reference implementation's default of
		// falling back to address-based equality absent an override.
		return identityHash(o)
	}
}
