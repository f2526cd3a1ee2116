package utf8

import "github.com/rivo/uniseg"

// NextGrapheme returns the first extended grapheme cluster in b and its
// byte length, using uniseg's UAX #29 implementation. Pyro's string-by-rune
// iteration (for ch in s:chars()) walks single codepoints via DecodeRune;
// grapheme-aware iteration (for g in s:graphemes()) calls here instead, so
// combining marks and multi-codepoint emoji stay a single step (§4.3, §7).
func NextGrapheme(b []byte) (cluster []byte, size int) {
	if len(b) == 0 {
		return nil, 0
	}
	c, rest, _, _ := uniseg.FirstGraphemeCluster(b, -1)
	_ = rest
	return c, len(c)
}

// GraphemeCount returns the number of extended grapheme clusters in b.
func GraphemeCount(b []byte) int {
	n := 0
	state := -1
	for len(b) > 0 {
		var c []byte
		c, b, _, state = uniseg.FirstGraphemeCluster(b, state)
		_ = c
		n++
	}
	return n
}
