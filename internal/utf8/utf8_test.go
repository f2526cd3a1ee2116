package utf8

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCodepointASCII(t *testing.T) {
	cp, size, ok := ReadCodepoint([]byte("A"))
	require.True(t, ok)
	assert.Equal(t, uint32('A'), cp)
	assert.Equal(t, 1, size)
}

func TestReadCodepointRejectsOverlongEncoding(t *testing.T) {
	// 0xC0 0x80 is an overlong two-byte encoding of NUL.
	_, _, ok := ReadCodepoint([]byte{0xC0, 0x80})
	assert.False(t, ok)
}

func TestReadCodepointRejectsSurrogateHalf(t *testing.T) {
	// 0xED 0xA0 0x80 encodes U+D800, a UTF-16 surrogate half.
	_, _, ok := ReadCodepoint([]byte{0xED, 0xA0, 0x80})
	assert.False(t, ok)
}

func TestReadCodepointRejectsBeyondMaxCodepoint(t *testing.T) {
	// 0xF4 0x90 0x80 0x80 encodes U+110000, one past U+10FFFF.
	_, _, ok := ReadCodepoint([]byte{0xF4, 0x90, 0x80, 0x80})
	assert.False(t, ok)
}

func TestWriteCodepointRoundTripsThroughReadCodepoint(t *testing.T) {
	for _, cp := range []uint32{'h', 0x00E9, 0x1F600, 0x10FFFF} {
		buf := WriteCodepoint(nil, cp)
		got, size, ok := ReadCodepoint(buf)
		require.True(t, ok)
		assert.Equal(t, cp, got)
		assert.Equal(t, len(buf), size)
	}
}

func TestDecodeRuneFallsBackToReplacementCharacter(t *testing.T) {
	cp, size := DecodeRune([]byte{0xFF})
	assert.Equal(t, uint32(0xFFFD), cp)
	assert.Equal(t, 1, size)
}

// eAcute is U+00E9 (LATIN SMALL LETTER E WITH ACUTE), precomposed, encoded
// by hand to avoid depending on the source file's own literal encoding.
func eAcute() []byte { return WriteCodepoint(nil, 0x00E9) }

// eCombining is "e" followed by U+0301 COMBINING ACUTE ACCENT: the same
// visual character as eAcute but as two codepoints forming one grapheme.
func eCombining() []byte {
	b := []byte{'e'}
	return WriteCodepoint(b, 0x0301)
}

func TestIsValidAcceptsMixedWidthString(t *testing.T) {
	var b []byte
	b = append(b, "hello"...)
	b = append(b, eAcute()...)
	b = append(b, WriteCodepoint(nil, 0x4E16)...)   // CJK 世
	b = append(b, WriteCodepoint(nil, 0x1F600)...)  // emoji
	assert.True(t, IsValid(b))
}

func TestIsValidRejectsTruncatedMultiByteSequence(t *testing.T) {
	assert.False(t, IsValid([]byte{0xE4, 0xB8}))
}

func TestCodepointCountCountsCodepointsNotBytes(t *testing.T) {
	var b []byte
	b = append(b, "h"...)
	b = append(b, eAcute()...)
	b = append(b, "llo"...)
	assert.Equal(t, 6, len(b))
	assert.Equal(t, 5, CodepointCount(b))
}

func TestContainsCodepointFindsNonASCIIValue(t *testing.T) {
	var b []byte
	b = append(b, "h"...)
	b = append(b, eAcute()...)
	b = append(b, "llo"...)
	assert.True(t, ContainsCodepoint(b, 0x00E9))
	assert.False(t, ContainsCodepoint(b, 0x1F600))
}

func TestGraphemeCountTreatsCombiningMarkAsOneCluster(t *testing.T) {
	combining := eCombining()
	assert.Equal(t, 2, CodepointCount(combining))
	assert.Equal(t, 1, GraphemeCount(combining))
}

func TestNextGraphemeReturnsFirstClusterAndItsSize(t *testing.T) {
	var b []byte
	b = append(b, eCombining()...)
	b = append(b, "llo"...)
	cluster, size := NextGrapheme(b)
	assert.Equal(t, eCombining(), cluster)
	assert.Equal(t, len(eCombining()), size)
}

func TestNextGraphemeOnEmptyInput(t *testing.T) {
	cluster, size := NextGrapheme(nil)
	assert.Nil(t, cluster)
	assert.Equal(t, 0, size)
}
