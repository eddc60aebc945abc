package genotype

import (
	"math/bits"
	"strconv"
	"strings"
)

// Bit operations over fixed-size []uint64 bit sets. The offset variants
// address a W-word row inside a larger flat slice.

const (
	addressBitsPerWord = 6
	bitsPerWord        = 1 << addressBitsPerWord
)

// Words returns the number of words needed to hold n bits.
func Words(n int) int {
	return (n + bitsPerWord - 1) >> addressBitsPerWord
}

// Set sets bit to 1 in the row starting at word offset.
func Set(words []uint64, bit, offset int) {
	words[offset+bit>>addressBitsPerWord] |= 1 << (uint(bit) & (bitsPerWord - 1))
}

// Clear sets bit to 0 in the row starting at word offset.
func Clear(words []uint64, bit, offset int) {
	words[offset+bit>>addressBitsPerWord] &^= 1 << (uint(bit) & (bitsPerWord - 1))
}

// Get reports whether bit is set in the row starting at word offset.
func Get(words []uint64, bit, offset int) bool {
	return words[offset+bit>>addressBitsPerWord]&(1<<(uint(bit)&(bitsPerWord-1))) != 0
}

// Flip inverts bit in the row starting at word offset.
func Flip(words []uint64, bit, offset int) {
	words[offset+bit>>addressBitsPerWord] ^= 1 << (uint(bit) & (bitsPerWord - 1))
}

// Intersects reports whether a and b share any set bit.
func Intersects(a, b []uint64) bool {
	for w := range a {
		if a[w]&b[w] != 0 {
			return true
		}
	}
	return false
}

// Intersection counts the bits set in both a and b.
func Intersection(a, b []uint64) int {
	n := 0
	for w := range a {
		n += bits.OnesCount64(a[w] & b[w])
	}
	return n
}

// IntersectionAt counts the bits set in both a[offsetA:offsetA+length]
// and b[offsetB:offsetB+length].
func IntersectionAt(a, b []uint64, offsetA, offsetB, length int) int {
	n := 0
	for w := 0; w < length; w++ {
		n += bits.OnesCount64(a[offsetA+w] & b[offsetB+w])
	}
	return n
}

// String formats the set bits of a length-word row as "{1,5,9}".
func String(words []uint64, offset, length int) string {
	var b strings.Builder
	b.WriteByte('{')
	first := true
	for bit := 0; bit < length*bitsPerWord; bit++ {
		if !Get(words, bit, offset) {
			continue
		}
		if !first {
			b.WriteByte(',')
		}
		first = false
		b.WriteString(strconv.Itoa(bit))
	}
	b.WriteByte('}')
	return b.String()
}
