package genotype

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBits(t *testing.T) {
	words := make([]uint64, 4)

	Set(words, 0, 0)
	Set(words, 63, 0)
	Set(words, 64, 0)
	Set(words, 1, 2)
	assert.Equal(t, uint64(1|1<<63), words[0])
	assert.Equal(t, uint64(1), words[1])
	assert.Equal(t, uint64(2), words[2])

	assert.True(t, Get(words, 64, 0))
	assert.True(t, Get(words, 1, 2))
	assert.False(t, Get(words, 2, 2))

	Clear(words, 63, 0)
	assert.False(t, Get(words, 63, 0))

	Flip(words, 5, 3)
	assert.True(t, Get(words, 5, 3))
	Flip(words, 5, 3)
	assert.False(t, Get(words, 5, 3))

	assert.Equal(t, "{0,64}", String(words, 0, 2))
	assert.Equal(t, "{1}", String(words, 2, 1))
	assert.Equal(t, "{}", String(words, 3, 1))
}

func TestIntersection(t *testing.T) {
	a := []uint64{0b1011, 0xff}
	b := []uint64{0b0011, 0x0f}

	assert.True(t, Intersects(a, b))
	assert.False(t, Intersects([]uint64{1}, []uint64{2}))
	assert.Equal(t, 6, Intersection(a, b))

	flat := []uint64{0, 0, 0b1011, 0xff}
	assert.Equal(t, 6, IntersectionAt(flat, b, 2, 0, 2))
	assert.Equal(t, 2, IntersectionAt(flat, b, 2, 0, 1))
}

func TestWords(t *testing.T) {
	assert.Equal(t, 0, Words(0))
	assert.Equal(t, 1, Words(1))
	assert.Equal(t, 1, Words(64))
	assert.Equal(t, 2, Words(65))
}
