//go:build go1.21

package arena

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewChunkBounds(t *testing.T) {
	t.Parallel()

	c := newChunk(nil, 256, 8)

	assert.True(t, c.start <= c.finger)
	assert.Equal(t, c.end, c.finger)
	assert.True(t, c.finger <= c.end)
	assert.GreaterOrEqual(t, c.capacity(), 256)
	assert.True(t, c.isEmpty())
	assert.False(t, c.isFull())
	assert.Equal(t, uintptr(0), uintptr(c.start)%minChunkAlign)
}

func TestChunkAllocLayoutBumpsDownward(t *testing.T) {
	t.Parallel()

	c := newChunk(nil, 256, 8)
	before := c.finger

	p, ok := c.allocLayout(16, 8)
	assert.True(t, ok)
	assert.Equal(t, before.ByteAdd(-16), p)
	assert.Equal(t, p, c.finger)
	assert.Equal(t, 16, c.used())
}

func TestChunkAllocLayoutZeroSizeDoesNotMove(t *testing.T) {
	t.Parallel()

	c := newChunk(nil, 256, 8)
	_, _ = c.allocLayout(7, 1)
	before := c.finger

	p, ok := c.allocLayout(0, 8)
	assert.True(t, ok)
	assert.Equal(t, before, c.finger, "zero-size alloc must not move the finger")
	assert.Equal(t, uintptr(0), uintptr(p)%8, "zero-size alloc must still be aligned")
}

func TestChunkAllocLayoutFailsWhenExhausted(t *testing.T) {
	t.Parallel()

	c := newChunk(nil, 32, 8)

	_, ok := c.allocLayout(1000, 8)
	assert.False(t, ok)
	assert.True(t, c.isEmpty(), "a failed allocation must not move the finger")
}

func TestChunkResetReclaimsSpace(t *testing.T) {
	t.Parallel()

	c := newChunk(nil, 64, 8)
	_, ok := c.allocLayout(64, 8)
	assert.True(t, ok)
	assert.True(t, c.isFull())

	c.reset()
	assert.True(t, c.isEmpty())
}

func TestChunkRegrowPreservesIdentity(t *testing.T) {
	t.Parallel()

	c := newChunk(nil, 32, 8)
	c.previous = newChunk(nil, 32, 8)
	c.next = newChunk(nil, 32, 8)
	prev, next := c.previous, c.next

	c.regrow(4096, 8)

	assert.GreaterOrEqual(t, c.capacity(), 4096)
	assert.True(t, c.isEmpty())
	assert.Same(t, prev, c.previous, "regrow must not disturb sibling links")
	assert.Same(t, next, c.next)
}

func TestSuggestChunkSize(t *testing.T) {
	t.Parallel()

	assert.Equal(t, defaultChunkSize, suggestChunkSize(0))
	assert.Equal(t, 1024, suggestChunkSize(1000))
	assert.Equal(t, 1024, suggestChunkSize(1024))
	assert.Equal(t, 2048, suggestChunkSize(1025))
}
