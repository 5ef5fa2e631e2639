//go:build go1.21

package arena

import (
	"github.com/gobump/arena/internal/debug"
	"github.com/gobump/arena/internal/xaddr"
)

// minChunkAlign is the minimum alignment guaranteed for every chunk's start
// address, per spec: "chunk alignment >= 16 and >= alignof(header)".
const minChunkAlign = 16

// chunk is a contiguous region of arena memory, bump-allocated downward:
// finger starts at end and decreases toward start as objects are carved
// out of it.
//
// Unlike the teacher's Arena, which bumps upward and stores its header
// interleaved with its content so a single live interior pointer keeps the
// whole chunk graph alive for the GC, chunk keeps its header and its
// storage as two ordinary Go values. That is sufficient here because
// arena-allocated pointers are only ever valid while the owning *RawArena
// (or an Allocator/Frame/Vec/Box derived from it) is itself still
// reachable -- exactly the caller responsibility spec.md S7 already
// assigns to "undefined behavior contracts". See DESIGN.md for the full
// rationale.
type chunk struct {
	_ xaddr.NoCopy

	previous *chunk
	next     *chunk

	owner *RawArena // retained for debug logging only

	storage []byte
	start   xaddr.Addr[byte]
	end     xaddr.Addr[byte]
	finger  xaddr.Addr[byte]
}

// newChunk allocates a fresh chunk able to hold at least capacity bytes,
// aligned to at least minChunkAlign (and to align, if that is larger).
func newChunk(owner *RawArena, capacity, align int) *chunk {
	if align < minChunkAlign {
		align = minChunkAlign
	}

	storage := make([]byte, capacity+align)
	start := xaddr.AddrOf(&storage[0]).RoundUpTo(align)
	end := start.Add(capacity)

	c := &chunk{
		owner:   owner,
		storage: storage,
		start:   start,
		end:     end,
		finger:  end,
	}

	debug.Log(nil, "chunk.new", "start=%v end=%v cap=%d", start, end, capacity)

	return c
}

// capacity returns the total number of bytes this chunk can hold.
func (c *chunk) capacity() int {
	return c.end.ByteSub(c.start)
}

// used returns the number of bytes currently allocated in this chunk.
func (c *chunk) used() int {
	return c.end.ByteSub(c.finger)
}

// isEmpty reports whether the chunk has no live allocations.
func (c *chunk) isEmpty() bool {
	return c.finger == c.end
}

// isFull reports whether the chunk has no remaining capacity.
func (c *chunk) isFull() bool {
	return c.finger == c.start
}

// reset marks the chunk as empty, discarding all of its allocations.
func (c *chunk) reset() {
	c.finger = c.end
}

// allocLayout attempts to carve size bytes, aligned to align, out of this
// chunk by bumping the finger downward. Reports false if the chunk does
// not have enough remaining capacity.
//
// Zero-sized requests never move the finger: the returned pointer is the
// finger rounded up to align, which is always a valid, non-null, aligned
// address since start <= finger <= end always holds.
func (c *chunk) allocLayout(size, align int) (xaddr.Addr[byte], bool) {
	if size == 0 {
		return c.finger.RoundUpTo(align), true
	}

	f := c.finger.ByteAdd(-size).RoundDownTo(align)
	if f < c.start {
		return 0, false
	}

	c.finger = f

	return f, true
}

// regrow replaces this chunk's backing storage with a larger one able to
// hold at least capacity bytes, preserving the chunk's identity (its
// previous/next links are untouched -- this is the identity-preserving
// variant of the cached-next-chunk-too-small case from spec.md S4.1/S9:
// because Go chunks are referenced by pointer rather than by address, a
// regrow never requires patching any neighboring chunk's links).
//
// regrow must only be called on an empty chunk: its prior contents are
// discarded.
func (c *chunk) regrow(capacity, align int) {
	debug.Assert(c.isEmpty(), "regrow called on a chunk with live allocations")

	if align < minChunkAlign {
		align = minChunkAlign
	}

	storage := make([]byte, capacity+align)
	start := xaddr.AddrOf(&storage[0]).RoundUpTo(align)
	end := start.Add(capacity)

	c.storage = storage
	c.start = start
	c.end = end
	c.finger = end

	debug.Log(nil, "chunk.regrow", "start=%v end=%v cap=%d", start, end, capacity)
}

// suggestChunkSize rounds bytes up to the next power of two, or returns
// defaultChunkSize if bytes is zero or negative.
func suggestChunkSize(bytes int) int {
	if bytes <= 0 {
		return defaultChunkSize
	}

	n := 1
	for n < bytes {
		n <<= 1
	}

	return n
}
