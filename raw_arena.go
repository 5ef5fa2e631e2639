//go:build go1.21

// Package arena implements a bump-allocation memory arena: a pool that
// hands out raw, uninitialized memory from large backing chunks by
// advancing a single finger, rather than calling into the allocator for
// every object.
//
// RawArena is the untyped core. Allocator wraps it with the typed,
// generic allocation surface most callers want. Frame and Box layer
// scoped and owned-pointer discipline on top of that. Vec is a growable,
// arena-backed sequence. SharedArena and ThreadAllocator let multiple
// goroutines share a pool of arenas safely.
package arena

import (
	"math"

	"github.com/gobump/arena/internal/debug"
	"github.com/gobump/arena/internal/layout"
	"github.com/gobump/arena/internal/xaddr"
)

// defaultChunkSize is the capacity of the first chunk an arena allocates
// when it has never been given an explicit capacity hint.
const defaultChunkSize = 1024

// RawArena is the untyped bump allocator at the bottom of this package.
// It hands out raw, unaligned-checked memory and never initializes or
// drops anything; Allocator, Box, and Vec build typed safety on top of
// it.
//
// The zero value is a valid, empty arena: the first chunk is allocated
// lazily on the first call to AllocLayout.
type RawArena struct {
	_ xaddr.NoCopy

	// current is the chunk the next allocation will be carved from.
	// Chunks reachable from current via .previous are older and may be
	// partially or fully used; chunks reachable via .next are newer,
	// were allocated after current at some point in the past, and are
	// always logically empty (retained for reuse after a restore).
	current *chunk
}

// NewRawArena returns an empty arena. It does not allocate any chunk
// memory until the first allocation is requested.
func NewRawArena() *RawArena {
	return &RawArena{}
}

// NewRawArenaWithCapacity returns an empty arena with a first chunk
// already sized to hold at least capacity bytes, to avoid the first
// allocation paying for a chunk that is immediately too small.
func NewRawArenaWithCapacity(capacity int) *RawArena {
	a := &RawArena{}

	if capacity > 0 {
		a.current = newChunk(a, layout.RoundUp(capacity, 16), minChunkAlign)
	}

	return a
}

// State is an opaque snapshot of a RawArena's allocation frontier, taken
// by CurrentState and later passed to RestoreState to roll the arena
// back to that point.
//
// The zero State represents an arena that had not yet allocated any
// chunk when the snapshot was taken.
type State struct {
	chunk  *chunk
	finger xaddr.Addr[byte]
}

// CurrentState captures the arena's allocation frontier: the chunk
// currently being bumped and its finger. Every allocation made after
// this call, and before a matching RestoreState, is undone by that
// restore.
func (a *RawArena) CurrentState() State {
	if a.current == nil {
		return State{}
	}

	return State{chunk: a.current, finger: a.current.finger}
}

// RestoreState rewinds the arena to a previously captured State,
// freeing everything allocated since. It only ever touches the snapshot
// chunk's finger and the arena's current pointer: chunks further down
// the chain that were created after the snapshot are left exactly as
// they are, remaining linked as next-chunks. Their fingers are
// re-cleared lazily, the next time the arena needs to grow into them --
// see allocSlow.
//
// Restoring the zero State empties the arena's first chunk and makes it
// current again, so every chunk is kept for reuse; CurrentState then
// reports that first chunk rather than the zero State.
func (a *RawArena) RestoreState(s State) {
	if s.chunk == nil {
		if a.current == nil {
			return
		}

		head := a.current
		for head.previous != nil {
			head = head.previous
		}

		head.reset()
		a.current = head

		return
	}

	s.chunk.finger = s.finger
	a.current = s.chunk
}

// Reset discards every allocation the arena has ever made, retaining
// all chunk memory for reuse. Unlike RestoreState, Reset walks the
// entire chunk chain -- both backward through previous and forward
// through next from wherever current happens to sit -- so no chunk is
// left half-used. Reset is idempotent: calling it twice in a row is
// the same as calling it once.
func (a *RawArena) Reset() {
	if a.current == nil {
		return
	}

	head := a.current
	for head.previous != nil {
		head = head.previous
	}

	for c := head; c != nil; c = c.next {
		c.reset()
	}

	a.current = head
}

// AllocLayout reserves size bytes aligned to align and returns a
// pointer to them. The memory is not zeroed or otherwise initialized.
//
// align must be a power of two. size may be zero, in which case a
// valid, non-null, correctly aligned pointer is returned but no memory
// is actually reserved.
func (a *RawArena) AllocLayout(size, align int) *byte {
	if size < 0 || align <= 0 || !layout.IsPow2(align) {
		panic(&OOMError{Size: size, Align: align})
	}

	debug.Assert(align > 0 && layout.IsPow2(align), "alignment must be a power of two, got %d", align)
	debug.Assert(size >= 0, "size must not be negative, got %d", size)

	if a.current != nil {
		if p, ok := a.current.allocLayout(size, align); ok {
			debug.Log(nil, "alloc", "size=%d align=%d -> %v", size, align, p)
			return p.AssertValid()
		}
	}

	p := a.allocSlow(size, align)
	debug.Log(nil, "alloc.slow", "size=%d align=%d -> %v", size, align, p)

	return p.AssertValid()
}

// allocSlow handles the case where the current chunk (if any) does not
// have room for the requested allocation. It first tries to reuse a
// cached next-chunk left over from a prior restore, growing it in place
// if it is itself too small, and otherwise allocates a brand-new chunk
// at roughly double the previous chunk's capacity.
func (a *RawArena) allocSlow(size, align int) xaddr.Addr[byte] {
	if a.current != nil && a.current.next != nil {
		next := a.current.next
		next.reset()
		a.current = next

		if p, ok := next.allocLayout(size, align); ok {
			return p
		}

		needed := neededCapacity(size, align)
		next.regrow(layout.RoundUp(max(needed, saturatingDouble(next.capacity())), 16), align)

		p, ok := next.allocLayout(size, align)
		debug.Assert(ok, "chunk grown to fit but allocation still failed")

		return p
	}

	var base int
	if a.current != nil {
		base = a.current.capacity()
	}

	newCap := saturatingDouble(base)
	if newCap == 0 {
		newCap = defaultChunkSize
	}

	if needed := neededCapacity(size, align); needed > newCap {
		newCap = needed
	}

	newCap = layout.RoundUp(newCap, 16)

	nc := newChunk(a, newCap, align)
	nc.previous = a.current

	if a.current != nil {
		a.current.next = nc
	}

	a.current = nc

	p, ok := nc.allocLayout(size, align)
	debug.Assert(ok, "freshly allocated chunk failed to satisfy allocation")

	return p
}

// neededCapacity returns the smallest chunk capacity guaranteed to fit
// one allocation of size bytes aligned to align, accounting for the
// worst-case alignment padding a fresh chunk might introduce.
func neededCapacity(size, align int) int {
	if size > math.MaxInt-2*align {
		panic(&OOMError{Size: size, Align: align})
	}

	return layout.RoundUp(size, align) + align
}

// saturatingDouble returns n*2, or math.MaxInt if that would overflow.
func saturatingDouble(n int) int {
	if n > math.MaxInt/2 {
		return math.MaxInt
	}

	return n * 2
}

// Realloc attempts to resize the allocation at ptr, which must have
// been most recently returned by AllocLayout or Realloc with the given
// oldSize and align, to newSize bytes.
//
// It returns the new pointer to use, and, if the allocation had to move
// or shrink in place, the now-freed old pointer as a second return
// value (nil otherwise). When the old and new pointer differ because a
// fresh allocation was made, the overlapping prefix of the old data is
// copied to the new location; a caller growing an allocation therefore
// never needs to copy data itself. Shrinking the topmost allocation
// never copies: the returned pointer is simply offset from the original
// by the size delta, so it addresses the old allocation's trailing
// bytes, not its prefix, and the original pointer must be treated as
// invalid once Realloc returns. Shrinking an allocation that is not
// topmost makes a fresh allocation and copies the prefix that fits.
func (a *RawArena) Realloc(ptr *byte, oldSize, align, newSize int) (newPtr, freed *byte) {
	debug.Assert(align > 0 && layout.IsPow2(align), "alignment must be a power of two, got %d", align)

	paddedOld := layout.RoundUp(oldSize, align)
	paddedNew := layout.RoundUp(newSize, align)

	if a.current != nil && xaddr.AddrOf(ptr) == a.current.finger {
		if paddedNew <= paddedOld {
			delta := paddedOld - paddedNew
			newFinger := a.current.finger.ByteAdd(delta)
			a.current.finger = newFinger

			debug.Log(nil, "realloc.shrink", "old=%v new=%v", ptr, newFinger)

			return newFinger.AssertValid(), ptr
		}

		delta := paddedNew - paddedOld
		candidate := a.current.finger.ByteAdd(-delta)

		if candidate >= a.current.start {
			a.current.finger = candidate

			newP := candidate.AssertValid()
			if oldSize > 0 {
				xaddr.Copy(newP, ptr, oldSize)
			}

			debug.Log(nil, "realloc.grow.inplace", "old=%v new=%v", ptr, candidate)

			return newP, nil
		}
	}

	newP := a.AllocLayout(newSize, align)

	copySize := oldSize
	if newSize < copySize {
		copySize = newSize
	}

	if copySize > 0 {
		xaddr.Copy(newP, ptr, copySize)
	}

	debug.Log(nil, "realloc.displaced", "old=%v new=%v copied=%d", ptr, newP, copySize)

	return newP, ptr
}
