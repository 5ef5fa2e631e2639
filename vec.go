//go:build go1.21

package arena

import (
	"unsafe"

	"github.com/gobump/arena/internal/layout"
)

// Vec is a growable, arena-backed sequence, Go's analogue of the
// upstream crate's Vec<T, A>.
//
// Vec deliberately does not grow itself with a doubling factor the way
// a slice append would: it asks the underlying arena for exactly one
// more element's worth of capacity on every Push. As long as the Vec
// remains the topmost allocation in its arena (nothing else has
// allocated since its last growth), the arena satisfies that request in
// place, without reserving new space elsewhere; because the arena bumps
// downward, that in-place growth still copies the existing elements down
// to the new base, so each growth costs O(n). Once some other allocation
// has been made on top of the Vec's storage, growth makes a fresh
// allocation and copies into it, exactly as documented for
// RawArena.Realloc.
//
// The zero Vec is not usable; construct one with NewVec or
// NewVecWithCapacity.
type Vec[T any] struct {
	ptr   *T
	cap   int
	len   int
	alloc *Allocator
}

// NewVec returns an empty Vec backed by a.
func NewVec[T any](a *Allocator) *Vec[T] {
	return &Vec[T]{alloc: a}
}

// NewVecWithCapacity returns an empty Vec backed by a, with storage
// already reserved for at least capacity elements.
func NewVecWithCapacity[T any](a *Allocator, capacity int) *Vec[T] {
	v := &Vec[T]{alloc: a}
	if capacity > 0 {
		v.ReserveExact(capacity)
	}

	return v
}

// Len returns the number of elements currently in v.
func (v *Vec[T]) Len() int { return v.len }

// Cap returns the number of elements v can currently hold without
// growing.
func (v *Vec[T]) Cap() int { return v.cap }

// Slice returns a slice view over v's current elements. The slice is
// only valid until the next call to a method that grows v (Push,
// ReserveExact); it aliases v's backing storage, it does not copy it.
func (v *Vec[T]) Slice() []T {
	if v.ptr == nil {
		return nil
	}

	return unsafe.Slice(v.ptr, v.len)
}

// ReserveExact ensures v has room for at least additional more
// elements beyond its current length, growing its backing storage to
// exactly that many elements (length plus additional) if necessary.
func (v *Vec[T]) ReserveExact(additional int) {
	need := v.len + additional
	if need <= v.cap {
		return
	}

	elemSize := layout.Size[T]()
	elemAlign := layout.Align[T]()

	if v.ptr == nil {
		p := (*T)(v.alloc.AllocLayout(elemSize*need, elemAlign))
		v.ptr = p
		v.cap = need

		return
	}

	oldSize := elemSize * v.cap
	newSize := elemSize * need

	newP := v.alloc.Realloc(unsafe.Pointer(v.ptr), oldSize, elemAlign, newSize)
	v.ptr = (*T)(newP)
	v.cap = need
}

// Push appends value to v, growing its storage by exactly one element
// if there is no room.
func (v *Vec[T]) Push(value T) {
	v.ReserveExact(1)

	backing := unsafe.Slice(v.ptr, v.cap)
	backing[v.len] = value
	v.len++
}

// Pop removes and returns the last element of v. ok is false, and the
// returned value is T's zero value, if v is empty.
func (v *Vec[T]) Pop() (value T, ok bool) {
	if v.len == 0 {
		return value, false
	}

	v.len--
	backing := unsafe.Slice(v.ptr, v.cap)

	return backing[v.len], true
}

// Clear empties v without releasing its backing storage: a subsequent
// Push reuses the existing capacity.
func (v *Vec[T]) Clear() {
	v.len = 0
}

// Leak detaches v's backing storage from v's ownership discipline and
// returns it as a plain slice, valid for as long as the underlying
// arena is. After Leak, v is empty and holds no capacity.
func (v *Vec[T]) Leak() []T {
	s := v.Slice()
	v.ptr, v.len, v.cap = nil, 0, 0

	return s
}

// VecEqual reports whether v's elements are, in order, equal to other.
func VecEqual[T comparable](v *Vec[T], other []T) bool {
	if v.len != len(other) {
		return false
	}

	s := v.Slice()
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}

	return true
}

// VecsEqual reports whether a and b hold equal elements in order, even
// if they are backed by different arenas.
func VecsEqual[T comparable](a, b *Vec[T]) bool {
	return VecEqual(a, b.Slice())
}
