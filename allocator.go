//go:build go1.21

package arena

import (
	"fmt"
	"unsafe"

	"github.com/gobump/arena/internal/layout"
)

// Allocator is the typed allocation surface built on top of a RawArena.
// Where RawArena only deals in raw byte layouts, Allocator knows how to
// size and align requests for a given Go type, construct values in
// place, and hand back typed pointers and slices.
//
// The zero value is not usable; construct one with NewAllocator or
// RawArena.Allocator.
type Allocator struct {
	raw *RawArena
}

// NewAllocator wraps raw with the typed allocation surface.
func NewAllocator(raw *RawArena) *Allocator {
	return &Allocator{raw: raw}
}

// Allocator returns the typed allocation surface for this arena.
func (a *RawArena) Allocator() *Allocator {
	return NewAllocator(a)
}

// Raw returns the underlying untyped arena.
func (a *Allocator) Raw() *RawArena {
	return a.raw
}

// AllocLayout reserves size bytes aligned to align. See
// RawArena.AllocLayout for the exact semantics.
func (a *Allocator) AllocLayout(size, align int) unsafe.Pointer {
	return unsafe.Pointer(a.raw.AllocLayout(size, align))
}

// AllocTryLayout is the fallible counterpart to AllocLayout: instead of
// panicking with an *OOMError, it reports failure via ok=false.
func (a *Allocator) AllocTryLayout(size, align int) (ptr unsafe.Pointer, ok bool) {
	return tryRecover(func() unsafe.Pointer {
		return a.AllocLayout(size, align)
	})
}

// Realloc resizes the allocation at ptr, previously obtained with size
// oldSize and alignment align, to newSize bytes. Growing preserves the
// old content at the start of the returned allocation; shrinking the
// topmost allocation does not copy, so the returned pointer addresses
// the old trailing bytes. See RawArena.Realloc for the exact semantics,
// including when the returned pointer differs from ptr.
func (a *Allocator) Realloc(ptr unsafe.Pointer, oldSize, align, newSize int) unsafe.Pointer {
	newP, _ := a.raw.Realloc((*byte)(ptr), oldSize, align, newSize)
	return unsafe.Pointer(newP)
}

// tryRecover runs f, converting a panicked *OOMError into ok=false. Any
// other panic propagates unchanged: only allocation-failure panics are
// meant to be recoverable.
func tryRecover[T any](f func() T) (result T, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			if _, isOOM := r.(*OOMError); !isOOM {
				panic(r)
			}

			var zero T
			result, ok = zero, false
		}
	}()

	return f(), true
}

// Alloc copies value into the arena and returns a pointer to the copy.
func Alloc[T any](a *Allocator, value T) *T {
	p := AllocUninit[T](a)
	*p = value

	return p
}

// AllocTry is the fallible counterpart to Alloc.
func AllocTry[T any](a *Allocator, value T) (*T, bool) {
	return tryRecover(func() *T { return Alloc(a, value) })
}

// AllocUninit reserves space for one T without initializing it. Memory
// from a freshly allocated chunk is zero, but memory the arena reuses
// after RestoreState, Reset, or a frame keeps whatever bytes were last
// written there, so the returned T is not guaranteed to be zero-valued.
func AllocUninit[T any](a *Allocator) *T {
	return (*T)(a.AllocLayout(layout.Size[T](), layout.Align[T]()))
}

// AllocWith reserves space for one T and initializes it by calling f.
func AllocWith[T any](a *Allocator, f func() T) *T {
	p := AllocUninit[T](a)
	*p = f()

	return p
}

// AllocSlice reserves space for n zero-valued Ts and returns it as a
// slice. n may be zero.
func AllocSlice[T any](a *Allocator, n int) []T {
	if n == 0 {
		p := AllocUninit[T](a)
		return unsafe.Slice(p, 0)
	}

	size := layout.Size[T]() * n
	raw := a.AllocLayout(size, layout.Align[T]())
	clear(unsafe.Slice((*byte)(raw), size))

	return unsafe.Slice((*T)(raw), n)
}

// AllocSliceTry is the fallible counterpart to AllocSlice.
func AllocSliceTry[T any](a *Allocator, n int) ([]T, bool) {
	return tryRecover(func() []T { return AllocSlice[T](a, n) })
}

// AllocSliceCloned copies src into a freshly arena-allocated slice.
func AllocSliceCloned[T any](a *Allocator, src []T) []T {
	dst := AllocSlice[T](a, len(src))
	copy(dst, src)

	return dst
}

// AllocSliceClonedTry is the fallible counterpart to AllocSliceCloned.
func AllocSliceClonedTry[T any](a *Allocator, src []T) ([]T, bool) {
	return tryRecover(func() []T { return AllocSliceCloned(a, src) })
}

// AllocSliceFill reserves space for n copies of value.
func AllocSliceFill[T any](a *Allocator, n int, value T) []T {
	dst := AllocSlice[T](a, n)
	for i := range dst {
		dst[i] = value
	}

	return dst
}

// AllocSliceWith reserves space for n elements, each initialized by
// calling f with its index.
func AllocSliceWith[T any](a *Allocator, n int, f func(i int) T) []T {
	dst := AllocSlice[T](a, n)
	for i := range dst {
		dst[i] = f(i)
	}

	return dst
}

// AllocSliceFromIter reserves space for exactly n elements and fills it
// by draining next, which must return ok=false once exhausted. If next
// still has an item to give after n have already been written, that is
// a programming error (the declared length was a lie) and
// AllocSliceFromIter panics rather than silently growing past it. If
// next exhausts early, the returned slice is truncated to however many
// items were actually written; the unused tail of the reservation is
// left un-reclaimed.
func AllocSliceFromIter[T any](a *Allocator, n int, next func() (T, bool)) []T {
	dst := AllocSlice[T](a, n)

	i := 0
	for ; i < n; i++ {
		item, ok := next()
		if !ok {
			break
		}

		dst[i] = item
	}

	if _, ok := next(); ok {
		panic(fmt.Errorf("arena: AllocSliceFromIter: iterator yielded more than its declared length of %d", n))
	}

	return dst[:i]
}

// AllocStr copies s into the arena and returns a new string backed by
// that copy.
func AllocStr(a *Allocator, s string) string {
	if len(s) == 0 {
		return ""
	}

	b := AllocSlice[byte](a, len(s))
	copy(b, s)

	return unsafe.String(&b[0], len(b))
}

// AllocStrTry is the fallible counterpart to AllocStr.
func AllocStrTry(a *Allocator, s string) (string, bool) {
	return tryRecover(func() string { return AllocStr(a, s) })
}
