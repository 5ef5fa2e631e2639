//go:build go1.21

// Package xaddr provides a small set of unsafe pointer-arithmetic helpers
// used to implement the downward-bumping chunk allocator.
//
// Addr[T] is a typed, pointer-sized integer: arithmetic on it is scaled by
// sizeof(T) the same way ordinary Go pointer arithmetic would be, but it can
// be compared, subtracted, and rounded the way an integer can, which bare
// *T cannot. This is the same trick the teacher's xunsafe package uses to
// let the arena's finger be manipulated as an address, not just a pointer.
package xaddr

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/gobump/arena/internal/layout"
)

// NoCopy causes `go vet` to flag accidental copies of the struct
// embedding it, the same way sync.Mutex does.
type NoCopy [0]sync.Mutex

// Addr is the address of a T, represented as a pointer-sized integer so it
// can be compared, subtracted, and realigned without going through a *T.
type Addr[T any] uintptr

// AddrOf returns the address of *p.
func AddrOf[T any](p *T) Addr[T] {
	return Addr[T](uintptr(unsafe.Pointer(p)))
}

// EndOf returns the address one past the last element of s.
func EndOf[T any](s []T) Addr[T] {
	if len(s) == 0 {
		return AddrOf(unsafe.SliceData(s))
	}
	return AddrOf(&s[0]).Add(len(s))
}

// IsZero reports whether a is the null address.
func (a Addr[T]) IsZero() bool { return a == 0 }

// AssertValid reinterprets a as a *T.
//
// The caller is responsible for ensuring a actually addresses a valid,
// live T; this function performs no checking.
func (a Addr[T]) AssertValid() *T {
	return (*T)(unsafe.Pointer(uintptr(a)))
}

// Add returns a advanced by n elements of T (n may be negative).
func (a Addr[T]) Add(n int) Addr[T] {
	return a + Addr[T](n*layout.Size[T]())
}

// ByteAdd returns a advanced by n bytes (n may be negative).
func (a Addr[T]) ByteAdd(n int) Addr[T] {
	return Addr[T](int(a) + n)
}

// Sub returns the number of T-sized elements between a and b.
func (a Addr[T]) Sub(b Addr[T]) int {
	return int(a-b) / layout.Size[T]()
}

// ByteSub returns the number of bytes between a and b.
func (a Addr[T]) ByteSub(b Addr[T]) int {
	return int(a - b)
}

// Padding returns the number of bytes that must be added to a to reach the
// next multiple of align.
func (a Addr[T]) Padding(align int) int {
	return layout.Padding(int(a), align)
}

// RoundUpTo rounds a up to the nearest multiple of align.
func (a Addr[T]) RoundUpTo(align int) Addr[T] {
	return Addr[T](layout.RoundUp(int(a), align))
}

// RoundDownTo rounds a down to the nearest multiple of align.
func (a Addr[T]) RoundDownTo(align int) Addr[T] {
	return Addr[T](layout.RoundDown(int(a), align))
}

// String formats a as a hexadecimal address, e.g. "0x1a2b3c".
func (a Addr[T]) String() string {
	return fmt.Sprintf("0x%x", uintptr(a))
}

// Cast reinterprets a pointer to one type as a pointer to another.
//
// The caller is responsible for ensuring the pointee is actually shaped
// like To; this is exactly as unsafe as an unsafe.Pointer conversion,
// because it is one.
func Cast[To, From any](p *From) *To {
	return (*To)(unsafe.Pointer(p))
}

// Bytes reinterprets a pointer to a T as a byte slice covering all of T's
// storage.
func Bytes[T any](p *T) []byte {
	return unsafe.Slice(Cast[byte](p), layout.Size[T]())
}

// Clear zeros n elements of T starting at p.
func Clear[T any](p *T, n int) {
	clear(unsafe.Slice(p, n))
}

// Copy copies n elements of T from src to dst. The ranges may overlap, as
// with the built-in copy.
func Copy[T any](dst, src *T, n int) {
	copy(unsafe.Slice(dst, n), unsafe.Slice(src, n))
}
