//go:build go1.21

// Package layout includes helpers for working with type layouts.
//
// It is separate from xaddr, because nothing in this package is actually
// unsafe: it only ever reasons about sizes and alignments.
package layout

import (
	"unsafe"

	"github.com/gobump/arena/internal/debug"
)

// Int is any integer type.
type Int interface {
	int | int8 | int16 | int32 | int64 | uint | uint8 | uint16 | uint32 | uint64 | uintptr
}

// Size returns T's size in bytes.
func Size[T any]() int {
	var z T

	return int(unsafe.Sizeof(z))
}

// Align returns T's alignment in bytes.
func Align[T any]() int {
	var z T

	return int(unsafe.Alignof(z))
}

// Layout is the size and alignment of some type, or of a requested
// allocation.
type Layout struct {
	Size, Align int
}

// Of returns the layout of a given type.
func Of[T any]() Layout {
	return Layout{Size[T](), Align[T]()}
}

// Max returns a layout whose size and alignment are both as large as the
// largest among l and that.
func (l Layout) Max(that Layout) Layout {
	return Layout{max(l.Size, that.Size), max(l.Align, that.Align)}
}

// RoundDown rounds v down to a multiple of align, which must be a power of
// two.
func RoundDown[T Int](v, align T) T {
	debug.Assert(align > 0, "align must be greater than 0")

	if align <= 0 {
		return v
	}

	return v &^ (align - 1)
}

// RoundUp rounds v up to a multiple of align, which must be a power of two.
func RoundUp[T Int](v, align T) T {
	debug.Assert(align > 0, "align must be greater than 0")

	if align <= 0 {
		return v
	}

	return (v + align - 1) &^ (align - 1)
}

// Padding returns RoundUp(v, align) - v.
func Padding[T Int](v, align T) T {
	debug.Assert(align > 0, "align must be greater than 0")

	if align <= 0 {
		return 0
	}

	return (align - v) & (align - 1)
}

// IsPow2 reports whether n is a power of two. Zero is not a power of two.
func IsPow2[T Int](n T) bool {
	return n > 0 && n&(n-1) == 0
}
