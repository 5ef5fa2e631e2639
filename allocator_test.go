//go:build go1.21

package arena_test

import (
	"testing"
	"unsafe"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/gobump/arena"
)

type point struct {
	X, Y int
}

func TestAllocatorTypedHelpers(t *testing.T) {
	Convey("Given an Allocator", t, func() {
		a := arena.NewRawArena().Allocator()

		Convey("Alloc copies a value into the arena", func() {
			p := arena.Alloc(a, point{X: 1, Y: 2})
			So(*p, ShouldResemble, point{X: 1, Y: 2})
		})

		Convey("AllocUninit returns a zero-valued T", func() {
			p := arena.AllocUninit[point](a)
			So(*p, ShouldResemble, point{})
		})

		Convey("AllocWith initializes via a closure", func() {
			p := arena.AllocWith(a, func() point { return point{X: 9, Y: 9} })
			So(*p, ShouldResemble, point{X: 9, Y: 9})
		})

		Convey("AllocSlice reserves n zero-valued elements", func() {
			s := arena.AllocSlice[int](a, 4)
			So(s, ShouldResemble, []int{0, 0, 0, 0})
		})

		Convey("AllocSlice handles n == 0 without panicking", func() {
			s := arena.AllocSlice[int](a, 0)
			So(len(s), ShouldEqual, 0)
		})

		Convey("AllocSliceCloned copies the source elements", func() {
			src := []int{1, 2, 3}
			dst := arena.AllocSliceCloned(a, src)
			So(dst, ShouldResemble, src)

			Convey("and it is a genuine copy, not an alias", func() {
				dst[0] = 999
				So(src[0], ShouldEqual, 1)
			})
		})

		Convey("AllocSliceFill fills every element with the same value", func() {
			s := arena.AllocSliceFill(a, 3, "x")
			So(s, ShouldResemble, []string{"x", "x", "x"})
		})

		Convey("AllocSliceWith fills elements from their index", func() {
			s := arena.AllocSliceWith(a, 4, func(i int) int { return i * i })
			So(s, ShouldResemble, []int{0, 1, 4, 9})
		})

		Convey("AllocSliceFromIter drains an iterator into a declared-length slice", func() {
			values := []int{10, 20, 30, 40, 50}
			i := 0
			s := arena.AllocSliceFromIter(a, len(values), func() (int, bool) {
				if i >= len(values) {
					return 0, false
				}
				v := values[i]
				i++
				return v, true
			})
			So(s, ShouldResemble, values)
		})

		Convey("AllocSliceFromIter truncates to however many items the iterator actually yielded", func() {
			values := []int{10, 20, 30}
			i := 0
			s := arena.AllocSliceFromIter(a, 5, func() (int, bool) {
				if i >= len(values) {
					return 0, false
				}
				v := values[i]
				i++
				return v, true
			})
			So(s, ShouldResemble, values)
		})

		Convey("AllocSliceFromIter panics if the iterator yields more than its declared length", func() {
			i := 0
			So(func() {
				arena.AllocSliceFromIter(a, 2, func() (int, bool) {
					i++
					return i, true
				})
			}, ShouldPanic)
		})

		Convey("AllocStr copies a string's bytes into the arena", func() {
			s := arena.AllocStr(a, "hello")
			So(s, ShouldEqual, "hello")
		})

		Convey("AllocStr of an empty string never dereferences a nil slice", func() {
			s := arena.AllocStr(a, "")
			So(s, ShouldEqual, "")
		})
	})
}

func TestAllocatorTryVariants(t *testing.T) {
	Convey("Given an Allocator", t, func() {
		a := arena.NewRawArena().Allocator()

		Convey("AllocTryLayout succeeds for a reasonable request", func() {
			p, ok := a.AllocTryLayout(16, 8)
			So(ok, ShouldBeTrue)
			So(p, ShouldNotBeNil)
		})

		Convey("AllocTryLayout reports failure instead of panicking on an invalid alignment", func() {
			p, ok := a.AllocTryLayout(16, 3)
			So(ok, ShouldBeFalse)
			So(p, ShouldBeNil)
		})

		Convey("AllocTry mirrors Alloc on success", func() {
			p, ok := arena.AllocTry(a, point{X: 5, Y: 6})
			So(ok, ShouldBeTrue)
			So(*p, ShouldResemble, point{X: 5, Y: 6})
		})

		Convey("AllocStrTry mirrors AllocStr on success", func() {
			s, ok := arena.AllocStrTry(a, "ok")
			So(ok, ShouldBeTrue)
			So(s, ShouldEqual, "ok")
		})

	})
}

func TestAllocatorRealloc(t *testing.T) {
	Convey("Given an Allocator with one live allocation", t, func() {
		a := arena.NewRawArena().Allocator()
		p := arena.Alloc(a, byte(0x7))

		Convey("Realloc can grow it in place", func() {
			grown := a.Realloc(unsafe.Pointer(p), 1, 1, 64)
			So(grown, ShouldNotBeNil)
		})
	})
}
