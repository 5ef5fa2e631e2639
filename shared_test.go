//go:build go1.21

package arena_test

import (
	"sync"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/gobump/arena"
)

func TestSharedArena(t *testing.T) {
	Convey("Given an empty SharedArena", t, func() {
		pool := arena.NewSharedArena()
		So(pool.Idle(), ShouldEqual, 0)
		So(pool.Active(), ShouldEqual, 0)

		Convey("Acquiring checks out a fresh arena", func() {
			ta := pool.Acquire()

			So(pool.Active(), ShouldEqual, 1)
			So(pool.Idle(), ShouldEqual, 0)

			p := arena.Alloc(ta.Allocator, 42)
			So(*p, ShouldEqual, 42)

			Convey("Closing it returns the arena to the pool", func() {
				ta.Close()

				So(pool.Active(), ShouldEqual, 0)
				So(pool.Idle(), ShouldEqual, 1)
			})

			Convey("Close is idempotent", func() {
				ta.Close()
				ta.Close()
				ta.Close()

				So(pool.Active(), ShouldEqual, 0)
				So(pool.Idle(), ShouldEqual, 1)
			})
		})

		Convey("A closed arena is reused rather than recreated", func() {
			first := pool.Acquire()
			firstRaw := first.Raw()
			first.Close()

			second := pool.Acquire()
			So(second.Raw(), ShouldEqual, firstRaw)
		})

		Convey("Resetting reclaims every idle arena's allocations without discarding them", func() {
			first := pool.Acquire()
			p := arena.Alloc(first.Allocator, 7)
			So(*p, ShouldEqual, 7)
			before := first.Raw().CurrentState()
			first.Close()

			pool.Reset()

			second := pool.Acquire()
			So(second.Raw(), ShouldEqual, first.Raw())
			So(second.Raw().CurrentState(), ShouldNotResemble, before)
		})

		Convey("The pool's total size never exceeds the number of goroutines that used it concurrently", func() {
			const n = 8

			var wg sync.WaitGroup
			wg.Add(n)

			for i := 0; i < n; i++ {
				go func() {
					defer wg.Done()

					ta := pool.Acquire()
					defer ta.Close()

					_ = arena.AllocSliceFill(ta.Allocator, 128, byte(1))
				}()
			}

			wg.Wait()

			So(pool.Active(), ShouldEqual, 0)
			So(pool.Idle(), ShouldBeLessThanOrEqualTo, n)
			So(pool.Idle(), ShouldBeGreaterThan, 0)
		})
	})
}
