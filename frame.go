//go:build go1.21

package arena

import "github.com/gobump/arena/internal/debug"

// Frame is a scoped view onto an Allocator: every allocation made
// through it is rewound when the frame's WithFrame call returns
// normally, as if it had never happened.
//
// Frame embeds *Allocator, so the full typed allocation surface
// (Alloc, AllocSlice, AllocStr, and so on) is available directly on a
// *Frame. A frame can itself open nested frames by calling WithFrame
// again with its own Allocator.
type Frame struct {
	*Allocator
}

// WithFrame runs f with a fresh Frame scoped to a, then rewinds every
// allocation f made before returning f's result.
//
// If f panics, the frame's allocations are deliberately NOT rewound:
// unwinding past WithFrame leaves the arena exactly as f left it. This
// is a memory leak, not undefined behavior -- attempting to roll back
// state in the presence of a panic would risk rewinding past memory
// some other part of the program already observed and is depending on,
// since Go gives no static guarantee (unlike a borrow checker) that
// nothing escaped the frame. Leaking is always safe; guessing is not.
func WithFrame[T any](a *Allocator, f func(*Frame) T) T {
	snapshot := a.raw.CurrentState()
	fr := &Frame{Allocator: a}

	result := f(fr)

	debug.Log(nil, "frame.restore", "snapshot=%v", snapshot)
	a.raw.RestoreState(snapshot)

	return result
}

// WithFrameErr is the fallible counterpart to WithFrame. Every
// allocation f made is rewound before WithFrameErr returns, whether f
// returns an error or not, just as WithFrame always rewinds. If f
// returns a non-nil error, the zero value of T is returned alongside
// it. As with WithFrame, a panic in f skips the rewind.
func WithFrameErr[T any](a *Allocator, f func(*Frame) (T, error)) (T, error) {
	snapshot := a.raw.CurrentState()
	fr := &Frame{Allocator: a}

	result, err := f(fr)

	a.raw.RestoreState(snapshot)

	if err != nil {
		var zero T
		return zero, err
	}

	return result, nil
}
