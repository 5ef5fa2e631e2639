//go:build go1.21

package arena

import "fmt"

// Box is an arena-allocated owned pointer, Go's structural analogue of
// the upstream crate's Box<T, A>. Arena memory is already reclaimed in
// bulk by the arena's owner (or, ultimately, the garbage collector), so
// Box does not free its backing memory on Close -- there is nothing to
// free. What Box preserves from the original is the *single-owner,
// run-once-on-release* discipline: a Box may carry an optional closer,
// run exactly once, for values that wrap something other than memory
// (a file descriptor, a lock, a nested arena) that does need explicit
// release.
//
// The zero Box is not usable; construct one with NewBox, NewBoxWith, or
// NewBoxUninit.
type Box[T any] struct {
	ptr    *T
	closer func(*T)
	closed bool
}

// NewBox copies value into the arena and returns a Box owning it.
func NewBox[T any](a *Allocator, value T) *Box[T] {
	return &Box[T]{ptr: Alloc(a, value)}
}

// NewBoxWith reserves space in the arena and initializes it by calling
// f, returning a Box owning the result.
func NewBoxWith[T any](a *Allocator, f func() T) *Box[T] {
	return &Box[T]{ptr: AllocWith(a, f)}
}

// NewBoxUninit reserves space for a T without initializing it and
// returns a Box owning it. The value is not guaranteed to be zero (see
// AllocUninit). The caller is expected to initialize *box.Get() before
// using it.
func NewBoxUninit[T any](a *Allocator) *Box[T] {
	return &Box[T]{ptr: AllocUninit[T](a)}
}

// WithCloser registers a function to run exactly once, the first time
// Close is called (directly, or via a deferred Close left in place by
// the caller). It returns b so it can be chained onto the constructor,
// e.g. NewBox(a, f).WithCloser(closeFile).
func (b *Box[T]) WithCloser(closer func(*T)) *Box[T] {
	b.closer = closer
	return b
}

// Get returns the pointer to the boxed value.
func (b *Box[T]) Get() *T {
	return b.ptr
}

// Close runs the box's closer, if any, exactly once. Calling Close on
// an already-closed or leaked box is a no-op.
func (b *Box[T]) Close() {
	if b.closed {
		return
	}

	b.closed = true

	if b.closer != nil {
		b.closer(b.ptr)
	}
}

// Leak detaches the pointer from the box's ownership discipline: the
// box's closer, if any, will never run, and the returned pointer
// remains valid for as long as the underlying arena does.
func (b *Box[T]) Leak() *T {
	b.closed = true
	return b.ptr
}

// IntoRaw is Leak, spelled for parity with the upstream crate's
// Box::into_raw for callers translating code from it.
func (b *Box[T]) IntoRaw() *T {
	return b.Leak()
}

// String delegates to the boxed value's String method if it implements
// fmt.Stringer, falling back to the default formatting of *T otherwise.
func (b *Box[T]) String() string {
	if s, ok := any(*b.ptr).(fmt.Stringer); ok {
		return s.String()
	}

	return fmt.Sprintf("%v", *b.ptr)
}

// Error delegates to the boxed value's Error method, and panics if T
// does not implement error. It exists so a Box[SomeError] can itself
// satisfy the error interface by embedding *Box[SomeError] or calling
// through to this method.
func (b *Box[T]) Error() string {
	if e, ok := any(*b.ptr).(error); ok {
		return e.Error()
	}

	panic(fmt.Sprintf("arena: Box[%T] does not box an error", *b.ptr))
}
