//go:build go1.21

package arena

import "sync"

// SharedArena is a mutex-guarded pool of RawArenas meant to be shared
// across goroutines that each want their own private arena for the
// duration of some unit of work, without paying for a fresh arena (and
// its first chunk) every time.
//
// Once a goroutine has checked out a ThreadAllocator via Acquire, every
// allocation it makes through that ThreadAllocator is lock-free: the
// pool's mutex is only ever touched at Acquire and Close.
//
// The zero SharedArena is a valid, empty pool.
type SharedArena struct {
	mu     sync.Mutex
	idle   []*RawArena
	active int
}

// NewSharedArena returns an empty pool.
func NewSharedArena() *SharedArena {
	return &SharedArena{}
}

// Acquire checks out a RawArena from the pool, creating a new one if
// none are idle, and returns a ThreadAllocator wrapping it. The caller
// must call Close on the returned ThreadAllocator (typically via
// defer) to return the arena to the pool.
func (s *SharedArena) Acquire() *ThreadAllocator {
	s.mu.Lock()

	var raw *RawArena
	if n := len(s.idle); n > 0 {
		raw = s.idle[n-1]
		s.idle = s.idle[:n-1]
	} else {
		raw = NewRawArena()
	}

	s.active++
	s.mu.Unlock()

	return &ThreadAllocator{Allocator: NewAllocator(raw), pool: s}
}

// Idle returns the number of arenas currently sitting in the pool,
// available for the next Acquire.
func (s *SharedArena) Idle() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.idle)
}

// Active returns the number of arenas currently checked out.
func (s *SharedArena) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.active
}

// Reset discards every allocation made by every idle arena in the pool,
// retaining their chunk memory for reuse. It requires exclusive access
// to the pool: callers must ensure no ThreadAllocator is currently
// checked out via Acquire, since Reset only ever touches arenas already
// sitting idle, and has no way to rewind one that is still active.
func (s *SharedArena) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, raw := range s.idle {
		raw.Reset()
	}
}

// ThreadAllocator is a RawArena checked out from a SharedArena for the
// exclusive use of whichever goroutine holds it.
//
// ThreadAllocator embeds *Allocator, so the full typed allocation
// surface is available directly on it.
type ThreadAllocator struct {
	*Allocator

	pool   *SharedArena
	closed bool
}

// Close resets the underlying arena (discarding everything it
// allocated, but retaining its chunk memory) and returns it to the
// pool. Close is idempotent and safe to call via defer even if the
// goroutine using the ThreadAllocator is unwinding from a panic: the
// arena is always returned to the pool exactly once, never left
// stranded as permanently "active".
func (t *ThreadAllocator) Close() {
	if t.closed {
		return
	}

	t.closed = true

	raw := t.Raw()
	raw.Reset()

	pool := t.pool
	pool.mu.Lock()
	pool.active--
	pool.idle = append(pool.idle, raw)
	pool.mu.Unlock()
}
