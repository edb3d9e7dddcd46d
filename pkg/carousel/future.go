package carousel

import "sync"

// Future is the settable completion handle returned by asynchronous
// ring operations. It resolves exactly one time, on the frame loop; the
// Done channel close is safe to observe from other goroutines.
type Future struct {
	mu       sync.Mutex
	done     chan struct{}
	resolved bool
	err      error
	degraded bool
	submenu  *Submenu
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// resolvedFuture returns an already-settled future, used for immediate
// rejections and no-op operations.
func resolvedFuture(err error) *Future {
	f := newFuture()
	f.complete(err, false)
	return f
}

// Done is closed when the operation settles.
func (f *Future) Done() <-chan struct{} { return f.done }

// Settled reports whether the future has resolved, without blocking.
func (f *Future) Settled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.resolved
}

// Err returns the operation error. Valid after Done is closed.
func (f *Future) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// Degraded reports that the operation resolved by deadline rather than
// by normal completion: the result is usable but visuals or readiness
// may be partial. Valid after Done is closed.
func (f *Future) Degraded() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.degraded
}

// Submenu returns the submenu an open operation produced, if any.
// Valid after Done is closed.
func (f *Future) Submenu() *Submenu {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submenu
}

// complete settles the future. Returns false if it was already settled;
// only the winning caller should apply completion side effects.
func (f *Future) complete(err error, degraded bool) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.resolved {
		return false
	}
	f.resolved = true
	f.err = err
	f.degraded = degraded
	close(f.done)
	return true
}

func (f *Future) setSubmenu(s *Submenu) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submenu = s
}
