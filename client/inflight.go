package client

import (
	"sync"
)

// Inflight tracks calls that have been issued but not yet resolved, keyed by
// operation. Once closed it admits no new calls, and Wait returns when the
// last tracked call is done.
type Inflight struct {
	mu     sync.Mutex
	calls  map[string]int
	total  int
	closed bool
	idle   *sync.Cond
}

func NewInflight() *Inflight {
	in := &Inflight{calls: make(map[string]int)}
	in.idle = sync.NewCond(&in.mu)
	return in
}

// Begin admits one call for op. It reports false when the registry is closed.
func (in *Inflight) Begin(op string) bool {
	in.mu.Lock()
	defer in.mu.Unlock()

	if in.closed {
		return false
	}
	in.calls[op]++
	in.total++
	return true
}

// End releases a call admitted by Begin.
func (in *Inflight) End(op string) {
	in.mu.Lock()
	defer in.mu.Unlock()

	if in.calls[op] <= 1 {
		delete(in.calls, op)
	} else {
		in.calls[op]--
	}
	in.total--
	if in.total == 0 {
		in.idle.Broadcast()
	}
}

// Close stops admitting calls. It reports whether this call did the closing.
func (in *Inflight) Close() bool {
	in.mu.Lock()
	defer in.mu.Unlock()

	if in.closed {
		return false
	}
	in.closed = true
	return true
}

func (in *Inflight) Closed() bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.closed
}

// Wait blocks until no call is in flight.
func (in *Inflight) Wait() {
	in.mu.Lock()
	defer in.mu.Unlock()

	for in.total > 0 {
		in.idle.Wait()
	}
}

// Len returns the number of calls in flight for op.
func (in *Inflight) Len(op string) int {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.calls[op]
}

// Snapshot returns in-flight counts per operation (for monitoring/debugging)
func (in *Inflight) Snapshot() map[string]int {
	in.mu.Lock()
	defer in.mu.Unlock()

	snapshot := make(map[string]int, len(in.calls))
	for op, n := range in.calls {
		snapshot[op] = n
	}
	return snapshot
}
