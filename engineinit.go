package nb2pdf

import (
	"fmt"
	"sync"
)

// initCall is one in-flight initialization attempt shared by its waiters.
type initCall struct {
	done chan struct{}
	err  error
}

// initGuard coalesces concurrent one-time engine initialization. The first
// caller runs the attempt; concurrent callers await that same attempt
// instead of triggering a duplicate load. Success is cached for the rest of
// the process; failure is not, so the next export retries.
type initGuard struct {
	mu       sync.Mutex
	ready    bool
	inflight *initCall
}

// do runs fn at most once concurrently, returning its error to every waiter.
// The bookkeeping is deferred so a panicking fn still releases the waiters
// and leaves the guard retryable; the panic surfaces as an error.
func (g *initGuard) do(fn func() error) (err error) {
	g.mu.Lock()
	if g.ready {
		g.mu.Unlock()
		return nil
	}
	if c := g.inflight; c != nil {
		g.mu.Unlock()
		<-c.done
		return c.err
	}
	c := &initCall{done: make(chan struct{})}
	g.inflight = c
	g.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			c.err = fmt.Errorf("%w: panic: %v", ErrEngineInit, r)
		}
		g.mu.Lock()
		if c.err == nil {
			g.ready = true
		}
		g.inflight = nil
		g.mu.Unlock()
		close(c.done)
		err = c.err
	}()

	c.err = fn()
	return c.err
}
