package resolve

import (
	"context"
	"slices"
	"sync"

	"github.com/matheuskafuri/folio/internal/item"
)

// Session is one activation of a domain. It is safe for concurrent use.
type Session struct {
	mu     sync.Mutex
	result Result
	closed bool

	// emit serializes onUpdate calls and lets Close wait for one in flight.
	emit     sync.Mutex
	onUpdate func(Result)

	cancel    context.CancelFunc
	ready     chan struct{}
	readyOnce sync.Once
	done      chan struct{}
}

func newSession(cancel context.CancelFunc, onUpdate func(Result)) *Session {
	return &Session{
		result:   Result{IsLoading: true, Tier: TierLoading, Categories: []string{item.AllCategory}},
		onUpdate: onUpdate,
		cancel:   cancel,
		ready:    make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Result returns the most recently published result.
func (s *Session) Result() Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := s.result
	res.Items = slices.Clone(res.Items)
	res.Categories = slices.Clone(res.Categories)
	return res
}

// Ready is closed once a settled result, one that is not loading, is
// available.
func (s *Session) Ready() <-chan struct{} { return s.ready }

// Done is closed when the session has no more work, background refresh
// included.
func (s *Session) Done() <-chan struct{} { return s.done }

// Wait blocks until Done.
func (s *Session) Wait() { <-s.done }

// Close abandons in-flight work. Once Close returns no result is published
// and nothing is written to the cache.
func (s *Session) Close() {
	s.cancel()
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.emit.Lock()
	defer s.emit.Unlock()
}

func (s *Session) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Session) markReady() {
	s.readyOnce.Do(func() { close(s.ready) })
}

// apply runs write and stores res unless the session is closed.
func (s *Session) apply(res Result, write func()) bool {
	s.emit.Lock()
	defer s.emit.Unlock()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	if write != nil {
		write()
	}
	s.result = res
	s.mu.Unlock()

	if !res.IsLoading {
		s.markReady()
	}
	if s.onUpdate != nil {
		s.onUpdate(res)
	}
	return true
}
