package core

import (
	"context"
	"sync"
)

// searcher tracks the latest lookup of one kind. Starting a new lookup
// cancels the previous one and invalidates its generation.
type searcher struct {
	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
}

func (s *searcher) begin(parent context.Context) (context.Context, uint64, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
	s.gen++
	s.cancel = cancel
	return ctx, s.gen, cancel
}

func (s *searcher) current(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen == gen
}

// stop cancels whatever is in flight.
func (s *searcher) stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.gen++
}
