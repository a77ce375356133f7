package completion

import (
	"context"
	"fmt"
	"sync"
)

// Compile-time interface check.
var _ Service = (*Scripted)(nil)

// Reply is one scripted outcome for the Scripted service.
type Reply struct {
	Content      string
	FinishReason FinishReason
	Err          error

	// Before, when non-nil, runs before the reply is returned. Tests use it
	// to advance fake clocks or assert mid-run state.
	Before func(req Request)
}

// Scripted is a completion Service that replays a fixed sequence of replies.
// It records every request so tests can assert on rendered prompts. When the
// script runs out, Complete fails.
type Scripted struct {
	mu       sync.Mutex
	replies  []Reply
	requests []Request
}

// NewScripted creates a Scripted service that returns the given replies in
// order.
func NewScripted(replies ...Reply) *Scripted {
	return &Scripted{replies: replies}
}

// Complete returns the next scripted reply.
func (s *Scripted) Complete(ctx context.Context, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.requests = append(s.requests, req)
	if len(s.replies) == 0 {
		s.mu.Unlock()
		return nil, fmt.Errorf("completion: scripted service exhausted after %d calls", len(s.requests))
	}
	reply := s.replies[0]
	s.replies = s.replies[1:]
	s.mu.Unlock()

	if reply.Before != nil {
		reply.Before(req)
	}
	if reply.Err != nil {
		return nil, reply.Err
	}

	reason := reply.FinishReason
	if reason == "" {
		reason = FinishStop
	}
	return &Response{Content: reply.Content, FinishReason: reason}, nil
}

// Requests returns a copy of every request received so far.
func (s *Scripted) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// Calls returns how many times Complete was invoked.
func (s *Scripted) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}
