// Package llmtest provides a scripted llm.Client for tests.
package llmtest

import (
	"context"
	"sync"

	"github.com/jonathan/resume-tailor/internal/llm"
)

// Reply is one scripted backend response
type Reply struct {
	Text string
	Err  error
}

// Stub is an llm.Client that returns scripted replies in order and counts calls.
// Once the script runs out the last reply repeats. It is safe for concurrent use.
type Stub struct {
	mu      sync.Mutex
	replies []Reply
	prompts []string
	tiers   []llm.ModelTier
	// Handler, when set, overrides the script. call is 1-based.
	Handler func(ctx context.Context, prompt string, call int) (string, error)
}

// NewStub returns a stub that answers with texts in order
func NewStub(texts ...string) *Stub {
	s := &Stub{}
	for _, t := range texts {
		s.replies = append(s.replies, Reply{Text: t})
	}
	return s
}

// NewStubReplies returns a stub scripted with explicit replies
func NewStubReplies(replies ...Reply) *Stub {
	return &Stub{replies: replies}
}

// GenerateContent implements llm.Client
func (s *Stub) GenerateContent(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	return s.next(ctx, prompt, tier)
}

// GenerateJSON implements llm.Client
func (s *Stub) GenerateJSON(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	return s.next(ctx, prompt, tier)
}

// GetModel implements llm.Client
func (s *Stub) GetModel(tier llm.ModelTier) string {
	return "stub-" + string(tier)
}

// Close implements llm.Client
func (s *Stub) Close() error {
	return nil
}

// Calls returns how many times the backend was invoked
func (s *Stub) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.prompts)
}

// Prompts returns a copy of every prompt received
func (s *Stub) Prompts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.prompts...)
}

// Tiers returns the model tier of every call
func (s *Stub) Tiers() []llm.ModelTier {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]llm.ModelTier(nil), s.tiers...)
}

func (s *Stub) next(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	s.mu.Lock()
	s.prompts = append(s.prompts, prompt)
	s.tiers = append(s.tiers, tier)
	call := len(s.prompts)
	handler := s.Handler
	var reply Reply
	if handler == nil && len(s.replies) > 0 {
		idx := call - 1
		if idx >= len(s.replies) {
			idx = len(s.replies) - 1
		}
		reply = s.replies[idx]
	}
	s.mu.Unlock()

	if handler != nil {
		return handler(ctx, prompt, call)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return reply.Text, reply.Err
}
