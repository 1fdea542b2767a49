// Package agent provides the generic LLM agent: build a prompt from typed input,
// invoke the generation backend, and parse the reply into typed output with
// bounded retries.
package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonathan/resume-tailor/internal/llm"
)

// Defaults applied when Options leaves a field zero
const (
	DefaultMaxAttempts = 3
	DefaultTimeout     = 2 * time.Minute
)

// PromptFunc builds a prompt from input. It must be pure.
type PromptFunc[In any] func(In) (string, error)

// ParseFunc turns raw model output into a typed result
type ParseFunc[Out any] func(raw string) (Out, error)

// Recorder receives every raw model output, e.g. to keep a per-run audit trail
type Recorder interface {
	Record(agentName string, attempt int, raw string) error
}

// Options configures retry and invocation behavior
type Options struct {
	Tier        llm.ModelTier
	MaxAttempts int           // total invoke+parse attempts
	Timeout     time.Duration // bound on each backend call
	RetryDelay  time.Duration // pause between attempts
	Recorder    Recorder
	Logger      *slog.Logger
}

// Agent is one LLM-backed step. Its behavior is the two injected functions.
type Agent[In, Out any] struct {
	name   string
	client llm.Client
	build  PromptFunc[In]
	parse  ParseFunc[Out]
	opts   Options
}

// New creates an agent. Zero-valued options fall back to package defaults.
func New[In, Out any](name string, client llm.Client, build PromptFunc[In], parse ParseFunc[Out], opts Options) *Agent[In, Out] {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Tier == "" {
		opts.Tier = llm.TierStandard
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Agent[In, Out]{
		name:   name,
		client: client,
		build:  build,
		parse:  parse,
		opts:   opts,
	}
}

// Name returns the agent's registry name
func (a *Agent[In, Out]) Name() string {
	return a.name
}

// MaxAttempts returns the configured attempt budget
func (a *Agent[In, Out]) MaxAttempts() int {
	return a.opts.MaxAttempts
}

// BuildPrompt renders the prompt for the given input
func (a *Agent[In, Out]) BuildPrompt(in In) (string, error) {
	prompt, err := a.build(in)
	if err != nil {
		return "", &PromptError{Agent: a.name, Cause: err}
	}
	return prompt, nil
}

// Invoke sends one prompt to the backend with the per-call timeout applied
func (a *Agent[In, Out]) Invoke(ctx context.Context, prompt string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, a.opts.Timeout)
	defer cancel()

	raw, err := a.client.GenerateJSON(callCtx, prompt, a.opts.Tier)
	if err != nil {
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return "", fmt.Errorf("backend call timed out after %s: %w", a.opts.Timeout, err)
		}
		return "", err
	}
	return raw, nil
}

// Parse interprets raw output. Any failure is reported as a *ParseError.
func (a *Agent[In, Out]) Parse(raw string) (Out, error) {
	out, err := a.parse(raw)
	if err != nil {
		var parseErr *ParseError
		if !errors.As(err, &parseErr) {
			err = &ParseError{Message: "invalid response", Cause: err}
		}
		return out, err
	}
	return out, nil
}

// Execute builds the prompt once, then invokes and parses up to MaxAttempts times,
// re-issuing the same prompt. Timeouts and backend errors count as failed attempts.
// Cancellation of ctx stops the loop immediately.
func (a *Agent[In, Out]) Execute(ctx context.Context, in In) (Out, error) {
	var zero Out

	prompt, err := a.BuildPrompt(in)
	if err != nil {
		return zero, err
	}

	var lastRaw string
	var lastErr error
	for attempt := 1; attempt <= a.opts.MaxAttempts; attempt++ {
		if attempt > 1 && a.opts.RetryDelay > 0 {
			select {
			case <-time.After(a.opts.RetryDelay):
			case <-ctx.Done():
				return zero, ctx.Err()
			}
		}

		raw, err := a.Invoke(ctx, prompt)
		if err != nil {
			if ctx.Err() != nil {
				return zero, ctx.Err()
			}
			lastErr = err
			a.opts.Logger.Warn("agent invocation failed",
				"agent", a.name, "attempt", attempt, "max_attempts", a.opts.MaxAttempts, "error", err)
			continue
		}

		lastRaw = raw
		if a.opts.Recorder != nil {
			if recErr := a.opts.Recorder.Record(a.name, attempt, raw); recErr != nil {
				a.opts.Logger.Warn("failed to record agent output", "agent", a.name, "error", recErr)
			}
		}

		out, err := a.Parse(raw)
		if err != nil {
			lastErr = err
			a.opts.Logger.Warn("agent output rejected",
				"agent", a.name, "attempt", attempt, "max_attempts", a.opts.MaxAttempts, "error", err)
			continue
		}

		a.opts.Logger.Debug("agent succeeded", "agent", a.name, "attempt", attempt)
		return out, nil
	}

	return zero, &ExhaustedError{
		Agent:    a.name,
		Attempts: a.opts.MaxAttempts,
		LastRaw:  lastRaw,
		Cause:    lastErr,
	}
}
