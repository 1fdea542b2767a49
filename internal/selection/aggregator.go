package selection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/resume-tailor/internal/agent"
	"github.com/jonathan/resume-tailor/internal/llm"
	"github.com/jonathan/resume-tailor/internal/types"
)

// Aggregator runs the sub-selectors concurrently and merges their fields.
// A required failure cancels the rest and fails the selection. An optional
// failure leaves its field empty and is recorded as a warning.
type Aggregator struct {
	client          llm.Client
	subs            []SubSelector
	opts            agent.Options
	logger          *slog.Logger
	dedupeThreshold float64
}

// AggregatorOption configures an Aggregator
type AggregatorOption func(*Aggregator)

// WithSubSelectors replaces the default sub-selectors
func WithSubSelectors(subs ...SubSelector) AggregatorOption {
	return func(a *Aggregator) { a.subs = subs }
}

// WithDedupeThreshold sets the near-duplicate similarity; 0 disables deduplication
func WithDedupeThreshold(threshold float64) AggregatorOption {
	return func(a *Aggregator) { a.dedupeThreshold = threshold }
}

// NewAggregator creates an aggregator over DefaultSubSelectors
func NewAggregator(client llm.Client, opts agent.Options, logger *slog.Logger, options ...AggregatorOption) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Logger == nil {
		opts.Logger = logger
	}
	if opts.Tier == "" {
		opts.Tier = llm.TierLite
	}
	a := &Aggregator{
		client:          client,
		subs:            DefaultSubSelectors(),
		opts:            opts,
		logger:          logger,
		dedupeThreshold: DefaultDedupeThreshold,
	}
	for _, o := range options {
		o(a)
	}
	return a
}

// SubSelectors returns the configured sub-selectors
func (a *Aggregator) SubSelectors() []SubSelector {
	return a.subs
}

type subResult struct {
	out subOutput
	err error
}

// Select implements Selector
func (a *Aggregator) Select(ctx context.Context, analysis *types.JobAnalysis, db *types.CandidateDatabase) (*types.SelectionResult, error) {
	results := make([]subResult, len(a.subs))
	in := subInput{analysis: analysis, db: db, now: time.Now()}

	g, gctx := errgroup.WithContext(ctx)
	for i, sub := range a.subs {
		g.Go(func() error {
			out, err := sub.run(gctx, a.client, a.opts, in)
			results[i] = subResult{out: out, err: err}
			if err != nil && sub.Required {
				return fmt.Errorf("%s: %w", sub.Name, err)
			}
			return nil
		})
	}
	groupErr := g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if groupErr != nil {
		var failed []SubFailure
		for i, sub := range a.subs {
			err := results[i].err
			if !sub.Required || err == nil {
				continue
			}
			// siblings cancelled by the first failure are not failures themselves
			if errors.Is(err, context.Canceled) {
				continue
			}
			failed = append(failed, SubFailure{Name: sub.Name, Field: sub.Field, Cause: err})
		}
		if len(failed) == 0 {
			failed = append(failed, SubFailure{Name: "aggregator", Cause: groupErr})
		}
		return nil, &ContentSelectionError{Failed: failed}
	}

	result := &types.SelectionResult{Provenance: make(map[string]string)}
	sel := &result.Selection
	sel.Reasoning = make(map[string]string)
	for i, sub := range a.subs {
		r := results[i]
		if r.err != nil {
			warning := fmt.Sprintf("%s failed, %s omitted: %v", sub.Name, sub.Field, r.err)
			result.Warnings = append(result.Warnings, warning)
			a.logger.Warn("optional sub-selector failed", "sub_selector", sub.Name, "field", sub.Field, "error", r.err)
			continue
		}
		r.out.apply(sel)
		result.Provenance[sub.Field] = sub.Name
		if r.out.reasoning != "" {
			sel.Reasoning[sub.Field] = r.out.reasoning
		}
	}
	copyFromDatabase(sel, db, result.Provenance)

	if a.dedupeThreshold > 0 {
		result.Removed = append(result.Removed, Deduplicate(sel, a.dedupeThreshold)...)
	}
	return result, nil
}
