// Package fetch implements batched, partial-failure-tolerant upstream fan-out
package fetch

import (
	"context"
	"sync"
	"time"

	"github.com/bobmcallan/stockpulse/internal/common"
)

// maxErrorMessages bounds the diagnostics carried in a Summary.
const maxErrorMessages = 10

// Func fetches the payload for a single key (symbol, subreddit, ...).
type Func func(ctx context.Context, key string) (any, error)

// Result is the per-key outcome. One key's failure never aborts the batch.
type Result struct {
	Key   string
	Value any
	Err   error
}

// Success reports whether the fetch for this key succeeded.
func (r Result) Success() bool { return r.Err == nil }

// Summary is the aggregate failure accounting for a fan-out.
// Succeeded + Failed always equals Attempted.
type Summary struct {
	Attempted int      `json:"attempted"`
	Succeeded int      `json:"succeeded"`
	Failed    int      `json:"failed"`
	Errors    []string `json:"errors,omitempty"` // first 10, trimmed
}

// Orchestrator fans requests out in fixed-size parallel batches with an
// inter-batch delay as rate-limit courtesy. Each call runs under its own
// timeout; a timed-out call is that key's failure, never a crash of the
// whole operation.
type Orchestrator struct {
	batchSize  int
	batchDelay time.Duration
	timeout    time.Duration
	logger     *common.Logger
	sleep      func(ctx context.Context, d time.Duration) error // injectable for testing
}

// Option configures the orchestrator.
type Option func(*Orchestrator)

// WithBatchSize sets the parallel fan-out per batch.
func WithBatchSize(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.batchSize = n
		}
	}
}

// WithBatchDelay sets the pause between batches.
func WithBatchDelay(d time.Duration) Option {
	return func(o *Orchestrator) { o.batchDelay = d }
}

// WithTimeout sets the per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// New creates an orchestrator with the given options.
func New(logger *common.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		batchSize:  5,
		batchDelay: 1 * time.Second,
		timeout:    10 * time.Second,
		logger:     logger,
		sleep:      sleepCtx,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// FetchAll fetches every key and returns exactly len(keys) results in input
// order plus the aggregate summary. Partial failure is not fatal; callers
// receive the partial result set and the failure tally.
func (o *Orchestrator) FetchAll(ctx context.Context, keys []string, fn Func) ([]Result, Summary) {
	results := make([]Result, len(keys))

	for start := 0; start < len(keys); start += o.batchSize {
		end := start + o.batchSize
		if end > len(keys) {
			end = len(keys)
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(idx int) {
				defer wg.Done()
				callCtx, cancel := context.WithTimeout(ctx, o.timeout)
				defer cancel()

				value, err := fn(callCtx, keys[idx])
				results[idx] = Result{Key: keys[idx], Value: value, Err: err}
			}(i)
		}
		wg.Wait()

		// Inter-batch delay, skipped after the final batch
		if end < len(keys) && o.batchDelay > 0 {
			if err := o.sleep(ctx, o.batchDelay); err != nil {
				// Context cancelled mid-run: mark the remaining keys failed
				for i := end; i < len(keys); i++ {
					results[i] = Result{Key: keys[i], Err: ctx.Err()}
				}
				break
			}
		}
	}

	summary := summarize(results)
	if summary.Failed > 0 {
		o.logger.Warn().
			Int("attempted", summary.Attempted).
			Int("failed", summary.Failed).
			Msg("Upstream fan-out completed with partial failures")
	}
	return results, summary
}

// Collected returns the successful values keyed by input key.
func Collected[T any](results []Result) map[string]T {
	out := make(map[string]T, len(results))
	for _, r := range results {
		if r.Err != nil {
			continue
		}
		if v, ok := r.Value.(T); ok {
			out[r.Key] = v
		}
	}
	return out
}

func summarize(results []Result) Summary {
	s := Summary{Attempted: len(results)}
	for _, r := range results {
		if r.Err == nil {
			s.Succeeded++
			continue
		}
		s.Failed++
		if len(s.Errors) < maxErrorMessages {
			msg := r.Key + ": " + r.Err.Error()
			if len(msg) > 200 {
				msg = msg[:200]
			}
			s.Errors = append(s.Errors, msg)
		}
	}
	return s
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
