// Package batch drives rate-limited, batched retrieval of many items.
// Requests within a batch run concurrently; batches run strictly in
// sequence with a mandatory delay between them, a self-imposed rate limit
// against the upstream API. Individual failures are collected, never
// fatal.
package batch

import (
	"context"
	"sync"
	"time"

	"github.com/agentstation/grimoire/pkg/logging"
)

// Default tuning, matching the upstream API's tolerance.
const (
	DefaultBatchSize = 10
	DefaultDelay     = 500 * time.Millisecond
)

// Progress reports how far a batched operation has advanced. Loaded
// counts processed descriptors, successful or not.
type Progress struct {
	Loaded     int
	Total      int
	Percentage float64
	Complete   bool
}

// Options tunes a batched fetch.
type Options struct {
	// BatchSize is the number of concurrent requests per batch.
	BatchSize int
	// Delay is the pause between consecutive batches. No delay occurs
	// before the first batch or after the last.
	Delay time.Duration
}

func (o Options) withDefaults() Options {
	if o.BatchSize <= 0 {
		o.BatchSize = DefaultBatchSize
	}
	if o.Delay <= 0 {
		o.Delay = DefaultDelay
	}
	return o
}

// Result holds the outcome of a batched fetch: successful items in
// original relative batch order, plus the descriptors that failed.
type Result[D, R any] struct {
	Items  []R
	Failed []D
}

// Fetch runs fn over items in batches (bulk mode). Every request in a
// batch is issued concurrently and allowed to settle; failures are
// recorded in the result, never propagated. The only error Fetch itself
// returns is a context cancellation between batches.
func Fetch[D, R any](ctx context.Context, items []D, fn func(context.Context, D) (R, error), opts Options) (Result[D, R], error) {
	return FetchProgressive(ctx, items, fn, opts, nil)
}

// FetchProgressive behaves like Fetch but additionally invokes onBatch
// after each batch settles, with that batch's successful items and the
// overall progress. This enables incremental consumption while the
// operation is still running.
func FetchProgressive[D, R any](ctx context.Context, items []D, fn func(context.Context, D) (R, error), opts Options, onBatch func(batch []R, p Progress)) (Result[D, R], error) {
	opts = opts.withDefaults()
	log := logging.FromContext(ctx)

	var result Result[D, R]
	total := len(items)
	if total == 0 {
		if onBatch != nil {
			onBatch(nil, Progress{Total: 0, Percentage: 100, Complete: true})
		}
		return result, nil
	}

	for start := 0; start < total; start += opts.BatchSize {
		end := start + opts.BatchSize
		if end > total {
			end = total
		}
		descriptors := items[start:end]

		outcomes := make([]R, len(descriptors))
		failures := make([]error, len(descriptors))

		var wg sync.WaitGroup
		for i, d := range descriptors {
			wg.Add(1)
			go func(i int, d D) {
				defer wg.Done()
				outcomes[i], failures[i] = fn(ctx, d)
			}(i, d)
		}
		wg.Wait()

		batchItems := make([]R, 0, len(descriptors))
		for i := range descriptors {
			if failures[i] != nil {
				log.Warn().
					Err(failures[i]).
					Interface("descriptor", descriptors[i]).
					Msg("Fetch failed, skipping item")
				result.Failed = append(result.Failed, descriptors[i])
				continue
			}
			batchItems = append(batchItems, outcomes[i])
		}
		result.Items = append(result.Items, batchItems...)

		complete := end == total
		if onBatch != nil {
			onBatch(batchItems, Progress{
				Loaded:     end,
				Total:      total,
				Percentage: float64(end) / float64(total) * 100,
				Complete:   complete,
			})
		}

		if complete {
			break
		}

		// Rate limiting: pause between batches only.
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		case <-time.After(opts.Delay):
		}
	}

	if len(result.Failed) > 0 {
		log.Warn().
			Int("failed", len(result.Failed)).
			Int("total", total).
			Msg("Some items failed to fetch")
	}

	return result, nil
}
