// Package batch fans one logical operation out to many per-item calls with
// bounded concurrency. Items are processed in fixed-size chunks; a chunk must
// fully settle before the next one starts, which keeps the number of in-flight
// plugin commands predictable.
package batch

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

const (
	// DefaultChunkSize is how many items are grouped per sequential chunk.
	DefaultChunkSize = 20
	// DefaultConcurrency caps simultaneous workers within a chunk.
	DefaultConcurrency = 5
)

// Options tunes a batch run.
type Options struct {
	// ChunkSize groups items into sequentially processed chunks.
	ChunkSize int
	// Concurrency caps simultaneous workers within a chunk.
	Concurrency int
	// SkipErrors records a per-item failure and keeps going. When false the
	// first failure aborts the whole batch.
	SkipErrors bool
}

func (o Options) withDefaults() Options {
	if o.ChunkSize <= 0 {
		o.ChunkSize = DefaultChunkSize
	}
	if o.Concurrency <= 0 {
		o.Concurrency = DefaultConcurrency
	}
	return o
}

// ItemResult is the outcome of one item. Error is a string rather than an
// error value because results cross the tool boundary as JSON.
type ItemResult[T, R any] struct {
	Input   T      `json:"input"`
	Result  R      `json:"result,omitempty"`
	Error   string `json:"error,omitempty"`
	Success bool   `json:"success"`
}

// Worker executes one item.
type Worker[T, R any] func(ctx context.Context, item T) (R, error)

// Run executes worker over items. Results are returned in input order
// regardless of scheduling. With SkipErrors the returned slice always has
// exactly one entry per input item; without it, Run returns the first
// worker error and whatever results had settled is discarded.
func Run[T, R any](ctx context.Context, items []T, worker Worker[T, R], opts Options) ([]ItemResult[T, R], error) {
	opts = opts.withDefaults()
	results := make([]ItemResult[T, R], len(items))

	for start := 0; start < len(items); start += opts.ChunkSize {
		end := start + opts.ChunkSize
		if end > len(items) {
			end = len(items)
		}

		var err error
		if opts.SkipErrors {
			err = runChunkSkipping(ctx, items[start:end], results[start:end], worker, opts.Concurrency)
		} else {
			err = runChunkFailFast(ctx, items[start:end], results[start:end], worker, opts.Concurrency)
		}
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}

// runChunkSkipping runs one chunk recording failures in place. Only a context
// cancellation stops it early.
func runChunkSkipping[T, R any](ctx context.Context, items []T, out []ItemResult[T, R], worker Worker[T, R], concurrency int) error {
	sem := semaphore.NewWeighted(int64(concurrency))
	var wg sync.WaitGroup

	for i := range items {
		if err := sem.Acquire(ctx, 1); err != nil {
			wg.Wait()
			return fmt.Errorf("batch interrupted: %w", err)
		}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer sem.Release(1)
			res, err := worker(ctx, items[i])
			if err != nil {
				out[i] = ItemResult[T, R]{Input: items[i], Error: err.Error()}
				return
			}
			out[i] = ItemResult[T, R]{Input: items[i], Result: res, Success: true}
		}(i)
	}

	wg.Wait()
	return nil
}

// runChunkFailFast runs one chunk and aborts on the first worker error,
// cancelling the chunk's remaining workers.
func runChunkFailFast[T, R any](ctx context.Context, items []T, out []ItemResult[T, R], worker Worker[T, R], concurrency int) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i := range items {
		g.Go(func() error {
			res, err := worker(gctx, items[i])
			if err != nil {
				return err
			}
			out[i] = ItemResult[T, R]{Input: items[i], Result: res, Success: true}
			return nil
		})
	}
	return g.Wait()
}
