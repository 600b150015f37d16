package md2site

import (
	"context"
	"runtime"
	"sync"
	"time"
)

// Pool sizing constants.
const (
	// MinPoolSize ensures at least one worker is available.
	MinPoolSize = 1

	// MaxPoolSize caps automatic sizing; conversions are CPU-bound and a
	// site build runs other tasks alongside.
	MaxPoolSize = 8

	// cpuDivisor leaves headroom for tasks running in parallel stages.
	cpuDivisor = 2
)

// ResolvePoolSize determines the worker count.
// Priority: explicit workers > GOMAXPROCS-based calculation.
// Exported for use by the build runner and CLIs.
func ResolvePoolSize(workers int) int {
	if workers > 0 {
		return workers
	}

	// GOMAXPROCS is adjusted by automaxprocs in containers.
	n := runtime.GOMAXPROCS(0) / cpuDivisor

	if n < MinPoolSize {
		return MinPoolSize
	}
	if n > MaxPoolSize {
		return MaxPoolSize
	}
	return n
}

// ConvertAll converts inputs with a bounded worker pool. Every input gets a
// Result at its own index; a failing document never stops the others.
// After ctx is cancelled, pending inputs fail with ctx.Err().
func (c *Converter) ConvertAll(ctx context.Context, inputs []Input) []Result {
	if len(inputs) == 0 {
		return nil
	}

	concurrency := ResolvePoolSize(c.cfg.workers)
	if concurrency > len(inputs) {
		concurrency = len(inputs)
	}

	results := make([]Result, len(inputs))
	var wg sync.WaitGroup
	jobs := make(chan int, len(inputs))

	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for idx := range jobs {
				if ctx.Err() != nil {
					results[idx] = Result{Input: inputs[idx], Err: ctx.Err()}
					continue
				}
				results[idx] = c.convertOne(ctx, inputs[idx])
			}
		}()
	}

	for i := range inputs {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	return results
}

// convertOne converts a single input and times it.
func (c *Converter) convertOne(ctx context.Context, in Input) Result {
	start := time.Now()
	page, err := c.Convert(ctx, in)
	return Result{
		Input:    in,
		Page:     page,
		Err:      err,
		Duration: time.Since(start),
	}
}
