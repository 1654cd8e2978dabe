// Package workerpool provides the bounded, order-preserving parallel
// execution primitive used for the per-note phases of the pipeline
// (parse+extract, render): an index-tagged channel fan-out over a bounded
// goroutine pool, generalized with generics.
package workerpool

import (
	"context"
	"runtime"
	"sync"
)

// Pool bounds the number of concurrent workers processing a batch.
type Pool struct {
	workers int
}

// New creates a Pool with the given worker count. A count < 1 uses
// runtime.NumCPU().
func New(workers int) *Pool {
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	return &Pool{workers: workers}
}

// Result pairs one input with the outcome of applying fn to it.
type Result[T any, R any] struct {
	Input T
	Value R
	Err   error
}

// Map runs fn over every element of inputs using the pool's worker budget
// and returns results in input order. There are no ordering requirements
// between workers: outputs are keyed by index, not completion order.
func Map[T any, R any](ctx context.Context, p *Pool, inputs []T, fn func(context.Context, T) (R, error)) []Result[T, R] {
	if len(inputs) == 0 {
		return nil
	}

	type job struct {
		index int
		input T
	}

	jobs := make(chan job, len(inputs))
	results := make([]Result[T, R], len(inputs))
	for i, in := range inputs {
		results[i].Input = in
	}

	var wg sync.WaitGroup
	workers := p.workers
	if workers > len(inputs) {
		workers = len(inputs)
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case j, ok := <-jobs:
					if !ok {
						return
					}
					value, err := fn(ctx, j.input)
					results[j.index].Value = value
					results[j.index].Err = err
				}
			}
		}()
	}

	for i, in := range inputs {
		jobs <- job{index: i, input: in}
	}
	close(jobs)

	wg.Wait()
	return results
}
