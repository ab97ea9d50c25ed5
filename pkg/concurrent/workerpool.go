// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package concurrent bounds the fan-out of provider calls and store deletes.
package concurrent

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// WorkerPool runs functions with at most Size of them in flight.
type WorkerPool struct {
	workerCount int
}

// NewWorkerPool creates a new worker pool. A non-positive count means one worker.
func NewWorkerPool(workerCount int) *WorkerPool {
	if workerCount <= 0 {
		workerCount = 1
	}
	return &WorkerPool{
		workerCount: workerCount,
	}
}

// Size returns the number of workers.
func (wp *WorkerPool) Size() int {
	return wp.workerCount
}

// Run executes the functions and returns the first error. The first failure
// cancels the functions that have not started yet.
func (wp *WorkerPool) Run(ctx context.Context, functions ...func() error) error {
	if len(functions) == 0 {
		return nil
	}

	g, groupCtx := errgroup.WithContext(ctx)
	g.SetLimit(wp.workerCount)

	for _, fn := range functions {
		g.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			return fn()
		})
	}

	return g.Wait()
}

// RunAll executes every function regardless of failures and returns the
// non-nil errors in submission order. Functions not started before ctx is
// done report ctx.Err().
func (wp *WorkerPool) RunAll(ctx context.Context, functions ...func() error) []error {
	if len(functions) == 0 {
		return nil
	}

	// Each goroutine writes only its own slot.
	results := make([]error, len(functions))

	var g errgroup.Group
	g.SetLimit(wp.workerCount)

	for i, fn := range functions {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = err
				return nil
			}
			results[i] = fn()
			return nil
		})
	}
	_ = g.Wait()

	var errs []error
	for _, err := range results {
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}
