// Copyright 2026 xultaeculcis
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package batch runs one operation over a list of paths on a fixed number of
// workers and collects exactly one Result per path.
package batch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/xultaeculcis/astrotools/metrics"
	"go.uber.org/zap"
)

// Op processes a single path and returns the number of bytes it handled.
type Op func(ctx context.Context, path string) (int64, error)

// Progress observes a run. Advance is called from a single goroutine once
// per completed item.
type Progress interface {
	Start(total int)
	Advance(result Result)
	Finish()
}

type Result struct {
	Path  string
	Bytes int64
	Err   error
}

type PanicError struct {
	Path  string
	Value interface{}
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic while processing %s: %v", e.Path, e.Value)
}

// Run applies op to every path using at most workers concurrent calls and
// returns the results in completion order. A failing or panicking item never
// affects the others. Items not yet dispatched when ctx is cancelled are
// reported with ctx.Err().
func Run(ctx context.Context, lgr *zap.SugaredLogger, paths []string, workers int, op Op, progress Progress) Results {
	if len(paths) == 0 {
		lgr.Infow("batch_empty")
		return nil
	}
	if workers < 1 {
		workers = 1
	}
	if workers > len(paths) {
		workers = len(paths)
	}
	if progress == nil {
		progress = nopProgress{}
	}

	tasks := make(chan string)
	results := make(chan Result, workers)

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for path := range tasks {
				results <- runOne(ctx, op, path)
			}
		}()
	}

	go func() {
		var skipped []string
		doneCh := ctx.Done()
	DISPATCH:
		for i, path := range paths {
			select {
			case <-doneCh:
				skipped = paths[i:]
				break DISPATCH
			case tasks <- path:
			}
		}
		close(tasks)
		wg.Wait()
		for _, path := range skipped {
			results <- Result{Path: path, Err: ctx.Err()}
		}
		close(results)
	}()

	lgr.Debugw("batch_start", "items", len(paths), "workers", workers)
	progress.Start(len(paths))
	collected := make(Results, 0, len(paths))
	for result := range results {
		outcome := "ok"
		if result.Err != nil {
			outcome = "error"
		}
		metrics.Batch.Items.WithLabelValues(outcome).Inc()
		collected = append(collected, result)
		progress.Advance(result)
	}
	progress.Finish()
	lgr.Debugw("batch_done", "items", collected.Len(), "failed", len(collected.Failed()))
	return collected
}

func runOne(ctx context.Context, op Op, path string) (result Result) {
	result.Path = path
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			result.Bytes = 0
			result.Err = &PanicError{Path: path, Value: r}
		}
		metrics.Batch.ItemSeconds.Observe(time.Since(start).Seconds())
	}()
	result.Bytes, result.Err = op(ctx, path)
	return result
}

type nopProgress struct{}

func (nopProgress) Start(int) {}
func (nopProgress) Advance(Result) {}
func (nopProgress) Finish() {}
