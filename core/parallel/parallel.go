// Package parallel splits row ranges across goroutines.
//
// Callers must only write to rows inside the range they are handed; under
// that rule the result is identical to a sequential loop.
package parallel

import (
	"runtime"
	"sync"
)

// RowThreshold is the row count at or below which work stays on the calling
// goroutine. Goroutine start-up costs more than the work for small inputs.
const RowThreshold = 1000

// Parallelize splits [0, items) into one contiguous chunk per CPU and runs fn
// on each chunk concurrently. It returns when every chunk is done.
func Parallelize(items int, fn func(start, end int)) {
	ParallelizeN(items, runtime.NumCPU(), fn)
}

// ParallelizeN is Parallelize with an explicit worker count.
func ParallelizeN(items, workers int, fn func(start, end int)) {
	if items <= 0 {
		return
	}
	if workers < 1 {
		workers = 1
	}
	if workers > items {
		workers = items
	}
	if workers == 1 {
		fn(0, items)
		return
	}

	chunkSize := (items + workers - 1) / workers

	var wg sync.WaitGroup
	for start := 0; start < items; start += chunkSize {
		end := start + chunkSize
		if end > items {
			end = items
		}
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}
	wg.Wait()
}

// ParallelizeWithThreshold runs fn(0, items) sequentially when items is at or
// below threshold, and Parallelize otherwise.
func ParallelizeWithThreshold(items int, threshold int, fn func(start, end int)) {
	if items <= threshold {
		if items > 0 {
			fn(0, items)
		}
		return
	}
	Parallelize(items, fn)
}
