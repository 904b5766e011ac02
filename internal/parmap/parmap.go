// Package parmap fans row-independent work across a bounded worker pool.
// Callers write results by row index, so output is identical to a serial
// pass regardless of worker count or scheduling.
package parmap

import "sync"

// Run invokes fn(i) for every i in [0, n) using at most workers goroutines.
// workers <= 1 degrades to a plain serial loop.
func Run(workers, n int, fn func(i int)) {
	if n <= 0 {
		return
	}
	if workers <= 1 || n == 1 {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}
	if workers > n {
		workers = n
	}

	idx := make(chan int)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range idx {
				fn(i)
			}
		}()
	}
	for i := 0; i < n; i++ {
		idx <- i
	}
	close(idx)
	wg.Wait()
}
