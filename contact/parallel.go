package contact

import (
	"runtime"
	"sync"
)

// parallelFor splits [0, n) into contiguous chunks, one per worker, and runs
// fn on each chunk concurrently. Workers write only to per-index slots of
// preallocated arrays, so the result is deterministic regardless of
// scheduling.
func parallelFor(n int, fn func(lo, hi int)) {
	workers := runtime.GOMAXPROCS(0)
	if workers > n {
		workers = n
	}
	if workers <= 1 {
		fn(0, n)
		return
	}

	var wg sync.WaitGroup
	chunk := (n + workers - 1) / workers
	for lo := 0; lo < n; lo += chunk {
		hi := lo + chunk
		if hi > n {
			hi = n
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			fn(lo, hi)
		}(lo, hi)
	}
	wg.Wait()
}
