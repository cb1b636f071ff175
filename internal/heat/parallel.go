package heat

import "sync"

// minParallelNodes is the interior size below which goroutine overhead
// outweighs the split.
const minParallelNodes = 4096

// parallelFor runs fn over [start, end) in up to workers contiguous chunks.
func parallelFor(start, end, workers int, fn func(lo, hi int)) {
	n := end - start
	if n <= 0 {
		return
	}
	if workers > n {
		workers = n
	}
	if workers <= 1 {
		fn(start, end)
		return
	}

	chunk := (n + workers - 1) / workers

	var wg sync.WaitGroup
	for lo := start; lo < end; lo += chunk {
		hi := lo + chunk
		if hi > end {
			hi = end
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			fn(lo, hi)
		}(lo, hi)
	}
	wg.Wait()
}
