package dedup

import (
	"context"
	"runtime"
	"sync"
)

// DefaultWorkers is the hashing pool size when the caller does not override
// it: one worker per logical CPU.
func DefaultWorkers() int {
	return runtime.NumCPU()
}

// runPool fans entries out to a fixed pool of workers and blocks until every
// entry has been processed. Backpressure comes from the bounded task channel
// and the pool size; nothing queues without limit. Cancelling the context
// stops feeding new tasks but lets in-flight ones finish.
func runPool(ctx context.Context, workers int, entries []indexed, fn func(indexed)) {
	if workers < 1 {
		workers = 1
	}

	tasks := make(chan indexed, workers*2)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for e := range tasks {
				fn(e)
			}
		}()
	}

feed:
	for _, e := range entries {
		select {
		case <-ctx.Done():
			break feed
		case tasks <- e:
		}
	}
	close(tasks)
	wg.Wait()
}
