package testutil

import (
	"sync"
	"sync/atomic"

	dErrors "eshmarket/pkg/domain-errors"
)

// ConcurrentResult tracks outcomes of concurrent test operations.
type ConcurrentResult struct {
	Successes       int32
	AlreadyResolved int32
	Conflicts       int32
	NotFounds       int32
	Errors          int32
}

// Total returns the total number of operations executed.
func (r *ConcurrentResult) Total() int32 {
	return r.Successes + r.AlreadyResolved + r.Conflicts + r.NotFounds + r.Errors
}

// RunConcurrent executes fn in parallel goroutines and collects results,
// categorized by domain error code. This helper replaces the common pattern
// of WaitGroup + atomic counters in tests.
func RunConcurrent(goroutines int, fn func(idx int) error) *ConcurrentResult {
	var wg sync.WaitGroup
	var successes, alreadyResolved, conflicts, notFounds, errs atomic.Int32

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			err := fn(idx)
			switch {
			case err == nil:
				successes.Add(1)
			case dErrors.HasCode(err, dErrors.CodeAlreadyResolved):
				alreadyResolved.Add(1)
			case dErrors.HasCode(err, dErrors.CodeConflict):
				conflicts.Add(1)
			case dErrors.HasCode(err, dErrors.CodeNotFound):
				notFounds.Add(1)
			default:
				errs.Add(1)
			}
		}(i)
	}

	wg.Wait()

	return &ConcurrentResult{
		Successes:       successes.Load(),
		AlreadyResolved: alreadyResolved.Load(),
		Conflicts:       conflicts.Load(),
		NotFounds:       notFounds.Load(),
		Errors:          errs.Load(),
	}
}
