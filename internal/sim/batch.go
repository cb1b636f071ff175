package sim

import "sync"

// BatchRun is the outcome of one parameter set in a batch.
type BatchRun struct {
	Params  Params
	Result  *Result
	Samples []Sample
	Err     error
}

// RunBatch runs every parameter set on its own goroutine. newSim builds a
// fresh simulator per run since metrics carry state. Results keep the order
// of params.
func RunBatch(newSim func() *Simulator, params []Params) []BatchRun {
	runs := make([]BatchRun, len(params))

	var wg sync.WaitGroup
	for i := range params {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			rec := NewRecorder()
			res, err := newSim().Run(params[idx], rec)
			runs[idx] = BatchRun{
				Params:  params[idx],
				Result:  res,
				Samples: rec.Samples,
				Err:     err,
			}
		}(i)
	}

	wg.Wait()
	return runs
}
