package matching

import (
	"sync"

	"github.com/okian/pcdmatch/internal/domain/accessibility"
	"github.com/okian/pcdmatch/internal/domain/model"
	"github.com/okian/pcdmatch/internal/domain/sets"
)

type evaluation struct {
	result Result
	stage  Stage
}

// evaluateAll evaluates jobs, concurrently when more than one worker is
// configured. Each worker writes only its own slots, so the output order
// always matches the catalog order.
func (e *Engine) evaluateAll(p model.CandidateProfile, subtypes sets.Set[model.SubtypeID], jobs []model.JobListing, index *accessibility.Index) []evaluation {
	out := make([]evaluation, len(jobs))

	workers := min(e.workers, len(jobs))
	if workers < 2 {
		for i := range jobs {
			out[i].result, out[i].stage = e.evaluate(p, subtypes, jobs[i], index)
		}
		return out
	}

	next := make(chan int)
	var wg sync.WaitGroup
	wg.Add(workers)
	for range workers {
		go func() {
			defer wg.Done()
			for i := range next {
				out[i].result, out[i].stage = e.evaluate(p, subtypes, jobs[i], index)
			}
		}()
	}
	for i := range jobs {
		next <- i
	}
	close(next)
	wg.Wait()
	return out
}
