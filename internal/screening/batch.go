package screening

import (
	"context"
	"sync"
)

// AssessAll assesses every input with up to workers concurrent goroutines.
// Results keep the order of inputs. Inputs not started before ctx is
// cancelled are left nil and ctx.Err() is returned.
func (s *Assessor) AssessAll(ctx context.Context, inputs []Input, workers int) ([]*Assessment, error) {
	if workers < 1 {
		workers = 1
	}

	results := make([]*Assessment, len(inputs))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i, in := range inputs {
		if err := ctx.Err(); err != nil {
			wg.Wait()
			return results, err
		}
		select {
		case <-ctx.Done():
			wg.Wait()
			return results, ctx.Err()
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(i int, in Input) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = s.Assess(in)
		}(i, in)
	}

	wg.Wait()
	return results, nil
}
