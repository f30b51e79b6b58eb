package analysis

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/san-kum/ltinorm/internal/lti"
)

// ErrEmptyBatch indicates Batch was called without systems.
var ErrEmptyBatch = errors.New("analysis: no systems to analyze")

// Named pairs a system with the name it is reported under.
type Named struct {
	Name        string
	Description string
	System      *lti.System
}

// Batch analyzes every system concurrently and returns the reports in input
// order. The first failure, in input order, is returned.
func Batch(ctx context.Context, systems []Named, opts Options) ([]*Report, error) {
	if len(systems) == 0 {
		return nil, ErrEmptyBatch
	}

	// A shared observer would see interleaved refinements.
	opts.Observer = nil

	reports := make([]*Report, len(systems))
	errs := make([]error, len(systems))

	var wg sync.WaitGroup
	for i := range systems {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			if err := ctx.Err(); err != nil {
				errs[idx] = err
				return
			}
			item := systems[idx]
			reports[idx], errs[idx] = Analyze(ctx, item.Name, item.System, opts)
			if reports[idx] != nil {
				reports[idx].Description = item.Description
			}
		}(i)
	}

	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("%s: %w", systems[i].Name, err)
		}
	}

	return reports, nil
}
