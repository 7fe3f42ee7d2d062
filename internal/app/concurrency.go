package app

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// ParallelLimit executes functions with bounded concurrency. At most limit
// goroutines run simultaneously; the first error cancels the rest.
//
// The stale-pricing batch uses this to recalculate many quotes without
// flooding the repository.
func ParallelLimit[T any](
	ctx context.Context,
	limit int,
	fns ...func(context.Context) (T, error),
) ([]T, error) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	results := make([]T, len(fns))

	for i, fn := range fns {
		g.Go(func() error {
			result, err := fn(ctx)
			if err != nil {
				return err
			}

			results[i] = result

			return nil
		})
	}

	err := g.Wait()
	if err != nil {
		return nil, fmt.Errorf("parallel execution failed: %w", err)
	}

	return results, nil
}
