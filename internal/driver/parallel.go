package driver

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"cexpand/internal/diag"
	"cexpand/internal/source"
)

// PathResult pairs one input path with its rewrite outcome. Err is set for
// I/O failures; Result is set otherwise.
type PathResult struct {
	Path   string
	Result *ExpandResult
	Err    error
}

// ExpandPaths rewrites several files concurrently. Each file gets its own
// FileSet and interner, so no synchronization is shared between workers;
// results keep the input order.
func ExpandPaths(ctx context.Context, paths []string, opts ExpandOptions, jobs int) ([]PathResult, error) {
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	results := make([]PathResult, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, max(len(paths), 1)))

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			res, err := Expand(path, opts)
			if err != nil {
				// Surface the load failure as a diagnostic so a bad path
				// does not abort the sibling files.
				bag := diag.NewBag(opts.MaxDiagnostics)
				bag.Add(diag.Diagnostic{
					Severity: diag.SevError,
					Code:     diag.IoReadFailed,
					Message:  "failed to load file: " + err.Error(),
					Primary:  source.Span{},
				})
				results[i] = PathResult{Path: path, Err: err, Result: &ExpandResult{Bag: bag}}
				return nil
			}
			results[i] = PathResult{Path: path, Result: res}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}
