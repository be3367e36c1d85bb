package superpipe

import (
	"context"
	"fmt"
	"os"
	"slices"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"
)

// FileResult is the outcome of rewriting one file.
type FileResult struct {
	Path   string
	Source string
	Output string
	Err    error
}

// Changed reports whether the rewrite changed the file's source.
func (r FileResult) Changed() bool {
	return r.Err == nil && r.Output != r.Source
}

// RewriteFiles reads and rewrites each file concurrently. Files do not
// share any state, so a failure in one does not affect the others. Results
// are returned in the order of paths, and the returned error aggregates the
// per-file errors. Cancelling ctx stops files that have not started.
func RewriteFiles(ctx context.Context, paths []string, opts ...Option) ([]FileResult, error) {
	o := collectOptions(opts...)
	results := make([]FileResult, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	if o.concurrency > 0 {
		g.SetLimit(o.concurrency)
	}
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = rewriteFile(ctx, path, opts)
			o.logger.Debug().Str("file", path).Bool("changed", results[i].Changed()).
				AnErr("error", results[i].Err).Msg("rewrote file")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	var result *multierror.Error
	for _, r := range results {
		if r.Err != nil {
			result = multierror.Append(result, r.Err)
		}
	}
	return results, result.ErrorOrNil()
}

func rewriteFile(ctx context.Context, path string, opts []Option) FileResult {
	result := FileResult{Path: path}
	data, err := os.ReadFile(path)
	if err != nil {
		result.Err = fmt.Errorf("read %s: %w", path, err)
		return result
	}
	result.Source = string(data)
	result.Output, result.Err = Rewrite(ctx, result.Source, append(slices.Clip(opts), WithFilename(path))...)
	return result
}
