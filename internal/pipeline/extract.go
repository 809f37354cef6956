package pipeline

import (
	"context"
	"path/filepath"
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dusk-indust/repodoc/internal/graph"
	"github.com/dusk-indust/repodoc/internal/metrics"
	"github.com/dusk-indust/repodoc/internal/tree"
)

// FileJob is one file of an extraction batch.
type FileJob struct {
	AbsPath string
	// RelPath is slash-separated and relative to the repository root. It is
	// the key the file is recorded under.
	RelPath string
}

// SourceFiles lists the files of root that look like source code, in tree
// order. Non-source files are not part of the batch.
func SourceFiles(root *tree.Node, repoRoot string) []FileJob {
	var jobs []FileJob
	for _, p := range tree.Files(root) {
		if _, ok := graph.LanguageForPath(p); !ok {
			continue
		}
		rel, err := filepath.Rel(repoRoot, p)
		if err != nil {
			rel = p
		}
		jobs = append(jobs, FileJob{AbsPath: p, RelPath: filepath.ToSlash(rel)})
	}
	return jobs
}

// BatchOptions configure ExtractBatch.
type BatchOptions struct {
	// Concurrency bounds the number of files extracted at once. Zero means
	// runtime.NumCPU().
	Concurrency int
	MaxFileSize int64
	Metrics     *metrics.Metrics
	// OnFile, if set, is called after each file with the number finished so
	// far. It may be called from several goroutines.
	OnFile func(done, total int)
}

// ExtractBatch extracts every job on a bounded worker pool. Each worker writes
// only its own slot of the result, which is returned once all workers have
// finished. If ctx is cancelled before then, the partial batch is discarded
// and ctx.Err() returned.
func ExtractBatch(ctx context.Context, reg *graph.Registry, jobs []FileJob, opts BatchOptions) ([]graph.FileExtraction, error) {
	limit := opts.Concurrency
	if limit <= 0 {
		limit = runtime.NumCPU()
	}

	results := make([]graph.FileExtraction, len(jobs))
	var done atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, job := range jobs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			res := graph.ExtractFile(gctx, reg, job.AbsPath, job.RelPath, opts.MaxFileSize)
			opts.Metrics.ObserveFile(string(res.Language), string(res.ParseError), time.Since(start))
			results[i] = res

			n := done.Add(1)
			if opts.OnFile != nil {
				opts.OnFile(int(n), len(jobs))
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
