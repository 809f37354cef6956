package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dusk-indust/repodoc/internal/config"
	"github.com/dusk-indust/repodoc/internal/docerr"
	"github.com/dusk-indust/repodoc/internal/export"
	"github.com/dusk-indust/repodoc/internal/graph"
	"github.com/dusk-indust/repodoc/internal/metrics"
	"github.com/dusk-indust/repodoc/internal/repo"
	"github.com/dusk-indust/repodoc/internal/tree"
)

// Request describes one documentation run.
type Request struct {
	// Target is a local directory or a repository URL.
	Target string
	// Output is the document path. Empty means the configured output,
	// resolved against the repository root.
	Output string
	// Config overrides the repository's own config file when set.
	Config *config.ProjectConfig
}

// Result is the outcome of a run. On a save, export or index failure the
// result is still returned alongside the error, with Document populated.
type Result struct {
	RunID       string
	RepoName    string
	RepoPath    string
	Document    string
	OutputPath  string
	Saved       bool
	ExportPath  string
	Summary     string
	Metadata    *repo.Metadata
	Tree        *tree.Node
	Model       *graph.RelationshipModel
	SourceFiles int
	GeneratedAt time.Time
	Duration    time.Duration
	// Store holds the graph index when indexing was enabled. The caller
	// closes it.
	Store graph.Store
}

// RunError reports the stage a run failed in.
type RunError struct {
	RunID string
	Stage Stage
	Err   error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err)
}

func (e *RunError) Unwrap() error {
	return e.Err
}

// FailedStage returns the stage recorded on err and whether there was one.
func FailedStage(err error) (Stage, bool) {
	var re *RunError
	if errors.As(err, &re) {
		return re.Stage, true
	}
	return 0, false
}

// Options configure a Runner. Every field is optional.
type Options struct {
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
	Progress *ProgressReporter
	// Now supplies the document timestamp.
	Now func() time.Time
	// OpenStore opens the graph index for a run whose document is written
	// to dir. The default is a file-backed embedded database when available,
	// falling back to memory.
	OpenStore func(dir string) (graph.Store, error)
}

// Runner executes documentation runs. It holds no per-run state and is safe
// for concurrent use.
type Runner struct {
	logger    *slog.Logger
	metrics   *metrics.Metrics
	progress  *ProgressReporter
	now       func() time.Time
	openStore func(dir string) (graph.Store, error)
}

// NewRunner creates a Runner.
func NewRunner(opts Options) *Runner {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	r := &Runner{
		logger:    opts.Logger,
		metrics:   opts.Metrics,
		progress:  opts.Progress,
		now:       opts.Now,
		openStore: opts.OpenStore,
	}
	if r.openStore == nil {
		r.openStore = r.defaultStore
	}
	return r
}

// run carries the state of one Run call between stages.
type run struct {
	*Runner
	id     string
	logger *slog.Logger
}

// Run executes the pipeline for req.
func (r *Runner) Run(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	rn := &run{Runner: r, id: uuid.NewString()}
	rn.logger = r.logger.With("run", rn.id)
	rn.logger.Info("run started", "target", req.Target)

	res, err := rn.execute(ctx, req)
	if res != nil {
		res.Duration = time.Since(start)
	}

	modules := 0
	if res != nil && res.Model != nil {
		modules = len(res.Model.ExternalModules)
	}
	r.metrics.ObserveRun(err, modules)

	if err != nil {
		rn.logger.Error("run failed", "error", err)
		return res, err
	}
	rn.logger.Info("run complete", "output", res.OutputPath, "duration", res.Duration.Round(time.Millisecond))
	return res, nil
}

func (rn *run) execute(ctx context.Context, req Request) (*Result, error) {
	res := &Result{RunID: rn.id}
	cfg := req.Config

	// Acquire: clone remote targets and settle the configuration.
	err := rn.stage(ctx, StageAcquire, func() (string, error) {
		cloneCfg := cfg
		if cloneCfg == nil {
			cloneCfg = config.Defaults()
		}
		root, err := acquire(ctx, req.Target, cloneCfg, rn.logger)
		if err != nil {
			return "", err
		}
		res.RepoPath = root
		res.RepoName = filepath.Base(root)

		if cfg == nil {
			if cfg, err = config.Load(root); err != nil {
				return "", err
			}
		}
		return root, nil
	})
	if err != nil {
		return nil, err
	}

	err = rn.stage(ctx, StageMetadata, func() (string, error) {
		res.Metadata = repo.ReadMetadata(ctx, res.RepoPath)
		res.Summary = repo.ReadSummary(res.RepoPath, 0)
		if res.Metadata.Empty() {
			return "no git metadata", nil
		}
		return res.Metadata.Commit.Hash, nil
	})
	if err != nil {
		return nil, err
	}

	err = rn.stage(ctx, StageTree, func() (string, error) {
		policy, err := cfg.IgnorePolicy()
		if err != nil {
			return "", docerr.Wrap(err, docerr.KindInvalidConfig, "tree", res.RepoPath)
		}
		root, err := tree.Build(res.RepoPath, tree.Options{
			MaxDepth: cfg.MaxDepth,
			Policy:   policy,
			Exclude:  GeneratedFiles(outputPath(req.Output, cfg.Output, res.RepoPath)),
			Logger:   rn.logger,
		})
		if err != nil {
			return "", err
		}
		res.Tree = root
		files, dirs := tree.Count(root)
		return fmt.Sprintf("%d files, %d directories", files, dirs-1), nil
	})
	if err != nil {
		return nil, err
	}

	var exts []graph.FileExtraction
	jobs := SourceFiles(res.Tree, res.RepoPath)
	res.SourceFiles = len(jobs)
	err = rn.stage(ctx, StageExtract, func() (string, error) {
		reg := graph.DefaultRegistry(cfg.Parser == config.ParserTreeSitter)
		var err error
		exts, err = ExtractBatch(ctx, reg, jobs, BatchOptions{
			Concurrency: cfg.Concurrency,
			MaxFileSize: cfg.MaxFileSize,
			Metrics:     rn.metrics,
		})
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d source files", len(exts)), nil
	})
	if err != nil {
		return nil, err
	}

	err = rn.stage(ctx, StageAggregate, func() (string, error) {
		known := make([]string, len(jobs))
		for i, j := range jobs {
			known[i] = j.RelPath
		}
		res.Model = graph.AggregateWith(exts, graph.NewResolver(res.RepoPath, known))
		stats := res.Model.Stats()
		return fmt.Sprintf("%d functions, %d classes, %d external modules",
			stats.FunctionCount, stats.ClassCount, stats.ExternalModules), nil
	})
	if err != nil {
		return nil, err
	}

	in := export.RenderInput{
		RepoName:    res.RepoName,
		Summary:     res.Summary,
		Metadata:    res.Metadata,
		Tree:        res.Tree,
		Model:       res.Model,
		GeneratedAt: rn.now(),
		Diagram:     cfg.Diagram,
	}
	res.GeneratedAt = in.GeneratedAt
	err = rn.stage(ctx, StageRender, func() (string, error) {
		res.Document = export.Render(in)
		return fmt.Sprintf("%d bytes", len(res.Document)), nil
	})
	if err != nil {
		return nil, err
	}

	res.OutputPath = outputPath(req.Output, cfg.Output, res.RepoPath)
	err = rn.stage(ctx, StageSave, func() (string, error) {
		if err := export.SaveErr([]byte(res.Document), res.OutputPath); err != nil {
			return "", err
		}
		res.Saved = true
		return res.OutputPath, nil
	})
	if err != nil {
		return res, err
	}

	if cfg.Export == config.ExportNone {
		rn.skip(StageExport)
	} else {
		err = rn.stage(ctx, StageExport, func() (string, error) {
			f, err := export.ParseFormat(cfg.Export)
			if err != nil {
				return "", docerr.Wrap(err, docerr.KindInvalidConfig, "export", "")
			}
			dest := strings.TrimSuffix(res.OutputPath, filepath.Ext(res.OutputPath)) + f.Ext()
			if err := export.WriteBundle(export.NewBundle(in), f, dest); err != nil {
				return "", err
			}
			res.ExportPath = dest
			return dest, nil
		})
		if err != nil {
			return res, err
		}
	}

	if !cfg.Index {
		rn.skip(StageIndex)
		return res, nil
	}
	err = rn.stage(ctx, StageIndex, func() (string, error) {
		store, err := rn.openStore(filepath.Dir(res.OutputPath))
		if err != nil {
			return "", err
		}
		if err := graph.Index(ctx, store, res.Model); err != nil {
			store.Close()
			return "", err
		}
		res.Store = store
		stats, err := store.Stats(ctx)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d nodes, %d edges", stats.FileCount+stats.SymbolCount+stats.ModuleCount, stats.EdgeCount), nil
	})
	return res, err
}

// stage runs fn as stage s, emitting progress and recording its duration.
// fn returns a short detail for the completion event.
func (rn *run) stage(ctx context.Context, s Stage, fn func() (string, error)) error {
	if err := ctx.Err(); err != nil {
		return rn.fail(s, err)
	}
	rn.progress.Emit(ProgressEvent{RunID: rn.id, Stage: s, Status: ProgressWorking})
	start := time.Now()

	detail, err := fn()
	elapsed := time.Since(start)
	rn.metrics.ObserveStage(s.String(), elapsed)
	if err != nil {
		return rn.fail(s, err)
	}

	rn.logger.Debug("stage complete", "stage", s, "duration", elapsed.Round(time.Microsecond), "detail", detail)
	rn.progress.Emit(ProgressEvent{RunID: rn.id, Stage: s, Status: ProgressComplete, Message: detail})
	return nil
}

func (rn *run) fail(s Stage, err error) error {
	rn.progress.Emit(ProgressEvent{RunID: rn.id, Stage: s, Status: ProgressFailed, Message: err.Error()})
	return &RunError{RunID: rn.id, Stage: s, Err: err}
}

func (rn *run) skip(s Stage) {
	rn.progress.Emit(ProgressEvent{RunID: rn.id, Stage: s, Status: ProgressSkipped})
}

// acquire returns the absolute repository root for target, cloning it first
// when target is a URL.
func acquire(ctx context.Context, target string, cfg *config.ProjectConfig, logger *slog.Logger) (string, error) {
	if repo.IsURL(target) {
		return repo.Clone(ctx, target, cfg.CloneDir, cfg.CloneTimeout, logger)
	}
	root, err := filepath.Abs(target)
	if err != nil {
		return "", docerr.Wrap(err, docerr.KindTraversalFailed, "acquire", target)
	}
	return root, nil
}

func outputPath(requested, configured, repoRoot string) string {
	p := requested
	if p == "" {
		p = configured
		if p == "" {
			p = config.DefaultOutput
		}
		if !filepath.IsAbs(p) {
			p = filepath.Join(repoRoot, p)
		}
	}
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

// GeneratedFiles lists every file a run may write next to the document at
// out: the document itself, its HTML page and both bundle formats.
func GeneratedFiles(out string) []string {
	base := strings.TrimSuffix(out, filepath.Ext(out))
	return []string{out, base + ".html", base + export.FormatJSON.Ext(), base + export.FormatYAML.Ext()}
}

// defaultStore opens the file-backed graph index under dir when the embedded
// database is available, and an in-memory index otherwise.
func (r *Runner) defaultStore(dir string) (graph.Store, error) {
	if graph.KuzuAvailable {
		s, err := graph.NewKuzuFileStore(filepath.Join(dir, ".repodoc", "graph"))
		if err == nil {
			return s, nil
		}
		r.logger.Warn("graph database unavailable, using in-memory index", "error", err)
	}
	return graph.NewMemStore(), nil
}
