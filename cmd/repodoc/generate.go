package main

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/repodoc/internal/config"
	"github.com/dusk-indust/repodoc/internal/docerr"
	"github.com/dusk-indust/repodoc/internal/export"
	"github.com/dusk-indust/repodoc/internal/pipeline"
	"github.com/dusk-indust/repodoc/internal/repo"
)

// runFlags are the per-run overrides shared by generate and watch.
type runFlags struct {
	output      string
	json        bool
	export      string
	diagram     bool
	parser      string
	concurrency int
	index       bool
	html        bool
}

func (f *runFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVarP(&f.output, "output", "o", "", "document path (default: docs/DOCUMENTATION.md in the repository)")
	fl.BoolVar(&f.json, "json", false, "also write a JSON bundle next to the document (same as --export json)")
	fl.StringVar(&f.export, "export", "", "also write a bundle next to the document: json or yaml")
	fl.BoolVar(&f.diagram, "diagram", false, "append a mermaid dependency diagram")
	fl.StringVar(&f.parser, "parser", "", "python parser: line or treesitter")
	fl.IntVar(&f.concurrency, "concurrency", 0, "files extracted in parallel (default: number of CPUs)")
	fl.BoolVar(&f.index, "index", false, "persist the graph index next to the document")
	fl.BoolVar(&f.html, "html", false, "also write an HTML rendering next to the document")
}

// resolveConfig settles the configuration for target. Without --config or
// any override the runner loads the repository's own file.
func (a *app) resolveConfig(cmd *cobra.Command, target string, f *runFlags) (*config.ProjectConfig, error) {
	changed := func(names ...string) bool {
		for _, n := range names {
			if cmd.Flags().Changed(n) {
				return true
			}
		}
		return false
	}

	var cfg *config.ProjectConfig
	var err error
	switch {
	case a.configPath != "":
		cfg, err = config.LoadFile(a.configPath)
	case !changed("json", "export", "diagram", "parser", "concurrency", "index"):
		return nil, nil
	case repo.IsURL(target):
		cfg = config.Defaults()
	default:
		cfg, err = config.Load(target)
	}
	if err != nil {
		return nil, err
	}

	if f.json {
		cfg.Export = config.ExportJSON
	}
	if f.export != "" {
		cfg.Export = strings.ToLower(f.export)
	}
	if f.diagram {
		cfg.Diagram = true
	}
	if f.parser != "" {
		cfg.Parser = strings.ToLower(f.parser)
	}
	if f.concurrency > 0 {
		cfg.Concurrency = f.concurrency
	}
	if f.index {
		cfg.Index = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, docerr.Wrap(err, docerr.KindInvalidConfig, "config", target)
	}
	return cfg, nil
}

func (a *app) generateCmd() *cobra.Command {
	var f runFlags
	cmd := &cobra.Command{
		Use:   "generate [path|url]",
		Short: "Generate documentation for a repository",
		Long: `Walks a local directory or clones a git URL and writes its documentation.

Example:
  repodoc generate .
  repodoc generate ../myproject -o API.md --diagram
  repodoc generate https://github.com/user/repo --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := "."
			if len(args) > 0 {
				target = args[0]
			}
			cfg, err := a.resolveConfig(cmd, target, &f)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			runner, flush := a.newRunner()
			res, err := a.generate(ctx, runner, pipeline.Request{Target: target, Output: f.output, Config: cfg}, f.html)
			flush()
			if res != nil && res.Store != nil {
				res.Store.Close()
			}
			if err != nil {
				return err
			}

			if !a.quiet {
				printSummary(a.stderr, res)
			}
			fmt.Fprintln(a.stdout, res.OutputPath)
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

// generate runs the pipeline once and writes the optional HTML rendering.
func (a *app) generate(ctx context.Context, runner *pipeline.Runner, req pipeline.Request, html bool) (*pipeline.Result, error) {
	res, err := runner.Run(ctx, req)
	if err != nil {
		return res, err
	}
	if html {
		page, err := export.ToHTML(res.RepoName, res.Document)
		if err != nil {
			return res, err
		}
		dest := strings.TrimSuffix(res.OutputPath, filepath.Ext(res.OutputPath)) + ".html"
		if err := export.SaveErr(page, dest); err != nil {
			return res, err
		}
		a.logger.Info("html written", "path", dest)
	}
	return res, nil
}
