package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/repodoc/internal/pipeline"
	"github.com/dusk-indust/repodoc/internal/repo"
	"github.com/dusk-indust/repodoc/internal/watch"
)

func (a *app) watchCmd() *cobra.Command {
	var (
		f        runFlags
		debounce time.Duration
	)
	cmd := &cobra.Command{
		Use:   "watch [path]",
		Short: "Regenerate the documentation whenever the repository changes",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := "."
			if len(args) > 0 {
				target = args[0]
			}
			if repo.IsURL(target) {
				return errors.New("watch requires a local path")
			}
			root, err := filepath.Abs(target)
			if err != nil {
				return err
			}

			cfg, err := a.resolveConfig(cmd, root, &f)
			if err != nil {
				return err
			}
			if cfg == nil {
				if cfg, err = a.loadConfig(root); err != nil {
					return err
				}
			}
			policy, err := cfg.IgnorePolicy()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			runner, flush := a.newRunner()
			defer flush()
			req := pipeline.Request{Target: root, Output: f.output, Config: cfg}

			res, err := a.regenerate(ctx, runner, req, f.html)
			if res == nil {
				return err
			}

			w, err := watch.New(root, watch.Options{
				Debounce: debounce,
				Policy:   policy,
				Exclude:  pipeline.GeneratedFiles(res.OutputPath),
				Logger:   a.logger,
				Metrics:  a.metrics,
			}, func(paths []string) {
				a.logger.Info("changes detected", "count", len(paths), "first", paths[0])
				_, _ = a.regenerate(ctx, runner, req, f.html)
			})
			if err != nil {
				return err
			}
			defer w.Close()

			fmt.Fprintf(a.stderr, "watching %s (ctrl-c to stop)\n", root)
			if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
	f.register(cmd)
	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "quiet period before regenerating")
	return cmd
}

// regenerate runs one watch iteration. Failures are reported and the watcher
// keeps going.
func (a *app) regenerate(ctx context.Context, runner *pipeline.Runner, req pipeline.Request, html bool) (*pipeline.Result, error) {
	res, err := a.generate(ctx, runner, req, html)
	if res != nil && res.Store != nil {
		res.Store.Close()
	}
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintf(a.stderr, "error: %v\n", err)
		}
		return res, err
	}
	if !a.quiet {
		printSummary(a.stderr, res)
	}
	return res, nil
}
