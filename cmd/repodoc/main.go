package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/repodoc/internal/config"
	"github.com/dusk-indust/repodoc/internal/metrics"
	"github.com/dusk-indust/repodoc/internal/pipeline"
)

// version is set by goreleaser at build time.
var version = "dev"

// timeNow stamps re-rendered documents.
var timeNow = time.Now

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)
	return root.Execute()
}

// app carries the global flags and shared dependencies of every command.
type app struct {
	stdout, stderr io.Writer

	configPath string
	logLevel   string
	quiet      bool

	logger  *slog.Logger
	metrics *metrics.Metrics
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:   "repodoc",
		Short: "repodoc - repository documentation generator",
		Long: `repodoc walks a repository, extracts functions, classes and imports from
its source files and writes a single markdown document describing its
structure, dependencies and API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringVarP(&a.configPath, "config", "c", "", "config file (default: repodoc.yml in the repository)")
	pf.StringVar(&a.logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	pf.BoolVarP(&a.quiet, "quiet", "q", false, "suppress progress output")

	root.AddCommand(
		a.generateCmd(),
		a.treeCmd(),
		a.symbolsCmd(),
		a.renderCmd(),
		a.watchCmd(),
		a.serveCmd(),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, _ []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "repodoc %s\n", version)
			},
		},
	)
	return root
}

func (a *app) setup() error {
	level, err := config.ParseLogLevel(a.logLevel)
	if err != nil {
		return err
	}
	a.logger = slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: level}))
	a.metrics = metrics.New()
	return nil
}

// newRunner creates a pipeline runner whose progress is printed to stderr
// unless --quiet is set. The returned stop function flushes the printer.
func (a *app) newRunner() (*pipeline.Runner, func()) {
	if a.quiet {
		return pipeline.NewRunner(pipeline.Options{Logger: a.logger, Metrics: a.metrics}), func() {}
	}

	pr := pipeline.NewProgressReporter()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range pr.Subscribe() {
			fmt.Fprintln(a.stderr, pipeline.FormatProgress(ev))
		}
	}()

	runner := pipeline.NewRunner(pipeline.Options{Logger: a.logger, Metrics: a.metrics, Progress: pr})
	return runner, func() {
		pr.Close()
		<-done
	}
}
