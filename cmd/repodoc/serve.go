package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/repodoc/internal/config"
	"github.com/dusk-indust/repodoc/internal/mcptools"
	"github.com/dusk-indust/repodoc/internal/pipeline"
)

func (a *app) serveCmd() *cobra.Command {
	var (
		addr  string
		stdio bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP tool server",
		Long: `Exposes generate_docs, build_tree, extract_symbols and query_symbols as MCP
tools. Over HTTP the server also publishes Prometheus metrics at /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var base *config.ProjectConfig
			if a.configPath != "" {
				var err error
				if base, err = config.LoadFile(a.configPath); err != nil {
					return err
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			runner := pipeline.NewRunner(pipeline.Options{Logger: a.logger, Metrics: a.metrics})
			svc := mcptools.NewDocService(runner, base, a.logger)
			defer svc.Close()

			if stdio {
				return mcptools.ServeStdio(ctx, svc)
			}
			return mcptools.Serve(ctx, svc, a.metrics, addr, a.logger)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "localhost:8090", "HTTP listen address")
	cmd.Flags().BoolVar(&stdio, "stdio", false, "serve over stdin/stdout instead of HTTP")
	return cmd
}
