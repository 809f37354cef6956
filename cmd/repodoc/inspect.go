package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dusk-indust/repodoc/internal/config"
	"github.com/dusk-indust/repodoc/internal/export"
	"github.com/dusk-indust/repodoc/internal/graph"
	"github.com/dusk-indust/repodoc/internal/tree"
)

func (a *app) loadConfig(dir string) (*config.ProjectConfig, error) {
	if a.configPath != "" {
		return config.LoadFile(a.configPath)
	}
	return config.Load(dir)
}

func (a *app) treeCmd() *cobra.Command {
	var maxDepth int
	cmd := &cobra.Command{
		Use:   "tree [path]",
		Short: "Print the directory tree as it appears in the documentation",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) > 0 {
				path = args[0]
			}
			cfg, err := a.loadConfig(path)
			if err != nil {
				return err
			}
			policy, err := cfg.IgnorePolicy()
			if err != nil {
				return err
			}
			if maxDepth <= 0 {
				maxDepth = cfg.MaxDepth
			}

			root, err := tree.Build(path, tree.Options{MaxDepth: maxDepth, Policy: policy, Logger: a.logger})
			if err != nil {
				return err
			}
			for _, line := range export.TreeLines(root) {
				fmt.Fprintln(a.stdout, line)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&maxDepth, "max-depth", 0, "maximum recursion depth (default: 10)")
	return cmd
}

func (a *app) symbolsCmd() *cobra.Command {
	var parser string
	cmd := &cobra.Command{
		Use:   "symbols <file>",
		Short: "Print the symbols and imports extracted from one source file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			cfg, err := a.loadConfig(filepath.Dir(path))
			if err != nil {
				return err
			}
			if parser == "" {
				parser = cfg.Parser
			}

			reg := graph.DefaultRegistry(parser == config.ParserTreeSitter)
			ext := graph.ExtractFile(cmd.Context(), reg, path, filepath.ToSlash(path), cfg.MaxFileSize)

			enc := yaml.NewEncoder(a.stdout)
			enc.SetIndent(2)
			if err := enc.Encode(ext); err != nil {
				return err
			}
			return enc.Close()
		},
	}
	cmd.Flags().StringVar(&parser, "parser", "", "python parser: line or treesitter")
	return cmd
}

func (a *app) renderCmd() *cobra.Command {
	var (
		output  string
		html    bool
		diagram bool
	)
	cmd := &cobra.Command{
		Use:   "render <bundle>",
		Short: "Re-render a document from an exported JSON or YAML bundle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bundle, err := export.LoadBundle(args[0])
			if err != nil {
				return err
			}
			in := bundle.RenderInput()
			in.GeneratedAt = timeNow()
			in.Diagram = diagram
			doc := export.Render(in)

			data := []byte(doc)
			if html {
				if data, err = export.ToHTML(bundle.RepoName, doc); err != nil {
					return err
				}
			}
			if output == "" {
				_, err := a.stdout.Write(data)
				return err
			}
			if err := export.SaveErr(data, output); err != nil {
				return err
			}
			if !a.quiet {
				printSuccess(a.stderr, "✓ rendered "+output)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to this path instead of stdout")
	cmd.Flags().BoolVar(&html, "html", false, "render HTML instead of markdown")
	cmd.Flags().BoolVar(&diagram, "diagram", false, "append a mermaid dependency diagram")
	return cmd
}
