// Package mcptools exposes the documentation pipeline as MCP tools.
package mcptools

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dusk-indust/repodoc/internal/metrics"
)

// version is set by the linker at build time.
var version = "dev"

// NewServer creates an MCP server with the documentation tools registered.
func NewServer(svc *DocService) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "repodoc",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "generate_docs",
		Description: "Generate the markdown documentation for a local repository or git URL. Walks the tree, extracts symbols and imports, writes the document and indexes the result for query_symbols.",
	}, svc.GenerateDocs)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "build_tree",
		Description: "Return the directory tree of a path as rendered in the documentation, honoring the ignore policy.",
	}, svc.BuildTree)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "extract_symbols",
		Description: "Extract functions, classes and imports from a single source file.",
	}, svc.ExtractSymbols)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "query_symbols",
		Description: "Search symbols of the most recently generated repository by name substring. Optionally filter by kind and list the files importing an external module.",
	}, svc.QuerySymbols)

	return server
}

// NewHandler serves the MCP streamable HTTP transport at /mcp and the
// Prometheus registry at /metrics.
func NewHandler(server *mcp.Server, m *metrics.Metrics) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/mcp", mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server { return server },
		nil,
	))
	mux.Handle("/metrics", m.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
	return mux
}

// Serve runs an HTTP server on addr until ctx is cancelled.
func Serve(ctx context.Context, svc *DocService, m *metrics.Metrics, addr string, logger *slog.Logger) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           NewHandler(NewServer(svc), m),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Shutdown gracefully when context is cancelled.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	logger.Info("mcp server listening", "addr", addr)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// ServeStdio runs the MCP server over stdin and stdout until the client
// disconnects or ctx is cancelled.
func ServeStdio(ctx context.Context, svc *DocService) error {
	return NewServer(svc).Run(ctx, &mcp.StdioTransport{})
}
