package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/huangsam/debtlens/internal/server"
	"github.com/spf13/cobra"
)

// serveCmd runs the HTTP API.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve snapshot, history and opinion analysis over HTTP.",
	Long: `Start the HTTP API on --addr until interrupted.

Endpoints:
  GET  /healthz            liveness probe
  GET  /metrics            Prometheus metrics
  POST /api/v1/snapshot    {"repo": "owner/name"}
  POST /api/v1/history     {"repo": "owner/name", "commits": 20}
  POST /api/v1/opinion     {"filename": "a.go", "content": "..."}
  GET  /api/v1/rollups     rollups of the X-Actor header

Examples:
  # Serve on the default port with a SQLite rollup store
  debtlens serve --store-backend sqlite

  # Serve on a custom address
  debtlens serve --addr 127.0.0.1:9090`,
	PreRunE: openStores,
	RunE: func(_ *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(rootCtx, os.Interrupt, syscall.SIGTERM)
		defer stop()
		return server.New(cfg, cacheManager, optionalOpinion()).Run(ctx)
	},
}
