package main

import (
	"context"
	"net/http"

	"github.com/desertthunder/eqviz/internal/server"
	"github.com/desertthunder/eqviz/internal/shared"
	"github.com/desertthunder/eqviz/internal/web"
	"github.com/urfave/cli/v3"
)

// previewHandler wires the read-only dashboard and API handlers over source.
func (r *Runner) previewHandler(source server.UploadSource) http.Handler {
	logger := shared.WithLogger(r.logger, "component", "server")

	router := server.NewBasicRouter()
	router.Use(server.RequestID(), server.Logging(logger), server.Recover(logger))
	router.Handler(web.NewDashboardHandler(source, logger))
	router.Handler(server.NewUploadsHandler(source, logger))
	return router
}

// Serve runs the local preview server until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	dash, err := r.dashboard()
	if err != nil {
		return err
	}

	addr := cmd.String("addr")
	if addr == "" {
		addr = r.config.Server.Addr()
	}

	ready := func(url string) {
		r.writePlain("Serving %d cached uploads at %s (ctrl+c to stop)\n", dash.Len(), url)
		if cmd.Bool("open") {
			if err := shared.OpenBrowser(url); err != nil {
				r.logger.Warn("failed to open browser", "error", err)
			}
		}
	}

	return server.ListenAndServe(ctx, addr, r.previewHandler(dash), r.logger, ready)
}
