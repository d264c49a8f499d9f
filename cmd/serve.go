package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/alexiusacademia/goliq/internal/api"
	"github.com/alexiusacademia/goliq/internal/metrics"
	"github.com/alexiusacademia/goliq/internal/report"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the screening HTTP API",
	Long: `Run the screening HTTP API.

Endpoints:
  POST /api/v1/safety-factor   Factor of safety of one site
  POST /api/v1/assess          Both methods for one site
  POST /api/v1/profile         Every layer of a soil profile
  POST /api/v1/batch           Both methods for up to 1000 sites
  POST /api/v1/report          PDF report of one site
  GET  /healthz                Liveness and classifier status
  GET  /metrics                Prometheus metrics

The classifier is loaded from the model section of the configuration.
With model.watch enabled, the artifacts are reloaded whenever either file
changes; a broken file keeps the previous model active.

Examples:
  goliq serve
  goliq serve --addr :9090 --config goliq.yaml`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides configuration)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.NewCollector(cfg.Metrics.Namespace)
	assessor := newAssessor("", "")
	m.SetModelLoaded(assessor.Loaded())

	if cfg.Model.Watch && cfg.Model.Configured() {
		go func() {
			err := assessor.Watch(ctx, cfg.Model.Classifier, cfg.Model.Scaler, func(err error) {
				m.RecordModelReload(err, assessor.Loaded())
			})
			if err != nil {
				logger.Error("model watcher stopped", "err", err)
			}
		}()
	}

	router := api.NewRouter(api.Options{
		Assessor:  assessor,
		Logger:    logger,
		Metrics:   m,
		RateLimit: cfg.Server.RateLimit,
		Burst:     cfg.Server.Burst,
		Report: report.Meta{
			Title:   "Liquefaction Screening Report",
			Project: cfg.Report.Project,
			Author:  cfg.Report.Author,
		},
		BatchWorkers: cfg.Batch.Workers,
	})

	srv := api.NewServer(cfg.Server, router)
	if err := api.Serve(ctx, srv, cfg.Server.ShutdownTimeout, logger); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}
