package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/clevrprog"
	"github.com/aretw0/clevrprog/internal/cli"
	"github.com/aretw0/clevrprog/internal/metrics"
	httpAdapter "github.com/aretw0/clevrprog/pkg/adapters/http"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP conversion service",
	Long: `Serves conversions over HTTP: POST/GET /convert, POST /batch, /health,
/info, /openapi.yaml and Prometheus metrics at /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sc := cli.NewSignalContext(cmd.Context())
		defer sc.Cancel()

		collector := metrics.New()
		p, _, closeCache, err := buildPipeline(sc, clevrprog.WithObserver(collector))
		if err != nil {
			return err
		}
		defer closeCache()

		handler := httpAdapter.NewHandler(p,
			httpAdapter.WithLogger(app.logger),
			httpAdapter.WithMetricsHandler(collector.Handler()),
			httpAdapter.WithInfo("catalog", catalogName(app.cfg.Catalog)),
			httpAdapter.WithInfo("factor_attrs", fmt.Sprint(app.cfg.FactorAttrs)),
		)

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", app.cfg.HTTP.Port),
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		serverErrors := make(chan error, 1)
		go func() {
			app.logger.Info("Starting clevrprog server", "addr", srv.Addr)
			serverErrors <- srv.ListenAndServe()
		}()

		select {
		case err := <-serverErrors:
			return fmt.Errorf("server error: %w", err)
		case <-sc.Done():
			app.logger.Info("Start shutdown", "signal", fmt.Sprint(sc.Signal()))

			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				app.logger.Warn("Graceful shutdown did not complete", "timeout", shutdownTimeout, "err", err)
				if err := srv.Close(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("error killing server: %w", err)
				}
			}
			app.logger.Info("Server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 0, "Port to listen on (default from config: 8080)")
}
