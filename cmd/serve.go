package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jfmyers9/collagefm/internal/config"
	"github.com/jfmyers9/collagefm/internal/server"
	"github.com/spf13/cobra"
)

var (
	serveAddr       string
	serveBackground string
	serveNoMetrics  bool
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve collages over HTTP",
	Long: `Run an HTTP server that renders collages on demand.

Endpoints:
  GET /collage?user=rj&period=Week&dimension=3x3&size=Small&format=png
  GET /options   option labels and defaults as JSON
  GET /healthz   liveness check
  GET /metrics   Prometheus metrics

Missing query parameters fall back to the defaults. Errors are returned as
JSON with the error kind and message.

The first SIGINT/SIGTERM drains in-flight requests; a second one exits
immediately.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config: :8080)")
	serveCmd.Flags().StringVar(&serveBackground, "background", "", "Empty cell fill: black, white, dominant or #rrggbb")
	serveCmd.Flags().BoolVar(&serveNoMetrics, "no-metrics", false, "Disable the /metrics endpoint")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	c, err := buildComponents(cfg, serveBackground, 0)
	if err != nil {
		return err
	}
	defer c.Close()

	addr := serveAddr
	if addr == "" {
		addr = cfg.Server.Addr
	}

	var metrics *server.Metrics
	if !serveNoMetrics {
		metrics = server.NewMetrics("collagefm")
	}

	srv := server.New(c.generator, c.tables, c.recorder(), metrics, c.logger)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle first signal gracefully, second signal forces exit
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
		case <-ctx.Done():
			return
		}
		c.logger.Info().Msg("Shutdown signal received, draining requests")
		cancel()

		<-sigChan
		c.logger.Warn().Msg("Second shutdown signal received, forcing exit")
		os.Exit(1)
	}()

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	c.logger.Info().Str("addr", addr).Str("version", version).Msg("Serving collages")
	fmt.Fprintf(cmd.OutOrStdout(), "Listening on %s\n", addr)

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Duration(cfg.RequestTimeout)*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		c.logger.Error().Err(err).Msg("Error during shutdown")
		return err
	}

	c.logger.Info().Msg("Server stopped")
	return nil
}
