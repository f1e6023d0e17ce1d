package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/nao1215/searchcrawl/internal/config"
	"github.com/nao1215/searchcrawl/internal/crawler"
	"github.com/nao1215/searchcrawl/internal/model"
	"github.com/nao1215/searchcrawl/internal/server"
)

// shutdownTimeout bounds graceful shutdown, including the crawl's final
// index rebuild.
const shutdownTimeout = 30 * time.Second

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP search server",
		Long: `Serve starts the HTTP server. Crawls are started with POST /crawl and
stopped with POST /crawl/stop; search with GET /search?q=, /search_images?q=
and /search_videos?q=. GET /info reports crawl progress and GET /metrics
exposes Prometheus metrics.

Examples:
  # Listen on the default address (0.0.0.0:6999)
  searchcrawl serve

  # Listen locally with two seeds and a shallow crawl
  searchcrawl serve -l 127.0.0.1:8080 -s https://example.com -s https://example.org -d 2

  # Route all requests through Tor
  searchcrawl serve -x 127.0.0.1:9050`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}

	cmd.Flags().StringP("listen", "l", config.DefaultListenAddress,
		"HTTP listen address")
	cmd.Flags().IntP("workers", "w", config.DefaultWorkers,
		"Maximum number of HTTP requests handled concurrently")
	addCrawlFlags(cmd)

	return cmd
}

// runServeCmd executes the serve command.
func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger, closer, err := newLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", cfg.ListenAddress)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.ListenAddress, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Listening on http://%s\n", ln.Addr())
	return serve(ctx, cfg, logger, ln)
}

// serve runs the HTTP server on ln until ctx is cancelled, then stops any
// running crawl and shuts the server down.
func serve(ctx context.Context, cfg *config.Config, logger *slog.Logger, ln net.Listener) error {
	a, err := openApp(ctx, cfg, logger)
	if err != nil {
		_ = ln.Close()
		return err
	}
	defer a.Close()

	handler := server.New(a.orchestrator, a.engine, a.assets.Dir(model.MediaImage), a.assets.Dir(model.MediaVideo),
		server.WithWorkers(cfg.Workers),
		server.WithLogger(logger),
	)
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server started", "address", ln.Addr().String(), "workers", cfg.Workers)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
		defer cancel()

		if err := a.orchestrator.Stop(); err != nil && !errors.Is(err, crawler.ErrNoCrawlInProgress) {
			logger.Warn("failed to stop crawl", "error", err)
		}
		if err := a.orchestrator.Wait(shutdownCtx); err != nil {
			logger.Warn("crawl did not end cleanly", "error", err)
		}
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
