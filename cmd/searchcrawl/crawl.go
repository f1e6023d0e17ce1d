package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/searchcrawl/internal/config"
	"github.com/nao1215/searchcrawl/internal/model"
	"github.com/nao1215/searchcrawl/internal/search"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Run one crawl in the foreground",
		Long: `Crawl runs a single crawl without starting the HTTP server and prints the
final status when it ends. Pages already in the store are not fetched again.
Press Ctrl+C to stop; the index is still rebuilt before exiting.

Examples:
  # Crawl the built-in seed list
  searchcrawl crawl

  # Crawl one site, its links and their links
  searchcrawl crawl -s https://example.com -d 2`,
		Args: cobra.NoArgs,
		RunE: runCrawlCmd,
	}

	addCrawlFlags(cmd)

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, _ []string) error {
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

	return runCrawl(ctx, cfg, logger, cmd.OutOrStdout())
}

// runCrawl crawls until the frontier is exhausted or ctx is cancelled and
// writes the final status to out.
func runCrawl(ctx context.Context, cfg *config.Config, logger *slog.Logger, out io.Writer) error {
	a, err := openApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	fmt.Fprintf(out, "Crawling %d seed(s) up to depth %d...\n", len(cfg.Seeds), cfg.MaxDepth)

	if err := a.orchestrator.Run(ctx); err != nil {
		return fmt.Errorf("crawl failed: %w", err)
	}

	printStatus(out, a.orchestrator.Status(), a.index)
	return nil
}

// printStatus writes a finished crawl's status and the index it left behind.
func printStatus(out io.Writer, status model.CrawlStatus, index *search.Index) {
	fmt.Fprintln(out, "Crawl finished")
	fmt.Fprintf(out, "  max depth reached:  %d\n", status.MaxDepthReached)
	fmt.Fprintf(out, "  last page:          %s\n", status.CurrentURL)
	fmt.Fprintf(out, "  indexed pages:      %d\n", index.Len())
	fmt.Fprintf(out, "  index built:        %s\n", model.FormatTimestamp(index.BuiltAt()))
	fmt.Fprintf(out, "  last index update:  %s\n", status.LastIndexBuildText())
}
