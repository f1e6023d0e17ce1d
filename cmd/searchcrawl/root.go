package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/nao1215/searchcrawl/internal/config"
	"github.com/nao1215/searchcrawl/internal/log"
)

// NewRootCmd creates the root command for searchcrawl.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "searchcrawl",
		Short: "Bounded web crawler with keyword search",
		Long: `searchcrawl crawls outward from a set of seed URLs up to a maximum depth,
stores page text, images and videos, and answers keyword searches over
everything it has collected.

Settings are read from .searchcrawl.yaml (current directory, XDG config
directory or home directory) and can be overridden with flags.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .searchcrawl.yaml in current, XDG config or home directory)")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("json-log", false, "Write logs as JSON")
	cmd.PersistentFlags().String("log-file", "", "Also write logs to this file (rotated by size)")
	cmd.PersistentFlags().String("data-dir", "",
		"Directory holding the database and downloaded media (default: XDG data directory)")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewReportCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig builds the configuration: defaults, then the config file,
// then any flag the user set explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error
	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// An explicitly requested file must exist; otherwise a missing file
	// simply means defaults.
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case configPath != "":
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		if err := file.Apply(cfg); err != nil {
			return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
		}
	case cfg.ConfigFilePath != "":
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	if err := applyFlags(cmd, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyFlags copies explicitly set flags onto cfg. Flags a command does not
// define are ignored.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	changed := func(name string) bool {
		f := flags.Lookup(name)
		return f != nil && f.Changed
	}

	var err error
	if changed("verbose") {
		if cfg.Verbose, err = flags.GetBool("verbose"); err != nil {
			return err
		}
	}
	if changed("json-log") {
		if cfg.JSONLog, err = flags.GetBool("json-log"); err != nil {
			return err
		}
	}
	if changed("log-file") {
		if cfg.LogFile, err = flags.GetString("log-file"); err != nil {
			return err
		}
	}
	if changed("data-dir") {
		if cfg.DataDir, err = flags.GetString("data-dir"); err != nil {
			return err
		}
	}
	if changed("seed") {
		if cfg.Seeds, err = flags.GetStringSlice("seed"); err != nil {
			return err
		}
	}
	if changed("max-depth") {
		if cfg.MaxDepth, err = flags.GetInt("max-depth"); err != nil {
			return err
		}
	}
	if changed("listen") {
		if cfg.ListenAddress, err = flags.GetString("listen"); err != nil {
			return err
		}
	}
	if changed("workers") {
		if cfg.Workers, err = flags.GetInt("workers"); err != nil {
			return err
		}
	}
	if changed("proxy") {
		if cfg.ProxyAddress, err = flags.GetString("proxy"); err != nil {
			return err
		}
	}
	if changed("render-timeout") {
		if cfg.RenderTimeout, err = flags.GetDuration("render-timeout"); err != nil {
			return err
		}
	}
	if changed("asset-timeout") {
		if cfg.AssetTimeout, err = flags.GetDuration("asset-timeout"); err != nil {
			return err
		}
	}
	return nil
}

// addCrawlFlags registers the flags shared by serve and crawl.
func addCrawlFlags(cmd *cobra.Command) {
	cmd.Flags().StringSliceP("seed", "s", nil,
		"Seed URL to start crawling from (repeatable; default: built-in seed list)")
	cmd.Flags().IntP("max-depth", "d", config.DefaultMaxDepth,
		"Maximum link depth from the seeds")
	cmd.Flags().StringP("proxy", "x", "",
		"SOCKS5 proxy address for page and media requests (e.g., 127.0.0.1:9050)")
	cmd.Flags().Duration("render-timeout", config.DefaultRenderTimeout,
		"Timeout for fetching each page")
	cmd.Flags().Duration("asset-timeout", config.DefaultAssetTimeout,
		"Timeout for downloading each image or video")
}

// newLogger creates the process logger and installs it as the default.
// The returned closer flushes the log file, if any.
func newLogger(cfg *config.Config, w io.Writer) (*slog.Logger, io.Closer, error) {
	logger, closer, err := log.NewLogger(log.Options{
		Writer:  w,
		Verbose: cfg.Verbose,
		JSON:    cfg.JSONLog,
		File:    cfg.LogFile,
		Attrs:   []slog.Attr{slog.String("app", config.AppName)},
	})
	if err != nil {
		return nil, nil, err
	}
	slog.SetDefault(logger)
	return logger, closer, nil
}
