package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nao1215/searchcrawl/internal/config"
)

// TestNewRootCmd tests the root command creation.
func TestNewRootCmd(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "searchcrawl" {
			t.Errorf("expected use 'searchcrawl', got %q", cmd.Use)
		}
	})

	t.Run("has version", func(t *testing.T) {
		t.Parallel()
		if cmd.Version == "" {
			t.Error("expected non-empty version")
		}
	})

	t.Run("has persistent flags", func(t *testing.T) {
		t.Parallel()
		for _, name := range []string{"config", "verbose", "json-log", "log-file", "data-dir"} {
			if cmd.PersistentFlags().Lookup(name) == nil {
				t.Errorf("expected persistent flag %q", name)
			}
		}
		if f := cmd.PersistentFlags().Lookup("verbose"); f != nil && f.Shorthand != "v" {
			t.Errorf("expected shorthand 'v', got %q", f.Shorthand)
		}
	})

	t.Run("has subcommands", func(t *testing.T) {
		t.Parallel()
		want := map[string]bool{"serve": false, "crawl": false, "report": false, "init": false, "version": false}
		for _, sub := range cmd.Commands() {
			if _, ok := want[sub.Name()]; ok {
				want[sub.Name()] = true
			}
		}
		for name, found := range want {
			if !found {
				t.Errorf("expected %s subcommand", name)
			}
		}
	})
}

// writeConfig writes a YAML config file into a temp dir and returns its path.
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	t.Run("file overrides defaults", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, "seeds:\n  - https://example.com\nmax_depth: 3\nworkers: 8\nasset_timeout: 2s\n")
		root := NewRootCmd()
		cmd, _, err := root.Find([]string{"crawl"})
		if err != nil {
			t.Fatalf("Find() error = %v", err)
		}
		if err := cmd.ParseFlags([]string{"--config", path}); err != nil {
			t.Fatalf("ParseFlags() error = %v", err)
		}

		cfg, err := loadConfig(cmd)
		if err != nil {
			t.Fatalf("loadConfig() error = %v", err)
		}
		if len(cfg.Seeds) != 1 || cfg.Seeds[0] != "https://example.com" {
			t.Errorf("Seeds = %v", cfg.Seeds)
		}
		if cfg.MaxDepth != 3 || cfg.Workers != 8 || cfg.AssetTimeout != 2*time.Second {
			t.Errorf("unexpected config: %+v", cfg)
		}
	})

	t.Run("flags override file", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, "max_depth: 3\ndata_dir: /from/file\n")
		dataDir := t.TempDir()
		root := NewRootCmd()
		cmd, _, err := root.Find([]string{"crawl"})
		if err != nil {
			t.Fatalf("Find() error = %v", err)
		}
		args := []string{"--config", path, "--max-depth", "1", "--data-dir", dataDir, "-s", "https://a.test", "-s", "https://b.test"}
		if err := cmd.ParseFlags(args); err != nil {
			t.Fatalf("ParseFlags() error = %v", err)
		}

		cfg, err := loadConfig(cmd)
		if err != nil {
			t.Fatalf("loadConfig() error = %v", err)
		}
		if cfg.MaxDepth != 1 {
			t.Errorf("MaxDepth = %d, want 1", cfg.MaxDepth)
		}
		if cfg.DataDir != dataDir {
			t.Errorf("DataDir = %q, want %q", cfg.DataDir, dataDir)
		}
		if len(cfg.Seeds) != 2 {
			t.Errorf("Seeds = %v, want two seeds", cfg.Seeds)
		}
	})

	t.Run("explicit missing file is an error", func(t *testing.T) {
		t.Parallel()

		root := NewRootCmd()
		cmd, _, err := root.Find([]string{"report"})
		if err != nil {
			t.Fatalf("Find() error = %v", err)
		}
		missing := filepath.Join(t.TempDir(), "missing.yaml")
		if err := cmd.ParseFlags([]string{"--config", missing}); err != nil {
			t.Fatalf("ParseFlags() error = %v", err)
		}

		if _, err := loadConfig(cmd); !errors.Is(err, config.ErrConfigNotFound) {
			t.Errorf("loadConfig() error = %v, want ErrConfigNotFound", err)
		}
	})

	t.Run("invalid duration in file", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, "render_timeout: soon\n")
		root := NewRootCmd()
		cmd, _, err := root.Find([]string{"serve"})
		if err != nil {
			t.Fatalf("Find() error = %v", err)
		}
		if err := cmd.ParseFlags([]string{"--config", path}); err != nil {
			t.Fatalf("ParseFlags() error = %v", err)
		}
		if _, err := loadConfig(cmd); err == nil {
			t.Error("expected error for invalid duration")
		}
	})
}
