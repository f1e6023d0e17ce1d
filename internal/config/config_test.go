package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestNewConfig verifies that NewConfig returns the documented defaults.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("default MaxDepth is 100", func(t *testing.T) {
		t.Parallel()
		if cfg.MaxDepth != 100 {
			t.Errorf("expected MaxDepth to be 100, got %d", cfg.MaxDepth)
		}
	})

	t.Run("default ListenAddress is 0.0.0.0:6999", func(t *testing.T) {
		t.Parallel()
		if cfg.ListenAddress != "0.0.0.0:6999" {
			t.Errorf("expected ListenAddress to be '0.0.0.0:6999', got '%s'", cfg.ListenAddress)
		}
	})

	t.Run("default AssetTimeout is 5 seconds", func(t *testing.T) {
		t.Parallel()
		if cfg.AssetTimeout != 5*time.Second {
			t.Errorf("expected AssetTimeout to be 5s, got %v", cfg.AssetTimeout)
		}
	})

	t.Run("default seeds are copied", func(t *testing.T) {
		t.Parallel()
		if len(cfg.Seeds) != len(DefaultSeeds) {
			t.Fatalf("expected %d seeds, got %d", len(DefaultSeeds), len(cfg.Seeds))
		}
		other := NewConfig()
		other.Seeds[0] = "https://changed.test"
		if DefaultSeeds[0] == "https://changed.test" {
			t.Error("mutating a config's seeds must not change DefaultSeeds")
		}
	})

	t.Run("default config is valid", func(t *testing.T) {
		t.Parallel()
		if err := cfg.Validate(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("storage areas live under DataDir", func(t *testing.T) {
		t.Parallel()
		if cfg.ImagesDir() != filepath.Join(cfg.DataDir, "images") {
			t.Errorf("unexpected images dir %q", cfg.ImagesDir())
		}
		if cfg.VideosDir() != filepath.Join(cfg.DataDir, "videos") {
			t.Errorf("unexpected videos dir %q", cfg.VideosDir())
		}
	})
}

// TestConfigValidate tests each validation rule in isolation.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"valid config returns nil", func(*Config) {}, nil},
		{"zero max depth is valid", func(c *Config) { c.MaxDepth = 0 }, nil},
		{"empty seeds", func(c *Config) { c.Seeds = nil }, ErrNoSeeds},
		{"non-http seed", func(c *Config) { c.Seeds = []string{"ftp://a.test"} }, ErrInvalidSeed},
		{"negative max depth", func(c *Config) { c.MaxDepth = -1 }, ErrInvalidMaxDepth},
		{"zero workers", func(c *Config) { c.Workers = 0 }, ErrInvalidWorkers},
		{"zero asset timeout", func(c *Config) { c.AssetTimeout = 0 }, ErrInvalidTimeout},
		{"negative render timeout", func(c *Config) { c.RenderTimeout = -time.Second }, ErrInvalidTimeout},
		{"zero body size", func(c *Config) { c.MaxBodySize = 0 }, ErrInvalidMaxBodySize},
		{"empty data dir", func(c *Config) { c.DataDir = "" }, ErrNoDataDir},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := NewConfig()
			cfg.DataDir = "/tmp/searchcrawl-test"
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.want == nil {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

// TestLoadConfigFile tests YAML loading and application onto a Config.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("missing file returns ErrConfigNotFound", func(t *testing.T) {
		t.Parallel()
		_, err := LoadConfigFile(filepath.Join(t.TempDir(), "nope.yaml"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("malformed yaml returns error", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "bad.yaml")
		if err := os.WriteFile(path, []byte("seeds: [unterminated"), 0600); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadConfigFile(path); err == nil {
			t.Error("expected parse error")
		}
	})

	t.Run("values override defaults", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "conf.yaml")
		content := `seeds:
  - https://a.test
  - https://b.test
max_depth: 0
listen: 127.0.0.1:8080
workers: 2
asset_timeout: 2s
render_timeout: 1m
proxy: 127.0.0.1:9050
json_log: true
`
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatal(err)
		}

		cf, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("failed to load: %v", err)
		}
		cfg := NewConfig()
		if err := cf.Apply(cfg); err != nil {
			t.Fatalf("failed to apply: %v", err)
		}

		if len(cfg.Seeds) != 2 || cfg.Seeds[1] != "https://b.test" {
			t.Errorf("unexpected seeds %v", cfg.Seeds)
		}
		if cfg.MaxDepth != 0 {
			t.Errorf("expected explicit max_depth 0 to apply, got %d", cfg.MaxDepth)
		}
		if cfg.ListenAddress != "127.0.0.1:8080" {
			t.Errorf("unexpected listen address %q", cfg.ListenAddress)
		}
		if cfg.Workers != 2 {
			t.Errorf("expected 2 workers, got %d", cfg.Workers)
		}
		if cfg.AssetTimeout != 2*time.Second || cfg.RenderTimeout != time.Minute {
			t.Errorf("unexpected timeouts %v %v", cfg.AssetTimeout, cfg.RenderTimeout)
		}
		if cfg.ProxyAddress != "127.0.0.1:9050" {
			t.Errorf("unexpected proxy %q", cfg.ProxyAddress)
		}
		if !cfg.JSONLog {
			t.Error("expected JSONLog to be true")
		}
	})

	t.Run("unset values keep defaults", func(t *testing.T) {
		t.Parallel()
		cfg := NewConfig()
		if err := (&File{}).Apply(cfg); err != nil {
			t.Fatal(err)
		}
		if cfg.MaxDepth != DefaultMaxDepth {
			t.Errorf("expected default max depth, got %d", cfg.MaxDepth)
		}
		if len(cfg.Seeds) != len(DefaultSeeds) {
			t.Errorf("expected default seeds, got %v", cfg.Seeds)
		}
	})

	t.Run("bad duration returns error", func(t *testing.T) {
		t.Parallel()
		cfg := NewConfig()
		err := (&File{AssetTimeout: "soon"}).Apply(cfg)
		if err == nil {
			t.Error("expected error for invalid duration")
		}
	})
}

// TestFindConfigFile tests explicit path resolution.
func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("explicit existing path is returned", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "c.yaml")
		if err := os.WriteFile(path, []byte("{}"), 0600); err != nil {
			t.Fatal(err)
		}
		if got := FindConfigFile(path); got != path {
			t.Errorf("expected %q, got %q", path, got)
		}
	})

	t.Run("explicit missing path returns empty", func(t *testing.T) {
		t.Parallel()
		if got := FindConfigFile(filepath.Join(t.TempDir(), "missing.yaml")); got != "" {
			t.Errorf("expected empty, got %q", got)
		}
	})
}
