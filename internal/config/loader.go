package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".searchcrawl.yaml"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File is the structure of the YAML configuration file.
// Zero values mean "not set" and leave the current value untouched.
type File struct {
	Seeds         []string `yaml:"seeds,omitempty"`
	MaxDepth      *int     `yaml:"max_depth,omitempty"`
	Listen        string   `yaml:"listen,omitempty"`
	Workers       int      `yaml:"workers,omitempty"`
	DataDir       string   `yaml:"data_dir,omitempty"`
	AssetTimeout  string   `yaml:"asset_timeout,omitempty"`
	RenderTimeout string   `yaml:"render_timeout,omitempty"`
	MaxBodySize   int64    `yaml:"max_body_size,omitempty"`
	MaxAssetSize  int64    `yaml:"max_asset_size,omitempty"`
	UserAgent     string   `yaml:"user_agent,omitempty"`
	Proxy         string   `yaml:"proxy,omitempty"`
	LogFile       string   `yaml:"log_file,omitempty"`
	JSONLog       bool     `yaml:"json_log,omitempty"`
}

// LoadConfigFile loads a YAML configuration file.
// If the file does not exist, it returns ErrConfigNotFound.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &cf, nil
}

// Apply copies every value set in the file onto cfg.
func (cf *File) Apply(cfg *Config) error {
	if len(cf.Seeds) > 0 {
		cfg.Seeds = append([]string(nil), cf.Seeds...)
	}
	if cf.MaxDepth != nil {
		cfg.MaxDepth = *cf.MaxDepth
	}
	if cf.Listen != "" {
		cfg.ListenAddress = cf.Listen
	}
	if cf.Workers != 0 {
		cfg.Workers = cf.Workers
	}
	if cf.DataDir != "" {
		cfg.DataDir = expandHome(cf.DataDir)
	}
	if cf.AssetTimeout != "" {
		d, err := time.ParseDuration(cf.AssetTimeout)
		if err != nil {
			return fmt.Errorf("invalid asset_timeout %q: %w", cf.AssetTimeout, err)
		}
		cfg.AssetTimeout = d
	}
	if cf.RenderTimeout != "" {
		d, err := time.ParseDuration(cf.RenderTimeout)
		if err != nil {
			return fmt.Errorf("invalid render_timeout %q: %w", cf.RenderTimeout, err)
		}
		cfg.RenderTimeout = d
	}
	if cf.MaxBodySize != 0 {
		cfg.MaxBodySize = cf.MaxBodySize
	}
	if cf.MaxAssetSize != 0 {
		cfg.MaxAssetSize = cf.MaxAssetSize
	}
	if cf.UserAgent != "" {
		cfg.UserAgent = cf.UserAgent
	}
	if cf.Proxy != "" {
		cfg.ProxyAddress = cf.Proxy
	}
	if cf.LogFile != "" {
		cfg.LogFile = expandHome(cf.LogFile)
	}
	if cf.JSONLog {
		cfg.JSONLog = true
	}
	return nil
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .searchcrawl.yaml in the current directory
// 3. Look for config.yaml in the XDG config directory
// 4. Look for .searchcrawl.yaml in the user's home directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	candidates := make([]string, 0, 3)
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, DefaultConfigFile))
	}
	candidates = append(candidates, filepath.Join(XDGConfigDir(), "config.yaml"))
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, DefaultConfigFile))
	}

	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return ""
}

// expandHome replaces a leading "~/" with the user's home directory.
func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}

func isHTTPURL(s string) bool {
	lower := strings.ToLower(s)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
