package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "searchcrawl"

	// DefaultMaxDepth bounds how far the frontier may go from the seeds.
	// Links discovered beyond it are never scheduled.
	DefaultMaxDepth = 100

	// DefaultListenAddress is the bind address of the HTTP server.
	DefaultListenAddress = "0.0.0.0:6999"

	// DefaultWorkers is the number of HTTP requests served concurrently.
	DefaultWorkers = 4

	// DefaultAssetTimeout bounds a single image or video download so an
	// unresponsive host cannot stall the crawl.
	DefaultAssetTimeout = 5 * time.Second

	// DefaultRenderTimeout bounds fetching and rendering one page.
	DefaultRenderTimeout = 30 * time.Second

	// DefaultMaxBodySize limits how much of a page is read.
	DefaultMaxBodySize = 10 * 1024 * 1024 // 10MB

	// DefaultMaxAssetSize limits how much of a media asset is downloaded.
	DefaultMaxAssetSize = 50 * 1024 * 1024 // 50MB

	// DefaultUserAgent identifies the crawler in HTTP requests.
	DefaultUserAgent = "searchcrawl/1.0 (+https://github.com/nao1215/searchcrawl)"
)

// DefaultSeeds is the seed list used when neither the config file nor the
// command line provides one.
var DefaultSeeds = []string{
	"https://www.whitehouse.gov",
	"https://www.defense.gov",
	"https://www.nsa.gov",
	"https://www.apple.com",
	"https://www.openai.com",
	"https://www.fakeopenai.co",
	"https://www.microsoft.com",
	"https://www.amazon.com",
	"https://www.pdfage.me",
	"https://www.erosolar.net",
}

// Config holds all configuration options for searchcrawl.
// It is built once at startup and passed down explicitly.
type Config struct {
	// Seeds are the URLs the frontier starts from at depth 0.
	// Seeds already present in the store are not re-fetched.
	Seeds []string

	// MaxDepth is the largest depth the frontier accepts.
	// Depth 0 means only the seeds are visited.
	MaxDepth int

	// ListenAddress is the HTTP bind address in "host:port" format.
	ListenAddress string

	// Workers is the maximum number of HTTP requests served at once.
	Workers int

	// DataDir holds the SQLite database and the images/ and videos/
	// storage areas. Defaults to the XDG data directory.
	DataDir string

	// AssetTimeout bounds each media download.
	AssetTimeout time.Duration

	// RenderTimeout bounds each page render.
	RenderTimeout time.Duration

	// MaxBodySize is the maximum number of page bytes read.
	MaxBodySize int64

	// MaxAssetSize is the maximum number of asset bytes downloaded.
	// Larger assets are treated as failed downloads.
	MaxAssetSize int64

	// UserAgent is sent with page and asset requests.
	UserAgent string

	// ProxyAddress is an optional SOCKS5 proxy in "host:port" format.
	// When empty, requests go out directly.
	ProxyAddress string

	// Verbose enables debug logging.
	Verbose bool

	// JSONLog switches log output from text to JSON.
	JSONLog bool

	// LogFile, when set, receives a copy of the log output with size-based
	// rotation.
	LogFile string

	// ConfigFilePath is the YAML file explicitly requested by the user.
	// Empty means search the default locations.
	ConfigFilePath string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	seeds := make([]string, len(DefaultSeeds))
	copy(seeds, DefaultSeeds)

	return &Config{
		Seeds:         seeds,
		MaxDepth:      DefaultMaxDepth,
		ListenAddress: DefaultListenAddress,
		Workers:       DefaultWorkers,
		DataDir:       XDGDataDir(),
		AssetTimeout:  DefaultAssetTimeout,
		RenderTimeout: DefaultRenderTimeout,
		MaxBodySize:   DefaultMaxBodySize,
		MaxAssetSize:  DefaultMaxAssetSize,
		UserAgent:     DefaultUserAgent,
	}
}

// XDGDataDir returns the XDG data directory for searchcrawl.
// On Linux: ~/.local/share/searchcrawl
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for searchcrawl.
// On Linux: ~/.config/searchcrawl
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// ImagesDir returns the storage area for downloaded images.
func (c *Config) ImagesDir() string {
	return filepath.Join(c.DataDir, "images")
}

// VideosDir returns the storage area for downloaded videos.
func (c *Config) VideosDir() string {
	return filepath.Join(c.DataDir, "videos")
}

// Validate checks if the configuration is valid.
// It returns the first problem found as a sentinel error.
func (c *Config) Validate() error {
	if len(c.Seeds) == 0 {
		return ErrNoSeeds
	}
	for _, s := range c.Seeds {
		if !isHTTPURL(s) {
			return ErrInvalidSeed
		}
	}
	if c.MaxDepth < 0 {
		return ErrInvalidMaxDepth
	}
	if c.Workers <= 0 {
		return ErrInvalidWorkers
	}
	if c.AssetTimeout <= 0 || c.RenderTimeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.MaxBodySize <= 0 || c.MaxAssetSize <= 0 {
		return ErrInvalidMaxBodySize
	}
	if c.DataDir == "" {
		return ErrNoDataDir
	}
	return nil
}
