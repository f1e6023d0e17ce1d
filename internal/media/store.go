package media

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/crypto/sha3"

	"github.com/nao1215/searchcrawl/internal/model"
)

// IngestResult is the outcome of one Ingest call.
type IngestResult int

const (
	// IngestStored means the asset was downloaded and recorded.
	IngestStored IngestResult = iota
	// IngestDuplicate means a record for the asset URL already existed.
	IngestDuplicate
	// IngestFetchFailed means the download failed or timed out; nothing was recorded.
	IngestFetchFailed
	// IngestSkipped means the asset has no usable filename or could not be
	// written to disk; nothing was recorded.
	IngestSkipped
)

// String returns the result name used in logs and metrics.
func (r IngestResult) String() string {
	switch r {
	case IngestStored:
		return "stored"
	case IngestDuplicate:
		return "duplicate"
	case IngestFetchFailed:
		return "fetch_failed"
	case IngestSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Recorder persists asset records.
type Recorder interface {
	HasAsset(ctx context.Context, kind model.MediaKind, assetURL string) (bool, error)
	InsertAsset(ctx context.Context, asset *model.MediaAsset) (bool, error)
}

// Default limits.
const (
	defaultTimeout = 5 * time.Second
	defaultMaxSize = 50 * 1024 * 1024 // 50MB
)

// Store downloads assets into per-kind directories.
// Store is used sequentially by the crawl loop; it holds no mutable state
// beyond what its Recorder and the filesystem keep.
type Store struct {
	recorder Recorder
	client   *http.Client
	dirs     map[model.MediaKind]string

	// timeout bounds each download, including reading the body.
	timeout time.Duration

	// maxSize is the largest asset accepted, in bytes.
	maxSize int64

	logger *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithHTTPClient sets the client used for downloads.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Store) {
		s.client = client
	}
}

// WithTimeout sets the per-asset download timeout.
func WithTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithMaxSize sets the largest asset accepted.
func WithMaxSize(size int64) Option {
	return func(s *Store) {
		if size > 0 {
			s.maxSize = size
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// NewStore creates a Store writing images to imagesDir and videos to
// videosDir. Both directories are created if missing.
func NewStore(recorder Recorder, imagesDir, videosDir string, opts ...Option) (*Store, error) {
	s := &Store{
		recorder: recorder,
		client:   http.DefaultClient,
		dirs: map[model.MediaKind]string{
			model.MediaImage: imagesDir,
			model.MediaVideo: videosDir,
		},
		timeout: defaultTimeout,
		maxSize: defaultMaxSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	for _, dir := range s.dirs {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create media directory: %w", err)
		}
	}
	return s, nil
}

// Dir returns the storage directory of kind.
func (s *Store) Dir(kind model.MediaKind) string {
	return s.dirs[kind]
}

// Ingest downloads assetURL, referenced by pageURL, unless it was already
// recorded. Download and disk failures are reported through the result;
// the returned error is reserved for failures of the Recorder.
func (s *Store) Ingest(ctx context.Context, assetURL, pageURL string, kind model.MediaKind) (IngestResult, error) {
	dir, ok := s.dirs[kind]
	if !ok {
		return IngestSkipped, fmt.Errorf("unknown media kind %d", kind)
	}

	exists, err := s.recorder.HasAsset(ctx, kind, assetURL)
	if err != nil {
		return IngestSkipped, err
	}
	if exists {
		return IngestDuplicate, nil
	}

	filename := model.FilenameFromURL(assetURL)
	if filename == "" {
		s.logger.Debug("asset has no usable filename", "kind", kind.String(), "url", assetURL)
		return IngestSkipped, nil
	}

	data, err := s.fetch(ctx, assetURL)
	if err != nil {
		s.logger.Debug("asset download failed", "kind", kind.String(), "url", assetURL, "error", err)
		return IngestFetchFailed, nil
	}

	// Same filename from a different URL overwrites the previous file.
	if err := os.WriteFile(filepath.Join(dir, filename), data, 0600); err != nil {
		s.logger.Warn("failed to write asset", "kind", kind.String(), "filename", filename, "error", err)
		return IngestSkipped, nil
	}

	sum := sha3.Sum256(data)
	asset := &model.MediaAsset{
		Kind:        kind,
		PageURL:     pageURL,
		AssetURL:    assetURL,
		Filename:    filename,
		ContentHash: hex.EncodeToString(sum[:]),
	}
	if kind == model.MediaImage {
		asset.EXIF = summarizeEXIF(data)
	}

	inserted, err := s.recorder.InsertAsset(ctx, asset)
	if err != nil {
		return IngestSkipped, err
	}
	if !inserted {
		return IngestDuplicate, nil
	}
	return IngestStored, nil
}

// fetch downloads assetURL within the store's timeout and size limit.
func (s *Store) fetch(ctx context.Context, assetURL string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, assetURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAssetFetch, err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAssetFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("%w: status %d", ErrAssetFetch, resp.StatusCode)
	}
	if resp.ContentLength > s.maxSize {
		return nil, fmt.Errorf("%w: %d bytes exceeds limit", ErrAssetFetch, resp.ContentLength)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, s.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAssetFetch, err)
	}
	if int64(len(data)) > s.maxSize {
		return nil, fmt.Errorf("%w: body exceeds %d bytes", ErrAssetFetch, s.maxSize)
	}
	return data, nil
}
