package search

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nao1215/searchcrawl/internal/metrics"
	"github.com/nao1215/searchcrawl/internal/model"
)

// Source is the durable store the index is built from.
type Source interface {
	ListPages(ctx context.Context) ([]model.Page, error)
	ListAssets(ctx context.Context, kind model.MediaKind) ([]model.MediaAsset, error)
}

// Entry is the indexed view of one page.
type Entry struct {
	URL  string
	Text string

	// Images and Videos are source asset URLs in first-seen order.
	Images []string
	Videos []string
}

// snapshot is an immutable index generation.
type snapshot struct {
	entries []*Entry
	byURL   map[string]*Entry
	builtAt time.Time
}

// Index is safe for concurrent queries while a rebuild runs.
type Index struct {
	source Source
	logger *slog.Logger

	// rebuildMu serializes rebuilds so generations are published in order.
	rebuildMu sync.Mutex

	current atomic.Pointer[snapshot]
}

// IndexOption configures an Index.
type IndexOption func(*Index)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) IndexOption {
	return func(i *Index) {
		i.logger = logger
	}
}

// NewIndex returns an empty index over source.
func NewIndex(source Source, opts ...IndexOption) *Index {
	i := &Index{source: source}
	for _, opt := range opts {
		opt(i)
	}
	if i.logger == nil {
		i.logger = slog.Default()
	}
	i.current.Store(&snapshot{byURL: map[string]*Entry{}})
	return i
}

// Rebuild recomputes the whole index from the store and replaces the
// current one. On error the previous index stays in place.
func (i *Index) Rebuild(ctx context.Context) error {
	i.rebuildMu.Lock()
	defer i.rebuildMu.Unlock()

	start := time.Now()

	pages, err := i.source.ListPages(ctx)
	if err != nil {
		return fmt.Errorf("failed to rebuild index: %w", err)
	}

	next := &snapshot{
		entries: make([]*Entry, 0, len(pages)),
		byURL:   make(map[string]*Entry, len(pages)),
	}
	for _, p := range pages {
		e := &Entry{URL: p.URL, Text: p.Text}
		next.entries = append(next.entries, e)
		next.byURL[p.URL] = e
	}

	for _, kind := range model.MediaKinds {
		assets, err := i.source.ListAssets(ctx, kind)
		if err != nil {
			return fmt.Errorf("failed to rebuild index: %w", err)
		}

		seen := make(map[string]map[string]struct{})
		for _, a := range assets {
			e, ok := next.byURL[a.PageURL]
			if !ok {
				continue // asset of a page that is not stored
			}
			if seen[a.PageURL] == nil {
				seen[a.PageURL] = make(map[string]struct{})
			}
			if _, dup := seen[a.PageURL][a.AssetURL]; dup {
				continue
			}
			seen[a.PageURL][a.AssetURL] = struct{}{}

			if kind == model.MediaImage {
				e.Images = append(e.Images, a.AssetURL)
			} else {
				e.Videos = append(e.Videos, a.AssetURL)
			}
		}
	}

	next.builtAt = time.Now()
	i.current.Store(next)

	metrics.IndexRebuildDuration.Observe(time.Since(start).Seconds())
	metrics.IndexedPages.Set(float64(len(next.entries)))
	i.logger.Debug("index rebuilt", "pages", len(next.entries), "duration", time.Since(start))
	return nil
}

// Len returns the number of indexed pages.
func (i *Index) Len() int {
	return len(i.current.Load().entries)
}

// BuiltAt returns when the current index was built; zero before the first
// rebuild.
func (i *Index) BuiltAt() time.Time {
	return i.current.Load().builtAt
}

// entries returns the current generation's entries in rebuild order.
// Callers must not modify them.
func (i *Index) entries() []*Entry {
	return i.current.Load().entries
}
