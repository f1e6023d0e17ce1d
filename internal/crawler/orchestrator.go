package crawler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/nao1215/searchcrawl/internal/media"
	"github.com/nao1215/searchcrawl/internal/metrics"
	"github.com/nao1215/searchcrawl/internal/model"
)

// PageStore persists crawled pages.
type PageStore interface {
	PageURLs(ctx context.Context) ([]string, error)
	SavePage(ctx context.Context, page *model.Page) error
}

// AssetIngester downloads and records media assets.
type AssetIngester interface {
	Ingest(ctx context.Context, assetURL, pageURL string, kind model.MediaKind) (media.IngestResult, error)
}

// Indexer rebuilds the search index from the store.
type Indexer interface {
	Rebuild(ctx context.Context) error
}

// defaultMaxDepth matches config.DefaultMaxDepth.
const defaultMaxDepth = 100

// Orchestrator runs crawl jobs. At most one job runs at a time; status can
// be read concurrently while it runs.
type Orchestrator struct {
	pages       PageStore
	assets      AssetIngester
	index       Indexer
	newRenderer RendererFactory

	seeds    []string
	maxDepth int
	logger   *slog.Logger
	now      func() time.Time

	// mu guards running, cancel and job.
	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	job     *crawlJob

	status atomic.Pointer[model.CrawlStatus]
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithSeeds sets the URLs every crawl starts from.
func WithSeeds(seeds []string) Option {
	return func(o *Orchestrator) {
		o.seeds = append([]string(nil), seeds...)
	}
}

// WithMaxDepth sets the deepest level the frontier accepts.
func WithMaxDepth(depth int) Option {
	return func(o *Orchestrator) {
		o.maxDepth = depth
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// NewOrchestrator creates an idle Orchestrator.
func NewOrchestrator(pages PageStore, assets AssetIngester, index Indexer, newRenderer RendererFactory, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		pages:       pages,
		assets:      assets,
		index:       index,
		newRenderer: newRenderer,
		maxDepth:    defaultMaxDepth,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	o.status.Store(&model.CrawlStatus{})
	return o
}

// Status returns the latest status snapshot.
func (o *Orchestrator) Status() model.CrawlStatus {
	return *o.status.Load()
}

// Running reports whether a crawl job is in progress.
func (o *Orchestrator) Running() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.running
}

// Start launches a crawl job in the background and returns once it is
// running. It fails with ErrCrawlInProgress when a job is already running,
// and with a wrapped store error when the visited set or index cannot be
// loaded. The job outlives ctx; use Stop to cancel it.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.running {
		return ErrCrawlInProgress
	}

	visited, err := o.loadVisited(ctx)
	if err != nil {
		return err
	}
	if err := o.index.Rebuild(ctx); err != nil {
		return fmt.Errorf("failed to load index: %w", err)
	}

	renderer, err := o.newRenderer(ctx)
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	job := &crawlJob{done: make(chan struct{})}
	o.running = true
	o.cancel = cancel
	o.job = job

	o.publish(func(s *model.CrawlStatus) {
		*s = model.CrawlStatus{Running: true, LastIndexBuild: s.LastIndexBuild}
	})
	metrics.CrawlRunning.Set(1)

	logger := o.logger.With("run_id", uuid.NewString())
	go o.run(runCtx, &crawlRun{
		renderer: renderer,
		visited:  visited,
		pending:  make(map[string]struct{}),
		frontier: NewFrontier(o.maxDepth),
		logger:   logger,
	}, job)

	return nil
}

// Stop signals the running job to exit after its current page.
// It returns ErrNoCrawlInProgress when idle.
func (o *Orchestrator) Stop() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.running {
		return ErrNoCrawlInProgress
	}
	o.cancel()
	return nil
}

// Wait blocks until the latest job has finished or ctx is done. It returns
// the job's error: one wrapping ErrCrawlAborted when a storage failure ended
// the crawl, nil when the crawl ran out of work or was stopped.
func (o *Orchestrator) Wait(ctx context.Context) error {
	o.mu.Lock()
	job := o.job
	o.mu.Unlock()

	if job == nil {
		return nil
	}
	select {
	case <-job.done:
		return job.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run starts a crawl and waits for it to finish. Cancelling ctx stops the
// crawl; Run still waits for the final index rebuild. A storage failure
// during the crawl is returned wrapped in ErrCrawlAborted.
func (o *Orchestrator) Run(ctx context.Context) error {
	if err := o.Start(ctx); err != nil {
		return err
	}

	stop := context.AfterFunc(ctx, func() { _ = o.Stop() })
	defer stop()

	return o.Wait(context.WithoutCancel(ctx))
}

func (o *Orchestrator) loadVisited(ctx context.Context) (map[string]struct{}, error) {
	urls, err := o.pages.PageURLs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load visited pages: %w", err)
	}
	visited := make(map[string]struct{}, len(urls))
	for _, u := range urls {
		visited[u] = struct{}{}
	}
	return visited, nil
}

// publish copies the current status, applies update and stores the copy.
// Only the crawl goroutine and Start (under mu, while idle) publish.
func (o *Orchestrator) publish(update func(*model.CrawlStatus)) {
	next := *o.status.Load()
	update(&next)
	o.status.Store(&next)
}

// crawlJob is the outcome of one Start call. err is written before done is
// closed.
type crawlJob struct {
	done chan struct{}
	err  error
}

// crawlRun is the state owned by one job's goroutine.
type crawlRun struct {
	renderer Renderer
	frontier *Frontier

	// visited holds every URL popped in this run or stored before it.
	visited map[string]struct{}

	// pending holds URLs waiting in the frontier.
	pending map[string]struct{}

	logger *slog.Logger
}

// schedule pushes url at depth unless it is known or beyond the bound.
func (r *crawlRun) schedule(depth int, url string) {
	if _, ok := r.visited[url]; ok {
		return
	}
	if _, ok := r.pending[url]; ok {
		return
	}
	if r.frontier.Push(depth, url) {
		r.pending[url] = struct{}{}
	}
}

func (o *Orchestrator) run(ctx context.Context, r *crawlRun, job *crawlJob) {
	defer close(job.done)

	r.logger.Info("crawl started", "seeds", len(o.seeds), "max_depth", r.frontier.MaxDepth(), "known_pages", len(r.visited))

	for _, seed := range o.seeds {
		r.schedule(0, seed)
	}

	pagesDone, err := o.loop(ctx, r)
	switch {
	case err != nil:
		r.logger.Error("crawl aborted", "error", err)
	case ctx.Err() != nil:
		r.logger.Info("crawl stopped", "pages", pagesDone)
	default:
		r.logger.Info("crawl finished", "pages", pagesDone)
	}

	if err != nil {
		job.err = fmt.Errorf("%w: %w", ErrCrawlAborted, err)
	}
	o.finish(context.WithoutCancel(ctx), r)
}

// loop processes the frontier until it is empty, the bound is reached or ctx
// is cancelled. It returns the number of pages stored and any storage error.
func (o *Orchestrator) loop(ctx context.Context, r *crawlRun) (int, error) {
	prevDepth := 0
	stored := 0

	for {
		entry, ok := r.frontier.Pop()
		if !ok {
			return stored, nil
		}
		delete(r.pending, entry.URL)
		metrics.FrontierSize.Set(float64(r.frontier.Len()))

		if ctx.Err() != nil {
			return stored, nil
		}
		// Remaining entries are at least this deep.
		if entry.Depth > r.frontier.MaxDepth() {
			return stored, nil
		}
		if _, ok := r.visited[entry.URL]; ok {
			continue
		}

		if entry.Depth > prevDepth {
			if err := o.index.Rebuild(ctx); err != nil {
				return stored, o.storageError(ctx, err)
			}
			prevDepth = entry.Depth
		}

		r.visited[entry.URL] = struct{}{}
		o.publish(func(s *model.CrawlStatus) {
			s.CurrentDepth = entry.Depth
			s.CurrentURL = entry.URL
			s.MaxDepthReached = max(s.MaxDepthReached, entry.Depth)
		})
		metrics.CrawlDepth.Set(float64(entry.Depth))

		links, err := o.processPage(ctx, r, entry)
		if err != nil {
			return stored, o.storageError(ctx, err)
		}
		if ctx.Err() != nil {
			return stored, nil
		}
		stored++

		for _, link := range links {
			r.schedule(entry.Depth+1, link)
		}
		metrics.FrontierSize.Set(float64(r.frontier.Len()))
	}
}

// processPage renders, extracts and stores one page and its media.
// It returns the page's outbound links; a render failure yields none.
func (o *Orchestrator) processPage(ctx context.Context, r *crawlRun, entry Entry) ([]string, error) {
	r.logger.Debug("crawling page", "url", entry.URL, "depth", entry.Depth)

	var result Result
	markup, err := r.renderer.Render(ctx, entry.URL)
	if err != nil {
		if ctx.Err() != nil {
			return nil, nil
		}
		r.logger.Warn("render failed", "url", entry.URL, "error", err)
		metrics.PagesCrawled.WithLabelValues(metrics.PageRenderFailed).Inc()
	} else {
		result = Extract(markup, entry.URL)
		metrics.PagesCrawled.WithLabelValues(metrics.PageStored).Inc()
	}

	if err := o.ingestAll(ctx, r, entry.URL, model.MediaImage, result.Images); err != nil {
		return nil, err
	}
	if err := o.ingestAll(ctx, r, entry.URL, model.MediaVideo, result.Videos); err != nil {
		return nil, err
	}

	page := &model.Page{
		URL:         entry.URL,
		Text:        result.Text,
		Depth:       entry.Depth,
		LastVisited: o.now(),
		Language:    detectLanguage(result.Text),
	}
	if err := o.pages.SavePage(ctx, page); err != nil {
		return nil, err
	}

	return result.Links, nil
}

func (o *Orchestrator) ingestAll(ctx context.Context, r *crawlRun, pageURL string, kind model.MediaKind, urls []string) error {
	for _, u := range urls {
		res, err := o.assets.Ingest(ctx, u, pageURL, kind)
		if err != nil {
			return err
		}
		metrics.AssetsIngested.WithLabelValues(kind.String(), res.String()).Inc()
		if res == media.IngestStored {
			r.logger.Debug("asset stored", "kind", kind.String(), "url", u)
		}
	}
	return nil
}

// storageError returns nil when the job was cancelled; store calls made with
// a cancelled context fail without the store being at fault.
func (o *Orchestrator) storageError(ctx context.Context, err error) error {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// finish releases the renderer, rebuilds the index a last time and marks
// the orchestrator idle.
func (o *Orchestrator) finish(ctx context.Context, r *crawlRun) {
	if err := r.renderer.Close(); err != nil {
		r.logger.Warn("failed to close renderer", "error", err)
	}

	rebuildErr := o.index.Rebuild(ctx)
	if rebuildErr != nil {
		r.logger.Error("final index rebuild failed", "error", rebuildErr)
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	builtAt := o.now()
	o.publish(func(s *model.CrawlStatus) {
		s.Running = false
		if rebuildErr == nil {
			s.LastIndexBuild = builtAt
		}
	})
	o.running = false
	o.cancel()
	o.cancel = nil
	metrics.CrawlRunning.Set(0)
	metrics.FrontierSize.Set(0)
}
