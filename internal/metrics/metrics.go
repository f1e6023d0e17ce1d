// Package metrics defines the Prometheus collectors of searchcrawl.
// Collectors are registered with the default registry at init and exposed
// by Handler.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Values of the "result" label of PagesCrawled.
const (
	// PageStored counts pages rendered and stored with their text.
	PageStored = "stored"
	// PageRenderFailed counts pages stored empty after a render failure.
	PageRenderFailed = "render_failed"
)

var (
	// PagesCrawled counts processed pages by result.
	PagesCrawled = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "searchcrawl_pages_crawled_total",
			Help: "Total number of pages processed by the crawler, labeled by result.",
		},
		[]string{"result"},
	)
	// AssetsIngested counts media references by kind and media.IngestResult.
	AssetsIngested = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "searchcrawl_assets_ingested_total",
			Help: "Total number of media references handled, labeled by kind and result.",
		},
		[]string{"kind", "result"},
	)
	// CrawlRunning is 1 while a crawl job runs and 0 otherwise.
	CrawlRunning = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "searchcrawl_crawl_running",
			Help: "1 while a crawl job is in progress.",
		},
	)
	// CrawlDepth is the depth of the page being crawled.
	CrawlDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "searchcrawl_crawl_current_depth",
			Help: "Depth of the URL currently being crawled.",
		},
	)
	// FrontierSize is the number of queued URLs.
	FrontierSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "searchcrawl_frontier_size",
			Help: "Number of URLs waiting in the frontier.",
		},
	)
	// IndexRebuildDuration observes each full index rebuild.
	IndexRebuildDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "searchcrawl_index_rebuild_duration_seconds",
			Help:    "Duration of full index rebuilds in seconds.",
			Buckets: prometheus.DefBuckets,
		},
	)
	// IndexedPages is the page count of the current index.
	IndexedPages = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "searchcrawl_indexed_pages",
			Help: "Number of pages in the current in-memory index.",
		},
	)
	// HTTPRequests counts served requests by route pattern and status code.
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "searchcrawl_http_requests_total",
			Help: "Total number of HTTP requests served, labeled by route and status code.",
		},
		[]string{"route", "code"},
	)
	// HTTPRequestDuration observes request latency by route pattern.
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "searchcrawl_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
)

func init() {
	prometheus.MustRegister(PagesCrawled)
	prometheus.MustRegister(AssetsIngested)
	prometheus.MustRegister(CrawlRunning)
	prometheus.MustRegister(CrawlDepth)
	prometheus.MustRegister(FrontierSize)
	prometheus.MustRegister(IndexRebuildDuration)
	prometheus.MustRegister(IndexedPages)
	prometheus.MustRegister(HTTPRequests)
	prometheus.MustRegister(HTTPRequestDuration)
}

// Handler returns the HTTP handler exposing the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
