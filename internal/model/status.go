package model

import "time"

// CrawlStatus is a point-in-time view of the crawl.
// Values are immutable once published; writers replace the whole snapshot.
type CrawlStatus struct {
	// Running reports whether a crawl job is in progress.
	Running bool

	// CurrentDepth is the depth of the URL being processed.
	CurrentDepth int

	// CurrentURL is the URL being processed.
	CurrentURL string

	// MaxDepthReached is the deepest level visited in the current run.
	MaxDepthReached int

	// LastIndexBuild is when the final index rebuild of a run completed.
	// Zero until the first crawl finishes.
	LastIndexBuild time.Time
}

// LastIndexBuildText returns LastIndexBuild formatted with TimestampLayout,
// or "N/A" when no crawl has finished yet.
func (s CrawlStatus) LastIndexBuildText() string {
	if s.LastIndexBuild.IsZero() {
		return "N/A"
	}
	return FormatTimestamp(s.LastIndexBuild)
}
