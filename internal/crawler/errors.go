package crawler

import (
	"errors"
	"fmt"
)

var (
	// ErrCrawlInProgress is returned by Start while a crawl is running.
	ErrCrawlInProgress = errors.New("crawl already in progress")

	// ErrNoCrawlInProgress is returned by Stop when the crawler is idle.
	ErrNoCrawlInProgress = errors.New("no crawl in progress")

	// ErrCrawlAborted wraps the storage error that ended a crawl early.
	ErrCrawlAborted = errors.New("crawl aborted")

	// ErrRenderFailed is matched by every *RenderError.
	ErrRenderFailed = errors.New("render failed")
)

// RenderError reports that a URL could not be rendered.
// The crawl treats such a page as empty with no outbound links.
type RenderError struct {
	URL string

	// StatusCode is the HTTP status when the server answered, otherwise 0.
	StatusCode int

	Err error
}

// Error implements the error interface.
func (e *RenderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("failed to render %s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("failed to render %s: %v", e.URL, e.Err)
}

// Unwrap returns the underlying cause.
func (e *RenderError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrRenderFailed) true for every RenderError.
func (e *RenderError) Is(target error) bool {
	return target == ErrRenderFailed
}
