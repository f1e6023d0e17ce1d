package crawler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"golang.org/x/net/html/charset"
)

// Renderer turns a URL into document markup.
// One Renderer is held for a whole crawl and is used sequentially.
type Renderer interface {
	// Render returns the markup of url. Failures are reported as *RenderError.
	Render(ctx context.Context, url string) (string, error)

	// Close releases the renderer's resources.
	Close() error
}

// RendererFactory creates the Renderer for one crawl run.
type RendererFactory func(ctx context.Context) (Renderer, error)

// defaultMaxBodySize limits how much of a page HTTPRenderer reads.
const defaultMaxBodySize = 10 * 1024 * 1024 // 10MB

// HTTPRenderer fetches pages over HTTP and returns the served markup,
// decoded to UTF-8. It does not execute scripts.
type HTTPRenderer struct {
	// client is the HTTP client used for every request.
	client *http.Client

	// maxBodySize limits the size of response bodies to read.
	maxBodySize int64
}

// HTTPRendererOption configures an HTTPRenderer.
type HTTPRendererOption func(*HTTPRenderer)

// WithMaxBodySize sets the maximum response body size.
func WithMaxBodySize(size int64) HTTPRendererOption {
	return func(r *HTTPRenderer) {
		if size > 0 {
			r.maxBodySize = size
		}
	}
}

// NewHTTPRenderer creates an HTTPRenderer that sends requests with client.
func NewHTTPRenderer(client *http.Client, opts ...HTTPRendererOption) *HTTPRenderer {
	r := &HTTPRenderer{
		client:      client,
		maxBodySize: defaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// HTTPRendererFactory returns a RendererFactory that hands out HTTPRenderers
// sharing client.
func HTTPRendererFactory(client *http.Client, opts ...HTTPRendererOption) RendererFactory {
	return func(_ context.Context) (Renderer, error) {
		return NewHTTPRenderer(client, opts...), nil
	}
}

// Render fetches url. Transport errors, HTTP status codes of 400 and above
// and non-HTML responses are render failures.
func (r *HTTPRenderer) Render(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", &RenderError{URL: url, Err: err}
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", &RenderError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return "", &RenderError{URL: url, StatusCode: resp.StatusCode}
	}

	contentType := resp.Header.Get("Content-Type")
	if !isHTML(contentType) {
		return "", &RenderError{URL: url, Err: fmt.Errorf("unsupported content type %q", contentType)}
	}

	body, err := charset.NewReader(io.LimitReader(resp.Body, r.maxBodySize), contentType)
	if err != nil {
		return "", &RenderError{URL: url, Err: err}
	}

	markup, err := io.ReadAll(body)
	if err != nil {
		return "", &RenderError{URL: url, Err: err}
	}
	return string(markup), nil
}

// Close implements Renderer. HTTPRenderer holds no resources of its own.
func (r *HTTPRenderer) Close() error {
	return nil
}

// isHTML reports whether a Content-Type header denotes a document.
// A missing header is accepted; the body is sniffed by the parser anyway.
func isHTML(contentType string) bool {
	if contentType == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil && !errors.Is(err, mime.ErrInvalidMediaParameter) {
		return false
	}
	switch mediaType {
	case "text/html", "application/xhtml+xml", "text/plain":
		return true
	default:
		return false
	}
}
