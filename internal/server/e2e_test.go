package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/searchcrawl/internal/crawler"
	"github.com/nao1215/searchcrawl/internal/database"
	"github.com/nao1215/searchcrawl/internal/media"
	"github.com/nao1215/searchcrawl/internal/search"
)

// gatedRenderer serves fixed pages once its gate is opened.
type gatedRenderer struct {
	pages map[string]string
	gate  chan struct{}
}

func (r *gatedRenderer) Render(ctx context.Context, url string) (string, error) {
	select {
	case <-r.gate:
	case <-ctx.Done():
		return "", &crawler.RenderError{URL: url, Err: ctx.Err()}
	}
	markup, ok := r.pages[url]
	if !ok {
		return "", &crawler.RenderError{URL: url, StatusCode: http.StatusNotFound}
	}
	return markup, nil
}

func (r *gatedRenderer) Close() error { return nil }

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func TestEndToEnd(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dir := t.TempDir()

	db, err := database.Open(dir, database.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	assetClient := &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader("png")),
			Header:     make(http.Header),
			Request:    req,
		}, nil
	})}

	imagesDir := filepath.Join(dir, "images")
	videosDir := filepath.Join(dir, "videos")
	store, err := media.NewStore(db, imagesDir, videosDir, media.WithHTTPClient(assetClient))
	if err != nil {
		t.Fatalf("failed to create media store: %v", err)
	}

	index := search.NewIndex(db)
	renderer := &gatedRenderer{
		pages: map[string]string{
			"https://a.test": `<html><body>Hello <img src="/x.png"></body></html>`,
		},
		gate: make(chan struct{}),
	}
	orch := crawler.NewOrchestrator(db, store, index,
		func(context.Context) (crawler.Renderer, error) { return renderer, nil },
		crawler.WithSeeds([]string{"https://a.test"}),
	)

	srv := httptest.NewServer(New(orch, search.NewEngine(index, db), imagesDir, videosDir))
	t.Cleanup(srv.Close)

	// Two starts in succession while the first crawl is held at the renderer.
	first, _ := do(t, http.MethodPost, srv.URL+"/crawl")
	second, body := do(t, http.MethodPost, srv.URL+"/crawl")
	if first != http.StatusOK || second != http.StatusBadRequest {
		t.Fatalf("starts = %d, %d (%s)", first, second, body)
	}

	_, body = do(t, http.MethodGet, srv.URL+"/info")
	if info := decode[infoResponse](t, body); !info.CrawlInProgress {
		t.Errorf("info during crawl = %+v", info)
	}

	close(renderer.gate)
	waitCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := orch.Wait(waitCtx); err != nil {
		t.Fatalf("crawl did not finish: %v", err)
	}

	page, err := db.GetPage(ctx, "https://a.test")
	if err != nil || page == nil {
		t.Fatalf("page not stored: %v", err)
	}
	if page.Text != "Hello" || page.Depth != 0 {
		t.Errorf("page = %+v", page)
	}

	code, body := do(t, http.MethodGet, srv.URL+"/search?q=hello")
	if code != http.StatusOK {
		t.Fatalf("search status = %d", code)
	}
	res := decode[textSearchResponse](t, body)
	if len(res.Results) != 1 {
		t.Fatalf("expected 1 result, got %s", body)
	}
	if !slices.Equal(res.Results[0].Images, []string{"/images/x.png"}) {
		t.Errorf("images = %v", res.Results[0].Images)
	}

	code, body = do(t, http.MethodGet, srv.URL+"/images/x.png")
	if code != http.StatusOK || string(body) != "png" {
		t.Errorf("stored image = %d %q", code, body)
	}

	_, body = do(t, http.MethodGet, srv.URL+"/search_images?q=X.PNG")
	if got := decode[mediaSearchResponse](t, body); !slices.Equal(got.Results, []string{"/images/x.png"}) {
		t.Errorf("image search = %v", got.Results)
	}

	_, body = do(t, http.MethodGet, srv.URL+"/info")
	info := decode[infoResponse](t, body)
	if info.CrawlInProgress || info.LastIndexUpdateTime == "N/A" || info.CurrentURL != "https://a.test" {
		t.Errorf("info after crawl = %+v", info)
	}
}
