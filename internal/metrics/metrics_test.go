package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollectorsRegistered(t *testing.T) {
	t.Parallel()

	PagesCrawled.WithLabelValues(PageStored).Inc()
	HTTPRequests.WithLabelValues("/search", "200").Inc()

	srv := httptest.NewServer(Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL) //nolint:noctx // test code
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}

	for _, name := range []string{
		"searchcrawl_pages_crawled_total",
		"searchcrawl_http_requests_total",
		"searchcrawl_crawl_running",
		"searchcrawl_frontier_size",
	} {
		if !strings.Contains(string(body), name) {
			t.Errorf("metrics output missing %s", name)
		}
	}
}

func TestCounterIncrements(t *testing.T) {
	t.Parallel()

	c := AssetsIngested.WithLabelValues("image", "test")
	before := testutil.ToFloat64(c)
	c.Inc()
	c.Inc()
	if got := testutil.ToFloat64(c) - before; got != 2 {
		t.Errorf("counter delta = %v, want 2", got)
	}
}
