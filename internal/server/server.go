package server

import (
	"context"
	_ "embed"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/nao1215/searchcrawl/internal/crawler"
	"github.com/nao1215/searchcrawl/internal/metrics"
	"github.com/nao1215/searchcrawl/internal/model"
	"github.com/nao1215/searchcrawl/internal/search"
)

//go:embed static/index.html
var indexHTML []byte

// Crawler is the crawl job control used by the server.
type Crawler interface {
	Start(ctx context.Context) error
	Stop() error
	Status() model.CrawlStatus
}

// Searcher answers queries.
type Searcher interface {
	SearchText(query string) []search.TextResult
	SearchMedia(ctx context.Context, kind model.MediaKind, query string) ([]string, error)
}

// defaultWorkers is used when no positive worker count is configured.
const defaultWorkers = 4

// Server is the HTTP front end.
type Server struct {
	crawler  Crawler
	searcher Searcher
	dirs     map[model.MediaKind]string

	workers int
	sem     *semaphore.Weighted
	logger  *slog.Logger
	mux     *http.ServeMux
}

// Option configures a Server.
type Option func(*Server)

// WithWorkers sets how many requests are handled concurrently.
func WithWorkers(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// New creates a Server serving stored media from imagesDir and videosDir.
func New(c Crawler, searcher Searcher, imagesDir, videosDir string, opts ...Option) *Server {
	s := &Server{
		crawler:  c,
		searcher: searcher,
		dirs: map[model.MediaKind]string{
			model.MediaImage: imagesDir,
			model.MediaVideo: videosDir,
		},
		workers: defaultWorkers,
		mux:     http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.sem = semaphore.NewWeighted(int64(s.workers))

	s.handle("POST /crawl", s.handleCrawl)
	s.handle("POST /crawl/stop", s.handleCrawlStop)
	s.handle("GET /search", s.handleSearch)
	s.handle("GET /search_images", s.handleSearchMedia(model.MediaImage))
	s.handle("GET /search_videos", s.handleSearchMedia(model.MediaVideo))
	s.handle("GET /info", s.handleInfo)
	s.handle("GET /images/{filename}", s.handleMedia(model.MediaImage))
	s.handle("GET /videos/{filename}", s.handleMedia(model.MediaVideo))
	s.mux.Handle("GET /metrics", metrics.Handler())
	s.handle("GET /{$}", s.handleIndex)

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handle registers h under pattern behind the worker limit, with metrics.
func (s *Server) handle(pattern string, h http.HandlerFunc) {
	route := pattern[strings.IndexByte(pattern, ' ')+1:]

	s.mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		if err := s.sem.Acquire(r.Context(), 1); err != nil {
			writeMessage(w, http.StatusServiceUnavailable, "Server busy")
			return
		}
		defer s.sem.Release(1)

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		h(rec, r)

		metrics.HTTPRequests.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
		s.logger.Debug("request served",
			"method", r.Method,
			"route", route,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

// statusRecorder remembers the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) handleCrawl(w http.ResponseWriter, r *http.Request) {
	err := s.crawler.Start(r.Context())
	switch {
	case err == nil:
		writeMessage(w, http.StatusOK, "Crawl started")
	case errors.Is(err, crawler.ErrCrawlInProgress):
		writeMessage(w, http.StatusBadRequest, "Crawl already in progress")
	default:
		s.logger.Error("failed to start crawl", "error", err)
		writeMessage(w, http.StatusInternalServerError, "Failed to start crawl")
	}
}

func (s *Server) handleCrawlStop(w http.ResponseWriter, _ *http.Request) {
	if err := s.crawler.Stop(); err != nil {
		writeMessage(w, http.StatusBadRequest, "No crawl in progress")
		return
	}
	writeMessage(w, http.StatusOK, "Crawl stopping")
}

type textSearchResponse struct {
	Query   string              `json:"query"`
	Results []search.TextResult `json:"results"`
}

type mediaSearchResponse struct {
	Query   string   `json:"query"`
	Results []string `json:"results"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := queryParam(r)
	writeJSON(w, http.StatusOK, textSearchResponse{
		Query:   query,
		Results: s.searcher.SearchText(query),
	})
}

func (s *Server) handleSearchMedia(kind model.MediaKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := queryParam(r)
		results, err := s.searcher.SearchMedia(r.Context(), kind, query)
		if err != nil {
			s.logger.Error("media search failed", "kind", kind.String(), "error", err)
			writeMessage(w, http.StatusInternalServerError, "Search failed")
			return
		}
		writeJSON(w, http.StatusOK, mediaSearchResponse{Query: query, Results: results})
	}
}

type infoResponse struct {
	LastIndexUpdateTime string `json:"last_index_update_time"`
	MaxDepthReached     int    `json:"max_depth_reached"`
	CrawlInProgress     bool   `json:"crawl_in_progress"`
	CurrentDepth        int    `json:"current_depth"`
	CurrentURL          string `json:"current_url"`
}

func (s *Server) handleInfo(w http.ResponseWriter, _ *http.Request) {
	status := s.crawler.Status()
	writeJSON(w, http.StatusOK, infoResponse{
		LastIndexUpdateTime: status.LastIndexBuildText(),
		MaxDepthReached:     status.MaxDepthReached,
		CrawlInProgress:     status.Running,
		CurrentDepth:        status.CurrentDepth,
		CurrentURL:          status.CurrentURL,
	})
}

func (s *Server) handleMedia(kind model.MediaKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := r.PathValue("filename")
		if !isSafeFilename(name) {
			writeMessage(w, http.StatusNotFound, "File not found")
			return
		}

		f, err := os.Open(filepath.Join(s.dirs[kind], name))
		if err != nil {
			writeMessage(w, http.StatusNotFound, "File not found")
			return
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil || info.IsDir() {
			writeMessage(w, http.StatusNotFound, "File not found")
			return
		}
		http.ServeContent(w, r, name, info.ModTime(), f)
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(indexHTML)
}

// queryParam returns the lowercased q parameter.
func queryParam(r *http.Request) string {
	return strings.ToLower(r.URL.Query().Get("q"))
}

// isSafeFilename reports whether name refers to a file directly inside a
// storage directory.
func isSafeFilename(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`) && !strings.ContainsRune(name, 0)
}
