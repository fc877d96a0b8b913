// Package chi exposes the extraction engine over HTTP using the chi router.
package chi

import (
	"log/slog"
	"net/http"

	"github.com/fwojciec/spider"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// DefaultMaxBodySize caps request envelopes.
const DefaultMaxBodySize = 4 << 20

// Server is the HTTP API server for extraction requests.
type Server struct {
	router    chi.Router
	extractor spider.Extractor
	fetcher   spider.Fetcher
	batch     spider.BatchRunner
	sitemaps  spider.SitemapService
	log       *slog.Logger

	maxBodySize int64
}

// Option configures a Server.
type Option func(*Server)

// WithBatchRunner enables POST /batch.
func WithBatchRunner(r spider.BatchRunner) Option {
	return func(s *Server) {
		s.batch = r
	}
}

// WithSitemapService enables sitemap discovery for batch requests.
func WithSitemapService(svc spider.SitemapService) Option {
	return func(s *Server) {
		s.sitemaps = svc
	}
}

// WithMaxBodySize sets the maximum accepted request body size in bytes.
func WithMaxBodySize(n int64) Option {
	return func(s *Server) {
		s.maxBodySize = n
	}
}

// NewServer creates and configures the HTTP server.
func NewServer(extractor spider.Extractor, fetcher spider.Fetcher, log *slog.Logger, opts ...Option) *Server {
	s := &Server{
		extractor:   extractor,
		fetcher:     fetcher,
		log:         log,
		maxBodySize: DefaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(RequestID)
	r.Use(CORS(s.log))
	r.Use(RequestLogger(s.log))

	r.Get("/", http.RedirectHandler("/docs", http.StatusTemporaryRedirect).ServeHTTP)
	r.Get("/docs", s.handleDocs)
	r.Get("/healthz", s.handleHealth)

	r.Post("/spider", s.handleSpider)
	r.Post("/crawl", s.handleCrawl)
	r.Post("/batch", s.handleBatch)

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":200}`))
}

const usage = `spider: schema-driven HTML extraction

POST /spider  {"url", "target", "selectors_type"}
    Flat extraction. Returns {"result_data", "is_unpacked"}.

POST /crawl   {"url", "target", "selectors_type", "format"}
    Nested extraction. Returns {"result_data"}.

POST /batch   {"urls" | "sitemap", "filter", "target", "selectors_type", "mode"}
    Extracts many pages. Returns {"pages"}.

A target maps field names to selectors. A string is a list leaf,
[selector, "string"|"array"] picks scalar or list, and an object with
"_parent_object" is a group resolved once per parent match. Inside a
group, XPath paths starting with "." are relative to the parent match
and paths starting with "//" search the whole page.
selectors_type is "xpath" (default) or "css".
`

func (s *Server) handleDocs(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(usage))
}
