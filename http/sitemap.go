package http

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/beevik/etree"
	"github.com/fwojciec/spider"
)

// DefaultMaxSitemapURLs caps how many page URLs one discovery returns.
const DefaultMaxSitemapURLs = 10000

// Ensure SitemapService implements spider.SitemapService.
var _ spider.SitemapService = (*SitemapService)(nil)

// SitemapService discovers page URLs for batch extraction from a site's
// sitemaps.
type SitemapService struct {
	client  *http.Client
	headers HeaderFunc
	maxURLs int
}

// SitemapOption configures a SitemapService.
type SitemapOption func(*SitemapService)

// WithSitemapHeaders sets the function generating request headers.
func WithSitemapHeaders(fn HeaderFunc) SitemapOption {
	return func(s *SitemapService) {
		s.headers = fn
	}
}

// WithMaxURLs caps the number of URLs returned by DiscoverURLs.
func WithMaxURLs(n int) SitemapOption {
	return func(s *SitemapService) {
		s.maxURLs = n
	}
}

// NewSitemapService creates a new SitemapService with the given HTTP client.
// If client is nil, http.DefaultClient is used.
func NewSitemapService(client *http.Client, opts ...SitemapOption) *SitemapService {
	if client == nil {
		client = http.DefaultClient
	}
	s := &SitemapService{
		client:  client,
		headers: RandomHeaders,
		maxURLs: DefaultMaxSitemapURLs,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// sitemapRef is a queued sitemap. Optional sitemaps are guesses that may
// not exist.
type sitemapRef struct {
	url      string
	optional bool
}

// DiscoverURLs returns the page URLs listed in the site's sitemaps, in the
// order they are listed and without duplicates. Sitemaps declared in
// robots.txt are used when present, /sitemap.xml otherwise, and sitemap
// indexes are followed.
//
// When baseURL has a path (e.g. https://example.com/docs/) only URLs under
// that path are returned.
func (s *SitemapService) DiscoverURLs(ctx context.Context, baseURL string, filter *spider.URLFilter) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	base, err := url.Parse(baseURL)
	if err != nil || base.Host == "" {
		return nil, spider.Errorf(spider.EINVALID, "invalid base URL %q", baseURL)
	}
	scope := pathScope(base.Path)
	root := &url.URL{Scheme: base.Scheme, Host: base.Host, Path: "/"}

	queue := s.declaredSitemaps(ctx, root)
	if len(queue) == 0 {
		queue = []sitemapRef{{url: root.JoinPath("sitemap.xml").String(), optional: true}}
	}

	urls := []string{}
	seenSitemaps := make(map[string]struct{})
	seenURLs := make(map[string]struct{})

	for len(queue) > 0 && len(urls) < s.maxURLs {
		ref := queue[0]
		queue = queue[1:]
		if _, ok := seenSitemaps[ref.url]; ok {
			continue
		}
		seenSitemaps[ref.url] = struct{}{}

		doc, err := s.fetchSitemap(ctx, ref.url)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if ref.optional {
				continue
			}
			return nil, err
		}

		root := doc.Root()
		if root.Tag == "sitemapindex" {
			for _, loc := range locs(root, "./sitemap/loc") {
				queue = append(queue, sitemapRef{url: loc})
			}
			continue
		}

		for _, loc := range locs(root, "./url/loc") {
			if _, ok := seenURLs[loc]; ok {
				continue
			}
			seenURLs[loc] = struct{}{}
			if !inScope(loc, scope) || !filter.Match(loc) {
				continue
			}
			urls = append(urls, loc)
			if len(urls) == s.maxURLs {
				break
			}
		}
	}

	return urls, nil
}

// declaredSitemaps reads Sitemap: directives from robots.txt.
// A missing or unreadable robots.txt yields no sitemaps.
func (s *SitemapService) declaredSitemaps(ctx context.Context, root *url.URL) []sitemapRef {
	body, err := s.get(ctx, root.JoinPath("robots.txt").String())
	if err != nil {
		return nil
	}
	defer body.Close()

	var refs []sitemapRef
	scanner := bufio.NewScanner(body)
	for scanner.Scan() {
		key, value, ok := strings.Cut(strings.TrimSpace(scanner.Text()), ":")
		if !ok || !strings.EqualFold(strings.TrimSpace(key), "sitemap") {
			continue
		}
		if loc := strings.TrimSpace(value); loc != "" {
			refs = append(refs, sitemapRef{url: loc})
		}
	}
	return refs
}

func (s *SitemapService) fetchSitemap(ctx context.Context, sitemapURL string) (*etree.Document, error) {
	body, err := s.get(ctx, sitemapURL)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(body); err != nil {
		return nil, fmt.Errorf("parsing sitemap %s: %w", sitemapURL, err)
	}
	if doc.Root() == nil {
		return nil, fmt.Errorf("empty sitemap %s", sitemapURL)
	}
	return doc, nil
}

func (s *SitemapService) get(ctx context.Context, target string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if s.headers != nil {
		for k, v := range s.headers() {
			req.Header[k] = v
		}
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, target)
	}
	return resp.Body, nil
}

// locs returns the trimmed, non-empty <loc> texts found at path.
func locs(root *etree.Element, path string) []string {
	var out []string
	for _, el := range root.FindElements(path) {
		if loc := strings.TrimSpace(el.Text()); loc != "" {
			out = append(out, loc)
		}
	}
	return out
}

// pathScope normalizes a base path into a directory prefix, so /docs
// matches /docs/ and /docs/intro but not /documentation. The root path
// yields no scope.
func pathScope(p string) string {
	if p == "" || p == "/" {
		return ""
	}
	if !strings.HasSuffix(p, "/") {
		p += "/"
	}
	return p
}

func inScope(rawURL, scope string) bool {
	if scope == "" {
		return true
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	p := u.Path
	if !strings.HasSuffix(p, "/") && p+"/" == scope {
		return true
	}
	return strings.HasPrefix(p, scope)
}
