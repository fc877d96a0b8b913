// Package crawl runs batch extractions: it fetches many pages with bounded
// concurrency, per-host rate limiting and retries, and extracts each one
// with the same schema.
package crawl

import (
	"context"
	"net/url"
	"sync"
	"time"

	"github.com/fwojciec/spider"
	"github.com/fwojciec/spider/bloom"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of pages processed at once.
const DefaultConcurrency = 10

var _ spider.BatchRunner = (*Runner)(nil)

// Runner fetches and extracts batches of pages.
type Runner struct {
	Fetcher   spider.Fetcher
	Extractor spider.Extractor

	// RateLimiter, if set, is waited on before every fetch attempt.
	RateLimiter spider.DomainLimiter

	// Concurrency defaults to DefaultConcurrency.
	Concurrency int

	// RetryDelays defaults to DefaultRetryDelays.
	RetryDelays []time.Duration

	// OnRetry, if set, is called before each fetch retry.
	OnRetry RetryFunc
}

// Run fetches each URL and extracts it with req. Results follow the order
// of urls with duplicates removed. Page failures are reported per page;
// an invalid request or context cancellation aborts the batch.
//
// The progress callback, if provided, is called once per page and never
// concurrently.
func (r *Runner) Run(ctx context.Context, urls []string, req spider.ExtractRequest, progress spider.BatchProgressFunc) ([]*spider.PageResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	urls = Dedupe(urls)
	total := len(urls)
	results := make([]*spider.PageResult, total)

	concurrency := r.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	var (
		mu        sync.Mutex
		completed int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, u := range urls {
		g.Go(func() error {
			res := r.page(gctx, u, req)
			results[i] = res

			mu.Lock()
			defer mu.Unlock()
			completed++
			if progress != nil {
				progress(spider.BatchProgress{
					URL:       u,
					Completed: completed,
					Total:     total,
					Error:     res.Err,
				})
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// page fetches and extracts one URL.
func (r *Runner) page(ctx context.Context, pageURL string, req spider.ExtractRequest) *spider.PageResult {
	res := &spider.PageResult{URL: pageURL}

	delays := r.RetryDelays
	if delays == nil {
		delays = DefaultRetryDelays()
	}

	html, err := FetchWithRetryDelays(ctx, pageURL, r.fetch, r.OnRetry, delays)
	if err != nil {
		res.Err = err
		return res
	}
	res.Hash = Hash(html)

	req.Markup = html
	res.Result, res.Err = r.Extractor.Extract(&req)
	return res
}

// fetch waits for the host's rate limit and fetches one attempt.
func (r *Runner) fetch(ctx context.Context, pageURL string) (string, error) {
	if r.RateLimiter != nil {
		u, err := url.Parse(pageURL)
		if err != nil {
			return "", spider.Errorf(spider.EINVALID, "invalid URL %q: %v", pageURL, err)
		}
		if err := r.RateLimiter.Wait(ctx, u.Hostname()); err != nil {
			return "", err
		}
	}
	return r.Fetcher.Fetch(ctx, pageURL)
}

// Dedupe removes repeated URLs, keeping first occurrences. URLs that differ
// only in their fragment address the same page.
func Dedupe(urls []string) []string {
	return DedupeFilter(urls, bloom.NewFilter(uint(len(urls)), bloom.DefaultFalsePositiveRate))
}

// DedupeFilter is Dedupe with a caller supplied filter. Filter hits are
// confirmed against an exact set, so a false positive never drops a page.
func DedupeFilter(urls []string, filter *bloom.Filter) []string {
	seen := make(map[string]struct{}, len(urls))
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		key := pageKey(u)
		if filter.Seen(key) {
			if _, ok := seen[key]; ok {
				continue
			}
		}
		seen[key] = struct{}{}
		out = append(out, u)
	}
	return out
}

func pageKey(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	u.Fragment = ""
	u.RawFragment = ""
	return u.String()
}
