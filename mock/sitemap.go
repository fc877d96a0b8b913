package mock

import (
	"context"

	"github.com/fwojciec/spider"
)

var _ spider.SitemapService = (*SitemapService)(nil)

// SitemapService is a mock implementation of spider.SitemapService.
type SitemapService struct {
	DiscoverURLsFn func(ctx context.Context, baseURL string, filter *spider.URLFilter) ([]string, error)
}

func (s *SitemapService) DiscoverURLs(ctx context.Context, baseURL string, filter *spider.URLFilter) ([]string, error) {
	return s.DiscoverURLsFn(ctx, baseURL, filter)
}
