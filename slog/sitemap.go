package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/spider"
)

// Ensure LoggingSitemapService implements spider.SitemapService.
var _ spider.SitemapService = (*LoggingSitemapService)(nil)

// LoggingSitemapService logs URL discovery of the wrapped SitemapService.
type LoggingSitemapService struct {
	next   spider.SitemapService
	logger *slog.Logger
}

// NewLoggingSitemapService creates a new LoggingSitemapService.
func NewLoggingSitemapService(next spider.SitemapService, logger *slog.Logger) *LoggingSitemapService {
	return &LoggingSitemapService{next: next, logger: logger}
}

// DiscoverURLs delegates to the wrapped service. Successful discovery logs
// at info with the number of URLs kept; failures log at warn.
func (s *LoggingSitemapService) DiscoverURLs(ctx context.Context, baseURL string, filter *spider.URLFilter) ([]string, error) {
	begin := time.Now()
	urls, err := s.next.DiscoverURLs(ctx, baseURL, filter)
	attrs := []slog.Attr{
		slog.String("site", baseURL),
		slog.Bool("filtered", filter != nil),
		slog.Duration("duration", time.Since(begin)),
	}
	if err != nil {
		attrs = append(attrs, slog.String("err", err.Error()))
		s.logger.LogAttrs(ctx, slog.LevelWarn, "sitemap discovery failed", attrs...)
		return nil, err
	}
	attrs = append(attrs, slog.Int("urls", len(urls)))
	s.logger.LogAttrs(ctx, slog.LevelInfo, "sitemap discovery", attrs...)
	return urls, nil
}
