package mock

import (
	"context"

	"github.com/fwojciec/spider"
)

// Compile-time interface verification.
var (
	_ spider.BatchRunner   = (*BatchRunner)(nil)
	_ spider.DomainLimiter = (*DomainLimiter)(nil)
)

// BatchRunner is a mock implementation of spider.BatchRunner.
type BatchRunner struct {
	RunFn func(ctx context.Context, urls []string, req spider.ExtractRequest, progress spider.BatchProgressFunc) ([]*spider.PageResult, error)
}

func (r *BatchRunner) Run(ctx context.Context, urls []string, req spider.ExtractRequest, progress spider.BatchProgressFunc) ([]*spider.PageResult, error) {
	return r.RunFn(ctx, urls, req, progress)
}

// DomainLimiter is a mock implementation of spider.DomainLimiter.
type DomainLimiter struct {
	WaitFn func(ctx context.Context, domain string) error
}

func (l *DomainLimiter) Wait(ctx context.Context, domain string) error {
	return l.WaitFn(ctx, domain)
}
