package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/spider"
)

// Ensure LoggingBatchRunner implements spider.BatchRunner.
var _ spider.BatchRunner = (*LoggingBatchRunner)(nil)

// LoggingBatchRunner logs a summary of every batch run by the wrapped
// BatchRunner.
type LoggingBatchRunner struct {
	next   spider.BatchRunner
	logger *slog.Logger
}

// NewLoggingBatchRunner creates a new LoggingBatchRunner.
func NewLoggingBatchRunner(next spider.BatchRunner, logger *slog.Logger) *LoggingBatchRunner {
	return &LoggingBatchRunner{next: next, logger: logger}
}

// Run delegates to the wrapped runner and logs page and failure counts.
func (r *LoggingBatchRunner) Run(ctx context.Context, urls []string, req spider.ExtractRequest, progress spider.BatchProgressFunc) (results []*spider.PageResult, err error) {
	defer func(begin time.Time) {
		failed := 0
		for _, res := range results {
			if res.Err != nil {
				failed++
			}
		}
		r.logger.InfoContext(ctx, "batch",
			"urls", len(urls),
			"pages", len(results),
			"failed", failed,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return r.next.Run(ctx, urls, req, progress)
}
