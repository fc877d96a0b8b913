package slog

import (
	"log/slog"
	"time"

	"github.com/fwojciec/spider"
)

// Ensure LoggingExtractor implements spider.Extractor.
var _ spider.Extractor = (*LoggingExtractor)(nil)

// LoggingExtractor logs every extraction of the wrapped Extractor.
type LoggingExtractor struct {
	next   spider.Extractor
	logger *slog.Logger
}

// NewLoggingExtractor creates a new LoggingExtractor.
func NewLoggingExtractor(next spider.Extractor, logger *slog.Logger) *LoggingExtractor {
	return &LoggingExtractor{next: next, logger: logger}
}

// Extract delegates to the wrapped extractor. Failures are logged with
// their error code and field.
func (e *LoggingExtractor) Extract(req *spider.ExtractRequest) (res *spider.Result, err error) {
	if req == nil {
		return e.next.Extract(req)
	}
	defer func(begin time.Time) {
		attrs := []any{
			"dialect", req.Dialect,
			"mode", req.Mode,
			"fields", req.Schema.Len(),
			"bytes", len(req.Markup),
			"duration", time.Since(begin),
		}
		if err != nil {
			attrs = append(attrs,
				"code", spider.ErrorCode(err),
				"field", spider.ErrorField(err),
				"err", err,
			)
			e.logger.Warn("extract", attrs...)
			return
		}
		attrs = append(attrs, "unpacked", res.Unpacked, "rows", len(res.Records))
		e.logger.Info("extract", attrs...)
	}(time.Now())
	return e.next.Extract(req)
}
