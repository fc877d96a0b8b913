package spider

import (
	"context"
	"errors"
)

// PageResult is the outcome of extracting one page of a batch.
type PageResult struct {
	URL string

	// Hash identifies the fetched markup (xxhash, hex encoded).
	Hash string

	Result *Result

	// Err is set when fetching or extracting the page failed.
	// A failed page does not abort the batch.
	Err error
}

// MarshalJSON encodes the page as
//
//	{"url": ..., "hash": ..., "result_data": ..., "is_unpacked": ..., "error": ...}
//
// with hash and error omitted when empty. Application errors are reported
// by their message.
func (p *PageResult) MarshalJSON() ([]byte, error) {
	out := struct {
		URL        string `json:"url"`
		Hash       string `json:"hash,omitempty"`
		ResultData any    `json:"result_data"`
		IsUnpacked bool   `json:"is_unpacked"`
		Error      string `json:"error,omitempty"`
	}{URL: p.URL, Hash: p.Hash}
	var e *Error
	if errors.As(p.Err, &e) {
		out.Error = e.Message
	} else if p.Err != nil {
		out.Error = p.Err.Error()
	} else if p.Result != nil {
		out.ResultData = p.Result.Data()
		out.IsUnpacked = p.Result.Unpacked
	}
	return marshal(out)
}

// ResultStore persists batch page results. Saved results become visible
// only after Commit; Abort discards them.
type ResultStore interface {
	Save(ctx context.Context, page *PageResult) error
	Commit() error
	Abort() error
}

// BatchProgress reports progress during batch extraction.
type BatchProgress struct {
	URL       string
	Completed int
	Total     int
	Error     error
}

// BatchProgressFunc is called as pages are processed.
type BatchProgressFunc func(BatchProgress)

// BatchRunner fetches and extracts many pages with one request template.
type BatchRunner interface {
	// Run fetches each URL and extracts it with req, whose Markup is
	// replaced per page. Results follow the order of urls with duplicates
	// removed. Page failures are reported in PageResult.Err; only context
	// cancellation aborts the batch.
	Run(ctx context.Context, urls []string, req ExtractRequest, progress BatchProgressFunc) ([]*PageResult, error)
}
