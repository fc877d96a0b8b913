package spider

import "context"

// Fetcher retrieves raw markup from URLs. Fetching is the only blocking
// step around an extraction; the engine itself never touches the network.
type Fetcher interface {
	// Fetch retrieves the URL and returns its HTML.
	// The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string) (html string, err error)

	// Close releases resources held by the fetcher.
	// Must be called when the Fetcher is no longer needed.
	Close() error
}
