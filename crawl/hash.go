package crawl

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// Hash identifies fetched markup. It is the xxhash64 of the markup as 16
// lowercase hex digits, so equal pages hash equally across batches.
func Hash(markup string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(markup))
}
