// Package fs stores batch extraction results as JSON files.
package fs

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/fwojciec/spider"
)

var _ spider.ResultStore = (*FileStore)(nil)

// FileStore implements spider.ResultStore with atomic update semantics.
// Results are saved to a temporary directory, then moved atomically on Commit.
type FileStore struct {
	baseDir string
	name    string
}

// NewFileStore creates a new FileStore.
// baseDir is the parent directory, name is the output directory name.
// Files are saved to baseDir/name.tmp and moved to baseDir/name on Commit.
func NewFileStore(baseDir, name string) *FileStore {
	return &FileStore{
		baseDir: baseDir,
		name:    name,
	}
}

func (s *FileStore) tempDir() string {
	return filepath.Join(s.baseDir, s.name+".tmp")
}

func (s *FileStore) finalDir() string {
	return filepath.Join(s.baseDir, s.name)
}

// Save writes one page result as JSON under a path derived from its URL.
func (s *FileStore) Save(ctx context.Context, page *spider.PageResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	relPath, err := URLToPath(page.URL)
	if err != nil {
		return err
	}

	fullPath := filepath.Join(s.tempDir(), relPath)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return err
	}

	data, err := page.MarshalJSON()
	if err != nil {
		return err
	}
	return os.WriteFile(fullPath, append(data, '\n'), 0644)
}

// Commit replaces the output directory with the saved results.
func (s *FileStore) Commit() error {
	if err := os.RemoveAll(s.finalDir()); err != nil {
		return err
	}
	if err := os.MkdirAll(s.tempDir(), 0755); err != nil {
		return err
	}
	return os.Rename(s.tempDir(), s.finalDir())
}

// Abort discards saved results.
func (s *FileStore) Abort() error {
	return os.RemoveAll(s.tempDir())
}

// URLToPath converts a page URL to a relative file path.
// Example: https://example.com/docs/api/users → example.com/docs/api/users.json
//
// The host keeps results from different sites apart. A query string is
// folded into the file name so distinct pages do not collide.
func URLToPath(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", spider.Errorf(spider.EINVALID, "invalid URL %q: %v", rawURL, err)
	}
	if u.Host == "" {
		return "", spider.Errorf(spider.EINVALID, "URL %q has no host", rawURL)
	}

	host := strings.ReplaceAll(u.Host, ":", "_")
	path := strings.TrimPrefix(u.Path, "/")
	if path == "" || strings.HasSuffix(path, "/") {
		path += "index"
	}
	if u.RawQuery != "" {
		path += "_" + sanitize(u.RawQuery)
	}
	rel := filepath.Join(host, filepath.FromSlash(path)+".json")
	if !filepath.IsLocal(rel) || !strings.HasPrefix(rel, host+string(filepath.Separator)) {
		return "", spider.Errorf(spider.EINVALID, "path traversal in URL %q", rawURL)
	}
	return rel, nil
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', '?', '&', '=', ':', '*', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, s)
}
