package main

import (
	"fmt"
	"path/filepath"

	"github.com/fwojciec/spider"
	"github.com/fwojciec/spider/fs"
)

// Run executes the batch command.
func (c *BatchCmd) Run(deps *Dependencies) error {
	schema, err := loadSchema(c.Schema)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", spider.ErrorMessage(err))
		return err
	}

	urls := c.URL
	if c.Sitemap != "" {
		filter, err := spider.NewURLFilter(c.Filter, nil)
		if err != nil {
			return err
		}
		found, err := deps.Sitemaps.DiscoverURLs(deps.Ctx, c.Sitemap, filter)
		if err != nil {
			return fmt.Errorf("sitemap discovery failed: %w", err)
		}
		if len(found) == 0 {
			fmt.Fprintln(deps.Stderr, "No URLs found in sitemap.")
		}
		urls = found
	}

	req := spider.ExtractRequest{
		Schema:  schema,
		Dialect: spider.Dialect(c.Dialect),
		Mode:    spider.Mode(c.Mode),
		Format:  format(c.Markdown),
	}
	results, err := deps.Runner.Run(deps.Ctx, urls, req, func(p spider.BatchProgress) {
		status := "ok"
		if p.Error != nil {
			status = "failed"
		}
		fmt.Fprintf(deps.Stderr, "[%d/%d] %s %s\n", p.Completed, p.Total, status, shortURL(p.URL, 60))
	})
	if err != nil {
		return err
	}

	if c.Out != "" {
		return c.save(deps, results)
	}
	if results == nil {
		results = []*spider.PageResult{}
	}
	return writeJSON(deps, results)
}

// save writes one file per page under c.Out, replacing previous output
// only once every page is written.
func (c *BatchCmd) save(deps *Dependencies, results []*spider.PageResult) error {
	out := filepath.Clean(c.Out)
	store := fs.NewFileStore(filepath.Dir(out), filepath.Base(out))
	for _, pr := range results {
		if err := store.Save(deps.Ctx, pr); err != nil {
			_ = store.Abort()
			return fmt.Errorf("failed to save %s: %w", pr.URL, err)
		}
	}
	if err := store.Commit(); err != nil {
		_ = store.Abort()
		return fmt.Errorf("failed to write %s: %w", out, err)
	}
	fmt.Fprintf(deps.Stderr, "Saved %d pages to %s\n", len(results), out)
	return nil
}

// shortURL keeps the tail of a long URL, which tells pages apart better
// than the shared scheme and host.
func shortURL(url string, maxLen int) string {
	if len(url) <= maxLen {
		return url
	}
	return "..." + url[len(url)-maxLen+3:]
}
