package main

import (
	"fmt"
	"io"

	"github.com/fwojciec/spider"
)

// Run executes the extract command.
func (c *ExtractCmd) Run(deps *Dependencies) error {
	schema, err := loadSchema(c.Schema)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", spider.ErrorMessage(err))
		return err
	}

	markup, err := c.markup(deps)
	if err != nil {
		return err
	}

	res, err := deps.Extractor.Extract(&spider.ExtractRequest{
		Markup:  markup,
		Schema:  schema,
		Dialect: spider.Dialect(c.Dialect),
		Mode:    spider.Mode(c.Mode),
		Format:  format(c.Markdown),
	})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", spider.ErrorMessage(err))
		return err
	}
	return writeJSON(deps, res.Data())
}

func (c *ExtractCmd) markup(deps *Dependencies) (string, error) {
	if c.Page == "-" {
		data, err := io.ReadAll(deps.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}
	html, err := deps.Fetcher.Fetch(deps.Ctx, c.Page)
	if err != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", c.Page, err)
	}
	return html, nil
}
