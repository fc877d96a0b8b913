package main_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	main "github.com/fwojciec/spider/cmd/spider"
	"github.com/fwojciec/spider/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const quotesHTML = `<html><body>
<div class="quote"><span class="text">First quote</span><small class="author">Albert Einstein</small></div>
<div class="quote"><span class="text">Second quote</span><small class="author">J.K. Rowling</small></div>
</body></html>`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestMain_Run_Help(t *testing.T) {
	t.Parallel()

	m := main.NewMain()
	var stdout, stderr bytes.Buffer

	err := m.Run(context.Background(), []string{"--help"}, &stdout, &stderr)

	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "spider")
	assert.Contains(t, stdout.String(), "extract")
	assert.Contains(t, stdout.String(), "serve")
}

func TestMain_Run_NoArgs(t *testing.T) {
	t.Parallel()

	m := main.NewMain()
	var stdout, stderr bytes.Buffer

	err := m.Run(context.Background(), []string{}, &stdout, &stderr)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no command specified")
	assert.Contains(t, stdout.String(), "spider")
}

func TestMain_Run_Extract(t *testing.T) {
	t.Parallel()

	t.Run("reads markup from stdin with a json schema", func(t *testing.T) {
		t.Parallel()

		schema := writeFile(t, "schema.json", `{
			"quote": "//span[@class='text']/text()",
			"author": "//small[@class='author']/text()"
		}`)
		m := main.NewMain()
		m.Stdin = strings.NewReader(quotesHTML)
		var stdout, stderr bytes.Buffer

		err := m.Run(context.Background(), []string{"extract", "-", "--schema", schema}, &stdout, &stderr)

		require.NoError(t, err, stderr.String())
		assert.JSONEq(t, `[
			{"quote": "First quote", "author": "Albert Einstein"},
			{"quote": "Second quote", "author": "J.K. Rowling"}
		]`, stdout.String())
	})

	t.Run("fetches the page with a yaml schema in nested mode", func(t *testing.T) {
		t.Parallel()

		schema := writeFile(t, "schema.yaml", `
quote_item:
  _parent_object: div.quote
  quote: [span.text::text, string]
  author: [small.author::text, string]
`)
		var fetched string
		m := main.NewMain()
		m.Fetcher = &mock.Fetcher{
			FetchFn: func(ctx context.Context, url string) (string, error) {
				fetched = url
				return quotesHTML, nil
			},
			CloseFn: func() error { return nil },
		}
		var stdout, stderr bytes.Buffer

		err := m.Run(context.Background(), []string{
			"extract", "https://quotes.example.com/",
			"--schema", schema, "--dialect", "css", "--mode", "nested",
		}, &stdout, &stderr)

		require.NoError(t, err, stderr.String())
		assert.Equal(t, "https://quotes.example.com/", fetched)
		assert.JSONEq(t, `{"quote_item": [
			{"quote": "First quote", "author": "Albert Einstein"},
			{"quote": "Second quote", "author": "J.K. Rowling"}
		]}`, stdout.String())
	})

	t.Run("reports schema errors", func(t *testing.T) {
		t.Parallel()

		schema := writeFile(t, "schema.json", `{"item": {"name": "//p"}}`)
		m := main.NewMain()
		m.Stdin = strings.NewReader(quotesHTML)
		var stdout, stderr bytes.Buffer

		err := m.Run(context.Background(), []string{"extract", "-", "--schema", schema, "--mode", "nested"}, &stdout, &stderr)

		require.Error(t, err)
		assert.Contains(t, stderr.String(), "'_parent_object' field is required for included item 'item'")
	})

	t.Run("rejects an unknown dialect", func(t *testing.T) {
		t.Parallel()

		schema := writeFile(t, "schema.json", `{"a": "//p"}`)
		m := main.NewMain()
		m.Stdin = strings.NewReader(quotesHTML)
		var stdout, stderr bytes.Buffer

		err := m.Run(context.Background(), []string{"extract", "-", "--schema", schema, "--dialect", "jsonpath"}, &stdout, &stderr)

		assert.Error(t, err)
	})
}

func TestMain_Run_BatchRequiresSource(t *testing.T) {
	t.Parallel()

	schema := writeFile(t, "schema.json", `{"a": "//p"}`)
	m := main.NewMain()
	m.Fetcher = &mock.Fetcher{CloseFn: func() error { return nil }}
	var stdout, stderr bytes.Buffer

	err := m.Run(context.Background(), []string{"batch", "--schema", schema}, &stdout, &stderr)

	assert.Error(t, err)
}

func TestMain_Run_ServeStopsOnCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m := main.NewMain()
	m.Fetcher = &mock.Fetcher{CloseFn: func() error { return nil }}
	var stdout, stderr bytes.Buffer

	err := m.Run(ctx, []string{"serve", "--addr", "127.0.0.1:0"}, &stdout, &stderr)

	require.NoError(t, err)
	assert.Contains(t, stderr.String(), "Listening on 127.0.0.1:")
}
