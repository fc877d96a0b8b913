package slog_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/fwojciec/spider"
	"github.com/fwojciec/spider/mock"
	spiderslog "github.com/fwojciec/spider/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingBatchRunner_Run(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	inner := &mock.BatchRunner{
		RunFn: func(_ context.Context, urls []string, _ spider.ExtractRequest, _ spider.BatchProgressFunc) ([]*spider.PageResult, error) {
			return []*spider.PageResult{
				{URL: urls[0]},
				{URL: urls[1], Err: errors.New("HTTP 404")},
			}, nil
		},
	}

	results, err := spiderslog.NewLoggingBatchRunner(inner, logger).Run(context.Background(),
		[]string{"https://example.com/a", "https://example.com/b", "https://example.com/a"},
		spider.ExtractRequest{}, nil)

	require.NoError(t, err)
	assert.Len(t, results, 2)
	output := buf.String()
	assert.Contains(t, output, "msg=batch")
	assert.Contains(t, output, "urls=3")
	assert.Contains(t, output, "pages=2")
	assert.Contains(t, output, "failed=1")
}
