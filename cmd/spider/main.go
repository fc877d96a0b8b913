package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/spider"
	"github.com/fwojciec/spider/crawl"
	"github.com/fwojciec/spider/extract"
	"github.com/fwojciec/spider/goquery"
	"github.com/fwojciec/spider/htmltomarkdown"
	spiderhttp "github.com/fwojciec/spider/http"
	"github.com/fwojciec/spider/rod"
	spiderslog "github.com/fwojciec/spider/slog"
	"github.com/fwojciec/spider/xpath"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Stdin is read when a page argument is "-".
	Stdin io.Reader

	// Fetcher overrides the page fetcher, for end-to-end testing.
	Fetcher spider.Fetcher
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		Stdin: os.Stdin,
	}
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdin:  m.Stdin,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("spider"),
		kong.Description("Extract structured data from HTML with a schema of selectors"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'spider --help' to see available commands")
	}

	if args[0] == "help" || args[0] == "--help" || args[0] == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	level := slog.LevelWarn
	if cli.Verbose {
		level = slog.LevelInfo
	}
	var handler slog.Handler = slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})
	if kongCtx.Command() == "serve" {
		handler = slog.NewJSONHandler(stderr, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	deps.Logger = slog.New(handler)

	deps.Extractor = spiderslog.NewLoggingExtractor(newExtractor(), deps.Logger)

	fetcher, err := m.newFetcher(cli, kongCtx.Command(), stderr)
	if err != nil {
		return err
	}
	if fetcher != nil {
		defer fetcher.Close()
		deps.Fetcher = spiderslog.NewLoggingFetcher(fetcher, deps.Logger)
	}

	switch kongCtx.Command() {
	case "batch":
		m.wireBatch(deps, cli.Batch.Concurrency, cli.Batch.RPS)
	case "serve":
		m.wireBatch(deps, cli.Serve.Concurrency, cli.Serve.RPS)
	}

	return kongCtx.Run(deps)
}

// newFetcher picks the page fetcher for the parsed command. Reading markup
// from stdin needs no fetcher.
func (m *Main) newFetcher(cli *CLI, command string, stderr io.Writer) (spider.Fetcher, error) {
	if m.Fetcher != nil {
		return m.Fetcher, nil
	}

	var browser bool
	timeout := spiderhttp.DefaultFetchTimeout
	switch command {
	case "extract <page>":
		if cli.Extract.Page == "-" {
			return nil, nil
		}
		browser, timeout = cli.Extract.Browser, cli.Extract.Timeout
	case "batch":
		browser, timeout = cli.Batch.Browser, cli.Batch.Timeout
	case "serve":
		browser, timeout = cli.Serve.Browser, cli.Serve.Timeout
	}

	if !browser {
		return spiderhttp.NewFetcher(
			spiderhttp.WithTimeout(timeout),
			spiderhttp.WithHeaders(spiderhttp.RandomHeaders),
		), nil
	}

	manager, err := rod.NewBrowserManager()
	if err != nil {
		fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed")
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}
	return rod.NewFetcher(manager, rod.WithFetchTimeout(timeout)), nil
}

func newExtractor() *extract.Extractor {
	registry := extract.NewRegistry(xpath.NewEvaluator(), goquery.NewEvaluator())
	return extract.NewExtractor(registry, extract.WithConverter(htmltomarkdown.NewConverter()))
}

func (m *Main) wireBatch(deps *Dependencies, concurrency int, rps float64) {
	deps.Sitemaps = spiderslog.NewLoggingSitemapService(
		spiderhttp.NewSitemapService(nil, spiderhttp.WithSitemapHeaders(spiderhttp.RandomHeaders)),
		deps.Logger,
	)
	deps.Runner = spiderslog.NewLoggingBatchRunner(newRunner(deps, concurrency, rps), deps.Logger)
}

func newRunner(deps *Dependencies, concurrency int, rps float64) *crawl.Runner {
	return &crawl.Runner{
		Fetcher:     deps.Fetcher,
		Extractor:   deps.Extractor,
		RateLimiter: crawl.NewDomainLimiter(rps),
		Concurrency: concurrency,
		OnRetry: func(url string, attempt int, err error) {
			deps.Logger.WarnContext(deps.Ctx, "retrying fetch", "url", url, "attempt", attempt, "err", err)
		},
	}
}
