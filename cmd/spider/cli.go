package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/spider"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger

	Extractor spider.Extractor
	Fetcher   spider.Fetcher
	Sitemaps  spider.SitemapService
	Runner    spider.BatchRunner
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Verbose bool `short:"v" help:"Log fetches and extractions to stderr"`

	Extract ExtractCmd `cmd:"" help:"Extract one page and print the result as JSON"`
	Batch   BatchCmd   `cmd:"" help:"Extract many pages with one schema"`
	Serve   ServeCmd   `cmd:"" help:"Serve the extraction API over HTTP"`
}

// ExtractCmd is the "extract" subcommand.
type ExtractCmd struct {
	Page     string        `arg:"" help:"Page URL, or - to read HTML from stdin"`
	Schema   string        `short:"s" required:"" type:"existingfile" help:"Schema file (.json, .yaml or .yml)"`
	Dialect  string        `short:"d" default:"xpath" enum:"xpath,css" help:"Selector dialect (xpath, css)"`
	Mode     string        `short:"m" default:"flat" enum:"flat,nested" help:"Result shape (flat, nested)"`
	Browser  bool          `short:"b" help:"Render the page in a headless browser"`
	Markdown bool          `help:"Convert element matches to Markdown"`
	Timeout  time.Duration `short:"t" default:"10s" help:"Fetch timeout"`
}

// BatchCmd is the "batch" subcommand.
type BatchCmd struct {
	Schema      string        `short:"s" required:"" type:"existingfile" help:"Schema file (.json, .yaml or .yml)"`
	URL         []string      `short:"u" name:"url" xor:"source" required:"" help:"Page URL (repeatable)"`
	Sitemap     string        `xor:"source" required:"" help:"Site whose sitemap lists the pages"`
	Filter      []string      `short:"F" name:"filter" help:"Keep sitemap URLs matching regex (repeatable)"`
	Dialect     string        `short:"d" default:"xpath" enum:"xpath,css" help:"Selector dialect (xpath, css)"`
	Mode        string        `short:"m" default:"flat" enum:"flat,nested" help:"Result shape (flat, nested)"`
	Browser     bool          `short:"b" help:"Render pages in a headless browser"`
	Markdown    bool          `help:"Convert element matches to Markdown"`
	Concurrency int           `short:"c" default:"10" help:"Concurrent fetch limit"`
	RPS         float64       `name:"rps" default:"1" help:"Requests per second per domain (0 disables)"`
	Timeout     time.Duration `short:"t" default:"10s" help:"Fetch timeout per page"`
	Out         string        `short:"o" type:"path" help:"Write one JSON file per page under this directory"`
}

// ServeCmd is the "serve" subcommand.
type ServeCmd struct {
	Addr        string        `default:":8000" env:"SPIDER_ADDR" help:"Listen address"`
	Browser     bool          `short:"b" help:"Render pages in a headless browser"`
	Concurrency int           `short:"c" default:"10" help:"Concurrent fetch limit for batches"`
	RPS         float64       `name:"rps" default:"1" help:"Requests per second per domain (0 disables)"`
	Timeout     time.Duration `short:"t" default:"10s" help:"Fetch timeout per page"`
}
