package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fwojciec/spider"
	"github.com/fwojciec/spider/gjson"
	"github.com/fwojciec/spider/yaml"
)

// loadSchema reads a schema file, picking the codec by extension.
func loadSchema(path string) (*spider.Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.ParseSchema(data)
	default:
		return gjson.ParseSchema(data)
	}
}

func format(markdown bool) spider.Format {
	if markdown {
		return spider.FormatMarkdown
	}
	return spider.FormatHTML
}

// writeJSON prints v indented, leaving markup unescaped.
func writeJSON(deps *Dependencies, v any) error {
	enc := json.NewEncoder(deps.Stdout)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
