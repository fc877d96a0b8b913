package mock

import "github.com/fwojciec/spider"

var _ spider.Converter = (*Converter)(nil)

// Converter is a mock implementation of spider.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}
