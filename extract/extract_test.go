package extract_test

import (
	"encoding/json"
	"testing"

	"github.com/fwojciec/spider"
	"github.com/fwojciec/spider/extract"
	"github.com/fwojciec/spider/goquery"
	"github.com/fwojciec/spider/xpath"
	"github.com/stretchr/testify/require"
)

const quotesHTML = `<!DOCTYPE html>
<html>
<body>
<div class="quote">
	<span class="text">First quote</span>
	<span>by <small class="author">Albert Einstein</small></span>
	<div class="tags"><a class="tag" href="/tag/change/">change</a><a class="tag" href="/tag/world/">world</a></div>
</div>
<div class="quote">
	<span class="text">Second quote</span>
	<span>by <small class="author">J.K. Rowling</small></span>
	<div class="tags"><a class="tag" href="/tag/abilities/">abilities</a></div>
</div>
<div class="tags-box"><span><a href="/tag/love/">love</a></span><span><a href="/tag/life/">life</a></span></div>
</body>
</html>`

func leaf(name, selector string, mode spider.LeafMode) spider.Field {
	return spider.Field{Name: name, Entry: &spider.Leaf{Selector: selector, Mode: mode}}
}

func group(name, parent string, fields ...spider.Field) spider.Field {
	return spider.Field{Name: name, Entry: &spider.Group{Parent: parent, Schema: spider.NewSchema(fields...)}}
}

func newExtractor() *extract.Extractor {
	return extract.NewExtractor(extract.NewRegistry(xpath.NewEvaluator(), goquery.NewEvaluator()))
}

func toJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}
