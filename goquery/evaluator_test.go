package goquery_test

import (
	"testing"

	"github.com/fwojciec/spider"
	"github.com/fwojciec/spider/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Ensure Evaluator implements spider.Evaluator at compile time.
var _ spider.Evaluator = (*goquery.Evaluator)(nil)

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

func parse(t *testing.T) (*goquery.Evaluator, spider.Fragment) {
	t.Helper()
	ev := goquery.NewEvaluator()
	doc, err := ev.Parse(quotesHTML)
	require.NoError(t, err)
	return ev, doc
}

func values(ms []spider.Match) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.Value
	}
	return out
}

func TestEvaluator_Dialect(t *testing.T) {
	t.Parallel()

	assert.Equal(t, spider.DialectCSS, goquery.NewEvaluator().Dialect())
}

func TestEvaluator_Values(t *testing.T) {
	t.Parallel()

	t.Run("returns text with ::text in document order", func(t *testing.T) {
		t.Parallel()

		ev, doc := parse(t)

		ms, err := ev.Values(doc, "div.quote span.text::text")

		require.NoError(t, err)
		assert.Equal(t, []string{"First quote", "Second quote"}, values(ms))
		assert.False(t, ms[0].Element)
	})

	t.Run("returns only direct text children", func(t *testing.T) {
		t.Parallel()

		ev, doc := parse(t)

		ms, err := ev.Values(doc, "div.quote > span:not(.text)::text")

		require.NoError(t, err)
		assert.Equal(t, []string{"by ", "by "}, values(ms))
	})

	t.Run("returns attributes with ::attr", func(t *testing.T) {
		t.Parallel()

		ev, doc := parse(t)

		ms, err := ev.Values(doc, "a.tag::attr(href)")

		require.NoError(t, err)
		assert.Equal(t, []string{"/tag/change/", "/tag/world/", "/tag/abilities/"}, values(ms))
	})

	t.Run("skips elements without the attribute", func(t *testing.T) {
		t.Parallel()

		ev, doc := parse(t)

		ms, err := ev.Values(doc, "span::attr(class)")

		require.NoError(t, err)
		assert.Equal(t, []string{"text", "text"}, values(ms))
	})

	t.Run("renders elements as outer HTML", func(t *testing.T) {
		t.Parallel()

		ev, doc := parse(t)

		ms, err := ev.Values(doc, "small.author")

		require.NoError(t, err)
		require.Len(t, ms, 2)
		assert.Equal(t, `<small class="author">J.K. Rowling</small>`, ms[1].Value)
		assert.True(t, ms[1].Element)
	})

	t.Run("returns empty slice when nothing matches", func(t *testing.T) {
		t.Parallel()

		ev, doc := parse(t)

		ms, err := ev.Values(doc, "table td::text")

		require.NoError(t, err)
		assert.NotNil(t, ms)
		assert.Empty(t, ms)
	})

	t.Run("rejects malformed selector", func(t *testing.T) {
		t.Parallel()

		ev, doc := parse(t)

		_, err := ev.Values(doc, "div[class=")

		assert.Equal(t, spider.ESELECTOR, spider.ErrorCode(err))
	})

	t.Run("rejects foreign fragment", func(t *testing.T) {
		t.Parallel()

		ev := goquery.NewEvaluator()

		_, err := ev.Values(foreignFragment{}, "a")

		assert.Equal(t, spider.EINVALID, spider.ErrorCode(err))
	})
}

func TestEvaluator_Fragments(t *testing.T) {
	t.Parallel()

	t.Run("scopes queries to each fragment", func(t *testing.T) {
		t.Parallel()

		ev, doc := parse(t)

		frags, err := ev.Fragments(doc, "div.quote")
		require.NoError(t, err)
		require.Len(t, frags, 2)

		first, err := ev.Values(frags[0], "a.tag::text")
		require.NoError(t, err)
		assert.Equal(t, []string{"change", "world"}, values(first))

		second, err := ev.Values(frags[1], "small.author::text")
		require.NoError(t, err)
		assert.Equal(t, []string{"J.K. Rowling"}, values(second))
	})

	t.Run("matches the scope element itself", func(t *testing.T) {
		t.Parallel()

		ev, doc := parse(t)

		frags, err := ev.Fragments(doc, "a.tag")
		require.NoError(t, err)
		require.Len(t, frags, 3)

		ms, err := ev.Values(frags[2], "a::attr(href)")
		require.NoError(t, err)
		assert.Equal(t, []string{"/tag/abilities/"}, values(ms))

		self, err := ev.Values(frags[2], "::text")
		require.NoError(t, err)
		assert.Equal(t, []string{"abilities"}, values(self))
	})

	t.Run("renders fragment markup", func(t *testing.T) {
		t.Parallel()

		ev, doc := parse(t)

		frags, err := ev.Fragments(doc, "div.tags-box > span")
		require.NoError(t, err)
		require.Len(t, frags, 2)

		markup, err := frags[0].Markup()
		require.NoError(t, err)
		assert.Equal(t, `<span><a href="/tag/love/">love</a></span>`, markup)
	})

	t.Run("rejects pseudo-elements", func(t *testing.T) {
		t.Parallel()

		ev, doc := parse(t)

		_, err := ev.Fragments(doc, "div.quote::text")

		assert.Equal(t, spider.ESELECTOR, spider.ErrorCode(err))
	})
}

type foreignFragment struct{}

func (foreignFragment) Markup() (string, error) { return "", nil }
