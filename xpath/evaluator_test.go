package xpath_test

import (
	"testing"

	"github.com/fwojciec/spider"
	"github.com/fwojciec/spider/xpath"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Ensure Evaluator implements spider.Evaluator at compile time.
var _ spider.Evaluator = (*xpath.Evaluator)(nil)

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

func parse(t *testing.T) (*xpath.Evaluator, spider.Fragment) {
	t.Helper()
	ev := xpath.NewEvaluator()
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

	assert.Equal(t, spider.DialectXPath, xpath.NewEvaluator().Dialect())
}

func TestEvaluator_Values(t *testing.T) {
	t.Parallel()

	t.Run("returns text nodes in document order", func(t *testing.T) {
		t.Parallel()

		ev, doc := parse(t)

		ms, err := ev.Values(doc, `//div[@class="quote"]/span[@class="text"]/text()`)

		require.NoError(t, err)
		assert.Equal(t, []string{"First quote", "Second quote"}, values(ms))
		assert.False(t, ms[0].Element)
	})

	t.Run("returns attribute values", func(t *testing.T) {
		t.Parallel()

		ev, doc := parse(t)

		ms, err := ev.Values(doc, `//div[@class="tags"]/a/@href`)

		require.NoError(t, err)
		assert.Equal(t, []string{"/tag/change/", "/tag/world/", "/tag/abilities/"}, values(ms))
	})

	t.Run("renders elements as outer HTML", func(t *testing.T) {
		t.Parallel()

		ev, doc := parse(t)

		ms, err := ev.Values(doc, `//small[@class="author"]`)

		require.NoError(t, err)
		require.Len(t, ms, 2)
		assert.Equal(t, `<small class="author">Albert Einstein</small>`, ms[0].Value)
		assert.True(t, ms[0].Element)
	})

	t.Run("returns empty slice when nothing matches", func(t *testing.T) {
		t.Parallel()

		ev, doc := parse(t)

		ms, err := ev.Values(doc, `//table/tr/td/text()`)

		require.NoError(t, err)
		assert.NotNil(t, ms)
		assert.Empty(t, ms)
	})

	t.Run("formats computed results", func(t *testing.T) {
		t.Parallel()

		ev, doc := parse(t)

		count, err := ev.Values(doc, `count(//a)`)
		require.NoError(t, err)
		assert.Equal(t, []string{"5"}, values(count))

		str, err := ev.Values(doc, `string(//small[@class="author"])`)
		require.NoError(t, err)
		assert.Equal(t, []string{"Albert Einstein"}, values(str))

		b, err := ev.Values(doc, `boolean(//table)`)
		require.NoError(t, err)
		assert.Equal(t, []string{"false"}, values(b))
	})

	t.Run("rejects malformed expression", func(t *testing.T) {
		t.Parallel()

		ev, doc := parse(t)

		_, err := ev.Values(doc, `//div[@class=`)

		assert.Equal(t, spider.ESELECTOR, spider.ErrorCode(err))
	})

	t.Run("rejects foreign fragment", func(t *testing.T) {
		t.Parallel()

		ev := xpath.NewEvaluator()

		_, err := ev.Values(foreignFragment{}, `//a`)

		assert.Equal(t, spider.EINVALID, spider.ErrorCode(err))
	})
}

func TestEvaluator_Fragments(t *testing.T) {
	t.Parallel()

	t.Run("scopes relative queries to each fragment", func(t *testing.T) {
		t.Parallel()

		ev, doc := parse(t)

		frags, err := ev.Fragments(doc, `//div[@class="quote"]`)
		require.NoError(t, err)
		require.Len(t, frags, 2)

		first, err := ev.Values(frags[0], `./div[@class="tags"]/a/text()`)
		require.NoError(t, err)
		assert.Equal(t, []string{"change", "world"}, values(first))

		second, err := ev.Values(frags[1], `.//small[@class="author"]/text()`)
		require.NoError(t, err)
		assert.Equal(t, []string{"J.K. Rowling"}, values(second))
	})

	t.Run("searches the whole document for absolute paths", func(t *testing.T) {
		t.Parallel()

		ev, doc := parse(t)

		frags, err := ev.Fragments(doc, `//div[@class="quote"]`)
		require.NoError(t, err)

		all, err := ev.Values(frags[1], `//a/text()`)
		require.NoError(t, err)
		assert.Equal(t, []string{"change", "world", "abilities", "love", "life"}, values(all))

		scoped, err := ev.Values(frags[1], `.//a/text()`)
		require.NoError(t, err)
		assert.Equal(t, []string{"abilities"}, values(scoped))
	})

	t.Run("walks up from the fragment", func(t *testing.T) {
		t.Parallel()

		ev, doc := parse(t)

		frags, err := ev.Fragments(doc, `//small[@class="author"]`)
		require.NoError(t, err)
		require.Len(t, frags, 2)

		ms, err := ev.Values(frags[0], `../../span[@class="text"]/text()`)
		require.NoError(t, err)
		assert.Equal(t, []string{"First quote"}, values(ms))
	})

	t.Run("detaches attribute fragments", func(t *testing.T) {
		t.Parallel()

		ev, doc := parse(t)

		frags, err := ev.Fragments(doc, `//div[@class="tags-box"]//a/@href`)
		require.NoError(t, err)
		require.Len(t, frags, 2)

		ms, err := ev.Values(frags[0], `//text()`)
		require.NoError(t, err)
		assert.Equal(t, []string{"/tag/love/"}, values(ms))
	})

	t.Run("renders fragment markup", func(t *testing.T) {
		t.Parallel()

		ev, doc := parse(t)

		frags, err := ev.Fragments(doc, `//div[@class="tags-box"]/span`)
		require.NoError(t, err)
		require.Len(t, frags, 2)

		markup, err := frags[1].Markup()
		require.NoError(t, err)
		assert.Equal(t, `<span><a href="/tag/life/">life</a></span>`, markup)
	})

	t.Run("returns empty slice when nothing matches", func(t *testing.T) {
		t.Parallel()

		ev, doc := parse(t)

		frags, err := ev.Fragments(doc, `//article`)

		require.NoError(t, err)
		assert.Empty(t, frags)
	})

	t.Run("rejects expressions that do not select nodes", func(t *testing.T) {
		t.Parallel()

		ev, doc := parse(t)

		_, err := ev.Fragments(doc, `count(//a)`)

		assert.Equal(t, spider.ESELECTOR, spider.ErrorCode(err))
	})
}

type foreignFragment struct{}

func (foreignFragment) Markup() (string, error) { return "", nil }
