package gjson_test

import (
	"testing"

	"github.com/fwojciec/spider"
	"github.com/fwojciec/spider/gjson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSchema(t *testing.T) {
	t.Parallel()

	t.Run("keeps declared field order", func(t *testing.T) {
		t.Parallel()

		s, err := gjson.ParseSchema([]byte(`{"zeta": "//a", "alpha": "//b", "mid": "//c"}`))

		require.NoError(t, err)
		names := make([]string, len(s.Fields))
		for i, f := range s.Fields {
			names[i] = f.Name
		}
		assert.Equal(t, []string{"zeta", "alpha", "mid"}, names)
	})

	t.Run("decodes bare strings as list leaves", func(t *testing.T) {
		t.Parallel()

		s, err := gjson.ParseSchema([]byte(`{"quote": "//span/text()"}`))

		require.NoError(t, err)
		assert.Equal(t, &spider.Leaf{Selector: "//span/text()", Mode: spider.LeafList}, s.Fields[0].Entry)
	})

	t.Run("decodes selector and type pairs", func(t *testing.T) {
		t.Parallel()

		s, err := gjson.ParseSchema([]byte(`{"a": ["//a", "string"], "b": ["//b", "array"], "c": ["//c", "scalar"]}`))

		require.NoError(t, err)
		assert.Equal(t, &spider.Leaf{Selector: "//a", Mode: spider.LeafScalar}, s.Fields[0].Entry)
		assert.Equal(t, &spider.Leaf{Selector: "//b", Mode: spider.LeafList}, s.Fields[1].Entry)
		assert.Equal(t, &spider.Leaf{Selector: "//c", Mode: spider.LeafScalar}, s.Fields[2].Entry)
	})

	t.Run("splits the parent selector off groups", func(t *testing.T) {
		t.Parallel()

		s, err := gjson.ParseSchema([]byte(`{
			"quote_item": {
				"quote": [".//span/text()", "string"],
				"_parent_object": "//div[@class='quote']",
				"tags": [".//a/text()", "array"]
			}
		}`))

		require.NoError(t, err)
		g, ok := s.Fields[0].Entry.(*spider.Group)
		require.True(t, ok)
		assert.Equal(t, "//div[@class='quote']", g.Parent)
		require.Len(t, g.Schema.Fields, 2)
		assert.Equal(t, "quote", g.Schema.Fields[0].Name)
		assert.Equal(t, "tags", g.Schema.Fields[1].Name)
	})

	t.Run("returns EMISSINGPARENT when the parent is missing or empty", func(t *testing.T) {
		t.Parallel()

		for _, body := range []string{
			`{"top": "//a", "item": {"a": "//a"}}`,
			`{"item": {"_parent_object": "", "a": "//a"}}`,
			`{"item": {"_parent_object": null}}`,
		} {
			_, err := gjson.ParseSchema([]byte(body))

			assert.Equal(t, spider.EMISSINGPARENT, spider.ErrorCode(err), body)
			assert.Equal(t, "item", spider.ErrorField(err), body)
		}
	})

	t.Run("names nested fields with dotted paths", func(t *testing.T) {
		t.Parallel()

		_, err := gjson.ParseSchema([]byte(`{"outer": {"_parent_object": "//div", "inner": {"a": "//a"}}}`))

		assert.Equal(t, spider.EMISSINGPARENT, spider.ErrorCode(err))
		assert.Equal(t, "outer.inner", spider.ErrorField(err))
	})

	t.Run("returns EUNSUPPORTED for other entry shapes", func(t *testing.T) {
		t.Parallel()

		for _, body := range []string{
			`{"a": 42}`,
			`{"a": true}`,
			`{"a": null}`,
			`{"a": ["//a"]}`,
			`{"a": ["//a", "string", "extra"]}`,
			`{"a": ["//a", "number"]}`,
			`{"a": {"_parent_object": 7}}`,
		} {
			_, err := gjson.ParseSchema([]byte(body))

			assert.Equal(t, spider.EUNSUPPORTED, spider.ErrorCode(err), body)
		}
	})

	t.Run("returns EINVALID for duplicate keys", func(t *testing.T) {
		t.Parallel()

		_, err := gjson.ParseSchema([]byte(`{"a": "//a", "a": "//b"}`))

		assert.Equal(t, spider.EINVALID, spider.ErrorCode(err))
		assert.Equal(t, "a", spider.ErrorField(err))
	})

	t.Run("returns EINVALID for non-objects and malformed JSON", func(t *testing.T) {
		t.Parallel()

		for _, body := range []string{`["//a"]`, `"//a"`, `{"a": `} {
			_, err := gjson.ParseSchema([]byte(body))

			assert.Equal(t, spider.EINVALID, spider.ErrorCode(err), body)
		}
	})

	t.Run("returns EINVALID for pathological nesting", func(t *testing.T) {
		t.Parallel()

		body := `"//a"`
		for i := 0; i < spider.MaxSchemaDepth; i++ {
			body = `{"_parent_object": "//div", "g": ` + body + `}`
		}
		body = `{"g": ` + body + `}`

		_, err := gjson.ParseSchema([]byte(body))

		assert.Equal(t, spider.EINVALID, spider.ErrorCode(err))
	})

	t.Run("accepts nesting up to the limit", func(t *testing.T) {
		t.Parallel()

		body := `"//a"`
		for i := 0; i < spider.MaxSchemaDepth-1; i++ {
			body = `{"_parent_object": "//div", "g": ` + body + `}`
		}
		body = `{"g": ` + body + `}`

		s, err := gjson.ParseSchema([]byte(body))

		require.NoError(t, err)
		assert.Equal(t, spider.MaxSchemaDepth, s.Depth())
	})
}
