package render

import (
	"net/http/httptest"
	"net/url"
	"testing"
	"testing/fstest"
	"time"

	ginrender "github.com/gin-gonic/gin/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"t/base.html":          {Data: []byte(`{{define "base"}}<title>{{template "title" .}}</title>{{template "content" .}}{{end}}`)},
		"t/includes/nav.html":  {Data: []byte(`{{define "nav"}}[nav]{{end}}`)},
		"t/blog/index.html":    {Data: []byte(`{{define "title"}}Index{{end}}{{define "content"}}{{template "nav" .}}{{.msg}}{{end}}`)},
		"t/pages/about.html":   {Data: []byte(`{{define "title"}}About{{end}}{{define "content"}}about{{end}}`)},
		"t/includes/other.txt": {Data: []byte(`ignored`)},
	}
}

func TestRendererPages(t *testing.T) {
	r, err := New(testFS(), "t", Funcs(func(s string) string { return s }, time.UTC))
	require.NoError(t, err)

	assert.True(t, r.Has("blog/index.html"))
	assert.True(t, r.Has("pages/about.html"))
	assert.False(t, r.Has("base.html"))
	assert.False(t, r.Has("includes/nav.html"))

	w := httptest.NewRecorder()
	require.NoError(t, r.Instance("blog/index.html", map[string]any{"msg": "<hi>"}).Render(w))
	assert.Equal(t, "<title>Index</title>[nav]&lt;hi&gt;", w.Body.String())

	w = httptest.NewRecorder()
	require.NoError(t, r.Instance("pages/about.html", nil).Render(w))
	assert.Equal(t, "<title>About</title>about", w.Body.String())
}

func TestRendererMissingPage(t *testing.T) {
	r, err := New(testFS(), "t", nil)
	require.NoError(t, err)

	var rr ginrender.Render = r.Instance("nope.html", nil)
	assert.Error(t, rr.Render(httptest.NewRecorder()))
}

func TestTruncateWords(t *testing.T) {
	assert.Equal(t, "one two", TruncateWords("one  two", 3))
	assert.Equal(t, "one two …", TruncateWords("one two three", 2))
}

func TestLinebreaksBR(t *testing.T) {
	assert.Equal(t, "a<br>&lt;b&gt;", string(LinebreaksBR("a\r\n<b>")))
}

func TestPageURL(t *testing.T) {
	u, _ := url.Parse("/category/travel/?page=2&sort=x")
	assert.Equal(t, "/category/travel/?page=3&sort=x", PageURL(u, 3))
}

func TestDateFuncs(t *testing.T) {
	funcs := Funcs(nil, time.FixedZone("MSK", 3*60*60))
	ts := time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)

	assert.Equal(t, "17 October 2026, 12:30", funcs["date"].(func(time.Time) string)(ts))
	assert.Equal(t, "", funcs["date"].(func(time.Time) string)(time.Time{}))
}
