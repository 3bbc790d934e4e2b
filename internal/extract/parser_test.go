package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaausia45-jpg/EIDOS-NewsCrawler/internal/model"
)

func defaultParser() *Parser {
	return NewParser(model.SiteConfig{RootURL: "https://news.example.com/", LinkSelector: "a"})
}

func TestParse_ArticleTag(t *testing.T) {
	page := `<html><body>
<h1>  반도체 수출 회복  </h1>
<article>
  <h2>반도체 수출 회복</h2>
  <p>  첫 번째 문단.  </p>
  <div><p>두 번째 문단.</p></div>
  <p>   </p>
  <span>not a paragraph</span>
</article>
</body></html>`

	art, ok := defaultParser().Parse([]byte(page), "https://news.example.com/news/1")
	require.True(t, ok)
	assert.Equal(t, "반도체 수출 회복", art.Title)
	assert.Equal(t, "첫 번째 문단.\n두 번째 문단.", art.Content)
	assert.Equal(t, "https://news.example.com/news/1", art.URL)
	assert.NotContains(t, art.Content, art.Title)
	assert.False(t, art.Enriched)
}

func TestParse_FallsBackThroughRules(t *testing.T) {
	page := `<html><body>
<h3>Third level title</h3>
<div id="articleBodyContents"><p>Body by id.</p></div>
<div class="article_body"><p>Body by class.</p></div>
</body></html>`

	art, ok := defaultParser().Parse([]byte(page), "u")
	require.True(t, ok)
	assert.Equal(t, "Third level title", art.Title)
	assert.Equal(t, "Body by id.", art.Content)
}

func TestParse_ClassContainer(t *testing.T) {
	page := `<html><h2>T</h2><div class="article_body"><p>a</p><p>b</p></div></html>`

	art, ok := defaultParser().Parse([]byte(page), "u")
	require.True(t, ok)
	assert.Equal(t, "a\nb", art.Content)
}

func TestParse_SkipsEmptyTitleElement(t *testing.T) {
	page := `<html><h1>   </h1><h2>Real title</h2><article><p>x</p></article></html>`

	art, ok := defaultParser().Parse([]byte(page), "u")
	require.True(t, ok)
	assert.Equal(t, "Real title", art.Title)
}

func TestParse_NoTitle(t *testing.T) {
	_, ok := defaultParser().Parse([]byte(`<html><article><p>x</p></article></html>`), "u")
	assert.False(t, ok)
}

func TestParse_NoBody(t *testing.T) {
	_, ok := defaultParser().Parse([]byte(`<html><h1>Title</h1><div><p>x</p></div></html>`), "u")
	assert.False(t, ok)
}

func TestParse_BodyWithoutParagraphs(t *testing.T) {
	art, ok := defaultParser().Parse([]byte(`<html><h1>Title</h1><article>text only</article></html>`), "u")
	require.True(t, ok)
	assert.Empty(t, art.Content)
}

func TestParse_CustomRules(t *testing.T) {
	p := NewParser(model.SiteConfig{
		RootURL:        "https://a.example.com/",
		LinkSelector:   "a",
		TitleSelectors: []string{"h2.headline"},
		BodySelectors:  []string{"section#story"},
	})
	page := `<html><h1>Site name</h1><h2 class="headline">Story</h2>
<article><p>ignored</p></article><section id="story"><p>kept</p></section></html>`

	art, ok := p.Parse([]byte(page), "u")
	require.True(t, ok)
	assert.Equal(t, "Story", art.Title)
	assert.Equal(t, "kept", art.Content)
}

func TestParse_NormalizesNFC(t *testing.T) {
	// "한" as decomposed jamo.
	decomposed := "\u1112\u1161\u11ab"
	page := `<html><h1>` + decomposed + `</h1><article><p>` + decomposed + `</p></article></html>`

	art, ok := defaultParser().Parse([]byte(page), "u")
	require.True(t, ok)
	assert.Equal(t, "\uD55C", art.Title)
	assert.Equal(t, "\uD55C", art.Content)
}
