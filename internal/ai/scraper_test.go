package ai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePage = `<!DOCTYPE html>
<html>
<head>
<title>  Ten Growth Lessons  </title>
<meta name="description" content="What a decade of building taught us">
<style>body { color: red; }</style>
</head>
<body>
<header>Site header navigation</header>
<nav>Home | About</nav>
<article>
<h1>Ten Growth Lessons</h1>
<p>Lesson one: ship early.</p>
<script>trackPageView();</script>
<p>Lesson two: talk to users.</p>
</article>
<footer>Copyright 2026</footer>
</body>
</html>`

func TestExtractContentTitleAndMeta(t *testing.T) {
	content := ExtractContent(samplePage, "https://example.com/post")

	assert.Equal(t, "Ten Growth Lessons", content.Title)
	assert.Equal(t, "What a decade of building taught us", content.Description)
	assert.Equal(t, "https://example.com/post", content.URL)
}

func TestExtractContentPrefersArticle(t *testing.T) {
	content := ExtractContent(samplePage, "https://example.com/post")

	assert.Contains(t, content.MainContent, "Lesson one: ship early.")
	assert.Contains(t, content.MainContent, "Lesson two: talk to users.")
	assert.NotContains(t, content.MainContent, "Site header")
	assert.NotContains(t, content.MainContent, "Copyright 2026")
	assert.NotContains(t, content.MainContent, "trackPageView")
}

func TestExtractContentMetaAttributeOrderReversed(t *testing.T) {
	html := `<html><head><meta content="Reversed order" name="description"></head><body>hi</body></html>`
	content := ExtractContent(html, "https://example.com")

	assert.Equal(t, "Reversed order", content.Description)
}

func TestExtractContentFallsBackToBody(t *testing.T) {
	html := `<html><body><p>Plain body text</p></body></html>`
	content := ExtractContent(html, "https://example.com")

	assert.Equal(t, "Plain body text", content.MainContent)
}

func TestExtractContentCapsLength(t *testing.T) {
	html := "<html><body>" + strings.Repeat("word ", 3000) + "</body></html>"
	content := ExtractContent(html, "https://example.com")

	assert.LessOrEqual(t, len(content.MainContent), 5000)
}

func TestExtractContentCapKeepsRunesWhole(t *testing.T) {
	// Multi-byte runes force the cap onto a rune boundary.
	html := "<html><body>" + strings.Repeat("日本語テキスト", 500) + "</body></html>"
	content := ExtractContent(html, "https://example.com")

	assert.LessOrEqual(t, len(content.MainContent), 5000)
	assert.True(t, utf8.ValidString(content.MainContent))
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "abc", truncateRunes("abc", 5))
	assert.Equal(t, "ab", truncateRunes("abc", 2))
	// "é" is two bytes; a three-byte cap must not split the second one.
	assert.Equal(t, "é", truncateRunes("éé", 3))
	assert.True(t, utf8.ValidString(truncateRunes(strings.Repeat("語", 100), 50)))
}

func TestScrapeSetsUserAgent(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(samplePage))
	}))
	defer srv.Close()

	s := NewScraper(5 * time.Second)
	content, err := s.Scrape(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.Equal(t, "Mozilla/5.0 (compatible; ContentOS/1.0; +https://contentos.app)", gotUA)
	assert.Equal(t, "Ten Growth Lessons", content.Title)
}

func TestScrapeNon2xxIsTypedError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	s := NewScraper(5 * time.Second)
	_, err := s.Scrape(context.Background(), srv.URL)

	require.Error(t, err)
	var scrapeErr *ScrapeError
	require.ErrorAs(t, err, &scrapeErr)
	assert.Equal(t, http.StatusNotFound, scrapeErr.StatusCode)
}
