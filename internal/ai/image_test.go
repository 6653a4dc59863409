package ai

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAuthorityImageDeterministic(t *testing.T) {
	opts := AuthorityImageOptions{
		Text:   "Consistency compounds faster than talent",
		Author: "Jane Doe",
		Style:  StyleBold,
	}

	first := GenerateAuthorityImage(opts)
	second := GenerateAuthorityImage(opts)

	assert.Equal(t, first.SVG, second.SVG)
	assert.Equal(t, first.DataURL, second.DataURL)
}

func TestGenerateAuthorityImageDimensions(t *testing.T) {
	result := GenerateAuthorityImage(AuthorityImageOptions{Text: "Ship it"})

	assert.Equal(t, 1080, result.Width)
	assert.Equal(t, 1350, result.Height)
	assert.Contains(t, result.SVG, `width="1080"`)
	assert.Contains(t, result.SVG, `height="1350"`)
}

func TestGenerateAuthorityImageDefaults(t *testing.T) {
	result := GenerateAuthorityImage(AuthorityImageOptions{Text: "Defaults apply"})

	assert.Contains(t, result.SVG, "#1a1a2e")
	assert.Contains(t, result.SVG, "#ffffff")
}

func TestGenerateAuthorityImageStyles(t *testing.T) {
	for _, style := range []ImageStyle{StyleMinimal, StyleBold, StyleGradient, StyleQuote} {
		result := GenerateAuthorityImage(AuthorityImageOptions{Text: "Style check", Style: style})
		require.NotEmpty(t, result.SVG, "style %s produced empty SVG", style)
		assert.True(t, strings.HasPrefix(result.SVG, "<svg"), "style %s", style)
	}
}

func TestGenerateAuthorityImageEscapesXML(t *testing.T) {
	result := GenerateAuthorityImage(AuthorityImageOptions{Text: `Growth > "hacks" & <tricks>`})

	assert.NotContains(t, result.SVG, `"hacks"`)
	assert.Contains(t, result.SVG, "&gt;")
	assert.Contains(t, result.SVG, "&amp;")
	assert.Contains(t, result.SVG, "&quot;hacks&quot;")
}

func TestGenerateAuthorityImageDataURL(t *testing.T) {
	result := GenerateAuthorityImage(AuthorityImageOptions{Text: "Encode me"})

	assert.True(t, strings.HasPrefix(result.DataURL, "data:image/svg+xml,"))
	// The raw SVG angle brackets must not survive unescaped in the URL.
	assert.NotContains(t, strings.TrimPrefix(result.DataURL, "data:image/svg+xml,"), "<svg")
}

func TestWrapTextBoundary(t *testing.T) {
	lines := wrapText("one two three four five six seven eight nine ten eleven twelve", 32)

	require.NotEmpty(t, lines)
	for _, line := range lines {
		assert.LessOrEqual(t, len(line), 32, "line %q too long", line)
	}
	// No words lost.
	assert.Equal(t, "one two three four five six seven eight nine ten eleven twelve",
		strings.Join(lines, " "))
}

func TestWrapTextLongWordKept(t *testing.T) {
	long := strings.Repeat("a", 40)
	lines := wrapText(long, 32)

	require.Len(t, lines, 1)
	assert.Equal(t, long, lines[0])
}

func TestIsValidImageStyle(t *testing.T) {
	assert.True(t, IsValidImageStyle(StyleQuote))
	assert.False(t, IsValidImageStyle(ImageStyle("vaporwave")))
}
