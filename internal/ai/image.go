package ai

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	authorityImageWidth  = 1080
	authorityImageHeight = 1350
	// Word-wrap boundary for the main text block.
	maxCharsPerLine = 32
	maxFontSize     = 56
)

// ImageStyle selects one of the four SVG templates.
type ImageStyle string

const (
	StyleMinimal  ImageStyle = "minimal"
	StyleBold     ImageStyle = "bold"
	StyleGradient ImageStyle = "gradient"
	StyleQuote    ImageStyle = "quote"
)

// IsValidImageStyle reports whether style names a known template.
func IsValidImageStyle(style ImageStyle) bool {
	switch style {
	case StyleMinimal, StyleBold, StyleGradient, StyleQuote:
		return true
	default:
		return false
	}
}

// AuthorityImageOptions are the inputs to the image templater.
type AuthorityImageOptions struct {
	Text            string
	Author          string
	BackgroundColor string
	TextColor       string
	AccentColor     string
	Style           ImageStyle
}

// AuthorityImageResult is the rendered SVG plus a directly displayable data URL.
type AuthorityImageResult struct {
	SVG     string
	DataURL string
	Width   int
	Height  int
}

// GenerateAuthorityImage renders a branded 1080x1350 quote image. It is a
// pure function of its inputs: identical options produce a byte-identical
// SVG. No randomness, no external calls.
func GenerateAuthorityImage(opts AuthorityImageOptions) AuthorityImageResult {
	if opts.BackgroundColor == "" {
		opts.BackgroundColor = "#1a1a2e"
	}
	if opts.TextColor == "" {
		opts.TextColor = "#ffffff"
	}
	if opts.AccentColor == "" {
		opts.AccentColor = "#f59e0b"
	}
	if opts.Style == "" {
		opts.Style = StyleMinimal
	}

	lines := wrapText(opts.Text, maxCharsPerLine)
	svg := renderStyledSVG(opts, lines)

	return AuthorityImageResult{
		SVG:     svg,
		DataURL: "data:image/svg+xml," + url.PathEscape(svg),
		Width:   authorityImageWidth,
		Height:  authorityImageHeight,
	}
}

// wrapText greedily packs words into lines no longer than limit characters.
func wrapText(text string, limit int) []string {
	var lines []string
	var current string
	for _, word := range strings.Fields(text) {
		candidate := strings.TrimSpace(current + " " + word)
		if len(candidate) <= limit {
			current = candidate
			continue
		}
		if current != "" {
			lines = append(lines, current)
		}
		current = word
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}

func escapeXML(s string) string {
	replacer := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&apos;",
	)
	return replacer.Replace(s)
}

func renderStyledSVG(opts AuthorityImageOptions, lines []string) string {
	width, height := authorityImageWidth, authorityImageHeight

	longest := 1
	for _, line := range lines {
		if len(line) > longest {
			longest = len(line)
		}
	}
	// Longer lines get smaller type, capped at maxFontSize.
	fontSize := width * 2 / longest
	if fontSize > maxFontSize {
		fontSize = maxFontSize
	}
	lineHeight := fontSize * 14 / 10
	totalTextHeight := len(lines) * lineHeight
	startY := (height-totalTextHeight)/2 + fontSize

	var textLines strings.Builder
	for i, line := range lines {
		fmt.Fprintf(&textLines, `<text x="%d" y="%d" font-family="'Inter', 'Segoe UI', sans-serif" font-size="%d" font-weight="600" fill="%s" text-anchor="middle">%s</text>`,
			width/2, startY+i*lineHeight, fontSize, opts.TextColor, escapeXML(line))
		if i < len(lines)-1 {
			textLines.WriteString("\n")
		}
	}

	authorText := ""
	if opts.Author != "" {
		authorText = fmt.Sprintf(`<text x="%d" y="%d" font-family="'Inter', 'Segoe UI', sans-serif" font-size="28" fill="%s" text-anchor="middle" font-weight="500">— %s</text>`,
			width/2, startY+len(lines)*lineHeight+60, opts.AccentColor, escapeXML(opts.Author))
	}

	switch opts.Style {
	case StyleBold:
		return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
<rect x="40" y="40" width="%d" height="%d" fill="none" stroke="%s" stroke-width="4" rx="20"/>
<rect x="80" y="80" width="%d" height="%d" fill="none" stroke="%s" stroke-width="2" rx="10" opacity="0.3"/>
%s
%s
</svg>`,
			width, height, width, height,
			opts.BackgroundColor,
			width-80, height-80, opts.AccentColor,
			width-160, height-160, opts.AccentColor,
			textLines.String(), authorText)

	case StyleGradient:
		return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<defs>
<linearGradient id="bg" x1="0%%" y1="0%%" x2="100%%" y2="100%%">
<stop offset="0%%" style="stop-color:%s;stop-opacity:1" />
<stop offset="100%%" style="stop-color:%s;stop-opacity:0.3" />
</linearGradient>
</defs>
<rect width="100%%" height="100%%" fill="url(#bg)"/>
<circle cx="%d" cy="0" r="400" fill="%s" opacity="0.1"/>
<circle cx="0" cy="%d" r="300" fill="%s" opacity="0.08"/>
%s
%s
</svg>`,
			width, height, width, height,
			opts.BackgroundColor, opts.AccentColor,
			width, opts.AccentColor,
			height, opts.AccentColor,
			textLines.String(), authorText)

	case StyleQuote:
		return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
<text x="%d" y="%d" font-family="Georgia, serif" font-size="200" fill="%s" opacity="0.3">&quot;</text>
<text x="%d" y="%d" font-family="Georgia, serif" font-size="200" fill="%s" opacity="0.3">&quot;</text>
%s
%s
</svg>`,
			width, height, width, height,
			opts.BackgroundColor,
			width/2-200, startY-80, opts.AccentColor,
			width/2+200, startY+totalTextHeight+40, opts.AccentColor,
			textLines.String(), authorText)

	default: // minimal
		return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
<line x1="100" y1="%d" x2="%d" y2="%d" stroke="%s" stroke-width="2" opacity="0.5"/>
<line x1="100" y1="%d" x2="%d" y2="%d" stroke="%s" stroke-width="2" opacity="0.5"/>
%s
%s
</svg>`,
			width, height, width, height,
			opts.BackgroundColor,
			startY-60, width-100, startY-60, opts.AccentColor,
			startY+totalTextHeight+40, width-100, startY+totalTextHeight+40, opts.AccentColor,
			textLines.String(), authorText)
	}
}

// MockViralImageURL mirrors the original AI image stub: a deterministic
// placeholder URL keyed by the first prompt word. The real Imagen call sits
// behind the image_viral module once a connector exists for it.
func MockViralImageURL(prompt string) string {
	keyword := "business"
	if fields := strings.Fields(prompt); len(fields) > 0 {
		keyword = fields[0]
	}
	return "https://source.unsplash.com/random/1080x1080/?" + url.QueryEscape(keyword)
}
