package ai

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	console "contentos/internal/utils/logger"
)

var scrapeLog = console.New("SCRAPER")

const (
	scrapeUserAgent = "Mozilla/5.0 (compatible; ContentOS/1.0; +https://contentos.app)"
	// Scraped body text is capped before it reaches a generation prompt.
	scrapeContentLimit = 5000
)

// ScrapedContent is what the URL scanner extracts from a page.
type ScrapedContent struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	MainContent string `json:"mainContent"`
	URL         string `json:"url"`
}

// ScrapeError carries the upstream status so callers can distinguish a dead
// link from a transient failure.
type ScrapeError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *ScrapeError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("failed to scrape %s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("failed to scrape %s: %v", e.URL, e.Err)
}

func (e *ScrapeError) Unwrap() error { return e.Err }

// Extraction is regex-based on tag boundaries on purpose: the contract is
// title, meta description, then article > main > body with script/style/nav/
// header/footer stripped.
var (
	titleRe   = regexp.MustCompile(`(?i)<title[^>]*>([^<]+)</title>`)
	metaRe    = regexp.MustCompile(`(?i)<meta[^>]*name=["']description["'][^>]*content=["']([^"']+)["']`)
	metaRevRe = regexp.MustCompile(`(?i)<meta[^>]*content=["']([^"']+)["'][^>]*name=["']description["']`)

	articleRe = regexp.MustCompile(`(?is)<article[^>]*>(.*?)</article>`)
	mainRe    = regexp.MustCompile(`(?is)<main[^>]*>(.*?)</main>`)
	bodyRe    = regexp.MustCompile(`(?is)<body[^>]*>(.*?)</body>`)

	scriptRe = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleRe  = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	navRe    = regexp.MustCompile(`(?is)<nav[^>]*>.*?</nav>`)
	footerRe = regexp.MustCompile(`(?is)<footer[^>]*>.*?</footer>`)
	headerRe = regexp.MustCompile(`(?is)<header[^>]*>.*?</header>`)

	tagRe        = regexp.MustCompile(`<[^>]+>`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// Scraper fetches and extracts page content for the URL scanner.
type Scraper struct {
	client *http.Client
}

func NewScraper(timeout time.Duration) *Scraper {
	return &Scraper{
		client: &http.Client{Timeout: timeout},
	}
}

// Scrape fetches the URL and extracts title, meta description and main text.
func (s *Scraper) Scrape(ctx context.Context, url string) (ScrapedContent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return ScrapedContent{}, &ScrapeError{URL: url, Err: err}
	}
	req.Header.Set("User-Agent", scrapeUserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return ScrapedContent{}, &ScrapeError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return ScrapedContent{}, &ScrapeError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return ScrapedContent{}, &ScrapeError{URL: url, Err: fmt.Errorf("failed to read body: %w", err)}
	}

	content := ExtractContent(string(body), url)
	scrapeLog.Info("Scraped %s: title=%q, %d chars of content", url, content.Title, len(content.MainContent))
	return content, nil
}

// ExtractContent parses raw HTML into ScrapedContent. Exported separately so
// extraction stays testable without a live fetch.
func ExtractContent(html, url string) ScrapedContent {
	var title string
	if m := titleRe.FindStringSubmatch(html); m != nil {
		title = strings.TrimSpace(m[1])
	}

	var description string
	if m := metaRe.FindStringSubmatch(html); m != nil {
		description = strings.TrimSpace(m[1])
	} else if m := metaRevRe.FindStringSubmatch(html); m != nil {
		description = strings.TrimSpace(m[1])
	}

	mainContent := html
	if m := articleRe.FindStringSubmatch(html); m != nil {
		mainContent = m[1]
	} else if m := mainRe.FindStringSubmatch(html); m != nil {
		mainContent = m[1]
	} else if m := bodyRe.FindStringSubmatch(html); m != nil {
		mainContent = m[1]
	}

	mainContent = scriptRe.ReplaceAllString(mainContent, "")
	mainContent = styleRe.ReplaceAllString(mainContent, "")
	mainContent = navRe.ReplaceAllString(mainContent, "")
	mainContent = footerRe.ReplaceAllString(mainContent, "")
	mainContent = headerRe.ReplaceAllString(mainContent, "")
	mainContent = tagRe.ReplaceAllString(mainContent, " ")
	mainContent = whitespaceRe.ReplaceAllString(mainContent, " ")
	mainContent = strings.TrimSpace(mainContent)

	mainContent = truncateRunes(mainContent, scrapeContentLimit)

	return ScrapedContent{
		Title:       title,
		Description: description,
		MainContent: mainContent,
		URL:         url,
	}
}

// truncateRunes caps s at limit bytes without splitting a multi-byte rune
// at the boundary.
func truncateRunes(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}
