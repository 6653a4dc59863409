package ai

import (
	"context"
	"fmt"
	"strings"
)

// Generated variants arrive as one model response separated by "---" lines.
const variantSeparator = "---"

var platformGuides = map[string]string{
	"linkedin":  "LinkedIn (professional, insightful, use relevant hashtags, emojis sparingly)",
	"twitter":   "Twitter/X (punchy, conversational, hooks, under 280 chars ideally)",
	"facebook":  "Facebook (engaging, storytelling, call-to-action)",
	"instagram": "Instagram (visually descriptive, compelling hooks, many hashtags)",
}

// GenerateViralText asks the model for 3 post variants for a free-form
// concept prompt and returns them split and trimmed, in model order.
func GenerateViralText(ctx context.Context, client TextClient, prompt string) ([]string, error) {
	fullPrompt := fmt.Sprintf("%s\n\nGenerate 3 distinct viral LinkedIn/Twitter posts based on this concept. Separate them with %q.", prompt, variantSeparator)

	text, err := client.GenerateText(ctx, fullPrompt)
	if err != nil {
		return nil, err
	}

	variants := SplitVariants(text)
	if len(variants) == 0 {
		return nil, fmt.Errorf("model returned no usable variants")
	}
	return variants, nil
}

// MockViralText is the deterministic stand-in used when mock fallback is
// enabled and no BYOK key exists.
func MockViralText(prompt string) []string {
	return []string{
		"🚀 Just launched ContentOS! The modular way to go viral. #SaaS #Growth",
		"🔥 Stop manually scheduling posts. ContentOS does it for you. #Productivity",
		"💡 Did you know? Consistency is key to viral growth. Let AI handle it. #Tips",
	}
}

// GeneratePostsFromURL turns scraped article content into exactly postCount
// platform-targeted posts.
func GeneratePostsFromURL(ctx context.Context, client TextClient, content ScrapedContent, platform string, postCount int) ([]string, error) {
	style, ok := platformGuides[strings.ToLower(platform)]
	if !ok {
		style = platformGuides["linkedin"]
	}

	excerpt := truncateRunes(content.MainContent, 3000)

	prompt := fmt.Sprintf(`You are a viral content expert. Based on the following article content, create %d unique, engaging social media posts optimized for %s.

ARTICLE TITLE: %s
ARTICLE DESCRIPTION: %s
ARTICLE CONTENT (excerpt): %s
SOURCE URL: %s

Requirements:
1. Each post should have a strong hook to grab attention
2. Extract key insights, stats, or quotes from the content
3. Use appropriate emojis and hashtags for the platform
4. Vary the format: some short, some longer, some as threads/lists
5. Include a subtle call-to-action where appropriate
6. Make each post unique - different angles on the same content

Generate exactly %d posts, separated by %q.`,
		postCount, style, content.Title, content.Description, excerpt, content.URL, postCount, variantSeparator)

	text, err := client.GenerateText(ctx, prompt)
	if err != nil {
		return nil, err
	}

	return NormalizePostCount(SplitVariants(text), postCount, content), nil
}

// MockPostsFromURL is the deterministic URL-scan stand-in.
func MockPostsFromURL(content ScrapedContent, platform string, postCount int) []string {
	description := content.Description
	if description == "" {
		description = "This changes everything!"
	}
	mockPosts := []string{
		fmt.Sprintf("🔥 Just discovered this gem: %q - Here's what you need to know... #%s", content.Title, platform),
		fmt.Sprintf("💡 Key insight from %s: %s #Viral", content.URL, description),
		fmt.Sprintf("🚀 Stop scrolling! This article about %q has the answers you've been looking for.", content.Title),
		fmt.Sprintf("📚 Thread: I summarized %q so you don't have to. Here's the breakdown 👇", content.Title),
		fmt.Sprintf("⚡ Hot take on %q - The insights are mind-blowing! #ContentOS", content.Title),
	}
	return NormalizePostCount(mockPosts, postCount, content)
}

// SplitVariants splits a raw model response on the separator and drops empty
// segments.
func SplitVariants(text string) []string {
	parts := strings.Split(text, variantSeparator)
	variants := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			variants = append(variants, trimmed)
		}
	}
	return variants
}

// NormalizePostCount enforces the padding/truncation law: the result always
// has exactly postCount entries regardless of how many segments the model
// returned.
func NormalizePostCount(posts []string, postCount int, content ScrapedContent) []string {
	if len(posts) > postCount {
		posts = posts[:postCount]
	}
	for len(posts) < postCount {
		posts = append(posts, fmt.Sprintf("📌 Check out this article: %q - %s", content.Title, content.URL))
	}
	return posts
}
