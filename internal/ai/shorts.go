package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	console "contentos/internal/utils/logger"
)

var shortsLog = console.New("SHORTS")

var shortsPlatformNames = map[string]string{
	"tiktok":         "TikTok",
	"reels":          "Instagram Reels",
	"youtube_shorts": "YouTube Shorts",
}

// ShortsOptions are the inputs to the 60-second script generator.
type ShortsOptions struct {
	Topic    string
	Platform string // tiktok, reels, youtube_shorts
	Niche    string
	Tone     string
}

// ShortsScript is the 4-part framework output: Hook → Story → 3 Tips → CTA.
type ShortsScript struct {
	Hook              string   `json:"hook"`
	Story             string   `json:"story"`
	Tips              []string `json:"tips"`
	CTA               string   `json:"cta"`
	FullScript        string   `json:"fullScript"`
	EstimatedDuration int      `json:"estimatedDuration"`
	Hashtags          []string `json:"hashtags"`
}

// GenerateShortsScript produces a script via the model, falling back to the
// deterministic template whenever the response is not the expected JSON. The
// fallback path never returns an error.
func GenerateShortsScript(ctx context.Context, client TextClient, opts ShortsOptions) (ShortsScript, error) {
	if opts.Tone == "" {
		opts.Tone = "educational"
	}

	text, err := client.GenerateText(ctx, buildShortsPrompt(opts))
	if err != nil {
		return ShortsScript{}, err
	}

	script, err := ParseScriptResponse(text, opts.Platform, opts.Niche)
	if err != nil {
		shortsLog.Warn("Falling back to templated script for %q: %v", opts.Topic, err)
		return MockShortsScript(opts), nil
	}
	return script, nil
}

func buildShortsPrompt(opts ShortsOptions) string {
	platformName, ok := shortsPlatformNames[opts.Platform]
	if !ok {
		platformName = opts.Platform
	}
	niche := opts.Niche
	if niche == "" {
		niche = "General"
	}

	return fmt.Sprintf(`You are a viral content expert specializing in short-form video scripts. Create a 60-second video script using this proven 4-part framework:

TOPIC: %s
PLATFORM: %s
NICHE: %s
TONE: %s

Generate a script with these exact sections:

1. HOOK (0-5 seconds): A scroll-stopping opening line that creates curiosity or shock value.

2. STORY (5-20 seconds): A brief personal story, relatable situation, or context that connects with the viewer emotionally.

3. TIPS (20-50 seconds): Exactly 3 actionable, specific tips or insights. Each tip should be 1-2 sentences max.

4. CTA (50-60 seconds): A strong call-to-action that encourages engagement (follow, like, comment, share).

Also provide 5-7 relevant hashtags for %s.

Format your response EXACTLY like this JSON (no markdown, just raw JSON):
{
    "hook": "Your hook text here",
    "story": "Your story text here",
    "tips": ["Tip 1", "Tip 2", "Tip 3"],
    "cta": "Your CTA text here",
    "hashtags": ["#hashtag1", "#hashtag2", "#hashtag3", "#hashtag4", "#hashtag5"]
}`,
		opts.Topic, platformName, niche, opts.Tone, platformName)
}

// ParseScriptResponse extracts the first-'{'-to-last-'}' block from the raw
// model text and decodes it into the 4-part shape. Any missing piece is an
// error so the caller can fall back.
func ParseScriptResponse(text, platform, niche string) (ShortsScript, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end <= start {
		return ShortsScript{}, fmt.Errorf("no JSON object in model response")
	}

	var parsed struct {
		Hook     string   `json:"hook"`
		Story    string   `json:"story"`
		Tips     []string `json:"tips"`
		CTA      string   `json:"cta"`
		Hashtags []string `json:"hashtags"`
	}
	if err := json.Unmarshal([]byte(text[start:end+1]), &parsed); err != nil {
		return ShortsScript{}, fmt.Errorf("failed to parse script response: %w", err)
	}
	if parsed.Hook == "" || parsed.Story == "" || parsed.CTA == "" || len(parsed.Tips) != 3 {
		return ShortsScript{}, fmt.Errorf("script response missing required sections")
	}

	hashtags := parsed.Hashtags
	if len(hashtags) == 0 {
		hashtags = DefaultHashtags(platform, niche)
	}

	return ShortsScript{
		Hook:              parsed.Hook,
		Story:             parsed.Story,
		Tips:              parsed.Tips,
		CTA:               parsed.CTA,
		FullScript:        assembleScript(parsed.Hook, parsed.Story, parsed.Tips, parsed.CTA),
		EstimatedDuration: 60,
		Hashtags:          hashtags,
	}, nil
}

// MockShortsScript is the deterministic templated script used both as the
// mock-fallback generator and the parse-failure fallback.
func MockShortsScript(opts ShortsOptions) ShortsScript {
	topic := opts.Topic
	lowered := strings.ToLower(topic)
	niche := opts.Niche
	if niche == "" {
		niche = lowered
	}

	hook := fmt.Sprintf("🛑 STOP scrolling! Here's what nobody tells you about %s...", topic)
	story := fmt.Sprintf("I used to struggle with %s just like you. Then I discovered these 3 game-changing tips that completely transformed my approach.", lowered)
	tips := []string{
		fmt.Sprintf("First, start with the end in mind. Know exactly what outcome you want from %s.", lowered),
		"Second, focus on consistency over perfection. Small daily actions beat occasional big efforts.",
		"Third, find an accountability partner. You're 65% more likely to succeed with support.",
	}
	cta := fmt.Sprintf("Follow for more %s tips! Drop a 🔥 if this helped! Save this for later and share with someone who needs it.", niche)

	return ShortsScript{
		Hook:              hook,
		Story:             story,
		Tips:              tips,
		CTA:               cta,
		FullScript:        assembleScript(hook, story, tips, cta),
		EstimatedDuration: 60,
		Hashtags:          DefaultHashtags(opts.Platform, opts.Niche),
	}
}

// DefaultHashtags builds the per-platform hashtag set, capped at 7.
func DefaultHashtags(platform, niche string) []string {
	hashtags := []string{"#viral", "#fyp", "#tips", "#motivation"}
	switch platform {
	case "tiktok":
		hashtags = append(hashtags, "#tiktok", "#foryou", "#trending")
	case "reels":
		hashtags = append(hashtags, "#reels", "#instagram", "#explore")
	default:
		hashtags = append(hashtags, "#shorts", "#youtube", "#subscribe")
	}
	if niche != "" {
		hashtags = append(hashtags, "#"+strings.ReplaceAll(strings.ToLower(niche), " ", ""))
	}
	if len(hashtags) > 7 {
		hashtags = hashtags[:7]
	}
	return hashtags
}

func assembleScript(hook, story string, tips []string, cta string) string {
	numbered := make([]string, len(tips))
	for i, tip := range tips {
		numbered[i] = fmt.Sprintf("%d. %s", i+1, tip)
	}
	return fmt.Sprintf("%s\n\n%s\n\n%s\n\n%s", hook, story, strings.Join(numbered, "\n"), cta)
}
