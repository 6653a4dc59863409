package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTextClient struct {
	response string
	err      error
}

func (s stubTextClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	return s.response, s.err
}

func TestParseScriptResponseValid(t *testing.T) {
	raw := `Here is your script:
{
  "hook": "Stop doing this",
  "story": "I learned it the hard way",
  "tips": ["One", "Two", "Three"],
  "cta": "Follow for more",
  "hashtags": ["#a", "#b"]
}
Hope that helps!`

	script, err := ParseScriptResponse(raw, "tiktok", "fitness")

	require.NoError(t, err)
	assert.Equal(t, "Stop doing this", script.Hook)
	assert.Equal(t, []string{"One", "Two", "Three"}, script.Tips)
	assert.Equal(t, 60, script.EstimatedDuration)
	assert.Equal(t, []string{"#a", "#b"}, script.Hashtags)
	assert.Contains(t, script.FullScript, "1. One")
	assert.Contains(t, script.FullScript, "3. Three")
}

func TestParseScriptResponseNoJSON(t *testing.T) {
	_, err := ParseScriptResponse("plain prose, no braces", "tiktok", "")
	assert.Error(t, err)
}

func TestParseScriptResponseWrongTipCount(t *testing.T) {
	raw := `{"hook":"h","story":"s","tips":["only one"],"cta":"c"}`
	_, err := ParseScriptResponse(raw, "tiktok", "")
	assert.Error(t, err)
}

func TestParseScriptResponseMissingHashtagsUsesDefaults(t *testing.T) {
	raw := `{"hook":"h","story":"s","tips":["a","b","c"],"cta":"c"}`
	script, err := ParseScriptResponse(raw, "reels", "fitness")

	require.NoError(t, err)
	assert.NotEmpty(t, script.Hashtags)
	assert.Contains(t, script.Hashtags, "#reels")
}

func TestGenerateShortsScriptFallsBackOnGarbage(t *testing.T) {
	client := stubTextClient{response: "I cannot produce JSON today"}

	script, err := GenerateShortsScript(context.Background(), client, ShortsOptions{
		Topic:    "morning routines",
		Platform: "tiktok",
	})

	require.NoError(t, err)
	assert.Contains(t, script.Hook, "morning routines")
	assert.Len(t, script.Tips, 3)
}

func TestGenerateShortsScriptPropagatesClientError(t *testing.T) {
	client := stubTextClient{err: errors.New("rate limited")}

	_, err := GenerateShortsScript(context.Background(), client, ShortsOptions{Topic: "x"})

	assert.Error(t, err)
}

func TestMockShortsScriptDeterministic(t *testing.T) {
	opts := ShortsOptions{Topic: "Cold Outreach", Platform: "youtube_shorts", Niche: "Sales"}

	first := MockShortsScript(opts)
	second := MockShortsScript(opts)

	assert.Equal(t, first, second)
	assert.Contains(t, first.Hook, "Cold Outreach")
	assert.Len(t, first.Tips, 3)
}

func TestDefaultHashtagsCappedAtSeven(t *testing.T) {
	tags := DefaultHashtags("tiktok", "personal finance")

	assert.LessOrEqual(t, len(tags), 7)
	assert.Contains(t, tags, "#tiktok")
}
