package tasks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanPayloadDefaultsAndBounds(t *testing.T) {
	p := PlanPayload{WorkspaceID: "ws-1"}
	require.NoError(t, p.Validate())
	assert.Equal(t, 7, p.Days)

	p = PlanPayload{WorkspaceID: "ws-1", Days: 90}
	require.NoError(t, p.Validate())

	p = PlanPayload{WorkspaceID: "ws-1", Days: 91}
	assert.Error(t, p.Validate())

	p = PlanPayload{WorkspaceID: "ws-1", Days: -1}
	assert.Error(t, p.Validate())

	p = PlanPayload{Days: 7}
	assert.ErrorIs(t, p.Validate(), ErrMissingWorkspace)
}

func TestGeneratePayloadDefaults(t *testing.T) {
	p := GeneratePayload{WorkspaceID: "ws-1", UserID: "u-1", Prompt: "launch post"}
	require.NoError(t, p.Validate())
	assert.Equal(t, "linkedin", p.Platform)

	p = GeneratePayload{WorkspaceID: "ws-1", UserID: "u-1", Prompt: "x", Platform: "twitter"}
	require.NoError(t, p.Validate())
	assert.Equal(t, "twitter", p.Platform)

	p = GeneratePayload{WorkspaceID: "ws-1", Prompt: "x"}
	assert.ErrorIs(t, p.Validate(), ErrMissingUser)

	p = GeneratePayload{WorkspaceID: "ws-1", UserID: "u-1"}
	assert.ErrorIs(t, p.Validate(), ErrMissingPrompt)
}

func TestURLScanPayloadPostCountLaw(t *testing.T) {
	p := URLScanPayload{WorkspaceID: "ws-1", UserID: "u-1", URL: "https://example.com"}
	require.NoError(t, p.Validate())
	assert.Equal(t, 5, p.PostCount)
	assert.Equal(t, "linkedin", p.Platform)

	for _, count := range []int{3, 5, 10, 15} {
		p = URLScanPayload{WorkspaceID: "ws-1", UserID: "u-1", URL: "https://example.com", PostCount: count}
		assert.NoError(t, p.Validate())
	}

	p = URLScanPayload{WorkspaceID: "ws-1", UserID: "u-1", URL: "https://example.com", PostCount: 7}
	assert.ErrorIs(t, p.Validate(), ErrBadPostCount)

	p = URLScanPayload{WorkspaceID: "ws-1", UserID: "u-1"}
	assert.ErrorIs(t, p.Validate(), ErrMissingURL)
}

func TestShortsPayloadDefaults(t *testing.T) {
	p := ShortsPayload{WorkspaceID: "ws-1", UserID: "u-1", Topic: "morning routines"}
	require.NoError(t, p.Validate())
	assert.Equal(t, "tiktok", p.Platform)
	assert.Equal(t, "educational", p.Tone)

	p = ShortsPayload{WorkspaceID: "ws-1", UserID: "u-1"}
	assert.ErrorIs(t, p.Validate(), ErrMissingTopic)
}

func TestAuthorityImagePayloadValidate(t *testing.T) {
	p := AuthorityImagePayload{WorkspaceID: "ws-1", Text: "Ship it."}
	require.NoError(t, p.Validate())

	p = AuthorityImagePayload{WorkspaceID: "ws-1"}
	assert.ErrorIs(t, p.Validate(), ErrMissingText)

	p = AuthorityImagePayload{Text: "Ship it."}
	assert.ErrorIs(t, p.Validate(), ErrMissingWorkspace)
}

func TestPublishPayloadValidate(t *testing.T) {
	p := PublishPayload{PostID: "post-1"}
	require.NoError(t, p.Validate())

	p = PublishPayload{}
	assert.ErrorIs(t, p.Validate(), ErrMissingPost)
}
