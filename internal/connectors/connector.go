package connectors

import (
	"context"
	"fmt"
)

// Credentials is a workspace integration's decrypted credential blob.
type Credentials struct {
	Data map[string]string
}

// PublishInput is the post content handed to a connector.
type PublishInput struct {
	PostID  string
	Content string
}

// Result is the connector outcome. Exactly two shapes exist: success with a
// platform id, or failure with an error string.
type Result struct {
	Success    bool   `json:"success"`
	PlatformID string `json:"platformId,omitempty"`
	Error      string `json:"error,omitempty"`
}

// AccountInfo describes the connected remote account.
type AccountInfo struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatarUrl"`
}

// SocialConnector publishes content to one social platform. Implementations
// are stateless; credentials are passed per call.
type SocialConnector interface {
	ValidateConnection(ctx context.Context, creds Credentials) (bool, error)
	PublishText(ctx context.Context, post PublishInput, creds Credentials) (Result, error)
	PublishImage(ctx context.Context, post PublishInput, imageURL string, creds Credentials) (Result, error)
	GetAccountInfo(ctx context.Context, creds Credentials) (AccountInfo, error)
}

// ErrUnknownPlatform is returned by the factory for platforms with no
// registered connector.
var ErrUnknownPlatform = fmt.Errorf("no connector registered for platform")

// ForPlatform is the connector factory. Real platform connectors plug in
// here; everything currently routes to the mock.
func ForPlatform(platform string) (SocialConnector, error) {
	switch platform {
	case "linkedin", "twitter", "facebook", "instagram", "tiktok", "youtube":
		return &MockConnector{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownPlatform, platform)
	}
}
