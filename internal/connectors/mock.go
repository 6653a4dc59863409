package connectors

import (
	"context"
	"fmt"
	"time"

	console "contentos/internal/utils/logger"
)

var log = console.New("CONNECTOR")

// MockConnector accepts everything and fabricates platform ids. It stands in
// for real platform connectors until those ship.
type MockConnector struct{}

var _ SocialConnector = (*MockConnector)(nil)

func (c *MockConnector) ValidateConnection(ctx context.Context, creds Credentials) (bool, error) {
	log.Info("Validating mock connection")
	return true, nil
}

func (c *MockConnector) PublishText(ctx context.Context, post PublishInput, creds Credentials) (Result, error) {
	log.Info("Publishing text for post %s", post.PostID)
	return Result{Success: true, PlatformID: fmt.Sprintf("mock-text-%d", time.Now().UnixMilli())}, nil
}

func (c *MockConnector) PublishImage(ctx context.Context, post PublishInput, imageURL string, creds Credentials) (Result, error) {
	log.Info("Publishing image %s for post %s", imageURL, post.PostID)
	return Result{Success: true, PlatformID: fmt.Sprintf("mock-image-%d", time.Now().UnixMilli())}, nil
}

func (c *MockConnector) GetAccountInfo(ctx context.Context, creds Credentials) (AccountInfo, error) {
	return AccountInfo{
		ID:        "mock-user-123",
		Name:      "Mock User",
		AvatarURL: "https://via.placeholder.com/150",
	}, nil
}
